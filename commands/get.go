package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sitesync/sites-sync/sheet"
	"github.com/sitesync/sites-sync/sites"
)

var GetCmd = Get{
	command: newCommand(),
	file:    time.Now().Format("sites-2006-01-02T150405.tsv"),
}

type Get struct {
	command
	file string
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Retrieves the sites from a Google Sheets worksheet and stores them to a local TSV file"
}

func (cmd *Get) Usage() string {
	return "[--url <url>] --file <file>"
}

func (cmd *Get) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--env <file>] get [options] --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Downloads the site worksheet, mapped to the table columns, to a TSV file")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    sites-sync --debug get --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                           --file "sites.tsv"`)
	fmt.Println()
}

func (cmd *Get) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("get")

	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to 'sites-<yyyy-mm-ddTHHmmss>.tsv'")

	return flagset
}

func (cmd *Get) Execute(args ...any) error {
	cfg, err := cmd.configure(args...)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	ctx := context.Background()

	credentials, err := authorise(ctx, cfg)
	if err != nil {
		return err
	}

	reader, err := sheet.NewReader(ctx, credentials)
	if err != nil {
		return err
	}

	records, err := reader.Records(ctx, cfg.SpreadsheetID, cfg.Worksheet)
	if err != nil {
		return err
	}

	list := sites.MapAll(records)

	if err := save(cmd.file, list); err != nil {
		return err
	}

	infof("Retrieved %v sites to file %s", len(list), cmd.file)

	return nil
}

// save writes the TSV to a temporary file alongside the target and renames it
// into place, so the file is never left half written.
func save(file string, list []sites.Site) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".sites-*.tsv")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := sites.WriteTSV(tmp, list); err != nil {
		return fmt.Errorf("error creating TSV file (%w)", err)
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), file)
}
