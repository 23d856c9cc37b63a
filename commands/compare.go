package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sitesync/sites-sync/sheet"
	"github.com/sitesync/sites-sync/sites"
)

var CompareCmd = Compare{
	command: newCommand(),
}

// Compare reports the differences between the worksheet and the sites table
// without changing either.
type Compare struct {
	command
}

func (cmd *Compare) Name() string {
	return "compare"
}

func (cmd *Compare) Description() string {
	return "Compares the sites in a Google Sheets worksheet with the sites table"
}

func (cmd *Compare) Usage() string {
	return "[--url <url>]"
}

func (cmd *Compare) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--env <file>] compare [options]\n", APP)
	fmt.Println()
	fmt.Println("  Lists the sites a sync would add or update, and the table sites that are not in the worksheet")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    sites-sync compare --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"`)
	fmt.Println()
}

func (cmd *Compare) FlagSet() *flag.FlagSet {
	return cmd.flagset("compare")
}

func (cmd *Compare) Execute(args ...any) error {
	cfg, err := cmd.configure(args...)
	if err != nil {
		return err
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

	s, err := openStore(ctx, cfg, false)
	if err != nil {
		return err
	}

	defer s.Close()

	table, err := s.Sites(ctx)
	if err != nil {
		return err
	}

	diff := sites.Compare(sites.MapAll(records), table)

	report(os.Stdout, diff)

	return nil
}

func report(w io.Writer, diff sites.Diff) {
	section := func(title string, names []string) {
		fmt.Fprintf(w, "  %-10s %v\n", title, len(names))
		for _, name := range names {
			fmt.Fprintf(w, "    %v\n", name)
		}
	}

	fmt.Fprintln(w)
	section("added", diff.Added)
	section("updated", diff.Updated)
	fmt.Fprintf(w, "  %-10s %v\n", "unchanged", len(diff.Unchanged))
	section("missing", diff.Missing)

	if diff.Blank > 0 {
		fmt.Fprintf(w, "  %-10s %v\n", "blank", diff.Blank)
	}

	fmt.Fprintln(w)

	if !diff.Changed() {
		fmt.Fprintln(w, "  worksheet and table are in sync")
		fmt.Fprintln(w)
	}
}
