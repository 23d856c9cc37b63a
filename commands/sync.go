package commands

import (
	"context"
	"flag"
	"fmt"

	"github.com/sitesync/sites-sync/sheet"
	"github.com/sitesync/sites-sync/syncer"
)

var SyncCmd = Sync{
	command: newCommand(),

	dryrun:          false,
	continueOnError: false,
	ifChanged:       false,
}

// Sync copies the site worksheet into the sites table.
type Sync struct {
	command
	dryrun          bool
	continueOnError bool
	ifChanged       bool
}

func (cmd *Sync) Name() string {
	return "sync"
}

func (cmd *Sync) Description() string {
	return "Upserts the sites in a Google Sheets worksheet into the sites table"
}

func (cmd *Sync) Usage() string {
	return "[--url <url>] [--dryrun] [--continue-on-error] [--if-changed]"
}

func (cmd *Sync) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--env <file>] sync [options]\n", APP)
	fmt.Println()
	fmt.Println("  Reads every row of the 'Meta' worksheet and upserts it into the sites table, keyed on the site name.")
	fmt.Println("  The service account is taken from GOOGLE_SERVICE_ACCOUNT_B64, GOOGLE_SERVICE_ACCOUNT_JSON or")
	fmt.Println("  GOOGLE_SERVICE_ACCOUNT_FILE (in that order) and the table from DATABASE_URL or SUPABASE_URL/SUPABASE_KEY.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    sites-sync sync`)
	fmt.Println(`    sites-sync --debug sync --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" --dryrun`)
	fmt.Println()
}

func (cmd *Sync) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("sync")

	flagset.BoolVar(&cmd.dryrun, "dryrun", cmd.dryrun, "Logs the upserts without writing to the table")
	flagset.BoolVar(&cmd.continueOnError, "continue-on-error", cmd.continueOnError, "Attempts every row even if an upsert fails")
	flagset.BoolVar(&cmd.ifChanged, "if-changed", cmd.ifChanged, "Skips the sync if the spreadsheet has not changed since the last successful sync")

	return flagset
}

func (cmd *Sync) Execute(args ...any) error {
	cfg, err := cmd.configure(args...)
	if err != nil {
		return err
	}

	ctx := context.Background()

	credentials, err := authorise(ctx, cfg)
	if err != nil {
		return err
	}

	var latest *sheet.Version
	var open syncer.Opener

	if cmd.ifChanged {
		reader, err := sheet.NewReader(ctx, credentials)
		if err != nil {
			return err
		}

		open = reuse(reader)

		if latest, err = reader.Revision(ctx, cfg.SpreadsheetID); err != nil {
			return err
		}

		previous, err := sheet.LoadVersion(sheet.RevisionFile(cmd.workdir, cfg.SpreadsheetID))
		if err != nil {
			return err
		}

		if previous != nil && previous.Revision == latest.Revision {
			infof("Spreadsheet unchanged since last sync (revision %v)", latest)
			fmt.Printf("Synced 0 rows (spreadsheet unchanged)\n")
			return nil
		}
	}

	sink, err := openStore(ctx, cfg, cmd.dryrun)
	if err != nil {
		return err
	}

	defer sink.Close()

	s := newSyncer(credentials, open, sink, nil)
	options := syncer.Options{
		Spreadsheet:     cfg.SpreadsheetID,
		Worksheet:       cfg.Worksheet,
		ContinueOnError: cmd.continueOnError,
	}

	result, err := s.Run(ctx, options)
	if err != nil {
		if result.Synced > 0 {
			warnf("%v", result)
		}

		return err
	}

	infof("%v", result)

	if latest != nil && !cmd.dryrun {
		if err := sheet.SaveVersion(sheet.RevisionFile(cmd.workdir, cfg.SpreadsheetID), *latest); err != nil {
			warnf("could not record spreadsheet revision (%v)", err)
		}
	}

	fmt.Printf("Synced %v rows\n", result.Synced)

	return nil
}
