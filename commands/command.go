package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"

	"github.com/sitesync/sites-sync/config"
	"github.com/sitesync/sites-sync/credentials"
	"github.com/sitesync/sites-sync/logging"
	"github.com/sitesync/sites-sync/sheet"
	"github.com/sitesync/sites-sync/store"
	"github.com/sitesync/sites-sync/syncer"
)

const APP = "sites-sync"

// Options are the global command line options.
type Options struct {
	Debug bool
	Env   string
}

// command holds the options shared by the commands that read the worksheet.
type command struct {
	workdir     string
	credentials string
	url         string
	worksheet   string
	table       string
	debug       bool
}

func newCommand() command {
	return command{
		workdir:     DEFAULT_WORKDIR,
		credentials: "",
		url:         "",
		worksheet:   config.DEFAULT_WORKSHEET,
		table:       config.DEFAULT_TABLE,
		debug:       false,
	}
}

func (c *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&c.workdir, "workdir", c.workdir, "Directory for working files (revisions, etc)")
	flagset.StringVar(&c.credentials, "credentials", c.credentials, "Path for the service account 'credentials.json' file. Overrides GOOGLE_SERVICE_ACCOUNT_FILE but not GOOGLE_SERVICE_ACCOUNT_B64 or GOOGLE_SERVICE_ACCOUNT_JSON")
	flagset.StringVar(&c.url, "url", c.url, "Spreadsheet URL. Overrides SHEET_ID")
	flagset.StringVar(&c.worksheet, "worksheet", c.worksheet, "Worksheet with the site list")
	flagset.StringVar(&c.table, "table", c.table, "Table to upsert the sites into")

	return flagset
}

// configure loads the environment and applies the command line overrides.
func (c *command) configure(args ...any) (config.Config, error) {
	options := Options{}
	if len(args) > 0 {
		if opt, ok := args[0].(*Options); ok && opt != nil {
			options = *opt
		}
	}

	c.debug = options.Debug
	logging.SetDebug(c.debug)

	if options.Env != "" {
		if err := config.Load(options.Env); err != nil {
			return config.Config{}, err
		}
	} else if err := config.Load(); err != nil {
		return config.Config{}, err
	}

	cfg := config.Environment()

	if strings.TrimSpace(c.credentials) != "" {
		cfg.Credentials.File = strings.TrimSpace(c.credentials)

		if v := masked(cfg.Credentials); v != "" {
			warnf("--credentials ignored: %v is set and takes priority", v)
		}
	}

	if strings.TrimSpace(c.url) != "" {
		id, err := config.SpreadsheetFromURL(c.url)
		if err != nil {
			return cfg, err
		}

		cfg.SpreadsheetID = id
	}

	cfg.Worksheet = strings.TrimSpace(c.worksheet)
	cfg.Table = strings.TrimSpace(c.table)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	if c.debug {
		debugf("Spreadsheet - ID:%s  worksheet:%s  table:%s", cfg.SpreadsheetID, cfg.Worksheet, cfg.Table)
	}

	return cfg, nil
}

// masked returns the environment variable that takes priority over a service
// account file, if any.
func masked(c config.Credentials) string {
	switch {
	case strings.TrimSpace(c.Base64) != "":
		return config.ENV_SERVICE_ACCOUNT_B64

	case strings.TrimSpace(c.JSON) != "":
		return config.ENV_SERVICE_ACCOUNT_JSON

	default:
		return ""
	}
}

// authorise resolves the service account credentials. It makes no network calls
// and must run before anything that does.
func authorise(ctx context.Context, cfg config.Config) (*google.Credentials, error) {
	c, err := credentials.Credentials(ctx, cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("authentication/authorization error (%w)", err)
	}

	return c, nil
}

// openStore connects to the configured sink. A dry run wraps the sink if there
// is one, and otherwise runs without one.
func openStore(ctx context.Context, cfg config.Config, dryrun bool) (store.Store, error) {
	kind, err := cfg.Sink()
	if err != nil && !dryrun {
		return nil, err
	}

	var s store.Store

	switch kind {
	case config.SinkPostgres:
		if s, err = store.NewPostgres(ctx, cfg.DatabaseURL, cfg.Table); err != nil {
			return nil, err
		}

	case config.SinkSupabase:
		s = store.NewSupabase(cfg.Supabase.URL, cfg.Supabase.Key, cfg.Table)
	}

	if dryrun {
		return store.DryRun{Store: s}, nil
	}

	return s, nil
}

// newSyncer builds a syncer that reads with already resolved credentials. A nil
// opener opens a new sheet reader.
func newSyncer(c *google.Credentials, open syncer.Opener, sink syncer.Upserter, metrics *syncer.Metrics) *syncer.Syncer {
	if open == nil {
		open = openSheet
	}

	return &syncer.Syncer{
		Resolve: func(ctx context.Context) (*google.Credentials, error) {
			return c, nil
		},
		Open:    open,
		Sink:    sink,
		Metrics: metrics,
	}
}

func helpOptions(flagset *flag.FlagSet) {
	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})

	fmt.Println()
	fmt.Println("  Options:")
	fmt.Println()
	fmt.Println("    --debug         Displays internal information for diagnosing errors")
	fmt.Println("    --env <file>    Loads environment variables from <file> (defaults to ./.env if it exists)")
}

func debugf(format string, args ...any) {
	logging.Debugf(APP, format, args...)
}

func infof(format string, args ...any) {
	logging.Infof(APP, format, args...)
}

func warnf(format string, args ...any) {
	logging.Warnf(APP, format, args...)
}

// Ensures the sheet reader satisfies the sync source contract.
var _ syncer.Source = (*sheet.Reader)(nil)
