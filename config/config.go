// Package config builds the sites-sync runtime configuration from the process
// environment (optionally seeded from a .env file).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DEFAULT_WORKSHEET = "Meta"
	DEFAULT_TABLE     = "sites"
	DEFAULT_ENV_FILE  = ".env"
)

const (
	ENV_SERVICE_ACCOUNT_B64  = "GOOGLE_SERVICE_ACCOUNT_B64"
	ENV_SERVICE_ACCOUNT_JSON = "GOOGLE_SERVICE_ACCOUNT_JSON"
	ENV_SERVICE_ACCOUNT_FILE = "GOOGLE_SERVICE_ACCOUNT_FILE"
	ENV_SHEET_ID             = "SHEET_ID"
	ENV_SUPABASE_URL         = "SUPABASE_URL"
	ENV_SUPABASE_KEY         = "SUPABASE_KEY"
	ENV_DATABASE_URL         = "DATABASE_URL"
	ENV_TELEGRAM_TOKEN       = "TELEGRAM_BOT_TOKEN"
	ENV_TELEGRAM_CHAT        = "TELEGRAM_CHAT_ID"
)

var (
	ErrNoSpreadsheet = errors.New("no spreadsheet configured (set SHEET_ID or --url)")
	ErrNoSink        = errors.New("no table sink configured (set DATABASE_URL or SUPABASE_URL and SUPABASE_KEY)")
	ErrNoMessenger   = errors.New("no messaging bot configured (set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID)")
)

type SinkKind int

const (
	SinkNone SinkKind = iota
	SinkPostgres
	SinkSupabase
)

func (k SinkKind) String() string {
	switch k {
	case SinkPostgres:
		return "postgres"
	case SinkSupabase:
		return "supabase"
	default:
		return "none"
	}
}

// Credentials holds the three alternative service-account sources, in priority
// order.
type Credentials struct {
	Base64 string
	JSON   string
	File   string
}

type Supabase struct {
	URL string
	Key string
}

type Telegram struct {
	Token string
	Chat  string
}

type Config struct {
	Credentials   Credentials
	SpreadsheetID string
	Worksheet     string
	Table         string
	Supabase      Supabase
	DatabaseURL   string
	Telegram      Telegram
}

// Load seeds the process environment from the given .env files. Variables that
// are already set are left untouched. With no arguments a missing ./.env is not
// an error.
func Load(files ...string) error {
	if len(files) == 0 {
		if err := godotenv.Load(DEFAULT_ENV_FILE); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading %v (%w)", DEFAULT_ENV_FILE, err)
		}

		return nil
	}

	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("error loading %v (%w)", strings.Join(files, ","), err)
	}

	return nil
}

// FromEnv builds a Config using lookup to read each variable. Pass os.LookupEnv
// for the process environment.
func FromEnv(lookup func(string) (string, bool)) Config {
	get := func(key string) string {
		if v, ok := lookup(key); ok {
			return strings.TrimSpace(v)
		}

		return ""
	}

	return Config{
		Credentials: Credentials{
			Base64: get(ENV_SERVICE_ACCOUNT_B64),
			JSON:   get(ENV_SERVICE_ACCOUNT_JSON),
			File:   get(ENV_SERVICE_ACCOUNT_FILE),
		},
		SpreadsheetID: get(ENV_SHEET_ID),
		Worksheet:     DEFAULT_WORKSHEET,
		Table:         DEFAULT_TABLE,
		Supabase: Supabase{
			URL: get(ENV_SUPABASE_URL),
			Key: get(ENV_SUPABASE_KEY),
		},
		DatabaseURL: get(ENV_DATABASE_URL),
		Telegram: Telegram{
			Token: get(ENV_TELEGRAM_TOKEN),
			Chat:  get(ENV_TELEGRAM_CHAT),
		},
	}
}

// Environment is FromEnv(os.LookupEnv).
func Environment() Config {
	return FromEnv(os.LookupEnv)
}

// Sink returns the configured table sink. A database URL takes precedence over
// the Supabase REST endpoint.
func (c Config) Sink() (SinkKind, error) {
	switch {
	case c.DatabaseURL != "":
		return SinkPostgres, nil

	case c.Supabase.URL != "" && c.Supabase.Key != "":
		return SinkSupabase, nil

	default:
		return SinkNone, ErrNoSink
	}
}

// Validate checks the settings needed to read the spreadsheet.
func (c Config) Validate() error {
	if c.SpreadsheetID == "" {
		return ErrNoSpreadsheet
	}

	if strings.TrimSpace(c.Worksheet) == "" {
		return fmt.Errorf("invalid worksheet name '%v'", c.Worksheet)
	}

	if strings.TrimSpace(c.Table) == "" {
		return fmt.Errorf("invalid table name '%v'", c.Table)
	}

	return nil
}

// Messenger checks the messaging bot settings.
func (c Config) Messenger() error {
	if c.Telegram.Token == "" || c.Telegram.Chat == "" {
		return ErrNoMessenger
	}

	return nil
}

var spreadsheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)

// SpreadsheetFromURL extracts the spreadsheet ID from a Google Sheets URL.
func SpreadsheetFromURL(url string) (string, error) {
	match := spreadsheetURL.FindStringSubmatch(strings.TrimSpace(url))
	if len(match) < 2 || match[1] == "" {
		return "", fmt.Errorf("invalid spreadsheet URL - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'")
	}

	return match[1], nil
}
