// Package credentials resolves the Google service-account identity used to read
// the spreadsheet, trying each configured source in priority order.
package credentials

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"

	"github.com/sitesync/sites-sync/config"
)

const (
	SHEETS         = "https://www.googleapis.com/auth/spreadsheets"
	DRIVE_METADATA = "https://www.googleapis.com/auth/drive.metadata.readonly"
)

// Scopes are attached to every resolved credential.
var Scopes = []string{SHEETS, DRIVE_METADATA}

var ErrNoCredentials = fmt.Errorf("no Google service account configured (set one of %v, %v or %v)",
	config.ENV_SERVICE_ACCOUNT_B64,
	config.ENV_SERVICE_ACCOUNT_JSON,
	config.ENV_SERVICE_ACCOUNT_FILE)

// Provider is one credential source. Load returns ok=false if the source is not
// configured, in which case the next provider is tried.
type Provider struct {
	Name string
	Load func() (data []byte, ok bool, err error)
}

// Providers returns the configured sources in priority order: base64 blob, raw
// JSON, file path.
func Providers(c config.Credentials) []Provider {
	return []Provider{
		FromBase64(c.Base64),
		FromJSON(c.JSON),
		FromFile(c.File),
	}
}

func FromBase64(blob string) Provider {
	return Provider{
		Name: config.ENV_SERVICE_ACCOUNT_B64,
		Load: func() ([]byte, bool, error) {
			if strings.TrimSpace(blob) == "" {
				return nil, false, nil
			}

			b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(blob))
			if err != nil {
				return nil, true, fmt.Errorf("invalid base64 service account (%w)", err)
			}

			return b, true, nil
		},
	}
}

func FromJSON(raw string) Provider {
	return Provider{
		Name: config.ENV_SERVICE_ACCOUNT_JSON,
		Load: func() ([]byte, bool, error) {
			if strings.TrimSpace(raw) == "" {
				return nil, false, nil
			}

			return []byte(raw), true, nil
		},
	}
}

func FromFile(path string) Provider {
	return Provider{
		Name: config.ENV_SERVICE_ACCOUNT_FILE,
		Load: func() ([]byte, bool, error) {
			if strings.TrimSpace(path) == "" {
				return nil, false, nil
			}

			b, err := os.ReadFile(path)
			if err != nil {
				return nil, true, err
			}

			return b, true, nil
		},
	}
}

// Resolve returns the service account JSON from the first configured provider,
// along with that provider's name. A provider that is configured but fails does
// not fall through to the next one.
func Resolve(providers ...Provider) ([]byte, string, error) {
	for _, p := range providers {
		b, ok, err := p.Load()
		if err != nil {
			return nil, p.Name, fmt.Errorf("%v: %w", p.Name, err)
		} else if !ok {
			continue
		}

		if err := validate(b); err != nil {
			return nil, p.Name, fmt.Errorf("%v: %w", p.Name, err)
		}

		return b, p.Name, nil
	}

	return nil, "", ErrNoCredentials
}

// Credentials resolves the service account and parses it into scoped Google
// credentials. Nothing is fetched from the network here: tokens are minted on
// first use.
func Credentials(ctx context.Context, c config.Credentials) (*google.Credentials, error) {
	b, _, err := Resolve(Providers(c)...)
	if err != nil {
		return nil, err
	}

	credentials, err := google.CredentialsFromJSON(ctx, b, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid service account credentials (%w)", err)
	}

	return credentials, nil
}

func validate(b []byte) error {
	account := struct {
		Type        string `json:"type"`
		ClientEmail string `json:"client_email"`
		PrivateKey  string `json:"private_key"`
	}{}

	if err := json.Unmarshal(b, &account); err != nil {
		return fmt.Errorf("invalid service account JSON (%w)", err)
	}

	switch {
	case account.Type != "service_account":
		return fmt.Errorf("expected 'service_account' credentials, got '%v'", account.Type)

	case account.ClientEmail == "":
		return errors.New("service account is missing 'client_email'")

	case account.PrivateKey == "":
		return errors.New("service account is missing 'private_key'")
	}

	return nil
}
