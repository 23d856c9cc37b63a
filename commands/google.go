package commands

import (
	"context"

	"golang.org/x/oauth2/google"

	"github.com/sitesync/sites-sync/sheet"
	"github.com/sitesync/sites-sync/syncer"
)

func openSheet(ctx context.Context, credentials *google.Credentials) (syncer.Source, error) {
	reader, err := sheet.NewReader(ctx, credentials)
	if err != nil {
		return nil, err
	}

	return reader, nil
}

// reuse opens the sheet with an existing reader.
func reuse(reader *sheet.Reader) syncer.Opener {
	return func(ctx context.Context, credentials *google.Credentials) (syncer.Source, error) {
		return reader, nil
	}
}
