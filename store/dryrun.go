package store

import (
	"context"

	"github.com/sitesync/sites-sync/logging"
	"github.com/sitesync/sites-sync/sites"
)

// DryRun logs upserts instead of writing them. Reads are delegated to the
// wrapped store if there is one.
type DryRun struct {
	Store Store
}

func (d DryRun) Upsert(ctx context.Context, site sites.Site) error {
	logging.Infof("dryrun", "upsert %v", site)

	return nil
}

func (d DryRun) Sites(ctx context.Context) ([]sites.Site, error) {
	if d.Store == nil {
		return []sites.Site{}, nil
	}

	return d.Store.Sites(ctx)
}

func (d DryRun) Close() {
	if d.Store != nil {
		d.Store.Close()
	}
}
