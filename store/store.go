// Package store implements the table sinks that site records are upserted into.
package store

import (
	"context"

	"github.com/sitesync/sites-sync/sites"
)

// Conflict is the unique column used to resolve upserts.
const Conflict = "site_name"

// Store is a table of sites keyed on site_name.
type Store interface {
	// Upsert inserts the site or overwrites the row with the same site_name.
	Upsert(ctx context.Context, site sites.Site) error

	// Sites returns every row in the table, ordered by site_name.
	Sites(ctx context.Context) ([]sites.Site, error)

	Close()
}
