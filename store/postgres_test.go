package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitesync/sites-sync/sites"
)

func TestUpsertSQL(t *testing.T) {
	expected := `INSERT INTO "sites" ("site_name", "client_name", "client_email", "client_whatsapp", "labour_name", "labour_email", "labour_whatsapp", "updated_at") ` +
		`VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ` +
		`ON CONFLICT ("site_name") DO UPDATE SET "client_name" = EXCLUDED."client_name", "client_email" = EXCLUDED."client_email", "client_whatsapp" = EXCLUDED."client_whatsapp", ` +
		`"labour_name" = EXCLUDED."labour_name", "labour_email" = EXCLUDED."labour_email", "labour_whatsapp" = EXCLUDED."labour_whatsapp", "updated_at" = EXCLUDED."updated_at"`

	assert.Equal(t, expected, upsertSQL("sites"))
}

func TestSelectSQL(t *testing.T) {
	expected := `SELECT "site_name", "client_name", "client_email", "client_whatsapp", "labour_name", "labour_email", "labour_whatsapp", "updated_at" FROM "public"."sites" ORDER BY "site_name"`

	assert.Equal(t, expected, selectSQL("public.sites"))
}

// Runs against a real database if SITES_SYNC_TEST_DATABASE_URL is set. The
// database is expected to have a 'sites' table with a unique site_name.
func TestPostgresUpsert(t *testing.T) {
	url := os.Getenv("SITES_SYNC_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SITES_SYNC_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	p, err := NewPostgres(ctx, url, "sites")
	require.NoError(t, err)

	defer p.Close()

	name := "sites-sync test site"

	require.NoError(t, p.Upsert(ctx, sites.Site{SiteName: &name, ClientName: ptr("first")}))
	require.NoError(t, p.Upsert(ctx, sites.Site{SiteName: &name, ClientName: ptr("second")}))

	list, err := p.Sites(ctx)
	require.NoError(t, err)

	found := 0
	for _, s := range list {
		if s.Name() == name {
			found++
			assert.Equal(t, "second", *s.ClientName)
			assert.Nil(t, s.UpdatedAt)
		}
	}

	assert.Equal(t, 1, found)

	_, err = p.pool.Exec(ctx, `DELETE FROM sites WHERE site_name = $1`, name)
	assert.NoError(t, err)
}
