package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/supabase-community/postgrest-go"

	"github.com/sitesync/sites-sync/sites"
)

// PAGE is the number of rows fetched per request. Supabase caps responses at
// 1000 rows by default.
const PAGE = 1000

// Supabase writes to a table through the project's PostgREST endpoint.
type Supabase struct {
	client *postgrest.Client
	table  string
	page   int
}

func NewSupabase(endpoint string, key string, table string) *Supabase {
	headers := map[string]string{
		"apikey":        key,
		"Authorization": fmt.Sprintf("Bearer %v", key),
	}

	return &Supabase{
		client: postgrest.NewClient(strings.TrimRight(endpoint, "/")+"/rest/v1", "public", headers),
		table:  table,
		page:   PAGE,
	}
}

func (s *Supabase) Upsert(ctx context.Context, site sites.Site) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	if _, _, err := s.client.From(s.table).Upsert(site, Conflict, "minimal", "").Execute(); err != nil {
		return fmt.Errorf("supabase: %w", err)
	}

	return nil
}

// Sites pages through the table until a short page comes back and every row
// in the exact count has been read.
func (s *Supabase) Sites(ctx context.Context) ([]sites.Site, error) {
	list := []sites.Site{}
	columns := strings.Join(sites.Columns, ",")

	for offset := 0; ; {
		if err := s.ready(ctx); err != nil {
			return nil, err
		}

		page := []sites.Site{}
		count, err := s.client.From(s.table).
			Select(columns, "exact", false).
			Order(Conflict, &postgrest.OrderOpts{Ascending: true}).
			Range(offset, offset+s.page-1, "").
			ExecuteTo(&page)
		if err != nil {
			return nil, fmt.Errorf("supabase: %v (%w)", s.table, err)
		}

		list = append(list, page...)
		offset += len(page)

		if len(page) == 0 || (len(page) < s.page && offset >= int(count)) {
			break
		}
	}

	return list, nil
}

func (s *Supabase) Close() {
}

func (s *Supabase) ready(ctx context.Context) error {
	if s.client.ClientError != nil {
		return fmt.Errorf("supabase: %w", s.client.ClientError)
	}

	return ctx.Err()
}
