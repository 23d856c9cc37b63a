package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitesync/sites-sync/sites"
)

func ptr(s string) *string {
	return &s
}

// table emulates a PostgREST table with a unique site_name column. A non-zero
// maxRows caps every response, like the server's max-rows setting.
type table struct {
	sync.Mutex
	rows    map[string]map[string]any
	maxRows int
	headers []http.Header
	queries []url.Values
}

func (tb *table) ServeHTTP(w http.ResponseWriter, rq *http.Request) {
	tb.Lock()
	defer tb.Unlock()

	tb.headers = append(tb.headers, rq.Header.Clone())
	tb.queries = append(tb.queries, rq.URL.Query())

	if rq.URL.Path != "/rest/v1/sites" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"42P01","message":"relation \"public.nowhere\" does not exist"}`))
		return
	}

	switch rq.Method {
	case http.MethodPost:
		row := map[string]any{}
		if err := json.NewDecoder(rq.Body).Decode(&row); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		key, _ := row["site_name"].(string)
		tb.rows[key] = row
		w.WriteHeader(http.StatusCreated)

	case http.MethodGet:
		keys := []string{}
		for k := range tb.rows {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		offset, _ := strconv.Atoi(rq.URL.Query().Get("offset"))
		limit, err := strconv.Atoi(rq.URL.Query().Get("limit"))
		if err != nil {
			limit = len(keys)
		}

		if tb.maxRows > 0 && limit > tb.maxRows {
			limit = tb.maxRows
		}

		list := []map[string]any{}
		for i := offset; i < len(keys) && i < offset+limit; i++ {
			list = append(list, tb.rows[keys[i]])
		}

		if len(list) > 0 {
			w.Header().Set("Content-Range", fmt.Sprintf("%v-%v/%v", offset, offset+len(list)-1, len(keys)))
		} else {
			w.Header().Set("Content-Range", fmt.Sprintf("*/%v", len(keys)))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTable(t *testing.T) (*table, *httptest.Server) {
	tb := &table{
		rows: map[string]map[string]any{},
	}

	srv := httptest.NewServer(tb)
	t.Cleanup(srv.Close)

	return tb, srv
}

func TestSupabaseUpsertOverwrites(t *testing.T) {
	tb, srv := newTable(t)
	s := NewSupabase(srv.URL+"/", "secret", "sites")

	defer s.Close()

	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, sites.Site{SiteName: ptr("A"), ClientName: ptr("Alice")}))
	require.NoError(t, s.Upsert(ctx, sites.Site{SiteName: ptr("A"), ClientName: ptr("Alicia")}))

	list, err := s.Sites(ctx)

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].Name())
	assert.Equal(t, "Alicia", *list[0].ClientName)

	require.NotEmpty(t, tb.headers)
	h := tb.headers[0]
	assert.Equal(t, "secret", h.Get("apikey"))
	assert.Equal(t, "Bearer secret", h.Get("Authorization"))
	assert.Contains(t, h.Get("Prefer"), "resolution=merge-duplicates")
	assert.Equal(t, "site_name", tb.queries[0].Get("on_conflict"))
}

func TestSupabaseUpsertSendsNulls(t *testing.T) {
	tb, srv := newTable(t)
	s := NewSupabase(srv.URL, "secret", "sites")

	require.NoError(t, s.Upsert(context.Background(), sites.Site{SiteName: ptr("A")}))

	row := tb.rows["A"]
	for _, c := range sites.Columns {
		v, ok := row[c]

		assert.True(t, ok, "missing column %v", c)
		if c != "site_name" {
			assert.Nil(t, v, "column %v", c)
		}
	}
}

func TestSupabaseSitesPages(t *testing.T) {
	tb, srv := newTable(t)
	tb.maxRows = 3

	for _, k := range []string{"E", "D", "C", "B", "A"} {
		tb.rows[k] = map[string]any{"site_name": k}
	}

	s := NewSupabase(srv.URL, "secret", "sites")
	s.page = 2

	list, err := s.Sites(context.Background())

	require.NoError(t, err)

	names := []string{}
	for _, v := range list {
		names = append(names, v.Name())
	}

	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, names)
	require.Len(t, tb.queries, 3)
	assert.Equal(t, "0", tb.queries[0].Get("offset"))
	assert.Equal(t, "2", tb.queries[0].Get("limit"))
	assert.Equal(t, "4", tb.queries[2].Get("offset"))
}

func TestSupabaseSitesPagesPastMaxRows(t *testing.T) {
	tb, srv := newTable(t)
	tb.maxRows = 1

	for _, k := range []string{"C", "B", "A"} {
		tb.rows[k] = map[string]any{"site_name": k}
	}

	s := NewSupabase(srv.URL, "secret", "sites")
	s.page = 2

	list, err := s.Sites(context.Background())

	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestSupabaseError(t *testing.T) {
	_, srv := newTable(t)
	s := NewSupabase(srv.URL, "secret", "nowhere")

	err := s.Upsert(context.Background(), sites.Site{SiteName: ptr("A")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "42P01")

	_, err = s.Sites(context.Background())
	assert.Error(t, err)
}

func TestSupabaseErrorWithPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, rq *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))

	defer srv.Close()

	s := NewSupabase(srv.URL, "secret", "sites")
	err := s.Upsert(context.Background(), sites.Site{SiteName: ptr("A")})

	assert.Error(t, err)
}

func TestSupabaseWithCancelledContext(t *testing.T) {
	tb, srv := newTable(t)
	s := NewSupabase(srv.URL, "secret", "sites")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Upsert(ctx, sites.Site{SiteName: ptr("A")}), context.Canceled)
	assert.Empty(t, tb.headers)
}
