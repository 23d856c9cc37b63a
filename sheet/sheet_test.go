package sheet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/sitesync/sites-sync/sites"
)

const spreadsheet = "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"

func newTestReader(t *testing.T, handler http.HandlerFunc) *Reader {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	r, err := NewReaderWithOptions(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))

	require.NoError(t, err)

	return r
}

func reply(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestRecords(t *testing.T) {
	var path string

	r := newTestReader(t, func(w http.ResponseWriter, rq *http.Request) {
		path = rq.URL.Path

		reply(w, map[string]any{
			"range":          "Meta!A1:G3",
			"majorDimension": "ROWS",
			"values": [][]string{
				{"Site Name", "Client Name", "Labour Name"},
				{"Harbour View", "Alice", "Bob"},
				{"Depot"},
			},
		})
	})

	records, err := r.Records(context.Background(), spreadsheet, "Meta")

	require.NoError(t, err)
	assert.Equal(t, "/v4/spreadsheets/"+spreadsheet+"/values/'Meta'", path)
	assert.Equal(t, []sites.Record{
		{"Site Name": "Harbour View", "Client Name": "Alice", "Labour Name": "Bob"},
		{"Site Name": "Depot", "Client Name": "", "Labour Name": ""},
	}, records)
}

func TestRecordsWithMissingWorksheet(t *testing.T) {
	r := newTestReader(t, func(w http.ResponseWriter, rq *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"Unable to parse range: 'Meta'","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := r.Records(context.Background(), spreadsheet, "Meta")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to parse range")
}

func TestRevision(t *testing.T) {
	calls := 0
	r := newTestReader(t, func(w http.ResponseWriter, rq *http.Request) {
		calls++

		if !strings.HasSuffix(rq.URL.Path, "/files/"+spreadsheet+"/revisions") {
			http.NotFound(w, rq)
			return
		}

		if rq.URL.Query().Get("pageToken") == "" {
			reply(w, map[string]any{
				"nextPageToken": "page2",
				"revisions": []map[string]string{
					{"id": "101", "modifiedTime": "2024-03-01T10:00:00.000Z"},
					{"id": "103", "modifiedTime": "2024-03-03T10:00:00.000Z"},
				},
			})
		} else {
			reply(w, map[string]any{
				"revisions": []map[string]string{
					{"id": "102", "modifiedTime": "2024-03-02T10:00:00.000Z"},
				},
			})
		}
	})

	v, err := r.Revision(context.Background(), spreadsheet)

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "103", v.Revision)
	assert.Equal(t, time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC), v.Modified.UTC())
}

func TestRevisionWithNoRevisions(t *testing.T) {
	r := newTestReader(t, func(w http.ResponseWriter, rq *http.Request) {
		reply(w, map[string]any{"revisions": []any{}})
	})

	_, err := r.Revision(context.Background(), spreadsheet)

	assert.Error(t, err)
}

func TestVersionFile(t *testing.T) {
	file := RevisionFile(t.TempDir(), spreadsheet)

	v, err := LoadVersion(file)
	require.NoError(t, err)
	assert.Nil(t, v)

	expected := Version{
		Revision: "103",
		Modified: time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, SaveVersion(file, expected))

	v, err = LoadVersion(file)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, expected.Revision, v.Revision)
	assert.True(t, expected.Modified.Equal(v.Modified))
	assert.Equal(t, filepath.Join("sheets", spreadsheet+".revision"), filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file)))
}
