package sites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords(t *testing.T) {
	rows := [][]any{
		{"Site Name", "Client Name", "", "Labour Name"},
		{"A", "Alice", "ignored", "Bob"},
		{"B"},
		{"C", "Carol", "x", "Dave", "extra"},
	}

	records, err := Records(rows)

	require.NoError(t, err)
	assert.Equal(t, []Record{
		{"Site Name": "A", "Client Name": "Alice", "Labour Name": "Bob"},
		{"Site Name": "B", "Client Name": "", "Labour Name": ""},
		{"Site Name": "C", "Client Name": "Carol", "Labour Name": "Dave"},
	}, records)
}

func TestRecordsWithEmptySheet(t *testing.T) {
	records, err := Records([][]any{})

	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = Records([][]any{{"Site Name", "Client Name"}})

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordsWithDuplicatedColumn(t *testing.T) {
	_, err := Records([][]any{
		{"Site Name", "Client Name", "Site Name"},
		{"A", "Alice", "B"},
	})

	assert.Error(t, err)
}

func TestRecordsThenMap(t *testing.T) {
	records, err := Records([][]any{
		{"site_name", "Client Email", "Labour WhatsApp"},
		{"Depot", "ops@example.com", "+27820000003"},
	})

	require.NoError(t, err)
	require.Len(t, records, 1)

	site := Map(records[0])

	assert.Equal(t, "Depot", site.Name())
	assert.Equal(t, "ops@example.com", *site.ClientEmail)
	assert.Equal(t, "+27820000003", *site.LabourWhatsApp)
	assert.Nil(t, site.ClientName)
	assert.Nil(t, site.UpdatedAt)
}
