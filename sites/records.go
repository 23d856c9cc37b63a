package sites

import (
	"fmt"
	"strings"
)

// Records converts worksheet rows to records, using the first row as the
// header. Short rows are padded with "" and cells beyond the header are
// ignored, as are columns with a blank header.
func Records(rows [][]any) ([]Record, error) {
	if len(rows) == 0 {
		return []Record{}, nil
	}

	// .. build index
	header := map[int]string{}
	seen := map[string]bool{}
	for i, v := range rows[0] {
		k := strings.TrimSpace(fmt.Sprintf("%v", v))
		if k == "" {
			continue
		}

		if seen[k] {
			return nil, fmt.Errorf("duplicate column name '%s'", k)
		}

		seen[k] = true
		header[i] = k
	}

	// ... records
	records := []Record{}
	for _, row := range rows[1:] {
		record := Record{}
		for i, k := range header {
			if i < len(row) && row[i] != nil {
				record[k] = row[i]
			} else {
				record[k] = ""
			}
		}

		records = append(records, record)
	}

	return records, nil
}
