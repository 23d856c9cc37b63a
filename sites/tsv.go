package sites

import (
	"encoding/csv"
	"io"
)

// WriteTSV writes the sites as tab separated values with a header row of table
// column names.
func WriteTSV(f io.Writer, list []Site) error {
	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(Columns); err != nil {
		return err
	}

	for _, s := range list {
		if err := w.Write(s.Values()); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}
