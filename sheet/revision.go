package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Version identifies a spreadsheet revision.
type Version struct {
	Revision string    `json:"revision"`
	Modified time.Time `json:"modified"`
}

func (v Version) String() string {
	return fmt.Sprintf("%v (%v)", v.Revision, v.Modified.Format("2006-01-02 15:04:05"))
}

// Revision returns the most recently modified revision of the spreadsheet.
func (r *Reader) Revision(ctx context.Context, spreadsheet string) (*Version, error) {
	page := ""
	latest := Version{}

	for {
		call := r.drive.Revisions.List(spreadsheet).
			Fields("nextPageToken", "revisions(id,modifiedTime)").
			Context(ctx)

		if page != "" {
			call.PageToken(page)
		}

		revisions, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve revisions for spreadsheet %v (%w)", spreadsheet, err)
		}

		for _, revision := range revisions.Revisions {
			datetime, err := time.Parse(time.RFC3339Nano, revision.ModifiedTime)
			if err != nil {
				return nil, err
			}

			if latest.Modified.Before(datetime) {
				latest.Revision = revision.Id
				latest.Modified = datetime
			}
		}

		if page = revisions.NextPageToken; page == "" {
			break
		}
	}

	if latest.Modified.IsZero() {
		return nil, fmt.Errorf("unable to identify latest revision for spreadsheet %s", spreadsheet)
	}

	return &latest, nil
}

// RevisionFile is where the last synchronised revision of a spreadsheet is kept.
func RevisionFile(workdir string, spreadsheet string) string {
	return filepath.Join(workdir, "sheets", fmt.Sprintf("%s.revision", spreadsheet))
}

// LoadVersion returns the recorded version, or nil if none has been recorded.
func LoadVersion(file string) (*Version, error) {
	b, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var v Version
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("invalid revision file %v (%w)", file, err)
	}

	return &v, nil
}

// SaveVersion records a version, replacing the file atomically.
func SaveVersion(file string, v Version) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "revision")
	if err != nil {
		return err
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), file)
}
