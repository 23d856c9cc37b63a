package sites

import (
	"sort"
)

// Diff summarises what an upsert of a worksheet would change in the table.
// Missing lists table sites that are not in the worksheet; a sync never removes
// them.
type Diff struct {
	Added     []string
	Updated   []string
	Unchanged []string
	Missing   []string
	Blank     int
}

// Compare diffs the worksheet sites against the table. Where a site name occurs
// more than once in the worksheet the last occurrence wins, as it would for a
// sequence of upserts.
func Compare(sheet []Site, table []Site) Diff {
	diff := Diff{
		Added:     []string{},
		Updated:   []string{},
		Unchanged: []string{},
		Missing:   []string{},
	}

	current := map[string]Site{}
	for _, s := range table {
		current[s.Name()] = s
	}

	latest := map[string]Site{}
	for _, s := range sheet {
		if s.Blank() {
			diff.Blank++
			continue
		}

		latest[s.Name()] = s
	}

	for name, s := range latest {
		if t, ok := current[name]; !ok {
			diff.Added = append(diff.Added, name)
		} else if !s.Equal(t) {
			diff.Updated = append(diff.Updated, name)
		} else {
			diff.Unchanged = append(diff.Unchanged, name)
		}
	}

	for name := range current {
		if _, ok := latest[name]; !ok {
			diff.Missing = append(diff.Missing, name)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Updated)
	sort.Strings(diff.Unchanged)
	sort.Strings(diff.Missing)

	return diff
}

// Changed is true if a sync would write anything new.
func (d Diff) Changed() bool {
	return len(d.Added) > 0 || len(d.Updated) > 0
}
