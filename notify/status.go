// Package notify composes daily work-status messages and delivers them to a
// Telegram bot chat.
package notify

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	WorkDone    = "Work Done"
	WorkPlanned = "Work Planned"
	Issues      = "Issues"
)

// Categories are the fixed status categories offered by the form.
var Categories = []string{WorkDone, WorkPlanned, Issues}

var ErrEmptyStatus = errors.New("status text is required")

type Status struct {
	Site     string
	Labour   string
	Category string
	Text     string
	Date     time.Time
}

func (s Status) Validate() error {
	if strings.TrimSpace(s.Text) == "" {
		return ErrEmptyStatus
	}

	if !slices.Contains(Categories, s.Category) {
		return fmt.Errorf("invalid status category '%v'", s.Category)
	}

	return nil
}

// Message formats the status as plain text.
func (s Status) Message() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Daily status - %v\n", s.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Site: %v\n", orNone(s.Site))
	fmt.Fprintf(&b, "Labour: %v\n", orNone(s.Labour))
	fmt.Fprintf(&b, "%v:\n", s.Category)
	fmt.Fprintf(&b, "%v", strings.TrimSpace(s.Text))

	return b.String()
}

func orNone(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}

	return strings.TrimSpace(v)
}
