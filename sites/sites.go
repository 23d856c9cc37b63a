// Package sites defines the site record synchronised from the 'Meta' worksheet
// and the mapping from raw worksheet rows to that record.
package sites

import (
	"fmt"
	"strings"
	"time"
)

// Worksheet column headers.
const (
	SiteName       = "Site Name"
	ClientName     = "Client Name"
	ClientEmail    = "Client Email"
	ClientWhatsApp = "Client WhatsApp"
	LabourName     = "Labour Name"
	LabourEmail    = "Labour Email"
	LabourWhatsApp = "Labour WhatsApp"

	// Alternative spelling accepted for the key column.
	SiteNameAlt = "site_name"
)

// Columns are the target table columns, in table order.
var Columns = []string{
	"site_name",
	"client_name",
	"client_email",
	"client_whatsapp",
	"labour_name",
	"labour_email",
	"labour_whatsapp",
	"updated_at",
}

// Record is one worksheet row keyed by column header.
type Record map[string]any

// Site is the payload written to the 'sites' table. A nil field is unset and is
// written as NULL.
type Site struct {
	SiteName       *string    `json:"site_name"`
	ClientName     *string    `json:"client_name"`
	ClientEmail    *string    `json:"client_email"`
	ClientWhatsApp *string    `json:"client_whatsapp"`
	LabourName     *string    `json:"labour_name"`
	LabourEmail    *string    `json:"labour_email"`
	LabourWhatsApp *string    `json:"labour_whatsapp"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

// Map converts a worksheet record to a Site. 'Site Name' is preferred over
// 'site_name' unless it is missing or blank. updated_at is always unset.
func Map(r Record) Site {
	name := lookup(r, SiteName)
	if name == nil || *name == "" {
		name = lookup(r, SiteNameAlt)
	}

	return Site{
		SiteName:       name,
		ClientName:     lookup(r, ClientName),
		ClientEmail:    lookup(r, ClientEmail),
		ClientWhatsApp: lookup(r, ClientWhatsApp),
		LabourName:     lookup(r, LabourName),
		LabourEmail:    lookup(r, LabourEmail),
		LabourWhatsApp: lookup(r, LabourWhatsApp),
		UpdatedAt:      nil,
	}
}

// MapAll maps every record, preserving order.
func MapAll(records []Record) []Site {
	list := make([]Site, 0, len(records))
	for _, r := range records {
		list = append(list, Map(r))
	}

	return list
}

// Name returns the site name, or "" if unset.
func (s Site) Name() string {
	return deref(s.SiteName)
}

// Blank is true for sites without a usable key.
func (s Site) Blank() bool {
	return strings.TrimSpace(s.Name()) == ""
}

// Values returns the column values in Columns order, with unset fields as "".
func (s Site) Values() []string {
	updated := ""
	if s.UpdatedAt != nil {
		updated = s.UpdatedAt.Format(time.RFC3339)
	}

	return []string{
		deref(s.SiteName),
		deref(s.ClientName),
		deref(s.ClientEmail),
		deref(s.ClientWhatsApp),
		deref(s.LabourName),
		deref(s.LabourEmail),
		deref(s.LabourWhatsApp),
		updated,
	}
}

// Equal compares everything except updated_at, which the table manages.
func (s Site) Equal(t Site) bool {
	return same(s.SiteName, t.SiteName) &&
		same(s.ClientName, t.ClientName) &&
		same(s.ClientEmail, t.ClientEmail) &&
		same(s.ClientWhatsApp, t.ClientWhatsApp) &&
		same(s.LabourName, t.LabourName) &&
		same(s.LabourEmail, t.LabourEmail) &&
		same(s.LabourWhatsApp, t.LabourWhatsApp)
}

func (s Site) String() string {
	return fmt.Sprintf("%q (client:%q labour:%q)", s.Name(), deref(s.ClientName), deref(s.LabourName))
}

func lookup(r Record, key string) *string {
	v, ok := r[key]
	if !ok || v == nil {
		return nil
	}

	if s, ok := v.(string); ok {
		return &s
	}

	s := fmt.Sprintf("%v", v)

	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func same(p, q *string) bool {
	if p == nil || q == nil {
		return p == nil && q == nil
	}

	return *p == *q
}
