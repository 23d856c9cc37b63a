// Package sheet reads the site worksheet from Google Sheets and tracks the
// spreadsheet revision via Google Drive.
package sheet

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/sitesync/sites-sync/sites"
)

type Reader struct {
	sheets *sheets.Service
	drive  *drive.Service
}

// NewReader creates Sheets and Drive clients authorised with the service
// account credentials.
func NewReader(ctx context.Context, credentials *google.Credentials) (*Reader, error) {
	return NewReaderWithOptions(ctx, option.WithCredentials(credentials))
}

func NewReaderWithOptions(ctx context.Context, opts ...option.ClientOption) (*Reader, error) {
	s, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Google Sheets client (%w)", err)
	}

	d, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Google Drive client (%w)", err)
	}

	return &Reader{
		sheets: s,
		drive:  d,
	}, nil
}

// Rows returns the raw cell values of a worksheet, header row included.
func (r *Reader) Rows(ctx context.Context, spreadsheet string, worksheet string) ([][]any, error) {
	response, err := r.sheets.Spreadsheets.Values.
		Get(spreadsheet, quote(worksheet)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve data from worksheet '%v' (%w)", worksheet, err)
	}

	return response.Values, nil
}

// Records returns every row of the worksheet after the header as a record keyed
// by column header.
func (r *Reader) Records(ctx context.Context, spreadsheet string, worksheet string) ([]sites.Record, error) {
	rows, err := r.Rows(ctx, spreadsheet, worksheet)
	if err != nil {
		return nil, err
	}

	return sites.Records(rows)
}

func quote(worksheet string) string {
	return fmt.Sprintf("'%s'", strings.ReplaceAll(worksheet, "'", "''"))
}
