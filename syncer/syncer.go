// Package syncer runs one synchronisation of the site worksheet into the sites
// table: resolve credentials, read the worksheet, map each row and upsert it.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2/google"

	"github.com/sitesync/sites-sync/logging"
	"github.com/sitesync/sites-sync/sites"
)

const tag = "sync"

// Resolver produces the credentials used to open the worksheet.
type Resolver func(ctx context.Context) (*google.Credentials, error)

// Opener creates a worksheet source authorised with the credentials.
type Opener func(ctx context.Context, credentials *google.Credentials) (Source, error)

type Source interface {
	Records(ctx context.Context, spreadsheet string, worksheet string) ([]sites.Record, error)
}

type Upserter interface {
	Upsert(ctx context.Context, site sites.Site) error
}

type Options struct {
	Spreadsheet string
	Worksheet   string

	// ContinueOnError attempts every record and reports all failures, instead
	// of stopping at the first one.
	ContinueOnError bool
}

type Syncer struct {
	Resolve Resolver
	Open    Opener
	Sink    Upserter
	Metrics *Metrics
}

// UpsertError identifies the record that could not be written.
type UpsertError struct {
	Index int
	Site  string
	Err   error
}

func (e *UpsertError) Error() string {
	return fmt.Sprintf("upsert of record %v (site %q) failed (%v)", e.Index+1, e.Site, e.Err)
}

func (e *UpsertError) Unwrap() error {
	return e.Err
}

type Result struct {
	ID       uuid.UUID
	Read     int
	Synced   int
	Blank    int
	Failed   []*UpsertError
	Started  time.Time
	Finished time.Time
}

func (r Result) String() string {
	return fmt.Sprintf("run:%v  read:%v  synced:%v  blank:%v  failed:%v", r.ID, r.Read, r.Synced, r.Blank, len(r.Failed))
}

// Run executes one sync. Records are upserted one at a time in worksheet order.
// Unless ContinueOnError is set the first failed upsert ends the run: earlier
// records stay written and later ones are not attempted.
func (s *Syncer) Run(ctx context.Context, options Options) (result Result, err error) {
	result = Result{
		ID:      uuid.New(),
		Failed:  []*UpsertError{},
		Started: time.Now(),
	}

	defer func() {
		result.Finished = time.Now()
		s.Metrics.observe(result, err)
	}()

	credentials, err := s.Resolve(ctx)
	if err != nil {
		return result, err
	}

	source, err := s.Open(ctx, credentials)
	if err != nil {
		return result, err
	}

	records, err := source.Records(ctx, options.Spreadsheet, options.Worksheet)
	if err != nil {
		return result, err
	}

	list := sites.MapAll(records)
	result.Read = len(list)

	logging.Debugf(tag, "%v  read %v records from '%v'", result.ID, len(list), options.Worksheet)

	return s.upsert(ctx, list, options, result)
}

func (s *Syncer) upsert(ctx context.Context, list []sites.Site, options Options, result Result) (Result, error) {
	errs := []error{}

	for i, site := range list {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if site.Blank() {
			result.Blank++
			logging.Warnf(tag, "%v  record %v has no site name", result.ID, i+1)
		}

		if err := s.Sink.Upsert(ctx, site); err != nil {
			e := &UpsertError{
				Index: i,
				Site:  site.Name(),
				Err:   err,
			}

			result.Failed = append(result.Failed, e)

			if !options.ContinueOnError {
				return result, e
			}

			logging.Warnf(tag, "%v  %v", result.ID, e)
			errs = append(errs, e)
			continue
		}

		result.Synced++
		logging.Debugf(tag, "%v  upserted %v", result.ID, site)
	}

	return result, errors.Join(errs...)
}
