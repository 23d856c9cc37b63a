package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitesync/sites-sync/sites"
)

// Postgres writes directly to the table over a pgx connection pool.
type Postgres struct {
	pool   *pgxpool.Pool
	upsert string
	list   string
}

func NewPostgres(ctx context.Context, url string, table string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL (%w)", err)
	}

	config.MaxConns = 4
	config.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	ping, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database not reachable (%w)", err)
	}

	return &Postgres{
		pool:   pool,
		upsert: upsertSQL(table),
		list:   selectSQL(table),
	}, nil
}

func (p *Postgres) Upsert(ctx context.Context, site sites.Site) error {
	_, err := p.pool.Exec(ctx, p.upsert,
		site.SiteName,
		site.ClientName,
		site.ClientEmail,
		site.ClientWhatsApp,
		site.LabourName,
		site.LabourEmail,
		site.LabourWhatsApp,
		site.UpdatedAt)

	return err
}

func (p *Postgres) Sites(ctx context.Context) ([]sites.Site, error) {
	rows, err := p.pool.Query(ctx, p.list)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (sites.Site, error) {
		var s sites.Site

		err := row.Scan(
			&s.SiteName,
			&s.ClientName,
			&s.ClientEmail,
			&s.ClientWhatsApp,
			&s.LabourName,
			&s.LabourEmail,
			&s.LabourWhatsApp,
			&s.UpdatedAt)

		return s, err
	})
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func identifier(table string) string {
	return pgx.Identifier(strings.Split(table, ".")).Sanitize()
}

func columns() string {
	list := []string{}
	for _, c := range sites.Columns {
		list = append(list, pgx.Identifier{c}.Sanitize())
	}

	return strings.Join(list, ", ")
}

func upsertSQL(table string) string {
	placeholders := []string{}
	updates := []string{}

	for i, c := range sites.Columns {
		placeholders = append(placeholders, fmt.Sprintf("$%v", i+1))
		if c != Conflict {
			column := pgx.Identifier{c}.Sanitize()
			updates = append(updates, fmt.Sprintf("%v = EXCLUDED.%v", column, column))
		}
	}

	return fmt.Sprintf("INSERT INTO %v (%v) VALUES (%v) ON CONFLICT (%v) DO UPDATE SET %v",
		identifier(table),
		columns(),
		strings.Join(placeholders, ", "),
		pgx.Identifier{Conflict}.Sanitize(),
		strings.Join(updates, ", "))
}

func selectSQL(table string) string {
	return fmt.Sprintf("SELECT %v FROM %v ORDER BY %v",
		columns(),
		identifier(table),
		pgx.Identifier{Conflict}.Sanitize())
}
