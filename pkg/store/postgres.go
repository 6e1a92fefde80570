package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finsight/filings/pkg/models"
)

const filingsSchema = `
CREATE TABLE IF NOT EXISTS filings (
	user_id          TEXT NOT NULL,
	accession_number TEXT NOT NULL,
	filing_date      DATE,
	report_date      DATE,
	form             TEXT NOT NULL,
	primary_document TEXT,
	url              TEXT,
	full_text        TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, accession_number)
)`

// Postgres is a pgx-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database and ensures the filings table
// exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, filingsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure filings schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Has(ctx context.Context, userID, accessionNumber string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM filings WHERE user_id = $1 AND accession_number = $2)`,
		userID, accessionNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check filing existence: %w", err)
	}
	return exists, nil
}

func (p *Postgres) Get(ctx context.Context, userID, accessionNumber string) (models.Filing, bool, error) {
	var f models.Filing
	err := p.pool.QueryRow(ctx,
		`SELECT accession_number,
		        COALESCE(to_char(filing_date, 'YYYY-MM-DD'), ''),
		        COALESCE(to_char(report_date, 'YYYY-MM-DD'), ''),
		        form, COALESCE(primary_document, ''), COALESCE(url, ''), COALESCE(full_text, '')
		 FROM filings WHERE user_id = $1 AND accession_number = $2`,
		userID, accessionNumber).Scan(
		&f.AccessionNumber, &f.FilingDate, &f.ReportDate,
		&f.Form, &f.PrimaryDocument, &f.URL, &f.FullText)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Filing{}, false, nil
	}
	if err != nil {
		return models.Filing{}, false, fmt.Errorf("load filing %s: %w", accessionNumber, err)
	}
	return f, true, nil
}

func (p *Postgres) Save(ctx context.Context, userID string, f models.Filing) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO filings
			(user_id, accession_number, filing_date, report_date, form, primary_document, url, full_text)
		 VALUES ($1, $2, NULLIF($3, '')::date, NULLIF($4, '')::date, $5, $6, $7, $8)
		 ON CONFLICT (user_id, accession_number) DO NOTHING`,
		userID, f.AccessionNumber, f.FilingDate, f.ReportDate, f.Form, f.PrimaryDocument, f.URL, f.FullText)
	if err != nil {
		return fmt.Errorf("save filing %s: %w", f.AccessionNumber, err)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
