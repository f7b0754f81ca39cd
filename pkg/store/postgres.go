package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/brew-crawler/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS brew_pages (
    url TEXT PRIMARY KEY,
    last_visit_time TIMESTAMPTZ NOT NULL,
    raw_content BYTEA,
    fields JSONB NOT NULL DEFAULT '{}'::jsonb,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps records in one table with the extracted fields as JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects with a postgres:// connection string and creates the table if needed.
func OpenPostgres(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreatePage(ctx context.Context, rec *models.PageRecord) error {
	fields, err := rec.FieldsJSON()
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO brew_pages (url, last_visit_time, raw_content, fields)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (url) DO NOTHING`,
		rec.URL, rec.LastVisitTime.UTC(), rawOrNil(rec.RawContent), fields)
	if err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, rec.URL)
	}
	return nil
}

func (s *PostgresStore) UpdatePage(ctx context.Context, rec *models.PageRecord) error {
	fields, err := rec.FieldsJSON()
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE brew_pages
		SET last_visit_time = $2, raw_content = COALESCE($3, raw_content), fields = $4, updated_at = NOW()
		WHERE url = $1`,
		rec.URL, rec.LastVisitTime.UTC(), rawOrNil(rec.RawContent), fields)
	if err != nil {
		return fmt.Errorf("failed to update page: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, rec.URL)
	}
	return nil
}

func (s *PostgresStore) RetrievePage(ctx context.Context, url string) (*models.PageRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT url, last_visit_time, raw_content, fields
		FROM brew_pages WHERE url = $1`, url)

	rec, err := scanPostgresPage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) RetrieveAllPages(ctx context.Context) ([]*models.PageRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT url, last_visit_time, raw_content, fields
		FROM brew_pages ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var pages []*models.PageRecord
	for rows.Next() {
		rec, err := scanPostgresPage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, rec)
	}
	return pages, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPostgresPage(row pgx.Row) (*models.PageRecord, error) {
	var (
		rec    models.PageRecord
		ts     time.Time
		raw    []byte
		fields []byte
	)
	if err := row.Scan(&rec.URL, &ts, &raw, &fields); err != nil {
		return nil, err
	}
	rec.LastVisitTime = ts.UTC()
	if len(raw) > 0 {
		rec.RawContent = raw
	}

	var err error
	rec.Fields, err = models.DecodeFields(fields)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func rawOrNil(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
