package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dtnitsch/brew-crawler/models"
)

// CreatePage inserts a new page record. Returns models.ErrPageExists if the URL is already stored.
func (db *DB) CreatePage(ctx context.Context, rec *models.PageRecord) error {
	fields, err := rec.FieldsJSON()
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO pages (url, last_visit_time, raw_content, fields, scraper, style)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`, rec.URL, formatTime(rec.LastVisitTime), nullBytes(rec.RawContent), string(fields),
		NewNullString(rec.Fields.String(models.ScraperKey)), NewNullString(rec.Fields.String(models.StyleKey)))
	if err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrPageExists, rec.URL)
	}
	return nil
}

// UpdatePage overwrites the visit time and fields of an existing record. A nil
// RawContent keeps the raw HTML already stored. Returns models.ErrPageNotFound
// if the URL is not stored.
func (db *DB) UpdatePage(ctx context.Context, rec *models.PageRecord) error {
	fields, err := rec.FieldsJSON()
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	result, err := db.ExecContext(ctx, `
		UPDATE pages
		SET last_visit_time = ?, raw_content = COALESCE(?, raw_content), fields = ?, scraper = ?, style = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE url = ?
	`, formatTime(rec.LastVisitTime), nullBytes(rec.RawContent), string(fields),
		NewNullString(rec.Fields.String(models.ScraperKey)), NewNullString(rec.Fields.String(models.StyleKey)), rec.URL)
	if err != nil {
		return fmt.Errorf("failed to update page: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrPageNotFound, rec.URL)
	}
	return nil
}

// GetPage returns the record stored for url, or models.ErrPageNotFound.
func (db *DB) GetPage(ctx context.Context, url string) (*models.PageRecord, error) {
	row := db.QueryRowContext(ctx, `
		SELECT url, last_visit_time, raw_content, fields
		FROM pages WHERE url = ?
	`, url)

	rec, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrPageNotFound, url)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return rec, nil
}

// AllPages returns every stored record ordered by URL.
func (db *DB) AllPages(ctx context.Context) ([]*models.PageRecord, error) {
	return db.queryPages(ctx, `
		SELECT url, last_visit_time, raw_content, fields
		FROM pages ORDER BY url
	`)
}

// PagesByStyle returns records whose style contains style, ignoring case.
func (db *DB) PagesByStyle(ctx context.Context, style string) ([]*models.PageRecord, error) {
	return db.queryPages(ctx, `
		SELECT url, last_visit_time, raw_content, fields
		FROM pages
		WHERE style IS NOT NULL AND instr(lower(style), ?) > 0
		ORDER BY url
	`, strings.ToLower(style))
}

// CountPages returns the number of stored records.
func (db *DB) CountPages(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}

func (db *DB) queryPages(ctx context.Context, query string, args ...any) ([]*models.PageRecord, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var pages []*models.PageRecord
	for rows.Next() {
		rec, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pages: %w", err)
	}
	return pages, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(s scanner) (*models.PageRecord, error) {
	var (
		rec       models.PageRecord
		visitedAt string
		raw       []byte
		fields    string
	)
	if err := s.Scan(&rec.URL, &visitedAt, &raw, &fields); err != nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339Nano, visitedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid last_visit_time %q: %w", visitedAt, err)
	}
	rec.LastVisitTime = t
	if len(raw) > 0 {
		rec.RawContent = raw
	}

	rec.Fields, err = models.DecodeFields([]byte(fields))
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

// NewNullString returns a NULL for empty strings.
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
