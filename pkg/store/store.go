// Package store defines the page persistence contract and opens the adapter
// selected by a database address.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dtnitsch/brew-crawler/models"
	"github.com/dtnitsch/brew-crawler/pkg/db"
)

var (
	ErrNotFound  = models.ErrPageNotFound
	ErrDuplicate = models.ErrPageExists
)

// Store persists one record per canonical URL.
type Store interface {
	// CreatePage returns ErrDuplicate when the URL is already stored.
	CreatePage(ctx context.Context, rec *models.PageRecord) error
	// UpdatePage returns ErrNotFound when the URL is not stored.
	UpdatePage(ctx context.Context, rec *models.PageRecord) error
	// RetrievePage returns ErrNotFound when the URL is not stored.
	RetrievePage(ctx context.Context, url string) (*models.PageRecord, error)
	// RetrieveAllPages returns a fresh snapshot of every record on each call.
	RetrieveAllPages(ctx context.Context) ([]*models.PageRecord, error)
	Close() error
}

// Save updates the record when it exists and creates it otherwise.
// The returned operation is "update" or "create".
func Save(ctx context.Context, s Store, rec *models.PageRecord) (string, error) {
	if _, err := s.RetrievePage(ctx, rec.URL); err == nil {
		return "update", s.UpdatePage(ctx, rec)
	}
	return "create", s.CreatePage(ctx, rec)
}

// Open connects to the store named by addr:
//
//	sqlite://path, path, :memory:  SQLite
//	redis://host:port/db           Redis
//	postgres://..., postgresql://  PostgreSQL
//
// An empty addr opens the default SQLite file next to the binary.
func Open(ctx context.Context, addr string) (Store, error) {
	switch {
	case strings.HasPrefix(addr, "redis://"), strings.HasPrefix(addr, "rediss://"):
		return OpenRedis(ctx, addr)
	case strings.HasPrefix(addr, "postgres://"), strings.HasPrefix(addr, "postgresql://"):
		return OpenPostgres(ctx, addr)
	case strings.Contains(addr, "://") && !strings.HasPrefix(addr, "sqlite://"):
		return nil, fmt.Errorf("unsupported store address %q", addr)
	}

	database, err := db.Open(strings.TrimPrefix(addr, "sqlite://"))
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{DB: database}, nil
}

// SQLiteStore adapts the SQLite database to Store and also exposes crawl run tracking.
type SQLiteStore struct {
	*db.DB
}

func (s *SQLiteStore) RetrievePage(ctx context.Context, url string) (*models.PageRecord, error) {
	return s.GetPage(ctx, url)
}

func (s *SQLiteStore) RetrieveAllPages(ctx context.Context) ([]*models.PageRecord, error) {
	return s.AllPages(ctx)
}
