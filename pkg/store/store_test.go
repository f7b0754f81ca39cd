package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/dtnitsch/brew-crawler/models"
	"github.com/google/uuid"
)

// testStoreContract exercises the duplicate and not-found semantics every adapter must honor.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	// Unique per run so shared external stores do not collide
	url := "https://www.brewersfriend.com/homebrew/recipe/view/" + uuid.NewString()
	rec := &models.PageRecord{
		URL:           url,
		LastVisitTime: time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
		Fields: models.Fields{
			models.TitleKey: "Pliny Clone",
			models.StyleKey: "Double IPA",
		},
	}

	if _, err := s.RetrievePage(ctx, url); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RetrievePage() before create error = %v, want ErrNotFound", err)
	}
	if err := s.UpdatePage(ctx, rec); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePage() before create error = %v, want ErrNotFound", err)
	}
	if err := s.CreatePage(ctx, rec); err != nil {
		t.Fatalf("CreatePage() failed: %v", err)
	}
	if err := s.CreatePage(ctx, rec); !errors.Is(err, ErrDuplicate) {
		t.Errorf("CreatePage() duplicate error = %v, want ErrDuplicate", err)
	}

	rec.RawContent = []byte("<html>pliny</html>")
	if err := s.UpdatePage(ctx, rec); err != nil {
		t.Fatalf("UpdatePage() with raw content failed: %v", err)
	}

	rec.RawContent = nil
	rec.LastVisitTime = rec.LastVisitTime.Add(time.Hour)
	rec.Fields[models.StyleKey] = "Imperial IPA"
	if err := s.UpdatePage(ctx, rec); err != nil {
		t.Fatalf("UpdatePage() failed: %v", err)
	}

	got, err := s.RetrievePage(ctx, url)
	if err != nil {
		t.Fatalf("RetrievePage() failed: %v", err)
	}
	if got.URL != url {
		t.Errorf("URL = %q, want %q", got.URL, url)
	}
	if !got.LastVisitTime.Equal(rec.LastVisitTime) {
		t.Errorf("LastVisitTime = %v, want %v", got.LastVisitTime, rec.LastVisitTime)
	}
	if s := got.Fields.String(models.StyleKey); s != "Imperial IPA" {
		t.Errorf("style = %q, want %q", s, "Imperial IPA")
	}
	if string(got.RawContent) != "<html>pliny</html>" {
		t.Errorf("RawContent = %q, want earlier raw content kept", got.RawContent)
	}

	all, err := s.RetrieveAllPages(ctx)
	if err != nil {
		t.Fatalf("RetrieveAllPages() failed: %v", err)
	}
	found := false
	for _, p := range all {
		if p.URL == url {
			found = true
		}
	}
	if !found {
		t.Errorf("RetrieveAllPages() missing %s", url)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, ok := s.(*SQLiteStore); !ok {
		t.Fatalf("Open(:memory:) = %T, want *SQLiteStore", s)
	}
	testStoreContract(t, s)
}

func TestSQLiteStore_Scheme(t *testing.T) {
	path := t.TempDir() + "/pages.db"
	s, err := Open(context.Background(), "sqlite://"+path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if got := s.(*SQLiteStore).Path(); got != path {
		t.Errorf("Path() = %q, want %q", got, path)
	}
}

func TestOpen_Unsupported(t *testing.T) {
	if _, err := Open(context.Background(), "mongodb://localhost"); err == nil {
		t.Error("Open(mongodb://) returned nil error")
	}
}

func TestSave(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	rec := &models.PageRecord{URL: "https://beerrecipes.org/r/1", LastVisitTime: time.Now(), Fields: models.Fields{}}
	for _, want := range []string{"create", "update"} {
		op, err := Save(ctx, s, rec)
		if err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
		if op != want {
			t.Errorf("Save() op = %q, want %q", op, want)
		}
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("BREW_CRAWLER_REDIS_ADDR")
	if addr == "" {
		t.Skip("BREW_CRAWLER_REDIS_ADDR not set")
	}
	s, err := Open(context.Background(), addr)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()
	testStoreContract(t, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("BREW_CRAWLER_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("BREW_CRAWLER_POSTGRES_DSN not set")
	}
	s, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()
	testStoreContract(t, s)
}
