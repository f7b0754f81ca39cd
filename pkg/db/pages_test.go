package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dtnitsch/brew-crawler/models"
	"github.com/google/go-cmp/cmp"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Use in-memory database for tests
	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func testRecord(url, style string) *models.PageRecord {
	return &models.PageRecord{
		URL:           url,
		LastVisitTime: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Fields: models.Fields{
			models.TitleKey:   "Session IPA",
			models.StyleKey:   style,
			models.ScraperKey: "brewersfriend",
			models.YeastsKey:  []any{"Safale US-05"},
		},
	}
}

func TestCreatePage(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	rec := testRecord("https://www.brewersfriend.com/homebrew/recipe/view/1", "American IPA")
	rec.RawContent = []byte("<html></html>")
	if err := db.CreatePage(ctx, rec); err != nil {
		t.Fatalf("CreatePage() failed: %v", err)
	}

	got, err := db.GetPage(ctx, rec.URL)
	if err != nil {
		t.Fatalf("GetPage() failed: %v", err)
	}
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Errorf("GetPage() mismatch (-want +got):\n%s", diff)
	}

	var style string
	if err := db.QueryRow("SELECT style FROM pages WHERE url = ?", rec.URL).Scan(&style); err != nil {
		t.Fatalf("failed to query style: %v", err)
	}
	if style != "American IPA" {
		t.Errorf("style column = %q, want %q", style, "American IPA")
	}
}

func TestCreatePage_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	rec := testRecord("https://example.com/a", "Stout")
	if err := db.CreatePage(ctx, rec); err != nil {
		t.Fatalf("CreatePage() failed: %v", err)
	}

	err := db.CreatePage(ctx, rec)
	if !errors.Is(err, models.ErrPageExists) {
		t.Errorf("CreatePage() second call error = %v, want ErrPageExists", err)
	}
}

func TestUpdatePage(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	rec := testRecord("https://example.com/a", "Stout")
	if err := db.CreatePage(ctx, rec); err != nil {
		t.Fatalf("CreatePage() failed: %v", err)
	}

	updated := testRecord(rec.URL, "Imperial Stout")
	updated.LastVisitTime = rec.LastVisitTime.Add(48 * time.Hour)
	if err := db.UpdatePage(ctx, updated); err != nil {
		t.Fatalf("UpdatePage() failed: %v", err)
	}

	got, err := db.GetPage(ctx, rec.URL)
	if err != nil {
		t.Fatalf("GetPage() failed: %v", err)
	}
	if !got.LastVisitTime.Equal(updated.LastVisitTime) {
		t.Errorf("LastVisitTime = %v, want %v", got.LastVisitTime, updated.LastVisitTime)
	}
	if s := got.Fields.String(models.StyleKey); s != "Imperial Stout" {
		t.Errorf("style = %q, want %q", s, "Imperial Stout")
	}

	n, err := db.CountPages(ctx)
	if err != nil {
		t.Fatalf("CountPages() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountPages() = %d, want 1", n)
	}
}

func TestUpdatePage_KeepsRawContent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	rec := testRecord("https://example.com/raw", "Porter")
	rec.RawContent = []byte("<html>porter</html>")
	if err := db.CreatePage(ctx, rec); err != nil {
		t.Fatalf("CreatePage() failed: %v", err)
	}

	// A later crawl without raw content keeps what is stored
	if err := db.UpdatePage(ctx, testRecord(rec.URL, "Robust Porter")); err != nil {
		t.Fatalf("UpdatePage() failed: %v", err)
	}
	got, err := db.GetPage(ctx, rec.URL)
	if err != nil {
		t.Fatalf("GetPage() failed: %v", err)
	}
	if string(got.RawContent) != "<html>porter</html>" {
		t.Errorf("RawContent = %q, want %q", got.RawContent, "<html>porter</html>")
	}

	replaced := testRecord(rec.URL, "Robust Porter")
	replaced.RawContent = []byte("<html>new</html>")
	if err := db.UpdatePage(ctx, replaced); err != nil {
		t.Fatalf("UpdatePage() failed: %v", err)
	}
	got, err = db.GetPage(ctx, rec.URL)
	if err != nil {
		t.Fatalf("GetPage() failed: %v", err)
	}
	if string(got.RawContent) != "<html>new</html>" {
		t.Errorf("RawContent = %q, want %q", got.RawContent, "<html>new</html>")
	}
}

func TestUpdatePage_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := db.UpdatePage(context.Background(), testRecord("https://example.com/missing", "Stout"))
	if !errors.Is(err, models.ErrPageNotFound) {
		t.Errorf("UpdatePage() error = %v, want ErrPageNotFound", err)
	}
}

func TestGetPage_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetPage(context.Background(), "https://example.com/missing")
	if !errors.Is(err, models.ErrPageNotFound) {
		t.Errorf("GetPage() error = %v, want ErrPageNotFound", err)
	}
}

func TestAllPages(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	for _, u := range []string{"https://example.com/c", "https://example.com/a", "https://example.com/b"} {
		if err := db.CreatePage(ctx, testRecord(u, "Porter")); err != nil {
			t.Fatalf("CreatePage(%s) failed: %v", u, err)
		}
	}

	pages, err := db.AllPages(ctx)
	if err != nil {
		t.Fatalf("AllPages() failed: %v", err)
	}

	var urls []string
	for _, p := range pages {
		urls = append(urls, p.URL)
	}
	want := []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}
	if diff := cmp.Diff(want, urls); diff != "" {
		t.Errorf("AllPages() urls mismatch (-want +got):\n%s", diff)
	}

	// Restartable
	again, err := db.AllPages(ctx)
	if err != nil {
		t.Fatalf("AllPages() second call failed: %v", err)
	}
	if len(again) != 3 {
		t.Errorf("AllPages() second call returned %d records, want 3", len(again))
	}
}

func TestPagesByStyle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	records := []*models.PageRecord{
		testRecord("https://example.com/1", "American IPA"),
		testRecord("https://example.com/2", "Session IPA"),
		testRecord("https://example.com/3", "Dry Stout"),
		{URL: "https://example.com/4", LastVisitTime: time.Now(), Fields: models.Fields{}},
	}
	for _, r := range records {
		if err := db.CreatePage(ctx, r); err != nil {
			t.Fatalf("CreatePage(%s) failed: %v", r.URL, err)
		}
	}

	tests := []struct {
		style string
		want  int
	}{
		{"ipa", 2},
		{"SESSION", 1},
		{"stout", 1},
		{"lager", 0},
	}
	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			pages, err := db.PagesByStyle(ctx, tt.style)
			if err != nil {
				t.Fatalf("PagesByStyle() failed: %v", err)
			}
			if len(pages) != tt.want {
				t.Errorf("PagesByStyle(%q) returned %d records, want %d", tt.style, len(pages), tt.want)
			}
		})
	}
}
