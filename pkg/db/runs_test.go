package db

import (
	"context"
	"testing"
	"time"
)

func TestStartAndFinishRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := db.StartRun(ctx, "run-1", "https://www.brewersfriend.com/search", start); err != nil {
		t.Fatalf("StartRun() failed: %v", err)
	}

	runs, err := db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns() returned %d runs, want 1", len(runs))
	}
	if runs[0].Status != RunRunning {
		t.Errorf("Status = %q, want %q", runs[0].Status, RunRunning)
	}
	if runs[0].FinishedAt != nil {
		t.Errorf("FinishedAt = %v, want nil", runs[0].FinishedAt)
	}

	end := start.Add(5 * time.Minute)
	stats := RunStats{PagesFetched: 10, FetchErrors: 2, PagesStored: 7}
	if err := db.FinishRun(ctx, "run-1", RunCompleted, stats, end); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}

	runs, err = db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	r := runs[0]
	if r.Status != RunCompleted {
		t.Errorf("Status = %q, want %q", r.Status, RunCompleted)
	}
	if r.FinishedAt == nil || !r.FinishedAt.Equal(end) {
		t.Errorf("FinishedAt = %v, want %v", r.FinishedAt, end)
	}
	if r.PagesFetched != 10 || r.FetchErrors != 2 || r.PagesStored != 7 {
		t.Errorf("counters = %d/%d/%d, want 10/2/7", r.PagesFetched, r.FetchErrors, r.PagesStored)
	}
}

func TestFinishRun_Unknown(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.FinishRun(context.Background(), "nope", RunFailed, RunStats{}, time.Now()); err == nil {
		t.Error("FinishRun() for unknown run returned nil error")
	}
}

func TestListRuns_Limit(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := db.StartRun(ctx, id, "seed", base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("StartRun(%s) failed: %v", id, err)
		}
	}

	runs, err := db.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns(2) returned %d runs, want 2", len(runs))
	}
	if runs[0].RunID != "c" || runs[1].RunID != "b" {
		t.Errorf("ListRuns(2) = [%s %s], want [c b]", runs[0].RunID, runs[1].RunID)
	}
}
