package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/devdiary/devdiary/internal/domain"
	"github.com/devdiary/devdiary/internal/port"
)

func openHistory(t *testing.T) *HistoryStore {
	t.Helper()
	s, err := NewHistoryStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewHistoryStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func scanResult(mode domain.ScanMode, since string, at time.Time) *domain.ScanResult {
	return &domain.ScanResult{
		ScanMode:  mode,
		SinceDate: since,
		ScanTime:  at,
		Repositories: []domain.RepositorySummary{
			{
				RepoName: "alpha",
				RepoPath: "/dev/alpha",
				Commits: []domain.CommitRecord{
					{CommitHash: "a1b2c3", WorkType: domain.WorkBugfix, Message: "fix login bug"},
				},
			},
		},
		TeamSummary: "Fixed login.",
	}
}

func TestHistorySaveAndGet(t *testing.T) {
	s := openHistory(t)
	ctx := context.Background()

	in := scanResult(domain.ModeToday, "2025-03-15", time.Now())
	id, err := s.SaveScan(ctx, in)
	if err != nil {
		t.Fatalf("SaveScan: %v", err)
	}
	if id == "" {
		t.Fatal("empty scan id")
	}

	out, err := s.GetScan(ctx, id)
	if err != nil {
		t.Fatalf("GetScan: %v", err)
	}
	if out.TeamSummary != in.TeamSummary || out.SinceDate != in.SinceDate {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if out.TotalCommits() != 1 {
		t.Errorf("TotalCommits = %d, want 1", out.TotalCommits())
	}
}

func TestHistoryListOrderAndLimit(t *testing.T) {
	s := openHistory(t)
	ctx := context.Background()

	base := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := s.SaveScan(ctx, scanResult(domain.ModeToday, "2025-03-15", base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("SaveScan: %v", err)
		}
	}

	all, err := s.ListScans(ctx, 0)
	if err != nil {
		t.Fatalf("ListScans: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	// most recent first
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Errorf("records out of order at %d", i)
		}
	}

	limited, err := s.ListScans(ctx, 2)
	if err != nil {
		t.Fatalf("ListScans limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited len = %d, want 2", len(limited))
	}
}

func TestHistoryGetMissing(t *testing.T) {
	s := openHistory(t)
	_, err := s.GetScan(context.Background(), "no-such-id")
	if !errors.Is(err, port.ErrScanNotFound) {
		t.Errorf("err = %v, want ErrScanNotFound", err)
	}
}
