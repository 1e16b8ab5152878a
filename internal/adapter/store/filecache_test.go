package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devdiary/devdiary/internal/domain"
)

func cachePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cache.json")
}

func TestFileCacheRoundTrip(t *testing.T) {
	path := cachePath(t)

	c := NewFileCache(path)
	entry := domain.Classification{
		CommitHash:  "a1b2c3",
		WorkType:    domain.WorkBugfix,
		Bullet:      "- [bugfix] `a1b2c3`: fixed login",
		TeamSnippet: "login fix",
	}
	if err := c.Put("a1b2c3", entry); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// a fresh cache on the same file sees the persisted entry
	reopened := NewFileCache(path)
	got, ok := reopened.Get("a1b2c3")
	if !ok {
		t.Fatal("entry not found after reopen")
	}
	if got != entry {
		t.Errorf("got %+v, want %+v", got, entry)
	}
}

func TestFileCacheMissingFile(t *testing.T) {
	c := NewFileCache(filepath.Join(t.TempDir(), "nope", "cache.json"))
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a1b2c3"); ok {
		t.Error("Get on empty cache returned an entry")
	}
}

func TestFileCacheCorruptFile(t *testing.T) {
	path := cachePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewFileCache(path)
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0 for corrupt file", c.Len())
	}
	// the cache stays writable after starting fresh
	if err := c.Put("abc123", domain.Classification{CommitHash: "abc123", WorkType: domain.WorkOther, Bullet: "- b", TeamSnippet: "s"}); err != nil {
		t.Fatalf("Put after corrupt load: %v", err)
	}
}

func TestFileCacheNullFile(t *testing.T) {
	path := cachePath(t)
	if err := os.WriteFile(path, []byte("null"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewFileCache(path)
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0 for null file", c.Len())
	}
	if err := c.Put("abc123", domain.Classification{CommitHash: "abc123", WorkType: domain.WorkOther, Bullet: "- b", TeamSnippet: "s"}); err != nil {
		t.Fatalf("Put after null load: %v", err)
	}
	if _, ok := c.Get("abc123"); !ok {
		t.Error("entry missing after Put")
	}
}

func TestFileCachePurgeBad(t *testing.T) {
	path := cachePath(t)
	c := NewFileCache(path)

	c.Put("good", domain.Classification{CommitHash: "good", WorkType: domain.WorkFeature, Bullet: "- [feature] `good`: added thing", TeamSnippet: "thing"})
	c.Put("bad1", domain.Classification{CommitHash: "bad1", WorkType: domain.WorkOther, Bullet: "- summary unavailable", TeamSnippet: ""})
	c.Put("bad2", domain.Classification{CommitHash: "bad2", WorkType: domain.WorkOther, Bullet: "summary unavailable for this commit", TeamSnippet: ""})

	if n := c.PurgeBad(); n != 2 {
		t.Errorf("PurgeBad = %d, want 2", n)
	}
	if n := c.PurgeBad(); n != 0 {
		t.Errorf("second PurgeBad = %d, want 0", n)
	}
	if _, ok := c.Get("good"); !ok {
		t.Error("good entry removed by purge")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestFileCachePurgesMarkedEntriesOnLoad(t *testing.T) {
	path := cachePath(t)

	seed := NewFileCache(path)
	seed.Put("stale", domain.Classification{CommitHash: "stale", WorkType: domain.WorkOther, Bullet: "- summary unavailable", TeamSnippet: ""})
	seed.Put("kept", domain.Classification{CommitHash: "kept", WorkType: domain.WorkDocs, Bullet: "- [docs] `kept`: updated readme", TeamSnippet: "docs"})

	c := NewFileCache(path)
	if _, ok := c.Get("stale"); ok {
		t.Error("marked entry survived load")
	}
	if _, ok := c.Get("kept"); !ok {
		t.Error("healthy entry lost on load")
	}
}
