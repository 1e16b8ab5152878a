package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/devdiary/devdiary/internal/domain"
)

type fakeAI struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeAI) ModelName() string { return "fake" }

func (f *fakeAI) Chat(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func (f *fakeAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"fake"}, nil
}

type memCache struct {
	entries map[string]domain.Classification
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]domain.Classification)}
}

func (m *memCache) Get(hash string) (domain.Classification, bool) {
	c, ok := m.entries[hash]
	return c, ok
}

func (m *memCache) Put(hash string, c domain.Classification) error {
	m.puts++
	m.entries[hash] = c
	return nil
}

func (m *memCache) PurgeBad() int { return 0 }

func block(raw string) domain.CommitBlock {
	return domain.CommitBlock{Raw: raw}
}

func TestExtractHash(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain header", "a1b2c3 fix login bug\nsrc/auth.go", "a1b2c3"},
		{"long hash", "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef msg", "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"},
		{"too short", "a1b2c msg", ""},
		{"not hex", "zzzzzz msg", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractHash(tt.raw); got != tt.want {
				t.Errorf("ExtractHash(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractMessage(t *testing.T) {
	if got := ExtractMessage("a1b2c3 fix login bug\nsrc/auth.go"); got != "fix login bug" {
		t.Errorf("ExtractMessage = %q", got)
	}
	if got := ExtractMessage("a1b2c3"); got != "" {
		t.Errorf("ExtractMessage with no subject = %q, want empty", got)
	}
}

func TestClassifyCacheShortCircuit(t *testing.T) {
	ai := &fakeAI{responses: []string{`{"work_type": "feature", "bullet": "- [feature] ` + "`a1b2c3`" + `: added export", "team_snippet": "export work"}`}}
	cache := newMemCache()
	c := NewClassifier(ai, cache)

	first := c.Classify(context.Background(), block("a1b2c3 add export feature"), "repo", "Today")
	if first.WorkType != domain.WorkFeature {
		t.Fatalf("WorkType = %v, want feature", first.WorkType)
	}
	if ai.calls != 1 {
		t.Fatalf("model calls = %d, want 1", ai.calls)
	}

	second := c.Classify(context.Background(), block("a1b2c3 add export feature"), "repo", "Today")
	if ai.calls != 1 {
		t.Errorf("model calls after cache hit = %d, want 1", ai.calls)
	}
	if second != first {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}
}

func TestClassifyRelaxedRetry(t *testing.T) {
	ai := &fakeAI{responses: []string{
		"I cannot produce JSON for this.",
		`Sure! {"work_type": "bugfix", "bullet": "- [bugfix] ` + "`a1b2c3`" + `: fixed login", "team_snippet": "login fix"}`,
	}}
	cache := newMemCache()
	c := NewClassifier(ai, cache)

	got := c.Classify(context.Background(), block("a1b2c3 fix login bug"), "repo", "Today")
	if ai.calls != 2 {
		t.Errorf("model calls = %d, want 2 (strict then relaxed)", ai.calls)
	}
	if got.WorkType != domain.WorkBugfix {
		t.Errorf("WorkType = %v, want bugfix", got.WorkType)
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
}

func TestClassifyUnparseableBothAttempts(t *testing.T) {
	ai := &fakeAI{responses: []string{"garbage", "more garbage"}}
	cache := newMemCache()
	c := NewClassifier(ai, cache)

	got := c.Classify(context.Background(), block("a1b2c3 fix login bug"), "repo", "Today")
	if got.WorkType != domain.WorkBugfix {
		t.Errorf("heuristic WorkType = %v, want bugfix", got.WorkType)
	}
	// a deliberate heuristic after unparseable output is a real answer and
	// is cached
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
}

func TestClassifyTransportFailureNotCached(t *testing.T) {
	ai := &fakeAI{err: errors.New("connection refused")}
	cache := newMemCache()
	c := NewClassifier(ai, cache)

	got := c.Classify(context.Background(), block("a1b2c3 fix login bug"), "repo", "Today")
	if got.WorkType != domain.WorkBugfix {
		t.Errorf("heuristic WorkType = %v, want bugfix", got.WorkType)
	}
	if cache.puts != 0 {
		t.Errorf("cache puts = %d, want 0 after transport failure", cache.puts)
	}
	if _, ok := cache.Get("a1b2c3"); ok {
		t.Error("transport failure result must not be cached")
	}
}

func TestClassifyNilAI(t *testing.T) {
	cache := newMemCache()
	c := NewClassifier(nil, cache)

	got := c.Classify(context.Background(), block("a1b2c3 fix login bug"), "repo", "Today")
	if got.WorkType != domain.WorkBugfix {
		t.Errorf("WorkType = %v, want bugfix", got.WorkType)
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
}

func TestSanitize(t *testing.T) {
	t.Run("hash is always forced", func(t *testing.T) {
		ai := &fakeAI{responses: []string{`{"commit_hash": "ffffff", "work_type": "feature", "bullet": "- b", "team_snippet": "s"}`}}
		c := NewClassifier(ai, newMemCache())
		got := c.Classify(context.Background(), block("a1b2c3 add thing"), "repo", "Today")
		if got.CommitHash != "a1b2c3" {
			t.Errorf("CommitHash = %q, want a1b2c3", got.CommitHash)
		}
	})

	t.Run("missing fields backfilled", func(t *testing.T) {
		ai := &fakeAI{responses: []string{`{"work_type": "feature"}`}}
		c := NewClassifier(ai, newMemCache())
		got := c.Classify(context.Background(), block("a1b2c3 add export feature"), "repo", "Today")
		if got.Bullet == "" {
			t.Error("Bullet not backfilled")
		}
		if got.TeamSnippet == "" {
			t.Error("TeamSnippet not backfilled")
		}
	})

	t.Run("unknown work type falls back to other", func(t *testing.T) {
		ai := &fakeAI{responses: []string{`{"work_type": "banana", "bullet": "- b", "team_snippet": "s"}`}}
		c := NewClassifier(ai, newMemCache())
		got := c.Classify(context.Background(), block("a1b2c3 mystery change"), "repo", "Today")
		if got.WorkType != domain.WorkOther {
			t.Errorf("WorkType = %v, want other", got.WorkType)
		}
	})
}
