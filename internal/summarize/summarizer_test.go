package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/devdiary/devdiary/internal/domain"
)

type fakeAI struct {
	response string
	err      error
	calls    int
}

func (f *fakeAI) ModelName() string { return "fake" }

func (f *fakeAI) Chat(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"fake"}, nil
}

func TestRepoParagraph(t *testing.T) {
	bullets := []string{"- [bugfix] `a1b2c3`: fixed login", "- [feature] `d4e5f6`: added export"}
	snippets := []string{"login fix", "export work"}

	t.Run("empty bullets makes no model call", func(t *testing.T) {
		ai := &fakeAI{response: "should never be used"}
		s := NewSummarizer(ai)
		if got := s.RepoParagraph(context.Background(), "repo", "Today", nil, snippets); got != "" {
			t.Errorf("paragraph = %q, want empty", got)
		}
		if ai.calls != 0 {
			t.Errorf("model calls = %d, want 0", ai.calls)
		}
	})

	t.Run("model answer passes through", func(t *testing.T) {
		ai := &fakeAI{response: "Today I fixed the login flow and shipped the new export feature for users."}
		s := NewSummarizer(ai)
		got := s.RepoParagraph(context.Background(), "repo", "Today", bullets, snippets)
		if got != ai.response {
			t.Errorf("paragraph = %q", got)
		}
	})

	t.Run("short answer rejected for fallback", func(t *testing.T) {
		ai := &fakeAI{response: "Did stuff."}
		s := NewSummarizer(ai)
		got := s.RepoParagraph(context.Background(), "repo", "Today", bullets, snippets)
		if !strings.HasPrefix(got, "Today, I focused on ") {
			t.Errorf("paragraph = %q, want fallback", got)
		}
	})

	t.Run("model error triggers fallback", func(t *testing.T) {
		ai := &fakeAI{err: errors.New("connection refused")}
		s := NewSummarizer(ai)
		got := s.RepoParagraph(context.Background(), "repo", "Today", bullets, snippets)
		if !strings.Contains(got, "I focused on") {
			t.Errorf("paragraph = %q, want fallback", got)
		}
	})

	t.Run("nil provider uses fallback", func(t *testing.T) {
		s := NewSummarizer(nil)
		got := s.RepoParagraph(context.Background(), "repo", "Today", bullets, snippets)
		if !strings.Contains(got, "export work") || !strings.Contains(got, "login fix") {
			t.Errorf("fallback missing snippets: %q", got)
		}
	})
}

func TestRepoFallback(t *testing.T) {
	t.Run("snippets deduplicated and sorted", func(t *testing.T) {
		got := repoFallback("Today", []string{"beta work", "alpha work", "beta work", ""})
		if !strings.Contains(got, "alpha work, beta work") {
			t.Errorf("fallback = %q", got)
		}
	})

	t.Run("no snippets", func(t *testing.T) {
		got := repoFallback("Today", nil)
		if !strings.Contains(got, "progress across multiple areas") {
			t.Errorf("fallback = %q", got)
		}
	})
}

func TestTeamParagraph(t *testing.T) {
	repos := []domain.RepositorySummary{
		{RepoName: "alpha", StandupSummary: "Today I fixed the login flow."},
		{RepoName: "beta", StandupSummary: "Today I shipped the export feature."},
	}

	t.Run("empty repos makes no model call", func(t *testing.T) {
		ai := &fakeAI{response: "unused"}
		s := NewSummarizer(ai)
		if got := s.TeamParagraph(context.Background(), nil, "Today"); got != "" {
			t.Errorf("paragraph = %q, want empty", got)
		}
		if ai.calls != 0 {
			t.Errorf("model calls = %d, want 0", ai.calls)
		}
	})

	t.Run("model answer passes through", func(t *testing.T) {
		ai := &fakeAI{response: "Today the team stabilized authentication and delivered the new export pipeline across services."}
		s := NewSummarizer(ai)
		got := s.TeamParagraph(context.Background(), repos, "Today")
		if got != ai.response {
			t.Errorf("paragraph = %q", got)
		}
	})

	t.Run("short answer rejected for fallback", func(t *testing.T) {
		ai := &fakeAI{response: "Good progress."}
		s := NewSummarizer(ai)
		got := s.TeamParagraph(context.Background(), repos, "Today")
		if !strings.Contains(got, "alpha, beta") {
			t.Errorf("paragraph = %q, want fallback naming repos", got)
		}
	})

	t.Run("nil provider uses fallback", func(t *testing.T) {
		s := NewSummarizer(nil)
		got := s.TeamParagraph(context.Background(), repos, "In the last 7 days")
		if !strings.HasPrefix(got, "In the last 7 days, the team advanced work across alpha, beta") {
			t.Errorf("paragraph = %q", got)
		}
	})
}
