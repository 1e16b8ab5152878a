// Package summarize folds classified commits into natural-language
// paragraphs at the repository and team level, with deterministic templated
// fallbacks when the model is unavailable or answers too tersely.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/devdiary/devdiary/internal/domain"
	"github.com/devdiary/devdiary/internal/port"
)

const (
	// maxBullets caps how many bullets are shown to the model per
	// repository. A verbosity cap only: all bullets stay in the record.
	maxBullets = 10
	// maxRepoParagraphs caps how many repository paragraphs feed the team
	// summary.
	maxRepoParagraphs = 8

	minStandupWords = 8
	minTeamWords    = 10
)

// Summarizer produces standup and team paragraphs via the model provider.
type Summarizer struct {
	ai port.AIProvider
}

// NewSummarizer creates a summarizer. ai may be nil, in which case only the
// templated fallbacks are produced.
func NewSummarizer(ai port.AIProvider) *Summarizer {
	return &Summarizer{ai: ai}
}

// RepoParagraph produces a 2-3 sentence standup paragraph for one
// repository. An empty bullet list yields an empty paragraph with no model
// call. Responses under 8 words are rejected in favor of the fallback.
func (s *Summarizer) RepoParagraph(ctx context.Context, repoName, timeWindow string, bullets, teamSnippets []string) string {
	if len(bullets) == 0 {
		return ""
	}

	if s.ai == nil {
		return repoFallback(timeWindow, teamSnippets)
	}

	shown := bullets
	if len(shown) > maxBullets {
		shown = shown[:maxBullets]
	}

	systemPrompt := `You are a developer journal assistant.
Given a list of commit bullets from a single repository, write a concise
standup update as if the developer is speaking. 2-3 sentences, natural tone.
Avoid file paths, hashes, and jargon; group similar work together.`

	userPrompt := fmt.Sprintf(`Repository: %s
Time window: %s

Bullets:
%s

Write a 2-3 sentence standup paragraph. No preface, no headers.`, repoName, timeWindow, strings.Join(shown, "\n"))

	paragraph, err := s.ai.Chat(ctx, systemPrompt, userPrompt, false)
	if err != nil {
		slog.Warn("standup paragraph failed, using fallback", "repo", repoName, "error", err)
		return repoFallback(timeWindow, teamSnippets)
	}

	paragraph = strings.TrimSpace(paragraph)
	if len(strings.Fields(paragraph)) < minStandupWords {
		slog.Warn("standup paragraph too short, using fallback", "repo", repoName)
		return repoFallback(timeWindow, teamSnippets)
	}
	return paragraph
}

// repoFallback joins the de-duplicated, sorted snippet set into a single
// templated sentence.
func repoFallback(timeWindow string, teamSnippets []string) string {
	short := "progress across multiple areas"
	if len(teamSnippets) > 0 {
		seen := make(map[string]bool)
		var unique []string
		for _, snip := range teamSnippets {
			if snip != "" && !seen[snip] {
				seen[snip] = true
				unique = append(unique, snip)
			}
		}
		sort.Strings(unique)
		if len(unique) > 0 {
			short = strings.Join(unique, ", ")
		}
	}
	return fmt.Sprintf("%s, I focused on %s. I wrapped up key changes and ensured things are stable.", timeWindow, short)
}

// TeamParagraph produces one cross-repository paragraph from the repo-level
// standup paragraphs. An empty repository list yields an empty paragraph with
// no model call. Responses under 10 words are rejected in favor of the
// fallback.
func (s *Summarizer) TeamParagraph(ctx context.Context, repos []domain.RepositorySummary, timeWindow string) string {
	if len(repos) == 0 {
		return ""
	}

	names := make([]string, 0, len(repos))
	var lines []string
	for i := range repos {
		names = append(names, repos[i].RepoName)
		if para := strings.TrimSpace(repos[i].StandupSummary); para != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", repos[i].RepoName, para))
		}
	}

	if s.ai == nil {
		return teamFallback(timeWindow, names)
	}

	if len(lines) > maxRepoParagraphs {
		lines = lines[:maxRepoParagraphs]
	}

	systemPrompt := `You are a Scrum Master assistant.
Given several repo-level standup paragraphs, write ONE concise summary (2-3 sentences).
Sound natural, avoid repetition, and highlight themes (features, fixes, refactors).
Do not use headings. No bullet points. Just a short paragraph.`

	userPrompt := fmt.Sprintf(`Time Window: %s

Repo updates:
%s

Write one 2-3 sentence team summary.`, timeWindow, strings.Join(lines, "\n"))

	paragraph, err := s.ai.Chat(ctx, systemPrompt, userPrompt, false)
	if err != nil {
		slog.Warn("team paragraph failed, using fallback", "error", err)
		return teamFallback(timeWindow, names)
	}

	paragraph = strings.TrimSpace(paragraph)
	if len(strings.Fields(paragraph)) < minTeamWords {
		slog.Warn("team paragraph too short, using fallback")
		return teamFallback(timeWindow, names)
	}
	return paragraph
}

// teamFallback is a templated sentence naming all repositories.
func teamFallback(timeWindow string, names []string) string {
	return fmt.Sprintf("%s, the team advanced work across %s, making steady progress on features, fixes, and cleanup.",
		timeWindow, strings.Join(names, ", "))
}
