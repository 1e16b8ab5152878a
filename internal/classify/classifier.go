// Package classify turns raw commit blocks into structured classifications.
// Every commit always reaches a terminal classification: cached value, model
// output (strict then relaxed), or the deterministic heuristic.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/devdiary/devdiary/internal/domain"
	"github.com/devdiary/devdiary/internal/port"
)

// Classifier maps one raw commit block to a classification, short-circuiting
// through the cache and falling back through relaxed model mode to the
// heuristic when the model is unreachable or unparseable.
type Classifier struct {
	ai    port.AIProvider
	cache port.ClassificationCache
}

// NewClassifier creates a classifier backed by the given model provider and
// cache. ai may be nil, in which case only the heuristic path runs.
func NewClassifier(ai port.AIProvider, cache port.ClassificationCache) *Classifier {
	return &Classifier{ai: ai, cache: cache}
}

var hashRe = regexp.MustCompile(`^([0-9a-f]{6,40})\b`)

// ExtractHash pulls the commit hash off the first line of a raw block.
func ExtractHash(block string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(block), "\n")
	if m := hashRe.FindStringSubmatch(strings.TrimSpace(first)); m != nil {
		return m[1]
	}
	return ""
}

// ExtractMessage pulls the subject line off the first line of a raw block.
func ExtractMessage(block string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(block), "\n")
	_, msg, ok := strings.Cut(strings.TrimSpace(first), " ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(msg)
}

// Classify returns the classification for one commit block. Cached entries
// are returned unchanged with no model work. Model failures and unparseable
// output degrade to the heuristic; only real classifications are cached, so
// a transport failure is retried on the next run.
func (c *Classifier) Classify(ctx context.Context, block domain.CommitBlock, repoName, timeWindow string) domain.Classification {
	hash := block.Hash
	if hash == "" {
		hash = ExtractHash(block.Raw)
	}
	if hash == "" {
		hash = "unknown"
	}
	message := block.Message
	if message == "" {
		message = ExtractMessage(block.Raw)
	}

	if cached, ok := c.cache.Get(hash); ok {
		slog.Debug("using cached classification", "hash", hash)
		return cached
	}

	result, cacheable := c.classifyUncached(ctx, block.Raw, hash, message, repoName, timeWindow)
	result = sanitize(result, hash, message)

	if !cacheable {
		return result
	}
	slog.Debug("classified commit", "hash", hash, "work_type", result.WorkType)
	if err := c.cache.Put(hash, result); err != nil {
		slog.Warn("cache write failed", "hash", hash, "error", err)
	}
	return result
}

// classifyUncached runs the strict/relaxed/heuristic chain. The second
// return value reports whether the result may be cached: a transport failure
// degrades to the heuristic but is not cached, so the model is retried on a
// later run.
func (c *Classifier) classifyUncached(ctx context.Context, raw, hash, message, repoName, timeWindow string) (domain.Classification, bool) {
	if c.ai == nil {
		return HeuristicClassification(hash, message), true
	}

	systemPrompt, userPrompt := buildCommitPrompts(raw, hash, repoName, timeWindow)

	content, err := c.ai.Chat(ctx, systemPrompt, userPrompt, true)
	if err != nil {
		slog.Warn("model call failed, using heuristic", "hash", hash, "error", err)
		return HeuristicClassification(hash, message), false
	}

	data := TryParseJSON(content)
	if data == nil {
		slog.Warn("strict response unparseable, retrying relaxed", "hash", hash)
		content, err = c.ai.Chat(ctx, systemPrompt, userPrompt, false)
		if err != nil {
			slog.Warn("relaxed model call failed, using heuristic", "hash", hash, "error", err)
			return HeuristicClassification(hash, message), false
		}
		data = TryParseJSON(content)
	}

	if data == nil {
		slog.Warn("model output unparseable, using heuristic", "hash", hash)
		return HeuristicClassification(hash, message), true
	}

	return domain.Classification{
		CommitHash:  stringField(data, "commit_hash"),
		WorkType:    domain.WorkType(stringField(data, "work_type")),
		Bullet:      stringField(data, "bullet"),
		TeamSnippet: stringField(data, "team_snippet"),
	}, true
}

// sanitize backfills missing fields from the heuristic defaults and always
// forces the hash to the extracted one; model output is never trusted for it.
func sanitize(c domain.Classification, hash, message string) domain.Classification {
	c.CommitHash = hash
	c.WorkType = domain.ParseWorkType(string(c.WorkType))
	if c.Bullet == "" {
		c.Bullet = heuristicBullet(c.WorkType, hash, message)
	}
	if c.TeamSnippet == "" {
		c.TeamSnippet = heuristicSnippet(message)
	}
	return c
}

func buildCommitPrompts(raw, hash, repoName, timeWindow string) (string, string) {
	systemPrompt := fmt.Sprintf(`You are a developer journal assistant. Convert a single Git commit (header, files, and a --stat diff)
into a JSON object with: commit_hash, work_type, bullet, team_snippet.

Rules:
- work_type MUST be one of: feature, bugfix, refactor, docs, test, chore, perf, build, ci, other.
- bullet MUST be a single bullet string like:
- `+"`abc123`"+`: Clear one-sentence summary (key files)
Include the work type at the start in square brackets, e.g. "- [feature] `+"`abc123`"+`: ...".
- team_snippet MUST be a short phrase that can be aggregated across repos (no trailing punctuation).
- Use this time window phrase in your reasoning if needed: %q.

Respond with ONLY JSON (no prose), no code fences.`, timeWindow)

	userPrompt := fmt.Sprintf(`Repository: %s
Time Window: %s

Raw Commit Block:
%s

Return JSON ONLY with:
{
"commit_hash": %q,
"work_type": "feature|bugfix|refactor|docs|test|chore|perf|build|ci|other",
"bullet": "- [<work_type>] `+"`%s`"+`: <one-sentence summary> (files)",
"team_snippet": "<short phrase for cross-repo summary>"
}`, repoName, timeWindow, raw, hash, hash)

	return systemPrompt, userPrompt
}
