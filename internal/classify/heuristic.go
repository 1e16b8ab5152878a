package classify

import (
	"fmt"
	"strings"

	"github.com/devdiary/devdiary/internal/domain"
)

// keyword groups checked in fixed order; the first matching group wins, so a
// message containing both "fix" and "add" classifies as bugfix.
var heuristicRules = []struct {
	workType domain.WorkType
	keywords []string
}{
	{domain.WorkBugfix, []string{"fix", "bug", "hotfix", "patch"}},
	{domain.WorkFeature, []string{"feat", "feature", "add", "implement"}},
	{domain.WorkRefactor, []string{"refactor", "cleanup", "restructure"}},
	{domain.WorkDocs, []string{"doc", "readme", "changelog"}},
	{domain.WorkTest, []string{"test", "spec", "unittest"}},
	{domain.WorkPerf, []string{"perf", "optimiz"}},
	{domain.WorkBuild, []string{"build", "packag"}},
	{domain.WorkCI, []string{"ci", "pipeline", "workflow"}},
	{domain.WorkChore, []string{"chore", "deps", "dependency", "bump"}},
}

// HeuristicWorkType classifies a commit message by ordered keyword matching.
func HeuristicWorkType(message string) domain.WorkType {
	lower := strings.ToLower(message)
	for _, rule := range heuristicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.workType
			}
		}
	}
	return domain.WorkOther
}

// HeuristicClassification builds a deterministic classification used when the
// model is unavailable or its output cannot be parsed.
func HeuristicClassification(hash, message string) domain.Classification {
	wt := HeuristicWorkType(message)
	return domain.Classification{
		CommitHash:  hash,
		WorkType:    wt,
		Bullet:      heuristicBullet(wt, hash, message),
		TeamSnippet: heuristicSnippet(message),
	}
}

func heuristicBullet(wt domain.WorkType, hash, message string) string {
	if message == "" {
		message = "Updated files"
	}
	return fmt.Sprintf("- [%s] `%s`: %s", wt, hash, message)
}

// heuristicSnippet is the first 60 characters of the message with trailing
// periods stripped; an empty message yields "updates". Truncation counts
// runes, never splitting a multi-byte character.
func heuristicSnippet(message string) string {
	if message == "" {
		return "updates"
	}
	if runes := []rune(message); len(runes) > 60 {
		message = string(runes[:60])
	}
	return strings.TrimRight(message, ".")
}
