package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/devdiary/devdiary/internal/domain"
)

// Markdown renders a scan result as a Markdown document: a headed section
// per repository with its bullet list and standup paragraph, then a trailing
// team section.
func Markdown(result *domain.ScanResult, opts Options) string {
	var b strings.Builder

	b.WriteString("# DevDiary Summary\n\n")
	fmt.Fprintf(&b, "**Mode:** %s\n", result.ScanMode)
	to := result.ToDate
	if to == "" {
		to = "now"
	}
	fmt.Fprintf(&b, "**Period:** %s to %s\n", result.SinceDate, to)
	fmt.Fprintf(&b, "**Generated:** %s\n", result.ScanTime.Format("2006-01-02 15:04:05"))

	if opts.IncludeStats {
		b.WriteString("\n## Overview\n\n")
		fmt.Fprintf(&b, "- **Total Repositories:** %d\n", result.TotalRepos())
		fmt.Fprintf(&b, "- **Total Commits:** %d\n", result.TotalCommits())

		if dist := result.WorkTypeDistribution(); len(dist) > 0 {
			b.WriteString("\n### Work Type Distribution\n\n")
			for _, wc := range sortedCounts(dist) {
				fmt.Fprintf(&b, "- **%s:** %d\n", capitalize(string(wc.workType)), wc.count)
			}
		}
	}

	b.WriteString("\n## Repositories\n\n")
	for i := range result.Repositories {
		repo := &result.Repositories[i]
		fmt.Fprintf(&b, "### %s\n\n", repo.RepoName)

		if opts.IncludeStats {
			fmt.Fprintf(&b, "**Commits:** %d | **Files:** %d | **+%d** / **-%d**\n\n",
				repo.CommitCount(), repo.TotalFilesChanged(), repo.TotalInsertions(), repo.TotalDeletions())
		}

		if opts.IncludeBullets && len(repo.Bullets) > 0 {
			b.WriteString("**Commits:**\n\n")
			for _, bullet := range repo.Bullets {
				b.WriteString(bullet + "\n")
			}
			b.WriteString("\n")
		}

		if opts.IncludeStandup && repo.StandupSummary != "" {
			b.WriteString("**Standup Summary:**\n\n")
			b.WriteString(repo.StandupSummary + "\n\n")
		}

		if opts.IncludeCommits && len(repo.Commits) > 0 {
			b.WriteString("<details>\n<summary>Commit Details</summary>\n\n")
			for _, c := range repo.Commits {
				fmt.Fprintf(&b, "- `%s`: %s\n", c.CommitHash, c.Message)
				if c.FilesChanged > 0 {
					fmt.Fprintf(&b, "  - Files: %d, +%d, -%d\n", c.FilesChanged, c.Insertions, c.Deletions)
				}
			}
			b.WriteString("\n</details>\n\n")
		}
	}

	if opts.IncludeTeam && result.TeamSummary != "" {
		b.WriteString("## Team Summary\n\n")
		b.WriteString(result.TeamSummary + "\n")
	}

	b.WriteString("\n---\n\n*Generated with DevDiary*\n")
	return b.String()
}

type workTypeCount struct {
	workType domain.WorkType
	count    int
}

// sortedCounts orders a histogram by descending count, then name for
// deterministic output.
func sortedCounts(dist map[domain.WorkType]int) []workTypeCount {
	counts := make([]workTypeCount, 0, len(dist))
	for wt, n := range dist {
		counts = append(counts, workTypeCount{wt, n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].workType < counts[j].workType
	})
	return counts
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
