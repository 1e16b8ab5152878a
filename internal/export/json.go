package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/devdiary/devdiary/internal/domain"
)

type jsonDocument struct {
	ScanMode    string           `json:"scan_mode"`
	SinceDate   string           `json:"since_date"`
	ToDate      string           `json:"to_date,omitempty"`
	ScanTime    time.Time        `json:"scan_time"`
	Statistics  jsonStatistics   `json:"statistics"`
	TeamSummary *string          `json:"team_summary,omitempty"`
	Repos       []jsonRepository `json:"repositories"`
}

type jsonStatistics struct {
	TotalRepos           int            `json:"total_repos"`
	TotalCommits         int            `json:"total_commits"`
	WorkTypeDistribution map[string]int `json:"work_type_distribution"`
}

type jsonRepository struct {
	Name       string         `json:"name"`
	Path       string         `json:"path"`
	Statistics *jsonRepoStats `json:"statistics,omitempty"`
	Bullets    []string       `json:"bullets,omitempty"`
	Standup    string         `json:"standup_summary,omitempty"`
	Commits    []jsonCommit   `json:"commits,omitempty"`
}

type jsonRepoStats struct {
	Commits        int            `json:"commits"`
	FilesChanged   int            `json:"files_changed"`
	Insertions     int            `json:"insertions"`
	Deletions      int            `json:"deletions"`
	WorkTypeCounts map[string]int `json:"work_type_counts"`
}

type jsonCommit struct {
	Hash         string `json:"hash"`
	Message      string `json:"message"`
	WorkType     string `json:"work_type"`
	FilesChanged int    `json:"files_changed"`
	Insertions   int    `json:"insertions"`
	Deletions    int    `json:"deletions"`
}

// JSON renders a scan result as a flat JSON document mirroring the scan
// structure with per-repository statistics.
func JSON(result *domain.ScanResult, opts Options) (string, error) {
	doc := jsonDocument{
		ScanMode:  string(result.ScanMode),
		SinceDate: result.SinceDate,
		ToDate:    result.ToDate,
		ScanTime:  result.ScanTime,
		Statistics: jsonStatistics{
			TotalRepos:           result.TotalRepos(),
			TotalCommits:         result.TotalCommits(),
			WorkTypeDistribution: stringKeys(result.WorkTypeDistribution()),
		},
		Repos: make([]jsonRepository, 0, len(result.Repositories)),
	}

	if opts.IncludeTeam {
		doc.TeamSummary = &result.TeamSummary
	}

	for i := range result.Repositories {
		repo := &result.Repositories[i]
		jr := jsonRepository{Name: repo.RepoName, Path: repo.RepoPath}

		if opts.IncludeStats {
			jr.Statistics = &jsonRepoStats{
				Commits:        repo.CommitCount(),
				FilesChanged:   repo.TotalFilesChanged(),
				Insertions:     repo.TotalInsertions(),
				Deletions:      repo.TotalDeletions(),
				WorkTypeCounts: stringKeys(repo.WorkTypeCounts),
			}
		}
		if opts.IncludeBullets {
			jr.Bullets = repo.Bullets
		}
		if opts.IncludeStandup {
			jr.Standup = repo.StandupSummary
		}
		if opts.IncludeCommits {
			for _, c := range repo.Commits {
				jr.Commits = append(jr.Commits, jsonCommit{
					Hash:         c.CommitHash,
					Message:      c.Message,
					WorkType:     string(c.WorkType),
					FilesChanged: c.FilesChanged,
					Insertions:   c.Insertions,
					Deletions:    c.Deletions,
				})
			}
		}
		doc.Repos = append(doc.Repos, jr)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}
	return string(data), nil
}

func stringKeys(dist map[domain.WorkType]int) map[string]int {
	out := make(map[string]int, len(dist))
	for wt, n := range dist {
		out[string(wt)] = n
	}
	return out
}
