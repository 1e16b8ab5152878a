package domain

import (
	"strings"
	"time"
)

// WorkType is the closed category assigned to a commit.
type WorkType string

const (
	WorkFeature  WorkType = "feature"
	WorkBugfix   WorkType = "bugfix"
	WorkRefactor WorkType = "refactor"
	WorkDocs     WorkType = "docs"
	WorkTest     WorkType = "test"
	WorkChore    WorkType = "chore"
	WorkPerf     WorkType = "perf"
	WorkBuild    WorkType = "build"
	WorkCI       WorkType = "ci"
	WorkOther    WorkType = "other"
)

// ParseWorkType maps a free-form string onto the closed enumeration.
// Unknown or empty values collapse to WorkOther.
func ParseWorkType(s string) WorkType {
	switch WorkType(strings.ToLower(strings.TrimSpace(s))) {
	case WorkFeature, WorkBugfix, WorkRefactor, WorkDocs, WorkTest,
		WorkChore, WorkPerf, WorkBuild, WorkCI, WorkOther:
		return WorkType(strings.ToLower(strings.TrimSpace(s)))
	}
	return WorkOther
}

// ScanMode selects the time window for a scan.
type ScanMode string

const (
	ModeToday   ScanMode = "today"
	ModeWeekly  ScanMode = "weekly"
	ModeMonthly ScanMode = "monthly"
	ModeCustom  ScanMode = "custom"
)

// ParseScanMode maps a string onto a ScanMode, defaulting to ModeToday.
func ParseScanMode(s string) ScanMode {
	switch ScanMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeToday, ModeWeekly, ModeMonthly, ModeCustom:
		return ScanMode(strings.ToLower(strings.TrimSpace(s)))
	}
	return ModeToday
}

// Classification is the cached result of classifying one commit.
// This is exactly the shape persisted in the cache file.
type Classification struct {
	CommitHash  string   `json:"commit_hash"`
	WorkType    WorkType `json:"work_type"`
	Bullet      string   `json:"bullet"`
	TeamSnippet string   `json:"team_snippet"`
}

// CommitRecord is one classified commit with its diff statistics.
type CommitRecord struct {
	CommitHash   string   `json:"commit_hash"`
	WorkType     WorkType `json:"work_type"`
	Bullet       string   `json:"bullet"`
	TeamSnippet  string   `json:"team_snippet"`
	Message      string   `json:"message"`
	FilesChanged int      `json:"files_changed"`
	Insertions   int      `json:"insertions"`
	Deletions    int      `json:"deletions"`
}

// CommitBlock is the raw extracted text for one commit: a "<hash> <message>"
// header followed by the surviving changed-file lines and an optional stat line.
type CommitBlock struct {
	Hash    string
	Message string
	Raw     string
}

// DiffStat holds parsed shortstat counters for one commit.
type DiffStat struct {
	FilesChanged int `json:"files_changed"`
	Insertions   int `json:"insertions"`
	Deletions    int `json:"deletions"`
}

// RepositorySummary is all classified activity of one repository in a window.
// Commits keep git log order (most recent first) and are never reordered.
type RepositorySummary struct {
	RepoName       string           `json:"repo_name"`
	RepoPath       string           `json:"repo_path"`
	Commits        []CommitRecord   `json:"commits"`
	Bullets        []string         `json:"bullets"`
	TeamSnippets   []string         `json:"team_snippets"`
	StandupSummary string           `json:"standup_summary"`
	WorkTypeCounts map[WorkType]int `json:"work_type_counts"`
}

// CommitCount returns the number of commits in this repository.
func (r *RepositorySummary) CommitCount() int { return len(r.Commits) }

// TotalFilesChanged folds files-changed counters over all commits.
func (r *RepositorySummary) TotalFilesChanged() int {
	n := 0
	for _, c := range r.Commits {
		n += c.FilesChanged
	}
	return n
}

// TotalInsertions folds insertion counters over all commits.
func (r *RepositorySummary) TotalInsertions() int {
	n := 0
	for _, c := range r.Commits {
		n += c.Insertions
	}
	return n
}

// TotalDeletions folds deletion counters over all commits.
func (r *RepositorySummary) TotalDeletions() int {
	n := 0
	for _, c := range r.Commits {
		n += c.Deletions
	}
	return n
}

// ScanResult is the complete output of one scan.
type ScanResult struct {
	Repositories []RepositorySummary `json:"repositories"`
	TeamSummary  string              `json:"team_summary"`
	ScanMode     ScanMode            `json:"scan_mode"`
	SinceDate    string              `json:"since_date"`
	ToDate       string              `json:"to_date,omitempty"`
	ScanTime     time.Time           `json:"scan_time"`
}

// TotalRepos returns the number of scanned repositories with activity.
func (s *ScanResult) TotalRepos() int { return len(s.Repositories) }

// TotalCommits folds commit counts over all repositories.
func (s *ScanResult) TotalCommits() int {
	n := 0
	for i := range s.Repositories {
		n += s.Repositories[i].CommitCount()
	}
	return n
}

// WorkTypeDistribution folds the work-type histogram over all repositories.
// It is always computed from the commits, never stored.
func (s *ScanResult) WorkTypeDistribution() map[WorkType]int {
	dist := make(map[WorkType]int)
	for i := range s.Repositories {
		for _, c := range s.Repositories[i].Commits {
			dist[c.WorkType]++
		}
	}
	return dist
}

// Scan phases reported through ScanProgress.
const (
	PhaseScanning    = "scanning"
	PhaseSummarizing = "summarizing"
	PhaseComplete    = "complete"
)

// ScanProgress is an ephemeral progress event emitted while scanning.
type ScanProgress struct {
	TotalRepos      int    `json:"total_repos"`
	CurrentRepo     int    `json:"current_repo"`
	CurrentRepoName string `json:"current_repo_name"`
	Phase           string `json:"phase"`
	Message         string `json:"message"`
}

// Percentage returns completion as 0-100.
func (p ScanProgress) Percentage() float64 {
	if p.TotalRepos == 0 {
		return 100.0
	}
	return float64(p.CurrentRepo) / float64(p.TotalRepos) * 100.0
}

// IsComplete reports whether the scan has finished.
func (p ScanProgress) IsComplete() bool { return p.Phase == PhaseComplete }

// ProgressFunc receives progress events during a scan. May be nil.
type ProgressFunc func(ScanProgress)

// ConnectivityStatus is the result of the model-service connectivity test.
type ConnectivityStatus struct {
	Available bool     `json:"available"`
	Models    []string `json:"models"`
	Error     string   `json:"error,omitempty"`
}
