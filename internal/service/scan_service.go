package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/devdiary/devdiary/internal/classify"
	"github.com/devdiary/devdiary/internal/domain"
	"github.com/devdiary/devdiary/internal/port"
	"github.com/devdiary/devdiary/internal/summarize"
)

// ScanOptions configures one scan run.
type ScanOptions struct {
	Mode  domain.ScanMode
	Since string // explicit start date for custom mode (YYYY-MM-DD)
	To    string // optional end date (YYYY-MM-DD)

	// Repos is a pre-selected repository list. When empty, repositories are
	// discovered under Root.
	Repos []string
	Root  string

	// MaxRepos caps the number of repositories scanned (0 = unlimited).
	MaxRepos int
}

// ScanService drives extraction, classification and aggregation across a
// repository set. It exclusively owns the ScanResult for the duration of a
// scan; all work is strictly sequential.
type ScanService struct {
	vcs   port.VCSProvider
	cache port.ClassificationCache
	ai    port.AIProvider // nil = model summarization disabled

	mu        sync.Mutex
	available *bool // lazy connectivity result, checked once per process
}

// NewScanService creates the orchestrator. ai may be nil to disable model
// calls entirely (heuristic-only mode).
func NewScanService(vcs port.VCSProvider, cache port.ClassificationCache, ai port.AIProvider) *ScanService {
	return &ScanService{vcs: vcs, cache: cache, ai: ai}
}

// Scan runs the full pipeline for the given options: resolve the window,
// extract and classify per repository, aggregate paragraphs, and assemble
// the result. Extraction failures are treated as repositories with no
// activity; only an unexpected summarization defect surfaces as an error.
func (s *ScanService) Scan(ctx context.Context, opts ScanOptions, progress domain.ProgressFunc) (*domain.ScanResult, error) {
	window := domain.ResolveWindow(opts.Mode, opts.Since, opts.To, time.Now())
	slog.Info("starting scan", "mode", window.Mode, "since", window.Since, "to", window.To)

	repos := opts.Repos
	if len(repos) == 0 {
		found, err := s.vcs.FindRepositories(opts.Root)
		if err != nil {
			return nil, fmt.Errorf("discover repositories: %w", err)
		}
		repos = found
	}
	if opts.MaxRepos > 0 && len(repos) > opts.MaxRepos {
		slog.Info("limiting repositories", "max", opts.MaxRepos, "found", len(repos))
		repos = repos[:opts.MaxRepos]
	}

	ai := s.ai
	if ai != nil && !s.modelAvailable(ctx) {
		slog.Warn("model unavailable, falling back to heuristics for this scan")
		ai = nil
	}
	classifier := classify.NewClassifier(ai, s.cache)
	summarizer := summarize.NewSummarizer(ai)

	result := &domain.ScanResult{
		ScanMode:  window.Mode,
		SinceDate: window.Since,
		ToDate:    window.To,
		ScanTime:  time.Now(),
	}

	// Extraction sweep. Raw blocks are carried alongside for the
	// summarization sweep, keyed by repository path.
	blocksByRepo := make(map[string][]domain.CommitBlock)
	for i, repoPath := range repos {
		name := filepath.Base(repoPath)
		emit(progress, domain.ScanProgress{
			TotalRepos:      len(repos),
			CurrentRepo:     i + 1,
			CurrentRepoName: name,
			Phase:           domain.PhaseScanning,
			Message:         fmt.Sprintf("Scanning %s...", name),
		})

		summary, blocks := s.scanRepository(ctx, repoPath, name, window)
		if summary != nil {
			result.Repositories = append(result.Repositories, *summary)
			blocksByRepo[repoPath] = blocks
		}
	}

	slog.Info("extraction complete", "active_repos", len(result.Repositories), "scanned", len(repos))

	// Summarization sweep.
	if err := s.summarizeResult(ctx, result, blocksByRepo, classifier, summarizer, window, progress); err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrSummarization, err)
	}

	emit(progress, domain.ScanProgress{
		TotalRepos:  len(repos),
		CurrentRepo: len(repos),
		Phase:       domain.PhaseComplete,
		Message:     fmt.Sprintf("Scan complete: %d repositories with commits", len(result.Repositories)),
	})

	return result, nil
}

// scanRepository extracts one repository's commit blocks and seeds commit
// records with heuristic classifications and diff statistics. Returns nil
// when the repository has no surviving activity in the window.
func (s *ScanService) scanRepository(ctx context.Context, repoPath, name string, window domain.DateWindow) (*domain.RepositorySummary, []domain.CommitBlock) {
	blocks := s.vcs.CommitBlocks(ctx, repoPath, window)
	if len(blocks) == 0 {
		slog.Debug("no commits in window", "repo", name)
		return nil, nil
	}
	slog.Info("found commits", "repo", name, "count", len(blocks))

	commits := make([]domain.CommitRecord, 0, len(blocks))
	for _, block := range blocks {
		seed := classify.HeuristicClassification(block.Hash, block.Message)
		stat := s.vcs.DiffStat(ctx, repoPath, block.Hash)
		commits = append(commits, domain.CommitRecord{
			CommitHash:   block.Hash,
			WorkType:     seed.WorkType,
			Bullet:       seed.Bullet,
			TeamSnippet:  seed.TeamSnippet,
			Message:      block.Message,
			FilesChanged: stat.FilesChanged,
			Insertions:   stat.Insertions,
			Deletions:    stat.Deletions,
		})
	}

	// Bullets, snippets, histogram and the standup paragraph are filled in
	// by the summarization sweep.
	return &domain.RepositorySummary{
		RepoName: name,
		RepoPath: repoPath,
		Commits:  commits,
	}, blocks
}

// summarizeResult runs classification and aggregation over every extracted
// repository, then the team paragraph.
func (s *ScanService) summarizeResult(ctx context.Context, result *domain.ScanResult, blocksByRepo map[string][]domain.CommitBlock, classifier *classify.Classifier, summarizer *summarize.Summarizer, window domain.DateWindow, progress domain.ProgressFunc) error {
	for i := range result.Repositories {
		repo := &result.Repositories[i]
		emit(progress, domain.ScanProgress{
			TotalRepos:      len(result.Repositories),
			CurrentRepo:     i + 1,
			CurrentRepoName: repo.RepoName,
			Phase:           domain.PhaseSummarizing,
			Message:         fmt.Sprintf("Summarizing %s...", repo.RepoName),
		})
		s.summarizeRepository(ctx, repo, blocksByRepo[repo.RepoPath], classifier, summarizer, window)
	}

	result.TeamSummary = summarizer.TeamParagraph(ctx, result.Repositories, window.Phrase())
	return nil
}

// summarizeRepository classifies every commit in log order and folds the
// results into bullets, snippets, the histogram and the standup paragraph.
func (s *ScanService) summarizeRepository(ctx context.Context, repo *domain.RepositorySummary, blocks []domain.CommitBlock, classifier *classify.Classifier, summarizer *summarize.Summarizer, window domain.DateWindow) {
	phrase := window.Phrase()

	repo.Bullets = repo.Bullets[:0]
	repo.TeamSnippets = repo.TeamSnippets[:0]
	counts := make(map[domain.WorkType]int)

	for i := range repo.Commits {
		commit := &repo.Commits[i]
		block := domain.CommitBlock{Hash: commit.CommitHash, Message: commit.Message, Raw: commit.CommitHash + " " + commit.Message}
		if i < len(blocks) {
			block = blocks[i]
		}

		c := classifier.Classify(ctx, block, repo.RepoName, phrase)
		commit.WorkType = c.WorkType
		commit.Bullet = c.Bullet
		commit.TeamSnippet = c.TeamSnippet

		repo.Bullets = append(repo.Bullets, c.Bullet)
		repo.TeamSnippets = append(repo.TeamSnippets, c.TeamSnippet)
		counts[c.WorkType]++
	}

	repo.WorkTypeCounts = counts
	repo.StandupSummary = summarizer.RepoParagraph(ctx, repo.RepoName, phrase, repo.Bullets, repo.TeamSnippets)
	slog.Info("summarized repository", "repo", repo.RepoName, "commits", len(repo.Commits))
}

// modelAvailable performs (and caches) the connectivity check.
func (s *ScanService) modelAvailable(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.available != nil {
		return *s.available
	}
	status := s.testConnection(ctx)
	s.available = &status.Available
	return status.Available
}

// TestConnection probes the model service and reports a structured status.
// This is the one diagnostic path where transport errors surface to the
// caller instead of being recovered.
func (s *ScanService) TestConnection(ctx context.Context) domain.ConnectivityStatus {
	return s.testConnection(ctx)
}

func (s *ScanService) testConnection(ctx context.Context) domain.ConnectivityStatus {
	if s.ai == nil {
		return domain.ConnectivityStatus{
			Available: false,
			Models:    []string{},
			Error:     "model summarization disabled in configuration",
		}
	}

	models, err := s.ai.ListModels(ctx)
	if err != nil {
		slog.Warn("connectivity test failed", "error", err)
		return domain.ConnectivityStatus{Available: false, Models: []string{}, Error: err.Error()}
	}

	want := strings.ToLower(s.ai.ModelName())
	for _, m := range models {
		if strings.Contains(strings.ToLower(m), want) {
			return domain.ConnectivityStatus{Available: true, Models: models}
		}
	}

	return domain.ConnectivityStatus{
		Available: false,
		Models:    models,
		Error:     fmt.Sprintf("%v: %s (available: %s)", port.ErrModelNotFound, s.ai.ModelName(), strings.Join(models, ", ")),
	}
}

func emit(progress domain.ProgressFunc, p domain.ScanProgress) {
	if progress != nil {
		progress(p)
	}
}
