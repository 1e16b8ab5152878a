package port

import (
	"context"

	"github.com/devdiary/devdiary/internal/domain"
)

// VCSProvider abstracts version control queries for commit extraction.
type VCSProvider interface {
	// CommitBlocks returns the filtered commit blocks of a repository inside
	// the given window, in log order (most recent first). A failing query
	// yields an empty slice, never an error: the orchestrator treats failure
	// the same as "no activity in window".
	CommitBlocks(ctx context.Context, repoPath string, window domain.DateWindow) []domain.CommitBlock

	// DiffStat returns the files/insertions/deletions counters for one
	// commit. Failure yields zero counters; statistics are best-effort
	// enrichment, never load-bearing.
	DiffStat(ctx context.Context, repoPath, commitHash string) domain.DiffStat

	// FindRepositories walks root and returns every directory containing a
	// .git entry, without recursing into found repositories.
	FindRepositories(root string) ([]string, error)
}
