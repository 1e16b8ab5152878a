package vcs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/devdiary/devdiary/internal/domain"
)

// CommitSeparator delimits commit blocks in joined raw output so that
// downstream stages can re-split deterministically.
const CommitSeparator = "===COMMIT==="

// DefaultExcludedPatterns filters generated and vendored paths out of
// changed-file lists. Matching is by substring on the lower-cased path.
var DefaultExcludedPatterns = []string{
	"venv/", ".venv/", "__pycache__",
	".git/", "env/", "site-packages", "/bin/", "/lib/", "dist-info",
}

// GitProvider implements port.VCSProvider using the git CLI.
type GitProvider struct {
	excluded []string
}

// NewGitProvider creates a Git VCS provider with the given exclusion
// patterns. Nil means DefaultExcludedPatterns.
func NewGitProvider(excluded []string) *GitProvider {
	if excluded == nil {
		excluded = DefaultExcludedPatterns
	}
	return &GitProvider{excluded: excluded}
}

// CommitBlocks returns the filtered commit blocks for a repository inside the
// window, most recent first. Blocks whose changed-file list is emptied by
// filtering are dropped entirely. Any git failure yields an empty slice: the
// caller treats it the same as a repository with no activity.
func (g *GitProvider) CommitBlocks(ctx context.Context, repoPath string, window domain.DateWindow) []domain.CommitBlock {
	args := []string{
		"-C", repoPath, "log",
		"--since", window.Since + " 00:00",
	}
	if window.To != "" {
		args = append(args, "--until", window.To+" 23:59")
	}
	args = append(args, "--pretty=format:"+CommitSeparator+"%n%h %s", "--name-only")

	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.Output()
	if err != nil {
		slog.Debug("git log failed, treating as no activity", "repo", repoPath, "error", err)
		return nil
	}

	blocks := g.parseBlocks(string(output))
	for i := range blocks {
		if stat := g.statLine(ctx, repoPath, blocks[i].Hash); stat != "" {
			blocks[i].Raw += "\n\n" + stat
		}
	}
	return blocks
}

// parseBlocks splits raw git log output on the separator and applies the
// exclusion filter to each block's file lines.
func (g *GitProvider) parseBlocks(output string) []domain.CommitBlock {
	var blocks []domain.CommitBlock
	for _, raw := range strings.Split(strings.TrimSpace(output), CommitSeparator) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		lines := strings.Split(raw, "\n")
		header := strings.TrimSpace(lines[0])
		parts := strings.SplitN(header, " ", 2)
		hash := parts[0]
		message := ""
		if len(parts) > 1 {
			message = parts[1]
		}

		var files []string
		for _, line := range lines[1:] {
			line = strings.TrimSpace(line)
			if line == "" || g.shouldExclude(line) {
				continue
			}
			files = append(files, line)
		}

		// A commit with no surviving files carries no reviewable work.
		if len(files) == 0 {
			continue
		}

		blocks = append(blocks, domain.CommitBlock{
			Hash:    hash,
			Message: message,
			Raw:     header + "\n" + strings.Join(files, "\n"),
		})
	}
	return blocks
}

// shouldExclude reports whether a changed-file path matches any exclusion
// pattern. Paths are normalized to forward slashes and lower case first.
func (g *GitProvider) shouldExclude(line string) bool {
	normalized := strings.ToLower(filepath.ToSlash(strings.TrimSpace(line)))
	for _, pattern := range g.excluded {
		if strings.Contains(normalized, pattern) {
			return true
		}
	}
	return false
}

// statLine returns the raw stat summary for one commit, or "".
func (g *GitProvider) statLine(ctx context.Context, repoPath, commitHash string) string {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "show", "--stat", "--oneline", commitHash)
	output, err := cmd.Output()
	if err != nil {
		slog.Debug("git show failed", "repo", repoPath, "hash", commitHash, "error", err)
		return ""
	}
	return strings.TrimSpace(string(output))
}

// DiffStat returns the files/insertions/deletions counters for one commit.
// Failure yields zero counters, never an error.
func (g *GitProvider) DiffStat(ctx context.Context, repoPath, commitHash string) domain.DiffStat {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "show", "--shortstat", "--oneline", commitHash)
	output, err := cmd.Output()
	if err != nil {
		slog.Debug("diff stat failed, using zeros", "repo", repoPath, "hash", commitHash, "error", err)
		return domain.DiffStat{}
	}
	return ParseShortStat(string(output))
}

var (
	filesRe      = regexp.MustCompile(`(\d+) files? changed`)
	insertionsRe = regexp.MustCompile(`(\d+) insertions?\(\+\)`)
	deletionsRe  = regexp.MustCompile(`(\d+) deletions?\(-\)`)
)

// ParseShortStat extracts the three counters from a git shortstat line like
// "3 files changed, 45 insertions(+), 12 deletions(-)". Absent clauses
// default that counter to 0.
func ParseShortStat(text string) domain.DiffStat {
	var stat domain.DiffStat
	if m := filesRe.FindStringSubmatch(text); m != nil {
		stat.FilesChanged, _ = strconv.Atoi(m[1])
	}
	if m := insertionsRe.FindStringSubmatch(text); m != nil {
		stat.Insertions, _ = strconv.Atoi(m[1])
	}
	if m := deletionsRe.FindStringSubmatch(text); m != nil {
		stat.Deletions, _ = strconv.Atoi(m[1])
	}
	return stat
}

// FindRepositories walks root and collects every directory that contains a
// .git entry. Found repositories are not descended into.
func (g *GitProvider) FindRepositories(root string) ([]string, error) {
	var repos []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable directories are skipped, not fatal
		}
		if !d.IsDir() {
			return nil
		}
		if _, statErr := os.Stat(filepath.Join(path, ".git")); statErr == nil {
			repos = append(repos, path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return repos, nil
}
