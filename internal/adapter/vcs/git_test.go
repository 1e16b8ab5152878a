package vcs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devdiary/devdiary/internal/domain"
)

func TestParseBlocks(t *testing.T) {
	g := NewGitProvider(nil)

	t.Run("splits and filters", func(t *testing.T) {
		output := strings.Join([]string{
			CommitSeparator,
			"a1b2c3 fix login bug",
			"src/auth.go",
			"venv/lib/thing.py",
			CommitSeparator,
			"d4e5f6 add export feature",
			"internal/export/export.go",
			"internal/export/markdown.go",
		}, "\n")

		blocks := g.parseBlocks(output)
		if len(blocks) != 2 {
			t.Fatalf("got %d blocks, want 2", len(blocks))
		}
		if blocks[0].Hash != "a1b2c3" || blocks[0].Message != "fix login bug" {
			t.Errorf("block 0 = %q / %q", blocks[0].Hash, blocks[0].Message)
		}
		if strings.Contains(blocks[0].Raw, "venv") {
			t.Errorf("excluded path survived: %q", blocks[0].Raw)
		}
		if !strings.Contains(blocks[1].Raw, "internal/export/markdown.go") {
			t.Errorf("file line missing from block 1: %q", blocks[1].Raw)
		}
	})

	t.Run("drops blocks emptied by filtering", func(t *testing.T) {
		output := strings.Join([]string{
			CommitSeparator,
			"abc123 vendor update",
			"venv/lib/a.py",
			".venv/lib/b.py",
			CommitSeparator,
			"def456 real work",
			"main.go",
		}, "\n")

		blocks := g.parseBlocks(output)
		if len(blocks) != 1 {
			t.Fatalf("got %d blocks, want 1", len(blocks))
		}
		if blocks[0].Hash != "def456" {
			t.Errorf("surviving block = %q, want def456", blocks[0].Hash)
		}
	})

	t.Run("empty output", func(t *testing.T) {
		if blocks := g.parseBlocks(""); len(blocks) != 0 {
			t.Errorf("got %d blocks from empty output", len(blocks))
		}
	})

	t.Run("header with no message", func(t *testing.T) {
		output := CommitSeparator + "\nabc123\nmain.go"
		blocks := g.parseBlocks(output)
		if len(blocks) != 1 {
			t.Fatalf("got %d blocks, want 1", len(blocks))
		}
		if blocks[0].Message != "" {
			t.Errorf("Message = %q, want empty", blocks[0].Message)
		}
	})
}

func TestShouldExclude(t *testing.T) {
	g := NewGitProvider(nil)
	tests := []struct {
		path string
		want bool
	}{
		{"src/auth.go", false},
		{"venv/lib/site.py", true},
		{"project/.venv/x.py", true},
		{"app/__pycache__/m.pyc", true},
		{`Project\Env\Lib\x.py`, true}, // backslashes and case are normalized
		{"pkg/config/config.go", false},
		{"node/dist-info/meta", true},
	}
	for _, tt := range tests {
		if got := g.shouldExclude(tt.path); got != tt.want {
			t.Errorf("shouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestParseShortStat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want domain.DiffStat
	}{
		{
			"all three clauses",
			"3 files changed, 45 insertions(+), 12 deletions(-)",
			domain.DiffStat{FilesChanged: 3, Insertions: 45, Deletions: 12},
		},
		{
			"singular forms",
			"1 file changed, 1 insertion(+), 1 deletion(-)",
			domain.DiffStat{FilesChanged: 1, Insertions: 1, Deletions: 1},
		},
		{
			"no deletions clause",
			"1 file changed, 2 insertions(+)",
			domain.DiffStat{FilesChanged: 1, Insertions: 2},
		},
		{
			"stat embedded in show output",
			"abc123 fix thing\n 2 files changed, 10 insertions(+), 3 deletions(-)",
			domain.DiffStat{FilesChanged: 2, Insertions: 10, Deletions: 3},
		},
		{"garbage", "nothing useful here", domain.DiffStat{}},
		{"empty", "", domain.DiffStat{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseShortStat(tt.in); got != tt.want {
				t.Errorf("ParseShortStat(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFindRepositories(t *testing.T) {
	root := t.TempDir()
	mustMkdir := func(parts ...string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Join(parts...), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	mustMkdir(root, "alpha", ".git")
	mustMkdir(root, "beta", ".git")
	mustMkdir(root, "beta", "nested", ".git") // not descended into
	mustMkdir(root, "plain")

	g := NewGitProvider(nil)
	repos, err := g.FindRepositories(root)
	if err != nil {
		t.Fatalf("FindRepositories: %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("found %d repos, want 2: %v", len(repos), repos)
	}
	for _, r := range repos {
		base := filepath.Base(r)
		if base != "alpha" && base != "beta" {
			t.Errorf("unexpected repo %q", r)
		}
	}
}
