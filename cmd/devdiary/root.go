package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/devdiary/devdiary/internal/adapter/ai"
	"github.com/devdiary/devdiary/internal/adapter/store"
	"github.com/devdiary/devdiary/internal/adapter/vcs"
	"github.com/devdiary/devdiary/internal/port"
	"github.com/devdiary/devdiary/internal/service"
	"github.com/devdiary/devdiary/pkg/config"
)

var (
	configFlag  string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "devdiary",
	Short: "DevDiary - Git activity journal",
	Long: `DevDiary scans your local Git repositories, classifies each commit with a
local LLM (with deterministic fallbacks), and produces standup-style
summaries per repository plus one cross-repository team summary.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verboseFlag {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default ~/.devdiary.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
}

// app bundles the wired services for one command invocation.
type app struct {
	cfg     *config.Config
	git     *vcs.GitProvider
	cache   *store.FileCache // nil when the cache is disabled
	svc     *service.ScanService
	history port.HistoryStore // nil when disabled
}

// buildApp loads configuration and wires adapters and services the way the
// command needs them. withHistory opens the scan history database.
func buildApp(withHistory bool) (*app, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}

	git := vcs.NewGitProvider(cfg.Scanning.ExcludedPatterns)

	var cache *store.FileCache
	var classCache port.ClassificationCache = store.NewNoopCache()
	if cfg.Cache.Enabled {
		cache = store.NewFileCache(cfg.Cache.Path)
		classCache = cache
	}

	var provider port.AIProvider
	if cfg.Ollama.Enabled {
		provider = ai.NewOllamaProvider(ai.OllamaEndpointConfig{
			BaseURL: cfg.Ollama.Endpoint,
			Model:   cfg.Ollama.Model,
			Token:   cfg.Ollama.Token,
		})
	}

	a := &app{
		cfg:   cfg,
		git:   git,
		cache: cache,
		svc:   service.NewScanService(git, classCache, provider),
	}

	if withHistory && cfg.History.Enabled {
		history, err := store.NewHistoryStore(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open scan history: %w", err)
		}
		a.history = history
	}
	return a, nil
}

// pickFormat prefers an explicitly set --format flag over the configured
// default export format.
func pickFormat(flagChanged bool, flagValue, configured string) string {
	if !flagChanged && configured != "" {
		return configured
	}
	return flagValue
}

func (a *app) close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			slog.Warn("close history store", "error", err)
		}
	}
}
