package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/devdiary/devdiary/internal/domain"
	"github.com/devdiary/devdiary/internal/export"
	"github.com/devdiary/devdiary/internal/service"
)

var (
	scanMode     string
	scanSince    string
	scanTo       string
	scanRoot     string
	scanRepos    []string
	scanMaxRepos int
	scanFormat   string
	scanOut      string
	scanStats    bool
	scanSave     bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan repositories and summarize activity",
	Long: `Scan discovers Git repositories under the configured root (or uses the
given --repo paths), classifies every commit in the selected time window,
and prints the rendered summary.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanMode, "mode", "m", "today", "time window: today, weekly, monthly, custom")
	scanCmd.Flags().StringVar(&scanSince, "since", "", "start date for custom mode (YYYY-MM-DD)")
	scanCmd.Flags().StringVar(&scanTo, "to", "", "end date (YYYY-MM-DD)")
	scanCmd.Flags().StringVar(&scanRoot, "root", "", "root directory to discover repositories under")
	scanCmd.Flags().StringSliceVar(&scanRepos, "repo", nil, "scan only these repository paths (repeatable)")
	scanCmd.Flags().IntVar(&scanMaxRepos, "max-repos", 0, "cap the number of repositories scanned (0 = unlimited)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "markdown", "output format: markdown, json, html")
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "write output to file instead of stdout")
	scanCmd.Flags().BoolVar(&scanStats, "stats", false, "include commit statistics in the output")
	scanCmd.Flags().BoolVar(&scanSave, "save", true, "persist the scan in history")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := buildApp(scanSave)
	if err != nil {
		return err
	}
	defer a.close()

	format, err := export.ParseFormat(pickFormat(cmd.Flags().Changed("format"), scanFormat, a.cfg.Export.DefaultFormat))
	if err != nil {
		return err
	}

	root := scanRoot
	if root == "" {
		root = a.cfg.ExpandedRootPath()
	}
	maxRepos := scanMaxRepos
	if maxRepos == 0 {
		maxRepos = a.cfg.Scanning.MaxRepos
	}

	opts := service.ScanOptions{
		Mode:     domain.ParseScanMode(scanMode),
		Since:    scanSince,
		To:       scanTo,
		Repos:    scanRepos,
		Root:     root,
		MaxRepos: maxRepos,
	}

	result, err := a.svc.Scan(cmd.Context(), opts, func(p domain.ScanProgress) {
		slog.Info(p.Message, "phase", p.Phase, "progress", fmt.Sprintf("%d/%d", p.CurrentRepo, p.TotalRepos))
	})
	if err != nil {
		return err
	}

	if a.history != nil {
		id, err := a.history.SaveScan(cmd.Context(), result)
		if err != nil {
			slog.Warn("persist scan failed", "error", err)
		} else {
			slog.Info("scan saved", "id", id)
		}
	}

	renderOpts := export.DefaultOptions(format)
	renderOpts.IncludeStats = scanStats
	content, err := export.Render(result, renderOpts)
	if err != nil {
		return err
	}

	if scanOut == "" {
		fmt.Println(content)
		return nil
	}

	out := scanOut
	if info, statErr := os.Stat(out); statErr == nil && info.IsDir() {
		name := fmt.Sprintf("devdiary_%s_%s.%s", result.ScanMode, time.Now().Format("2006-01-02"), format.Extension())
		out = filepath.Join(out, name)
	}
	if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	slog.Info("output written", "path", out)
	return nil
}
