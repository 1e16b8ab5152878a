package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/devdiary/devdiary/internal/export"
	"github.com/devdiary/devdiary/internal/port"
)

var (
	exportFormat string
	exportOut    string
	exportStats  bool
)

var exportCmd = &cobra.Command{
	Use:   "export <scan-id>",
	Short: "Export a stored scan to a file",
	Long: `Export renders a scan from history in the requested format and writes it
to a file. When --out names a directory (or is omitted, using the configured
export directory), a timestamped filename is generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "output format: markdown, json, html")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file or directory (default from config)")
	exportCmd.Flags().BoolVar(&exportStats, "stats", true, "include commit statistics")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := buildApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	format, err := export.ParseFormat(pickFormat(cmd.Flags().Changed("format"), exportFormat, a.cfg.Export.DefaultFormat))
	if err != nil {
		return err
	}

	if a.history == nil {
		return errors.New("scan history is disabled in configuration")
	}

	result, err := a.history.GetScan(cmd.Context(), args[0])
	if errors.Is(err, port.ErrScanNotFound) {
		return fmt.Errorf("no stored scan with id %s", args[0])
	}
	if err != nil {
		return err
	}

	opts := export.DefaultOptions(format)
	opts.IncludeStats = exportStats
	opts.IncludeCommits = true
	content, err := export.Render(result, opts)
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = a.cfg.Export.Directory
		if err := os.MkdirAll(out, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	if info, statErr := os.Stat(out); statErr == nil && info.IsDir() {
		name := fmt.Sprintf("devdiary_%s_%s.%s", result.ScanMode, time.Now().Format("2006-01-02"), format.Extension())
		out = filepath.Join(out, name)
	} else if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}

	if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	slog.Info("export written", "path", out, "format", format)
	return nil
}
