package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devdiary/devdiary/internal/export"
	"github.com/devdiary/devdiary/internal/port"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored scans",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		if a.history == nil {
			return errors.New("scan history is disabled in configuration")
		}

		records, err := a.history.ListScans(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no stored scans")
			return nil
		}
		for _, r := range records {
			window := r.SinceDate
			if r.ToDate != "" {
				window += " to " + r.ToDate
			}
			fmt.Printf("%s  %-8s %-24s %s\n", r.ID, r.Mode, window, r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Render a stored scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		format, err := export.ParseFormat(pickFormat(cmd.Flags().Changed("format"), historyFormat, a.cfg.Export.DefaultFormat))
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
		opts.IncludeStats = true
		content, err := export.Render(result, opts)
		if err != nil {
			return err
		}
		fmt.Println(content)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of scans to list (0 = all)")
	historyShowCmd.Flags().StringVarP(&historyFormat, "format", "f", "markdown", "output format: markdown, json, html")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
