package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the classification cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache location and size",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		if a.cache == nil {
			return errors.New("the classification cache is disabled in configuration")
		}
		fmt.Printf("path:    %s\n", a.cache.Path())
		fmt.Printf("entries: %d\n", a.cache.Len())
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove stale failure entries from the cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		if a.cache == nil {
			return errors.New("the classification cache is disabled in configuration")
		}
		n := a.cache.PurgeBad()
		fmt.Printf("purged %d entries, %d remain\n", n, a.cache.Len())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
