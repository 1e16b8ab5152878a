package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check connectivity to the model service",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		status := a.svc.TestConnection(cmd.Context())
		if status.Available {
			fmt.Printf("model service reachable, %d models installed\n", len(status.Models))
			fmt.Printf("models: %s\n", strings.Join(status.Models, ", "))
			return nil
		}

		fmt.Println("model service unavailable")
		if status.Error != "" {
			fmt.Printf("reason: %s\n", status.Error)
		}
		if len(status.Models) > 0 {
			fmt.Printf("models: %s\n", strings.Join(status.Models, ", "))
		}
		fmt.Println("\nscans still work: commits are classified with keyword heuristics instead.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
