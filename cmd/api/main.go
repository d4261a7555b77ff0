// cmd/api/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configDir string

// rootCmd runs the API server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:           "greencart-api",
	Short:         "GreenCart delivery operations API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "./config", "Directory containing config.yaml")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
