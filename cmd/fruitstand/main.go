// Package main provides the fruitstand server CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configFile is set by the --config flag.
var configFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fruitstand",
	Short: "Fruitstand serves an in-memory fruit inventory over HTTP",
	Long: `Fruitstand is a small REST service that keeps a fruit inventory
in memory.  Requests pass through a filter pipeline that validates
fruit ids before any handler runs.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./fruitstand.yaml if present)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
