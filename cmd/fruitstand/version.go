package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at link time with -ldflags "-X main.version=..."
var version = "v0.1.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "fruitstand", version)
	},
}
