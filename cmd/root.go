package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"packvault/server"
)

var rootCmd = &cobra.Command{
	Use:   "packvault",
	Short: "PackVault is the sample-pack marketplace backend.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
