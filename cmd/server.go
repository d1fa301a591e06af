package cmd

import (
	"github.com/spf13/cobra"

	"packvault/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the PackVault HTTP server",
	Long:  `Start the PackVault admin console backend: pack ingestion, lifecycle management and the public showcase API.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
