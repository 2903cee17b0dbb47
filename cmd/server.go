package cmd

import (
	"rhythmcloud/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the RhythmCloud HTTP server",
	Long:  `Start the RhythmCloud HTTP server, serving the API and the bundled frontend.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
