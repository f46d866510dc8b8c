// Package main provides the outreach CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joss/openoutreach/internal/config"
)

var (
	version = "0.1.0"
	pretty  = true
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "outreach",
		Short: "LinkedIn outreach automation service",
		Long: `Outreach drives a real browser session against LinkedIn to send
connection requests and messages, scrape conversation threads, and
check connection status.

Run 'outreach serve' to expose the HTTP API, or use the one-shot
commands (reach-out, conversation, reply, connection) directly.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load env from the home config first, then the working
			// directory; explicit environment always wins.
			godotenv.Load(config.GetPaths().EnvFile)
			godotenv.Load()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "Pretty print output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(reachOutCmd())
	rootCmd.AddCommand(conversationCmd())
	rootCmd.AddCommand(replyCmd())
	rootCmd.AddCommand(connectionCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(sessionsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
