// Package cmd holds the events-api command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags
var (
	logLevel  string
	logPretty bool
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "events-api",
		Short: "Events platform REST backend",
		Long: `events-api serves the events platform REST API: accounts, events,
favorites and the attendance registry.

Running it without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), serveOptions{})
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: LOG_LEVEL or info)")
	root.PersistentFlags().BoolVar(&logPretty, "log-pretty", false, "human readable console logs")

	root.AddCommand(newServeCommand())
	root.AddCommand(newSeedCommand())
	return root
}

// Execute runs the command tree. Called once by main.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
