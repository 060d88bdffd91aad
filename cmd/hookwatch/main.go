// Package main is the entry point for the hookwatch CLI.
//
// hookwatch can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	hookwatch serve -c config.yaml                       # Receive webhooks and serve the dashboard
//	hookwatch validate -c config.yaml                    # Validate configuration
//	hookwatch watch --url http://host:8080/api/events    # Terminal viewer
//	hookwatch version                                    # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "hookwatch",
	Short: "A live dashboard for GitHub webhook activity",
	Long: `hookwatch receives GitHub webhooks and shows repository activity live.

Pushes, pull requests and merges are stored as events, served at
/api/events, and rendered as cards on a dashboard that refreshes itself
by polling that endpoint.

Quick start:
  1. Create a config file (hookwatch.yaml)
  2. Run: hookwatch serve -c hookwatch.yaml
  3. Point a GitHub webhook at http://<host>:8080/webhook
  4. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  poll_interval: 15s
  webhook_secret: ${GITHUB_WEBHOOK_SECRET}
  database: hookwatch.db`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this hookwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "hookwatch %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
