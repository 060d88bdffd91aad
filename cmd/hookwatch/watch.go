package main

import (
	"context"
	"fmt"
	"net/url"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/hookwatch/internal/feed"
	"github.com/jpalmerr/hookwatch/internal/poller"
	"github.com/jpalmerr/hookwatch/internal/tui"
)

// watchCmd shows a running hookwatch's events in the terminal.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow events in the terminal",
	Long: `Poll a hookwatch event endpoint and list the events in the terminal.

Keys:
  r - poll now
  q - quit

Example:
  hookwatch watch --url http://localhost:8080/api/events
  hookwatch watch --url https://hooks.example.com/api/events --interval 5s`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("url", "http://localhost:8080/api/events", "event endpoint to poll")
	watchCmd.Flags().Duration("interval", poller.DefaultInterval, "time between polls")
	watchCmd.Flags().Duration("timeout", poller.DefaultTimeout, "per-request timeout")
	watchCmd.Flags().Int("max-events", feed.DefaultCap, "number of events to keep on screen")
}

func runWatch(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("url")
	interval, _ := cmd.Flags().GetDuration("interval")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	maxEvents, _ := cmd.Flags().GetInt("max-events")

	if maxEvents <= 0 {
		return fmt.Errorf("max-events must be positive, got %d", maxEvents)
	}
	if u, err := url.Parse(source); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid watch settings: url must be an absolute http or https URL, got %q", source)
	}

	// the terminal belongs to tview, so logs are JSON on stderr only
	logger := newLogger()

	p, err := poller.New(source,
		poller.WithInterval(interval),
		poller.WithTimeout(timeout),
		poller.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("invalid watch settings: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return tui.New(p, maxEvents, logger).Run(ctx)
}
