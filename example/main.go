package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/hookwatch"
)

const demoSecret = "demo-secret"

func main() {
	m, err := hookwatch.New(
		hookwatch.WithTitle("hookwatch demo"),
		hookwatch.WithPort(8080),
		hookwatch.WithPollingInterval(5*time.Second),
		hookwatch.WithWebhookSecret(demoSecret),
		hookwatch.WithEventsCallback(func(events []hookwatch.Event) {
			slog.Debug("poll", "events", len(events))
		}),
		hookwatch.WithErrorCallback(func(err error) {
			slog.Warn("poll failed", "error", err)
		}),
	)
	if err != nil {
		slog.Error("failed to create monitor", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   hookwatch Demo                                      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   A mock sender posts signed pushes, pull requests    ║")
	fmt.Println("  ║   and merges to /webhook every few seconds            ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start mock sender (see mock_sender.go)
	go StartMockWebhookSender(ctx, "http://localhost:8080/webhook", demoSecret)

	if err := m.Start(ctx); err != nil {
		slog.Error("hookwatch error", "error", err)
		os.Exit(1)
	}
}
