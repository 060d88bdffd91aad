package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/hookwatch"
	"github.com/jpalmerr/hookwatch/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the hookwatch server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Receive webhooks and serve the dashboard",
	Long: `Start the hookwatch server.

The server will:
  - Load configuration from the specified YAML file
  - Accept GitHub webhooks on POST /webhook
  - Serve events on /api/events and the dashboard on the configured port
  - Poll the event endpoint and push changes to connected viewers

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  hookwatch serve -c config.yaml
  hookwatch serve --config /etc/hookwatch/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := config.OpenStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	storage := "memory"
	if cfg.Database != "" {
		storage = cfg.Database
	}
	logger.Info("config loaded",
		"port", cfg.Port,
		"poll_interval", cfg.PollInterval.Duration().String(),
		"store", storage,
		"signed_webhooks", cfg.WebhookSecret != "",
	)

	opts := append(config.BuildOptions(cfg),
		hookwatch.WithStore(st),
		hookwatch.WithVersion(version),
		hookwatch.WithLogger(logger),
	)

	m, err := hookwatch.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start server - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- m.Start(ctx)
	}()

	// wait for server to finish
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
