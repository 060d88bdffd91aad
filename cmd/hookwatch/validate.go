package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/hookwatch/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a hookwatch configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  hookwatch validate -c config.yaml
  hookwatch validate --config /etc/hookwatch/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	source := "this server (/api/events)"
	if cfg.SourceURL != "" {
		source = cfg.SourceURL
	}
	storage := "memory"
	if cfg.Database != "" {
		storage = "sqlite " + cfg.Database
	}
	signatures := "disabled"
	if cfg.WebhookSecret != "" {
		signatures = "enabled"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:          %d\n", cfg.Port)
	fmt.Fprintf(out, "  Poll interval: %s\n", cfg.PollInterval.Duration())
	fmt.Fprintf(out, "  Max events:    %d\n", cfg.MaxEvents)
	fmt.Fprintf(out, "  Source:        %s\n", source)
	fmt.Fprintf(out, "  Store:         %s\n", storage)
	fmt.Fprintf(out, "  Signatures:    %s\n", signatures)

	return nil
}
