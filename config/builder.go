package config

import (
	"github.com/jpalmerr/hookwatch"
)

// BuildOptions converts parsed configuration into SDK options for
// [hookwatch.New].
//
// The store is not included: open it with [OpenStore] so the caller can
// close it after the monitor stops.
func BuildOptions(cfg *Config) []hookwatch.Option {
	opts := []hookwatch.Option{
		hookwatch.WithPort(cfg.Port),
		hookwatch.WithPollingInterval(cfg.PollInterval.Duration()),
		hookwatch.WithMaxEvents(cfg.MaxEvents),
		hookwatch.WithPauseWhenIdle(cfg.PauseWhenIdle),
	}

	if cfg.Title != "" {
		opts = append(opts, hookwatch.WithTitle(cfg.Title))
	}

	if cfg.RequestTimeout != 0 {
		opts = append(opts, hookwatch.WithRequestTimeout(cfg.RequestTimeout.Duration()))
	}

	if cfg.SourceURL != "" {
		opts = append(opts, hookwatch.WithSourceURL(cfg.SourceURL))
	}

	if cfg.WebhookSecret != "" {
		opts = append(opts, hookwatch.WithWebhookSecret(cfg.WebhookSecret))
	}

	return opts
}

// OpenStore returns the event store the configuration asks for: SQLite when
// database is set, otherwise in memory. The caller must Close it.
func OpenStore(cfg *Config) (hookwatch.Store, error) {
	if cfg.Database == "" {
		return hookwatch.NewMemoryStore(), nil
	}
	return hookwatch.OpenSQLiteStore(cfg.Database)
}
