package hookwatch

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jpalmerr/hookwatch/internal/poller"
)

// monitorConfig holds mutable state during Monitor construction.
type monitorConfig struct {
	title           string
	version         string
	sourceURL       string
	pollingInterval time.Duration
	requestTimeout  time.Duration
	port            int
	maxEvents       int
	webhookSecret   string
	pauseWhenIdle   bool
	store           Store
	logger          *slog.Logger
	eventsCallbacks []func([]Event)
	errorCallbacks  []func(error)
}

// Option is a function that configures a [Monitor] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*monitorConfig) error

// WithSourceURL sets the event endpoint the dashboard polls.
//
// Defaults to the monitor's own http://localhost:<port>/api/events. Point it
// elsewhere to display events collected by another instance.
//
// Returns an error unless the URL is absolute http or https.
func WithSourceURL(raw string) Option {
	return func(cfg *monitorConfig) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid source url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source url scheme must be http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return errors.New("source url must include a host")
		}
		cfg.sourceURL = raw
		return nil
	}
}

// WithPollingInterval sets the delay between the end of one poll and the
// start of the next. Defaults to 15 seconds if not specified. The minimum
// is 100ms.
//
// Example:
//
//	m, err := hookwatch.New(
//	    hookwatch.WithPollingInterval(30 * time.Second),
//	)
//
// Returns an error if the duration is zero or negative.
func WithPollingInterval(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("polling interval must be positive")
		}
		if d < poller.MinInterval {
			return fmt.Errorf("polling interval must be at least %s", poller.MinInterval)
		}
		cfg.pollingInterval = d
		return nil
	}
}

// WithRequestTimeout bounds each poll. Defaults to 10 seconds.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithPort sets the HTTP port for webhooks, the API and the dashboard.
//
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *monitorConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithMaxEvents caps how many events the dashboard displays. The oldest
// displayed events are dropped first. Defaults to 50.
func WithMaxEvents(n int) Option {
	return func(cfg *monitorConfig) error {
		if n <= 0 {
			return errors.New("max events must be positive")
		}
		cfg.maxEvents = n
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Monitor instance.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *monitorConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithEventsCallback registers a function to be called after every
// successful poll with the fetched events, newest first.
//
// Multiple callbacks may be registered; they execute in registration order
// after the dashboard has been updated. Each receives its own copy of the
// events.
//
// IMPORTANT: Callbacks must be non-blocking. They run on the poller's
// goroutine and delay the next poll while they run. Panics are recovered
// and logged.
//
// Nil callbacks are silently ignored.
func WithEventsCallback(cb func([]Event)) Option {
	return func(cfg *monitorConfig) error {
		if cb == nil {
			return nil
		}
		cfg.eventsCallbacks = append(cfg.eventsCallbacks, cb)
		return nil
	}
}

// WithErrorCallback registers a function to be called once for every
// failed poll. The error matches [ErrHTTPStatus], [ErrMalformedPayload] or
// [ErrUnsuccessful] via errors.Is, or wraps the transport error.
//
// The same rules as [WithEventsCallback] apply. Nil callbacks are silently
// ignored.
func WithErrorCallback(cb func(error)) Option {
	return func(cfg *monitorConfig) error {
		if cb == nil {
			return nil
		}
		cfg.errorCallbacks = append(cfg.errorCallbacks, cb)
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "GitHub Activity".
func WithTitle(title string) Option {
	return func(cfg *monitorConfig) error {
		cfg.title = title
		return nil
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(version string) Option {
	return func(cfg *monitorConfig) error {
		cfg.version = version
		return nil
	}
}

// WithWebhookSecret enables X-Hub-Signature-256 verification of incoming
// webhooks. Deliveries with a missing or wrong signature are rejected with
// 401. An empty secret disables verification.
func WithWebhookSecret(secret string) Option {
	return func(cfg *monitorConfig) error {
		cfg.webhookSecret = secret
		return nil
	}
}

// WithStore sets where webhook events are persisted. The caller keeps
// ownership and must Close the store after [Monitor.Start] returns.
//
// Defaults to [NewMemoryStore].
func WithStore(s Store) Option {
	return func(cfg *monitorConfig) error {
		if s == nil {
			return errors.New("store cannot be nil")
		}
		cfg.store = s
		return nil
	}
}

// WithPauseWhenIdle polls only while at least one dashboard viewer is
// connected. The first viewer to arrive triggers an immediate poll.
func WithPauseWhenIdle(pause bool) Option {
	return func(cfg *monitorConfig) error {
		cfg.pauseWhenIdle = pause
		return nil
	}
}
