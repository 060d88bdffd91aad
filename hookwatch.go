package hookwatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/hookwatch/dashboard"
	"github.com/jpalmerr/hookwatch/internal/event"
	"github.com/jpalmerr/hookwatch/internal/feed"
	"github.com/jpalmerr/hookwatch/internal/poller"
	"github.com/jpalmerr/hookwatch/internal/server"
	"github.com/jpalmerr/hookwatch/internal/store"
)

const (
	defaultPollingInterval = 15 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultPort            = 8080
	defaultMaxEvents       = feed.DefaultCap
)

// Event is one normalized repository activity record.
type Event = event.Event

// Action is the kind of activity an [Event] records.
type Action = event.Action

// Known actions. Matching is case-insensitive; see [Action.Normalize].
const (
	ActionPush        = event.ActionPush
	ActionPullRequest = event.ActionPullRequest
	ActionMerge       = event.ActionMerge
)

// Poll failures passed to error callbacks. Match them with errors.Is;
// transport failures wrap the underlying network error instead.
var (
	ErrHTTPStatus       = poller.ErrHTTPStatus
	ErrMalformedPayload = poller.ErrMalformedPayload
	ErrUnsuccessful     = poller.ErrUnsuccessful
)

// Monitor receives GitHub webhooks, serves them at /api/events and runs the
// live dashboard that polls that endpoint.
//
// Monitor is created using [New] with functional options and started with
// [Monitor.Start].
//
// The typical lifecycle is:
//
//	m, err := hookwatch.New(hookwatch.WithWebhookSecret(os.Getenv("WEBHOOK_SECRET")))
//	if err != nil {
//	    slog.Error("failed to create monitor", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	m.Start(ctx) // blocks until context cancelled
type Monitor struct {
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

// New creates a new [Monitor] with the given options.
//
// Every option has a default:
//   - Polling interval: 15 seconds
//   - Request timeout: 10 seconds
//   - Port: 8080
//   - Max events: 50
//   - Source URL: this monitor's own /api/events
//   - Store: in memory
//
// Returns an error if any option is invalid.
func New(opts ...Option) (*Monitor, error) {
	cfg := &monitorConfig{
		pollingInterval: defaultPollingInterval,
		requestTimeout:  defaultRequestTimeout,
		port:            defaultPort,
		maxEvents:       defaultMaxEvents,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	sourceURL := cfg.sourceURL
	if sourceURL == "" {
		sourceURL = fmt.Sprintf("http://localhost:%d/api/events", cfg.port)
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		title:           cfg.title,
		version:         cfg.version,
		sourceURL:       sourceURL,
		pollingInterval: cfg.pollingInterval,
		requestTimeout:  cfg.requestTimeout,
		port:            cfg.port,
		maxEvents:       cfg.maxEvents,
		webhookSecret:   cfg.webhookSecret,
		pauseWhenIdle:   cfg.pauseWhenIdle,
		store:           cfg.store,
		logger:          logger,
		eventsCallbacks: cfg.eventsCallbacks,
		errorCallbacks:  cfg.errorCallbacks,
	}, nil
}

// Start serves webhooks and the dashboard and runs the poller.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - The HTTP server starts on the configured port
//   - The source URL is polled immediately, then at the configured interval
//     (with pause-when-idle, only while a dashboard viewer is connected)
//   - Each new webhook event triggers an extra poll so viewers see it promptly
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start.
func (m *Monitor) Start(ctx context.Context) error {
	m.logger.Info("hookwatch starting", "source_url", m.sourceURL, "max_events", m.maxEvents)
	m.logger.Info("polling configured", "interval", m.pollingInterval.String(), "pause_when_idle", m.pauseWhenIdle)
	m.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", m.port))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	st := m.store
	if st == nil {
		st = store.NewMemoryStore()
	}

	displayed := feed.New(m.maxEvents)
	hub := feed.NewBroadcaster()

	p, err := poller.New(m.sourceURL,
		poller.WithInterval(m.pollingInterval),
		poller.WithTimeout(m.requestTimeout),
		poller.WithLogger(m.logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create poller: %w", err)
	}
	p.SetObserver(&feedObserver{
		feed:            displayed,
		hub:             hub,
		logger:          m.logger,
		eventsCallbacks: m.eventsCallbacks,
		errorCallbacks:  m.errorCallbacks,
	})

	srv := server.NewServer(server.Config{
		Port:          m.port,
		Title:         m.title,
		Version:       m.version,
		WebhookSecret: m.webhookSecret,
		Assets:        dashboard.Assets,
	}, st, displayed, hub, m.logger)
	srv.OnIngest(func(Event) { p.ForcePoll() })

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if m.pauseWhenIdle {
		visibility := poller.NewVisibility(ctx, p, m.logger)
		hub.OnViewersChanged(visibility.SetViewers)
	} else {
		p.Start(ctx)
	}

	<-ctx.Done()
	p.Close()
	m.logger.Info("hookwatch stopped")
	return nil
}

// Port returns the configured HTTP port.
func (m *Monitor) Port() int {
	return m.port
}

// PollingInterval returns the configured interval between polls.
func (m *Monitor) PollingInterval() time.Duration {
	return m.pollingInterval
}

// SourceURL returns the event endpoint the dashboard polls.
func (m *Monitor) SourceURL() string {
	return m.sourceURL
}

// MaxEvents returns the cap on displayed events.
func (m *Monitor) MaxEvents() int {
	return m.maxEvents
}
