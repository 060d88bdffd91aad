package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jpalmerr/hookwatch/internal/event"
	"github.com/jpalmerr/hookwatch/internal/feed"
	"github.com/jpalmerr/hookwatch/internal/render"
	"github.com/jpalmerr/hookwatch/internal/store"
	"github.com/jpalmerr/hookwatch/internal/webhook"
)

const (
	// streamWriteTimeout is the maximum time allowed for a single SSE or
	// WebSocket write. Must be <= shutdown timeout to ensure clean shutdown.
	streamWriteTimeout = 5 * time.Second

	// shutdownTimeout bounds graceful shutdown of in-flight requests.
	shutdownTimeout = 5 * time.Second

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "GitHub Activity"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"

	// cardsPlaceholder is replaced with the server-rendered cards.
	cardsPlaceholder = "{{.Cards}}"

	// serviceName is reported by the health endpoint.
	serviceName = "hookwatch"
)

// Config holds the static settings of a [Server].
type Config struct {
	// Port is the TCP port to listen on. Zero picks a free port.
	Port int

	// Title is shown in the dashboard header.
	Title string

	// Version is reported by /health.
	Version string

	// WebhookSecret enables X-Hub-Signature-256 verification when non-empty.
	WebhookSecret string

	// Assets holds assets/index.html. Without it "/" is not served.
	Assets fs.FS
}

// Server handles webhook ingestion, the event API and the live dashboard.
//
// Routes:
//   - POST /webhook: GitHub webhook receiver
//   - GET /api/events: recent events as JSON
//   - GET /api/events/stats: event counts
//   - GET /health: liveness probe
//   - GET /: dashboard page
//   - GET /api/feed: rendered event cards
//   - GET /api/sse, GET /api/ws: live feed updates
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	cfg      Config
	store    store.Store
	feed     *feed.Feed
	hub      *feed.Broadcaster
	renderer *render.Renderer
	parser   webhook.Parser
	logger   *slog.Logger

	mu         sync.RWMutex
	onIngest   func(event.Event)
	httpServer *http.Server
	addr       net.Addr
}

// NewServer creates a new HTTP [Server].
//
// st backs the webhook receiver and the JSON API. fd and hub back the
// dashboard: fd is the displayed set and hub carries its updates to live
// viewers. The server is not started until [Server.Start] is called.
func NewServer(cfg Config, st store.Store, fd *feed.Feed, hub *feed.Broadcaster, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Title == "" {
		cfg.Title = defaultTitle
	}
	return &Server{
		cfg:      cfg,
		store:    st,
		feed:     fd,
		hub:      hub,
		renderer: render.NewRenderer(),
		logger:   logger,
	}
}

// OnIngest registers fn to run after a webhook creates a new event.
func (s *Server) OnIngest(fn func(event.Event)) {
	s.mu.Lock()
	s.onIngest = fn
	s.mu.Unlock()
}

// Handler returns the router serving all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/webhook", s.handleWebhook)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", s.handleEvents)
		r.Get("/events/stats", s.handleStats)
		r.Get("/feed", s.handleFeed)
		r.Get("/sse", s.handleSSE)
		r.Get("/ws", s.handleWebSocket)
	})

	if s.cfg.Assets != nil {
		r.Get("/", s.handleDashboard)
	}

	return r
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.cfg.Port, err)
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// BaseContext derives all request contexts from the server context.
		// When ctx is cancelled, all request contexts are also cancelled,
		// enabling graceful shutdown of long-running handlers like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	s.mu.Lock()
	s.httpServer = httpServer
	s.addr = ln.Addr()
	s.mu.Unlock()

	go func() {
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	s.logger.Info("http server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the listening address, or nil before [Server.Start].
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}
