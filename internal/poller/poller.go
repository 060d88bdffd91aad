package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/hookwatch/internal/event"
)

// Defaults applied by [New].
const (
	DefaultInterval = 15 * time.Second
	DefaultTimeout  = 10 * time.Second
	MinInterval     = 100 * time.Millisecond
)

// Poll failures reported to the error handler. Transport errors are passed
// through wrapped with the request URL.
var (
	ErrHTTPStatus       = errors.New("unexpected HTTP status")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnsuccessful     = errors.New("unsuccessful response")
)

// State describes what a [Poller] is currently doing.
type State int

const (
	StateIdle State = iota
	StateScheduled
	StateInFlight
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateInFlight:
		return "in-flight"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EventsHandler receives the event list from a successful poll, newest first.
type EventsHandler func(events []event.Event)

// ErrorHandler receives a failed poll. It is called exactly once per failure.
type ErrorHandler func(err error)

// Observer receives both poll outcomes. See [Poller.SetObserver].
type Observer interface {
	OnEvents(events []event.Event)
	OnError(err error)
}

// payload is the body served by /api/events.
type payload struct {
	Success bool          `json:"success"`
	Events  []event.Event `json:"events"`
	Error   string        `json:"error,omitempty"`
}

// Option configures a [Poller].
type Option func(*Poller) error

// WithInterval sets the delay between the end of one poll and the start of
// the next.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) error {
		if d < MinInterval {
			return fmt.Errorf("interval must be at least %v", MinInterval)
		}
		p.interval = d
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Poller) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		p.timeout = d
		return nil
	}
}

// WithLogger sets the logger. nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) error {
		if l != nil {
			p.logger = l
		}
		return nil
	}
}

// WithClient replaces the HTTP client.
func WithClient(c *Client) Option {
	return func(p *Poller) error {
		if c == nil {
			return errors.New("client cannot be nil")
		}
		p.client = c
		return nil
	}
}

// Poller periodically reads an event endpoint and forwards the outcome to
// its handlers.
//
// All methods are safe for concurrent use. Handlers run on the poller's
// goroutine; a handler may call Start, Stop or ForcePoll but must not call
// Close.
type Poller struct {
	url      string
	interval time.Duration
	timeout  time.Duration
	client   *Client
	logger   *slog.Logger

	mu        sync.Mutex
	running   bool
	gen       uint64
	inflight  int
	// reads counts run goroutines that have not yet released fetchMu,
	// including reads cancelled by Stop
	reads     int
	timer     *time.Timer
	runCtx    context.Context
	cancel    context.CancelFunc
	stopWatch func() bool
	onEvents  EventsHandler
	onError   ErrorHandler

	// held for the duration of each network read
	fetchMu sync.Mutex
	wg      sync.WaitGroup
}

// New creates an idle [Poller] for url.
func New(url string, opts ...Option) (*Poller, error) {
	if url == "" {
		return nil, errors.New("url is required")
	}

	p := &Poller{
		url:      url,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if p.client == nil {
		p.client = NewClient()
	}
	return p, nil
}

// URL returns the polled endpoint.
func (p *Poller) URL() string { return p.url }

// Interval returns the configured poll interval.
func (p *Poller) Interval() time.Duration { return p.interval }

// OnEvents sets the success handler, replacing any previous one.
func (p *Poller) OnEvents(fn EventsHandler) {
	p.mu.Lock()
	p.onEvents = fn
	p.mu.Unlock()
}

// OnError sets the failure handler, replacing any previous one.
func (p *Poller) OnError(fn ErrorHandler) {
	p.mu.Lock()
	p.onError = fn
	p.mu.Unlock()
}

// SetObserver sets both handlers from o. A nil observer clears them.
func (p *Poller) SetObserver(o Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if o == nil {
		p.onEvents, p.onError = nil, nil
		return
	}
	p.onEvents, p.onError = o.OnEvents, o.OnError
}

// State reports the current state.
//
// A read cancelled by [Poller.Stop] keeps the poller in-flight until it has
// returned, so idle means no read holds the connection.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case !p.running && p.reads > 0:
		return StateInFlight
	case !p.running:
		return StateIdle
	case p.inflight > 0:
		return StateInFlight
	default:
		return StateScheduled
	}
}

// Start begins polling with an immediate first poll.
//
// Start is non-blocking and a no-op while already running. Cancelling ctx
// has the same effect as [Poller.Stop]. If ctx is nil, context.Background()
// is used.
func (p *Poller) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}

	p.running = true
	p.gen++
	gen := p.gen
	p.runCtx, p.cancel = context.WithCancel(ctx)
	p.stopWatch = context.AfterFunc(ctx, func() { p.stopGeneration(gen) })

	p.inflight = 1
	p.reads++
	p.wg.Add(1)
	go p.run(p.runCtx, gen, true)
}

// Stop cancels the pending poll and any read in flight. Results of a
// cancelled read are discarded. Stop does not wait for the read to return;
// use [Poller.Close] for that.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Poller) stopGeneration(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen == gen {
		p.stopLocked()
	}
}

func (p *Poller) stopLocked() {
	if !p.running {
		return
	}
	p.running = false
	p.gen++
	p.inflight = 0
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.stopWatch != nil {
		p.stopWatch()
		p.stopWatch = nil
	}
	p.cancel()
}

// ForcePoll triggers an immediate poll without moving the schedule.
//
// It is a no-op while idle or while a poll is already in flight, and
// reports whether a poll was started.
func (p *Poller) ForcePoll() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running || p.inflight > 0 {
		return false
	}

	p.inflight++
	p.reads++
	p.wg.Add(1)
	go p.run(p.runCtx, p.gen, false)
	return true
}

// Close stops the poller, waits for outstanding reads to return and
// releases idle connections.
func (p *Poller) Close() {
	p.Stop()
	p.wg.Wait()
	p.client.Close()
}

// tick fires from the timer armed after the previous poll.
func (p *Poller) tick(gen uint64) {
	p.mu.Lock()
	if !p.running || gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.inflight++
	p.reads++
	ctx := p.runCtx
	p.wg.Add(1)
	p.mu.Unlock()

	p.run(ctx, gen, true)
}

// run performs one poll. Scheduled polls arm the next timer on completion;
// forced polls leave the schedule alone.
func (p *Poller) run(ctx context.Context, gen uint64, reschedule bool) {
	defer p.wg.Done()

	p.fetchMu.Lock()
	var (
		events []event.Event
		err    error
	)
	if ctx.Err() == nil {
		events, err = p.fetch(ctx)
	} else {
		err = ctx.Err()
	}
	p.fetchMu.Unlock()

	p.mu.Lock()
	p.reads--
	if !p.running || gen != p.gen {
		p.mu.Unlock()
		p.logger.Debug("discarding poll result from stopped generation", "url", p.url)
		return
	}
	p.inflight--
	if reschedule {
		p.timer = time.AfterFunc(p.interval, func() { p.tick(gen) })
	}
	onEvents, onError := p.onEvents, p.onError
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("poll failed", "url", p.url, "error", err)
		if onError != nil {
			p.safeCall("error handler", func() { onError(err) })
		}
		return
	}

	p.logger.Debug("poll succeeded", "url", p.url, "events", len(events))
	if onEvents != nil {
		p.safeCall("events handler", func() { onEvents(events) })
	}
}

// fetch reads and decodes the endpoint once.
func (p *Poller) fetch(ctx context.Context) ([]event.Event, error) {
	resp := p.client.Fetch(ctx, p.url, p.timeout)
	if resp.Error != nil {
		return nil, fmt.Errorf("fetch %s: %w", p.url, resp.Error)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}

	var body payload
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if !body.Success {
		if body.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsuccessful, body.Error)
		}
		return nil, ErrUnsuccessful
	}
	if body.Events == nil {
		return nil, fmt.Errorf("%w: missing events", ErrUnsuccessful)
	}
	return body.Events, nil
}

// safeCall invokes a handler with panic recovery. A panic is logged with
// its stack trace under a correlation ID and otherwise ignored.
func (p *Poller) safeCall(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(name+" panic",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}
