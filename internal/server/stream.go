package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jpalmerr/hookwatch/internal/event"
	"github.com/jpalmerr/hookwatch/internal/feed"
)

// keepaliveInterval spaces SSE comments and WebSocket pings on idle streams.
const keepaliveInterval = 30 * time.Second

// the default origin check limits WebSocket viewers to same-origin pages
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// cardFragment is one rendered card keyed by request ID.
type cardFragment struct {
	RequestID string        `json:"request_id"`
	HTML      template.HTML `json:"html"`
}

// streamMessage is the payload of one SSE event or WebSocket message.
//
// Kinds:
//   - snapshot: HTML holds the full card list (or the empty placeholder)
//   - events: Added (newest first), Updated and Evicted describe a merge
//   - error, status: Message holds a status line
type streamMessage struct {
	Kind    string         `json:"kind"`
	HTML    template.HTML  `json:"html,omitempty"`
	Added   []cardFragment `json:"added,omitempty"`
	Updated []cardFragment `json:"updated,omitempty"`
	Evicted []string       `json:"evicted,omitempty"`
	Message string         `json:"message,omitempty"`
	At      time.Time      `json:"at"`
}

func (s *Server) snapshotMessage() (streamMessage, error) {
	cards, err := s.renderer.CardsHTML(s.feed.Events())
	if err != nil {
		return streamMessage{}, err
	}
	return streamMessage{Kind: "snapshot", HTML: cards, At: time.Now()}, nil
}

func (s *Server) updateMessage(u feed.Update) (streamMessage, error) {
	msg := streamMessage{Kind: string(u.Kind), Message: u.Message, At: u.At}
	if u.Diff == nil {
		return msg, nil
	}

	var err error
	if msg.Added, err = s.fragments(u.Diff.Added); err != nil {
		return msg, err
	}
	if msg.Updated, err = s.fragments(u.Diff.Updated); err != nil {
		return msg, err
	}
	msg.Evicted = u.Diff.Evicted
	return msg, nil
}

func (s *Server) fragments(events []event.Event) ([]cardFragment, error) {
	if len(events) == 0 {
		return nil, nil
	}
	out := make([]cardFragment, 0, len(events))
	for _, e := range events {
		h, err := s.renderer.CardHTML(e)
		if err != nil {
			return nil, fmt.Errorf("render card %s: %w", e.RequestID, err)
		}
		out = append(out, cardFragment{RequestID: e.RequestID, HTML: h})
	}
	return out, nil
}

// handleSSE streams feed updates via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when clients are
// slow or disconnected. Without deadlines, a blocked Fprintf call would prevent
// the handler from detecting context cancellation or channel closure.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	// check if flushing is supported
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	write := func(format string, args ...any) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
				// deadline not supported by underlying connection, continue without
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}
		if _, err := fmt.Fprintf(w, format, args...); err != nil {
			return err
		}
		// ResponseController.Flush respects the write deadline
		return rc.Flush()
	}

	send := func(msg streamMessage) error {
		data, err := json.Marshal(msg)
		if err != nil {
			s.logger.Error("failed to encode stream message", "error", err)
			return nil
		}
		return write("data: %s\n\n", data)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// subscribing counts this request as a viewer, which may resume polling
	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	snapshot, err := s.snapshotMessage()
	if err != nil {
		s.logger.Error("failed to render snapshot", "error", err)
		return
	}
	if err := send(snapshot); err != nil {
		return
	}

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return
			}
			msg, err := s.updateMessage(u)
			if err != nil {
				s.logger.Error("failed to render update", "error", err)
				continue
			}
			if err := send(msg); err != nil {
				return
			}

		case <-keepalive.C:
			if err := write(": keepalive\n\n"); err != nil {
				return
			}

		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return
		}
	}
}

// handleWebSocket streams the same messages as handleSSE over a WebSocket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied with an HTTP error
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// viewers never send anything meaningful; reading surfaces the close frame
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func(msg streamMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		return conn.WriteJSON(msg)
	}

	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	snapshot, err := s.snapshotMessage()
	if err != nil {
		s.logger.Error("failed to render snapshot", "error", err)
		return
	}
	if err := send(snapshot); err != nil {
		return
	}

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return
			}
			msg, err := s.updateMessage(u)
			if err != nil {
				s.logger.Error("failed to render update", "error", err)
				continue
			}
			if err := send(msg); err != nil {
				return
			}

		case <-keepalive.C:
			deadline := time.Now().Add(streamWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}

		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}
