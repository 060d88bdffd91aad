package server

import (
	"encoding/json"
	"errors"
	"html"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jpalmerr/hookwatch/internal/event"
	"github.com/jpalmerr/hookwatch/internal/store"
	"github.com/jpalmerr/hookwatch/internal/webhook"
)

// GitHub caps webhook payloads at 25MB.
const maxWebhookBody = 25 << 20

type eventsResponse struct {
	Success bool          `json:"success"`
	Events  []event.Event `json:"events"`
}

type apiError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type webhookResponse struct {
	Status    string       `json:"status"`
	RequestID string       `json:"request_id,omitempty"`
	Action    event.Action `json:"action,omitempty"`
	Event     string       `json:"event,omitempty"`
	Error     string       `json:"error,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// handleWebhook ingests a GitHub delivery.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, webhookResponse{Status: "error", Error: "unreadable body"})
		return
	}

	delivery := r.Header.Get(webhook.HeaderDelivery)
	log := s.logger.With(
		"delivery", delivery,
		"request", middleware.GetReqID(r.Context()),
	)

	if err := webhook.Verify([]byte(s.cfg.WebhookSecret), body, r.Header.Get(webhook.HeaderSignature)); err != nil {
		log.Warn("webhook rejected", "error", err)
		s.writeJSON(w, http.StatusUnauthorized, webhookResponse{Status: "error", Error: "invalid signature"})
		return
	}

	eventType := r.Header.Get(webhook.HeaderEvent)
	e, err := s.parser.Parse(eventType, body)
	switch {
	case errors.Is(err, webhook.ErrUnsupportedEvent):
		log.Debug("webhook ignored", "event", eventType)
		s.writeJSON(w, http.StatusOK, webhookResponse{Status: "ignored", Event: eventType})
		return
	case err != nil:
		log.Warn("webhook payload invalid", "event", eventType, "error", err)
		s.writeJSON(w, http.StatusBadRequest, webhookResponse{Status: "error", Error: "invalid payload"})
		return
	}

	created, err := s.store.Save(r.Context(), e)
	if err != nil {
		log.Error("failed to store event", "request_id", e.RequestID, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, webhookResponse{Status: "error", Error: "failed to store event"})
		return
	}

	status := "exists"
	if created {
		status = "created"
		log.Info("webhook event stored", "request_id", e.RequestID, "action", e.Action)

		s.mu.RLock()
		onIngest := s.onIngest
		s.mu.RUnlock()
		if onIngest != nil {
			onIngest(e)
		}
	}

	s.writeJSON(w, http.StatusOK, webhookResponse{Status: status, RequestID: e.RequestID, Action: e.Action})
}

// handleEvents returns the most recent events, newest first.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeJSON(w, http.StatusBadRequest, apiError{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	events, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to load events", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to load events"})
		return
	}
	if events == nil {
		events = []event.Event{}
	}

	s.writeJSON(w, http.StatusOK, eventsResponse{Success: true, Events: events})
}

// handleStats returns event counts.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("failed to load stats", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to load stats"})
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
		"version": s.cfg.Version,
	})
}

// handleFeed returns the displayed cards as an HTML fragment.
func (s *Server) handleFeed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := s.renderer.RenderCards(w, s.feed.Events()); err != nil {
		s.logger.Error("failed to render feed", "error", err)
	}
}

// handleDashboard serves the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	// read index.html from embedded assets
	content, err := fs.ReadFile(s.cfg.Assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	cards, err := s.renderer.CardsHTML(s.feed.Events())
	if err != nil {
		s.logger.Error("failed to render cards", "error", err)
		http.Error(w, "Dashboard unavailable", http.StatusInternalServerError)
		return
	}

	// the title is escaped; the cards come out of html/template already escaped
	rendered := strings.NewReplacer(
		titlePlaceholder, html.EscapeString(s.cfg.Title),
		cardsPlaceholder, string(cards),
	).Replace(string(content))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = io.WriteString(w, rendered); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}
