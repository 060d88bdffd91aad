package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jpalmerr/hookwatch/internal/event"
	"github.com/jpalmerr/hookwatch/internal/feed"
	"github.com/jpalmerr/hookwatch/internal/store"
	"github.com/jpalmerr/hookwatch/internal/webhook"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testIndex = `<html><head><title>{{.Title}}</title></head><body><h1>{{.Title}}</h1><div id="events">{{.Cards}}</div></body></html>`

type fixture struct {
	srv   *Server
	store *store.MemoryStore
	feed  *feed.Feed
	hub   *feed.Broadcaster
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	fd := feed.New(feed.DefaultCap)
	hub := feed.NewBroadcaster()
	return &fixture{
		srv:   NewServer(cfg, st, fd, hub, testLogger()),
		store: st,
		feed:  fd,
		hub:   hub,
	}
}

func pushEvent(id, author string) event.Event {
	return event.Event{
		RequestID: id,
		Action:    event.ActionPush,
		Author:    author,
		ToBranch:  "main",
		Timestamp: "1st April 2021 - 9:30 PM UTC",
	}
}

func waitForSubscribers(t *testing.T, hub *feed.Broadcaster, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != n {
		if time.Now().After(deadline) {
			t.Fatalf("subscribers = %d, want %d", hub.Count(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// parseSSEMessages decodes every data line of an SSE body.
func parseSSEMessages(t *testing.T, body string) []streamMessage {
	t.Helper()
	var msgs []streamMessage
	for _, line := range strings.Split(body, "\n") {
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var msg streamMessage
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			t.Fatalf("invalid SSE data %q: %v", data, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// --- webhook ---

const pushBody = `{
	"ref": "refs/heads/main",
	"after": "abc123",
	"pusher": {"name": "octocat"},
	"head_commit": {"timestamp": "2021-04-01T21:30:00Z"}
}`

func postWebhook(h http.Handler, eventType, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if eventType != "" {
		req.Header.Set(webhook.HeaderEvent, eventType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeWebhookResponse(t *testing.T, rec *httptest.ResponseRecorder) webhookResponse {
	t.Helper()
	var resp webhookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHandleWebhook_PushCreatesThenExists(t *testing.T) {
	f := newFixture(t, Config{})
	var ingested atomic.Int32
	f.srv.OnIngest(func(e event.Event) {
		if e.RequestID != "abc123" {
			t.Errorf("OnIngest request_id = %q, want abc123", e.RequestID)
		}
		ingested.Add(1)
	})
	h := f.srv.Handler()

	rec := postWebhook(h, "push", pushBody, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	resp := decodeWebhookResponse(t, rec)
	if resp.Status != "created" || resp.RequestID != "abc123" || resp.Action != event.ActionPush {
		t.Errorf("response = %+v, want created abc123 PUSH", resp)
	}

	rec = postWebhook(h, "push", pushBody, nil)
	if resp := decodeWebhookResponse(t, rec); resp.Status != "exists" {
		t.Errorf("redelivery status = %q, want exists", resp.Status)
	}

	if n := ingested.Load(); n != 1 {
		t.Errorf("OnIngest calls = %d, want 1", n)
	}
	stats, _ := f.store.Stats(context.Background())
	if stats.Total != 1 {
		t.Errorf("stored events = %d, want 1", stats.Total)
	}
}

func TestHandleWebhook_Ignored(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		body      string
	}{
		{name: "ping", eventType: "ping", body: `{"zen":"Keep it logically awesome."}`},
		{name: "issues", eventType: "issues", body: `{}`},
		{name: "pr synchronize", eventType: "pull_request", body: `{"action":"synchronize","pull_request":{"id":1}}`},
		{name: "no event header", eventType: "", body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{})
			rec := postWebhook(f.srv.Handler(), tt.eventType, tt.body, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if resp := decodeWebhookResponse(t, rec); resp.Status != "ignored" {
				t.Errorf("status = %q, want ignored", resp.Status)
			}
		})
	}
}

func TestHandleWebhook_InvalidPayload(t *testing.T) {
	f := newFixture(t, Config{})

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{{{`},
		{name: "missing ref", body: `{"after":"abc","pusher":{"name":"x"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postWebhook(f.srv.Handler(), "push", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleWebhook_Signature(t *testing.T) {
	secret := "s3cret"
	f := newFixture(t, Config{WebhookSecret: secret})
	h := f.srv.Handler()

	tests := []struct {
		name       string
		signature  string
		wantStatus int
	}{
		{name: "valid", signature: webhook.Sign([]byte(secret), []byte(pushBody)), wantStatus: http.StatusOK},
		{name: "wrong secret", signature: webhook.Sign([]byte("other"), []byte(pushBody)), wantStatus: http.StatusUnauthorized},
		{name: "missing", signature: "", wantStatus: http.StatusUnauthorized},
		{name: "garbage", signature: "sha256=zz", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postWebhook(h, "push", pushBody, map[string]string{webhook.HeaderSignature: tt.signature})
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestHandleWebhook_MethodNotAllowed(t *testing.T) {
	f := newFixture(t, Config{})
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

// --- JSON API ---

func getJSON(t *testing.T, h http.Handler, path string, v any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON from %s: %v", path, err)
	}
	return rec.Code
}

func TestHandleEvents(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	for i := 0; i < 120; i++ {
		_, _ = f.store.Save(ctx, pushEvent(fmt.Sprintf("r%03d", i), "octocat"))
	}
	h := f.srv.Handler()

	tests := []struct {
		path      string
		wantCode  int
		wantCount int
		wantFirst string
	}{
		{path: "/api/events", wantCode: 200, wantCount: store.DefaultLimit, wantFirst: "r119"},
		{path: "/api/events?limit=3", wantCode: 200, wantCount: 3, wantFirst: "r119"},
		{path: "/api/events?limit=500", wantCode: 200, wantCount: store.MaxLimit, wantFirst: "r119"},
		{path: "/api/events?limit=abc", wantCode: 400},
		{path: "/api/events?limit=0", wantCode: 400},
		{path: "/api/events?limit=-2", wantCode: 400},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var resp struct {
				Success bool          `json:"success"`
				Events  []event.Event `json:"events"`
				Error   string        `json:"error"`
			}
			code := getJSON(t, h, tt.path, &resp)
			if code != tt.wantCode {
				t.Fatalf("status = %d, want %d", code, tt.wantCode)
			}
			if tt.wantCode != 200 {
				if resp.Success || resp.Error == "" {
					t.Errorf("error response = %+v, want success=false with message", resp)
				}
				return
			}
			if !resp.Success {
				t.Error("success = false, want true")
			}
			if len(resp.Events) != tt.wantCount {
				t.Errorf("events = %d, want %d", len(resp.Events), tt.wantCount)
			}
			if resp.Events[0].RequestID != tt.wantFirst {
				t.Errorf("first event = %q, want %q", resp.Events[0].RequestID, tt.wantFirst)
			}
		})
	}
}

func TestHandleEvents_EmptyListIsPresent(t *testing.T) {
	f := newFixture(t, Config{})
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	if !strings.Contains(rec.Body.String(), `"events":[]`) {
		t.Errorf("body = %s, want an empty events array", rec.Body.String())
	}
}

func TestHandleStats(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	_, _ = f.store.Save(ctx, pushEvent("a", "x"))
	merge := pushEvent("b", "y")
	merge.Action = event.ActionMerge
	merge.FromBranch = event.StringPtr("dev")
	_, _ = f.store.Save(ctx, merge)

	var stats store.Stats
	if code := getJSON(t, f.srv.Handler(), "/api/events/stats", &stats); code != 200 {
		t.Fatalf("status = %d, want 200", code)
	}
	if stats.Total != 2 || stats.ByAction["PUSH"] != 1 || stats.ByAction["MERGE"] != 1 {
		t.Errorf("stats = %+v, want total 2 with one PUSH and one MERGE", stats)
	}
}

func TestHandleHealth(t *testing.T) {
	f := newFixture(t, Config{Version: "1.2.3"})

	var resp map[string]string
	if code := getJSON(t, f.srv.Handler(), "/health", &resp); code != 200 {
		t.Fatalf("status = %d, want 200", code)
	}
	want := map[string]string{"status": "healthy", "service": "hookwatch", "version": "1.2.3"}
	for k, v := range want {
		if resp[k] != v {
			t.Errorf("%s = %q, want %q", k, resp[k], v)
		}
	}
}

// --- rendered feed ---

func TestHandleFeed(t *testing.T) {
	f := newFixture(t, Config{})
	h := f.srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/feed", nil))
	if !strings.Contains(rec.Body.String(), "No events yet") {
		t.Errorf("empty feed should render placeholder, got: %s", rec.Body.String())
	}

	f.feed.Merge([]event.Event{pushEvent("x1", "<script>alert(1)</script>")})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/feed", nil))

	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Errorf("author must be escaped, got: %s", body)
	}
	if !strings.Contains(body, "pushed to") {
		t.Errorf("feed should contain card message, got: %s", body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
}

// --- dashboard ---

func dashboardAssets() fs.FS {
	return fstest.MapFS{"assets/index.html": {Data: []byte(testIndex)}}
}

func getDashboard(f *fixture, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandleDashboard_CustomTitle(t *testing.T) {
	f := newFixture(t, Config{Title: "Repo Activity", Assets: dashboardAssets()})
	rec := getDashboard(f, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<title>Repo Activity</title>") {
		t.Errorf("title not substituted, got: %s", rec.Body.String())
	}
}

func TestHandleDashboard_DefaultTitle(t *testing.T) {
	f := newFixture(t, Config{Assets: dashboardAssets()})
	rec := getDashboard(f, "/")

	if !strings.Contains(rec.Body.String(), "<h1>"+defaultTitle+"</h1>") {
		t.Errorf("default title missing, got: %s", rec.Body.String())
	}
}

func TestHandleDashboard_TitleWithHTMLChars(t *testing.T) {
	f := newFixture(t, Config{Title: `<script>alert("x")</script> & co`, Assets: dashboardAssets()})
	body := getDashboard(f, "/").Body.String()

	if strings.Contains(body, "<script>") {
		t.Errorf("title must be escaped, got: %s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") || !strings.Contains(body, "&amp; co") {
		t.Errorf("escaped title missing, got: %s", body)
	}
}

func TestHandleDashboard_RendersCards(t *testing.T) {
	f := newFixture(t, Config{Assets: dashboardAssets()})
	f.feed.Merge([]event.Event{pushEvent("b", "bob"), pushEvent("a", "alice")})

	body := getDashboard(f, "/").Body.String()
	bob, alice := strings.Index(body, "bob"), strings.Index(body, "alice")
	if bob < 0 || alice < 0 {
		t.Fatalf("cards missing, got: %s", body)
	}
	if bob > alice {
		t.Error("cards should be newest first")
	}
	if strings.Contains(body, "{{.Cards}}") {
		t.Error("cards placeholder not replaced")
	}
}

func TestHandleDashboard_IndexMissing(t *testing.T) {
	f := newFixture(t, Config{Assets: fstest.MapFS{}})
	if rec := getDashboard(f, "/"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandleDashboard_NonRootPath(t *testing.T) {
	f := newFixture(t, Config{Assets: dashboardAssets()})
	if rec := getDashboard(f, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDashboard_NoAssets(t *testing.T) {
	f := newFixture(t, Config{})
	if rec := getDashboard(f, "/"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// --- SSE ---

func TestHandleSSE_Snapshot(t *testing.T) {
	f := newFixture(t, Config{})
	f.feed.Merge([]event.Event{pushEvent("a", "API-Author")})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	f.srv.handleSSE(rec, req)

	msgs := parseSSEMessages(t, rec.Body.String())
	if len(msgs) == 0 {
		t.Fatal("no SSE messages")
	}
	if msgs[0].Kind != "snapshot" {
		t.Errorf("first kind = %q, want snapshot", msgs[0].Kind)
	}
	if !strings.Contains(string(msgs[0].HTML), "API-Author") {
		t.Errorf("snapshot should contain card, got: %s", msgs[0].HTML)
	}
}

func TestHandleSSE_StreamsUpdates(t *testing.T) {
	f := newFixture(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		f.srv.handleSSE(rec, req)
		close(done)
	}()

	waitForSubscribers(t, f.hub, 1)

	diff := f.feed.Merge([]event.Event{pushEvent("n1", "NewAuthor")})
	f.hub.Publish(feed.Update{Kind: feed.KindEvents, Diff: &diff})
	f.hub.Publish(feed.Update{Kind: feed.KindError, Message: "Connection error - retrying..."})

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not exit after context cancellation")
	}

	msgs := parseSSEMessages(t, rec.Body.String())
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want snapshot + 2 updates", len(msgs))
	}
	if msgs[1].Kind != "events" || len(msgs[1].Added) != 1 || msgs[1].Added[0].RequestID != "n1" {
		t.Errorf("events message = %+v, want one added card n1", msgs[1])
	}
	if !strings.Contains(string(msgs[1].Added[0].HTML), "NewAuthor") {
		t.Errorf("added card html = %s, want author", msgs[1].Added[0].HTML)
	}
	if msgs[2].Kind != "error" || msgs[2].Message != "Connection error - retrying..." {
		t.Errorf("error message = %+v", msgs[2])
	}
}

func TestHandleSSE_ClientDisconnectUnsubscribes(t *testing.T) {
	f := newFixture(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		f.srv.handleSSE(httptest.NewRecorder(), req)
		close(done)
	}()

	waitForSubscribers(t, f.hub, 1)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not exit after client disconnect")
	}
	if n := f.hub.Count(); n != 0 {
		t.Errorf("subscribers after disconnect = %d, want 0", n)
	}
}

type nonFlushWriter struct {
	header http.Header
	code   int
	body   bytes.Buffer
}

func (n *nonFlushWriter) Header() http.Header {
	if n.header == nil {
		n.header = make(http.Header)
	}
	return n.header
}

func (n *nonFlushWriter) Write(b []byte) (int, error) { return n.body.Write(b) }

func (n *nonFlushWriter) WriteHeader(statusCode int) { n.code = statusCode }

func TestHandleSSE_SSENotSupported(t *testing.T) {
	f := newFixture(t, Config{})
	w := &nonFlushWriter{}

	f.srv.handleSSE(w, httptest.NewRequest(http.MethodGet, "/api/sse", nil))

	if w.code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.code)
	}
	if f.hub.Count() != 0 {
		t.Error("unsupported writer must not register a viewer")
	}
}

func TestHandleSSE_Headers(t *testing.T) {
	f := newFixture(t, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()
	f.srv.handleSSE(rec, httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx))

	want := map[string]string{
		"Content-Type":  "text/event-stream",
		"Cache-Control": "no-cache",
		"Connection":    "keep-alive",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

// TestHandleSSE_ServerShutdownIntegration verifies that open streams end when
// the server context is cancelled.
func TestHandleSSE_ServerShutdownIntegration(t *testing.T) {
	f := newFixture(t, Config{Port: 0})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := f.srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	url := fmt.Sprintf("http://%s/api/sse", f.srv.Addr().String())

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, "data: ") {
		t.Fatalf("first line = %q, err %v; want snapshot data", line, err)
	}

	cancel()

	ended := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, reader)
		close(ended)
	}()
	select {
	case <-ended:
	case <-time.After(3 * time.Second):
		t.Fatal("stream did not end after shutdown")
	}
}

// --- WebSocket ---

func TestHandleWebSocket_SnapshotAndUpdates(t *testing.T) {
	f := newFixture(t, Config{})
	f.feed.Merge([]event.Event{pushEvent("a", "alice")})

	ts := httptest.NewServer(f.srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snapshot streamMessage
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if snapshot.Kind != "snapshot" || !strings.Contains(string(snapshot.HTML), "alice") {
		t.Errorf("snapshot = %+v, want cards with alice", snapshot)
	}

	waitForSubscribers(t, f.hub, 1)
	f.hub.Publish(feed.Update{Kind: feed.KindStatus, Message: "Connected"})

	var status streamMessage
	if err := conn.ReadJSON(&status); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if status.Kind != "status" || status.Message != "Connected" {
		t.Errorf("status = %+v, want Connected", status)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	waitForSubscribers(t, f.hub, 0)
}

func TestHandleWebSocket_RejectsPlainHTTP(t *testing.T) {
	f := newFixture(t, Config{})
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ws", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if f.hub.Count() != 0 {
		t.Error("failed upgrade must not register a viewer")
	}
}

// --- lifecycle ---

func TestStart_AvailablePort_ReturnsNil(t *testing.T) {
	f := newFixture(t, Config{Port: 0})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := f.srv.Start(ctx); err != nil {
		t.Errorf("Start() error = %v", err)
	}
	if f.srv.Addr() == nil {
		t.Error("Addr() = nil after Start")
	}
}

func TestStart_PortInUse_ReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	f := newFixture(t, Config{Port: port})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = f.srv.Start(ctx)
	if err == nil {
		t.Fatal("Start() error = nil, want bind error")
	}
	if !strings.Contains(err.Error(), fmt.Sprintf("port %d", port)) {
		t.Errorf("error = %v, want port in message", err)
	}
}

func TestStart_InvalidPort_ReturnsError(t *testing.T) {
	f := newFixture(t, Config{Port: -1})
	if err := f.srv.Start(context.Background()); err == nil {
		t.Error("Start() error = nil, want error for invalid port")
	}
}
