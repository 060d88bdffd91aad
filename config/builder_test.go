package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jpalmerr/hookwatch"
)

func TestBuildOptions_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	m, err := hookwatch.New(BuildOptions(cfg)...)
	if err != nil {
		t.Fatalf("hookwatch.New() error = %v", err)
	}

	if m.Port() != 8080 {
		t.Errorf("Port() = %d, want 8080", m.Port())
	}
	if m.PollingInterval() != 15*time.Second {
		t.Errorf("PollingInterval() = %v, want 15s", m.PollingInterval())
	}
	if m.MaxEvents() != 50 {
		t.Errorf("MaxEvents() = %d, want 50", m.MaxEvents())
	}
	if m.SourceURL() != "http://localhost:8080/api/events" {
		t.Errorf("SourceURL() = %q, want own /api/events", m.SourceURL())
	}
}

func TestBuildOptions_AllFields(t *testing.T) {
	cfg := &Config{
		Title:          "Acme",
		Port:           9090,
		PollInterval:   Duration(30 * time.Second),
		RequestTimeout: Duration(2 * time.Second),
		MaxEvents:      20,
		SourceURL:      "https://events.example.com/api/events",
		WebhookSecret:  "secret",
		PauseWhenIdle:  true,
	}

	opts := BuildOptions(cfg)
	if len(opts) != 8 {
		t.Errorf("len(opts) = %d, want 8", len(opts))
	}

	m, err := hookwatch.New(opts...)
	if err != nil {
		t.Fatalf("hookwatch.New() error = %v", err)
	}

	if m.Port() != 9090 {
		t.Errorf("Port() = %d, want 9090", m.Port())
	}
	if m.PollingInterval() != 30*time.Second {
		t.Errorf("PollingInterval() = %v, want 30s", m.PollingInterval())
	}
	if m.MaxEvents() != 20 {
		t.Errorf("MaxEvents() = %d, want 20", m.MaxEvents())
	}
	if m.SourceURL() != cfg.SourceURL {
		t.Errorf("SourceURL() = %q, want %q", m.SourceURL(), cfg.SourceURL)
	}
}

func TestBuildOptions_OptionalFieldsOmitted(t *testing.T) {
	cfg := &Config{
		Port:         8080,
		PollInterval: Duration(15 * time.Second),
		MaxEvents:    50,
	}

	// port, interval, max events and pause_when_idle only
	if got := len(BuildOptions(cfg)); got != 4 {
		t.Errorf("len(opts) = %d, want 4", got)
	}
}

func TestOpenStore_Memory(t *testing.T) {
	st, err := OpenStore(&Config{})
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	defer st.Close()

	stats, err := st.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("Total = %d, want 0", stats.Total)
	}
}

func TestOpenStore_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")

	st, err := OpenStore(&Config{Database: path})
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	defer st.Close()

	created, err := st.Save(context.Background(), hookwatch.Event{
		RequestID: "abc",
		Action:    hookwatch.ActionPush,
		Author:    "octocat",
		ToBranch:  "main",
		Timestamp: "1st April 2021 - 9:30 PM UTC",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !created {
		t.Error("Save() created = false, want true")
	}
}

func TestOpenStore_SQLiteBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "events.db")

	if _, err := OpenStore(&Config{Database: path}); err == nil {
		t.Fatal("OpenStore() error = nil, want error for unwritable path")
	}
}
