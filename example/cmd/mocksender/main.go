// Standalone webhook sender for testing the CLI.
//
// Usage:
//
//	go run ./cmd/hookwatch serve -c example/config.yaml
//
// Then in another terminal:
//
//	MOCK_WEBHOOK_SECRET=demo-secret go run ./example/cmd/mocksender
//
// MOCK_WEBHOOK_TARGET overrides the receiver URL and MOCK_WEBHOOK_EVERY the
// delay between deliveries (a duration such as 500ms or 5s).
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/hookwatch/internal/webhook"
)

func main() {
	target := envOr("MOCK_WEBHOOK_TARGET", "http://localhost:8080/webhook")
	every, err := time.ParseDuration(envOr("MOCK_WEBHOOK_EVERY", "3s"))
	if err != nil || every <= 0 {
		slog.Error("invalid MOCK_WEBHOOK_EVERY", "error", err)
		os.Exit(1)
	}
	secret := os.Getenv("MOCK_WEBHOOK_SECRET")

	fmt.Printf("Sending push webhooks to %s every %s\n", target, every)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: 5 * time.Second}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			body, _ := json.Marshal(map[string]any{
				"ref":         "refs/heads/main",
				"after":       uuid.NewString(),
				"pusher":      map[string]string{"name": "mocksender"},
				"head_commit": map[string]string{"timestamp": now.UTC().Format(time.RFC3339)},
			})
			if err := post(ctx, client, target, secret, body); err != nil {
				slog.Warn("delivery failed", "error", err)
				continue
			}
			slog.Info("delivered push")
		}
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func post(ctx context.Context, client *http.Client, target, secret string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(webhook.HeaderEvent, "push")
	if secret != "" {
		req.Header.Set(webhook.HeaderSignature, webhook.Sign([]byte(secret), body))
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
