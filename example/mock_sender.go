package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/hookwatch/internal/webhook"
)

var (
	mockAuthors  = []string{"octocat", "hubot", "monalisa", "defunkt"}
	mockBranches = []string{"feature/login", "fix/cache", "chore/deps", "feature/search"}
)

// StartMockWebhookSender posts a signed GitHub webhook to target every few
// seconds: pushes to main, opened pull requests and merges.
// It returns when ctx is cancelled.
func StartMockWebhookSender(ctx context.Context, target, secret string) {
	client := &http.Client{Timeout: 5 * time.Second}
	var prID int64 = 1000

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(2+rand.Intn(4)) * time.Second):
		}

		author := mockAuthors[rand.Intn(len(mockAuthors))]
		branch := mockBranches[rand.Intn(len(mockBranches))]
		now := time.Now().UTC().Format(time.RFC3339)

		var kind string
		var payload any
		switch rand.Intn(3) {
		case 0:
			kind = "push"
			payload = map[string]any{
				"ref":         "refs/heads/main",
				"after":       uuid.NewString(),
				"pusher":      map[string]string{"name": author},
				"head_commit": map[string]string{"timestamp": now},
			}
		case 1:
			prID++
			kind = "pull_request"
			payload = pullRequest("opened", prID, author, branch, now, false)
		default:
			// merges reuse the pull request id, so a fresh one keeps the demo visible
			prID++
			kind = "pull_request"
			payload = pullRequest("closed", prID, author, branch, now, true)
		}

		if err := send(ctx, client, target, secret, kind, payload); err != nil {
			slog.Warn("mock webhook failed", "event", kind, "error", err)
			continue
		}
		slog.Info("mock webhook sent", "event", kind, "author", author)
	}
}

func pullRequest(action string, id int64, author, branch, at string, merged bool) map[string]any {
	return map[string]any{
		"action": action,
		"pull_request": map[string]any{
			"id":         id,
			"user":       map[string]string{"login": author},
			"head":       map[string]string{"ref": branch},
			"base":       map[string]string{"ref": "main"},
			"created_at": at,
			"merged":     merged,
		},
	}
}

func send(ctx context.Context, client *http.Client, target, secret, kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(webhook.HeaderEvent, kind)
	req.Header.Set(webhook.HeaderDelivery, uuid.NewString())
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
