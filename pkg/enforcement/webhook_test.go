package enforcement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestWebhookNotifierDelivers(t *testing.T) {
	var mu sync.Mutex
	var received map[string]any
	var contentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode webhook body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(WebhookConfig{URL: server.URL})
	notifier.Notify(context.Background(), Notification{
		Text:      "budget exceeded: spent $12.50 of $10.00 limit",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Cost:      12.5,
		Limit:     10.0,
	})

	mu.Lock()
	defer mu.Unlock()
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", contentType)
	}
	if received["text"] == "" || received["text"] == nil {
		t.Error("webhook payload missing text field")
	}
	if got := received["cost"]; got != 12.5 {
		t.Errorf("webhook payload cost = %v, want 12.5", got)
	}
	if got := received["limit"]; got != 10.0 {
		t.Errorf("webhook payload limit = %v, want 10.0", got)
	}
	ts, ok := received["timestamp"].(string)
	if !ok {
		t.Fatalf("webhook payload timestamp is %T, want string", received["timestamp"])
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("webhook payload timestamp %q is not RFC 3339: %v", ts, err)
	}
}

func TestWebhookNotifierSwallowsFailures(t *testing.T) {
	// Unreachable endpoint: Notify must return without panicking.
	notifier := NewWebhookNotifier(WebhookConfig{
		URL:     "http://127.0.0.1:1/never",
		Timeout: 200 * time.Millisecond,
	})
	notifier.Notify(context.Background(), Notification{Text: "trip", Cost: 1, Limit: 1})
}

func TestWebhookNotifierSwallowsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(WebhookConfig{URL: server.URL})
	notifier.Notify(context.Background(), Notification{Text: "trip", Cost: 1, Limit: 1})
}
