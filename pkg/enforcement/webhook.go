package enforcement

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dipampaul17/AgentGuard/pkg/telemetry/logging"
)

// DefaultWebhookTimeout bounds a single notification delivery attempt.
const DefaultWebhookTimeout = 10 * time.Second

// WebhookNotifier delivers trip notifications to an HTTP endpoint as a
// single JSON POST. Delivery failures are logged and swallowed; a broken
// webhook must never affect enforcement.
type WebhookNotifier struct {
	url     string
	client  *http.Client
	logger  *logging.Logger
	timeout time.Duration
}

// WebhookConfig configures a WebhookNotifier.
type WebhookConfig struct {
	// URL is the notification endpoint.
	URL string

	// Timeout bounds each delivery attempt. Defaults to
	// DefaultWebhookTimeout.
	Timeout time.Duration

	// Client is the HTTP client used for delivery. Defaults to
	// http.DefaultClient.
	Client *http.Client

	// Logger for delivery failures. Defaults to a no-op logger.
	Logger *logging.Logger
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(config WebhookConfig) *WebhookNotifier {
	if config.Timeout <= 0 {
		config.Timeout = DefaultWebhookTimeout
	}
	if config.Client == nil {
		config.Client = http.DefaultClient
	}
	if config.Logger == nil {
		config.Logger = logging.Nop()
	}
	return &WebhookNotifier{
		url:     config.URL,
		client:  config.Client,
		logger:  config.Logger,
		timeout: config.Timeout,
	}
}

// Notify posts the notification to the configured endpoint. Errors are
// logged as warnings and never returned; the notification is not retried
// within the same trip event.
func (w *WebhookNotifier) Notify(ctx context.Context, n Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		w.logger.Warn("webhook notification marshal failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		w.logger.Warn("webhook request build failed", "url", w.url, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Warn("webhook delivery failed", "url", w.url, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		w.logger.Warn("webhook delivery rejected", "url", w.url, "status", resp.StatusCode)
		return
	}

	w.logger.Debug("webhook notification delivered", "url", w.url, "status", resp.StatusCode)
}
