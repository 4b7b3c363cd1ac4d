package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
)

// webhookSettings holds webhook sink settings from config.
type webhookSettings struct {
	URL        string `mapstructure:"url"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// WebhookSink POSTs event payloads as JSON to an HTTP endpoint.
type WebhookSink struct {
	url        string
	httpClient *http.Client
}

// NewWebhookSink creates a webhook sink from config settings.
func NewWebhookSink(settings map[string]any) (*WebhookSink, error) {
	var s webhookSettings
	if err := mapstructure.Decode(settings, &s); err != nil {
		return nil, errors.Wrap(err, "failed to decode webhook settings")
	}
	if s.URL == "" {
		return nil, errors.New("webhook url is required")
	}
	if s.TimeoutSec <= 0 {
		s.TimeoutSec = 5
	}

	return &WebhookSink{
		url:        s.URL,
		httpClient: &http.Client{Timeout: time.Duration(s.TimeoutSec) * time.Second},
	}, nil
}

// Name returns the sink name.
func (w *WebhookSink) Name() string {
	return "webhook"
}

// Deliver POSTs the payload. Any non-2xx response is an error.
func (w *WebhookSink) Deliver(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Newf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}
