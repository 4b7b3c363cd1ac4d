// Package webhook provides the inbound HTTP endpoint for media server
// playback notifications.
package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playrelay/internal/domain/playback"
)

// Processor consumes normalized notifications. Implemented by relay.Tracker.
type Processor interface {
	Handle(playback.Notification)
}

// jellyfinPayload mirrors the Jellyfin webhook plugin's JSON body.
// Missing fields default to empty/zero.
type jellyfinPayload struct {
	NotificationType      string `json:"NotificationType"`
	DeviceID              string `json:"DeviceId"`
	DeviceName            string `json:"DeviceName"`
	ClientName            string `json:"ClientName"`
	Name                  string `json:"Name"`
	ItemType              string `json:"ItemType"`
	ItemID                string `json:"ItemId"`
	IsPaused              bool   `json:"IsPaused"`
	PlaybackPositionTicks int64  `json:"PlaybackPositionTicks"`
	RunTimeTicks          int64  `json:"RunTimeTicks"`
}

// Handler serves the webhook endpoints.
type Handler struct {
	processor Processor
}

// NewHandler creates a new webhook handler.
func NewHandler(processor Processor) *Handler {
	return &Handler{processor: processor}
}

// NewRouter builds the HTTP router: webhook ingest, health, and metrics.
func NewRouter(processor Processor) http.Handler {
	h := NewHandler(processor)

	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Post("/jellyfin", h.Ingest)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// Health responds to liveness probes.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string]any{"ok": true})
}

// Ingest parses one raw notification and hands it to the processor.
// The response is 200 regardless of classification outcome; only an
// unreadable body is a client error.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}

	// An empty body is treated as an empty record, which classification
	// drops for lack of a device id.
	var body jellyfinPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			zlog.Debug().Err(err).Msg("webhook: rejecting malformed body")
			respond(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
			return
		}
	}

	h.processor.Handle(playback.Notification{
		Type:          playback.ParseNotificationType(body.NotificationType),
		DeviceID:      body.DeviceID,
		DeviceName:    body.DeviceName,
		ClientName:    body.ClientName,
		MediaName:     body.Name,
		MediaType:     body.ItemType,
		ItemID:        body.ItemID,
		IsPaused:      body.IsPaused,
		PositionTicks: body.PlaybackPositionTicks,
		RunTimeTicks:  body.RunTimeTicks,
	})

	respond(w, http.StatusOK, map[string]any{"ok": true})
}

func respond(w http.ResponseWriter, code int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zlog.Debug().Err(err).Msg("webhook: failed to write response")
	}
}
