// Package notify delivers playback events to downstream sinks.
package notify

import "context"

// Payload is the JSON body sent downstream for one event.
type Payload struct {
	Event       string  `json:"event"`
	Device      string  `json:"device"`
	Client      string  `json:"client"`
	Media       string  `json:"media"`
	MediaType   string  `json:"media_type"`
	PositionPct float64 `json:"position_pct"`
	Timestamp   string  `json:"timestamp"`
}

// Sink is the interface for event delivery targets. Delivery is best-effort:
// errors are logged by the caller, never retried.
type Sink interface {
	// Deliver sends one event payload.
	Deliver(ctx context.Context, p Payload) error

	// Name returns the sink name (used in config and metrics).
	Name() string
}
