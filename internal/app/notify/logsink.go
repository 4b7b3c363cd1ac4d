package notify

import (
	"context"

	zlog "github.com/rs/zerolog/log"
)

// LogSink writes event payloads to the process log. Useful on its own for
// dry runs, and as the visible trace when no webhook endpoint is configured.
type LogSink struct{}

// NewLogSink creates a log sink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Name returns the sink name.
func (l *LogSink) Name() string {
	return "log"
}

// Deliver logs the payload.
func (l *LogSink) Deliver(_ context.Context, p Payload) error {
	zlog.Info().Msgf("notify: event=%s device=%s client=%s media=%s type=%s pos=%.1f%% at=%s",
		p.Event, p.Device, p.Client, p.Media, p.MediaType, p.PositionPct, p.Timestamp)
	return nil
}
