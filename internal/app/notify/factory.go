package notify

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playrelay/internal/infra/config"
)

// NewSinksFromConfig creates notification sinks from configuration.
// An empty list is not an error: the manager runs in degraded mode and
// logs every event instead of delivering it.
func NewSinksFromConfig(cfgs []config.SinkConfig) ([]Sink, error) {
	var sinks []Sink

	for i, scfg := range cfgs {
		var sink Sink
		var err error

		switch scfg.Type {
		case "webhook":
			sink, err = NewWebhookSink(scfg.Settings)

		case "log":
			sink = NewLogSink()

		default:
			return nil, errors.Newf("unsupported sink type: %s (sink index %d)", scfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create sink (index %d, type %s)", i, scfg.Type)
		}

		sinks = append(sinks, sink)
		zlog.Info().Msgf("registered notification sink: index=%d type=%s", i+1, scfg.Type)
	}

	return sinks, nil
}
