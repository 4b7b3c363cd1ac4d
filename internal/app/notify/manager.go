package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playrelay/internal/app/relay"
	"github.com/osa030/playrelay/internal/infra/metrics"
)

const (
	queueSize       = 64
	deliveryTimeout = 10 * time.Second
)

// delivery is one queued event with an id for log correlation.
type delivery struct {
	id      string
	payload Payload
}

// Manager dispatches events to the configured sinks asynchronously.
// It implements relay.Emitter: Emit never blocks the caller, which holds
// the session store's mutex. Delivery failures are logged, never retried,
// and never surface back into session state.
type Manager struct {
	sinks []Sink
	queue chan delivery

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	warnOnce sync.Once
}

// NewManager creates a new manager for the given sinks.
func NewManager(sinks []Sink) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		sinks:  sinks,
		queue:  make(chan delivery, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the dispatch worker.
func (m *Manager) Start() {
	m.wg.Add(1)
	go m.run()
}

// Emit queues an event for delivery. If the queue is full the event is
// dropped and counted; the classifier is never backpressured.
func (m *Manager) Emit(ev relay.Event) {
	if len(m.sinks) == 0 {
		m.warnOnce.Do(func() {
			zlog.Warn().Msg("notify: no sinks configured, events will be logged and dropped")
		})
		zlog.Info().Msgf("notify: dropped event=%s device=%s media=%s pos=%.1f%%",
			ev.Name, ev.Device, ev.Media, ev.PositionPct)
		return
	}

	d := delivery{
		id: uuid.New().String(),
		payload: Payload{
			Event:       ev.Name,
			Device:      ev.Device,
			Client:      ev.Client,
			Media:       ev.Media,
			MediaType:   ev.MediaType,
			PositionPct: ev.PositionPct,
			Timestamp:   ev.Time.Format(time.RFC3339),
		},
	}

	select {
	case m.queue <- d:
	default:
		metrics.DeliveriesDropped.Inc()
		zlog.Warn().Msgf("notify: dispatch queue full, dropping event=%s device=%s", ev.Name, ev.Device)
	}
}

// Close stops the worker and waits for the in-flight delivery to finish.
// Queued but undelivered events are discarded.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) run() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case d := <-m.queue:
			m.deliver(d)
		}
	}
}

// deliver sends one event to every sink sequentially. Event volume is low,
// so a single worker keeps deliveries for a device in order.
func (m *Manager) deliver(d delivery) {
	for _, sink := range m.sinks {
		ctx, cancel := context.WithTimeout(m.ctx, deliveryTimeout)
		err := sink.Deliver(ctx, d.payload)
		cancel()

		if err != nil {
			metrics.Deliveries.WithLabelValues(sink.Name(), "error").Inc()
			zlog.Error().Err(err).Msgf("notify: delivery failed: sink=%s event=%s delivery=%s",
				sink.Name(), d.payload.Event, d.id)
			continue
		}

		metrics.Deliveries.WithLabelValues(sink.Name(), "ok").Inc()
		zlog.Debug().Msgf("notify: delivered: sink=%s event=%s delivery=%s",
			sink.Name(), d.payload.Event, d.id)
	}
}
