// Package metrics provides Prometheus instrumentation for the relay.
// All metrics register on the default registry and are exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsReceived counts inbound notifications by type.
	NotificationsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_notifications_received_total",
			Help: "Total playback notifications received from the media server",
		},
		[]string{"type"},
	)

	// NotificationsSkipped counts notifications dropped without effect.
	NotificationsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_notifications_skipped_total",
			Help: "Total notifications dropped before classification",
		},
		[]string{"reason"},
	)

	// EventsEmitted counts semantic events produced by the tracker.
	EventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_emitted_total",
			Help: "Total semantic playback events emitted",
		},
		[]string{"event"},
	)

	// Deliveries counts outbound delivery attempts per sink.
	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_deliveries_total",
			Help: "Total outbound event deliveries by sink and status",
		},
		[]string{"sink", "status"},
	)

	// DeliveriesDropped counts events dropped because the dispatch queue was full.
	DeliveriesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_deliveries_dropped_total",
			Help: "Total events dropped due to a full dispatch queue",
		},
	)

	// SessionsActive tracks the number of device sessions in the store.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_sessions_active",
			Help: "Number of device sessions currently tracked",
		},
	)
)
