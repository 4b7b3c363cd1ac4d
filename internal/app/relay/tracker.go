package relay

import (
	"strings"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playrelay/internal/domain/playback"
	"github.com/osa030/playrelay/internal/infra/metrics"
)

// Config holds tracker configuration.
type Config struct {
	PauseDebounce       time.Duration // How long a pause must survive before it is confirmed
	CreditsThresholdPct float64       // Position percent after which media_end fires
	AllowedDevices      []string      // Device display names to accept (empty = all)
}

// Tracker is the per-device playback state machine. It classifies each
// incoming notification into zero or one outbound event, mutating the
// device's session under the store's mutex.
type Tracker struct {
	store   *Store
	config  Config
	emitter Emitter
	allowed map[string]struct{} // lowercased device names, nil when unrestricted
}

// NewTracker creates a new tracker.
func NewTracker(store *Store, config Config, emitter Emitter) *Tracker {
	var allowed map[string]struct{}
	if len(config.AllowedDevices) > 0 {
		allowed = make(map[string]struct{}, len(config.AllowedDevices))
		for _, name := range config.AllowedDevices {
			name = strings.ToLower(strings.TrimSpace(name))
			if name != "" {
				allowed[name] = struct{}{}
			}
		}
	}
	return &Tracker{
		store:   store,
		config:  config,
		emitter: emitter,
		allowed: allowed,
	}
}

// Handle processes one normalized notification. Malformed or filtered
// records are dropped without effect; the tracker never returns an error.
func (t *Tracker) Handle(n playback.Notification) {
	metrics.NotificationsReceived.WithLabelValues(n.Type.String()).Inc()

	if n.DeviceID == "" {
		metrics.NotificationsSkipped.WithLabelValues("no_device_id").Inc()
		zlog.Debug().Msg("relay: skipping notification without device id")
		return
	}

	if t.allowed != nil {
		name := strings.ToLower(strings.TrimSpace(n.DeviceName))
		if _, ok := t.allowed[name]; !ok {
			metrics.NotificationsSkipped.WithLabelValues("device_not_allowed").Inc()
			zlog.Debug().Msgf("relay: skipping device not in allow-list: device=%s", n.DeviceName)
			return
		}
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	s := t.store.getOrCreateLocked(n.DeviceID)

	// Merge descriptive metadata; absent fields keep their previous values.
	if n.DeviceName != "" {
		s.DeviceName = n.DeviceName
	}
	if n.ClientName != "" {
		s.ClientName = n.ClientName
	}
	if n.MediaName != "" {
		s.MediaName = n.MediaName
	}
	if n.MediaType != "" {
		s.MediaType = n.MediaType
	}
	if n.RunTimeTicks != 0 {
		s.RunTimeTicks = n.RunTimeTicks
	}

	// A new media item invalidates all transient state.
	if n.ItemID != "" && n.ItemID != s.ItemID {
		s.cancelPauseTimerLocked()
		s.ItemID = n.ItemID
		s.MediaEndEmitted = false
	}

	zlog.Debug().Msgf("relay: in type=%s device=%s paused=%v pos=%d state=%s debouncing=%v",
		n.Type, s.DeviceName, n.IsPaused, n.PositionTicks, s.State, s.Debouncing)

	switch n.Type {
	case playback.NotificationStart:
		// Always forwarded: a session restart signal.
		s.cancelPauseTimerLocked()
		s.PositionTicks = n.PositionTicks
		s.State = playback.StatePlaying
		s.MediaEndEmitted = false
		t.emitLocked(EventPlaybackStart, s)

	case playback.NotificationStop:
		s.cancelPauseTimerLocked()
		s.PositionTicks = n.PositionTicks
		s.State = playback.StateIdle
		t.emitLocked(EventPlaybackStop, s)

	case playback.NotificationProgress:
		t.handleProgressLocked(s, n)

	default:
		metrics.NotificationsSkipped.WithLabelValues("unknown_type").Inc()
	}
}

// handleProgressLocked applies the progress rules in order: credits reset,
// credits detection, resume, pause candidate. Must be called with the
// store's mutex held.
func (t *Tracker) handleProgressLocked(s *Session, n playback.Notification) {
	s.PositionTicks = n.PositionTicks
	pct := playback.Percent(n.PositionTicks, s.RunTimeTicks)

	// User seeked back out of the end-credits window.
	if s.MediaEndEmitted && s.RunTimeTicks > 0 && pct < t.config.CreditsThresholdPct {
		s.MediaEndEmitted = false
		zlog.Debug().Msgf("relay: media_end reset, position back below credits threshold: device=%s", s.DeviceName)
	}

	// Entered the end-credits window: fire media_end before the player's
	// own stop event, which may never arrive promptly (autoplay-next).
	if !s.MediaEndEmitted && s.RunTimeTicks > 0 && pct >= t.config.CreditsThresholdPct {
		s.cancelPauseTimerLocked()
		s.MediaEndEmitted = true
		s.State = playback.StateIdle
		t.emitLocked(EventMediaEnd, s)
		return
	}

	if !n.IsPaused {
		if s.Debouncing {
			// Seek detected: the pause was never confirmed, so no
			// compensating play is needed.
			zlog.Debug().Msgf("relay: seek detected, cancelling pause debounce: device=%s", s.DeviceName)
			s.cancelPauseTimerLocked()
			return
		}
		if s.State == playback.StatePaused || s.State == playback.StateIdle {
			if s.MediaEndEmitted {
				zlog.Debug().Msgf("relay: skip play, media already ended: device=%s", s.DeviceName)
				return
			}
			s.State = playback.StatePlaying
			t.emitLocked(EventPlay, s)
		}
		return
	}

	// Paused sample: start the debounce only from confirmed playing, and
	// only if one isn't already pending.
	if s.State == playback.StatePlaying && !s.Debouncing {
		s.Debouncing = true
		s.DebounceGen++
		gen := s.DebounceGen
		deviceID := s.DeviceID
		s.pauseTimer = time.AfterFunc(t.config.PauseDebounce, func() {
			t.confirmPause(deviceID, gen)
		})
		zlog.Debug().Msgf("relay: pause debounce started: device=%s delay=%v", s.DeviceName, t.config.PauseDebounce)
	}
}

// confirmPause runs when a debounce timer fires. The session may have
// changed since the timer was scheduled, so it re-validates under the lock:
// the debouncing flag and generation are authoritative, not the timer's own
// cancellation.
func (t *Tracker) confirmPause(deviceID string, gen uint64) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	s := t.store.getLocked(deviceID)
	if s == nil || !s.Debouncing || s.DebounceGen != gen {
		return
	}

	s.Debouncing = false
	s.pauseTimer = nil
	s.State = playback.StatePaused
	t.emitLocked(EventPause, s)
}

// emitLocked snapshots the session and hands the event to the emitter.
// Must be called with the store's mutex held; the emitter must not block.
func (t *Tracker) emitLocked(name string, s *Session) {
	ev := Event{
		Name:        name,
		Device:      s.DeviceName,
		Client:      s.ClientName,
		Media:       s.MediaName,
		MediaType:   s.MediaType,
		PositionPct: playback.RoundPercent(playback.Percent(s.PositionTicks, s.RunTimeTicks)),
		Time:        time.Now().UTC().Truncate(time.Second),
	}

	zlog.Info().Msgf("relay: emit event=%s device=%s media=%s pos=%.1f%%",
		name, s.DeviceName, s.MediaName, ev.PositionPct)
	metrics.EventsEmitted.WithLabelValues(name).Inc()

	t.emitter.Emit(ev)
}
