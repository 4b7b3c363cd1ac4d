// Package relay reduces raw playback notifications to semantic transitions.
package relay

import (
	"time"

	"github.com/osa030/playrelay/internal/domain/playback"
)

// Session holds the mutable playback state tracked for one device.
// All fields are guarded by the owning Store's mutex; only the Tracker
// (and its debounce timer callbacks) mutate them.
type Session struct {
	DeviceID   string
	DeviceName string
	ClientName string
	MediaName  string
	MediaType  string
	ItemID     string

	State           playback.State
	PositionTicks   int64
	RunTimeTicks    int64
	MediaEndEmitted bool

	// Pause debounce. Debouncing is the source of truth: a timer callback
	// that finds it false (or a stale generation) must abort. DebounceGen
	// increments on every schedule so a callback racing a cancellation can
	// detect it lost.
	Debouncing  bool
	DebounceGen uint64
	pauseTimer  *time.Timer
}

// cancelPauseTimerLocked stops any pending debounce timer and clears the
// debouncing flag. Must be called with the store's mutex held.
func (s *Session) cancelPauseTimerLocked() {
	if s.pauseTimer != nil {
		s.pauseTimer.Stop()
		s.pauseTimer = nil
	}
	s.Debouncing = false
}
