package relay

import "time"

// Event names forwarded downstream. PlaybackStart and PlaybackStop pass the
// media server's own transitions through; play, pause and media_end are
// derived by the tracker.
const (
	EventPlaybackStart = "PlaybackStart"
	EventPlaybackStop  = "PlaybackStop"
	EventPlay          = "play"
	EventPause         = "pause"
	EventMediaEnd      = "media_end"
)

// Event is one semantic playback transition for a device, snapshotted at
// emission time.
type Event struct {
	Name        string
	Device      string
	Client      string
	Media       string
	MediaType   string
	PositionPct float64
	Time        time.Time
}

// Emitter delivers events downstream. Implementations must not block: Emit
// is called while the session store's mutex is held.
type Emitter interface {
	Emit(Event)
}
