// Package playback provides the normalized playback notification model.
package playback

// State represents a device's playback state.
type State int

const (
	StateIdle    State = iota // Nothing playing (stopped or never started)
	StatePlaying              // Media is playing
	StatePaused               // Media is paused (debounce confirmed)
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
