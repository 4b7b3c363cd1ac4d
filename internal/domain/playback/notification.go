package playback

import "math"

// NotificationType represents the type of an inbound playback notification.
type NotificationType int

const (
	NotificationUnknown  NotificationType = iota // Unrecognized type, ignored
	NotificationStart                            // Playback started
	NotificationStop                             // Playback stopped
	NotificationProgress                         // Periodic position/pause sample
)

// String returns the string representation of the notification type.
func (t NotificationType) String() string {
	switch t {
	case NotificationStart:
		return "PlaybackStart"
	case NotificationStop:
		return "PlaybackStop"
	case NotificationProgress:
		return "PlaybackProgress"
	default:
		return "unknown"
	}
}

// ParseNotificationType maps a raw notification type string to its enum value.
// Unrecognized strings map to NotificationUnknown.
func ParseNotificationType(s string) NotificationType {
	switch s {
	case "PlaybackStart":
		return NotificationStart
	case "PlaybackStop":
		return NotificationStop
	case "PlaybackProgress":
		return NotificationProgress
	default:
		return NotificationUnknown
	}
}

// Notification is one normalized playback status record from the media server.
// Empty string fields mean "not present in the raw record".
type Notification struct {
	Type          NotificationType
	DeviceID      string
	DeviceName    string
	ClientName    string
	MediaName     string
	MediaType     string
	ItemID        string
	IsPaused      bool
	PositionTicks int64
	RunTimeTicks  int64
}

// Percent returns position as a percentage of runtime.
// Returns 0 when runtime is not positive.
func Percent(position, runtime int64) float64 {
	if runtime <= 0 {
		return 0
	}
	return float64(position) / float64(runtime) * 100
}

// RoundPercent rounds a percentage to one decimal, the precision used in
// outbound payloads.
func RoundPercent(pct float64) float64 {
	return math.Round(pct*10) / 10
}
