package webhook

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playrelay/internal/domain/playback"
)

// captureProcessor records handled notifications.
type captureProcessor struct {
	notifications []playback.Notification
}

func (c *captureProcessor) Handle(n playback.Notification) {
	c.notifications = append(c.notifications, n)
}

func TestIngest_ValidNotification(t *testing.T) {
	proc := &captureProcessor{}
	router := NewRouter(proc)

	body := `{
		"NotificationType": "PlaybackProgress",
		"DeviceId": "dev1",
		"DeviceName": "Living Room",
		"ClientName": "Jellyfin Web",
		"Name": "Some Movie",
		"ItemType": "Movie",
		"ItemId": "item1",
		"IsPaused": true,
		"PlaybackPositionTicks": 571000,
		"RunTimeTicks": 600000
	}`

	req := httptest.NewRequest(http.MethodPost, "/jellyfin", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	require.Len(t, proc.notifications, 1)
	n := proc.notifications[0]
	assert.Equal(t, playback.NotificationProgress, n.Type)
	assert.Equal(t, "dev1", n.DeviceID)
	assert.Equal(t, "Living Room", n.DeviceName)
	assert.Equal(t, "Jellyfin Web", n.ClientName)
	assert.Equal(t, "Some Movie", n.MediaName)
	assert.Equal(t, "Movie", n.MediaType)
	assert.Equal(t, "item1", n.ItemID)
	assert.True(t, n.IsPaused)
	assert.Equal(t, int64(571000), n.PositionTicks)
	assert.Equal(t, int64(600000), n.RunTimeTicks)
}

func TestIngest_MissingFieldsDefaultToZero(t *testing.T) {
	proc := &captureProcessor{}
	router := NewRouter(proc)

	req := httptest.NewRequest(http.MethodPost, "/jellyfin", strings.NewReader(`{"NotificationType":"PlaybackStart","DeviceId":"dev1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, proc.notifications, 1)
	n := proc.notifications[0]
	assert.Equal(t, playback.NotificationStart, n.Type)
	assert.Empty(t, n.DeviceName)
	assert.Zero(t, n.PositionTicks)
}

func TestIngest_UnknownTypeStillAccepted(t *testing.T) {
	proc := &captureProcessor{}
	router := NewRouter(proc)

	req := httptest.NewRequest(http.MethodPost, "/jellyfin", strings.NewReader(`{"NotificationType":"ItemAdded","DeviceId":"dev1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// The endpoint accepts anything parseable; classification decides.
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, proc.notifications, 1)
	assert.Equal(t, playback.NotificationUnknown, proc.notifications[0].Type)
}

func TestIngest_BadJSON(t *testing.T) {
	proc := &captureProcessor{}
	router := NewRouter(proc)

	req := httptest.NewRequest(http.MethodPost, "/jellyfin", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"bad json"}`, rec.Body.String())
	assert.Empty(t, proc.notifications)
}

func TestHealth(t *testing.T) {
	router := NewRouter(&captureProcessor{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router := NewRouter(&captureProcessor{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
