package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AmanKajla032004/Aurora-sub000/internal/api"
	"github.com/AmanKajla032004/Aurora-sub000/internal/models"
	"github.com/AmanKajla032004/Aurora-sub000/internal/notify"
	"github.com/AmanKajla032004/Aurora-sub000/internal/service"
	"github.com/AmanKajla032004/Aurora-sub000/internal/store/memory"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAPI() *http.ServeMux {
	st := memory.NewStore()
	clock := clockwork.NewRealClock()
	rooms := service.NewRoomService(st, notify.NopSink{}, clock)
	directory := service.NewDirectory(st, service.NewPresenceService(st, clock))
	return api.SetupRoutes(rooms, directory, time.Second)
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, memberID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if memberID != "" {
		req.Header.Set("X-Member-ID", memberID)
		req.Header.Set("X-Member-Name", "Tester "+memberID)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	mux := setupAPI()

	rec := doJSON(t, mux, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndListRooms(t *testing.T) {
	mux := setupAPI()

	// Identity is mandatory for writes
	rec := doJSON(t, mux, http.MethodPost, "/api/rooms", "", map[string]any{"name": "Lounge", "mode": "forever"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Validation failures surface as 400
	rec = doJSON(t, mux, http.MethodPost, "/api/rooms", "owner1", map[string]any{"name": "  ", "mode": "forever"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/rooms", "owner1", map[string]any{"name": "Deep Work", "mode": "pomodoro"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "pomodoro rooms need a duration")

	rec = doJSON(t, mux, http.MethodPost, "/api/rooms", "owner1", map[string]any{
		"name": "Deep Work", "mode": "pomodoro", "duration_minutes": 25, "passkey": "abc123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Room             models.Room     `json:"room"`
		Presence         models.Presence `json:"presence"`
		HeartbeatSeconds int             `json:"heartbeat_seconds"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotEmpty(t, created.Room.ID)
	assert.Equal(t, "owner1", created.Presence.MemberID)
	assert.Equal(t, 1, created.HeartbeatSeconds, "clients tick at the configured cadence")

	rec = doJSON(t, mux, http.MethodGet, "/api/rooms", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing []service.RoomStatusData
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listing))
	require.Len(t, listing, 1)
	assert.Equal(t, 1, listing[0].MemberCount)
}

func TestJoinLeaveDeleteFlow(t *testing.T) {
	mux := setupAPI()

	rec := doJSON(t, mux, http.MethodPost, "/api/rooms", "owner1", map[string]any{
		"name": "Deep Work", "mode": "pomodoro", "duration_minutes": 25, "passkey": "abc123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Room models.Room `json:"room"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	roomPath := fmt.Sprintf("/api/rooms/%s", created.Room.ID)

	// Wrong passkey
	rec = doJSON(t, mux, http.MethodPost, roomPath+"/join", "user1", map[string]any{"passkey": "wrong"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Right passkey
	rec = doJSON(t, mux, http.MethodPost, roomPath+"/join", "user1", map[string]any{"passkey": "abc123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var joined struct {
		Presence         models.Presence `json:"presence"`
		HeartbeatSeconds int             `json:"heartbeat_seconds"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&joined))
	assert.Equal(t, "user1", joined.Presence.MemberID)
	assert.Equal(t, 0, joined.Presence.ElapsedSeconds)
	assert.Equal(t, 1, joined.HeartbeatSeconds)

	// Leave is idempotent
	rec = doJSON(t, mux, http.MethodPost, roomPath+"/leave", "user1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, mux, http.MethodPost, roomPath+"/leave", "user1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Only the owner may delete
	rec = doJSON(t, mux, http.MethodDelete, roomPath, "user1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, mux, http.MethodDelete, roomPath, "owner1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The room is gone afterwards
	rec = doJSON(t, mux, http.MethodPost, roomPath+"/join", "user1", map[string]any{"passkey": "abc123"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoutes(t *testing.T) {
	mux := setupAPI()

	rec := doJSON(t, mux, http.MethodPut, "/api/rooms", "owner1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/rooms/some-id/unknown", "owner1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
