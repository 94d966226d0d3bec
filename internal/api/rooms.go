package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/AmanKajla032004/Aurora-sub000/internal/models"
	"github.com/AmanKajla032004/Aurora-sub000/internal/service"
)

// RoomHandler handles HTTP requests for room management. Identity is
// resolved upstream and arrives in headers; this layer only adapts HTTP to
// the room service and holds no business logic.
type RoomHandler struct {
	rooms             *service.RoomService
	directory         *service.Directory
	heartbeatInterval time.Duration
}

// NewRoomHandler creates a new room handler. heartbeatInterval is echoed to
// clients on create and join so their local timers tick at the configured
// cadence.
func NewRoomHandler(rooms *service.RoomService, directory *service.Directory, heartbeatInterval time.Duration) *RoomHandler {
	return &RoomHandler{
		rooms:             rooms,
		directory:         directory,
		heartbeatInterval: heartbeatInterval,
	}
}

// createRoomRequest is the payload for POST /api/rooms
type createRoomRequest struct {
	Name            string `json:"name"`
	Mode            string `json:"mode"`
	DurationMinutes int    `json:"duration_minutes"`
	Passkey         string `json:"passkey"`
}

// joinRoomRequest is the payload for POST /api/rooms/{id}/join
type joinRoomRequest struct {
	Passkey string `json:"passkey"`
}

// ServeHTTP routes room management requests
// Path format: /api/rooms, /api/rooms/{roomID}, /api/rooms/{roomID}/{action}
func (h *RoomHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	var roomID, action string
	if len(pathParts) >= 3 {
		roomID = pathParts[2]
	}
	if len(pathParts) >= 4 {
		action = pathParts[3]
	}

	switch {
	case r.Method == http.MethodGet && roomID == "":
		h.listRooms(w, r)
	case r.Method == http.MethodPost && roomID == "":
		h.createRoom(w, r)
	case r.Method == http.MethodPost && action == "join":
		h.joinRoom(w, r, roomID)
	case r.Method == http.MethodPost && action == "leave":
		h.leaveRoom(w, r, roomID)
	case r.Method == http.MethodDelete && roomID != "" && action == "":
		h.deleteRoom(w, r, roomID)
	default:
		http.NotFound(w, r)
	}
}

// requester extracts the upstream-resolved identity from request headers
func requester(r *http.Request) (models.Member, bool) {
	id := r.Header.Get("X-Member-ID")
	if id == "" {
		return models.Member{}, false
	}
	return models.Member{
		ID:          id,
		DisplayName: r.Header.Get("X-Member-Name"),
	}, true
}

// listRooms handles GET /api/rooms
func (h *RoomHandler) listRooms(w http.ResponseWriter, r *http.Request) {
	listing, err := h.directory.List(r.Context())
	if err != nil {
		log.Printf("Error listing rooms: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list rooms")
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// createRoom handles POST /api/rooms
func (h *RoomHandler) createRoom(w http.ResponseWriter, r *http.Request) {
	member, ok := requester(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing member identity")
		return
	}

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode, err := models.ParseRoomMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	room, presence, err := h.rooms.CreateRoom(r.Context(), member, req.Name, mode, req.DurationMinutes, req.Passkey)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"room":              room,
		"presence":          presence,
		"heartbeat_seconds": int(h.heartbeatInterval / time.Second),
	})
}

// joinRoom handles POST /api/rooms/{roomID}/join
func (h *RoomHandler) joinRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	member, ok := requester(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing member identity")
		return
	}

	var req joinRoomRequest
	if r.Body != nil {
		// An empty body means an open-access join
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	presence, err := h.rooms.JoinRoom(r.Context(), roomID, member, req.Passkey)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"presence":          presence,
		"heartbeat_seconds": int(h.heartbeatInterval / time.Second),
	})
}

// leaveRoom handles POST /api/rooms/{roomID}/leave
func (h *RoomHandler) leaveRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	member, ok := requester(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing member identity")
		return
	}

	if err := h.rooms.LeaveRoom(r.Context(), roomID, member.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteRoom handles DELETE /api/rooms/{roomID}
func (h *RoomHandler) deleteRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	member, ok := requester(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing member identity")
		return
	}

	if err := h.rooms.DeleteRoom(r.Context(), roomID, member.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps room service errors onto HTTP status codes
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "room not found")
	case errors.Is(err, models.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, models.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "permission denied")
	default:
		log.Printf("Room operation failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "operation failed, please retry")
	}
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError writes a JSON error envelope
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
