package api

import (
	"net/http"
	"time"

	"github.com/AmanKajla032004/Aurora-sub000/internal/service"
)

// SetupRoutes configures the HTTP routes for the API
func SetupRoutes(rooms *service.RoomService, directory *service.Directory, heartbeatInterval time.Duration) *http.ServeMux {
	mux := http.NewServeMux()

	// Health check endpoints for Kubernetes
	mux.HandleFunc("/health/live", HealthLiveHandler)
	mux.HandleFunc("/health/ready", HealthReadyHandler)

	// Room management endpoints
	roomHandler := NewRoomHandler(rooms, directory, heartbeatInterval)
	mux.Handle("/api/rooms", roomHandler)
	mux.Handle("/api/rooms/", roomHandler)

	return mux
}
