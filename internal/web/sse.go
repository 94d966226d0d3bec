// Package web provides the live directory feed for browser clients
package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/AmanKajla032004/Aurora-sub000/internal/models"
	"github.com/AmanKajla032004/Aurora-sub000/internal/service"
	"github.com/r3labs/sse/v2"
)

// DirectoryStream is the stream ID clients subscribe to (?stream=directory)
const DirectoryStream = "directory"

// SSEManager pushes directory updates to connected clients over server-sent
// events. It holds no state of its own; every push re-reads the directory so
// clients always receive the full authoritative listing.
type SSEManager struct {
	server    *sse.Server
	directory *service.Directory
}

// NewSSEManager creates a new server-sent events manager
func NewSSEManager(directory *service.Directory) *SSEManager {
	server := sse.New()
	server.AutoReplay = false
	server.CreateStream(DirectoryStream)

	return &SSEManager{
		server:    server,
		directory: directory,
	}
}

// NotifyRoomUpdate is registered as a room service update callback; any room
// change republishes the whole directory
func (m *SSEManager) NotifyRoomUpdate(room *models.Room) {
	listing, err := m.directory.List(context.Background())
	if err != nil {
		log.Printf("Error building directory for SSE push: %v", err)
		return
	}

	data, err := json.Marshal(listing)
	if err != nil {
		log.Printf("Error marshaling directory for SSE push: %v", err)
		return
	}

	m.server.Publish(DirectoryStream, &sse.Event{
		Event: []byte("rooms"),
		Data:  data,
	})
}

// ServeHTTP implements the http.Handler interface for SSE connections
func (m *SSEManager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.server.ServeHTTP(w, r)
}

// Shutdown closes all client connections
func (m *SSEManager) Shutdown() {
	m.server.Close()
}
