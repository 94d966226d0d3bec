// Package store defines the document-store contract the focus room core
// depends on: per-document reads and writes for rooms and presence, plus a
// push subscription that delivers the full presence collection of a room
// whenever it changes. The core never talks to a concrete product directly.
package store

import (
	"context"
	"errors"

	"github.com/AmanKajla032004/Aurora-sub000/internal/models"
)

// ErrNotFound is returned when a requested room does not exist
var ErrNotFound = errors.New("entity not found")

// PresenceSnapshot receives the complete current membership of a room.
// Every delivery is the full authoritative state, never an increment;
// consumers must tolerate duplicate deliveries of an unchanged snapshot and
// must not assume any ordering between different members' updates.
type PresenceSnapshot func(presences []*models.Presence)

// Store is the interface for persisting rooms and presence records
type Store interface {
	// Room operations
	SaveRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListRooms(ctx context.Context) ([]*models.Room, error)
	// DeleteRoom removes a room and all its presence records
	DeleteRoom(ctx context.Context, id string) error

	// Presence operations - at most one record per (room, member) pair
	SavePresence(ctx context.Context, presence *models.Presence) error
	GetPresence(ctx context.Context, roomID, memberID string) (*models.Presence, error)
	ListPresence(ctx context.Context, roomID string) ([]*models.Presence, error)
	CountPresence(ctx context.Context, roomID string) (int, error)
	// DeletePresence is idempotent: removing an absent record is a no-op
	DeletePresence(ctx context.Context, roomID, memberID string) error

	// WatchPresence registers fn for presence snapshots of a room. The
	// returned cancel function stops delivery; it is safe to call twice.
	WatchPresence(ctx context.Context, roomID string, fn PresenceSnapshot) (func(), error)
}
