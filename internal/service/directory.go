package service

import (
	"context"
	"fmt"

	"github.com/AmanKajla032004/Aurora-sub000/internal/models"
	"github.com/AmanKajla032004/Aurora-sub000/internal/store"
)

// RoomStatusData represents one directory entry for the UI
type RoomStatusData struct {
	Room        *models.Room `json:"room"`
	MemberCount int          `json:"member_count"`
}

// Directory is the read-only listing of open rooms with live member counts.
// It is purely a composition over the store and presence tracking and
// performs no writes.
type Directory struct {
	store    store.Store
	presence *PresenceService
}

// NewDirectory creates a new Directory
func NewDirectory(st store.Store, presence *PresenceService) *Directory {
	return &Directory{
		store:    st,
		presence: presence,
	}
}

// List returns all non-deleted rooms, each with its live member count.
// The count is the number of distinct members holding a presence record,
// so a rejoin is never double-counted.
func (d *Directory) List(ctx context.Context) ([]RoomStatusData, error) {
	rooms, err := d.store.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	result := make([]RoomStatusData, 0, len(rooms))
	for _, room := range rooms {
		count, err := d.store.CountPresence(ctx, room.ID)
		if err != nil {
			count = 0 // Default to 0 if there's an error
		}

		result = append(result, RoomStatusData{
			Room:        room,
			MemberCount: count,
		})
	}

	return result, nil
}

// WatchRoom delivers the live member count of one room to fn, derived from
// the presence subscription; the current count arrives first.
func (d *Directory) WatchRoom(ctx context.Context, roomID string, fn func(memberCount int)) (func(), error) {
	return d.presence.Subscribe(ctx, roomID, func(presences []*models.Presence) {
		fn(len(presences))
	})
}
