package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/AmanKajla032004/Aurora-sub000/internal/models"
	"github.com/AmanKajla032004/Aurora-sub000/internal/notify"
	"github.com/AmanKajla032004/Aurora-sub000/internal/store"
	"github.com/AmanKajla032004/Aurora-sub000/internal/utils"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// RoomUpdateCallback is a function type for room update callbacks
type RoomUpdateCallback func(*models.Room)

// RoomService provides the room lifecycle: create, join, leave and delete.
// Access rules live here: passkey gating on join, owner-only delete.
type RoomService struct {
	store           store.Store
	sink            notify.Sink
	clock           clockwork.Clock
	reaper          *Reaper
	updateCallbacks []RoomUpdateCallback
}

// NewRoomService creates a new RoomService with the given store
func NewRoomService(st store.Store, sink notify.Sink, clock clockwork.Clock) *RoomService {
	return &RoomService{
		store:           st,
		sink:            sink,
		clock:           clock,
		updateCallbacks: make([]RoomUpdateCallback, 0),
	}
}

// AttachReaper wires the garbage collector in so leave can trigger an
// opportunistic collection of emptied forever rooms
func (s *RoomService) AttachReaper(r *Reaper) {
	s.reaper = r
}

// RegisterUpdateCallback registers a callback function to be called when room data changes
func (s *RoomService) RegisterUpdateCallback(callback RoomUpdateCallback) {
	s.updateCallbacks = append(s.updateCallbacks, callback)
}

// notifyUpdate calls all registered callbacks with the changed room
func (s *RoomService) notifyUpdate(room *models.Room) {
	for _, callback := range s.updateCallbacks {
		callback(room)
	}
}

// CreateRoom validates and persists a new room, then performs an implicit
// join for the creator: the owner is a normal member as well as the owner.
// Validation runs before any store call, so a rejected room writes nothing.
func (s *RoomService) CreateRoom(ctx context.Context, owner models.Member, name string, mode models.RoomMode, durationMinutes int, passkey string) (*models.Room, *models.Presence, error) {
	room := &models.Room{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(name),
		Mode:            mode,
		DurationMinutes: durationMinutes,
		Passkey:         passkey,
		OwnerID:         owner.ID,
		CreatedAt:       s.clock.Now(),
	}

	if err := room.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.store.SaveRoom(ctx, room); err != nil {
		s.sink.OperationFailed("create", err)
		return nil, nil, fmt.Errorf("failed to create room: %w", err)
	}

	presence := models.NewPresence(room.ID, owner, s.clock.Now())
	if err := s.store.SavePresence(ctx, presence); err != nil {
		s.sink.OperationFailed("create", err)
		return nil, nil, fmt.Errorf("failed to join created room: %w", err)
	}

	log.Printf("Room %s (%s) created by %s", room.ID, utils.SanitizeLogString(room.Name), owner.ID)
	s.notifyUpdate(room)

	return room, presence, nil
}

// JoinRoom adds a member to a room, gated by the room's passkey. A prior
// presence for the same member is replaced wholesale, so a rejoin restarts
// elapsed time at zero with a fresh color token.
func (s *RoomService) JoinRoom(ctx context.Context, roomID string, member models.Member, passkey string) (*models.Presence, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, models.ErrRoomNotFound
		}
		s.sink.OperationFailed("join", err)
		return nil, fmt.Errorf("failed to look up room: %w", err)
	}

	if !room.CheckPasskey(passkey) {
		return nil, models.ErrAccessDenied
	}

	presence := models.NewPresence(room.ID, member, s.clock.Now())
	if err := s.store.SavePresence(ctx, presence); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The room vanished between the lookup and the write
			return nil, models.ErrRoomNotFound
		}
		s.sink.OperationFailed("join", err)
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	log.Printf("Member %s joined room %s", member.ID, roomID)
	s.notifyUpdate(room)

	return presence, nil
}

// LeaveRoom removes a member's presence from a room. It is idempotent:
// leaving a room the member is not in, or one that no longer exists, is a
// no-op. Emptied forever rooms are handed to the reaper straight away.
func (s *RoomService) LeaveRoom(ctx context.Context, roomID, memberID string) error {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up room: %w", err)
	}

	if err := s.store.DeletePresence(ctx, roomID, memberID); err != nil {
		s.sink.OperationFailed("leave", err)
		return fmt.Errorf("failed to leave room: %w", err)
	}

	log.Printf("Member %s left room %s", memberID, roomID)
	s.notifyUpdate(room)

	if room.Mode == models.ModeForever && s.reaper != nil {
		s.reaper.CollectRoom(ctx, roomID)
	}

	return nil
}

// DeleteRoom removes a room and all its presence records. Only the owner may
// delete; everyone else gets ErrPermissionDenied and the room is untouched.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID, requesterID string) error {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.ErrRoomNotFound
		}
		s.sink.OperationFailed("delete", err)
		return fmt.Errorf("failed to look up room: %w", err)
	}

	if room.OwnerID != requesterID {
		return models.ErrPermissionDenied
	}

	if err := s.store.DeleteRoom(ctx, roomID); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.sink.OperationFailed("delete", err)
		return fmt.Errorf("failed to delete room: %w", err)
	}

	log.Printf("Room %s (%s) deleted by owner %s", roomID, utils.SanitizeLogString(room.Name), requesterID)
	s.notifyUpdate(room)

	return nil
}
