package service

import (
	"context"

	"github.com/AmanKajla032004/Aurora-sub000/internal/store"
	"github.com/jonboulle/clockwork"
)

// PresenceService tracks live presence in rooms. A member only ever writes
// its own record, so concurrent heartbeats from different members never
// conflict by construction.
type PresenceService struct {
	store store.Store
	clock clockwork.Clock
}

// NewPresenceService creates a new PresenceService with the given store
func NewPresenceService(st store.Store, clock clockwork.Clock) *PresenceService {
	return &PresenceService{
		store: st,
		clock: clock,
	}
}

// RecordHeartbeat overwrites the caller's own elapsed-time value and
// freshness stamp. It is an idempotent overwrite, safe to call redundantly;
// callers are expected to invoke it at most once per second. A failed
// heartbeat simply leaves the previous value in place until the next tick.
func (s *PresenceService) RecordHeartbeat(ctx context.Context, roomID, memberID string, elapsedSeconds int) error {
	presence, err := s.store.GetPresence(ctx, roomID, memberID)
	if err != nil {
		return err
	}

	presence.ElapsedSeconds = elapsedSeconds
	presence.UpdatedAt = s.clock.Now()

	return s.store.SavePresence(ctx, presence)
}

// Subscribe registers a continuous listener for a room's presence. Every
// delivery carries the complete current membership, never an increment.
func (s *PresenceService) Subscribe(ctx context.Context, roomID string, onUpdate store.PresenceSnapshot) (func(), error) {
	return s.store.WatchPresence(ctx, roomID, onUpdate)
}
