package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/AmanKajla032004/Aurora-sub000/internal/models"
	"github.com/AmanKajla032004/Aurora-sub000/internal/store"
	"github.com/jonboulle/clockwork"
)

// Reaper garbage-collects forever rooms once their presence set is empty.
// Pomodoro and session rooms are never auto-deleted, even when momentarily
// empty. All reaper failures are logged and non-fatal; at worst a room
// persists longer than ideal.
type Reaper struct {
	store      store.Store
	rooms      *RoomService
	clock      clockwork.Clock
	interval   time.Duration
	staleAfter time.Duration
}

// NewReaper creates a new Reaper. staleAfter bounds how long a presence
// record may go without a heartbeat before its member is treated as gone;
// zero disables stale eviction.
func NewReaper(st store.Store, rooms *RoomService, clock clockwork.Clock, interval, staleAfter time.Duration) *Reaper {
	return &Reaper{
		store:      st,
		rooms:      rooms,
		clock:      clock,
		interval:   interval,
		staleAfter: staleAfter,
	}
}

// Run sweeps periodically until the context is cancelled
func (r *Reaper) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.Sweep(ctx)
		}
	}
}

// Sweep checks every listed room: stale presence records are evicted first,
// then emptied forever rooms are collected
func (r *Reaper) Sweep(ctx context.Context) {
	rooms, err := r.store.ListRooms(ctx)
	if err != nil {
		log.Printf("Reaper sweep failed to list rooms: %v", err)
		return
	}

	for _, room := range rooms {
		r.evictStale(ctx, room)
		if room.Mode == models.ModeForever {
			r.CollectRoom(ctx, room.ID)
		}
	}
}

// CollectRoom deletes a room if and only if it is a forever room with a
// confirmed-empty presence set. Deletion is delete-if-exists: losing the
// race to another deleter is fine.
func (r *Reaper) CollectRoom(ctx context.Context, roomID string) {
	room, err := r.store.GetRoom(ctx, roomID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Reaper failed to look up room %s: %v", roomID, err)
		}
		return
	}

	if room.Mode != models.ModeForever {
		return
	}

	count, err := r.store.CountPresence(ctx, roomID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Reaper failed to count presence in room %s: %v", roomID, err)
		}
		return
	}
	if count > 0 {
		return
	}

	if err := r.store.DeleteRoom(ctx, roomID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Reaper failed to delete room %s: %v", roomID, err)
		}
		return
	}

	log.Printf("Reaped empty forever room %s", roomID)
	if r.rooms != nil {
		r.rooms.notifyUpdate(room)
	}
}

// evictStale removes presence records whose heartbeat stamp is older than
// the staleness window, covering clients that vanished without leaving. An
// eviction that removed anything republishes the room so directory listeners
// see the corrected member count.
func (r *Reaper) evictStale(ctx context.Context, room *models.Room) {
	if r.staleAfter <= 0 {
		return
	}

	presences, err := r.store.ListPresence(ctx, room.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Reaper failed to list presence in room %s: %v", room.ID, err)
		}
		return
	}

	evicted := 0
	cutoff := r.clock.Now().Add(-r.staleAfter)
	for _, p := range presences {
		if !p.StaleAt(cutoff) {
			continue
		}
		if err := r.store.DeletePresence(ctx, room.ID, p.MemberID); err != nil {
			log.Printf("Reaper failed to evict stale member %s from room %s: %v", p.MemberID, room.ID, err)
			continue
		}
		log.Printf("Evicted stale member %s from room %s", p.MemberID, room.ID)
		evicted++
	}

	if evicted > 0 && r.rooms != nil {
		r.rooms.notifyUpdate(room)
	}
}
