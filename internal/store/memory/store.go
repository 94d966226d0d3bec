// Package memory provides an in-memory implementation of the store interface
package memory

import (
	"context"
	"sync"

	"github.com/AmanKajla032004/Aurora-sub000/internal/models"
	"github.com/AmanKajla032004/Aurora-sub000/internal/store"
)

// roomState holds a room together with its presence records, keyed by member ID
type roomState struct {
	room     models.Room
	presence map[string]models.Presence
}

// roomDelivery orders watcher notification for one room. Snapshots are
// computed under the store lock but delivered outside it, so two racing
// mutators could otherwise hand a watcher the older snapshot last.
type roomDelivery struct {
	next uint64 // commit sequence of the latest mutation; guarded by Store.mu

	mu       sync.Mutex
	lastSent uint64
}

// Store implements the store interface with in-memory storage.
// Presence watchers are notified synchronously after each mutation with a
// copy of the full membership, so callbacks never observe the internal maps.
// Each snapshot carries the commit sequence of the mutation that produced it,
// and delivery drops any snapshot older than one already sent.
type Store struct {
	mu         sync.RWMutex
	rooms      map[string]*roomState
	watchers   map[string]map[int]store.PresenceSnapshot
	deliveries map[string]*roomDelivery
	nextID     int
}

// NewStore creates a new in-memory store
func NewStore() *Store {
	return &Store{
		rooms:      make(map[string]*roomState),
		watchers:   make(map[string]map[int]store.PresenceSnapshot),
		deliveries: make(map[string]*roomDelivery),
	}
}

// SaveRoom inserts or updates a room
func (s *Store) SaveRoom(ctx context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.rooms[room.ID]
	if !exists {
		s.rooms[room.ID] = &roomState{
			room:     *room,
			presence: make(map[string]models.Presence),
		}
		return nil
	}

	state.room = *room
	return nil
}

// GetRoom retrieves a room by ID
func (s *Store) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.rooms[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	room := state.room
	return &room, nil
}

// ListRooms returns all rooms
func (s *Store) ListRooms(ctx context.Context) ([]*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*models.Room, 0, len(s.rooms))
	for _, state := range s.rooms {
		room := state.room
		rooms = append(rooms, &room)
	}

	return rooms, nil
}

// DeleteRoom removes a room and all its presence records
func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()

	_, ok := s.rooms[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}

	delete(s.rooms, id)

	// Watchers of a deleted room see the empty membership once
	fns := s.watcherFuncs(id)
	d, seq := s.commitLocked(id)
	s.mu.Unlock()

	notify(d, seq, fns, []*models.Presence{})
	return nil
}

// SavePresence inserts or replaces the presence record for (room, member)
func (s *Store) SavePresence(ctx context.Context, presence *models.Presence) error {
	s.mu.Lock()

	state, ok := s.rooms[presence.RoomID]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}

	state.presence[presence.MemberID] = *presence

	fns := s.watcherFuncs(presence.RoomID)
	snapshot := snapshotLocked(state)
	d, seq := s.commitLocked(presence.RoomID)
	s.mu.Unlock()

	notify(d, seq, fns, snapshot)
	return nil
}

// GetPresence retrieves the presence record for (room, member)
func (s *Store) GetPresence(ctx context.Context, roomID, memberID string) (*models.Presence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.rooms[roomID]
	if !ok {
		return nil, store.ErrNotFound
	}

	p, ok := state.presence[memberID]
	if !ok {
		return nil, store.ErrNotFound
	}

	return &p, nil
}

// ListPresence returns all presence records in a room
func (s *Store) ListPresence(ctx context.Context, roomID string) ([]*models.Presence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.rooms[roomID]
	if !ok {
		return nil, store.ErrNotFound
	}

	return snapshotLocked(state), nil
}

// CountPresence counts the presence records in a room
func (s *Store) CountPresence(ctx context.Context, roomID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.rooms[roomID]
	if !ok {
		return 0, store.ErrNotFound
	}

	return len(state.presence), nil
}

// DeletePresence removes the presence record for (room, member).
// Removing an absent record, or a record of a vanished room, is a no-op.
func (s *Store) DeletePresence(ctx context.Context, roomID, memberID string) error {
	s.mu.Lock()

	state, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return nil
	}

	if _, ok := state.presence[memberID]; !ok {
		s.mu.Unlock()
		return nil
	}

	delete(state.presence, memberID)

	fns := s.watcherFuncs(roomID)
	snapshot := snapshotLocked(state)
	d, seq := s.commitLocked(roomID)
	s.mu.Unlock()

	notify(d, seq, fns, snapshot)
	return nil
}

// WatchPresence registers fn for presence snapshots of a room. The current
// membership is delivered immediately, then again after every change.
func (s *Store) WatchPresence(ctx context.Context, roomID string, fn store.PresenceSnapshot) (func(), error) {
	s.mu.Lock()

	if s.watchers[roomID] == nil {
		s.watchers[roomID] = make(map[int]store.PresenceSnapshot)
	}
	id := s.nextID
	s.nextID++
	s.watchers[roomID][id] = fn

	var initial []*models.Presence
	if state, ok := s.rooms[roomID]; ok {
		initial = snapshotLocked(state)
	} else {
		initial = []*models.Presence{}
	}
	d := s.deliveryLocked(roomID)
	seq := d.next
	s.mu.Unlock()

	// Skip the initial snapshot only when a strictly newer commit already
	// reached this watcher through the regular delivery path
	d.mu.Lock()
	if d.lastSent <= seq {
		fn(initial)
	}
	d.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.watchers[roomID], id)
		})
	}
	return cancel, nil
}

// deliveryLocked returns the delivery state for a room, creating it on first
// use; callers hold the lock
func (s *Store) deliveryLocked(roomID string) *roomDelivery {
	d := s.deliveries[roomID]
	if d == nil {
		d = &roomDelivery{}
		s.deliveries[roomID] = d
	}
	return d
}

// commitLocked assigns the next commit sequence for a room's mutation;
// callers hold the lock
func (s *Store) commitLocked(roomID string) (*roomDelivery, uint64) {
	d := s.deliveryLocked(roomID)
	d.next++
	return d, d.next
}

// watcherFuncs copies the watcher list for a room; callers hold the lock
func (s *Store) watcherFuncs(roomID string) []store.PresenceSnapshot {
	fns := make([]store.PresenceSnapshot, 0, len(s.watchers[roomID]))
	for _, fn := range s.watchers[roomID] {
		fns = append(fns, fn)
	}
	return fns
}

// snapshotLocked copies the full membership of a room; callers hold the lock
func snapshotLocked(state *roomState) []*models.Presence {
	snapshot := make([]*models.Presence, 0, len(state.presence))
	for _, p := range state.presence {
		copied := p
		snapshot = append(snapshot, &copied)
	}
	return snapshot
}

// notify delivers a committed snapshot to each watcher outside the store
// lock. A snapshot that lost the race to a newer commit is dropped, so the
// last snapshot a watcher receives always reflects the latest committed
// state.
func notify(d *roomDelivery, seq uint64, fns []store.PresenceSnapshot, snapshot []*models.Presence) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if seq <= d.lastSent {
		return
	}
	d.lastSent = seq

	for _, fn := range fns {
		fn(snapshot)
	}
}
