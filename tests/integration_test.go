package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmanKajla032004/Aurora-sub000/internal/models"
	"github.com/AmanKajla032004/Aurora-sub000/internal/notify"
	"github.com/AmanKajla032004/Aurora-sub000/internal/service"
	"github.com/AmanKajla032004/Aurora-sub000/internal/session"
	"github.com/AmanKajla032004/Aurora-sub000/internal/store/memory"
)

// harness wires the full core together over the in-memory store the way
// cmd/focusd does over the configured store
type harness struct {
	clock     *clockwork.FakeClock
	store     *memory.Store
	rooms     *service.RoomService
	presence  *service.PresenceService
	directory *service.Directory
	reaper    *service.Reaper
	sink      *notify.Recorder
}

func newHarness() *harness {
	clock := clockwork.NewFakeClock()
	st := memory.NewStore()
	sink := notify.NewRecorder()

	rooms := service.NewRoomService(st, sink, clock)
	presence := service.NewPresenceService(st, clock)
	directory := service.NewDirectory(st, presence)
	reaper := service.NewReaper(st, rooms, clock, 30*time.Second, 90*time.Second)
	rooms.AttachReaper(reaper)

	return &harness{
		clock:     clock,
		store:     st,
		rooms:     rooms,
		presence:  presence,
		directory: directory,
		reaper:    reaper,
		sink:      sink,
	}
}

func (h *harness) memberCount(t *testing.T, roomID string) int {
	listing, err := h.directory.List(context.Background())
	require.NoError(t, err)
	for _, entry := range listing {
		if entry.Room.ID == roomID {
			return entry.MemberCount
		}
	}
	return -1 // room not listed
}

// A forever room lives exactly as long as someone is inside it.
func TestForeverRoomLifecycle(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	memberX := models.Member{ID: "memberX", DisplayName: "Xena"}
	memberY := models.Member{ID: "memberY", DisplayName: "Yuri"}

	// X creates "Study Hall" and is implicitly inside it
	room, _, err := h.rooms.CreateRoom(ctx, memberX, "Study Hall", models.ModeForever, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, h.memberCount(t, room.ID))

	// Y joins
	_, err = h.rooms.JoinRoom(ctx, room.ID, memberY, "")
	require.NoError(t, err)
	assert.Equal(t, 2, h.memberCount(t, room.ID))

	// X leaves; the room persists with Y inside
	require.NoError(t, h.rooms.LeaveRoom(ctx, room.ID, memberX.ID))
	assert.Equal(t, 1, h.memberCount(t, room.ID))

	// The last leave empties the room and the collector takes it
	require.NoError(t, h.rooms.LeaveRoom(ctx, room.ID, memberY.ID))

	listing, err := h.directory.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listing, "the reaped room must no longer be listed")
}

// A passkey-gated pomodoro: a wrong key is rejected without side effects, the
// right key admits the member, and the 25-minute countdown completes exactly
// once after 1500 one-second ticks.
func TestPomodoroRoomWorkflow(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	owner := models.Member{ID: "owner1", DisplayName: "Olive"}
	memberZ := models.Member{ID: "memberZ", DisplayName: "Zoe"}

	room, _, err := h.rooms.CreateRoom(ctx, owner, "Deep Work", models.ModePomodoro, 25, "abc123")
	require.NoError(t, err)
	require.NoError(t, h.rooms.LeaveRoom(ctx, room.ID, owner.ID))
	require.Equal(t, 0, h.memberCount(t, room.ID))

	_, err = h.rooms.JoinRoom(ctx, room.ID, memberZ, "wrong")
	assert.ErrorIs(t, err, models.ErrAccessDenied)
	assert.Equal(t, 0, h.memberCount(t, room.ID), "a rejected join writes nothing")

	_, err = h.rooms.JoinRoom(ctx, room.ID, memberZ, "abc123")
	require.NoError(t, err)
	assert.Equal(t, 1, h.memberCount(t, room.ID))

	// The empty pomodoro room was never a reaper candidate
	h.reaper.Sweep(ctx)
	_, err = h.store.GetRoom(ctx, room.ID)
	require.NoError(t, err)

	timer := session.New(room, memberZ, h.presence, h.sink, h.clock, time.Second)
	require.NotNil(t, timer)
	require.NoError(t, timer.Start(ctx))
	defer timer.Stop()
	h.clock.BlockUntil(1)

	assert.Equal(t, 25*60, timer.Snapshot().Seconds, "local countdown starts at 25:00")

	for i := 0; i < 1500; i++ {
		h.clock.Advance(time.Second)
	}

	assert.Eventually(t, func() bool {
		return timer.State() == session.StateCompleted
	}, time.Second, 10*time.Millisecond)

	completed := h.sink.Completed()
	require.Len(t, completed, 1, "exactly one session complete event")
	assert.Equal(t, room.ID, completed[0].RoomID)
	assert.Equal(t, memberZ.ID, completed[0].MemberID)
}

// Concurrent joins by different members are commutative: both land, and an
// independent subscriber eventually observes both.
func TestConcurrentJoinsConverge(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	owner := models.Member{ID: "owner1", DisplayName: "Olive"}
	room, _, err := h.rooms.CreateRoom(ctx, owner, "Open Focus", models.ModeSession, 0, "")
	require.NoError(t, err)

	var mu sync.Mutex
	seen := map[string]bool{}
	cancel, err := h.presence.Subscribe(ctx, room.ID, func(presences []*models.Presence) {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range presences {
			seen[p.MemberID] = true
		}
	})
	require.NoError(t, err)
	defer cancel()

	var wg sync.WaitGroup
	for _, id := range []string{"memberA", "memberB"} {
		wg.Add(1)
		go func(memberID string) {
			defer wg.Done()
			_, err := h.rooms.JoinRoom(ctx, room.ID, models.Member{ID: memberID}, "")
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 3, h.memberCount(t, room.ID), "no lost update between concurrent joins")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen["memberA"] && seen["memberB"]
	}, time.Second, 10*time.Millisecond)
}

// A client that dies without leaving stops heartbeating; the sweep evicts
// its presence and then collects the emptied forever room.
func TestAbandonedRoomIsEventuallyReaped(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	owner := models.Member{ID: "owner1", DisplayName: "Olive"}
	_, _, err := h.rooms.CreateRoom(ctx, owner, "Study Hall", models.ModeForever, 0, "")
	require.NoError(t, err)

	// Nothing heartbeats for well past the staleness window
	h.clock.Advance(5 * time.Minute)
	h.reaper.Sweep(ctx)

	listing, err := h.directory.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listing)
}
