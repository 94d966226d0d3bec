// Package session holds the client-local focus timer. Each client owns one
// Timer per joined room; nothing here is shared between clients, and the
// only thing a timer ever writes remotely is its own heartbeat.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/AmanKajla032004/Aurora-sub000/internal/models"
	"github.com/AmanKajla032004/Aurora-sub000/internal/notify"
	"github.com/AmanKajla032004/Aurora-sub000/internal/service"
	"github.com/jonboulle/clockwork"
)

// State is the local timer state
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateCompleted
)

// String returns the string representation of a timer state
func (s State) String() string {
	return [...]string{"idle", "running", "paused", "completed"}[s]
}

// Transition errors
var (
	ErrAlreadyStarted = errors.New("timer already started")
	ErrNotRunning     = errors.New("timer is not running")
	ErrNotPaused      = errors.New("timer is not paused")
)

// Snapshot is what the UI renders for one client's session
type Snapshot struct {
	Mode models.RoomMode
	// Seconds is the remaining time for a pomodoro, elapsed time otherwise
	Seconds int
	Running bool
}

// Timer drives one member's focus clock for one room. Pomodoro rooms count
// down from the room's configured duration, session rooms count up without
// bound. The countdown is anchored to a start timestamp and recomputed from
// the wall clock on every tick, so suspended tabs or coalesced ticks cannot
// make it drift.
//
// Every member runs an independent clock; the shared room only fixes the
// configured duration, not a synchronized countdown.
type Timer struct {
	clock    clockwork.Clock
	presence *service.PresenceService
	sink     notify.Sink
	roomID   string
	memberID string
	mode     models.RoomMode
	budget   time.Duration // pomodoro countdown length
	interval time.Duration // heartbeat flush cadence

	mu        sync.Mutex
	state     State
	startedAt time.Time     // anchor of the current running stretch
	banked    time.Duration // time accumulated before the current stretch
	ticking   bool
	stopCh    chan struct{}
}

// New creates a timer for a member's stay in a room. heartbeatInterval sets
// the tick and heartbeat cadence; zero or negative falls back to one second.
// Forever rooms have no timer at all: New returns nil and callers simply
// skip timer wiring.
func New(room *models.Room, member models.Member, presence *service.PresenceService, sink notify.Sink, clock clockwork.Clock, heartbeatInterval time.Duration) *Timer {
	if room.Mode == models.ModeForever {
		return nil
	}

	if heartbeatInterval <= 0 {
		heartbeatInterval = time.Second
	}

	return &Timer{
		clock:    clock,
		presence: presence,
		sink:     sink,
		roomID:   room.ID,
		memberID: member.ID,
		mode:     room.Mode,
		budget:   time.Duration(room.DurationMinutes) * time.Minute,
		interval: heartbeatInterval,
		state:    StateIdle,
		stopCh:   make(chan struct{}),
	}
}

// Start begins ticking. The tick loop ends when Stop is called or the
// context is cancelled.
func (t *Timer) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateIdle {
		return ErrAlreadyStarted
	}

	t.state = StateRunning
	t.startedAt = t.clock.Now()
	t.banked = 0

	if !t.ticking {
		// A fresh channel each time: the previous one is closed once Stop
		// has run
		t.stopCh = make(chan struct{})
		t.ticking = true
		go t.loop(ctx, t.stopCh)
	}

	return nil
}

// Pause freezes the clock and suspends heartbeat flushing
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateRunning {
		return ErrNotRunning
	}

	t.banked += t.clock.Now().Sub(t.startedAt)
	t.state = StatePaused
	return nil
}

// Resume continues a paused clock from where it stopped
func (t *Timer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StatePaused {
		return ErrNotPaused
	}

	t.startedAt = t.clock.Now()
	t.state = StateRunning
	return nil
}

// Reset re-initializes the clock. A pomodoro returns to idle with the full
// countdown restored and must be started again; a session clock restarts its
// baseline in place, without the member leaving the room.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.banked = 0
	t.startedAt = t.clock.Now()

	if t.mode == models.ModePomodoro {
		t.state = StateIdle
	}
}

// Stop synchronously ends the tick loop. It is called from the host's
// unmount hook before the member leaves the room, and is safe to call more
// than once.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ticking {
		close(t.stopCh)
		t.ticking = false
	}
	if t.state == StateRunning || t.state == StatePaused {
		t.state = StateIdle
	}
}

// State returns the current timer state
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Snapshot returns the values the UI renders
func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := t.elapsedLocked()
	seconds := int(elapsed / time.Second)
	if t.mode == models.ModePomodoro {
		remaining := t.budget - elapsed
		if remaining < 0 {
			remaining = 0
		}
		seconds = int(remaining / time.Second)
	}

	return Snapshot{
		Mode:    t.mode,
		Seconds: seconds,
		Running: t.state == StateRunning,
	}
}

// elapsedLocked recomputes total elapsed time from the anchor; callers hold
// the lock
func (t *Timer) elapsedLocked() time.Duration {
	elapsed := t.banked
	if t.state == StateRunning {
		elapsed += t.clock.Now().Sub(t.startedAt)
	}
	if t.mode == models.ModePomodoro && elapsed > t.budget {
		elapsed = t.budget
	}
	return elapsed
}

// loop ticks at the heartbeat cadence until stopped
func (t *Timer) loop(ctx context.Context, stopCh chan struct{}) {
	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			t.tick(ctx)
		}
	}
}

// tick advances the state machine and flushes a heartbeat. While paused or
// idle it does nothing, which also suspends heartbeat writes.
func (t *Timer) tick(ctx context.Context) {
	t.mu.Lock()

	if t.state != StateRunning {
		t.mu.Unlock()
		return
	}

	elapsed := t.elapsedLocked()
	completed := false
	if t.mode == models.ModePomodoro && elapsed >= t.budget {
		// The countdown hit zero; the state change below guarantees the
		// completion event fires at most once
		t.state = StateCompleted
		t.banked = t.budget
		completed = true
	}

	seconds := int(elapsed / time.Second)
	t.mu.Unlock()

	// Fire-and-forget: a failed heartbeat is dropped and the next tick
	// naturally carries a fresher value
	if err := t.presence.RecordHeartbeat(ctx, t.roomID, t.memberID, seconds); err != nil {
		log.Printf("Heartbeat for member %s in room %s dropped: %v", t.memberID, t.roomID, err)
	}

	if completed {
		t.sink.SessionCompleted(t.roomID, t.memberID)
	}
}
