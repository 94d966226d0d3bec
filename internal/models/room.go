package models

import (
	"fmt"
	"strings"
	"time"
)

// RoomMode determines how members in a room track their focus time
type RoomMode int

const (
	// ModePomodoro rooms give every member an independent countdown of the
	// room's configured duration
	ModePomodoro RoomMode = iota
	// ModeSession rooms give every member an open-ended elapsed-time clock
	ModeSession
	// ModeForever rooms have no timer at all; they exist only while occupied
	ModeForever
)

// String returns the string representation of a room mode
func (m RoomMode) String() string {
	switch m {
	case ModePomodoro:
		return "pomodoro"
	case ModeSession:
		return "session"
	case ModeForever:
		return "forever"
	}
	return "unknown"
}

// ParseRoomMode converts a mode string to a RoomMode
func ParseRoomMode(s string) (RoomMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pomodoro":
		return ModePomodoro, nil
	case "session":
		return ModeSession, nil
	case "forever":
		return ModeForever, nil
	}
	return 0, &ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", s)}
}

// valid reports whether the mode is one of the three known values
func (m RoomMode) valid() bool {
	return m == ModePomodoro || m == ModeSession || m == ModeForever
}

// Room represents a shared focus room
type Room struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Mode            RoomMode  `json:"mode"`
	DurationMinutes int       `json:"duration_minutes,omitempty"` // meaningful only for pomodoro rooms
	Passkey         string    `json:"passkey,omitempty"`          // empty means open access
	OwnerID         string    `json:"owner_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// Validate checks the room's fields before it is ever persisted.
// It returns a *ValidationError describing the first problem found.
func (r *Room) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if !r.Mode.valid() {
		return &ValidationError{Field: "mode", Message: "must be pomodoro, session or forever"}
	}
	if r.Mode == ModePomodoro && r.DurationMinutes <= 0 {
		return &ValidationError{Field: "duration_minutes", Message: "must be a positive number of minutes"}
	}
	return nil
}

// IsOpen returns true if the room requires no passkey to join
func (r *Room) IsOpen() bool {
	return r.Passkey == ""
}

// CheckPasskey compares a supplied passkey against the room's.
// Comparison is exact-match and case-sensitive; open rooms accept anything.
func (r *Room) CheckPasskey(supplied string) bool {
	if r.IsOpen() {
		return true
	}
	return r.Passkey == supplied
}
