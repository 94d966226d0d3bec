package models

import (
	"math/rand"
	"time"
)

// ColorPalette is the fixed set of color tokens a member can be assigned
// when joining a room. Tokens are resolved to actual colors by the UI.
var ColorPalette = [8]string{
	"amber", "coral", "emerald", "indigo",
	"rose", "sky", "teal", "violet",
}

// RandomColorToken picks a palette token pseudo-randomly
func RandomColorToken() string {
	return ColorPalette[rand.Intn(len(ColorPalette))]
}

// ValidColorToken reports whether a token is part of the palette
func ValidColorToken(token string) bool {
	for _, c := range ColorPalette {
		if c == token {
			return true
		}
	}
	return false
}

// Member identifies a user of the focus rooms. Identity resolution happens
// upstream; the core only ever sees the stable ID and a display name.
type Member struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Presence is the ephemeral record marking a member as currently inside a
// room. There is at most one record per (room, member) pair, and only the
// owning member ever writes it.
type Presence struct {
	RoomID         string    `json:"room_id"`
	MemberID       string    `json:"member_id"`
	DisplayName    string    `json:"display_name"`
	ColorToken     string    `json:"color_token"`
	JoinedAt       time.Time `json:"joined_at"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	Active         bool      `json:"active"`
	// UpdatedAt is refreshed by every heartbeat and lets the reaper spot
	// records left behind by clients that vanished without leaving
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPresence builds a fresh presence record for a member joining a room.
// A rejoin goes through here too, so elapsed time always restarts at zero.
func NewPresence(roomID string, member Member, now time.Time) *Presence {
	return &Presence{
		RoomID:         roomID,
		MemberID:       member.ID,
		DisplayName:    member.DisplayName,
		ColorToken:     RandomColorToken(),
		JoinedAt:       now,
		ElapsedSeconds: 0,
		Active:         true,
		UpdatedAt:      now,
	}
}

// StaleAt reports whether the record has not been refreshed since the cutoff
func (p *Presence) StaleAt(cutoff time.Time) bool {
	return p.UpdatedAt.Before(cutoff)
}
