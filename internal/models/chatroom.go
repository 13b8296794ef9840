package models

import "time"

type RoomStatus string

const (
	RoomLocked  RoomStatus = "LOCKED"
	RoomActive  RoomStatus = "ACTIVE"
	RoomExpired RoomStatus = "EXPIRED"
)

// RoomKindPaired marks a 1-on-1 room created by the blind pairing engine.
const RoomKindPaired = "paired"

// Slot identifies a participant position inside a paired room.
type Slot int

const (
	SlotA Slot = iota
	SlotB
)

// ChatRoom is the anonymous conversation created alongside a Match.
// User1ID/User2ID are canonically ordered and never change after creation;
// lifecycle code only touches Status, Anonymous and RevealedAt.
type ChatRoom struct {
	// RoomID is the unique identifier for the chat room (UUID).
	RoomID        string     `gorm:"primaryKey" json:"id"`
	InstitutionID string     `gorm:"not null" json:"institution_id"`
	Kind          string     `gorm:"type:varchar(16);not null" json:"kind"`
	User1ID       string     `gorm:"not null;index" json:"-"`
	User2ID       string     `gorm:"not null;index" json:"-"`
	Anonymous     bool       `gorm:"not null" json:"anonymous"`
	Status        RoomStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	MatchID       string     `gorm:"index" json:"-"`
	GateID        string     `json:"-"`
	ExpiresAt     time.Time  `gorm:"not null;index" json:"expires_at"`
	RevealedAt    *time.Time `json:"revealed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CanonicalPair orders two user ids so every pair has exactly one representation.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// HasParticipant reports whether userID is one of the two participants.
func (r *ChatRoom) HasParticipant(userID string) bool {
	return userID != "" && (r.User1ID == userID || r.User2ID == userID)
}

// PartnerOf returns the other participant, or "" if userID is not in the room.
func (r *ChatRoom) PartnerOf(userID string) string {
	switch userID {
	case r.User1ID:
		return r.User2ID
	case r.User2ID:
		return r.User1ID
	}
	return ""
}

// SlotOf returns the opening-move slot owned by userID.
func (r *ChatRoom) SlotOf(userID string) (Slot, bool) {
	switch userID {
	case r.User1ID:
		return SlotA, true
	case r.User2ID:
		return SlotB, true
	}
	return 0, false
}

// EffectiveStatus is the status as of now: a room past its expiry is EXPIRED even
// if the sweep has not persisted that yet.
func (r *ChatRoom) EffectiveStatus(now time.Time) RoomStatus {
	if r.Status != RoomExpired && !now.Before(r.ExpiresAt) {
		return RoomExpired
	}
	return r.Status
}

// IsRevealed reports whether the participants' identities are visible.
func (r *ChatRoom) IsRevealed() bool {
	return !r.Anonymous
}
