package models

import "time"

type MatchStatus string

const (
	MatchPending MatchStatus = "PENDING"
	MatchActive  MatchStatus = "ACTIVE"
	MatchExpired MatchStatus = "EXPIRED"
)

var matchStatusRank = map[MatchStatus]int{
	MatchPending: 0,
	MatchActive:  1,
	MatchExpired: 2,
}

// Match is the historical record of one pairing. UserAID/UserBID are stored in
// canonical order so (A,B) and (B,A) never produce two different records.
type Match struct {
	ID            string      `gorm:"primaryKey" json:"id"`
	UserAID       string      `gorm:"not null;index:idx_match_pair,priority:1" json:"user_a_id"`
	UserBID       string      `gorm:"not null;index:idx_match_pair,priority:2" json:"user_b_id"`
	InstitutionID string      `gorm:"not null" json:"institution_id"`
	Mood          string      `json:"mood"`
	RoomID        string      `gorm:"uniqueIndex" json:"room_id"`
	Status        MatchStatus `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`
	ExpiresAt     time.Time   `json:"expires_at"`
}

// Advance moves the match to status if that is a forward transition.
func (m *Match) Advance(status MatchStatus) bool {
	if matchStatusRank[status] <= matchStatusRank[m.Status] {
		return false
	}
	m.Status = status
	return true
}
