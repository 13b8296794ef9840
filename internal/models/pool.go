package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxNoteLength is the maximum number of runes kept from a pool note.
const MaxNoteLength = 80

// PoolEntry is a user's advertised intent in the blind pool. There is at most one
// entry per user; it stops being a match candidate as soon as ExpiresAt passes.
type PoolEntry struct {
	UserID        string    `gorm:"primaryKey" json:"user_id"`
	InstitutionID string    `gorm:"not null;index:idx_pool_lookup,priority:1" json:"institution_id"`
	Mood          string    `gorm:"not null;index:idx_pool_lookup,priority:2" json:"mood"`
	Note          string    `gorm:"type:varchar(80)" json:"description,omitempty"`
	JoinedAt      time.Time `gorm:"not null;index:idx_pool_lookup,priority:3" json:"joined_at"`
	ExpiresAt     time.Time `gorm:"not null;index" json:"expires_at"`
}

// IsLive reports whether the entry can still be matched at now.
func (e *PoolEntry) IsLive(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// NormalizeMood turns a free-form mood tag into its comparable form.
func NormalizeMood(mood string) string {
	return strings.ToLower(strings.Join(strings.Fields(mood), " "))
}

// TrimNote trims surrounding whitespace and truncates the note to MaxNoteLength runes.
func TrimNote(note string) string {
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) <= MaxNoteLength {
		return note
	}
	return string([]rune(note)[:MaxNoteLength])
}
