package models

import "time"

// Guess is what UserID believes the other participant of RoomID is called.
// Each user owns one guess per room; resubmitting overwrites it.
type Guess struct {
	RoomID    string    `gorm:"primaryKey" json:"chat_id"`
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	Text      string    `gorm:"type:text;not null" json:"guess"`
	UpdatedAt time.Time `json:"updated_at"`
}
