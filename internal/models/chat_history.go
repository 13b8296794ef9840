package models

import "gorm.io/gorm"

// ChatHistory represents a saved chat message in the PostgreSQL database.
// The embedded gorm.Model provides ID, CreatedAt, UpdatedAt, and DeletedAt fields,
// which serve as the message ID and timestamps. Messages are append-only.
type ChatHistory struct {
	gorm.Model

	// RoomID is the identifier of the chat room where the message was sent.
	RoomID string `gorm:"type:uuid;not null;index:idx_room_msg"`
	// SenderID is the user who sent the message. It is never exposed while the room is anonymous.
	SenderID string `gorm:"type:text;not null;index:idx_room_msg"`
	// Content is the text of the message.
	Content string `gorm:"type:text;not null"`
}
