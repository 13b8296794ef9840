package models

import "time"

// Notification types delivered through the notification sink.
const (
	NotifyMatchFound   = "match_found"
	NotifyMoodCompany  = "mood_company"
	NotifyChatActive   = "chat_active"
	NotifyChatRevealed = "chat_revealed"
	NotifyChatMessage  = "chat_message"
	NotifyChatEnded    = "chat_ended"
)

// Notification is a fire-and-forget event addressed to one user.
type Notification struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	RoomID    string    `json:"chat_id,omitempty"`
	Mood      string    `json:"mood,omitempty"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
