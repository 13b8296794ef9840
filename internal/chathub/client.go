package chathub

import "blindpair/backend/internal/models"

// Client is one live connection of a user. The hub only pushes notifications to it.
type Client interface {
	// GetUserID returns the user the connection was authenticated as.
	GetUserID() string
	// GetSendChannel returns the channel the hub writes this client's notifications to.
	GetSendChannel() chan<- models.Notification
	// Run starts the client's pumps.
	Run()
	// Close releases the connection. It must be safe to call more than once.
	Close()
}
