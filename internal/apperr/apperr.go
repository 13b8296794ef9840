// Package apperr defines the typed, user-facing error taxonomy of the pairing engine.
// Every expected failure (missing pool entry, wrong lifecycle state, lost race) is an
// *Error with a Kind, so callers branch on the kind instead of matching strings.
package apperr

import "errors"

// Kind classifies an expected failure.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindInvalidState Kind = "invalid_state"
	KindExpired      Kind = "expired"
	KindConflict     Kind = "conflict"
	KindInvalid      Kind = "invalid"
)

// Error is a recoverable condition surfaced to the client as a typed result.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// New creates a new typed error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// As returns the first *Error in err's chain, or nil.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// Pool
var (
	ErrNotInPool           = New(KindNotFound, "NOT_IN_POOL", "user is not in the pool")
	ErrMoodRequired        = New(KindInvalid, "MOOD_REQUIRED", "mood is required")
	ErrInstitutionRequired = New(KindInvalid, "INSTITUTION_REQUIRED", "institution is required")
	ErrPairLost            = New(KindConflict, "PAIR_LOST", "candidate was paired by someone else")
)

// Conversations
var (
	ErrUserNotFound    = New(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrChatNotFound    = New(KindNotFound, "CHAT_NOT_FOUND", "chat not found")
	ErrGateNotFound    = New(KindNotFound, "OPENING_MOVE_NOT_FOUND", "opening move not found")
	ErrForbidden       = New(KindForbidden, "FORBIDDEN", "not a participant of this chat")
	ErrChatNotLocked   = New(KindInvalidState, "CHAT_NOT_LOCKED", "chat is not locked")
	ErrChatNotActive   = New(KindInvalidState, "CHAT_NOT_ACTIVE", "chat is not active")
	ErrSessionExpired  = New(KindExpired, "SESSION_EXPIRED", "opening move window has expired")
	ErrChoiceRequired  = New(KindInvalid, "CHOICE_REQUIRED", "choice is required")
	ErrGuessRequired   = New(KindInvalid, "GUESS_REQUIRED", "guess is required")
	ErrMessageRequired = New(KindInvalid, "MESSAGE_REQUIRED", "message content is required")
)
