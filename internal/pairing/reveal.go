package pairing

import (
	"blindpair/backend/internal/apperr"
	"blindpair/backend/internal/config"
	"blindpair/backend/internal/metrics"
	"blindpair/backend/internal/models"
	"blindpair/backend/internal/storage"
	"context"

	"github.com/sirupsen/logrus"
)

// GuessResult is returned by Reveal.SubmitGuess.
type GuessResult struct {
	GuessSubmitted bool      `json:"guessSubmitted"`
	BothGuessed    bool      `json:"bothGuessed"`
	Revealed       bool      `json:"revealed"`
	Chat           *ChatView `json:"chat,omitempty"`
}

// RevealStatus is the read-only reveal projection. Users is nil while anonymous.
type RevealStatus struct {
	Revealed bool              `json:"revealed"`
	Users    []models.Identity `json:"users"`
}

// Reveal runs the mutual guess protocol of an ACTIVE room.
type Reveal struct {
	*deps
	comparer      IdentityComparer
	conversations *Conversations
}

// SubmitGuess stores the caller's guess about the partner and re-evaluates both
// guesses. The room is revealed only when both are correct at the same time.
func (r *Reveal) SubmitGuess(ctx context.Context, userID, chatID, guess string) (*GuessResult, error) {
	guess = clip(guess, config.MaxGuessLength)
	if guess == "" {
		return nil, apperr.ErrGuessRequired
	}

	room, err := r.store.GetRoomByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, apperr.ErrForbidden
	}
	user1, err := r.store.GetUserByID(ctx, room.User1ID)
	if err != nil {
		return nil, err
	}
	user2, err := r.store.GetUserByID(ctx, room.User2ID)
	if err != nil {
		return nil, err
	}

	res := &GuessResult{}
	newlyRevealed := false
	err = r.store.MutateRoom(ctx, chatID, func(st *storage.RoomState) error {
		if st.Room.IsRevealed() {
			res.BothGuessed = true
			res.Revealed = true
			return storage.ErrSkipWrite
		}
		now := r.now()
		if st.Room.EffectiveStatus(now) != models.RoomActive {
			return apperr.ErrChatNotActive
		}

		st.SetGuess(userID, guess, now)
		res.GuessSubmitted = true

		g1, g2 := st.GuessOf(st.Room.User1ID), st.GuessOf(st.Room.User2ID)
		if g1 == nil || g2 == nil {
			return nil
		}
		res.BothGuessed = true
		if r.comparer.Matches(g1.Text, user2) && r.comparer.Matches(g2.Text, user1) {
			st.Room.Anonymous = false
			st.Room.RevealedAt = &now
			res.Revealed = true
			newlyRevealed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case newlyRevealed:
		metrics.Guesses.WithLabelValues("revealed").Inc()
		r.logger.WithFields(logrus.Fields{"chat_id": chatID}).Info("chat revealed")
		for _, uid := range []string{room.User1ID, room.User2ID} {
			r.notify(ctx, models.Notification{Type: models.NotifyChatRevealed, UserID: uid, RoomID: chatID})
		}
	case res.GuessSubmitted:
		metrics.Guesses.WithLabelValues("recorded").Inc()
	}

	res.Chat, err = r.conversations.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Status reports whether the room is revealed and, if so, both identities.
func (r *Reveal) Status(ctx context.Context, userID, chatID string) (*RevealStatus, error) {
	room, err := r.store.GetRoomByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, apperr.ErrForbidden
	}
	if !room.IsRevealed() {
		return &RevealStatus{Revealed: false}, nil
	}
	users, err := r.conversations.identities(ctx, room)
	if err != nil {
		return nil, err
	}
	return &RevealStatus{Revealed: true, Users: users}, nil
}
