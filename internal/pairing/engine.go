package pairing

import (
	"blindpair/backend/internal/apperr"
	"blindpair/backend/internal/metrics"
	"blindpair/backend/internal/models"
	"blindpair/backend/internal/storage"
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MatchResult is the outcome of one TryMatch call.
type MatchResult struct {
	Matched bool   `json:"matched"`
	ChatID  string `json:"chatId,omitempty"`
}

// Engine pairs a pool member with a compatible waiting user.
type Engine struct {
	*deps
	conversations *Conversations
}

// TryMatch looks for the oldest compatible entry and claims both entries atomically.
// A lost race moves on to the next candidate, up to the configured attempt count.
func (e *Engine) TryMatch(ctx context.Context, userID string) (*MatchResult, error) {
	now := e.now()
	self, err := e.store.GetPoolEntry(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if self == nil {
		metrics.MatchAttempts.WithLabelValues("not_in_pool").Inc()
		return nil, apperr.ErrNotInPool
	}

	attempts := e.cfg.ClaimAttempts
	if attempts < 1 {
		attempts = 1
	}
	exclude := []string{userID}

	for i := 0; i < attempts; i++ {
		candidate, err := e.store.FindPoolCandidate(ctx, self, exclude, now)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			metrics.MatchAttempts.WithLabelValues("no_candidate").Inc()
			return &MatchResult{Matched: false}, nil
		}

		p := e.newPairing(self, candidate)
		err = e.store.ClaimPair(ctx, p, now)
		if err == nil {
			metrics.MatchAttempts.WithLabelValues("matched").Inc()
			e.logger.WithFields(logrus.Fields{
				"chat_id": p.Room.RoomID,
				"mood":    self.Mood,
			}).Info("users paired")
			e.announce(ctx, p)
			return &MatchResult{Matched: true, ChatID: p.Room.RoomID}, nil
		}
		if !errors.Is(err, apperr.ErrPairLost) {
			return nil, err
		}

		metrics.MatchConflicts.Inc()
		// Someone else may have claimed the caller instead.
		now = e.now()
		self, err = e.store.GetPoolEntry(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		if self == nil {
			return nil, apperr.ErrNotInPool
		}
		exclude = append(exclude, candidate.UserID)
	}

	metrics.MatchAttempts.WithLabelValues("conflict").Inc()
	return &MatchResult{Matched: false}, nil
}

func (e *Engine) newPairing(self, candidate *models.PoolEntry) *storage.Pairing {
	now := e.now()
	a, b := models.CanonicalPair(self.UserID, candidate.UserID)
	matchID := uuid.New().String()
	roomID := uuid.New().String()
	gateID := uuid.New().String()
	expires := now.Add(e.cfg.ChatTTL)

	return &storage.Pairing{
		UserAID: self.UserID,
		UserBID: candidate.UserID,
		Match: models.Match{
			ID:            matchID,
			UserAID:       a,
			UserBID:       b,
			InstitutionID: self.InstitutionID,
			Mood:          self.Mood,
			RoomID:        roomID,
			Status:        models.MatchActive,
			ExpiresAt:     expires,
		},
		Room: models.ChatRoom{
			RoomID:        roomID,
			InstitutionID: self.InstitutionID,
			Kind:          models.RoomKindPaired,
			User1ID:       a,
			User2ID:       b,
			Anonymous:     true,
			Status:        models.RoomLocked,
			MatchID:       matchID,
			GateID:        gateID,
			ExpiresAt:     expires,
		},
		Gate: models.OpeningMove{
			ID:        gateID,
			RoomID:    roomID,
			ExpiresAt: now.Add(e.cfg.GateTTL),
		},
	}
}

func (e *Engine) announce(ctx context.Context, p *storage.Pairing) {
	for _, uid := range []string{p.UserAID, p.UserBID} {
		e.notify(ctx, models.Notification{
			Type:   models.NotifyMatchFound,
			UserID: uid,
			RoomID: p.Room.RoomID,
			Mood:   p.Match.Mood,
		})
	}
}

// Current returns the caller's live conversation, or nil when there is none.
func (e *Engine) Current(ctx context.Context, userID string) (*ChatView, error) {
	room, err := e.store.GetCurrentRoomForUser(ctx, userID, e.now())
	if err != nil || room == nil {
		return nil, err
	}
	return e.conversations.Get(ctx, userID, room.RoomID)
}
