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

// OpeningMoveResult is returned by Gate.Submit.
type OpeningMoveResult struct {
	Success   bool `json:"success"`
	Activated bool `json:"activated"`
}

// Gate holds a new room LOCKED until both participants commit an opening move.
type Gate struct {
	*deps
}

// Submit records the caller's opening move. When the second slot fills the room
// becomes ACTIVE in the same locked update.
func (g *Gate) Submit(ctx context.Context, userID, chatID, choice string) (*OpeningMoveResult, error) {
	choice = clip(choice, config.MaxChoiceLength)
	if choice == "" {
		return nil, apperr.ErrChoiceRequired
	}

	var room models.ChatRoom
	activated := false
	err := g.store.MutateRoom(ctx, chatID, func(st *storage.RoomState) error {
		now := g.now()
		slot, ok := st.Room.SlotOf(userID)
		if !ok {
			return apperr.ErrForbidden
		}
		if st.Room.EffectiveStatus(now) != models.RoomLocked {
			return apperr.ErrChatNotLocked
		}
		if st.Gate == nil {
			return apperr.ErrGateNotFound
		}
		if st.Gate.IsExpired(now) {
			return apperr.ErrSessionExpired
		}

		st.Gate.Record(slot, choice)
		if st.Gate.Complete() {
			st.Room.Status = models.RoomActive
			activated = true
		}
		room = st.Room
		return nil
	})
	if err != nil {
		if code := apperr.As(err); code != nil {
			metrics.OpeningMoves.WithLabelValues(code.Code).Inc()
		}
		return nil, err
	}

	if activated {
		metrics.OpeningMoves.WithLabelValues("activated").Inc()
		g.logger.WithFields(logrus.Fields{"chat_id": chatID}).Info("chat unlocked")
		for _, uid := range []string{room.User1ID, room.User2ID} {
			g.notify(ctx, models.Notification{Type: models.NotifyChatActive, UserID: uid, RoomID: chatID})
		}
	} else {
		metrics.OpeningMoves.WithLabelValues("recorded").Inc()
	}
	return &OpeningMoveResult{Success: true, Activated: activated}, nil
}
