package pairing

import (
	"blindpair/backend/internal/apperr"
	"blindpair/backend/internal/config"
	"blindpair/backend/internal/models"
	"blindpair/backend/internal/storage"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// ChatView is a room as one participant sees it.
type ChatView struct {
	ID          string            `json:"id"`
	Status      models.RoomStatus `json:"status"`
	Anonymous   bool              `json:"anonymous"`
	ExpiresAt   time.Time         `json:"expires_at"`
	RevealedAt  *time.Time        `json:"revealed_at,omitempty"`
	OpeningMove *OpeningMoveView  `json:"opening_move,omitempty"`
	Users       []models.Identity `json:"users,omitempty"`
}

// OpeningMoveView hides the partner's choice until the room is unlocked.
type OpeningMoveView struct {
	MyChoice         string    `json:"my_choice,omitempty"`
	Submitted        bool      `json:"submitted"`
	PartnerSubmitted bool      `json:"partner_submitted"`
	PartnerChoice    string    `json:"partner_choice,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// MessageView is one message. The sender is only named after a reveal.
type MessageView struct {
	ID        uint      `json:"id"`
	Mine      bool      `json:"mine"`
	SenderID  string    `json:"sender_id,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversations serves participant reads and messaging of paired rooms.
type Conversations struct {
	*deps
}

// room loads chatID and checks that userID takes part in it.
func (c *Conversations) room(ctx context.Context, userID, chatID string) (*models.ChatRoom, error) {
	room, err := c.store.GetRoomByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, apperr.ErrForbidden
	}
	return room, nil
}

// Get returns the caller's view of chatID.
func (c *Conversations) Get(ctx context.Context, userID, chatID string) (*ChatView, error) {
	room, err := c.room(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	status := room.EffectiveStatus(c.now())
	view := &ChatView{
		ID:         room.RoomID,
		Status:     status,
		Anonymous:  room.Anonymous,
		ExpiresAt:  room.ExpiresAt,
		RevealedAt: room.RevealedAt,
	}

	gate, err := c.store.GetOpeningMove(ctx, chatID)
	switch {
	case errors.Is(err, apperr.ErrGateNotFound):
	case err != nil:
		return nil, err
	default:
		view.OpeningMove = openingMoveView(room, gate, userID, status)
	}

	if room.IsRevealed() {
		if view.Users, err = c.identities(ctx, room); err != nil {
			return nil, err
		}
	}
	return view, nil
}

func openingMoveView(room *models.ChatRoom, gate *models.OpeningMove, userID string, status models.RoomStatus) *OpeningMoveView {
	mine, _ := room.SlotOf(userID)
	theirs, _ := room.SlotOf(room.PartnerOf(userID))
	v := &OpeningMoveView{ExpiresAt: gate.ExpiresAt}
	v.MyChoice, v.Submitted = gate.Choice(mine)
	partner, ok := gate.Choice(theirs)
	v.PartnerSubmitted = ok
	if status != models.RoomLocked {
		v.PartnerChoice = partner
	}
	return v
}

func (c *Conversations) identities(ctx context.Context, room *models.ChatRoom) ([]models.Identity, error) {
	users := make([]models.Identity, 0, 2)
	for _, uid := range []string{room.User1ID, room.User2ID} {
		u, err := c.store.GetUserByID(ctx, uid)
		if err != nil {
			return nil, err
		}
		users = append(users, u.Identity())
	}
	return users, nil
}

// SendMessage appends a message to an ACTIVE room and notifies the partner.
func (c *Conversations) SendMessage(ctx context.Context, userID, chatID, content string) (*MessageView, error) {
	content = clip(content, config.MaxMessageLength)
	if content == "" {
		return nil, apperr.ErrMessageRequired
	}
	room, err := c.room(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if room.EffectiveStatus(c.now()) != models.RoomActive {
		return nil, apperr.ErrChatNotActive
	}

	msg := &models.ChatHistory{RoomID: chatID, SenderID: userID, Content: content}
	if err := c.store.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}

	c.notify(ctx, models.Notification{
		Type:    models.NotifyChatMessage,
		UserID:  room.PartnerOf(userID),
		RoomID:  chatID,
		Content: content,
	})
	return messageView(room, msg, userID), nil
}

// Messages returns the newest limit messages of chatID in send order.
func (c *Conversations) Messages(ctx context.Context, userID, chatID string, limit int) ([]MessageView, error) {
	room, err := c.room(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > config.MaxMessagesPage {
		limit = config.MaxMessagesPage
	}
	history, err := c.store.GetChatHistory(ctx, chatID, limit)
	if err != nil {
		return nil, err
	}
	views := make([]MessageView, 0, len(history))
	for i := range history {
		views = append(views, *messageView(room, &history[i], userID))
	}
	return views, nil
}

func messageView(room *models.ChatRoom, msg *models.ChatHistory, userID string) *MessageView {
	v := &MessageView{
		ID:        msg.ID,
		Mine:      msg.SenderID == userID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
	if room.IsRevealed() {
		v.SenderID = msg.SenderID
	}
	return v
}

// End expires the room on behalf of a participant. Ending an expired room is a no-op.
func (c *Conversations) End(ctx context.Context, userID, chatID string) error {
	var partner string
	ended := false
	err := c.store.MutateRoom(ctx, chatID, func(st *storage.RoomState) error {
		if !st.Room.HasParticipant(userID) {
			return apperr.ErrForbidden
		}
		if st.Room.Status == models.RoomExpired {
			return storage.ErrSkipWrite
		}
		ended = st.Room.EffectiveStatus(c.now()) != models.RoomExpired
		st.Room.Status = models.RoomExpired
		partner = st.Room.PartnerOf(userID)
		return nil
	})
	if err != nil {
		return err
	}
	if ended {
		c.logger.WithFields(logrus.Fields{"chat_id": chatID, "user_id": userID}).Info("chat ended")
		c.notify(ctx, models.Notification{Type: models.NotifyChatEnded, UserID: partner, RoomID: chatID})
	}
	return nil
}
