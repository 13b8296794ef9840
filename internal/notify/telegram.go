package notify

import (
	"blindpair/backend/internal/models"
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI the sink needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// UserLookup resolves the recipient of a notification.
type UserLookup interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// Translator renders a message key in a language.
type Translator interface {
	GetString(lang, key string) string
}

// TelegramSink pushes a short localized text to users who linked a Telegram chat.
// Users without a TelegramID are skipped silently.
type TelegramSink struct {
	Bot        Sender
	Users      UserLookup
	Translator Translator
}

func (t *TelegramSink) Notify(ctx context.Context, n models.Notification) error {
	user, err := t.Users.GetUserByID(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("telegram recipient %s: %w", n.UserID, err)
	}
	if user.TelegramID == 0 {
		return nil
	}

	text := t.Translator.GetString(user.Language, "notify_"+n.Type)
	if n.Mood != "" {
		text = fmt.Sprintf("%s (%s)", text, n.Mood)
	}
	msg := tgbotapi.NewMessage(user.TelegramID, text)
	if _, err := t.Bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send to %s: %w", n.UserID, err)
	}
	return nil
}
