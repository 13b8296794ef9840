// Package telegram runs the Telegram bot users link to receive pairing
// notifications outside the app.
package telegram

import (
	"blindpair/backend/internal/localization"
	"blindpair/backend/internal/models"
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Bot is the part of *tgbotapi.BotAPI the service uses.
type Bot interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// UserStore reads and updates directory users.
type UserStore interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
}

// Translator renders a message key in a language.
type Translator interface {
	GetString(lang, key string) string
}

// BotService is responsible for receiving Telegram updates.
type BotService struct {
	Bot       Bot
	Users     UserStore
	Codes     *LinkCodes
	Localizer Translator
	logger    logrus.FieldLogger
}

// NewBotAPI authorizes token against the Telegram API.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorize: %w", err)
	}
	bot.Debug = false
	return bot, nil
}

func NewBotService(bot Bot, users UserStore, codes *LinkCodes, localizer Translator, logger logrus.FieldLogger) *BotService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BotService{
		Bot:       bot,
		Users:     users,
		Codes:     codes,
		Localizer: localizer,
		logger:    logger.WithField("component", "telegram"),
	}
}

// Run is the main loop for receiving Telegram updates. It returns when ctx is done.
func (s *BotService) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.Bot.GetUpdatesChan(u)
	defer s.Bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				s.HandleMessage(ctx, update.Message)
			}
		}
	}
}

// HandleMessage answers one incoming message. Only commands are understood.
func (s *BotService) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	lang := senderLanguage(msg)
	if !msg.IsCommand() {
		s.reply(msg.Chat.ID, lang, "telegram_help")
		return
	}

	switch msg.Command() {
	case "start":
		s.link(ctx, msg.Chat.ID, lang, msg.CommandArguments())
	default:
		s.reply(msg.Chat.ID, lang, "telegram_help")
	}
}

func senderLanguage(msg *tgbotapi.Message) string {
	if msg.From == nil {
		return localization.DefaultLanguage
	}
	return localization.Base(msg.From.LanguageCode)
}

// link attaches chatID to the user that issued code. A user without a stored
// language inherits the Telegram client's one.
func (s *BotService) link(ctx context.Context, chatID int64, lang, code string) {
	userID, ok := s.Codes.Redeem(code)
	if !ok {
		s.reply(chatID, lang, "telegram_link_invalid")
		return
	}

	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("link telegram: user lookup")
		s.reply(chatID, lang, "telegram_link_invalid")
		return
	}
	user.TelegramID = chatID
	if user.Language == "" {
		user.Language = lang
	}
	if err := s.Users.SaveUser(ctx, user); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("link telegram: save user")
		return
	}

	s.logger.WithField("user_id", userID).Info("telegram chat linked")
	s.reply(chatID, user.Language, "telegram_linked")
}

func (s *BotService) reply(chatID int64, lang, key string) {
	if _, err := s.Bot.Send(tgbotapi.NewMessage(chatID, s.Localizer.GetString(lang, key))); err != nil {
		s.logger.WithError(err).Warn("telegram reply failed")
	}
}
