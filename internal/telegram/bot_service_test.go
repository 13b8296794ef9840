package telegram_test

import (
	"blindpair/backend/internal/apperr"
	"blindpair/backend/internal/models"
	"blindpair/backend/internal/telegram"
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBot struct {
	mock.Mock
}

func (m *MockBot) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.Called(config).Get(0).(tgbotapi.UpdatesChannel)
}

func (m *MockBot) StopReceivingUpdates() {
	m.Called()
}

func (m *MockBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return tgbotapi.Message{}, args.Error(0)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsers) SaveUser(ctx context.Context, user *models.User) error {
	return m.Called(user).Error(0)
}

type keyTranslator struct{}

func (keyTranslator) GetString(lang, key string) string { return lang + ":" + key }

func command(chatID int64, text string, length int) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
		Chat:     tgbotapi.Chat{ID: chatID},
	}
}

func replyText(key string) interface{} {
	return mock.MatchedBy(func(c tgbotapi.MessageConfig) bool { return c.Text == key })
}

func TestLinkCodes(t *testing.T) {
	codes := telegram.NewLinkCodes(time.Minute)
	code := codes.Issue("alice")
	assert.Len(t, code, 8)

	userID, ok := codes.Redeem(" " + code + " ")
	require.True(t, ok)
	assert.Equal(t, "alice", userID)

	_, ok = codes.Redeem(code)
	assert.False(t, ok, "codes are single use")
}

func TestStartLinksChat(t *testing.T) {
	bot := new(MockBot)
	users := new(MockUsers)
	codes := telegram.NewLinkCodes(time.Minute)
	logger, _ := test.NewNullLogger()
	svc := telegram.NewBotService(bot, users, codes, keyTranslator{}, logger)

	user := &models.User{ID: "alice", Language: "uk"}
	users.On("GetUserByID", "alice").Return(user, nil)
	users.On("SaveUser", mock.MatchedBy(func(u *models.User) bool { return u.TelegramID == 4242 })).Return(nil)
	bot.On("Send", replyText("uk:telegram_linked")).Return(nil)

	code := codes.Issue("alice")
	svc.HandleMessage(context.Background(), command(4242, "/start "+code, 6))

	users.AssertExpectations(t)
	bot.AssertExpectations(t)
}

func TestStartWithBadCode(t *testing.T) {
	bot := new(MockBot)
	users := new(MockUsers)
	logger, _ := test.NewNullLogger()
	svc := telegram.NewBotService(bot, users, telegram.NewLinkCodes(time.Minute), keyTranslator{}, logger)

	bot.On("Send", replyText("en:telegram_link_invalid")).Return(nil)
	svc.HandleMessage(context.Background(), command(1, "/start NOPE", 6))

	bot.AssertExpectations(t)
	users.AssertNotCalled(t, "SaveUser", mock.Anything)
}

func TestStartWithUnknownUser(t *testing.T) {
	bot := new(MockBot)
	users := new(MockUsers)
	codes := telegram.NewLinkCodes(time.Minute)
	logger, _ := test.NewNullLogger()
	svc := telegram.NewBotService(bot, users, codes, keyTranslator{}, logger)

	users.On("GetUserByID", "ghost").Return(nil, apperr.ErrUserNotFound)
	bot.On("Send", replyText("en:telegram_link_invalid")).Return(nil)
	svc.HandleMessage(context.Background(), command(1, "/start "+codes.Issue("ghost"), 6))

	bot.AssertExpectations(t)
}

func TestPlainTextGetsHelp(t *testing.T) {
	bot := new(MockBot)
	logger, _ := test.NewNullLogger()
	svc := telegram.NewBotService(bot, new(MockUsers), telegram.NewLinkCodes(time.Minute), keyTranslator{}, logger)

	bot.On("Send", replyText("en:telegram_help")).Return(nil).Twice()
	svc.HandleMessage(context.Background(), &tgbotapi.Message{Text: "hello", Chat: tgbotapi.Chat{ID: 1}})
	svc.HandleMessage(context.Background(), command(1, "/unknown", 8))

	bot.AssertExpectations(t)
}

func TestRepliesInSenderLanguage(t *testing.T) {
	bot := new(MockBot)
	users := new(MockUsers)
	codes := telegram.NewLinkCodes(time.Minute)
	logger, _ := test.NewNullLogger()
	svc := telegram.NewBotService(bot, users, codes, keyTranslator{}, logger)

	bot.On("Send", replyText("uk:telegram_help")).Return(nil).Once()
	msg := &tgbotapi.Message{Text: "привіт", Chat: tgbotapi.Chat{ID: 7}, From: &tgbotapi.User{ID: 7, LanguageCode: "uk-UA"}}
	svc.HandleMessage(context.Background(), msg)

	users.On("GetUserByID", "bob").Return(&models.User{ID: "bob"}, nil)
	users.On("SaveUser", mock.MatchedBy(func(u *models.User) bool { return u.Language == "uk" })).Return(nil)
	bot.On("Send", replyText("uk:telegram_linked")).Return(nil).Once()
	start := command(7, "/start "+codes.Issue("bob"), 6)
	start.From = msg.From
	svc.HandleMessage(context.Background(), start)

	users.AssertExpectations(t)
	bot.AssertExpectations(t)
}

func TestRunStopsWithContext(t *testing.T) {
	bot := new(MockBot)
	updates := make(chan tgbotapi.Update)
	bot.On("GetUpdatesChan", mock.Anything).Return(tgbotapi.UpdatesChannel(updates))
	bot.On("StopReceivingUpdates").Return()
	logger, _ := test.NewNullLogger()
	svc := telegram.NewBotService(bot, new(MockUsers), telegram.NewLinkCodes(time.Minute), keyTranslator{}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	bot.AssertCalled(t, "StopReceivingUpdates")
}
