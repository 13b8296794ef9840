package handler

import (
	"blindpair/backend/internal/chathub"
	"blindpair/backend/internal/pairing"
	"blindpair/backend/internal/telegram"

	"github.com/sirupsen/logrus"
)

// Handler містить посилання на сервіси пейрингу та ChatHub
type Handler struct {
	Services *pairing.Services
	Hub      *chathub.ManagerService
	Logger   logrus.FieldLogger

	// LinkCodes is nil when no Telegram bot is configured.
	LinkCodes *telegram.LinkCodes
}

func NewHandler(services *pairing.Services, hub *chathub.ManagerService, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{Services: services, Hub: hub, Logger: logger}
}
