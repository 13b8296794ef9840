package main

import (
	"blindpair/backend/internal/api"
	"blindpair/backend/internal/api/handler"
	"blindpair/backend/internal/api/middleware"
	"blindpair/backend/internal/auth"
	"blindpair/backend/internal/chathub"
	"blindpair/backend/internal/config"
	"blindpair/backend/internal/jobs"
	"blindpair/backend/internal/localization"
	"blindpair/backend/internal/logging"
	"blindpair/backend/internal/notify"
	"blindpair/backend/internal/pairing"
	"blindpair/backend/internal/storage"
	"blindpair/backend/internal/telegram"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDatabase(cfg config.DBConfig, logger logrus.FieldLogger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect PostgreSQL")
	}
	// Міграції (Створення таблиць)
	if err := storage.Migrate(db); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}
	logger.Info("database connection established, migrations complete")
	return db
}

func setupRedis(ctx context.Context, cfg config.RedisConfig, logger logrus.FieldLogger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.WithError(err).Fatal("failed to connect Redis")
	}
	return rdb
}

func main() {
	cfg, err := config.Load(os.Getenv("BLINDPAIR_CONFIG"))
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	logger := logging.New(cfg.Log)
	logger.Info("starting blind pairing backend")
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Ініціалізація залежностей
	db := setupDatabase(cfg.DB, logger)
	store := storage.NewStorageService(db)

	// 2. Chat Hub і канали сповіщень
	hub := chathub.NewManagerService(logger)
	go hub.Run(ctx)

	var sinks notify.Multi
	if cfg.Redis.Addr != "" {
		rdb := setupRedis(ctx, cfg.Redis, logger)
		defer rdb.Close()
		hub.StartPubSubListener(ctx, rdb)
		sinks = append(sinks, notify.NewRedisPublisher(rdb))
	} else {
		logger.Warn("redis not configured, notifications stay on this instance")
		sinks = append(sinks, hub)
	}

	var linkCodes *telegram.LinkCodes
	if cfg.Telegram.BotToken != "" {
		bot, err := telegram.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			logger.WithError(err).Fatal("failed to start Telegram bot")
		}
		localizer, err := localization.Embedded()
		if err != nil {
			logger.WithError(err).Fatal("failed to load translations")
		}
		linkCodes = telegram.NewLinkCodes(telegram.DefaultLinkCodeTTL)
		sinks = append(sinks, &notify.TelegramSink{Bot: bot, Users: store, Translator: localizer})
		go telegram.NewBotService(bot, store, linkCodes, localizer, logger).Run(ctx)
		logger.WithField("bot", bot.Self.UserName).Info("telegram bot authorized")
	}

	sink := &notify.Async{Next: sinks, Timeout: cfg.Pairing.NotifyTimeout, Logger: logger}
	services := pairing.New(store, pairing.Options{Config: cfg.Pairing, Sink: sink, Logger: logger})

	// 3. Фонове прибирання прострочених записів
	sweeper := jobs.NewSweeper(store, cfg.Sweep.Interval, cfg.Pairing.MatchRetention, logger)
	if err := sweeper.Start(ctx); err != nil {
		logger.WithError(err).Fatal("failed to start sweeper")
	}
	defer func() {
		if err := sweeper.Stop(); err != nil {
			logger.WithError(err).Warn("sweeper shutdown")
		}
	}()

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		logger.WithError(err).Fatal("invalid auth configuration")
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimit.TryMatchPerSecond, cfg.RateLimit.TryMatchBurst, 10*time.Minute)

	// 4. Налаштування Gin та роутингу
	r := gin.Default()
	h := handler.NewHandler(services, hub, logger)
	h.LinkCodes = linkCodes
	api.SetupRoutes(r, h, issuer, limiter)

	server := &http.Server{
		Addr:           cfg.Server.Address,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("http server shutdown")
	}
}
