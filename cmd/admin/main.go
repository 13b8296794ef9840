package main

import (
	"blindpair/backend/internal/auth"
	"blindpair/backend/internal/config"
	"blindpair/backend/internal/jobs"
	"blindpair/backend/internal/logging"
	"blindpair/backend/internal/models"
	"blindpair/backend/internal/storage"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const usage = `Usage: admin <command> [args]

Commands:
  sweep                                         run one lifecycle sweep
  expire-chat <chat_id>                         expire a chat immediately
  token <user_id> <institution_id>              print a session token
  add-user <user_id> <institution_id> <username> <real_name...>
                                                create or update a directory user
  stats                                         print pool and chat counters`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("BLINDPAIR_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log)
	ctx := context.Background()

	// token needs no database.
	if os.Args[1] == "token" {
		if len(os.Args) != 4 {
			fail("Usage: admin token <user_id> <institution_id>")
		}
		issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		check(err)
		token, err := issuer.Sign(os.Args[2], os.Args[3])
		check(err)
		fmt.Println(token)
		return
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{})
	check(err)
	check(storage.Migrate(db))
	store := storage.NewStorageService(db)

	switch os.Args[1] {
	case "sweep":
		rep, err := jobs.NewSweeper(store, cfg.Sweep.Interval, cfg.Pairing.MatchRetention, logger).RunOnce(ctx)
		check(err)
		printJSON(rep)
	case "expire-chat":
		if len(os.Args) != 3 {
			fail("Usage: admin expire-chat <chat_id>")
		}
		check(expireChat(ctx, store, os.Args[2]))
		fmt.Printf("Chat %s has been expired.\n", os.Args[2])
	case "add-user":
		if len(os.Args) < 6 {
			fail("Usage: admin add-user <user_id> <institution_id> <username> <real_name...>")
		}
		user := &models.User{
			ID:            os.Args[2],
			InstitutionID: os.Args[3],
			Username:      os.Args[4],
			RealName:      strings.Join(os.Args[5:], " "),
		}
		if existing, err := store.GetUserByID(ctx, user.ID); err == nil {
			user.TelegramID = existing.TelegramID
			user.Language = existing.Language
			user.Aliases = existing.Aliases
		}
		check(store.SaveUser(ctx, user))
		fmt.Printf("User %s saved.\n", user.ID)
	case "stats":
		st, err := store.Stats(ctx, time.Now())
		check(err)
		printJSON(st)
	default:
		fail("Unknown command\n\n" + usage)
	}
}

func expireChat(ctx context.Context, s storage.Storage, chatID string) error {
	return s.MutateRoom(ctx, chatID, func(st *storage.RoomState) error {
		if st.Room.Status == models.RoomExpired {
			return storage.ErrSkipWrite
		}
		st.Room.Status = models.RoomExpired
		return nil
	})
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	check(enc.Encode(v))
}

func check(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func fail(msg string) {
	fmt.Println(msg)
	os.Exit(1)
}
