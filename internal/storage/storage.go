// Package storage persists the pairing engine's state. Service is the PostgreSQL
// implementation used in production; memstore provides an in-process one.
package storage

import (
	"blindpair/backend/internal/models"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrSkipWrite may be returned by a MutateRoom callback to commit nothing. MutateRoom
// then returns nil.
var ErrSkipWrite = errors.New("storage: skip write")

type Storage interface {
	SaveUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// UpsertPoolEntry creates or fully overwrites the caller's single pool entry.
	UpsertPoolEntry(ctx context.Context, entry *models.PoolEntry) error
	DeletePoolEntry(ctx context.Context, userID string) error
	// GetPoolEntry returns nil, nil when the entry is absent or no longer live at now.
	GetPoolEntry(ctx context.Context, userID string, now time.Time) (*models.PoolEntry, error)
	// FindPoolCandidate returns the oldest live entry sharing entry's institution and
	// mood whose user is not in exclude, or nil, nil.
	FindPoolCandidate(ctx context.Context, entry *models.PoolEntry, exclude []string, now time.Time) (*models.PoolEntry, error)
	ListPoolPeers(ctx context.Context, institutionID, mood, excludeUserID string, now time.Time, limit int) ([]models.PoolEntry, error)

	// ClaimPair atomically removes both users' live pool entries and creates the
	// match, room and opening move. If either entry is gone it changes nothing and
	// returns apperr.ErrPairLost.
	ClaimPair(ctx context.Context, p *Pairing, now time.Time) error

	GetRoomByID(ctx context.Context, roomID string) (*models.ChatRoom, error)
	GetOpeningMove(ctx context.Context, roomID string) (*models.OpeningMove, error)
	GetGuesses(ctx context.Context, roomID string) ([]models.Guess, error)
	// GetCurrentRoomForUser returns the newest room of userID that is not expired at now.
	GetCurrentRoomForUser(ctx context.Context, userID string, now time.Time) (*models.ChatRoom, error)
	// MutateRoom runs fn on the room's state under an exclusive lock and persists the
	// room's status, anonymity and reveal time, the opening move and the guesses.
	MutateRoom(ctx context.Context, roomID string, fn func(st *RoomState) error) error

	SaveMessage(ctx context.Context, msg *models.ChatHistory) error
	GetChatHistory(ctx context.Context, roomID string, limit int) ([]models.ChatHistory, error)

	DeleteExpiredPoolEntries(ctx context.Context, now time.Time) (int64, error)
	ExpireRooms(ctx context.Context, now time.Time) (int64, error)
	ExpireMatches(ctx context.Context) (int64, error)
	DeleteSettledOpeningMoves(ctx context.Context) (int64, error)
	PurgeMatches(ctx context.Context, before time.Time) (int64, error)
	Stats(ctx context.Context, now time.Time) (*Stats, error)
}

// Pairing is everything ClaimPair writes for one successful match.
type Pairing struct {
	UserAID string
	UserBID string
	Match   models.Match
	Room    models.ChatRoom
	Gate    models.OpeningMove
}

// RoomState is the mutable view of one conversation handed to MutateRoom callbacks.
type RoomState struct {
	Room    models.ChatRoom
	Gate    *models.OpeningMove
	Guesses []models.Guess
}

// GuessOf returns userID's guess, or nil.
func (st *RoomState) GuessOf(userID string) *models.Guess {
	for i := range st.Guesses {
		if st.Guesses[i].UserID == userID {
			return &st.Guesses[i]
		}
	}
	return nil
}

// SetGuess stores or overwrites userID's guess.
func (st *RoomState) SetGuess(userID, text string, now time.Time) {
	if g := st.GuessOf(userID); g != nil {
		g.Text = text
		g.UpdatedAt = now
		return
	}
	st.Guesses = append(st.Guesses, models.Guess{
		RoomID:    st.Room.RoomID,
		UserID:    userID,
		Text:      text,
		UpdatedAt: now,
	})
}

// Stats is a point-in-time summary for operators.
type Stats struct {
	PoolEntries int64 `json:"pool_entries"`
	LockedRooms int64 `json:"locked_rooms"`
	ActiveRooms int64 `json:"active_rooms"`
	Revealed    int64 `json:"revealed_rooms"`
	Matches     int64 `json:"matches"`
}

type Service struct {
	DB *gorm.DB
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Migrate creates or updates every table the engine uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PoolEntry{},
		&models.Match{},
		&models.ChatRoom{},
		&models.OpeningMove{},
		&models.Guess{},
		&models.ChatHistory{},
	)
}
