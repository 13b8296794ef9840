package storage

import (
	"blindpair/backend/internal/apperr"
	"blindpair/backend/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Service) GetRoomByID(ctx context.Context, roomID string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.DB.WithContext(ctx).Where("room_id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", roomID, err)
	}
	return &room, nil
}

func (s *Service) GetOpeningMove(ctx context.Context, roomID string) (*models.OpeningMove, error) {
	var gate models.OpeningMove
	err := s.DB.WithContext(ctx).Where("room_id = ?", roomID).First(&gate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrGateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get opening move %s: %w", roomID, err)
	}
	return &gate, nil
}

func (s *Service) GetGuesses(ctx context.Context, roomID string) ([]models.Guess, error) {
	var guesses []models.Guess
	if err := s.DB.WithContext(ctx).Where("room_id = ?", roomID).Find(&guesses).Error; err != nil {
		return nil, fmt.Errorf("get guesses %s: %w", roomID, err)
	}
	return guesses, nil
}

// GetCurrentRoomForUser знаходить кімнату, в якій бере участь даний користувач.
func (s *Service) GetCurrentRoomForUser(ctx context.Context, userID string, now time.Time) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.DB.WithContext(ctx).
		Where("status <> ? AND expires_at > ?", models.RoomExpired, now).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at desc").
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get current room for %s: %w", userID, err)
	}
	return &room, nil
}

// MutateRoom locks the room row for the duration of the transaction. Every writer of
// a room's gate or guesses goes through here, so the room lock serializes them.
func (s *Service) MutateRoom(ctx context.Context, roomID string, fn func(st *RoomState) error) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st RoomState
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_id = ?", roomID).
			First(&st.Room).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrChatNotFound
		}
		if err != nil {
			return fmt.Errorf("lock room: %w", err)
		}

		var gate models.OpeningMove
		err = tx.Where("room_id = ?", roomID).First(&gate).Error
		switch {
		case err == nil:
			st.Gate = &gate
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("load opening move: %w", err)
		}

		if err := tx.Where("room_id = ?", roomID).Find(&st.Guesses).Error; err != nil {
			return fmt.Errorf("load guesses: %w", err)
		}

		if err := fn(&st); err != nil {
			return err
		}

		// Participants are never written back.
		err = tx.Model(&models.ChatRoom{}).
			Where("room_id = ?", roomID).
			Updates(map[string]interface{}{
				"status":      st.Room.Status,
				"anonymous":   st.Room.Anonymous,
				"revealed_at": st.Room.RevealedAt,
				"updated_at":  time.Now(),
			}).Error
		if err != nil {
			return fmt.Errorf("update room: %w", err)
		}

		if st.Gate != nil {
			if err := tx.Save(st.Gate).Error; err != nil {
				return fmt.Errorf("save opening move: %w", err)
			}
		}

		for i := range st.Guesses {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"text", "updated_at"}),
			}).Create(&st.Guesses[i]).Error
			if err != nil {
				return fmt.Errorf("save guess: %w", err)
			}
		}
		return nil
	})
	if errors.Is(err, ErrSkipWrite) {
		return nil
	}
	return err
}

// SaveMessage зберігає повідомлення в PostgreSQL
func (s *Service) SaveMessage(ctx context.Context, msg *models.ChatHistory) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("save message for room %s: %w", msg.RoomID, err)
	}
	return nil
}

// GetChatHistory returns the newest limit messages of the room in send order.
func (s *Service) GetChatHistory(ctx context.Context, roomID string, limit int) ([]models.ChatHistory, error) {
	var history []models.ChatHistory
	err := s.DB.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at desc").
		Limit(limit).
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("get chat history %s: %w", roomID, err)
	}
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}
