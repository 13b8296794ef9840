package storage

import (
	"blindpair/backend/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Service) UpsertPoolEntry(ctx context.Context, entry *models.PoolEntry) error {
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(entry).Error
	if err != nil {
		return fmt.Errorf("upsert pool entry %s: %w", entry.UserID, err)
	}
	return nil
}

func (s *Service) DeletePoolEntry(ctx context.Context, userID string) error {
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.PoolEntry{}).Error
	if err != nil {
		return fmt.Errorf("delete pool entry %s: %w", userID, err)
	}
	return nil
}

func (s *Service) GetPoolEntry(ctx context.Context, userID string, now time.Time) (*models.PoolEntry, error) {
	var entry models.PoolEntry
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, now).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pool entry %s: %w", userID, err)
	}
	return &entry, nil
}

func (s *Service) FindPoolCandidate(ctx context.Context, entry *models.PoolEntry, exclude []string, now time.Time) (*models.PoolEntry, error) {
	var candidate models.PoolEntry
	q := s.DB.WithContext(ctx).
		Where("institution_id = ? AND mood = ? AND expires_at > ?", entry.InstitutionID, entry.Mood, now).
		Where("user_id <> ?", entry.UserID)
	if len(exclude) > 0 {
		q = q.Where("user_id NOT IN ?", exclude)
	}
	err := q.Order("joined_at asc").First(&candidate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find pool candidate for %s: %w", entry.UserID, err)
	}
	return &candidate, nil
}

func (s *Service) ListPoolPeers(ctx context.Context, institutionID, mood, excludeUserID string, now time.Time, limit int) ([]models.PoolEntry, error) {
	var peers []models.PoolEntry
	err := s.DB.WithContext(ctx).
		Where("institution_id = ? AND mood = ? AND user_id <> ? AND expires_at > ?", institutionID, mood, excludeUserID, now).
		Order("joined_at asc").
		Limit(limit).
		Find(&peers).Error
	if err != nil {
		return nil, fmt.Errorf("list pool peers: %w", err)
	}
	return peers, nil
}
