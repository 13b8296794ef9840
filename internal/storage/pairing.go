package storage

import (
	"blindpair/backend/internal/apperr"
	"blindpair/backend/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ClaimPair runs the whole pairing in one transaction. The conditional delete locks
// both pool rows; a concurrent claim on either row blocks until this one commits and
// then sees fewer than two rows, so at most one claim can consume a given entry.
func (s *Service) ClaimPair(ctx context.Context, p *Pairing, now time.Time) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id IN ? AND expires_at > ?", []string{p.UserAID, p.UserBID}, now).
			Delete(&models.PoolEntry{})
		if res.Error != nil {
			return fmt.Errorf("claim pool entries: %w", res.Error)
		}
		if res.RowsAffected != 2 {
			return apperr.ErrPairLost
		}

		if err := tx.Create(&p.Match).Error; err != nil {
			return fmt.Errorf("create match: %w", err)
		}
		if err := tx.Create(&p.Room).Error; err != nil {
			return fmt.Errorf("create room: %w", err)
		}
		if err := tx.Create(&p.Gate).Error; err != nil {
			return fmt.Errorf("create opening move: %w", err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, apperr.ErrPairLost) {
		return fmt.Errorf("claim pair %s/%s: %w", p.UserAID, p.UserBID, err)
	}
	return err
}
