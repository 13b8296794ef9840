package storage

import (
	"blindpair/backend/internal/models"
	"context"
	"fmt"
	"time"
)

// DeleteExpiredPoolEntries physically removes entries that reads already ignore.
func (s *Service) DeleteExpiredPoolEntries(ctx context.Context, now time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.PoolEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete expired pool entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ExpireRooms moves rooms past their own expiry, and LOCKED rooms whose opening
// move window closed, to EXPIRED.
func (s *Service) ExpireRooms(ctx context.Context, now time.Time) (int64, error) {
	gateExpired := s.DB.Model(&models.OpeningMove{}).
		Select("room_id").
		Where("expires_at <= ?", now)

	res := s.DB.WithContext(ctx).Model(&models.ChatRoom{}).
		Where("status IN ?", []models.RoomStatus{models.RoomLocked, models.RoomActive}).
		Where(
			s.DB.Where("expires_at <= ?", now).
				Or("status = ? AND room_id IN (?)", models.RoomLocked, gateExpired),
		).
		Updates(map[string]interface{}{"status": models.RoomExpired, "updated_at": now})
	if res.Error != nil {
		return 0, fmt.Errorf("expire rooms: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ExpireMatches advances matches whose room has expired.
func (s *Service) ExpireMatches(ctx context.Context) (int64, error) {
	expiredRooms := s.DB.Model(&models.ChatRoom{}).
		Select("room_id").
		Where("status = ?", models.RoomExpired)

	res := s.DB.WithContext(ctx).Model(&models.Match{}).
		Where("status <> ? AND room_id IN (?)", models.MatchExpired, expiredRooms).
		Update("status", models.MatchExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("expire matches: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteSettledOpeningMoves drops gates of rooms that are no longer LOCKED.
func (s *Service) DeleteSettledOpeningMoves(ctx context.Context) (int64, error) {
	settled := s.DB.Model(&models.ChatRoom{}).
		Select("room_id").
		Where("status <> ?", models.RoomLocked)

	res := s.DB.WithContext(ctx).Where("room_id IN (?)", settled).Delete(&models.OpeningMove{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete settled opening moves: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PurgeMatches is the retention cleanup of historical match records.
func (s *Service) PurgeMatches(ctx context.Context, before time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.MatchExpired, before).
		Delete(&models.Match{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge matches: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Service) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	var st Stats
	db := s.DB.WithContext(ctx)
	if err := db.Model(&models.PoolEntry{}).Where("expires_at > ?", now).Count(&st.PoolEntries).Error; err != nil {
		return nil, fmt.Errorf("count pool: %w", err)
	}
	if err := db.Model(&models.ChatRoom{}).Where("status = ? AND expires_at > ?", models.RoomLocked, now).Count(&st.LockedRooms).Error; err != nil {
		return nil, fmt.Errorf("count locked rooms: %w", err)
	}
	if err := db.Model(&models.ChatRoom{}).Where("status = ? AND expires_at > ?", models.RoomActive, now).Count(&st.ActiveRooms).Error; err != nil {
		return nil, fmt.Errorf("count active rooms: %w", err)
	}
	if err := db.Model(&models.ChatRoom{}).Where("anonymous = ?", false).Count(&st.Revealed).Error; err != nil {
		return nil, fmt.Errorf("count revealed rooms: %w", err)
	}
	if err := db.Model(&models.Match{}).Count(&st.Matches).Error; err != nil {
		return nil, fmt.Errorf("count matches: %w", err)
	}
	return &st, nil
}
