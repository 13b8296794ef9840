package pairing

import (
	"blindpair/backend/internal/apperr"
	"blindpair/backend/internal/metrics"
	"blindpair/backend/internal/models"
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// Pool manages each user's single, self-expiring pool entry.
type Pool struct {
	*deps
}

// Join upserts the caller's entry with a fresh TTL. Rejoining replaces mood, note,
// join time and expiry unconditionally.
func (p *Pool) Join(ctx context.Context, userID, institutionID, mood, note string) (*models.PoolEntry, error) {
	mood = models.NormalizeMood(mood)
	if mood == "" {
		return nil, apperr.ErrMoodRequired
	}
	institutionID = strings.TrimSpace(institutionID)
	if institutionID == "" {
		return nil, apperr.ErrInstitutionRequired
	}

	now := p.now()
	entry := &models.PoolEntry{
		UserID:        userID,
		InstitutionID: institutionID,
		Mood:          mood,
		Note:          models.TrimNote(note),
		JoinedAt:      now,
		ExpiresAt:     now.Add(p.cfg.PoolTTL),
	}
	if err := p.store.UpsertPoolEntry(ctx, entry); err != nil {
		return nil, err
	}
	metrics.PoolJoins.Inc()
	p.logger.WithFields(logrus.Fields{"user_id": userID, "mood": mood}).Debug("joined pool")

	p.announce(ctx, entry)
	return entry, nil
}

// announce tells users already waiting in the same mood that someone arrived.
func (p *Pool) announce(ctx context.Context, entry *models.PoolEntry) {
	if p.cfg.MoodCompanyLimit <= 0 {
		return
	}
	peers, err := p.store.ListPoolPeers(ctx, entry.InstitutionID, entry.Mood, entry.UserID, entry.JoinedAt, p.cfg.MoodCompanyLimit)
	if err != nil {
		p.logger.WithError(err).WithField("user_id", entry.UserID).Warn("list pool peers")
		return
	}
	for _, peer := range peers {
		p.notify(ctx, models.Notification{
			Type:   models.NotifyMoodCompany,
			UserID: peer.UserID,
			Mood:   entry.Mood,
		})
	}
}

// Leave removes the caller's entry. Leaving when absent is a no-op.
func (p *Pool) Leave(ctx context.Context, userID string) error {
	return p.store.DeletePoolEntry(ctx, userID)
}

// Mine returns the caller's live entry, or nil.
func (p *Pool) Mine(ctx context.Context, userID string) (*models.PoolEntry, error) {
	return p.store.GetPoolEntry(ctx, userID, p.now())
}
