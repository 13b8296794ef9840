// Package jobs runs the periodic lifecycle maintenance of the pairing engine.
package jobs

import (
	"blindpair/backend/internal/metrics"
	"blindpair/backend/internal/storage"
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// SweepReport counts the rows each step touched.
type SweepReport struct {
	PoolEntries  int64 `json:"pool_entries_deleted"`
	Rooms        int64 `json:"rooms_expired"`
	Matches      int64 `json:"matches_expired"`
	OpeningMoves int64 `json:"opening_moves_deleted"`
	Purged       int64 `json:"matches_purged"`
}

// Sweeper persists the expiry that reads already apply on the fly and drops
// records nothing will read again.
type Sweeper struct {
	store     storage.Storage
	now       func() time.Time
	logger    logrus.FieldLogger
	interval  time.Duration
	retention time.Duration

	scheduler gocron.Scheduler
}

func NewSweeper(store storage.Storage, interval, retention time.Duration, logger logrus.FieldLogger) *Sweeper {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Sweeper{
		store:     store,
		now:       time.Now,
		logger:    logger.WithField("component", "sweeper"),
		interval:  interval,
		retention: retention,
	}
}

// WithClock replaces the sweeper's time source.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// RunOnce executes every sweep step in order. Rooms must expire before their
// matches and gates are settled.
func (s *Sweeper) RunOnce(ctx context.Context) (SweepReport, error) {
	var rep SweepReport
	now := s.now()

	steps := []struct {
		name string
		dst  *int64
		run  func() (int64, error)
	}{
		{"pool_entries", &rep.PoolEntries, func() (int64, error) { return s.store.DeleteExpiredPoolEntries(ctx, now) }},
		{"rooms", &rep.Rooms, func() (int64, error) { return s.store.ExpireRooms(ctx, now) }},
		{"matches", &rep.Matches, func() (int64, error) { return s.store.ExpireMatches(ctx) }},
		{"opening_moves", &rep.OpeningMoves, func() (int64, error) { return s.store.DeleteSettledOpeningMoves(ctx) }},
		{"purge_matches", &rep.Purged, func() (int64, error) {
			if s.retention <= 0 {
				return 0, nil
			}
			return s.store.PurgeMatches(ctx, now.Add(-s.retention))
		}},
	}
	for _, step := range steps {
		n, err := step.run()
		if err != nil {
			return rep, fmt.Errorf("sweep %s: %w", step.name, err)
		}
		*step.dst = n
		metrics.SweptRows.WithLabelValues(step.name).Add(float64(n))
	}
	return rep, nil
}

// Start schedules RunOnce every interval. A run still in progress makes the next
// one skip.
func (s *Sweeper) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			rep, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.WithError(err).Error("sweep failed")
				return
			}
			s.logger.WithFields(logrus.Fields{
				"pool_entries":  rep.PoolEntries,
				"rooms":         rep.Rooms,
				"matches":       rep.Matches,
				"opening_moves": rep.OpeningMoves,
				"purged":        rep.Purged,
			}).Debug("sweep done")
		}),
		gocron.WithName("lifecycle_sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("schedule sweep: %w", err)
	}
	s.scheduler = scheduler
	scheduler.Start()
	s.logger.WithField("interval", s.interval.String()).Info("sweeper started")
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}
