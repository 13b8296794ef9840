package notify

import (
	"blindpair/backend/internal/metrics"
	"blindpair/backend/internal/models"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Async hands every notification to Next on its own goroutine and returns
// immediately. The request context is detached so delivery outlives the request.
type Async struct {
	Next    Sink
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

func (a *Async) Notify(ctx context.Context, n models.Notification) error {
	detached := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(detached, a.Timeout)
		defer cancel()
		if err := a.Next.Notify(ctx, n); err != nil {
			metrics.NotificationFailures.WithLabelValues(n.Type).Inc()
			a.Logger.WithFields(logrus.Fields{
				"type":    n.Type,
				"user_id": n.UserID,
			}).WithError(err).Warn("notification delivery failed")
		}
	}()
	return nil
}
