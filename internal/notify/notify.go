// Package notify delivers fire-and-forget notifications. Delivery failures are
// reported to the caller but never affect the state change that produced them.
package notify

import (
	"blindpair/backend/internal/models"
	"context"
	"errors"
)

// Sink receives notifications addressed to single users.
type Sink interface {
	Notify(ctx context.Context, n models.Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n models.Notification) error

func (f SinkFunc) Notify(ctx context.Context, n models.Notification) error { return f(ctx, n) }

// Discard drops every notification.
var Discard Sink = SinkFunc(func(context.Context, models.Notification) error { return nil })

// Multi fans a notification out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
