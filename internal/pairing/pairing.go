// Package pairing is the blind pairing engine: the pool, the match engine, the
// opening-move gate, the reveal protocol and the participant view of a conversation.
// All state lives behind storage.Storage, so every operation is safe to run from
// many request handlers and many server instances at once.
package pairing

import (
	"blindpair/backend/internal/config"
	"blindpair/backend/internal/metrics"
	"blindpair/backend/internal/models"
	"blindpair/backend/internal/notify"
	"blindpair/backend/internal/storage"
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// Clock returns the current time. Tests replace it to move across TTL boundaries.
type Clock func() time.Time

// deps is shared by every component of the engine.
type deps struct {
	store  storage.Storage
	sink   notify.Sink
	cfg    config.PairingConfig
	now    Clock
	logger logrus.FieldLogger
}

// notify delivers n and swallows any failure: notifications never undo state.
func (d *deps) notify(ctx context.Context, n models.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}
	if err := d.sink.Notify(ctx, n); err != nil {
		metrics.NotificationFailures.WithLabelValues(n.Type).Inc()
		d.logger.WithFields(logrus.Fields{
			"type":    n.Type,
			"user_id": n.UserID,
			"chat_id": n.RoomID,
		}).WithError(err).Warn("notification failed")
	}
}

// Options configures New. Zero fields take defaults.
type Options struct {
	Config   config.PairingConfig
	Sink     notify.Sink
	Clock    Clock
	Logger   logrus.FieldLogger
	Comparer IdentityComparer
}

// Services bundles the engine's components over one store.
type Services struct {
	Pool          *Pool
	Engine        *Engine
	Gate          *Gate
	Reveal        *Reveal
	Conversations *Conversations
}

func New(store storage.Storage, opts Options) *Services {
	d := &deps{
		store:  store,
		sink:   opts.Sink,
		cfg:    opts.Config,
		now:    opts.Clock,
		logger: opts.Logger,
	}
	if d.sink == nil {
		d.sink = notify.Discard
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.logger == nil {
		d.logger = logrus.StandardLogger()
	}
	if d.cfg == (config.PairingConfig{}) {
		d.cfg = config.DefaultPairing()
	}

	cmp := opts.Comparer
	if cmp == nil {
		cmp = NewComparer(d.cfg.RevealRule)
	}

	conversations := &Conversations{deps: d}
	return &Services{
		Pool:          &Pool{deps: d},
		Engine:        &Engine{deps: d, conversations: conversations},
		Gate:          &Gate{deps: d},
		Reveal:        &Reveal{deps: d, comparer: cmp, conversations: conversations},
		Conversations: conversations,
	}
}

// clip trims s and cuts it to at most n runes.
func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
