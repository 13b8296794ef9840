package pairing_test

import (
	"blindpair/backend/internal/config"
	"blindpair/backend/internal/models"
	"blindpair/backend/internal/pairing"
	"blindpair/backend/internal/storage/memstore"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recorder struct {
	mu   sync.Mutex
	sent []models.Notification
	err  error
}

func (r *recorder) Notify(_ context.Context, n models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recorder) ofType(typ string) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.sent {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.sent = nil
	r.mu.Unlock()
}

type fixture struct {
	store *memstore.Store
	clock *fakeClock
	sink  *recorder
	hook  *test.Hook
	svc   *pairing.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, config.DefaultPairing())
}

func newFixtureWith(t *testing.T, cfg config.PairingConfig) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &fixture{
		store: memstore.New(),
		clock: &fakeClock{now: time.Now()},
		sink:  &recorder{},
		hook:  hook,
	}
	f.svc = pairing.New(f.store, pairing.Options{
		Config: cfg,
		Sink:   f.sink,
		Clock:  f.clock.Now,
		Logger: logger,
	})
	return f
}

func (f *fixture) user(t *testing.T, id, username, realName string) *models.User {
	t.Helper()
	u := &models.User{ID: id, InstitutionID: "uni-1", Username: username, RealName: realName}
	require.NoError(t, f.store.SaveUser(context.Background(), u))
	return u
}

// pair puts alice and bob in the pool with the same mood and matches them.
func (f *fixture) pair(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	f.user(t, "alice", "alice_w", "Alice Walker")
	f.user(t, "bob", "bob_m", "Bob Marley")

	_, err := f.svc.Pool.Join(ctx, "alice", "uni-1", "coffee", "")
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	_, err = f.svc.Pool.Join(ctx, "bob", "uni-1", "coffee", "")
	require.NoError(t, err)

	res, err := f.svc.Engine.TryMatch(ctx, "bob")
	require.NoError(t, err)
	require.True(t, res.Matched)
	return res.ChatID
}

// activate pairs alice and bob and completes the opening move.
func (f *fixture) activate(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	chatID := f.pair(t)
	_, err := f.svc.Gate.Submit(ctx, "alice", chatID, "hi there")
	require.NoError(t, err)
	res, err := f.svc.Gate.Submit(ctx, "bob", chatID, "hey")
	require.NoError(t, err)
	require.True(t, res.Activated)
	return chatID
}
