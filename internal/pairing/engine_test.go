package pairing_test

import (
	"blindpair/backend/internal/apperr"
	"blindpair/backend/internal/config"
	"blindpair/backend/internal/models"
	"blindpair/backend/internal/pairing"
	"blindpair/backend/internal/storage"
	"blindpair/backend/internal/storage/memstore"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryMatch_NotInPool(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Engine.TryMatch(context.Background(), "alice")
	assert.ErrorIs(t, err, apperr.ErrNotInPool)
}

func TestTryMatch_NoCandidate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Pool.Join(ctx, "alice", "uni-1", "coffee", "")
	require.NoError(t, err)
	_, err = f.svc.Pool.Join(ctx, "bob", "uni-1", "study", "")
	require.NoError(t, err)
	_, err = f.svc.Pool.Join(ctx, "carol", "uni-2", "coffee", "")
	require.NoError(t, err)

	res, err := f.svc.Engine.TryMatch(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Empty(t, res.ChatID)

	mine, err := f.svc.Pool.Mine(ctx, "alice")
	require.NoError(t, err)
	assert.NotNil(t, mine, "an unmatched caller stays in the pool")
}

func TestTryMatch_SkipsExpiredCandidate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Pool.Join(ctx, "bob", "uni-1", "coffee", "")
	require.NoError(t, err)
	f.clock.Advance(config.DefaultPoolTTL)
	_, err = f.svc.Pool.Join(ctx, "alice", "uni-1", "coffee", "")
	require.NoError(t, err)

	res, err := f.svc.Engine.TryMatch(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

func TestTryMatch_PairsOldestCandidate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, id := range []string{"carol", "bob", "alice"} {
		_, err := f.svc.Pool.Join(ctx, id, "uni-1", "coffee", "")
		require.NoError(t, err)
		f.clock.Advance(time.Second)
	}

	res, err := f.svc.Engine.TryMatch(ctx, "alice")
	require.NoError(t, err)
	require.True(t, res.Matched)

	room, err := f.store.GetRoomByID(ctx, res.ChatID)
	require.NoError(t, err)
	assert.True(t, room.HasParticipant("alice"))
	assert.True(t, room.HasParticipant("carol"))
	assert.Equal(t, models.RoomLocked, room.Status)
	assert.True(t, room.Anonymous)
	assert.Equal(t, f.clock.Now().Add(config.DefaultChatTTL), room.ExpiresAt)

	gate, err := f.store.GetOpeningMove(ctx, res.ChatID)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(config.DefaultGateTTL), gate.ExpiresAt)
	assert.False(t, gate.Complete())

	match, ok := f.store.Match(room.MatchID)
	require.True(t, ok)
	assert.Equal(t, models.MatchActive, match.Status)
	assert.Equal(t, "coffee", match.Mood)

	for _, id := range []string{"alice", "carol"} {
		mine, err := f.svc.Pool.Mine(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, mine)
	}
	mine, err := f.svc.Pool.Mine(ctx, "bob")
	require.NoError(t, err)
	assert.NotNil(t, mine)

	found := f.sink.ofType(models.NotifyMatchFound)
	require.Len(t, found, 2)
	assert.ElementsMatch(t, []string{"alice", "carol"}, []string{found[0].UserID, found[1].UserID})
	assert.Equal(t, res.ChatID, found[0].RoomID)
}

func TestTryMatch_ConsumedPartnerIsNotInPool(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.pair(t)

	_, err := f.svc.Engine.TryMatch(ctx, "alice")
	assert.ErrorIs(t, err, apperr.ErrNotInPool)
}

func TestTryMatch_NotificationFailureKeepsMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.sink.err = assert.AnError

	chatID := f.pair(t)
	room, err := f.store.GetRoomByID(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomLocked, room.Status)

	var warned int
	for _, e := range f.hook.AllEntries() {
		if e.Message == "notification failed" {
			warned++
		}
	}
	assert.GreaterOrEqual(t, warned, 2)
}

// stealingStore lets another claim consume the first candidate right before ClaimPair.
type stealingStore struct {
	storage.Storage
	once  sync.Once
	steal string
}

func (s *stealingStore) ClaimPair(ctx context.Context, p *storage.Pairing, now time.Time) error {
	s.once.Do(func() {
		_ = s.Storage.DeletePoolEntry(ctx, s.steal)
	})
	return s.Storage.ClaimPair(ctx, p, now)
}

func TestTryMatch_RetriesAfterLostRace(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	wrapped := &stealingStore{Storage: store, steal: "bob"}
	logger, _ := test.NewNullLogger()
	svc := pairing.New(wrapped, pairing.Options{Logger: logger})

	for _, id := range []string{"bob", "carol", "alice"} {
		_, err := svc.Pool.Join(ctx, id, "uni-1", "coffee", "")
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	res, err := svc.Engine.TryMatch(ctx, "alice")
	require.NoError(t, err)
	require.True(t, res.Matched)

	room, err := store.GetRoomByID(ctx, res.ChatID)
	require.NoError(t, err)
	assert.True(t, room.HasParticipant("carol"))
}

func TestTryMatch_ClaimAttemptsExhausted(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	logger, _ := test.NewNullLogger()
	cfg := config.DefaultPairing()
	cfg.ClaimAttempts = 1
	svc := pairing.New(&stealingStore{Storage: store, steal: "bob"}, pairing.Options{Config: cfg, Logger: logger})

	for _, id := range []string{"bob", "carol", "alice"} {
		_, err := svc.Pool.Join(ctx, id, "uni-1", "coffee", "")
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	res, err := svc.Engine.TryMatch(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, res.Matched)

	mine, err := svc.Pool.Mine(ctx, "alice")
	require.NoError(t, err)
	assert.NotNil(t, mine, "a lost claim restores the caller")
}

func TestTryMatch_ConcurrentNeverDoublePairs(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.ErrorLevel)
	svc := pairing.New(store, pairing.Options{Logger: logger})

	const users = 40
	ids := make([]string, users)
	for i := range ids {
		ids[i] = fmt.Sprintf("user-%02d", i)
		_, err := svc.Pool.Join(ctx, ids[i], "uni-1", "coffee", "")
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for round := 0; round < 3; round++ {
		for _, id := range ids {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := svc.Engine.TryMatch(ctx, id)
				if err != nil {
					assert.ErrorIs(t, err, apperr.ErrNotInPool)
				}
			}(id)
		}
	}
	wg.Wait()

	paired := 0
	now := time.Now()
	for _, id := range ids {
		room, err := store.GetCurrentRoomForUser(ctx, id, now)
		require.NoError(t, err)
		if room == nil {
			mine, err := svc.Pool.Mine(ctx, id)
			require.NoError(t, err)
			assert.NotNil(t, mine, "%s is neither paired nor pooled", id)
			continue
		}
		assert.NotEqual(t, id, room.PartnerOf(id))
		paired++
	}

	// Every room holds two distinct users, so a double pairing would leave more
	// rooms than half the paired users.
	st, err := store.Stats(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, paired/2, st.LockedRooms)
	assert.EqualValues(t, users-paired, st.PoolEntries)
}

func TestCurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.svc.Engine.Current(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, view)

	chatID := f.pair(t)
	view, err = f.svc.Engine.Current(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, chatID, view.ID)
	assert.Equal(t, models.RoomLocked, view.Status)

	f.clock.Advance(config.DefaultChatTTL)
	view, err = f.svc.Engine.Current(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, view)
}
