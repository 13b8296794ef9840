// Package memstore is an in-process storage.Storage. Pool entries live in a go-cache
// whose janitor plays the role of a store-native TTL index; every other collection is
// a plain map. One mutex makes each operation atomic, which is enough for tests and a
// single-node deployment but not for running several servers against one pool.
package memstore

import (
	"blindpair/backend/internal/apperr"
	"blindpair/backend/internal/models"
	"blindpair/backend/internal/storage"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const janitorInterval = time.Minute

type Store struct {
	mu       sync.Mutex
	pool     *cache.Cache
	users    map[string]models.User
	matches  map[string]models.Match
	rooms    map[string]models.ChatRoom
	gates    map[string]models.OpeningMove // keyed by room id
	guesses  map[string][]models.Guess     // keyed by room id
	messages map[string][]models.ChatHistory
	nextMsg  uint
}

var _ storage.Storage = (*Store)(nil)

func New() *Store {
	return &Store{
		pool:     cache.New(cache.NoExpiration, janitorInterval),
		users:    make(map[string]models.User),
		matches:  make(map[string]models.Match),
		rooms:    make(map[string]models.ChatRoom),
		gates:    make(map[string]models.OpeningMove),
		guesses:  make(map[string][]models.Guess),
		messages: make(map[string][]models.ChatHistory),
	}
}

func (s *Store) SaveUser(_ context.Context, user *models.User) error {
	if err := user.BeforeCreate(nil); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	return &u, nil
}

// physicalTTL keeps an entry in the cache until its logical expiry. Reads still
// check ExpiresAt against the caller's clock.
func physicalTTL(entry *models.PoolEntry) time.Duration {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return cache.NoExpiration
	}
	return ttl
}

func (s *Store) UpsertPoolEntry(_ context.Context, entry *models.PoolEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.Set(entry.UserID, *entry, physicalTTL(entry))
	return nil
}

func (s *Store) DeletePoolEntry(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.Delete(userID)
	return nil
}

func (s *Store) liveEntry(userID string, now time.Time) (*models.PoolEntry, bool) {
	v, ok := s.pool.Get(userID)
	if !ok {
		return nil, false
	}
	entry := v.(models.PoolEntry)
	if !entry.IsLive(now) {
		return nil, false
	}
	return &entry, true
}

func (s *Store) GetPoolEntry(_ context.Context, userID string, now time.Time) (*models.PoolEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.liveEntry(userID, now)
	if !ok {
		return nil, nil
	}
	return entry, nil
}

// peers returns live entries of institution+mood ordered oldest first.
func (s *Store) peers(institutionID, mood string, skip map[string]bool, now time.Time) []models.PoolEntry {
	var out []models.PoolEntry
	for _, item := range s.pool.Items() {
		entry := item.Object.(models.PoolEntry)
		if skip[entry.UserID] || !entry.IsLive(now) {
			continue
		}
		if entry.InstitutionID != institutionID || entry.Mood != mood {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

func (s *Store) FindPoolCandidate(_ context.Context, entry *models.PoolEntry, exclude []string, now time.Time) (*models.PoolEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	skip := map[string]bool{entry.UserID: true}
	for _, id := range exclude {
		skip[id] = true
	}
	peers := s.peers(entry.InstitutionID, entry.Mood, skip, now)
	if len(peers) == 0 {
		return nil, nil
	}
	return &peers[0], nil
}

func (s *Store) ListPoolPeers(_ context.Context, institutionID, mood, excludeUserID string, now time.Time, limit int) ([]models.PoolEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	peers := s.peers(institutionID, mood, map[string]bool{excludeUserID: true}, now)
	if limit > 0 && len(peers) > limit {
		peers = peers[:limit]
	}
	return peers, nil
}

func (s *Store) ClaimPair(_ context.Context, p *storage.Pairing, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, okA := s.liveEntry(p.UserAID, now)
	_, okB := s.liveEntry(p.UserBID, now)
	if !okA || !okB {
		return apperr.ErrPairLost
	}
	if _, exists := s.rooms[p.Room.RoomID]; exists {
		return errors.New("memstore: duplicate room id")
	}

	s.pool.Delete(p.UserAID)
	s.pool.Delete(p.UserBID)
	p.Room.CreatedAt, p.Room.UpdatedAt = now, now
	p.Gate.CreatedAt, p.Gate.UpdatedAt = now, now
	p.Match.CreatedAt = now
	s.matches[p.Match.ID] = p.Match
	s.rooms[p.Room.RoomID] = p.Room
	s.gates[p.Room.RoomID] = cloneGate(p.Gate)
	return nil
}

func (s *Store) GetRoomByID(_ context.Context, roomID string) (*models.ChatRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, apperr.ErrChatNotFound
	}
	return &room, nil
}

func (s *Store) GetOpeningMove(_ context.Context, roomID string) (*models.OpeningMove, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate, ok := s.gates[roomID]
	if !ok {
		return nil, apperr.ErrGateNotFound
	}
	g := cloneGate(gate)
	return &g, nil
}

func (s *Store) GetGuesses(_ context.Context, roomID string) ([]models.Guess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Guess(nil), s.guesses[roomID]...), nil
}

func (s *Store) GetCurrentRoomForUser(_ context.Context, userID string, now time.Time) (*models.ChatRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var current *models.ChatRoom
	for _, room := range s.rooms {
		if !room.HasParticipant(userID) || room.EffectiveStatus(now) == models.RoomExpired {
			continue
		}
		if current == nil || room.CreatedAt.After(current.CreatedAt) {
			r := room
			current = &r
		}
	}
	return current, nil
}

func (s *Store) MutateRoom(_ context.Context, roomID string, fn func(st *storage.RoomState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return apperr.ErrChatNotFound
	}
	st := storage.RoomState{
		Room:    room,
		Guesses: append([]models.Guess(nil), s.guesses[roomID]...),
	}
	if gate, ok := s.gates[roomID]; ok {
		g := cloneGate(gate)
		st.Gate = &g
	}

	if err := fn(&st); err != nil {
		if errors.Is(err, storage.ErrSkipWrite) {
			return nil
		}
		return err
	}

	room.Status = st.Room.Status
	room.Anonymous = st.Room.Anonymous
	room.RevealedAt = st.Room.RevealedAt
	room.UpdatedAt = time.Now()
	s.rooms[roomID] = room
	if st.Gate != nil {
		s.gates[roomID] = cloneGate(*st.Gate)
	}
	s.guesses[roomID] = st.Guesses
	return nil
}

func (s *Store) SaveMessage(_ context.Context, msg *models.ChatHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMsg++
	msg.ID = s.nextMsg
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.UpdatedAt = msg.CreatedAt
	s.messages[msg.RoomID] = append(s.messages[msg.RoomID], *msg)
	return nil
}

func (s *Store) GetChatHistory(_ context.Context, roomID string, limit int) ([]models.ChatHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.messages[roomID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return append([]models.ChatHistory(nil), all...), nil
}

func (s *Store) DeleteExpiredPoolEntries(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, item := range s.pool.Items() {
		if entry := item.Object.(models.PoolEntry); !entry.IsLive(now) {
			s.pool.Delete(id)
			n++
		}
	}
	return n, nil
}

func (s *Store) ExpireRooms(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, room := range s.rooms {
		if room.Status == models.RoomExpired {
			continue
		}
		expire := !now.Before(room.ExpiresAt)
		if gate, ok := s.gates[id]; ok && room.Status == models.RoomLocked && gate.IsExpired(now) {
			expire = true
		}
		if expire {
			room.Status = models.RoomExpired
			room.UpdatedAt = now
			s.rooms[id] = room
			n++
		}
	}
	return n, nil
}

func (s *Store) ExpireMatches(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, m := range s.matches {
		room, ok := s.rooms[m.RoomID]
		if !ok || room.Status != models.RoomExpired {
			continue
		}
		if m.Advance(models.MatchExpired) {
			s.matches[id] = m
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteSettledOpeningMoves(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for roomID := range s.gates {
		if room, ok := s.rooms[roomID]; ok && room.Status != models.RoomLocked {
			delete(s.gates, roomID)
			n++
		}
	}
	return n, nil
}

func (s *Store) PurgeMatches(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, m := range s.matches {
		if m.Status == models.MatchExpired && m.CreatedAt.Before(before) {
			delete(s.matches, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) Stats(_ context.Context, now time.Time) (*storage.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &storage.Stats{Matches: int64(len(s.matches))}
	for _, item := range s.pool.Items() {
		if entry := item.Object.(models.PoolEntry); entry.IsLive(now) {
			st.PoolEntries++
		}
	}
	for _, room := range s.rooms {
		switch room.EffectiveStatus(now) {
		case models.RoomLocked:
			st.LockedRooms++
		case models.RoomActive:
			st.ActiveRooms++
		}
		if room.IsRevealed() {
			st.Revealed++
		}
	}
	return st, nil
}

// Match returns a stored match record by id.
func (s *Store) Match(id string) (models.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	return m, ok
}

func cloneGate(g models.OpeningMove) models.OpeningMove {
	if g.ChoiceA != nil {
		a := *g.ChoiceA
		g.ChoiceA = &a
	}
	if g.ChoiceB != nil {
		b := *g.ChoiceB
		g.ChoiceB = &b
	}
	return g
}
