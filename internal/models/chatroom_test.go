package models_test

import (
	"blindpair/backend/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPair(t *testing.T) {
	a, b := models.CanonicalPair("user_B", "user_A")
	assert.Equal(t, "user_A", a)
	assert.Equal(t, "user_B", b)

	a2, b2 := models.CanonicalPair("user_A", "user_B")
	assert.Equal(t, a, a2)
	assert.Equal(t, b, b2)
}

func TestChatRoomParticipants(t *testing.T) {
	room := &models.ChatRoom{User1ID: "user_A", User2ID: "user_B"}

	assert.True(t, room.HasParticipant("user_A"))
	assert.True(t, room.HasParticipant("user_B"))
	assert.False(t, room.HasParticipant("user_C"))
	assert.False(t, room.HasParticipant(""))

	assert.Equal(t, "user_B", room.PartnerOf("user_A"))
	assert.Equal(t, "user_A", room.PartnerOf("user_B"))
	assert.Empty(t, room.PartnerOf("user_C"))

	slot, ok := room.SlotOf("user_B")
	assert.True(t, ok)
	assert.Equal(t, models.SlotB, slot)
	_, ok = room.SlotOf("user_C")
	assert.False(t, ok)
}

func TestChatRoomEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	room := &models.ChatRoom{Status: models.RoomActive, ExpiresAt: now.Add(time.Minute)}

	assert.Equal(t, models.RoomActive, room.EffectiveStatus(now))
	assert.Equal(t, models.RoomExpired, room.EffectiveStatus(now.Add(time.Minute)))
	assert.Equal(t, models.RoomActive, room.Status, "EffectiveStatus must not mutate the room")
}

func TestOpeningMoveRecord(t *testing.T) {
	gate := &models.OpeningMove{}

	gate.Record(models.SlotA, "wave")
	assert.False(t, gate.Complete())

	gate.Record(models.SlotA, "joke")
	choice, ok := gate.Choice(models.SlotA)
	assert.True(t, ok)
	assert.Equal(t, "joke", choice, "resubmitting overwrites the slot")

	_, ok = gate.Choice(models.SlotB)
	assert.False(t, ok)

	gate.Record(models.SlotB, "question")
	assert.True(t, gate.Complete())
}

func TestMatchAdvanceIsMonotonic(t *testing.T) {
	m := &models.Match{Status: models.MatchPending}

	assert.True(t, m.Advance(models.MatchActive))
	assert.True(t, m.Advance(models.MatchExpired))
	assert.False(t, m.Advance(models.MatchActive))
	assert.Equal(t, models.MatchExpired, m.Status)
}

func TestPoolHelpers(t *testing.T) {
	assert.Equal(t, "late night coffee", models.NormalizeMood("  Late  Night\tCOFFEE "))

	long := ""
	for i := 0; i < 100; i++ {
		long += "ж"
	}
	assert.Equal(t, models.MaxNoteLength, len([]rune(models.TrimNote(long))))
	assert.Equal(t, "hi", models.TrimNote("  hi  "))

	now := time.Now()
	entry := &models.PoolEntry{ExpiresAt: now.Add(time.Second)}
	assert.True(t, entry.IsLive(now))
	assert.False(t, entry.IsLive(now.Add(time.Second)))
}
