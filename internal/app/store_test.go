package app

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
)

func sequence(codes ...domain.RoomCode) CodeGenerator {
	i := 0
	return func() domain.RoomCode {
		c := codes[i%len(codes)]
		i++
		return c
	}
}

func storeRoom(t *testing.T, s *Store, name string, now time.Time) *core.Room {
	t.Helper()
	creator, err := domain.NewParticipant(name, "", now)
	require.NoError(t, err)
	var room *core.Room
	err = s.Create(
		func(code domain.RoomCode) *core.Room { return core.NewRoom(code, name, creator, now) },
		func(r *core.Room) error { room = r; return nil },
	)
	require.NoError(t, err)
	return room
}

func TestRandomCodes(t *testing.T) {
	gen := RandomCodes(6)
	re := regexp.MustCompile(`^[0-9A-Z]{6}$`)
	seen := make(map[domain.RoomCode]bool)
	for i := 0; i < 200; i++ {
		c := gen()
		assert.Regexp(t, re, string(c))
		seen[c] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestStore_CreateRegeneratesOnCollision(t *testing.T) {
	s := NewStore(sequence("AAAAAA", "AAAAAA", "BBBBBB"))
	now := time.Now()

	first := storeRoom(t, s, "one", now)
	second := storeRoom(t, s, "two", now)

	assert.Equal(t, domain.RoomCode("AAAAAA"), first.Code)
	assert.Equal(t, domain.RoomCode("BBBBBB"), second.Code)
	assert.Equal(t, 2, s.Len())
}

func TestStore_CreateGivesUpWhenCodesExhausted(t *testing.T) {
	s := NewStore(sequence("AAAAAA"))
	storeRoom(t, s, "one", time.Now())

	creator, _ := domain.NewParticipant("x", "", time.Now())
	err := s.Create(
		func(code domain.RoomCode) *core.Room { return core.NewRoom(code, "two", creator, time.Now()) },
		func(*core.Room) error { return nil },
	)
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
	assert.Equal(t, 1, s.Len())
}

func TestStore_CreateIndexesCreator(t *testing.T) {
	s := NewStore(nil)
	r := storeRoom(t, s, "one", time.Now())

	code, ok := s.RoomOf(r.CreatorID)
	require.True(t, ok)
	assert.Equal(t, r.Code, code)
}

func TestStore_WithUnknownRoom(t *testing.T) {
	s := NewStore(nil)
	err := s.With("NOPE00", func(*core.Room) error { return nil })
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStore_SweepRemovesExpiredAndIndex(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(sequence("OLD000", "NEW000", "DEAD00"))

	old := storeRoom(t, s, "old", now.Add(-25*time.Hour))
	fresh := storeRoom(t, s, "fresh", now.Add(-time.Hour))
	dead := storeRoom(t, s, "dead", now.Add(-time.Hour))
	require.NoError(t, s.With(dead.Code, func(r *core.Room) error {
		_, err := r.RemoveParticipant(r.CreatorID)
		return err
	}))

	removed := s.Sweep(now, 24*time.Hour)
	assert.ElementsMatch(t, []domain.RoomCode{"OLD000", "DEAD00"}, removed)
	assert.Equal(t, 1, s.Len())

	_, ok := s.RoomOf(old.CreatorID)
	assert.False(t, ok)
	_, ok = s.RoomOf(fresh.CreatorID)
	assert.True(t, ok)

	err := s.With(old.Code, func(*core.Room) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListOrderedByCreation(t *testing.T) {
	now := time.Now()
	s := NewStore(sequence("BBBBBB", "AAAAAA"))
	storeRoom(t, s, "second", now.Add(time.Minute))
	storeRoom(t, s, "first", now)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Name)
	assert.Equal(t, "second", list[1].Name)
	assert.Equal(t, 1, list[0].ParticipantCount)
	assert.True(t, list[0].IsActive)
}
