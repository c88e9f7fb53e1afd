package app

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
	"github.com/rs/zerolog/log"
)

const maxCodeAttempts = 64

var ErrCodeSpaceExhausted = errors.New("could not allocate a unique room code")

// roomEntry pairs a room with the lock that serializes every operation on it.
type roomEntry struct {
	mu      sync.Mutex
	room    *core.Room
	removed bool
}

// Store is the single owner of all rooms and of the participant -> room
// index. Operations on one room are mutually exclusive; different rooms
// only share the short map lookups.
//
// Lock order is always room entry first, then Store.mu.
type Store struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]*roomEntry
	index map[domain.ParticipantID]domain.RoomCode
	codes CodeGenerator
}

func NewStore(codes CodeGenerator) *Store {
	if codes == nil {
		codes = RandomCodes(6)
	}
	return &Store{
		rooms: make(map[domain.RoomCode]*roomEntry),
		index: make(map[domain.ParticipantID]domain.RoomCode),
		codes: codes,
	}
}

// Create allocates a fresh code, stores the room built by newRoom and then
// runs fn under that room's lock before anyone else can touch it.
func (s *Store) Create(newRoom func(domain.RoomCode) *core.Room, fn func(*core.Room) error) error {
	e := &roomEntry{}
	e.mu.Lock()
	defer e.mu.Unlock()

	s.mu.Lock()
	code, err := s.freeCodeLocked()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	e.room = newRoom(code)
	s.rooms[code] = e
	s.index[e.room.CreatorID] = code
	s.mu.Unlock()

	log.Info().Str("module", "app.store").Str("room", string(code)).Msg("room stored")
	return fn(e.room)
}

func (s *Store) freeCodeLocked() (domain.RoomCode, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := s.codes()
		if _, taken := s.rooms[code]; !taken {
			return code, nil
		}
		log.Debug().Str("module", "app.store").Str("room", string(code)).Msg("room code collision, regenerating")
	}
	return "", ErrCodeSpaceExhausted
}

// With runs fn while holding the room's lock.
func (s *Store) With(code domain.RoomCode, fn func(*core.Room) error) error {
	s.mu.RLock()
	e, ok := s.rooms[code]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: room %s", domain.ErrNotFound, code)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return fmt.Errorf("%w: room %s", domain.ErrNotFound, code)
	}
	return fn(e.room)
}

// bind and unbind must be called with the room's lock held.
func (s *Store) bind(pid domain.ParticipantID, code domain.RoomCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index[pid] = code
}

func (s *Store) unbind(pid domain.ParticipantID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.index, pid)
}

// RoomOf looks up the room a participant currently belongs to.
func (s *Store) RoomOf(pid domain.ParticipantID) (domain.RoomCode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.index[pid]
	return code, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

func (s *Store) entries() []*roomEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*roomEntry, 0, len(s.rooms))
	for _, e := range s.rooms {
		out = append(out, e)
	}
	return out
}

// List returns room summaries ordered by creation time.
func (s *Store) List() []core.RoomInfo {
	entries := s.entries()
	out := make([]core.RoomInfo, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed {
			out = append(out, e.room.Info())
		}
		e.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.Code < b.Code {
			return -1
		}
		if a.Code > b.Code {
			return 1
		}
		return 0
	})
	return out
}

// Sweep deletes every room that is inactive or older than retention,
// together with the index entries of its remaining participants. Each room
// is checked and removed under its own lock.
func (s *Store) Sweep(now time.Time, retention time.Duration) []domain.RoomCode {
	var removed []domain.RoomCode
	for _, e := range s.entries() {
		e.mu.Lock()
		if e.removed || !e.room.Expired(now, retention) {
			e.mu.Unlock()
			continue
		}
		code := e.room.Code
		s.mu.Lock()
		for _, pid := range e.room.ParticipantIDs() {
			if s.index[pid] == code {
				delete(s.index, pid)
			}
		}
		delete(s.rooms, code)
		s.mu.Unlock()
		e.removed = true
		e.mu.Unlock()
		removed = append(removed, code)
	}
	return removed
}
