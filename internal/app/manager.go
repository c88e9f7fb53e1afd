package app

import (
	"fmt"
	"time"

	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultRetention = 24 * time.Hour

type Created struct {
	RoomCode      domain.RoomCode      `json:"roomCode"`
	ParticipantID domain.ParticipantID `json:"participantId"`
	Room          core.RoomSnapshot    `json:"room"`
}

type Joined struct {
	ParticipantID domain.ParticipantID `json:"participantId"`
	Room          core.RoomSnapshot    `json:"room"`
}

type SongAdded struct {
	Song  core.SongDTO   `json:"song"`
	Queue []core.SongDTO `json:"queue"`
}

type VoteCast struct {
	Vote  core.VoteDTO   `json:"vote"`
	Votes []core.VoteDTO `json:"votes"`
	Queue []core.SongDTO `json:"queue"`
}

type Left struct {
	Participant      core.ParticipantDTO `json:"participant"`
	ParticipantCount int                 `json:"participantCount"`
	IsActive         bool                `json:"isActive"`
}

// Manager drives the room lifecycle. Every mutation runs inside the room's
// critical section and publishes exactly one event from there, so a room's
// event order is its mutation order.
type Manager struct {
	Store     *Store
	Publisher core.Publisher
	Retention time.Duration
	Now       func() time.Time
}

func NewManager(store *Store, pub core.Publisher) *Manager {
	return &Manager{
		Store:     store,
		Publisher: pub,
		Retention: DefaultRetention,
		Now:       time.Now,
	}
}

func (m *Manager) publish(code domain.RoomCode, event string, payload any) {
	if m.Publisher == nil {
		return
	}
	m.Publisher.Publish(core.ChannelKey(code), event, payload)
}

func requireMember(r *core.Room, pid domain.ParticipantID) (*domain.Participant, error) {
	p, ok := r.Participant(pid)
	if !ok {
		return nil, fmt.Errorf("%w: participant %s is not a member of room %s", domain.ErrForbidden, pid, r.Code)
	}
	return p, nil
}

func requireActive(r *core.Room) error {
	if !r.IsActive() {
		return fmt.Errorf("%w: %s", domain.ErrInactiveRoom, r.Code)
	}
	return nil
}

func (m *Manager) Create(roomName, creatorName, creatorAvatar string) (*Created, error) {
	name, err := domain.ValidateRoomName(roomName)
	if err != nil {
		return nil, err
	}
	now := m.Now()
	creator, err := domain.NewParticipant(creatorName, creatorAvatar, now)
	if err != nil {
		return nil, err
	}

	var res Created
	err = m.Store.Create(
		func(code domain.RoomCode) *core.Room { return core.NewRoom(code, name, creator, now) },
		func(r *core.Room) error {
			res = Created{RoomCode: r.Code, ParticipantID: creator.ID, Room: r.Snapshot()}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.lifecycle").Str("room", string(res.RoomCode)).Str("participant", string(creator.ID)).Msg("room created")
	return &res, nil
}

func (m *Manager) Join(code domain.RoomCode, name, avatar string) (*Joined, error) {
	var res Joined
	err := m.Store.With(code, func(r *core.Room) error {
		if err := requireActive(r); err != nil {
			return err
		}
		p, err := domain.NewParticipant(name, avatar, m.Now())
		if err != nil {
			return err
		}
		r.AddParticipant(p)
		m.Store.bind(p.ID, r.Code)

		res = Joined{ParticipantID: p.ID, Room: r.Snapshot()}
		m.publish(r.Code, core.EventParticipantJoined, core.ParticipantJoined{
			Participant:      r.PublicParticipant(p.ID),
			ParticipantCount: r.ParticipantCount(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.lifecycle").Str("room", string(code)).Str("participant", string(res.ParticipantID)).Msg("participant joined")
	return &res, nil
}

func (m *Manager) AddSong(code domain.RoomCode, pid domain.ParticipantID, fields domain.SongFields) (*SongAdded, error) {
	var res SongAdded
	err := m.Store.With(code, func(r *core.Room) error {
		if _, err := requireMember(r, pid); err != nil {
			return err
		}
		if err := requireActive(r); err != nil {
			return err
		}
		song, err := domain.NewSong(fields, pid, m.Now())
		if err != nil {
			return err
		}
		r.AddSong(song)

		queue := r.RankedQueue()
		var added core.SongDTO
		for _, s := range queue {
			if s.ID == song.ID {
				added = s
				break
			}
		}
		res = SongAdded{Song: added, Queue: queue}
		m.publish(r.Code, core.EventQueueUpdated, core.QueueUpdated{
			Queue:   queue,
			Song:    added,
			AddedBy: r.PublicParticipant(pid),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.lifecycle").Str("room", string(code)).Str("song", string(res.Song.ID)).Msg("song added")
	return &res, nil
}

func (m *Manager) CastVote(code domain.RoomCode, pid domain.ParticipantID, songID domain.SongID, direction string) (*VoteCast, error) {
	var res VoteCast
	var dir domain.Direction
	err := m.Store.With(code, func(r *core.Room) error {
		if _, err := requireMember(r, pid); err != nil {
			return err
		}
		var err error
		if dir, err = domain.ParseDirection(direction); err != nil {
			return err
		}
		if err := requireActive(r); err != nil {
			return err
		}
		vote, err := r.CastVote(songID, pid, dir, m.Now())
		if err != nil {
			return err
		}

		voteDTO := core.VoteDTO{Vote: vote, Participant: r.PublicParticipant(pid)}
		res = VoteCast{Vote: voteDTO, Votes: r.VotesOf(songID), Queue: r.RankedQueue()}
		m.publish(r.Code, core.EventVoteUpdated, core.VoteUpdated{
			SongID:      songID,
			Vote:        voteDTO,
			Participant: voteDTO.Participant,
			Votes:       res.Votes,
			Queue:       res.Queue,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.lifecycle").Str("room", string(code)).Str("song", string(songID)).Str("participant", string(pid)).Str("direction", string(dir)).Msg("vote cast")
	return &res, nil
}

func (m *Manager) Leave(code domain.RoomCode, pid domain.ParticipantID) (*Left, error) {
	var res Left
	err := m.Store.With(code, func(r *core.Room) error {
		p, err := r.RemoveParticipant(pid)
		if err != nil {
			return err
		}
		m.Store.unbind(pid)

		res = Left{
			Participant:      core.ParticipantDTO{ID: p.ID, Name: p.Name, Avatar: p.Avatar},
			ParticipantCount: r.ParticipantCount(),
			IsActive:         r.IsActive(),
		}
		m.publish(r.Code, core.EventParticipantLeft, core.ParticipantLeft(res))
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.lifecycle").Str("room", string(code)).Str("participant", string(pid)).Bool("active", res.IsActive).Msg("participant left")
	return &res, nil
}

// RoomState returns a freshly ranked snapshot. An empty requester skips the
// membership check.
func (m *Manager) RoomState(code domain.RoomCode, requester domain.ParticipantID) (*core.RoomSnapshot, error) {
	var snap core.RoomSnapshot
	err := m.Store.With(code, func(r *core.Room) error {
		if requester != "" {
			if _, err := requireMember(r, requester); err != nil {
				return err
			}
		}
		snap = r.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Exists reports ErrNotFound for unknown or swept rooms.
func (m *Manager) Exists(code domain.RoomCode) error {
	return m.Store.With(code, func(*core.Room) error { return nil })
}

func (m *Manager) ListRooms() []core.RoomInfo {
	return m.Store.List()
}

// Locate reports the room a participant belongs to.
func (m *Manager) Locate(pid domain.ParticipantID) (domain.RoomCode, bool) {
	return m.Store.RoomOf(pid)
}

// ExpirySweep removes inactive rooms and rooms older than Retention. No
// events are published.
func (m *Manager) ExpirySweep() []domain.RoomCode {
	removed := m.Store.Sweep(m.Now(), m.Retention)
	log.Info().Str("module", "app.lifecycle").Int("removed", len(removed)).Int("remaining", m.Store.Len()).Msg("expiry sweep")
	return removed
}
