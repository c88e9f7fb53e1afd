package core

import (
	"fmt"
	"slices"
	"time"

	"github.com/dkeye/Jukebox/internal/domain"
)

// Room is the aggregate for one voting session. It is not threadsafe: the
// store serializes every call on a given room.
type Room struct {
	Code      domain.RoomCode
	Name      string
	CreatorID domain.ParticipantID
	CreatedAt time.Time

	participants map[domain.ParticipantID]*domain.Participant
	queue        []*domain.Song
	ledger       *VoteLedger
	// Reserved: nothing advances playback yet.
	nowPlaying *domain.Song
	active     bool
}

func NewRoom(code domain.RoomCode, name string, creator *domain.Participant, now time.Time) *Room {
	r := &Room{
		Code:         code,
		Name:         name,
		CreatorID:    creator.ID,
		CreatedAt:    now,
		participants: make(map[domain.ParticipantID]*domain.Participant),
		ledger:       NewVoteLedger(),
		active:       true,
	}
	r.participants[creator.ID] = creator
	return r
}

func (r *Room) IsActive() bool        { return r.active }
func (r *Room) ParticipantCount() int { return len(r.participants) }

func (r *Room) Participant(id domain.ParticipantID) (*domain.Participant, bool) {
	p, ok := r.participants[id]
	return p, ok
}

func (r *Room) ParticipantIDs() []domain.ParticipantID {
	out := make([]domain.ParticipantID, 0, len(r.participants))
	for id := range r.participants {
		out = append(out, id)
	}
	return out
}

// Expired reports whether the sweeper may delete the room.
func (r *Room) Expired(now time.Time, retention time.Duration) bool {
	return !r.active || now.Sub(r.CreatedAt) > retention
}

func (r *Room) AddParticipant(p *domain.Participant) {
	r.participants[p.ID] = p
}

// RemoveParticipant drops the member and every vote they cast. The room
// goes inactive for good once the creator leaves or nobody is left.
func (r *Room) RemoveParticipant(id domain.ParticipantID) (*domain.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, fmt.Errorf("%w: participant %s is not in room %s", domain.ErrNotFound, id, r.Code)
	}
	delete(r.participants, id)
	r.ledger.RemoveParticipantVotes(id)
	if id == r.CreatorID || len(r.participants) == 0 {
		r.active = false
	}
	return p, nil
}

func (r *Room) AddSong(s *domain.Song) {
	r.queue = append(r.queue, s)
	r.ledger.Track(s.ID)
}

func (r *Room) CastVote(songID domain.SongID, pid domain.ParticipantID, dir domain.Direction, now time.Time) (domain.Vote, error) {
	if !r.ledger.Tracks(songID) {
		return domain.Vote{}, fmt.Errorf("%w: song %s is not in room %s", domain.ErrNotFound, songID, r.Code)
	}
	return r.ledger.CastVote(songID, pid, dir, now), nil
}

func (r *Room) Score(songID domain.SongID) int { return r.ledger.Score(songID) }

// RankedQueue ranks the queue now and annotates each song.
func (r *Room) RankedQueue() []SongDTO {
	ranked := Rank(r.queue, r.ledger)
	out := make([]SongDTO, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, r.songDTO(s))
	}
	return out
}

// VotesOf returns the current votes on a song with voter identities.
func (r *Room) VotesOf(songID domain.SongID) []VoteDTO {
	votes := r.ledger.Votes(songID)
	out := make([]VoteDTO, 0, len(votes))
	for _, v := range votes {
		out = append(out, r.voteDTO(v))
	}
	return out
}

func (r *Room) PublicParticipant(id domain.ParticipantID) ParticipantDTO {
	if p, ok := r.participants[id]; ok {
		return participantDTO(p)
	}
	return ParticipantDTO{ID: id}
}

func (r *Room) Snapshot() RoomSnapshot {
	parts := make([]domain.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		parts = append(parts, *p)
	}
	slices.SortFunc(parts, func(a, b domain.Participant) int {
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	snap := RoomSnapshot{
		Code:             r.Code,
		Name:             r.Name,
		CreatorID:        r.CreatorID,
		CreatedAt:        r.CreatedAt,
		Participants:     parts,
		ParticipantCount: len(parts),
		Queue:            r.RankedQueue(),
		IsActive:         r.active,
	}
	if r.nowPlaying != nil {
		np := r.songDTO(r.nowPlaying)
		snap.CurrentlyPlaying = &np
	}
	return snap
}

func (r *Room) Info() RoomInfo {
	return RoomInfo{
		Code:             r.Code,
		Name:             r.Name,
		ParticipantCount: len(r.participants),
		IsActive:         r.active,
		CreatedAt:        r.CreatedAt,
	}
}

func (r *Room) songDTO(s *domain.Song) SongDTO {
	return SongDTO{Song: *s, Score: r.ledger.Score(s.ID), Votes: r.VotesOf(s.ID)}
}

func (r *Room) voteDTO(v domain.Vote) VoteDTO {
	return VoteDTO{Vote: v, Participant: r.PublicParticipant(v.ParticipantID)}
}
