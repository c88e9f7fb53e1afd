package core

import (
	"time"

	"github.com/dkeye/Jukebox/internal/domain"
)

// ParticipantDTO is the public identity of a participant.
type ParticipantDTO struct {
	ID     domain.ParticipantID `json:"id"`
	Name   string               `json:"name"`
	Avatar string               `json:"avatar,omitempty"`
}

func participantDTO(p *domain.Participant) ParticipantDTO {
	return ParticipantDTO{ID: p.ID, Name: p.Name, Avatar: p.Avatar}
}

// VoteDTO annotates a vote with the voter's public identity.
type VoteDTO struct {
	domain.Vote
	Participant ParticipantDTO `json:"participant"`
}

// SongDTO is a queued song with its current score and votes.
type SongDTO struct {
	domain.Song
	Score int       `json:"score"`
	Votes []VoteDTO `json:"votes"`
}

// RoomSnapshot is a read-only copy of a room, with the queue ranked at the
// moment the snapshot was taken.
type RoomSnapshot struct {
	Code             domain.RoomCode      `json:"code"`
	Name             string               `json:"name"`
	CreatorID        domain.ParticipantID `json:"creatorId"`
	CreatedAt        time.Time            `json:"createdAt"`
	Participants     []domain.Participant `json:"participants"`
	ParticipantCount int                  `json:"participantCount"`
	Queue            []SongDTO            `json:"queue"`
	CurrentlyPlaying *SongDTO             `json:"currentlyPlaying"`
	IsActive         bool                 `json:"isActive"`
}

type RoomInfo struct {
	Code             domain.RoomCode `json:"code"`
	Name             string          `json:"name"`
	ParticipantCount int             `json:"participantCount"`
	IsActive         bool            `json:"isActive"`
	CreatedAt        time.Time       `json:"createdAt"`
}
