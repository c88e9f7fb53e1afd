package core

import "github.com/dkeye/Jukebox/internal/domain"

const (
	EventParticipantJoined = "participant-joined"
	EventParticipantLeft   = "participant-left"
	EventQueueUpdated      = "queue-updated"
	EventVoteUpdated       = "vote-updated"
)

// ChannelKey is the broadcast channel of a room.
func ChannelKey(code domain.RoomCode) string {
	return "room-" + string(code)
}

type ParticipantJoined struct {
	Participant      ParticipantDTO `json:"participant"`
	ParticipantCount int            `json:"participantCount"`
}

type ParticipantLeft struct {
	Participant      ParticipantDTO `json:"participant"`
	ParticipantCount int            `json:"participantCount"`
	IsActive         bool           `json:"isActive"`
}

type QueueUpdated struct {
	Queue   []SongDTO      `json:"queue"`
	Song    SongDTO        `json:"song"`
	AddedBy ParticipantDTO `json:"addedBy"`
}

type VoteUpdated struct {
	SongID      domain.SongID  `json:"songId"`
	Vote        VoteDTO        `json:"vote"`
	Participant ParticipantDTO `json:"participant"`
	Votes       []VoteDTO      `json:"votes"`
	Queue       []SongDTO      `json:"queue"`
}
