package domain

import (
	"fmt"
	"time"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts only "up" and "down".
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down:
		return d, nil
	default:
		return "", fmt.Errorf("%w: invalid vote direction %q", ErrValidation, s)
	}
}

// Weight is the contribution of a vote to a song's score.
func (d Direction) Weight() int {
	if d == Up {
		return 1
	}
	return -1
}

type Vote struct {
	ParticipantID ParticipantID `json:"participantId"`
	SongID        SongID        `json:"songId"`
	Direction     Direction     `json:"direction"`
	CastAt        time.Time     `json:"castAt"`
}
