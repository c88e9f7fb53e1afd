// Package domain contains entity without logic, just meta-data
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxNameLen = 64

type ParticipantID string

// Participant is a room member. It has no identity outside its room.
type Participant struct {
	ID       ParticipantID `json:"id"`
	Name     string        `json:"name"`
	Avatar   string        `json:"avatar,omitempty"`
	JoinedAt time.Time     `json:"joinedAt"`
}

// NewParticipant validates the display name and allocates a fresh id.
func NewParticipant(name, avatar string, now time.Time) (*Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(name) > MaxNameLen {
		return nil, fmt.Errorf("%w: name too long", ErrValidation)
	}
	return &Participant{
		ID:       ParticipantID(uuid.NewString()),
		Name:     name,
		Avatar:   strings.TrimSpace(avatar),
		JoinedAt: now,
	}, nil
}
