package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SongID string

// SongFields is the caller-supplied part of a Song.
type SongFields struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	AlbumArt  string `json:"albumArt,omitempty"`
	Duration  int    `json:"duration"`
	CatalogID string `json:"catalogId,omitempty"`
}

// Song is immutable once queued. Its rank position is derived, never stored.
type Song struct {
	ID        SongID        `json:"id"`
	Title     string        `json:"title"`
	Artist    string        `json:"artist"`
	AlbumArt  string        `json:"albumArt,omitempty"`
	Duration  int           `json:"duration"`
	CatalogID string        `json:"catalogId,omitempty"`
	AddedBy   ParticipantID `json:"addedBy"`
	AddedAt   time.Time     `json:"addedAt"`
}

func NewSong(f SongFields, by ParticipantID, now time.Time) (*Song, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: song title is required", ErrValidation)
	}
	if f.Duration < 0 {
		return nil, fmt.Errorf("%w: negative duration", ErrValidation)
	}
	return &Song{
		ID:        SongID(uuid.NewString()),
		Title:     title,
		Artist:    strings.TrimSpace(f.Artist),
		AlbumArt:  f.AlbumArt,
		Duration:  f.Duration,
		CatalogID: f.CatalogID,
		AddedBy:   by,
		AddedAt:   now,
	}, nil
}
