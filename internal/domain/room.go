package domain

import (
	"fmt"
	"strings"
)

type RoomCode string

// NormalizeCode trims and upper-cases a user-typed room code.
func NormalizeCode(s string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(s)))
}

// ValidateRoomName returns the trimmed name or a validation error.
func ValidateRoomName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: room name is required", ErrValidation)
	}
	if len(name) > MaxNameLen {
		return "", fmt.Errorf("%w: room name too long", ErrValidation)
	}
	return name, nil
}
