package app

import (
	"crypto/rand"

	"github.com/dkeye/Jukebox/internal/domain"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CodeGenerator yields candidate room codes. The store checks uniqueness.
type CodeGenerator func() domain.RoomCode

// RandomCodes returns upper-case alphanumeric codes of the given length.
func RandomCodes(length int) CodeGenerator {
	if length <= 0 {
		length = 6
	}
	// Bytes at or above limit are rejected so every symbol is equally likely.
	limit := byte(256 / len(codeAlphabet) * len(codeAlphabet))
	return func() domain.RoomCode {
		out := make([]byte, 0, length)
		buf := make([]byte, length*2)
		for len(out) < length {
			if _, err := rand.Read(buf); err != nil {
				panic(err)
			}
			for _, b := range buf {
				if b >= limit {
					continue
				}
				out = append(out, codeAlphabet[b%byte(len(codeAlphabet))])
				if len(out) == length {
					break
				}
			}
		}
		return domain.RoomCode(out)
	}
}
