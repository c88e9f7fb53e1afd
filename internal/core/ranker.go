package core

import (
	"slices"

	"github.com/dkeye/Jukebox/internal/domain"
)

// Scorer is the read side of a VoteLedger.
type Scorer interface {
	Score(songID domain.SongID) int
}

// Rank returns a new slice ordered by descending score. Equal scores keep
// their queue order, so earlier additions surface first. Neither queue nor
// scorer is modified.
func Rank(queue []*domain.Song, scorer Scorer) []*domain.Song {
	scores := make(map[domain.SongID]int, len(queue))
	for _, s := range queue {
		scores[s.ID] = scorer.Score(s.ID)
	}
	out := slices.Clone(queue)
	slices.SortStableFunc(out, func(a, b *domain.Song) int {
		return scores[b.ID] - scores[a.ID]
	})
	return out
}
