package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkeye/Jukebox/internal/domain"
)

type fixedScores map[domain.SongID]int

func (f fixedScores) Score(id domain.SongID) int { return f[id] }

func songs(ids ...domain.SongID) []*domain.Song {
	out := make([]*domain.Song, 0, len(ids))
	for _, id := range ids {
		out = append(out, &domain.Song{ID: id, Title: string(id)})
	}
	return out
}

func ids(ss []*domain.Song) []domain.SongID {
	out := make([]domain.SongID, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.ID)
	}
	return out
}

func TestRank(t *testing.T) {
	tests := []struct {
		name   string
		queue  []domain.SongID
		scores fixedScores
		want   []domain.SongID
	}{
		{"empty", nil, nil, []domain.SongID{}},
		{"no votes keeps insertion order", []domain.SongID{"a", "b", "c"}, nil, []domain.SongID{"a", "b", "c"}},
		{"descending score", []domain.SongID{"a", "b", "c"}, fixedScores{"a": -1, "b": 2, "c": 1}, []domain.SongID{"b", "c", "a"}},
		{"ties keep insertion order", []domain.SongID{"a", "b", "c", "d"}, fixedScores{"a": 0, "b": 1, "c": 0, "d": 1}, []domain.SongID{"b", "d", "a", "c"}},
		{"negative ties", []domain.SongID{"a", "b"}, fixedScores{"a": -1, "b": -1}, []domain.SongID{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(songs(tt.queue...), tt.scores)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestRank_DoesNotMutateQueue(t *testing.T) {
	queue := songs("a", "b", "c")
	Rank(queue, fixedScores{"c": 5})
	assert.Equal(t, []domain.SongID{"a", "b", "c"}, ids(queue))
}

func TestRank_Idempotent(t *testing.T) {
	queue := songs("a", "b", "c", "d")
	scores := fixedScores{"a": 1, "b": 1, "c": 3, "d": -2}
	first := ids(Rank(queue, scores))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ids(Rank(queue, scores)))
	}
}
