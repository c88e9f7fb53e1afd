package core

import (
	"time"

	"github.com/dkeye/Jukebox/internal/domain"
)

// VoteLedger holds at most one vote per (participant, song). It is not
// threadsafe; the owning room's lock guards it.
type VoteLedger struct {
	votes map[domain.SongID][]domain.Vote
}

func NewVoteLedger() *VoteLedger {
	return &VoteLedger{votes: make(map[domain.SongID][]domain.Vote)}
}

// Track starts an empty vote list for a newly queued song.
func (l *VoteLedger) Track(songID domain.SongID) {
	if _, ok := l.votes[songID]; !ok {
		l.votes[songID] = []domain.Vote{}
	}
}

// Tracks reports whether the song was ever queued.
func (l *VoteLedger) Tracks(songID domain.SongID) bool {
	_, ok := l.votes[songID]
	return ok
}

// CastVote replaces any earlier vote by pid on songID. Last write wins.
func (l *VoteLedger) CastVote(songID domain.SongID, pid domain.ParticipantID, dir domain.Direction, at time.Time) domain.Vote {
	v := domain.Vote{ParticipantID: pid, SongID: songID, Direction: dir, CastAt: at}
	kept := l.votes[songID][:0:0]
	for _, old := range l.votes[songID] {
		if old.ParticipantID != pid {
			kept = append(kept, old)
		}
	}
	l.votes[songID] = append(kept, v)
	return v
}

// Score sums +1 per up vote and -1 per down vote. Unknown songs score 0.
func (l *VoteLedger) Score(songID domain.SongID) int {
	score := 0
	for _, v := range l.votes[songID] {
		score += v.Direction.Weight()
	}
	return score
}

// Votes returns a copy of the votes on songID in cast order.
func (l *VoteLedger) Votes(songID domain.SongID) []domain.Vote {
	src := l.votes[songID]
	out := make([]domain.Vote, len(src))
	copy(out, src)
	return out
}

// RemoveParticipantVotes deletes every vote cast by pid and returns how many
// were removed.
func (l *VoteLedger) RemoveParticipantVotes(pid domain.ParticipantID) int {
	removed := 0
	for songID, votes := range l.votes {
		kept := votes[:0]
		for _, v := range votes {
			if v.ParticipantID == pid {
				removed++
				continue
			}
			kept = append(kept, v)
		}
		l.votes[songID] = kept
	}
	return removed
}

// RemoveSong drops all votes of a song leaving the queue.
func (l *VoteLedger) RemoveSong(songID domain.SongID) {
	delete(l.votes, songID)
}
