package finder

import (
	"strings"

	"github.com/example/faultloc-lite/interaction/domain"
)

// RoundVote counts how often one answer was returned across rounds.
type RoundVote struct {
	// Key identifies the answer: the keys of its interactions, in order.
	Key string

	// Votes is the number of rounds that returned the answer.
	Votes int

	// LastRound is the index of the latest round that returned it.
	LastRound int
}

func answerKey(r *domain.FindResult) string {
	keys := make([]string, len(r.Interactions))
	for i, a := range r.Interactions {
		keys[i] = a.Key()
	}
	return strings.Join(keys, "|")
}

// AggregateByMajority picks the answer returned by most rounds.
// Rounds that found nothing don't vote. Ties go to the answer seen in the
// latest round. It returns -1 if no round found anything.
func AggregateByMajority(results []*domain.FindResult) (winner int, votes []RoundVote) {
	index := make(map[string]int)
	for round, r := range results {
		if !r.Found() {
			continue
		}
		key := answerKey(r)
		i, ok := index[key]
		if !ok {
			i = len(votes)
			index[key] = i
			votes = append(votes, RoundVote{Key: key})
		}
		votes[i].Votes++
		votes[i].LastRound = round
	}

	winner = -1
	best := -1
	for i, v := range votes {
		if best < 0 || v.Votes > votes[best].Votes ||
			(v.Votes == votes[best].Votes && v.LastRound > votes[best].LastRound) {
			best = i
		}
	}
	if best >= 0 {
		winner = votes[best].LastRound
	}
	return winner, votes
}
