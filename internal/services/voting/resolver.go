package voting

import (
	"strconv"
)

// Plurality picks the choice with the most votes. Ties go to the choice
// declared first in the vocabulary.
func Plurality(vocabulary Vocabulary, ballots []Ballot) *Result {
	tally := tallyBallots(vocabulary, ballots)
	result := &Result{Tally: tally, Ballots: len(ballots)}
	if len(ballots) == 0 {
		return result
	}

	best := -1
	for _, c := range tally {
		if c.Votes > best {
			best = c.Votes
			result.Winner = c.Choice
		}
	}
	return result
}

// Closest picks the numeric ballot nearest to target. Ties go to the
// earliest ballot. Non-numeric ballots are ignored.
func Closest(target int) Resolver {
	return func(vocabulary Vocabulary, ballots []Ballot) *Result {
		result := &Result{Tally: tallyBallots(vocabulary, ballots), Ballots: len(ballots)}

		bestDistance := -1
		for _, b := range ballots {
			n, err := strconv.Atoi(b.Choice)
			if err != nil {
				continue
			}
			d := Distance(n, target)
			if bestDistance < 0 || d < bestDistance {
				bestDistance = d
				result.Winner = b.Choice
				result.Voter = b.Identity
			}
		}
		return result
	}
}

// Distance is the absolute difference between a and b
func Distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// tallyBallots counts votes in declared order, followed by undeclared
// choices in first-seen order
func tallyBallots(vocabulary Vocabulary, ballots []Ballot) []Count {
	var tally []Count
	index := make(map[string]int)

	if vocabulary != nil {
		for _, token := range vocabulary.Tokens() {
			index[token] = len(tally)
			tally = append(tally, Count{Choice: token})
		}
	}

	for _, b := range ballots {
		i, ok := index[b.Choice]
		if !ok {
			i = len(tally)
			index[b.Choice] = i
			tally = append(tally, Count{Choice: b.Choice})
		}
		tally[i].Votes++
	}
	return tally
}
