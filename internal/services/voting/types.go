package voting

import (
	"time"
)

// Ballot is one identity's vote
type Ballot struct {
	Identity string
	Choice   string
	CastAt   time.Time
}

// Condition decides from the ballots so far whether a window closes early
type Condition func(ballots []Ballot) bool

// Resolver picks the winner of a closed window
type Resolver func(vocabulary Vocabulary, ballots []Ballot) *Result

// Count is the number of votes one token received
type Count struct {
	Choice string
	Votes  int
}

// Result is the outcome of a resolved window
type Result struct {
	// WindowID identifies the resolved window
	WindowID string

	// Winner is the winning token, empty when nobody voted
	Winner string

	// Voter is the identity credited with the win, when the resolver picks one
	Voter string

	// Tally lists vote counts in vocabulary order
	Tally []Count

	// Ballots is the number of ballots cast
	Ballots int

	// Early is set when an early-resolve condition closed the window
	Early bool
}

// HasWinner reports whether anybody voted
func (r *Result) HasWinner() bool {
	return r != nil && r.Winner != ""
}

// Votes returns the count for choice
func (r *Result) Votes(choice string) int {
	for _, c := range r.Tally {
		if c.Choice == choice {
			return c.Votes
		}
	}
	return 0
}

// CastOutcome describes an accepted vote
type CastOutcome struct {
	// Choice is the normalized token recorded
	Choice string

	// Total is the number of ballots after this vote
	Total int

	// Early is set when this vote satisfied the early-resolve condition
	Early bool
}

// Config holds configuration for a voting window
type Config struct {
	// ID identifies the window in logs
	ID string

	Vocabulary Vocabulary

	// OpensAt is when voting starts
	OpensAt time.Time

	// Duration is how long the window accepts votes
	Duration time.Duration

	// EarlyResolve is optional
	EarlyResolve Condition

	// Resolver defaults to Plurality
	Resolver Resolver
}
