// Package voting collects one ballot per identity during a timed window and
// resolves the window to a single winning choice.
package voting

import (
	"time"

	"github.com/KirkDiggler/crowdplay/internal/models"
)

// Window is a timed collection of ballots. It is not safe for concurrent use;
// callers run it on the game loop.
type Window struct {
	id         string
	vocabulary Vocabulary
	opensAt    time.Time
	deadline   time.Time
	early      Condition
	resolver   Resolver

	ballots []Ballot
	voted   map[string]int
	result  *Result
}

// New opens a window
func New(cfg *Config) (*Window, error) {
	if cfg == nil {
		return nil, models.ErrNilConfig
	}
	if cfg.Vocabulary == nil {
		return nil, models.ErrEmptyChoices
	}
	if tokens, ok := cfg.Vocabulary.(Tokens); ok && len(tokens) == 0 {
		return nil, models.ErrEmptyChoices
	}

	resolver := cfg.Resolver
	if resolver == nil {
		resolver = Plurality
	}

	return &Window{
		id:         cfg.ID,
		vocabulary: cfg.Vocabulary,
		opensAt:    cfg.OpensAt,
		deadline:   cfg.OpensAt.Add(cfg.Duration),
		early:      cfg.EarlyResolve,
		resolver:   resolver,
		voted:      make(map[string]int),
	}, nil
}

// ID returns the window identifier
func (w *Window) ID() string {
	return w.id
}

// Deadline returns when the window stops accepting votes
func (w *Window) Deadline() time.Time {
	return w.deadline
}

// IsOpen reports whether votes are accepted at now
func (w *Window) IsOpen(now time.Time) bool {
	return w.result == nil && !now.Before(w.opensAt) && now.Before(w.deadline)
}

// Resolved reports whether Resolve has been called
func (w *Window) Resolved() bool {
	return w.result != nil
}

// Cast records identity's ballot. A second ballot from the same identity is
// rejected and the first one stands.
func (w *Window) Cast(now time.Time, identity, token string) (*CastOutcome, error) {
	if !w.IsOpen(now) {
		return nil, models.ErrWindowClosed
	}

	choice, err := w.vocabulary.Normalize(token)
	if err != nil {
		return nil, err
	}

	if _, ok := w.voted[identity]; ok {
		return nil, models.ErrDuplicateVote
	}

	w.voted[identity] = len(w.ballots)
	w.ballots = append(w.ballots, Ballot{Identity: identity, Choice: choice, CastAt: now})

	return &CastOutcome{
		Choice: choice,
		Total:  len(w.ballots),
		Early:  w.early != nil && w.early(w.Ballots()),
	}, nil
}

// BallotOf returns identity's recorded choice
func (w *Window) BallotOf(identity string) (string, bool) {
	i, ok := w.voted[identity]
	if !ok {
		return "", false
	}
	return w.ballots[i].Choice, true
}

// Ballots returns a copy of the ballots in cast order
func (w *Window) Ballots() []Ballot {
	out := make([]Ballot, len(w.ballots))
	copy(out, w.ballots)
	return out
}

// Count returns the number of ballots cast
func (w *Window) Count() int {
	return len(w.ballots)
}

// Resolve closes the window and computes its result. Later calls return the
// same result and false.
func (w *Window) Resolve(early bool) (*Result, bool) {
	if w.result != nil {
		return w.result, false
	}

	result := w.resolver(w.vocabulary, w.Ballots())
	result.WindowID = w.id
	result.Early = early
	w.result = result
	return result, true
}
