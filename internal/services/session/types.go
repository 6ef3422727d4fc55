package session

import (
	"time"

	"github.com/KirkDiggler/crowdplay/internal/common/clock"
	"github.com/KirkDiggler/crowdplay/internal/common/uuid"
	"github.com/KirkDiggler/crowdplay/internal/metrics"
	"github.com/KirkDiggler/crowdplay/internal/scheduler"
	"github.com/KirkDiggler/crowdplay/internal/services/voting"
	"go.uber.org/zap"
)

// Status is the position of a session in its voting cycle
type Status string

const (
	// StatusIdle indicates no window is open and none is scheduled
	StatusIdle Status = "idle"

	// StatusAwaitingVotes indicates a window is open
	StatusAwaitingVotes Status = "awaiting_votes"

	// StatusResolving indicates a window closed and the next one has not opened yet
	StatusResolving Status = "resolving"
)

// DefaultBreather is the pause between resolving a stage and opening the next window
const DefaultBreather = 2 * time.Second

// Sink receives messages produced outside a command reply
type Sink interface {
	Emit(message string)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(message string)

func (f SinkFunc) Emit(message string) {
	f(message)
}

// Round describes one stage of audience input
type Round struct {
	// Vocabulary declares the accepted vote tokens
	Vocabulary voting.Vocabulary

	// Duration is how long votes are accepted
	Duration time.Duration

	// EarlyResolve optionally closes the window before the deadline
	EarlyResolve voting.Condition

	// Resolver defaults to voting.Plurality
	Resolver voting.Resolver

	// Announce is emitted when the round opens after a breather
	Announce string

	// OnResolve applies the winning choice. It runs at most once per round.
	OnResolve func(result *voting.Result) (*Outcome, error)

	// OnEmpty returns the fallback message when nobody voted
	OnEmpty func() string
}

// Outcome is what applying a resolved round produced
type Outcome struct {
	// Messages narrate the effect of the winning choice
	Messages []string

	// Next is opened after the breather delay. Nil ends the session.
	Next *Round
}

// CastResult describes an accepted vote
type CastResult struct {
	*voting.CastOutcome

	// Resolution holds the messages produced when this vote closed the window early
	Resolution []string
}

// Config holds configuration for a session
type Config struct {
	// Mode names the game mode in logs and metrics
	Mode string

	Scheduler     scheduler.Scheduler
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
	Sink          Sink

	// Breather defaults to DefaultBreather
	Breather time.Duration

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}
