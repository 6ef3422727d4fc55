package numberbattle

import (
	"time"

	"github.com/KirkDiggler/crowdplay/internal/common/clock"
	"github.com/KirkDiggler/crowdplay/internal/common/uuid"
	"github.com/KirkDiggler/crowdplay/internal/dice"
	"github.com/KirkDiggler/crowdplay/internal/metrics"
	"github.com/KirkDiggler/crowdplay/internal/scheduler"
	"github.com/KirkDiggler/crowdplay/internal/services/leaderboard"
	"github.com/KirkDiggler/crowdplay/internal/services/messaging"
	"github.com/KirkDiggler/crowdplay/internal/services/roster"
	"github.com/KirkDiggler/crowdplay/internal/services/session"
	"go.uber.org/zap"
)

// Difficulty selects the range targets are drawn from
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// Bounds is an inclusive integer range
type Bounds struct {
	Min int
	Max int
}

var difficulties = map[Difficulty]Bounds{
	DifficultyEasy:   {Min: 1, Max: 50},
	DifficultyNormal: {Min: 1, Max: 100},
	DifficultyHard:   {Min: 1, Max: 500},
}

// Listing order for help text
var difficultyOrder = []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard}

const (
	DefaultRoundDuration = 45 * time.Second
	DefaultGuessQuota    = 10
	DefaultLeaderboardK  = 5

	// ExactMatchPoints is awarded for guessing the target
	ExactMatchPoints = 10
)

// Config holds configuration for the number battle service
type Config struct {
	Scheduler     scheduler.Scheduler
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
	Sink          session.Sink
	DiceRoller    dice.Roller
	Leaderboard   *leaderboard.Service
	Messaging     messaging.Service
	Logger        *zap.Logger
	Metrics       *metrics.Metrics

	// Roster resolves identities to display names
	Roster *roster.Roster

	RoundDuration time.Duration

	// GuessQuota closes a round early once this many guesses are in
	GuessQuota int
}
