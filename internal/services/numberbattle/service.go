// Package numberbattle runs rounds where the audience guesses a hidden number
// and the closest guess scores points.
package numberbattle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KirkDiggler/crowdplay/internal/dice"
	"github.com/KirkDiggler/crowdplay/internal/models"
	"github.com/KirkDiggler/crowdplay/internal/services/leaderboard"
	"github.com/KirkDiggler/crowdplay/internal/services/messaging"
	"github.com/KirkDiggler/crowdplay/internal/services/roster"
	"github.com/KirkDiggler/crowdplay/internal/services/session"
	"github.com/KirkDiggler/crowdplay/internal/services/voting"
	"go.uber.org/zap"
)

// Mode is the name used for routing, logs and metrics
const Mode = "numberbattle"

const (
	commandNumberBattle = "numberbattle"
	commandGuess        = "guess"
	commandNumber       = "number"
	commandDifficulty   = "difficulty"
	commandLeaderboard  = "leaderboard"
)

// Service implements the number battle game mode
type Service struct {
	session       *session.Session
	roller        dice.Roller
	leaderboard   *leaderboard.Service
	messaging     messaging.Service
	logger        *zap.Logger
	roster        *roster.Roster
	roundDuration time.Duration
	quota         int

	difficulty Difficulty
	round      int
	target     int
	scorers    map[string]struct{}
}

// New creates a number battle service
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, models.ErrNilConfig
	}
	if cfg.DiceRoller == nil {
		return nil, models.ErrNilDiceRoller
	}
	if cfg.Leaderboard == nil {
		return nil, models.ErrNilLeaderboard
	}
	if cfg.Messaging == nil {
		return nil, models.ErrNilMessaging
	}

	roundDuration := cfg.RoundDuration
	if roundDuration <= 0 {
		roundDuration = DefaultRoundDuration
	}

	quota := cfg.GuessQuota
	if quota <= 0 {
		quota = DefaultGuessQuota
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sess, err := session.New(&session.Config{
		Mode:          Mode,
		Scheduler:     cfg.Scheduler,
		Clock:         cfg.Clock,
		UUIDGenerator: cfg.UUIDGenerator,
		Sink:          cfg.Sink,
		Logger:        logger,
		Metrics:       cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		session:       sess,
		roller:        cfg.DiceRoller,
		leaderboard:   cfg.Leaderboard,
		messaging:     cfg.Messaging,
		logger:        logger.With(zap.String("mode", Mode)),
		roster:        cfg.Roster,
		roundDuration: roundDuration,
		quota:         quota,
		difficulty:    DifficultyNormal,
		scorers:       make(map[string]struct{}),
	}, nil
}

// Name returns the mode name
func (s *Service) Name() string {
	return Mode
}

// Title is the display name of the mode
func (s *Service) Title() string {
	return "Number Battle"
}

// Commands lists the commands this mode owns
func (s *Service) Commands() []string {
	return []string{commandNumberBattle, commandGuess, commandNumber, commandDifficulty, commandLeaderboard}
}

// Handle runs one number battle command
func (s *Service) Handle(ctx context.Context, cmd *models.Command) (string, error) {
	switch cmd.Name {
	case commandNumberBattle:
		return s.StartRound()
	case commandGuess:
		return s.Guess(cmd.Identity, cmd.Arg(0))
	case commandNumber:
		return s.Info(), nil
	case commandDifficulty:
		return s.SetDifficulty(cmd.Arg(0))
	case commandLeaderboard:
		return s.Leaderboard(ctx)
	}
	return "", fmt.Errorf("numberbattle cannot handle %q", cmd.Name)
}

// StartRound draws a new target and opens guessing. A round already in
// progress is abandoned.
func (s *Service) StartRound() (string, error) {
	s.session.Reset()

	bounds := difficulties[s.difficulty]
	target := dice.Range(s.roller, bounds.Min, bounds.Max-bounds.Min)

	err := s.session.Open(&session.Round{
		Vocabulary:   voting.Range{Min: bounds.Min, Max: bounds.Max},
		Duration:     s.roundDuration,
		EarlyResolve: voting.Any(voting.Match(strconv.Itoa(target)), voting.Quota(s.quota)),
		Resolver:     voting.Closest(target),
		OnResolve:    s.score,
		OnEmpty: func() string {
			return "😴 No guesses this round! Type !numberbattle to try again!"
		},
	})
	if err != nil {
		return "", err
	}

	s.round++
	s.target = target
	s.logger.Debug("number battle round started",
		zap.Int("round", s.round),
		zap.String("difficulty", string(s.difficulty)))

	return fmt.Sprintf("🎯 Number Battle Round %d Started!\n"+
		"🎲 I'm thinking of a number between %d and %d\n"+
		"💡 Type !guess <number> to make your guess!\n"+
		"🏆 Closest guess wins points!", s.round, bounds.Min, bounds.Max), nil
}

// Guess records identity's guess for the open round
func (s *Service) Guess(identity, token string) (string, error) {
	result, err := s.session.Cast(identity, token)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrWindowClosed):
			return "", models.Refuse(models.ErrWindowClosed, "No active round! Type !numberbattle to start one!")
		case errors.Is(err, models.ErrDuplicateVote):
			previous, _ := s.session.Window().BallotOf(identity)
			return "", models.Refuse(models.ErrDuplicateVote, "You already guessed %s this round!", previous)
		}
		return "", err
	}

	if len(result.Resolution) > 0 {
		return strings.Join(result.Resolution, "\n"), nil
	}

	guess, _ := strconv.Atoi(result.Choice)
	return fmt.Sprintf("@%s guessed %d! %s (%d/%d guesses)",
		s.roster.Name(identity), guess, Hint(voting.Distance(guess, s.target)), result.Total, s.quota), nil
}

// SetDifficulty changes the target range for the next round
func (s *Service) SetDifficulty(name string) (string, error) {
	difficulty := Difficulty(strings.ToLower(name))
	bounds, ok := difficulties[difficulty]
	if !ok {
		options := make([]string, len(difficultyOrder))
		for i, d := range difficultyOrder {
			b := difficulties[d]
			options[i] = fmt.Sprintf("%s (%d-%d)", d, b.Min, b.Max)
		}
		return fmt.Sprintf("🎚️ Available difficulties: %s. Current: %s", strings.Join(options, ", "), s.difficulty), nil
	}

	if s.session.Status() != session.StatusIdle {
		return "", models.Refuse(models.ErrInvalidState, "Can't change difficulty during an active round!")
	}

	s.difficulty = difficulty
	return fmt.Sprintf("🎚️ Difficulty changed to %s! Range: %d-%d", difficulty, bounds.Min, bounds.Max), nil
}

// Leaderboard lists the top scorers
func (s *Service) Leaderboard(ctx context.Context) (string, error) {
	entries, err := s.leaderboard.TopK(ctx, DefaultLeaderboardK)
	if err != nil {
		return "", err
	}

	out, err := s.messaging.GetLeaderboardMessage(ctx, &messaging.GetLeaderboardMessageInput{
		Title:        "🏆 Number Battle Leaderboard:",
		Unit:         "pts",
		Entries:      entries,
		EmptyMessage: "Leaderboard is empty! Play some rounds to see scores!",
		Names:        s.roster,
	})
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// Info describes the round in progress
func (s *Service) Info() string {
	if s.session.Status() == session.StatusAwaitingVotes {
		bounds := difficulties[s.difficulty]
		return fmt.Sprintf("🎯 Active round %d: Guess between %d-%d (%d/%d guesses, %s left)",
			s.round, bounds.Min, bounds.Max, s.session.Window().Count(), s.quota, s.session.Remaining())
	}
	return fmt.Sprintf("🎲 Number Battle ready! Type !numberbattle to start. Difficulty: %s", s.difficulty)
}

// Status summarizes the mode
func (s *Service) Status(ctx context.Context) string {
	return fmt.Sprintf("🎲 Number Battle: Round %d, Active: %t, Players: %d",
		s.round, s.session.Status() == session.StatusAwaitingVotes, len(s.scorers))
}

// Instructions explains how to play
func (s *Service) Instructions() string {
	return fmt.Sprintf("Type !guess <number> to make a guess. !numberbattle to start new round. Difficulty: %s", s.difficulty)
}

// Session exposes the underlying voting session
func (s *Service) Session() *session.Session {
	return s.session
}

// Target returns the hidden number of the current round
func (s *Service) Target() int {
	return s.target
}

// Difficulty returns the current difficulty
func (s *Service) Difficulty() Difficulty {
	return s.difficulty
}

func (s *Service) score(result *voting.Result) (*session.Outcome, error) {
	guess, err := strconv.Atoi(result.Winner)
	if err != nil {
		return nil, fmt.Errorf("winning guess %q is not a number: %w", result.Winner, err)
	}

	distance := voting.Distance(guess, s.target)
	points := Points(distance)

	total, err := s.leaderboard.Award(context.Background(), result.Voter, points)
	if err != nil {
		return nil, err
	}
	s.scorers[result.Voter] = struct{}{}
	winner := s.roster.Name(result.Voter)

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 Round %d Results!\n", s.round)
	fmt.Fprintf(&b, "🔢 The number was: %d\n", s.target)
	fmt.Fprintf(&b, "🏆 Winner: %s (guessed %d) +%d points!\n", winner, guess, points)
	if distance > 0 {
		fmt.Fprintf(&b, "📏 Distance: %d\n", distance)
	}
	fmt.Fprintf(&b, "💫 %s now has %d total points!", winner, total)

	return &session.Outcome{Messages: []string{b.String()}}, nil
}

// Points is the reward for a winning guess distance away from the target
func Points(distance int) int {
	if distance == 0 {
		return ExactMatchPoints
	}
	return max(1, ExactMatchPoints-distance/5)
}

// Hint describes how close a guess is
func Hint(distance int) string {
	switch {
	case distance <= 5:
		return "🔥 Very close!"
	case distance <= 15:
		return "🌡️ Getting warm!"
	case distance <= 30:
		return "❄️ Cool!"
	default:
		return "🧊 Ice cold!"
	}
}
