// Package arena runs turn-based battles where the audience votes on the
// heroes' next action.
package arena

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KirkDiggler/crowdplay/internal/common/clock"
	"github.com/KirkDiggler/crowdplay/internal/common/uuid"
	"github.com/KirkDiggler/crowdplay/internal/dice"
	"github.com/KirkDiggler/crowdplay/internal/metrics"
	"github.com/KirkDiggler/crowdplay/internal/models"
	"github.com/KirkDiggler/crowdplay/internal/scheduler"
	"github.com/KirkDiggler/crowdplay/internal/services/leaderboard"
	"github.com/KirkDiggler/crowdplay/internal/services/messaging"
	"github.com/KirkDiggler/crowdplay/internal/services/roster"
	"github.com/KirkDiggler/crowdplay/internal/services/session"
	"github.com/KirkDiggler/crowdplay/internal/services/voting"
	"go.uber.org/zap"
)

// Mode is the name used for routing, logs and metrics
const Mode = "arena"

const (
	commandArena    = "arena"
	commandBattle   = "battle"
	commandWarriors = "warriors"
	commandRank     = "rank"
)

const (
	DefaultTurnDuration = 20 * time.Second
	DefaultBreather     = 3 * time.Second
	DefaultRankK        = 5
)

// Config holds configuration for the arena service
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

	TurnDuration time.Duration
	Breather     time.Duration
}

// Service implements the arena game mode
type Service struct {
	session      *session.Session
	roller       dice.Roller
	leaderboard  *leaderboard.Service
	messaging    messaging.Service
	logger       *zap.Logger
	roster       *roster.Roster
	turnDuration time.Duration

	round    int
	battle   *models.Battle
	warriors map[string]struct{}
}

// New creates an arena service
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

	turnDuration := cfg.TurnDuration
	if turnDuration <= 0 {
		turnDuration = DefaultTurnDuration
	}

	breather := cfg.Breather
	if breather <= 0 {
		breather = DefaultBreather
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
		Breather:      breather,
		Logger:        logger,
		Metrics:       cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		session:      sess,
		roller:       cfg.DiceRoller,
		leaderboard:  cfg.Leaderboard,
		messaging:    cfg.Messaging,
		logger:       logger.With(zap.String("mode", Mode)),
		roster:       cfg.Roster,
		turnDuration: turnDuration,
		warriors:     make(map[string]struct{}),
	}, nil
}

// Name returns the mode name
func (s *Service) Name() string {
	return Mode
}

// Title is the display name of the mode
func (s *Service) Title() string {
	return "Arena Combat"
}

// Commands lists the commands this mode owns
func (s *Service) Commands() []string {
	return []string{commandArena, ActionAttack, ActionDefend, ActionMagic, ActionSpecial, commandBattle, commandWarriors, commandRank}
}

// Handle runs one arena command
func (s *Service) Handle(ctx context.Context, cmd *models.Command) (string, error) {
	switch cmd.Name {
	case commandArena:
		return s.StartBattle()
	case ActionAttack, ActionDefend, ActionMagic, ActionSpecial:
		return s.Vote(cmd.Identity, cmd.Name)
	case commandBattle:
		return s.BattleStatus(), nil
	case commandWarriors:
		return s.Warriors(), nil
	case commandRank:
		return s.Rankings(ctx)
	}
	return "", fmt.Errorf("arena cannot handle %q", cmd.Name)
}

// StartBattle spawns a random enemy and opens the first turn
func (s *Service) StartBattle() (string, error) {
	if s.active() {
		return "", models.Refuse(models.ErrInvalidState, "⚔️ Battle already in progress! Vote for an action!")
	}

	s.session.Reset()
	enemy := enemies[dice.Pick(s.roller, len(enemies))]
	battle := &models.Battle{
		Round: s.round + 1,
		Turn:  1,
		Hero:  newHero(),
		Enemy: &enemy,
	}

	if err := s.session.Open(s.turn()); err != nil {
		return "", err
	}

	s.round++
	s.battle = battle
	s.logger.Info("battle started",
		zap.Int("round", s.round),
		zap.String("enemy", enemy.Name))

	return fmt.Sprintf("⚔️ Arena Combat Round %d!\n", s.round) + battleState(battle) + s.votePrompt(), nil
}

// Vote casts identity's ballot for the heroes' next action
func (s *Service) Vote(identity, action string) (string, error) {
	if !s.active() {
		return "", models.Refuse(models.ErrWindowClosed, "No battle active! Type !arena to start one!")
	}

	result, err := s.session.Cast(identity, action)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrWindowClosed):
			return "", models.Refuse(models.ErrWindowClosed, "The next turn hasn't started yet, hold on!")
		case errors.Is(err, models.ErrDuplicateVote):
			previous, _ := s.session.Window().BallotOf(identity)
			return "", models.Refuse(models.ErrDuplicateVote, "You already voted for %s this turn!", previous)
		}
		return "", err
	}

	return fmt.Sprintf("@%s voted for %s! (%d votes)", s.roster.Name(identity), result.Choice, result.Total), nil
}

// BattleStatus describes the battle in progress
func (s *Service) BattleStatus() string {
	if !s.active() {
		return "⚔️ No active battle. Type !arena to start one!"
	}
	return fmt.Sprintf("⚔️ Battle Round %d, Turn %d", s.battle.Round, s.battle.Turn) + battleState(s.battle)
}

// Warriors lists who voted this turn
func (s *Service) Warriors() string {
	participants := s.session.Participants()
	window := s.session.Window()
	if !s.active() || window == nil || len(participants) == 0 {
		return "⚔️ No active warriors! Join a battle to become one!"
	}

	var b strings.Builder
	b.WriteString("⚔️ Current Battle Warriors:")
	for _, identity := range participants {
		action, _ := window.BallotOf(identity)
		fmt.Fprintf(&b, "\n🗡️ %s (voted %s)", s.roster.Name(identity), action)
	}
	return b.String()
}

// Rankings lists the warriors with the most experience
func (s *Service) Rankings(ctx context.Context) (string, error) {
	entries, err := s.leaderboard.TopK(ctx, DefaultRankK)
	if err != nil {
		return "", err
	}

	out, err := s.messaging.GetLeaderboardMessage(ctx, &messaging.GetLeaderboardMessageInput{
		Title:        "🏆 Arena Rankings:",
		Unit:         "EXP",
		Entries:      entries,
		EmptyMessage: "No rankings yet! Fight in the arena to earn experience!",
		Names:        s.roster,
	})
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// Status summarizes the mode
func (s *Service) Status(ctx context.Context) string {
	return fmt.Sprintf("⚔️ Arena Combat: Round %d, Active: %t, Warriors: %d", s.round, s.active(), len(s.warriors))
}

// Instructions explains how to play
func (s *Service) Instructions() string {
	return "Epic battles await! !arena to start, then vote: !attack !defend !magic !special"
}

// Battle returns the battle in progress, nil when none
func (s *Service) Battle() *models.Battle {
	if !s.active() {
		return nil
	}
	return s.battle
}

// active reports whether a battle is running. A battle whose session went
// idle, for example after a resolution fault, is over.
func (s *Service) active() bool {
	return s.battle != nil && s.session.Status() != session.StatusIdle
}

// Session exposes the underlying voting session
func (s *Service) Session() *session.Session {
	return s.session
}

func (s *Service) votePrompt() string {
	return fmt.Sprintf("\n🗳️ Vote for action: !attack !defend !magic !special (%d seconds)", int(s.turnDuration.Seconds()))
}

func (s *Service) turn() *session.Round {
	return &session.Round{
		Vocabulary: voting.Tokens(actions),
		Duration:   s.turnDuration,
		Announce:   strings.TrimPrefix(s.votePrompt(), "\n"),
		OnResolve:  s.resolveTurn,
		OnEmpty: func() string {
			s.battle = nil
			return "😴 No warriors answered the call! The battle fizzles out. Type !arena to try again!"
		},
	}
}

func (s *Service) resolveTurn(result *voting.Result) (*session.Outcome, error) {
	battle := s.battle
	if battle == nil {
		return nil, errors.New("turn resolved without a battle")
	}

	heroText := heroTurn(s.roller, battle, result.Winner)
	enemyText := enemyTurn(s.roller, battle)

	var b strings.Builder
	fmt.Fprintf(&b, "⚔️ Turn %d Results:\n", battle.Turn)
	fmt.Fprintf(&b, "🗳️ Chosen Action: %s (%d votes)\n", result.Winner, result.Votes(result.Winner))
	b.WriteString(heroText + "\n" + enemyText + "\n")

	if !battle.Over() {
		battle.Turn++
		b.WriteString(battleState(battle))
		return &session.Outcome{
			Messages: []string{b.String()},
			Next:     s.turn(),
		}, nil
	}

	s.battle = nil
	if battle.Hero.HP.Depleted() {
		fmt.Fprintf(&b, "💀 DEFEAT! The heroes have fallen to %s...\n", battle.Enemy.Name)
		b.WriteString("🎯 Better luck next time! Type !arena to try again!")
		return &session.Outcome{Messages: []string{b.String()}}, nil
	}

	exp := dice.Range(s.roller, victoryExpBase, victoryExpVariance)
	for _, identity := range s.session.Participants() {
		if _, err := s.leaderboard.Award(context.Background(), identity, exp); err != nil {
			return nil, err
		}
		s.warriors[identity] = struct{}{}
	}
	fmt.Fprintf(&b, "🎉 VICTORY! %s defeated!\n", battle.Enemy.Name)
	fmt.Fprintf(&b, "⭐ Everyone gains %d experience!", exp)
	return &session.Outcome{Messages: []string{b.String()}}, nil
}
