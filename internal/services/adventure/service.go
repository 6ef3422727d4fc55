// Package adventure runs a branching story whose path the audience votes on.
package adventure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KirkDiggler/crowdplay/internal/common/clock"
	"github.com/KirkDiggler/crowdplay/internal/common/uuid"
	"github.com/KirkDiggler/crowdplay/internal/metrics"
	"github.com/KirkDiggler/crowdplay/internal/models"
	"github.com/KirkDiggler/crowdplay/internal/scheduler"
	"github.com/KirkDiggler/crowdplay/internal/services/roster"
	"github.com/KirkDiggler/crowdplay/internal/services/session"
	"github.com/KirkDiggler/crowdplay/internal/services/voting"
	"go.uber.org/zap"
)

// Mode is the name used for routing, logs and metrics
const Mode = "adventure"

const (
	commandAdventure = "adventure"
	commandChoice    = "choice"
	commandStory     = "story"
)

const (
	DefaultVoteDuration = 30 * time.Second
	DefaultBreather     = 2 * time.Second
)

// Config holds configuration for the adventure service
type Config struct {
	Scheduler     scheduler.Scheduler
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
	Sink          session.Sink
	Logger        *zap.Logger
	Metrics       *metrics.Metrics

	// Roster resolves identities to display names
	Roster *roster.Roster

	// Story overrides the default castle story
	Story []*models.Scene

	VoteDuration time.Duration
	Breather     time.Duration
}

// Service implements the adventure game mode
type Service struct {
	session      *session.Session
	story        []*models.Scene
	voteDuration time.Duration
	roster       *roster.Roster

	scene     int
	completed bool
	players   map[string]struct{}
}

// New creates an adventure service
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, models.ErrNilConfig
	}

	story := cfg.Story
	if len(story) == 0 {
		story = castleStory
	}
	for _, scene := range story {
		if len(scene.Choices) == 0 {
			return nil, models.ErrEmptyChoices
		}
	}

	voteDuration := cfg.VoteDuration
	if voteDuration <= 0 {
		voteDuration = DefaultVoteDuration
	}

	breather := cfg.Breather
	if breather <= 0 {
		breather = DefaultBreather
	}

	sess, err := session.New(&session.Config{
		Mode:          Mode,
		Scheduler:     cfg.Scheduler,
		Clock:         cfg.Clock,
		UUIDGenerator: cfg.UUIDGenerator,
		Sink:          cfg.Sink,
		Breather:      breather,
		Logger:        cfg.Logger,
		Metrics:       cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		session:      sess,
		story:        story,
		voteDuration: voteDuration,
		roster:       cfg.Roster,
		players:      make(map[string]struct{}),
	}, nil
}

// Name returns the mode name
func (s *Service) Name() string {
	return Mode
}

// Title is the display name of the mode
func (s *Service) Title() string {
	return "Adventure Quest"
}

// Commands lists the commands this mode owns
func (s *Service) Commands() []string {
	return []string{commandAdventure, commandChoice, commandStory}
}

// Handle runs one adventure command
func (s *Service) Handle(ctx context.Context, cmd *models.Command) (string, error) {
	switch cmd.Name {
	case commandAdventure:
		return s.Start()
	case commandChoice:
		return s.Vote(cmd.Identity, cmd.Arg(0))
	case commandStory:
		return s.CurrentScene(), nil
	}
	return "", fmt.Errorf("adventure cannot handle %q", cmd.Name)
}

// Start restarts the story from the first scene and opens voting
func (s *Service) Start() (string, error) {
	s.session.Reset()
	s.scene = 0
	s.completed = false
	s.players = make(map[string]struct{})

	if err := s.session.Open(s.round()); err != nil {
		return "", err
	}

	return s.CurrentScene() + "\n" + s.votingStarted(), nil
}

// Vote casts identity's ballot for the current scene
func (s *Service) Vote(identity, token string) (string, error) {
	result, err := s.session.Cast(identity, token)
	if err != nil {
		if errors.Is(err, models.ErrWindowClosed) {
			return "", models.Refuse(models.ErrWindowClosed, "No active voting right now. Type !adventure to start!")
		}
		return "", err
	}

	s.players[identity] = struct{}{}

	reply := fmt.Sprintf("@%s voted %s! Total votes: %d", s.roster.Name(identity), result.Choice, result.Total)
	if len(result.Resolution) > 0 {
		reply += "\n" + strings.Join(result.Resolution, "\n")
	}
	return reply, nil
}

// CurrentScene describes the scene being voted on
func (s *Service) CurrentScene() string {
	if s.completed || s.scene >= len(s.story) {
		return "🎉 Adventure Complete! Thanks for playing! Type !adventure to restart."
	}

	scene := s.story[s.scene]
	var b strings.Builder
	fmt.Fprintf(&b, "📖 Scene %d: %s\n", s.scene+1, scene.Text)
	b.WriteString("🗳️ Vote for your choice:\n")
	for _, c := range scene.Choices {
		fmt.Fprintf(&b, "%s: %s\n", c.Token, c.Action)
	}
	return b.String()
}

// Scene returns the zero-based index of the current scene
func (s *Service) Scene() int {
	return s.scene
}

// Session exposes the underlying voting session
func (s *Service) Session() *session.Session {
	return s.session
}

// Status summarizes progress
func (s *Service) Status(ctx context.Context) string {
	scene := s.scene + 1
	if scene > len(s.story) {
		scene = len(s.story)
	}
	return fmt.Sprintf("🏰 Adventure Quest: Scene %d/%d, Players: %d", scene, len(s.story), len(s.players))
}

// Instructions explains how to play
func (s *Service) Instructions() string {
	return fmt.Sprintf("Type !choice %s to vote on story decisions. Current scene: %d/%d",
		strings.Join(s.story[min(s.scene, len(s.story)-1)].Tokens(), "/"), min(s.scene+1, len(s.story)), len(s.story))
}

func (s *Service) votingStarted() string {
	return fmt.Sprintf("⏰ Voting started! You have %d seconds to choose.", int(s.voteDuration.Seconds()))
}

func (s *Service) round() *session.Round {
	scene := s.story[s.scene]
	return &session.Round{
		Vocabulary: voting.Tokens(scene.Tokens()),
		Duration:   s.voteDuration,
		Announce:   s.votingStarted(),
		OnResolve:  s.apply,
		OnEmpty: func() string {
			return "😴 No votes received. Type !adventure to try again!"
		},
	}
}

func (s *Service) apply(result *voting.Result) (*session.Outcome, error) {
	scene := s.story[s.scene]
	action, ok := scene.Action(result.Winner)
	if !ok {
		return nil, fmt.Errorf("scene %d has no choice %q", s.scene, result.Winner)
	}

	counts := make([]string, len(result.Tally))
	for i, c := range result.Tally {
		counts[i] = fmt.Sprintf("%s:%d", c.Choice, c.Votes)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 Voting Results: %s wins! (%s)\n", result.Winner, strings.Join(counts, " "))
	fmt.Fprintf(&b, "✨ You chose: %s\n", action)

	s.scene++
	if s.scene < len(s.story) {
		b.WriteString("\n" + s.CurrentScene())
		return &session.Outcome{
			Messages: []string{b.String()},
			Next:     s.round(),
		}, nil
	}

	s.completed = true
	b.WriteString("\n🎉 Adventure Complete! Type !adventure to play again!")
	return &session.Outcome{Messages: []string{b.String()}}, nil
}
