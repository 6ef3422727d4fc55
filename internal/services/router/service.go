// Package router dispatches parsed chat commands to game modes.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KirkDiggler/crowdplay/internal/metrics"
	"github.com/KirkDiggler/crowdplay/internal/models"
	"github.com/KirkDiggler/crowdplay/internal/services/messaging"
	"github.com/KirkDiggler/crowdplay/internal/services/roster"
	"go.uber.org/zap"
)

const (
	commandHelp   = "help"
	commandGame   = "game"
	commandStatus = "status"

	unknownLabel = "unknown"
)

// Mode is a game the router can dispatch to
type Mode interface {
	// Name is both the routing key and the command that selects the mode
	Name() string

	// Title is the display name
	Title() string

	// Commands lists every command the mode owns, including its selector
	Commands() []string

	Handle(ctx context.Context, cmd *models.Command) (string, error)

	// Status is a one-line summary
	Status(ctx context.Context) string

	Instructions() string
}

// Config holds configuration for the router
type Config struct {
	Modes     []Mode
	Messaging messaging.Service

	// Roster learns the display name of every identity that sends a command
	Roster *roster.Roster

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Service routes commands through a static registry
type Service struct {
	modes     []Mode
	selectors map[string]Mode
	registry  map[string]Mode
	messaging messaging.Service
	roster    *roster.Roster
	logger    *zap.Logger
	metrics   *metrics.Metrics

	active Mode
}

// New builds the command registry. Two modes claiming the same command is an error.
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, models.ErrNilConfig
	}
	if cfg.Messaging == nil {
		return nil, models.ErrNilMessaging
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		modes:     cfg.Modes,
		selectors: make(map[string]Mode),
		registry: map[string]Mode{
			commandHelp:   nil,
			commandGame:   nil,
			commandStatus: nil,
		},
		messaging: cfg.Messaging,
		roster:    cfg.Roster,
		logger:    logger,
		metrics:   cfg.Metrics,
	}

	for _, mode := range cfg.Modes {
		if mode == nil {
			return nil, errors.New("mode cannot be nil")
		}
		s.selectors[mode.Name()] = mode
		for _, name := range mode.Commands() {
			if owner, taken := s.registry[name]; taken {
				return nil, fmt.Errorf("command %q of mode %s is already registered by %s", name, mode.Name(), ownerName(owner))
			}
			s.registry[name] = mode
		}
		if s.registry[mode.Name()] != mode {
			return nil, fmt.Errorf("mode %s must own its selector command", mode.Name())
		}
	}

	return s, nil
}

// Handle runs cmd and returns the reply. Errors are rendered as chat text.
// Selecting a mode only changes which one is active; every mode keeps its own
// session and timers.
func (s *Service) Handle(ctx context.Context, cmd *models.Command) string {
	s.roster.Remember(cmd.Identity, cmd.DisplayName)

	mode, known := s.registry[cmd.Name]
	if !known {
		s.metrics.CommandRouted(unknownLabel)
		return fmt.Sprintf("❓ Unknown command '%s'. Type !help for available commands.", cmd.Name)
	}
	s.metrics.CommandRouted(cmd.Name)

	switch cmd.Name {
	case commandHelp:
		return s.help()
	case commandGame:
		return s.game()
	case commandStatus:
		return s.status(ctx)
	}

	header := ""
	if selected, ok := s.selectors[cmd.Name]; ok && selected != s.active {
		if s.active != nil {
			s.logger.Info("switching game mode",
				zap.String("from", s.active.Name()),
				zap.String("to", selected.Name()))
		}
		s.active = selected
		header = fmt.Sprintf("🎮 Starting %s! %s\n", selected.Title(), selected.Instructions())
	}

	reply, err := mode.Handle(ctx, cmd)
	if err != nil {
		s.logger.Debug("command refused",
			zap.String("command", cmd.Name),
			zap.String("identity", cmd.Identity),
			zap.Error(err))
		reply = s.messaging.Render(cmd.Display(), err)
	}

	return header + reply
}

// Active returns the selected mode, nil when none
func (s *Service) Active() Mode {
	return s.active
}

func (s *Service) help() string {
	selectors := make([]string, len(s.modes))
	for i, mode := range s.modes {
		selectors[i] = "!" + mode.Name()
	}
	return fmt.Sprintf("🎮 Interactive Games Help:\n"+
		"📚 Available Games: %s\n"+
		"🔧 General: !help !game !status\n"+
		"💡 Start any game to see specific commands!", strings.Join(selectors, " "))
}

func (s *Service) game() string {
	if s.active != nil {
		return fmt.Sprintf("🎯 Currently playing: %s", s.active.Title())
	}

	selectors := make([]string, len(s.modes))
	for i, mode := range s.modes {
		selectors[i] = "!" + mode.Name()
	}
	return fmt.Sprintf("🎮 No active game. Available: %s", strings.Join(selectors, " "))
}

func (s *Service) status(ctx context.Context) string {
	var b strings.Builder
	b.WriteString("📊 Game System Status:")
	for _, mode := range s.modes {
		b.WriteString("\n" + mode.Status(ctx))
	}
	if s.active != nil {
		fmt.Fprintf(&b, "\n\n🎯 Active: %s", s.active.Title())
	}
	return b.String()
}

func ownerName(mode Mode) string {
	if mode == nil {
		return "the router"
	}
	return mode.Name()
}
