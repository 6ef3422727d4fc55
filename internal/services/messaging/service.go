package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KirkDiggler/crowdplay/internal/dice"
	"github.com/KirkDiggler/crowdplay/internal/models"
	"go.uber.org/zap"
)

const genericErrorMessage = "⚠️ Something went wrong handling that command. Please try again!"

// Default texts for refusals that carry no message of their own
var refusalMessages = map[models.GameError][]string{
	models.ErrInvalidState: {
		"That can't be done right now!",
		"Hold on, the game isn't ready for that yet!",
	},
	models.ErrWindowClosed: {
		"No vote is open right now!",
		"Voting is closed, wait for the next round!",
	},
	models.ErrInvalidChoice: {
		"That's not one of the choices!",
		"Invalid choice, check the options and try again!",
	},
	models.ErrDuplicateVote: {
		"You already voted this round!",
		"One vote per person, you've already cast yours!",
	},
	models.ErrOutOfRange: {
		"That value is out of range!",
	},
	models.ErrCooldownActive: {
		"Slow down, that's still on cooldown!",
		"Not yet! Give it a moment.",
	},
}

var medals = []string{"🥇", "🥈", "🥉"}

// Leader shout-outs, chosen at random
var leaderLines = []string{
	"👑 %s is running the show!",
	"🏆 All hail %s!",
	"🔥 %s is on fire!",
	"⭐ %s leads the pack!",
}

// service implements the Service interface
type service struct {
	roller dice.Roller
	logger *zap.Logger
}

// NewService creates a new messaging service
func NewService(config *ServiceConfig) (Service, error) {
	if config == nil {
		return nil, models.ErrNilConfig
	}

	if config.DiceRoller == nil {
		return nil, models.ErrNilDiceRoller
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		roller: config.DiceRoller,
		logger: logger,
	}, nil
}

// Render turns a command error into chat text
func (s *service) Render(identity string, err error) string {
	out, renderErr := s.GetRefusalMessage(context.Background(), &GetRefusalMessageInput{
		Identity: identity,
		Err:      err,
	})
	if renderErr != nil {
		return genericErrorMessage
	}
	return out.Message
}

// GetRefusalMessage returns a user-friendly message for a refused command
func (s *service) GetRefusalMessage(ctx context.Context, input *GetRefusalMessageInput) (*GetRefusalMessageOutput, error) {
	if input == nil || input.Err == nil {
		return nil, errors.New("input error cannot be nil")
	}

	var refusal *models.Refusal
	if errors.As(input.Err, &refusal) {
		return &GetRefusalMessageOutput{
			Message: mention(input.Identity, refusal.Message),
			Kind:    refusal.Kind,
		}, nil
	}

	var kind models.GameError
	if errors.As(input.Err, &kind) {
		if messages, ok := refusalMessages[kind]; ok {
			return &GetRefusalMessageOutput{
				Message: mention(input.Identity, messages[dice.Pick(s.roller, len(messages))]),
				Kind:    kind,
			}, nil
		}
	}

	s.logger.Error("command failed",
		zap.String("identity", input.Identity),
		zap.Error(input.Err))

	return &GetRefusalMessageOutput{
		Message: genericErrorMessage,
	}, nil
}

// GetLeaderboardMessage formats ranked entries one per line
func (s *service) GetLeaderboardMessage(ctx context.Context, input *GetLeaderboardMessageInput) (*GetLeaderboardMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	if len(input.Entries) == 0 {
		message := input.EmptyMessage
		if message == "" {
			message = "No scores yet. Be the first!"
		}
		return &GetLeaderboardMessageOutput{Message: fmt.Sprintf("%s\n%s", input.Title, message)}, nil
	}

	var b strings.Builder
	b.WriteString(input.Title)
	for _, entry := range input.Entries {
		badge := fmt.Sprintf("%d.", entry.Rank)
		if entry.Rank >= 1 && entry.Rank <= len(medals) {
			badge = medals[entry.Rank-1]
		}
		fmt.Fprintf(&b, "\n%s %s: %d %s", badge, input.Names.Name(entry.Identity), entry.Score, input.Unit)
	}

	line := leaderLines[dice.Pick(s.roller, len(leaderLines))]
	fmt.Fprintf(&b, "\n"+line, input.Names.Name(input.Entries[0].Identity))

	return &GetLeaderboardMessageOutput{
		Message: b.String(),
	}, nil
}

func mention(identity, message string) string {
	if identity == "" {
		return message
	}
	return fmt.Sprintf("@%s %s", identity, message)
}
