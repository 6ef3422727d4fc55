package messaging

import (
	"github.com/KirkDiggler/crowdplay/internal/dice"
	"github.com/KirkDiggler/crowdplay/internal/models"
	"github.com/KirkDiggler/crowdplay/internal/services/roster"
	"go.uber.org/zap"
)

// ServiceConfig holds configuration for the messaging service
type ServiceConfig struct {
	// DiceRoller picks among equivalent message variants
	DiceRoller dice.Roller

	Logger *zap.Logger
}

// GetRefusalMessageInput contains parameters for rendering a refused command
type GetRefusalMessageInput struct {
	// Identity is the participant whose command was refused
	Identity string

	// Err is the error the command returned
	Err error
}

// GetRefusalMessageOutput contains the rendered refusal
type GetRefusalMessageOutput struct {
	Message string

	// Kind is the refusal kind, empty for internal errors
	Kind models.GameError
}

// GetLeaderboardMessageInput is the input for GetLeaderboardMessage
type GetLeaderboardMessageInput struct {
	// Title heads the message
	Title string

	// Unit follows each score, e.g. "points" or "EXP"
	Unit string

	// Entries are already ranked
	Entries []*models.LeaderboardEntry

	// EmptyMessage is shown when there are no entries
	EmptyMessage string

	// Names resolves identities to display names; nil shows identities
	Names *roster.Roster
}

// GetLeaderboardMessageOutput is the output for GetLeaderboardMessage
type GetLeaderboardMessageOutput struct {
	Message string
}
