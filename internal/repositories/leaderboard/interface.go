package leaderboard

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/crowdplay/internal/repositories/leaderboard Repository

import (
	"context"
)

// Repository defines the interface for leaderboard score storage
type Repository interface {
	// Award adds a non-negative amount to an identity's score, creating the entry on first award
	Award(ctx context.Context, input *AwardInput) (*AwardOutput, error)

	// GetScore retrieves one identity's score
	GetScore(ctx context.Context, input *GetScoreInput) (*GetScoreOutput, error)

	// GetTop retrieves the highest scores in ranked order
	GetTop(ctx context.Context, input *GetTopInput) (*GetTopOutput, error)

	// Reset removes every entry of a board
	Reset(ctx context.Context, input *ResetInput) error
}
