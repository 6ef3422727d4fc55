package messaging

import "context"

// Service is the interface for the messaging service
type Service interface {
	// Render turns an error returned by a command into the chat reply for identity
	Render(identity string, err error) string

	// GetRefusalMessage returns the user-facing text for a refused command
	GetRefusalMessage(ctx context.Context, input *GetRefusalMessageInput) (*GetRefusalMessageOutput, error)

	// GetLeaderboardMessage formats a ranked leaderboard
	GetLeaderboardMessage(ctx context.Context, input *GetLeaderboardMessageInput) (*GetLeaderboardMessageOutput, error)
}
