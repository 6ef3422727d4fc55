// Package leaderboard keeps cumulative scores for one game mode.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/crowdplay/internal/models"
	repo "github.com/KirkDiggler/crowdplay/internal/repositories/leaderboard"
)

// Config holds configuration for a leaderboard service
type Config struct {
	// Board names the leaderboard inside the repository
	Board string

	Repository repo.Repository
}

// Service awards and ranks scores on a single board
type Service struct {
	board      string
	repository repo.Repository
}

// New creates a leaderboard service
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, models.ErrNilConfig
	}
	if cfg.Repository == nil {
		return nil, models.ErrNilRepository
	}
	if cfg.Board == "" {
		return nil, repo.ErrEmptyBoard
	}

	return &Service{
		board:      cfg.Board,
		repository: cfg.Repository,
	}, nil
}

// Board returns the board name
func (s *Service) Board() string {
	return s.board
}

// Award adds amount to identity's score and returns the new total
func (s *Service) Award(ctx context.Context, identity string, amount int) (int, error) {
	if amount < 0 {
		return 0, models.ErrNegativeAward
	}

	out, err := s.repository.Award(ctx, &repo.AwardInput{
		Board:    s.board,
		Identity: identity,
		Amount:   amount,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to award %s: %w", identity, err)
	}

	return out.Score, nil
}

// Score returns identity's score, zero when absent
func (s *Service) Score(ctx context.Context, identity string) (int, error) {
	out, err := s.repository.GetScore(ctx, &repo.GetScoreInput{
		Board:    s.board,
		Identity: identity,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get score for %s: %w", identity, err)
	}
	return out.Score, nil
}

// TopK returns at most n entries in descending score order. Ties keep the
// order in which the scores were reached.
func (s *Service) TopK(ctx context.Context, n int) ([]*models.LeaderboardEntry, error) {
	if n <= 0 {
		return []*models.LeaderboardEntry{}, nil
	}

	out, err := s.repository.GetTop(ctx, &repo.GetTopInput{
		Board: s.board,
		Limit: n,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get top scores: %w", err)
	}

	return out.Entries, nil
}

// Reset clears the board
func (s *Service) Reset(ctx context.Context) error {
	if err := s.repository.Reset(ctx, &repo.ResetInput{Board: s.board}); err != nil {
		return fmt.Errorf("failed to reset board %s: %w", s.board, err)
	}
	return nil
}
