package leaderboard

import (
	"context"
	"sync"

	"github.com/KirkDiggler/crowdplay/internal/models"
)

type memoryBoard struct {
	scores  map[string]int
	reached map[string]int64
}

// memoryRepository keeps boards in process memory
type memoryRepository struct {
	mu     sync.Mutex
	seq    int64
	boards map[string]*memoryBoard
}

// NewMemory creates an in-memory leaderboard repository
func NewMemory() *memoryRepository {
	return &memoryRepository{
		boards: make(map[string]*memoryBoard),
	}
}

func (r *memoryRepository) board(name string) *memoryBoard {
	b, ok := r.boards[name]
	if !ok {
		b = &memoryBoard{
			scores:  make(map[string]int),
			reached: make(map[string]int64),
		}
		r.boards[name] = b
	}
	return b
}

// Award adds to an identity's score
func (r *memoryRepository) Award(ctx context.Context, input *AwardInput) (*AwardOutput, error) {
	if err := validateAward(input); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.board(input.Board)
	_, existed := b.scores[input.Identity]
	b.scores[input.Identity] += input.Amount

	// a tie is won by whoever reached the score first
	if !existed || input.Amount > 0 {
		r.seq++
		b.reached[input.Identity] = r.seq
	}

	return &AwardOutput{Score: b.scores[input.Identity]}, nil
}

// GetScore retrieves one identity's score
func (r *memoryRepository) GetScore(ctx context.Context, input *GetScoreInput) (*GetScoreOutput, error) {
	if input == nil || input.Board == "" {
		return nil, ErrEmptyBoard
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.boards[input.Board]
	if !ok {
		return &GetScoreOutput{}, nil
	}
	score, found := b.scores[input.Identity]
	return &GetScoreOutput{Score: score, Found: found}, nil
}

// GetTop returns ranked entries
func (r *memoryRepository) GetTop(ctx context.Context, input *GetTopInput) (*GetTopOutput, error) {
	if input == nil || input.Board == "" {
		return nil, ErrEmptyBoard
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.boards[input.Board]
	if !ok {
		return &GetTopOutput{Entries: []*models.LeaderboardEntry{}}, nil
	}

	entries := make([]*models.LeaderboardEntry, 0, len(b.scores))
	for identity, score := range b.scores {
		entries = append(entries, &models.LeaderboardEntry{
			Identity: identity,
			Score:    score,
			Reached:  b.reached[identity],
		})
	}

	return &GetTopOutput{Entries: rank(entries, input.Limit)}, nil
}

// Reset removes a board
func (r *memoryRepository) Reset(ctx context.Context, input *ResetInput) error {
	if input == nil || input.Board == "" {
		return ErrEmptyBoard
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.boards, input.Board)
	return nil
}
