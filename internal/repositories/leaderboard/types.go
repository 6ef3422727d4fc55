package leaderboard

import (
	"errors"
	"sort"

	"github.com/KirkDiggler/crowdplay/internal/models"
)

var (
	// ErrEmptyBoard is returned when no board name is given
	ErrEmptyBoard = errors.New("board cannot be empty")

	// ErrEmptyIdentity is returned when no identity is given
	ErrEmptyIdentity = errors.New("identity cannot be empty")
)

type AwardInput struct {
	Board    string
	Identity string
	Amount   int
}

type AwardOutput struct {
	// Score is the identity's total after the award
	Score int
}

type GetScoreInput struct {
	Board    string
	Identity string
}

type GetScoreOutput struct {
	Score int
	Found bool
}

type GetTopInput struct {
	Board string

	// Limit truncates the result; zero or less returns every entry
	Limit int
}

type GetTopOutput struct {
	Entries []*models.LeaderboardEntry
}

type ResetInput struct {
	Board string
}

func validateAward(input *AwardInput) error {
	if input == nil || input.Board == "" {
		return ErrEmptyBoard
	}
	if input.Identity == "" {
		return ErrEmptyIdentity
	}
	if input.Amount < 0 {
		return models.ErrNegativeAward
	}
	return nil
}

// rank orders entries by descending score, earlier Reached first on ties,
// then truncates to limit
func rank(entries []*models.LeaderboardEntry, limit int) []*models.LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Reached < entries[j].Reached
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i, e := range entries {
		e.Rank = i + 1
	}
	return entries
}
