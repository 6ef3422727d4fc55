package models

// LeaderboardEntry is one ranked row of a leaderboard
type LeaderboardEntry struct {
	// Rank is the 1-based position in the ranked view
	Rank int

	// Identity is the participant
	Identity string

	// Score is the accumulated score, never negative
	Score int

	// Reached orders ties: lower means the score was reached earlier
	Reached int64
}
