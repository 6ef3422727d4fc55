package models

import "fmt"

// GameError is a custom error type for game-related errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Refusal kinds surfaced to chat
const (
	ErrInvalidState   GameError = "invalid state"
	ErrWindowClosed   GameError = "voting window closed"
	ErrInvalidChoice  GameError = "invalid choice"
	ErrDuplicateVote  GameError = "duplicate vote"
	ErrOutOfRange     GameError = "out of range"
	ErrCooldownActive GameError = "cooldown active"
)

// Construction errors
const (
	ErrNilConfig      GameError = "config cannot be nil"
	ErrNilScheduler   GameError = "scheduler cannot be nil"
	ErrNilClock       GameError = "clock cannot be nil"
	ErrNilDiceRoller  GameError = "dice roller cannot be nil"
	ErrNilSink        GameError = "sink cannot be nil"
	ErrNilRepository  GameError = "repository cannot be nil"
	ErrNilLeaderboard GameError = "leaderboard cannot be nil"
	ErrNilMessaging   GameError = "messaging service cannot be nil"
	ErrEmptyChoices   GameError = "choices cannot be empty"
	ErrNegativeAward  GameError = "award amount cannot be negative"
)

// Refusal is a user-facing rejection of a command. It unwraps to its Kind so
// callers can match with errors.Is.
type Refusal struct {
	Kind    GameError
	Message string
}

func (r *Refusal) Error() string {
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}

func (r *Refusal) Unwrap() error {
	return r.Kind
}

// Refuse builds a Refusal with a formatted chat message
func Refuse(kind GameError, format string, args ...any) error {
	return &Refusal{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}
