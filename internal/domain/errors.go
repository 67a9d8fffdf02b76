package domain

import "errors"

var (
	// ErrInvalidDifficulty is returned for a difficulty key outside the three tiers.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrNoActiveGame is returned when an operation requires an active game session.
	ErrNoActiveGame = errors.New("no active game")
	// ErrNoCurrentQuestion indicates an active session without a pending question.
	ErrNoCurrentQuestion = errors.New("no current question")
)
