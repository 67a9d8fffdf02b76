package domain

import "time"

// Difficulty identifies one of the three fixed game tiers.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Operation is an arithmetic operator glyph as shown to the player.
type Operation string

const (
	OpAdd Operation = "+"
	OpSub Operation = "-"
	OpMul Operation = "×"
	OpDiv Operation = "÷"
)

// Setting fixes the operand range, operator set and countdown for a tier.
type Setting struct {
	MaxNumber        int
	Operations       []Operation
	TimeLimitSeconds int
}

// Settings maps each tier to its preset. Higher tiers widen the operand
// range, shorten the countdown and add operators.
var Settings = map[Difficulty]Setting{
	DifficultyEasy: {
		MaxNumber:        10,
		Operations:       []Operation{OpAdd, OpSub},
		TimeLimitSeconds: 30,
	},
	DifficultyMedium: {
		MaxNumber:        50,
		Operations:       []Operation{OpAdd, OpSub, OpMul},
		TimeLimitSeconds: 20,
	},
	DifficultyHard: {
		MaxNumber:        100,
		Operations:       []Operation{OpAdd, OpSub, OpMul, OpDiv},
		TimeLimitSeconds: 15,
	},
}

// Question is a single generated arithmetic problem.
type Question struct {
	Text             string    `json:"text"`
	Operand1         int       `json:"operand1"`
	Operand2         int       `json:"operand2"`
	Operation        Operation `json:"operation"`
	Answer           int       `json:"answer"`
	TimeLimitSeconds int       `json:"timeLimitSeconds"`
}

// GameSession is the per-player record of one play-through. Ending a game
// flips Active off but keeps the counters readable until the next start.
type GameSession struct {
	Active            bool       `json:"active"`
	Difficulty        Difficulty `json:"difficulty"`
	Score             int        `json:"score"`
	TotalQuestions    int        `json:"totalQuestions"`
	CorrectAnswers    int        `json:"correctAnswers"`
	CurrentQuestion   *Question  `json:"currentQuestion,omitempty"`
	StartedAt         time.Time  `json:"startedAt"`
	QuestionStartedAt time.Time  `json:"questionStartedAt"`
}

// GameResult is the immutable persisted summary of one completed game.
type GameResult struct {
	ID              int64      `json:"id"`
	Difficulty      Difficulty `json:"difficulty"`
	Score           int        `json:"score"`
	TotalQuestions  int        `json:"totalQuestions"`
	CorrectAnswers  int        `json:"correctAnswers"`
	Accuracy        float64    `json:"accuracy"`
	DurationSeconds float64    `json:"durationSeconds"`
	CreatedAt       time.Time  `json:"createdAt"`
}
