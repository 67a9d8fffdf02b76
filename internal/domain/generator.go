package domain

import (
	"fmt"
	"math/rand"
)

// GenerateQuestion produces a random arithmetic problem for the given tier.
// The caller owns the rand source; draws are uniform over the tier's bounds.
func GenerateQuestion(r *rand.Rand, difficulty Difficulty) (Question, error) {
	setting, ok := Settings[difficulty]
	if !ok {
		return Question{}, ErrInvalidDifficulty
	}

	op := setting.Operations[r.Intn(len(setting.Operations))]

	var n1, n2, answer int
	switch op {
	case OpAdd:
		n1 = 1 + r.Intn(setting.MaxNumber)
		n2 = 1 + r.Intn(setting.MaxNumber)
		answer = n1 + n2
	case OpSub:
		// Second operand never exceeds the first, keeping the result non-negative.
		n1 = 1 + r.Intn(setting.MaxNumber)
		n2 = 1 + r.Intn(n1)
		answer = n1 - n2
	case OpMul:
		// Products stay small regardless of tier.
		limit := min(setting.MaxNumber/5, 12)
		n1 = 1 + r.Intn(limit)
		n2 = 1 + r.Intn(limit)
		answer = n1 * n2
	case OpDiv:
		// Pick the answer first so the division is always exact.
		answer = 1 + r.Intn(min(setting.MaxNumber/5, 12))
		n2 = 2 + r.Intn(min(setting.MaxNumber/10, 10)-1)
		n1 = answer * n2
	}

	return Question{
		Text:             fmt.Sprintf("%d %s %d", n1, op, n2),
		Operand1:         n1,
		Operand2:         n2,
		Operation:        op,
		Answer:           answer,
		TimeLimitSeconds: setting.TimeLimitSeconds,
	}, nil
}
