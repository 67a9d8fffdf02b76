package app

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"mathquiz-service/internal/domain"
)

const (
	basePoints       = 10
	leaderboardLimit = 10
)

// SessionRepository abstracts how game sessions are stored (in-memory, Redis, etc).
// Keys are opaque per-player identifiers supplied by the transport layer.
type SessionRepository interface {
	Get(ctx context.Context, key string) (domain.GameSession, bool, error)
	Save(ctx context.Context, key string, session domain.GameSession) error
}

// ResultRepository persists finished games and serves the leaderboard.
type ResultRepository interface {
	Append(ctx context.Context, result domain.GameResult) error
	TopByScore(ctx context.Context, limit int) ([]domain.GameResult, error)
}

// GameService contains the game lifecycle and scoring use cases.
type GameService struct {
	sessions SessionRepository
	results  ResultRepository
	now      func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGameService(sessions SessionRepository, results ResultRepository) *GameService {
	return NewGameServiceWithDeps(sessions, results, rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
}

// NewGameServiceWithDeps injects the rand source and clock for deterministic tests.
func NewGameServiceWithDeps(sessions SessionRepository, results ResultRepository, rnd *rand.Rand, now func() time.Time) *GameService {
	return &GameService{sessions: sessions, results: results, rnd: rnd, now: now}
}

// StartedGame is the player-facing view of a freshly started game.
type StartedGame struct {
	Question         string
	TimeLimitSeconds int
}

// AnswerOutcome summarizes one scored submission and the follow-up question.
type AnswerOutcome struct {
	Correct          bool
	CorrectAnswer    int
	Score            int
	NextQuestion     string
	TimeLimitSeconds int
	TotalQuestions   int
	CorrectAnswers   int
}

// FinalStats is the aggregate handed back when a game ends.
type FinalStats struct {
	Score           int
	TotalQuestions  int
	CorrectAnswers  int
	Accuracy        float64
	DurationSeconds float64
	Difficulty      domain.Difficulty
}

// Start begins a fresh game for the session key, discarding any prior state.
func (s *GameService) Start(ctx context.Context, key string, difficulty domain.Difficulty) (StartedGame, error) {
	question, err := s.generate(difficulty)
	if err != nil {
		return StartedGame{}, err
	}

	now := s.now()
	session := domain.GameSession{
		Active:            true,
		Difficulty:        difficulty,
		CurrentQuestion:   &question,
		StartedAt:         now,
		QuestionStartedAt: now,
	}
	if err := s.sessions.Save(ctx, key, session); err != nil {
		return StartedGame{}, err
	}
	return StartedGame{Question: question.Text, TimeLimitSeconds: question.TimeLimitSeconds}, nil
}

// SubmitAnswer scores a raw answer against the pending question and advances
// the session to a new question regardless of correctness. Unparseable input
// scores as incorrect rather than failing.
func (s *GameService) SubmitAnswer(ctx context.Context, key, rawAnswer string) (AnswerOutcome, error) {
	session, ok, err := s.sessions.Get(ctx, key)
	if err != nil {
		return AnswerOutcome{}, err
	}
	if !ok || !session.Active {
		return AnswerOutcome{}, domain.ErrNoActiveGame
	}
	if session.CurrentQuestion == nil {
		return AnswerOutcome{}, domain.ErrNoCurrentQuestion
	}
	current := *session.CurrentQuestion

	answer, parsed := parseAnswer(rawAnswer)
	correct := parsed && answer == current.Answer

	session.TotalQuestions++
	if correct {
		session.CorrectAnswers++
		session.Score += basePoints
	}

	now := s.now()
	elapsed := now.Sub(session.QuestionStartedAt).Seconds()
	if correct && elapsed < float64(current.TimeLimitSeconds)/2 {
		session.Score += speedBonus(elapsed)
	}

	next, err := s.generate(session.Difficulty)
	if err != nil {
		return AnswerOutcome{}, err
	}
	session.CurrentQuestion = &next
	session.QuestionStartedAt = now

	if err := s.sessions.Save(ctx, key, session); err != nil {
		return AnswerOutcome{}, err
	}
	return AnswerOutcome{
		Correct:          correct,
		CorrectAnswer:    current.Answer,
		Score:            session.Score,
		NextQuestion:     next.Text,
		TimeLimitSeconds: next.TimeLimitSeconds,
		TotalQuestions:   session.TotalQuestions,
		CorrectAnswers:   session.CorrectAnswers,
	}, nil
}

// End finalizes the game, persists its result and deactivates the session.
// The session's counters stay readable until the next Start overwrites them.
func (s *GameService) End(ctx context.Context, key string) (FinalStats, error) {
	session, ok, err := s.sessions.Get(ctx, key)
	if err != nil {
		return FinalStats{}, err
	}
	if !ok || !session.Active {
		return FinalStats{}, domain.ErrNoActiveGame
	}

	now := s.now()
	duration := now.Sub(session.StartedAt).Seconds()
	accuracy := 0.0
	if session.TotalQuestions > 0 {
		accuracy = float64(session.CorrectAnswers) / float64(session.TotalQuestions) * 100
	}

	result := domain.GameResult{
		Difficulty:      session.Difficulty,
		Score:           session.Score,
		TotalQuestions:  session.TotalQuestions,
		CorrectAnswers:  session.CorrectAnswers,
		Accuracy:        accuracy,
		DurationSeconds: duration,
		CreatedAt:       now,
	}
	if err := s.results.Append(ctx, result); err != nil {
		return FinalStats{}, err
	}

	session.Active = false
	if err := s.sessions.Save(ctx, key, session); err != nil {
		return FinalStats{}, err
	}
	return FinalStats{
		Score:           session.Score,
		TotalQuestions:  session.TotalQuestions,
		CorrectAnswers:  session.CorrectAnswers,
		Accuracy:        Round1(accuracy),
		DurationSeconds: Round1(duration),
		Difficulty:      session.Difficulty,
	}, nil
}

// Leaderboard returns the top stored results by score.
func (s *GameService) Leaderboard(ctx context.Context) ([]domain.GameResult, error) {
	return s.results.TopByScore(ctx, leaderboardLimit)
}

func (s *GameService) generate(difficulty domain.Difficulty) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.GenerateQuestion(s.rnd, difficulty)
}

// parseAnswer coerces the raw submission to an integer; anything unparseable
// reports false and can never match a correct answer.
func parseAnswer(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

// speedBonus rewards fast correct answers; the formula truncates toward zero
// and never drops below a single point.
func speedBonus(elapsed float64) int {
	bonus := int(10 - elapsed)
	if bonus < 1 {
		bonus = 1
	}
	return bonus
}

// Round1 rounds to one decimal for player-facing stats.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
