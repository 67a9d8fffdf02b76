package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"mathquiz-service/internal/app"
	"mathquiz-service/internal/domain"
)

// sessionCookie carries the opaque per-player session key. One cookie means
// one player; the browser serializes its own requests.
const sessionCookie = "mathquiz_session"

// Handler exposes the game over plain JSON endpoints.
type Handler struct {
	service *app.GameService
}

func NewHandler(service *app.GameService) *Handler {
	return &Handler{service: service}
}

// Register wires the game routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/game/start", h.handleStart)
	mux.HandleFunc("/api/game/answer", h.handleAnswer)
	mux.HandleFunc("/api/game/end", h.handleEnd)
	mux.HandleFunc("/api/leaderboard", h.handleLeaderboard)
}

type startRequest struct {
	Difficulty string `json:"difficulty"`
}

type startResponse struct {
	Success   bool   `json:"success"`
	Question  string `json:"question"`
	TimeLimit int    `json:"time_limit"`
}

type answerRequest struct {
	Answer json.RawMessage `json:"answer"`
}

type answerResponse struct {
	Success        bool   `json:"success"`
	IsCorrect      bool   `json:"is_correct"`
	CorrectAnswer  int    `json:"correct_answer"`
	Score          int    `json:"score"`
	NextQuestion   string `json:"next_question"`
	TimeLimit      int    `json:"time_limit"`
	TotalQuestions int    `json:"total_questions"`
	CorrectAnswers int    `json:"correct_answers"`
}

type finalStatsPayload struct {
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	Accuracy       float64 `json:"accuracy"`
	Duration       float64 `json:"duration"`
	Difficulty     string  `json:"difficulty"`
}

type endResponse struct {
	Success    bool              `json:"success"`
	FinalStats finalStatsPayload `json:"final_stats"`
}

type leaderboardEntry struct {
	Score      int     `json:"score"`
	Difficulty string  `json:"difficulty"`
	Accuracy   float64 `json:"accuracy"`
	Date       string  `json:"date"`
}

type leaderboardResponse struct {
	Leaderboard []leaderboardEntry `json:"leaderboard"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusOK, errorResponse{Error: "invalid request body"})
		return
	}
	difficulty := domain.Difficulty(req.Difficulty)
	if req.Difficulty == "" {
		difficulty = domain.DifficultyEasy
	}

	key := h.sessionKey(w, r)
	started, err := h.service.Start(r.Context(), key, difficulty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, startResponse{
		Success:   true,
		Question:  started.Question,
		TimeLimit: started.TimeLimitSeconds,
	})
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, errorResponse{Error: "invalid request body"})
		return
	}

	key := h.sessionKey(w, r)
	outcome, err := h.service.SubmitAnswer(r.Context(), key, rawAnswerString(req.Answer))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Success:        true,
		IsCorrect:      outcome.Correct,
		CorrectAnswer:  outcome.CorrectAnswer,
		Score:          outcome.Score,
		NextQuestion:   outcome.NextQuestion,
		TimeLimit:      outcome.TimeLimitSeconds,
		TotalQuestions: outcome.TotalQuestions,
		CorrectAnswers: outcome.CorrectAnswers,
	})
}

func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := h.sessionKey(w, r)
	stats, err := h.service.End(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, endResponse{
		Success: true,
		FinalStats: finalStatsPayload{
			Score:          stats.Score,
			TotalQuestions: stats.TotalQuestions,
			CorrectAnswers: stats.CorrectAnswers,
			Accuracy:       stats.Accuracy,
			Duration:       stats.DurationSeconds,
			Difficulty:     string(stats.Difficulty),
		},
	})
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	results, err := h.service.Leaderboard(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	entries := make([]leaderboardEntry, 0, len(results))
	for _, result := range results {
		entries = append(entries, leaderboardEntry{
			Score:      result.Score,
			Difficulty: string(result.Difficulty),
			Accuracy:   app.Round1(result.Accuracy),
			Date:       result.CreatedAt.Format(time.DateOnly),
		})
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Leaderboard: entries})
}

// sessionKey returns the player's session key, minting a cookie on first contact.
func (h *Handler) sessionKey(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
	})
	return key
}

// writeError reports domain failures as soft JSON errors; anything else is a 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, domain.ErrNoActiveGame),
		errors.Is(err, domain.ErrNoCurrentQuestion):
		writeJSON(w, http.StatusOK, errorResponse{Error: err.Error()})
	default:
		log.Printf("game handler error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

// rawAnswerString accepts both "7" and 7 on the wire; everything else falls
// through to the scoring engine's unparseable-answer path.
func rawAnswerString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
