package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"mathquiz-service/internal/app"
	"mathquiz-service/internal/domain"
)

// WSHandler drives the play loop over a websocket: the client starts a game,
// streams answers and ends it, all on one connection.
type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Difficulty string `json:"difficulty"`
}

type answerPayload struct {
	Answer json.RawMessage `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs the game message loop. Each
// connection gets its own session key, so a reconnect starts clean.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	key := uuid.NewString()

	// The loop is strictly request/response, so a single goroutine owns all
	// writes and the gorilla single-writer rule holds without a pump.
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.writeError(conn, "invalid start payload")
				continue
			}
			difficulty := domain.Difficulty(payload.Difficulty)
			if payload.Difficulty == "" {
				difficulty = domain.DifficultyEasy
			}
			started, err := h.service.Start(r.Context(), key, difficulty)
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			h.write(conn, outboundMessage[startResponse]{Type: "started", Payload: startResponse{
				Success:   true,
				Question:  started.Question,
				TimeLimit: started.TimeLimitSeconds,
			}})
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.writeError(conn, "invalid answer payload")
				continue
			}
			outcome, err := h.service.SubmitAnswer(r.Context(), key, rawAnswerString(payload.Answer))
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			h.write(conn, outboundMessage[answerResponse]{Type: "answerResult", Payload: answerResponse{
				Success:        true,
				IsCorrect:      outcome.Correct,
				CorrectAnswer:  outcome.CorrectAnswer,
				Score:          outcome.Score,
				NextQuestion:   outcome.NextQuestion,
				TimeLimit:      outcome.TimeLimitSeconds,
				TotalQuestions: outcome.TotalQuestions,
				CorrectAnswers: outcome.CorrectAnswers,
			}})
		case "end":
			stats, err := h.service.End(r.Context(), key)
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			h.write(conn, outboundMessage[finalStatsPayload]{Type: "finalStats", Payload: finalStatsPayload{
				Score:          stats.Score,
				TotalQuestions: stats.TotalQuestions,
				CorrectAnswers: stats.CorrectAnswers,
				Accuracy:       stats.Accuracy,
				Duration:       stats.DurationSeconds,
				Difficulty:     string(stats.Difficulty),
			}})
		default:
			h.writeError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) write(conn *websocket.Conn, msg any) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("ws write error: %v", err)
	}
}

func (h *WSHandler) writeError(conn *websocket.Conn, message string) {
	h.write(conn, outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}})
}
