package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"supplement-quiz-service/internal/domain"
	"supplement-quiz-service/internal/labs"
	"supplement-quiz-service/internal/logger"
	"supplement-quiz-service/internal/quiz"
	"supplement-quiz-service/internal/recs"
	"supplement-quiz-service/internal/review"

	"github.com/gorilla/websocket"
)

// WSHandler drives a quiz session over a websocket: one question at a time,
// strictly sequential, ending with the aggregated result and either published
// recommendations or a pending-review notice.
type WSHandler struct {
	quizzes  *quiz.Service
	reviews  *review.Service
	recs     *recs.Client
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(quizzes *quiz.Service, reviews *review.Service, recsClient *recs.Client, log *logger.Logger) *WSHandler {
	return &WSHandler{
		quizzes: quizzes,
		reviews: reviews,
		recs:    recsClient,
		log:     log,
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

type answerPayload struct {
	OptionIndex int `json:"optionIndex"`
}

type submitPayload struct {
	HealthData []labs.Metric        `json:"healthData"`
	Profile    review.HealthProfile `json:"profile"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	catalogID := r.URL.Query().Get("catalogId")
	sessionID := r.URL.Query().Get("sessionId")
	if catalogID == "" || sessionID == "" {
		http.Error(w, "missing catalogId or sessionId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	defer h.quizzes.Leave(sessionID)

	view, err := h.quizzes.Start(r.Context(), catalogID, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	_ = conn.WriteJSON(outboundMessage[quiz.QuestionView]{Type: "question", Payload: view})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "answer":
			h.handleAnswer(conn, r, catalogID, sessionID, inbound.Payload)
		case "reset":
			view, err := h.quizzes.Reset(r.Context(), catalogID, sessionID)
			if err != nil {
				h.writeError(conn, err)
				continue
			}
			_ = conn.WriteJSON(outboundMessage[quiz.QuestionView]{Type: "question", Payload: view})
		case "submit":
			h.handleSubmit(conn, r, catalogID, sessionID, inbound.Payload)
		default:
			h.writeError(conn, errors.New("unsupported message type"))
		}
	}
}

func (h *WSHandler) handleAnswer(conn *websocket.Conn, r *http.Request, catalogID, sessionID string, raw json.RawMessage) {
	var payload answerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.writeError(conn, errors.New("invalid answer payload"))
		return
	}
	outcome, err := h.quizzes.SubmitAnswer(r.Context(), catalogID, sessionID, payload.OptionIndex)
	if err != nil {
		h.writeError(conn, err)
		return
	}
	if outcome.Step == quiz.StepCompleted {
		_ = conn.WriteJSON(outboundMessage[domain.QuizResult]{Type: "completed", Payload: *outcome.Result})
		return
	}
	_ = conn.WriteJSON(outboundMessage[quiz.QuestionView]{Type: "question", Payload: *outcome.Question})
}

// handleSubmit runs once the catalog is exhausted: high-risk profiles are
// queued for moderation, everything else goes straight to the recommendation
// backend (which falls back locally on failure).
func (h *WSHandler) handleSubmit(conn *websocket.Conn, r *http.Request, catalogID, sessionID string, raw json.RawMessage) {
	var payload submitPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			h.writeError(conn, errors.New("invalid submit payload"))
			return
		}
	}

	result, err := h.quizzes.Results(r.Context(), catalogID, sessionID)
	if err != nil {
		h.writeError(conn, err)
		return
	}

	if level := review.AssessRisk(payload.Profile); review.RequiresReview(level) {
		item, err := h.reviews.Enqueue(r.Context(), sessionID, payload.Profile)
		if err != nil {
			h.writeError(conn, err)
			return
		}
		h.log.Info("session queued for review", "sessionId", sessionID, "riskLevel", item.RiskLevel)
		_ = conn.WriteJSON(outboundMessage[review.Item]{Type: "pendingReview", Payload: item})
		return
	}

	resp, err := h.recs.Submit(r.Context(), recs.SubmitRequest{
		SessionID:  sessionID,
		Answers:    result.Answers,
		TopResults: result.TopResults,
		HealthData: labs.Normalize(payload.HealthData),
	})
	if err != nil {
		h.writeError(conn, err)
		return
	}
	_ = conn.WriteJSON(outboundMessage[recs.Response]{Type: "recommendations", Payload: resp})
}

func (h *WSHandler) writeError(conn *websocket.Conn, err error) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
}
