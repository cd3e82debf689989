package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"supplement-quiz-service/internal/logger"
	"supplement-quiz-service/internal/review"
)

// ReviewHandler exposes the moderation queue over REST for the back office.
type ReviewHandler struct {
	service *review.Service
	log     *logger.Logger
}

func NewReviewHandler(service *review.Service, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{service: service, log: log}
}

// Register mounts the review routes on the mux.
func (h *ReviewHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /reviews", h.list)
	mux.HandleFunc("GET /reviews/stats", h.stats)
	mux.HandleFunc("GET /reviews/session/{sessionId}", h.getBySession)
	mux.HandleFunc("GET /reviews/{id}", h.get)
	mux.HandleFunc("POST /reviews/{id}/approve", h.resolve(review.ActionApprove))
	mux.HandleFunc("POST /reviews/{id}/reject", h.resolve(review.ActionReject))
	mux.HandleFunc("POST /reviews/{id}/assign", h.assign)
	mux.HandleFunc("POST /reviews/{id}/unassign", h.unassign)
}

func (h *ReviewHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := review.Filter{
		Status:    review.Status(q.Get("status")),
		RiskLevel: review.RiskLevel(q.Get("riskLevel")),
	}
	if raw := q.Get("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.From = t
		}
	}
	if raw := q.Get("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.To = t
		}
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PageSize, _ = strconv.Atoi(q.Get("pageSize"))

	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, page)
}

func (h *ReviewHandler) stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, counts)
}

// getBySession lets a client poll the review outcome for its own session
// after receiving a pendingReview notice over the websocket.
func (h *ReviewHandler) getBySession(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetBySession(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

func (h *ReviewHandler) get(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

type resolveRequest struct {
	Reviewer string `json:"reviewer"`
	Note     string `json:"note"`
}

func (h *ReviewHandler) resolve(action review.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		var (
			item review.Item
			err  error
		)
		id := r.PathValue("id")
		if action == review.ActionApprove {
			item, err = h.service.Approve(r.Context(), id, req.Reviewer, req.Note)
		} else {
			item, err = h.service.Reject(r.Context(), id, req.Reviewer, req.Note)
		}
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.log.Info("review resolved", "id", id, "action", action, "reviewer", req.Reviewer)
		h.writeJSON(w, http.StatusOK, item)
	}
}

func (h *ReviewHandler) assign(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	item, err := h.service.Assign(r.Context(), r.PathValue("id"), req.Reviewer)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

func (h *ReviewHandler) unassign(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Unassign(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

func (h *ReviewHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *ReviewHandler) writeError(w http.ResponseWriter, err error) {
	var transitionErr *review.InvalidTransitionError
	switch {
	case errors.Is(err, review.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, review.ErrNoteRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &transitionErr):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.log.Error("review handler error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
