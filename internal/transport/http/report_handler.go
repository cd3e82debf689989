package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"supplement-quiz-service/internal/logger"
	"supplement-quiz-service/internal/recs"
)

// ReportHandler exposes lab report upload and extraction over REST. Clients
// upload a PDF, poll-free: the metrics endpoint blocks until extraction
// finishes or times out.
type ReportHandler struct {
	reports *recs.ReportClient
	log     *logger.Logger
}

func NewReportHandler(reports *recs.ReportClient, log *logger.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, log: log}
}

func (h *ReportHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /reports", h.upload)
	mux.HandleFunc("GET /reports/{id}/metrics", h.metrics)
}

func (h *ReportHandler) upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	reportID, err := h.reports.Upload(r.Context(), header.Filename, file)
	if err != nil {
		h.log.Error("report upload failed", "error", err)
		http.Error(w, "upload failed", http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusAccepted, map[string]string{"reportId": reportID})
}

func (h *ReportHandler) metrics(w http.ResponseWriter, r *http.Request) {
	reportID := r.PathValue("id")
	metrics, err := h.reports.WaitForExtraction(r.Context(), reportID)
	if err != nil {
		switch {
		case errors.Is(err, recs.ErrExtractionFailed):
			http.Error(w, "extraction failed", http.StatusUnprocessableEntity)
		case errors.Is(err, recs.ErrExtractionTimeout):
			http.Error(w, "extraction timed out", http.StatusGatewayTimeout)
		default:
			h.log.Error("report status check failed", "reportId", reportID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"reportId": reportID, "metrics": metrics})
}

func (h *ReportHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
