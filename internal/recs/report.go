package recs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"supplement-quiz-service/internal/labs"
	"supplement-quiz-service/internal/logger"
)

// ReportStatus is the extraction state reported by the backend.
type ReportStatus string

const (
	ReportUploading  ReportStatus = "uploading"
	ReportProcessing ReportStatus = "processing"
	ReportCompleted  ReportStatus = "completed"
	ReportFailed     ReportStatus = "failed"
)

// ErrExtractionFailed is returned when the backend marks a report failed.
var ErrExtractionFailed = errors.New("report extraction failed")

// ErrExtractionTimeout is returned when polling exhausts its attempts.
var ErrExtractionTimeout = errors.New("report extraction timed out")

// ReportClient uploads lab reports and polls the backend for extracted
// biomarker data.
type ReportClient struct {
	baseURL      string
	httpClient   *http.Client
	pollAttempts int
	pollInterval time.Duration
	log          *logger.Logger
}

func NewReportClient(baseURL string, timeout time.Duration, pollAttempts int, pollInterval time.Duration, log *logger.Logger) *ReportClient {
	if pollAttempts <= 0 {
		pollAttempts = 30
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &ReportClient{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: timeout},
		pollAttempts: pollAttempts,
		pollInterval: pollInterval,
		log:          log,
	}
}

type uploadResponse struct {
	ReportID string `json:"report_id"`
}

type statusResponse struct {
	Status     ReportStatus  `json:"status"`
	HealthData []labs.Metric `json:"health_data,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Upload posts the report file and returns the backend's report identifier.
func (c *ReportClient) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reports", pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload report: backend returned %d", resp.StatusCode)
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return uploaded.ReportID, nil
}

// WaitForExtraction polls the status endpoint until the report completes,
// fails, or the attempt budget runs out (default 30 attempts, 1s apart).
// Completed reports return normalized biomarker metrics.
func (c *ReportClient) WaitForExtraction(ctx context.Context, reportID string) ([]labs.Metric, error) {
	for attempt := 0; attempt < c.pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pollInterval):
			}
		}

		status, err := c.status(ctx, reportID)
		if err != nil {
			c.log.Warn("report status poll failed", "reportId", reportID, "attempt", attempt, "error", err)
			continue
		}
		switch status.Status {
		case ReportCompleted:
			return labs.Normalize(status.HealthData), nil
		case ReportFailed:
			return nil, fmt.Errorf("%w: %s", ErrExtractionFailed, status.Error)
		}
	}
	return nil, ErrExtractionTimeout
}

func (c *ReportClient) status(ctx context.Context, reportID string) (statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reports/"+reportID+"/status", nil)
	if err != nil {
		return statusResponse{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return statusResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusResponse{}, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}
	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return statusResponse{}, err
	}
	return status, nil
}
