// Package recs talks to the external recommendation backend. All of its
// operations degrade gracefully: if the backend is unreachable or errors,
// locally generated recommendations are returned instead so the user flow
// is never blocked.
package recs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"supplement-quiz-service/internal/domain"
	"supplement-quiz-service/internal/labs"
	"supplement-quiz-service/internal/logger"
)

// SubmitRequest is the payload handed to the backend once the catalog is
// exhausted: every supplement's summary, the top candidates, and optional
// extracted lab metrics.
type SubmitRequest struct {
	SessionID  string                 `json:"session_id"`
	Answers    []domain.AnswerSummary `json:"answers"`
	TopResults []domain.AnswerSummary `json:"top_results"`
	HealthData []labs.Metric          `json:"health_data,omitempty"`
}

// Product is an affiliate product attached to a recommendation item.
type Product struct {
	ID          string   `json:"product_id"`
	Name        string   `json:"product_name"`
	Why         []string `json:"why_this_product"`
	Price       float64  `json:"price,omitempty"`
	Currency    string   `json:"currency"`
	PurchaseURL string   `json:"purchase_url"`
	ImageURL    string   `json:"image_url,omitempty"`
	PartnerName string   `json:"partner_name,omitempty"`
}

// Item is one ranked recommendation.
type Item struct {
	Rank         int       `json:"rank"`
	SupplementID string    `json:"supplement_id"`
	Name         string    `json:"name"`
	Group        string    `json:"group"`
	Why          []string  `json:"why"`
	Safety       []string  `json:"safety"`
	Confidence   int       `json:"confidence"`
	Products     []Product `json:"recommended_products"`
}

// Response is the ranked recommendation list, whether AI-generated by the
// backend or locally computed as a fallback.
type Response struct {
	SessionID   string    `json:"session_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Items       []Item    `json:"items"`
	Fallback    bool      `json:"fallback,omitempty"`
}

// ProductSource supplies approved affiliate products keyed by supplement ID.
// May be nil, in which case fallback items carry no products.
type ProductSource interface {
	ApprovedProducts(ctx context.Context) (map[string][]Product, error)
}

// Client submits quiz results to the recommendation backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	products   ProductSource
	log        *logger.Logger
	now        func() time.Time
}

func NewClient(baseURL string, timeout time.Duration, products ProductSource, log *logger.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		products:   products,
		log:        log,
		now:        time.Now,
	}
}

// Submit posts the quiz payload to the backend. Any transport or HTTP error
// falls back to locally generated recommendations; the error is logged, not
// surfaced.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (Response, error) {
	if c.baseURL == "" {
		return c.fallback(ctx, req), nil
	}

	resp, err := c.post(ctx, req)
	if err != nil {
		c.log.Warn("recommendation backend unavailable, using local fallback",
			"sessionId", req.SessionID, "error", err)
		return c.fallback(ctx, req), nil
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, req SubmitRequest) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("marshal submit request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/quiz/submit", bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("recommendation backend returned %d", httpResp.StatusCode)
	}
	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("decode recommendation response: %w", err)
	}
	return resp, nil
}

func (c *Client) fallback(ctx context.Context, req SubmitRequest) Response {
	var products map[string][]Product
	if c.products != nil {
		loaded, err := c.products.ApprovedProducts(ctx)
		if err != nil {
			c.log.Warn("product source unavailable for fallback", "error", err)
		} else {
			products = loaded
		}
	}
	return Response{
		SessionID:   req.SessionID,
		GeneratedAt: c.now().UTC(),
		Items:       Fallback(req.TopResults, products),
		Fallback:    true,
	}
}

// Fallback builds recommendation items locally from the top candidates.
// Confidence grows with the quiz score and is capped at 95.
func Fallback(top []domain.AnswerSummary, productsBySupplement map[string][]Product) []Item {
	items := make([]Item, 0, len(top))
	for i, result := range top {
		confidence := 60 + result.TotalScore*5
		if confidence > 95 {
			confidence = 95
		}

		var products []Product
		for _, p := range productsBySupplement[result.SupplementID] {
			p.Why = productReasons(p, result)
			products = append(products, p)
			if len(products) == 2 {
				break
			}
		}

		items = append(items, Item{
			Rank:         i + 1,
			SupplementID: result.SupplementID,
			Name:         result.SupplementName,
			Group:        result.Group,
			Why: []string{
				fmt.Sprintf("Your questionnaire indicates an elevated need in the %s category", result.Group),
				fmt.Sprintf("Questionnaire score: %d", result.TotalScore),
			},
			Safety:     []string{},
			Confidence: confidence,
			Products:   products,
		})
	}
	return items
}

func productReasons(p Product, result domain.AnswerSummary) []string {
	reasons := []string{
		fmt.Sprintf("Belongs to the %s category you scored highest in", result.Group),
		"Approved by our catalog review",
	}
	if p.PartnerName != "" {
		reasons = append(reasons, "From trusted partner "+p.PartnerName)
	}
	return reasons
}
