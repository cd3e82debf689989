package recs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"supplement-quiz-service/internal/domain"
	"supplement-quiz-service/internal/logger"
)

func TestSubmitUsesBackendWhenHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quiz/submit" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.TopResults) != 1 || req.TopResults[0].SupplementID != "vitamin-d" {
			t.Fatalf("unexpected payload %+v", req)
		}
		_ = json.NewEncoder(w).Encode(Response{
			SessionID: req.SessionID,
			Items:     []Item{{Rank: 1, SupplementID: "vitamin-d", Confidence: 88}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, nil, logger.NewNop())
	resp, err := client.Submit(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.Fallback {
		t.Fatalf("expected backend response, got fallback")
	}
	if len(resp.Items) != 1 || resp.Items[0].Confidence != 88 {
		t.Fatalf("unexpected items %+v", resp.Items)
	}
}

func TestSubmitFallsBackOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, nil, logger.NewNop())
	resp, err := client.Submit(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("submit must never fail: %v", err)
	}
	if !resp.Fallback {
		t.Fatalf("expected fallback response")
	}
	if len(resp.Items) != 1 || resp.Items[0].SupplementID != "vitamin-d" {
		t.Fatalf("unexpected fallback items %+v", resp.Items)
	}
}

func TestSubmitWithoutBackendConfigured(t *testing.T) {
	client := NewClient("", time.Second, nil, logger.NewNop())
	resp, err := client.Submit(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !resp.Fallback {
		t.Fatalf("expected fallback when no backend configured")
	}
}

func TestFallbackConfidenceFormula(t *testing.T) {
	items := Fallback([]domain.AnswerSummary{
		{SupplementID: "a", TotalScore: 5},
		{SupplementID: "b", TotalScore: 9}, // 60+45 clamps to 95
		{SupplementID: "c", TotalScore: 0},
	}, nil)

	if items[0].Confidence != 85 {
		t.Fatalf("expected 60+5*5=85, got %d", items[0].Confidence)
	}
	if items[1].Confidence != 95 {
		t.Fatalf("expected clamp at 95, got %d", items[1].Confidence)
	}
	if items[2].Confidence != 60 {
		t.Fatalf("expected base confidence 60, got %d", items[2].Confidence)
	}
	for i, item := range items {
		if item.Rank != i+1 {
			t.Fatalf("expected rank %d, got %d", i+1, item.Rank)
		}
	}
}

func TestFallbackAttachesAtMostTwoProducts(t *testing.T) {
	products := map[string][]Product{
		"vitamin-d": {
			{ID: "p1", Name: "D3 1000IU", PartnerName: "SunCo"},
			{ID: "p2", Name: "D3 2000IU"},
			{ID: "p3", Name: "D3 5000IU"},
		},
	}
	items := Fallback([]domain.AnswerSummary{{SupplementID: "vitamin-d", Group: "vitamins", TotalScore: 6}}, products)
	if len(items[0].Products) != 2 {
		t.Fatalf("expected at most 2 products, got %d", len(items[0].Products))
	}
	if len(items[0].Products[0].Why) != 3 {
		t.Fatalf("expected partner reason appended, got %v", items[0].Products[0].Why)
	}
}

func sampleRequest() SubmitRequest {
	return SubmitRequest{
		SessionID: "sess-1",
		Answers: []domain.AnswerSummary{
			{SupplementID: "vitamin-d", SupplementName: "Vitamin D", Group: "vitamins", TotalScore: 5, Level: domain.TierMedium},
			{SupplementID: "zinc", SupplementName: "Zinc", Group: "minerals", TotalScore: 0, Level: domain.TierNone},
		},
		TopResults: []domain.AnswerSummary{
			{SupplementID: "vitamin-d", SupplementName: "Vitamin D", Group: "vitamins", TotalScore: 5, Level: domain.TierMedium},
		},
	}
}
