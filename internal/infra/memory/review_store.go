package memory

import (
	"context"
	"sort"
	"sync"

	"supplement-quiz-service/internal/review"
)

// ReviewStore is an in-memory implementation of review.Repository.
type ReviewStore struct {
	mu    sync.RWMutex
	items map[string]review.Item
}

func NewReviewStore() *ReviewStore {
	return &ReviewStore{items: make(map[string]review.Item)}
}

func (s *ReviewStore) Insert(_ context.Context, item *review.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = *item
	return nil
}

func (s *ReviewStore) Get(_ context.Context, id string) (review.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return review.Item{}, review.ErrNotFound
	}
	return item, nil
}

func (s *ReviewStore) GetBySession(_ context.Context, sessionID string) (review.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.SessionID == sessionID {
			return item, nil
		}
	}
	return review.Item{}, review.ErrNotFound
}

func (s *ReviewStore) Update(_ context.Context, item *review.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return review.ErrNotFound
	}
	s.items[item.ID] = *item
	return nil
}

func (s *ReviewStore) List(_ context.Context, filter review.Filter) ([]review.Item, int, error) {
	s.mu.RLock()
	matched := make([]review.Item, 0, len(s.items))
	for _, item := range s.items {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.RiskLevel != "" && item.RiskLevel != filter.RiskLevel {
			continue
		}
		if !filter.From.IsZero() && item.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && item.CreatedAt.After(filter.To) {
			continue
		}
		matched = append(matched, item)
	}
	s.mu.RUnlock()

	// Newest first, matching the Postgres repository's ordering.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = total
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *ReviewStore) CountByStatus(_ context.Context) (map[review.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[review.Status]int)
	for _, item := range s.items {
		counts[item.Status]++
	}
	return counts, nil
}
