package review

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository abstracts how queue items are stored (in-memory, Postgres).
type Repository interface {
	Insert(ctx context.Context, item *Item) error
	Get(ctx context.Context, id string) (Item, error)
	GetBySession(ctx context.Context, sessionID string) (Item, error)
	Update(ctx context.Context, item *Item) error
	List(ctx context.Context, filter Filter) ([]Item, int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

// Service implements the moderation workflow over a Repository.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceWithClock is test-only for deterministic timestamps.
func NewServiceWithClock(repo Repository, now func() time.Time) *Service {
	return &Service{repo: repo, now: now}
}

// Enqueue grades the profile and inserts a PENDING item for the session.
func (s *Service) Enqueue(ctx context.Context, sessionID string, profile HealthProfile) (Item, error) {
	item := Item{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Status:    StatusPending,
		RiskLevel: AssessRisk(profile),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Get fetches one queue item by ID.
func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	return s.repo.Get(ctx, id)
}

// GetBySession fetches the queue item for a recommendation session, if any.
func (s *Service) GetBySession(ctx context.Context, sessionID string) (Item, error) {
	return s.repo.GetBySession(ctx, sessionID)
}

// List returns a filtered, paginated view of the queue.
func (s *Service) List(ctx context.Context, filter Filter) (Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// Approve publishes the session's recommendations.
func (s *Service) Approve(ctx context.Context, id, reviewer, note string) (Item, error) {
	return s.resolve(ctx, id, reviewer, note, ActionApprove, StatusApproved)
}

// Reject declines the session and records the reviewer's note so the user
// can be asked for supplementary information. The note is mandatory.
func (s *Service) Reject(ctx context.Context, id, reviewer, note string) (Item, error) {
	if strings.TrimSpace(note) == "" {
		return Item{}, ErrNoteRequired
	}
	return s.resolve(ctx, id, reviewer, note, ActionReject, StatusRejected)
}

func (s *Service) resolve(ctx context.Context, id, reviewer, note string, action Action, final Status) (Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if item.Status != StatusPending && item.Status != StatusInReview {
		return Item{}, &InvalidTransitionError{Status: item.Status, Action: action}
	}
	resolved := s.now().UTC()
	item.Status = final
	item.AssignedTo = reviewer
	item.ResolvedAt = &resolved
	item.ResolutionNote = note
	if err := s.repo.Update(ctx, &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Assign claims a PENDING item for a reviewer.
func (s *Service) Assign(ctx context.Context, id, reviewer string) (Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if item.Status != StatusPending {
		return Item{}, &InvalidTransitionError{Status: item.Status, Action: ActionAssign}
	}
	item.Status = StatusInReview
	item.AssignedTo = reviewer
	if err := s.repo.Update(ctx, &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Unassign returns an IN_REVIEW item to the pending pool.
func (s *Service) Unassign(ctx context.Context, id string) (Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if item.Status != StatusInReview {
		return Item{}, &InvalidTransitionError{Status: item.Status, Action: ActionUnassign}
	}
	item.Status = StatusPending
	item.AssignedTo = ""
	if err := s.repo.Update(ctx, &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// PendingCount reports how many items await a reviewer.
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return 0, err
	}
	return counts[StatusPending], nil
}

// Stats returns per-status item counts.
func (s *Service) Stats(ctx context.Context) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx)
}
