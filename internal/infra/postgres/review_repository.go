package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"supplement-quiz-service/internal/review"

	"github.com/uptrace/bun"
)

type reviewRow struct {
	bun.BaseModel `bun:"table:review_queue,alias:rq"`

	ID             string     `bun:"id,pk"`
	SessionID      string     `bun:"session_id"`
	Status         string     `bun:"status"`
	RiskLevel      string     `bun:"risk_level"`
	AssignedTo     string     `bun:"assigned_to"`
	CreatedAt      time.Time  `bun:"created_at"`
	ResolvedAt     *time.Time `bun:"resolved_at"`
	ResolutionNote string     `bun:"resolution_note"`
}

// ReviewRepository is the Postgres-backed review.Repository.
type ReviewRepository struct {
	db *bun.DB
}

func NewReviewRepository(db *bun.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Insert(ctx context.Context, item *review.Item) error {
	row := toRow(item)
	if _, err := r.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert review item: %w", err)
	}
	return nil
}

func (r *ReviewRepository) Get(ctx context.Context, id string) (review.Item, error) {
	var row reviewRow
	err := r.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return review.Item{}, review.ErrNotFound
	}
	if err != nil {
		return review.Item{}, fmt.Errorf("get review item: %w", err)
	}
	return fromRow(row), nil
}

func (r *ReviewRepository) GetBySession(ctx context.Context, sessionID string) (review.Item, error) {
	var row reviewRow
	err := r.db.NewSelect().Model(&row).Where("session_id = ?", sessionID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return review.Item{}, review.ErrNotFound
	}
	if err != nil {
		return review.Item{}, fmt.Errorf("get review by session: %w", err)
	}
	return fromRow(row), nil
}

func (r *ReviewRepository) Update(ctx context.Context, item *review.Item) error {
	row := toRow(item)
	res, err := r.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update review item: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return review.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) List(ctx context.Context, filter review.Filter) ([]review.Item, int, error) {
	var rows []reviewRow
	q := r.db.NewSelect().Model(&rows)
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.RiskLevel != "" {
		q = q.Where("risk_level = ?", string(filter.RiskLevel))
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at <= ?", filter.To)
	}

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size > 0 {
		q = q.Limit(size).Offset((page - 1) * size)
	}

	total, err := q.Order("created_at DESC").ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list review items: %w", err)
	}

	items := make([]review.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromRow(row))
	}
	return items, total, nil
}

func (r *ReviewRepository) CountByStatus(ctx context.Context) (map[review.Status]int, error) {
	var rows []struct {
		Status string `bun:"status"`
		Count  int    `bun:"count"`
	}
	err := r.db.NewSelect().
		Model((*reviewRow)(nil)).
		ColumnExpr("status, count(*) AS count").
		Group("status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("count review items: %w", err)
	}
	counts := make(map[review.Status]int, len(rows))
	for _, row := range rows {
		counts[review.Status(row.Status)] = row.Count
	}
	return counts, nil
}

func toRow(item *review.Item) reviewRow {
	return reviewRow{
		ID:             item.ID,
		SessionID:      item.SessionID,
		Status:         string(item.Status),
		RiskLevel:      string(item.RiskLevel),
		AssignedTo:     item.AssignedTo,
		CreatedAt:      item.CreatedAt,
		ResolvedAt:     item.ResolvedAt,
		ResolutionNote: item.ResolutionNote,
	}
}

func fromRow(row reviewRow) review.Item {
	return review.Item{
		ID:             row.ID,
		SessionID:      row.SessionID,
		Status:         review.Status(row.Status),
		RiskLevel:      review.RiskLevel(row.RiskLevel),
		AssignedTo:     row.AssignedTo,
		CreatedAt:      row.CreatedAt,
		ResolvedAt:     row.ResolvedAt,
		ResolutionNote: row.ResolutionNote,
	}
}
