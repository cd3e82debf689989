package review

import (
	"errors"
	"fmt"
	"time"
)

// Status is the moderation state of a queued recommendation session.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusInReview Status = "IN_REVIEW"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Action names the operations a reviewer can perform on a queue item.
type Action string

const (
	ActionApprove  Action = "APPROVE"
	ActionReject   Action = "REJECT"
	ActionAssign   Action = "ASSIGN"
	ActionUnassign Action = "UNASSIGN"
)

// ErrNotFound is returned when a review item does not exist.
var ErrNotFound = errors.New("review item not found")

// ErrNoteRequired is returned when a rejection carries no resolution note.
// Rejections always go back to the user, so the reviewer must say why.
var ErrNoteRequired = errors.New("resolution note is required when rejecting")

// InvalidTransitionError reports an action that is illegal for the item's
// current status. APPROVE/REJECT are legal from PENDING or IN_REVIEW,
// ASSIGN only from PENDING, UNASSIGN only from IN_REVIEW.
type InvalidTransitionError struct {
	Status Status
	Action Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot perform action %q on review with status %q", e.Action, e.Status)
}

// Item is one entry in the moderation queue.
type Item struct {
	ID             string     `json:"id"`
	SessionID      string     `json:"sessionId"`
	Status         Status     `json:"status"`
	RiskLevel      RiskLevel  `json:"riskLevel"`
	AssignedTo     string     `json:"assignedTo,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
	ResolutionNote string     `json:"resolutionNote,omitempty"`
}

// Filter narrows List results. Zero-value fields are ignored.
type Filter struct {
	Status    Status
	RiskLevel RiskLevel
	From      time.Time
	To        time.Time
	Page      int
	PageSize  int
}

// Page is one page of queue items plus the unpaginated total.
type Page struct {
	Items    []Item `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}
