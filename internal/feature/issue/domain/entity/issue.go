// Package entity defines the domain entities for the issue feature.
package entity

import (
	"time"

	"github.com/google/uuid"

	"issue_backend/internal/shared/optional"
)

// Status is the workflow state of an issue.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusDone}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Priority is the urgency of an issue.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// Issue はプロジェクトに属する作業項目です。
// UpdatedAt は最初の更新まで nil です。
type Issue struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Title       string
	Description *string
	Status      Status
	Priority    Priority
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// View returns the public snapshot of i.
func (i *Issue) View() IssueView {
	return IssueView{
		ID:          i.ID,
		ProjectID:   i.ProjectID,
		Title:       i.Title,
		Description: i.Description,
		Status:      i.Status,
		Priority:    i.Priority,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// IssueView is the read-only snapshot stored under issue:{id}.
type IssueView struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// NewIssue は作成時の入力です。空のStatus/Priorityはデフォルト(open/medium)になります。
type NewIssue struct {
	Title       string
	Description *string
	Status      Status
	Priority    Priority
}

// WithDefaults fills the server-side defaults.
func (n NewIssue) WithDefaults() NewIssue {
	if n.Status == "" {
		n.Status = StatusOpen
	}
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	return n
}

// IssuePatch は部分更新です。nil/未指定のフィールドは変更しません。
type IssuePatch struct {
	Title       *string
	Description optional.Value[string]
	Status      *Status
	Priority    *Priority
}

// ApplyTo writes the present fields onto i and stamps UpdatedAt with now.
// UpdatedAt never moves backwards.
func (patch IssuePatch) ApplyTo(i *Issue, now time.Time) {
	if patch.Title != nil {
		i.Title = *patch.Title
	}
	if patch.Description.Set {
		i.Description = patch.Description.Ptr
	}
	if patch.Status != nil {
		i.Status = *patch.Status
	}
	if patch.Priority != nil {
		i.Priority = *patch.Priority
	}
	if i.UpdatedAt != nil && now.Before(*i.UpdatedAt) {
		now = *i.UpdatedAt
	}
	i.UpdatedAt = &now
}

// Filter はIssue一覧の完全一致フィルタです。nilは条件なしです。
type Filter struct {
	Status   *Status
	Priority *Priority
}
