// Package dto はissueフィーチャーのHTTPリクエスト/レスポンスを定義します。
package dto

import (
	"time"

	"github.com/google/uuid"

	"issue_backend/internal/feature/issue/domain/entity"
	"issue_backend/internal/shared/apperror"
	"issue_backend/internal/shared/optional"
)

// CreateIssueReq is the POST /issues/projects/:project_id body.
// Status and priority default to open/medium when omitted.
type CreateIssueReq struct {
	Title       string  `json:"title" binding:"required,min=3,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Status      string  `json:"status" binding:"omitempty,oneof=open in_progress done"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=low medium high"`
}

// ToNewIssue converts the request into a create input.
func (r CreateIssueReq) ToNewIssue() entity.NewIssue {
	return entity.NewIssue{
		Title:       r.Title,
		Description: r.Description,
		Status:      entity.Status(r.Status),
		Priority:    entity.Priority(r.Priority),
	}
}

// UpdateIssueReq is the PATCH /issues/:issue_id body.
type UpdateIssueReq struct {
	Title       optional.Value[string] `json:"title" binding:"omitempty,min=3,max=200"`
	Description optional.Value[string] `json:"description" binding:"omitempty,max=1000"`
	Status      optional.Value[string] `json:"status" binding:"omitempty,oneof=open in_progress done"`
	Priority    optional.Value[string] `json:"priority" binding:"omitempty,oneof=low medium high"`
}

// ToPatch は description 以外のフィールドへの null を拒否します。
func (r UpdateIssueReq) ToPatch() (entity.IssuePatch, error) {
	patch := entity.IssuePatch{Description: r.Description}

	title, err := required("title", r.Title)
	if err != nil {
		return patch, err
	}
	patch.Title = title

	status, err := required("status", r.Status)
	if err != nil {
		return patch, err
	}
	if status != nil {
		s := entity.Status(*status)
		patch.Status = &s
	}

	priority, err := required("priority", r.Priority)
	if err != nil {
		return patch, err
	}
	if priority != nil {
		p := entity.Priority(*priority)
		patch.Priority = &p
	}
	return patch, nil
}

func required(field string, v optional.Value[string]) (*string, error) {
	if !v.Set {
		return nil, nil
	}
	if v.Ptr == nil {
		return nil, apperror.Validation(field + " must not be null").WithDetails(map[string]any{"field": field})
	}
	return v.Ptr, nil
}

// NewFilter は一覧クエリの status/priority を Filter に変換します。値の検証はユースケースで行います。
func NewFilter(status, priority *string) entity.Filter {
	var f entity.Filter
	if status != nil {
		s := entity.Status(*status)
		f.Status = &s
	}
	if priority != nil {
		p := entity.Priority(*priority)
		f.Priority = &p
	}
	return f
}

// IssueRes is the public representation of an issue.
type IssueRes struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// NewIssueRes converts a snapshot into a response.
func NewIssueRes(v entity.IssueView) IssueRes {
	return IssueRes{
		ID:          v.ID,
		ProjectID:   v.ProjectID,
		Title:       v.Title,
		Description: v.Description,
		Status:      string(v.Status),
		Priority:    string(v.Priority),
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// FromEntity converts a store-backed issue into a response.
func FromEntity(i entity.Issue) IssueRes {
	return NewIssueRes(i.View())
}
