// Package dto はprojectフィーチャーのHTTPリクエスト/レスポンスを定義します。
package dto

import (
	"time"

	"github.com/google/uuid"

	"issue_backend/internal/feature/project/domain/entity"
	"issue_backend/internal/shared/apperror"
	"issue_backend/internal/shared/optional"
)

// CreateProjectReq is the POST /projects body.
type CreateProjectReq struct {
	Name        string  `json:"name" binding:"required,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// ToNewProject converts the request into a create input.
func (r CreateProjectReq) ToNewProject() entity.NewProject {
	return entity.NewProject{Name: r.Name, Description: r.Description}
}

// UpdateProjectReq is the PATCH /projects/:project_id body.
// Absent fields are left unchanged; description may be cleared with null.
type UpdateProjectReq struct {
	Name        optional.Value[string] `json:"name" binding:"omitempty,min=2,max=100"`
	Description optional.Value[string] `json:"description" binding:"omitempty,max=500"`
}

// ToPatch は name への null を拒否します。
func (r UpdateProjectReq) ToPatch() (entity.ProjectPatch, error) {
	var patch entity.ProjectPatch
	if r.Name.Set {
		if r.Name.Ptr == nil {
			return patch, apperror.Validation("name must not be null").WithDetails(map[string]any{"field": "name"})
		}
		patch.Name = r.Name.Ptr
	}
	patch.Description = r.Description
	return patch, nil
}

// ProjectRes is the public representation of a project.
type ProjectRes struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewProjectRes converts a snapshot into a response.
func NewProjectRes(v entity.ProjectView) ProjectRes {
	return ProjectRes{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		OwnerID:     v.OwnerID,
		CreatedAt:   v.CreatedAt,
	}
}

// FromEntity converts a store-backed project into a response.
func FromEntity(p entity.Project) ProjectRes {
	return NewProjectRes(p.View())
}
