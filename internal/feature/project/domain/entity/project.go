// Package entity defines the domain entities for the project feature.
package entity

import (
	"time"

	"github.com/google/uuid"

	"issue_backend/internal/shared/optional"
)

// Project はユーザーが所有し、Issueを束ねる単位です。
type Project struct {
	ID          uuid.UUID
	Name        string
	Description *string
	OwnerID     uuid.UUID
	CreatedAt   time.Time
}

// View returns the public snapshot of p.
func (p *Project) View() ProjectView {
	return ProjectView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
	}
}

// ProjectView is the read-only snapshot stored under project:{id}.
type ProjectView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// OwnedBy reports whether userID owns the project.
func (v ProjectView) OwnedBy(userID uuid.UUID) bool {
	return v.OwnerID == userID
}

// NewProject は作成時の入力です。
type NewProject struct {
	Name        string
	Description *string
}

// ProjectPatch は部分更新です。Name は nil なら変更なし、
// Description は未指定なら変更なし・明示的な null ならクリアします。
type ProjectPatch struct {
	Name        *string
	Description optional.Value[string]
}

// ApplyTo writes the present fields of the patch onto p.
func (patch ProjectPatch) ApplyTo(p *Project) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description.Set {
		p.Description = patch.Description.Ptr
	}
}
