package dto

import (
	"time"

	"github.com/google/uuid"

	"issue_backend/internal/feature/auth/domain/entity"
	"issue_backend/internal/shared/apperror"
	"issue_backend/internal/shared/optional"
)

// UserRes is the public representation of a user.
type UserRes struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserRes converts a snapshot into a response.
func NewUserRes(v entity.UserView) UserRes {
	return UserRes{ID: v.ID, Email: v.Email, CreatedAt: v.CreatedAt}
}

// UpdateMeReq is the PATCH /users/me body. Absent fields are left unchanged.
type UpdateMeReq struct {
	Email    optional.Value[string] `json:"email" binding:"omitempty,email,max=255"`
	Password optional.Value[string] `json:"password" binding:"omitempty,min=8,max=72"`
}

// ToPatch rejects explicit nulls; neither field is nullable.
func (r UpdateMeReq) ToPatch() (entity.UserPatch, error) {
	var patch entity.UserPatch
	if r.Email.Set {
		if r.Email.Ptr == nil {
			return patch, nullField("email")
		}
		patch.Email = r.Email.Ptr
	}
	if r.Password.Set {
		if r.Password.Ptr == nil {
			return patch, nullField("password")
		}
		patch.Password = r.Password.Ptr
	}
	return patch, nil
}

func nullField(name string) error {
	return apperror.Validation(name+" must not be null").WithDetails(map[string]any{"field": name})
}
