// Package entity defines the domain entities for the auth feature.
package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered user in the system.
// It contains authentication credentials and metadata for user management.
type User struct {
	// ID is the unique identifier for the user.
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// Email is the user's login handle. It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the bcrypt hash of the user's password.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns a new UUID when the caller did not set one.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// View returns the public snapshot of u.
func (u *User) View() UserView {
	return UserView{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// UserView はキャッシュされ、認証済みプリンシパルとして受け渡される読み取り専用の射影です。
// パスワードハッシュは含みません。
type UserView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserPatch は /users/me の部分更新です。nilのフィールドは変更しません。
// Password は平文で、ユースケースでハッシュ化されます。
type UserPatch struct {
	Email    *string
	Password *string
}
