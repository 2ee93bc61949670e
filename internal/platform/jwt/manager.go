// Package jwtmw はHS256署名のアクセストークン発行・検証とGin用の認証ミドルウェアを提供します。
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken は署名・有効期限・subjectのいずれかが不正なトークンを表します。
var ErrInvalidToken = errors.New("invalid token")

// Manager はアクセストークンの発行と検証を行います。
type Manager struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewManager は指定されたシークレットと有効期間でManagerを生成します。
func NewManager(secret string, expiration time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken は sub にユーザーUUIDを持つ署名済みトークンを生成します。
func (m *Manager) GenerateToken(userID uuid.UUID, email string) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"exp":   now.Add(m.expiration).Unix(),
		"iat":   now.Unix(),
		"email": email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Decode はトークンを検証し、subjectのユーザーIDを返します。
// HMAC以外の署名方式、exp欠落、期限切れ、UUIDでないsubjectはすべてErrInvalidTokenになります。
func (m *Manager) Decode(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	return id, nil
}
