// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"issue_backend/internal/feature/auth/domain/entity"
	"issue_backend/internal/platform/cache"
	"issue_backend/internal/shared/apperror"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// Update はストアから最新の状態を読み込み、applyを適用して保存します。
	Update(ctx context.Context, id uuid.UUID, apply func(*entity.User)) (*entity.User, error)
}

// JWTGenerator はJWTトークン生成のインターフェースを定義します。
type JWTGenerator interface {
	// GenerateToken は指定されたユーザーの署名済みJWTトークンを生成します。
	GenerateToken(userID uuid.UUID, email string) (string, error)
}

// authUsecase は認証とプロフィール操作のビジネスロジックを実装します。
type authUsecase struct {
	users        UserRepository
	jwtGenerator JWTGenerator
	cache        *cache.Aside[entity.UserView]
	cost         int
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
// userCache は user:{id} のスナップショットを扱い、認証時の参照と更新時の無効化で共有されます。
func NewAuthUsecase(users UserRepository, jwtGenerator JWTGenerator, userCache *cache.Aside[entity.UserView]) *authUsecase {
	return &authUsecase{
		users:        users,
		jwtGenerator: jwtGenerator,
		cache:        userCache,
		cost:         bcrypt.DefaultCost,
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperror.Validation(fmt.Sprintf("password must be at least %d characters long", minPasswordLength)).
			WithDetails(map[string]any{"field": "password"})
	}
	return nil
}

func (u *authUsecase) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録し、アクセストークンを返します。
func (u *authUsecase) Signup(ctx context.Context, email, password string) (string, error) {
	// パスワード強度を検証
	if err := validatePassword(password); err != nil {
		return "", err
	}

	hashed, err := u.hash(password)
	if err != nil {
		return "", apperror.Internal(err)
	}
	user := &entity.User{Email: email, Password: hashed}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return "", apperror.Conflict("Email already registered", err)
		}
		return "", apperror.Internal(fmt.Errorf("create user: %w", err))
	}

	return u.issueToken(user)
}

// Login はユーザーを認証し、成功時にJWTトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (string, error) {
	// メールアドレスでユーザーを検索
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return "", apperror.Internal(fmt.Errorf("find user: %w", err))
	}

	// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy" // ダミーハッシュ
	if err == nil {
		passwordHash = user.Password
	}

	// タイミング攻撃防止のため、常にパスワードを検証
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if err != nil || compareErr != nil {
		return "", apperror.Authentication("Invalid credentials", nil)
	}

	return u.issueToken(user)
}

func (u *authUsecase) issueToken(user *entity.User) (string, error) {
	token, err := u.jwtGenerator.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", apperror.Internal(fmt.Errorf("failed to generate token: %w", err))
	}
	return token, nil
}

// Get はユーザーの公開スナップショットをキャッシュアサイドで返します。
// 存在しない場合はErrUserNotFoundを返し、キャッシュには何も書き込みません。
func (u *authUsecase) Get(ctx context.Context, id uuid.UUID) (entity.UserView, error) {
	view, err := u.cache.Load(ctx, id.String(), func(ctx context.Context) (entity.UserView, error) {
		user, err := u.users.FindByID(ctx, id)
		if err != nil {
			return entity.UserView{}, err
		}
		return user.View(), nil
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return entity.UserView{}, ErrUserNotFound
		}
		return entity.UserView{}, apperror.Internal(fmt.Errorf("load user: %w", err))
	}
	return view, nil
}

// UpdateMe は指定されたフィールドのみを更新し、コミット後に user:{id} を無効化します。
func (u *authUsecase) UpdateMe(ctx context.Context, id uuid.UUID, patch entity.UserPatch) (entity.UserView, error) {
	var hashed string
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return entity.UserView{}, err
		}
		h, err := u.hash(*patch.Password)
		if err != nil {
			return entity.UserView{}, apperror.Internal(err)
		}
		hashed = h
	}

	user, err := cache.CommitThenInvalidate(ctx, u.cache, id.String(), func(ctx context.Context) (*entity.User, error) {
		return u.users.Update(ctx, id, func(user *entity.User) {
			if patch.Email != nil {
				user.Email = *patch.Email
			}
			if patch.Password != nil {
				user.Password = hashed
			}
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			return entity.UserView{}, apperror.Conflict("Email already registered", err)
		case errors.Is(err, ErrUserNotFound):
			return entity.UserView{}, apperror.Authentication("User not found", err)
		default:
			return entity.UserView{}, apperror.Internal(fmt.Errorf("update user: %w", err))
		}
	}
	return user.View(), nil
}
