package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"issue_backend/internal/feature/auth/domain/entity"
	"issue_backend/internal/platform/cache"
	"issue_backend/internal/shared/apperror"
)

// mockUserRepository is a mock implementation of UserRepository.
// It simulates database operations during testing.
type mockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *entity.User) error
	FindByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc    func(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateFunc      func(ctx context.Context, id uuid.UUID, apply func(*entity.User)) (*entity.User, error)

	findByIDCalls int
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil // Default: success
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	m.findByIDCalls++
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) Update(ctx context.Context, id uuid.UUID, apply func(*entity.User)) (*entity.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, apply)
	}
	return nil, ErrUserNotFound
}

// mockJWTGenerator is a mock implementation of JWTGenerator.
type mockJWTGenerator struct {
	GenerateTokenFunc func(userID uuid.UUID, email string) (string, error)
}

func (m *mockJWTGenerator) GenerateToken(userID uuid.UUID, email string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email)
	}
	return "mock-jwt-token", nil
}

// newTestUsecase はキャッシュ無しで低コストbcryptのユースケースを生成します。
func newTestUsecase(repo UserRepository, gen JWTGenerator, c cache.Cache) *authUsecase {
	uc := NewAuthUsecase(repo, gen, cache.NewAside[entity.UserView](c, "user", time.Minute))
	uc.cost = bcrypt.MinCost
	return uc
}

func setupCache(t *testing.T) (cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisCache(client), mr
}

func TestAuthUsecase_Signup(t *testing.T) {
	t.Parallel()

	t.Run("successful signup returns a token", func(t *testing.T) {
		t.Parallel()

		var created *entity.User
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				// Verify that it's a valid bcrypt hash
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
				user.ID = uuid.New()
				created = user
				return nil
			},
		}
		gen := &mockJWTGenerator{
			GenerateTokenFunc: func(userID uuid.UUID, email string) (string, error) {
				assert.Equal(t, created.ID, userID)
				assert.Equal(t, "test@example.com", email)
				return "signed", nil
			},
		}

		token, err := newTestUsecase(repo, gen, nil).Signup(context.Background(), "test@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "signed", token)
	})

	t.Run("short password", func(t *testing.T) {
		t.Parallel()

		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				t.Error("Create must not be called")
				return nil
			},
		}
		_, err := newTestUsecase(repo, &mockJWTGenerator{}, nil).Signup(context.Background(), "test@example.com", "short")
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error { return ErrEmailAlreadyExists },
		}
		_, err := newTestUsecase(repo, &mockJWTGenerator{}, nil).Signup(context.Background(), "dup@example.com", "password123")
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("repository failure", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("database error")
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error { return expectedErr },
		}
		_, err := newTestUsecase(repo, &mockJWTGenerator{}, nil).Signup(context.Background(), "test@example.com", "password123")
		assert.True(t, apperror.IsKind(err, apperror.KindInternal))
		assert.ErrorIs(t, err, expectedErr)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	t.Parallel()

	password := "password123"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	testUser := &entity.User{ID: uuid.New(), Email: "test@example.com", Password: string(hashedPassword)}

	findUser := func(ctx context.Context, email string) (*entity.User, error) {
		if email == testUser.Email {
			return testUser, nil
		}
		return nil, ErrUserNotFound
	}

	tests := []struct {
		name      string
		email     string
		password  string
		findErr   error
		tokenErr  error
		wantToken string
		wantKind  apperror.Kind
		wantErr   bool
	}{
		{name: "successful login", email: "test@example.com", password: password, wantToken: "mock-jwt-token"},
		{name: "user not found", email: "wrong@example.com", password: password, wantErr: true, wantKind: apperror.KindAuthentication},
		{name: "incorrect password", email: "test@example.com", password: "wrong-password", wantErr: true, wantKind: apperror.KindAuthentication},
		{name: "store failure", email: "test@example.com", password: password, findErr: errors.New("conn refused"), wantErr: true, wantKind: apperror.KindInternal},
		{name: "JWT generation failure", email: "test@example.com", password: password, tokenErr: errors.New("failed to sign token"), wantErr: true, wantKind: apperror.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockUserRepository{FindByEmailFunc: findUser}
			if tt.findErr != nil {
				repo.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) { return nil, tt.findErr }
			}
			gen := &mockJWTGenerator{}
			if tt.tokenErr != nil {
				gen.GenerateTokenFunc = func(uuid.UUID, string) (string, error) { return "", tt.tokenErr }
			}

			token, err := newTestUsecase(repo, gen, nil).Login(context.Background(), tt.email, tt.password)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				return
			}
			assert.Empty(t, token)
			assert.True(t, apperror.IsKind(err, tt.wantKind), "got %v", err)
		})
	}
}

// TestAuthUsecase_Login_SameMessage はユーザー未検出とパスワード不一致が同じメッセージになることを検証します。
func TestAuthUsecase_Login_SameMessage(t *testing.T) {
	t.Parallel()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	repo := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
			if email == "known@example.com" {
				return &entity.User{ID: uuid.New(), Email: email, Password: string(hashed)}, nil
			}
			return nil, ErrUserNotFound
		},
	}
	uc := newTestUsecase(repo, &mockJWTGenerator{}, nil)

	_, errUnknown := uc.Login(context.Background(), "unknown@example.com", "password123")
	_, errWrong := uc.Login(context.Background(), "known@example.com", "bad-password")

	assert.Equal(t, apperror.As(errUnknown).Message, apperror.As(errWrong).Message)
}

// TestAuthUsecase_Get_CacheAside はキャッシュミス時にストアから読み込み、以降はキャッシュから返すことを検証します。
func TestAuthUsecase_Get_CacheAside(t *testing.T) {
	t.Parallel()

	c, mr := setupCache(t)
	user := &entity.User{ID: uuid.New(), Email: "me@example.com", Password: "hash", CreatedAt: time.Now().UTC().Truncate(time.Second)}
	repo := &mockUserRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*entity.User, error) {
			assert.Equal(t, user.ID, id)
			return user, nil
		},
	}
	uc := newTestUsecase(repo, &mockJWTGenerator{}, c)

	first, err := uc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	second, err := uc.Get(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, user.View(), first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.findByIDCalls, "second read must be served from cache")

	raw, err := mr.Get("user:" + user.ID.String())
	require.NoError(t, err)
	assert.NotContains(t, raw, "hash", "password hash must never be cached")
	assert.Equal(t, time.Minute, mr.TTL("user:"+user.ID.String()))
}

// TestAuthUsecase_Get_NotFound は存在しないユーザーがキャッシュされないことを検証します。
func TestAuthUsecase_Get_NotFound(t *testing.T) {
	t.Parallel()

	c, mr := setupCache(t)
	uc := newTestUsecase(&mockUserRepository{}, &mockJWTGenerator{}, c)
	id := uuid.New()

	_, err := uc.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.False(t, mr.Exists("user:"+id.String()))
}

// TestAuthUsecase_Get_CacheHitSkipsStore はキャッシュ済みのスナップショットがストアを経由せずに返されることを検証します。
func TestAuthUsecase_Get_CacheHitSkipsStore(t *testing.T) {
	t.Parallel()

	c, mr := setupCache(t)
	view := entity.UserView{ID: uuid.New(), Email: "cached@example.com", CreatedAt: time.Now().UTC().Truncate(time.Second)}
	b, err := json.Marshal(view)
	require.NoError(t, err)
	require.NoError(t, mr.Set("user:"+view.ID.String(), string(b)))

	repo := &mockUserRepository{}
	got, err := newTestUsecase(repo, &mockJWTGenerator{}, c).Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, view, got)
	assert.Zero(t, repo.findByIDCalls)
}

func TestAuthUsecase_Get_StoreFailure(t *testing.T) {
	t.Parallel()

	repo := &mockUserRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*entity.User, error) { return nil, errors.New("timeout") },
	}
	_, err := newTestUsecase(repo, &mockJWTGenerator{}, nil).Get(context.Background(), uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))
}

// TestAuthUsecase_UpdateMe はメールアドレス・パスワードの部分更新とキャッシュ無効化を検証します。
func TestAuthUsecase_UpdateMe(t *testing.T) {
	t.Parallel()

	c, mr := setupCache(t)
	stored := &entity.User{ID: uuid.New(), Email: "old@example.com", Password: "old-hash"}
	repo := &mockUserRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*entity.User, error) {
			cp := *stored
			return &cp, nil
		},
		UpdateFunc: func(ctx context.Context, id uuid.UUID, apply func(*entity.User)) (*entity.User, error) {
			apply(stored)
			cp := *stored
			return &cp, nil
		},
	}
	uc := newTestUsecase(repo, &mockJWTGenerator{}, c)
	key := "user:" + stored.ID.String()

	// warm the cache
	_, err := uc.Get(context.Background(), stored.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(key))

	newEmail := "new@example.com"
	view, err := uc.UpdateMe(context.Background(), stored.ID, entity.UserPatch{Email: &newEmail})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", view.Email)
	assert.Equal(t, "old-hash", stored.Password, "absent password must not change")
	assert.False(t, mr.Exists(key), "snapshot must be invalidated after commit")

	got, err := uc.Get(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)

	newPassword := "brand-new-password"
	_, err = uc.UpdateMe(context.Background(), stored.ID, entity.UserPatch{Password: &newPassword})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", stored.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(newPassword)))
}

// TestAuthUsecase_UpdateMe_Failures はコミット失敗時にキャッシュが無効化されないことを検証します。
func TestAuthUsecase_UpdateMe_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		patch    func() entity.UserPatch
		err      error
		wantKind apperror.Kind
	}{
		{
			name:     "duplicate email",
			patch:    func() entity.UserPatch { e := "taken@example.com"; return entity.UserPatch{Email: &e} },
			err:      ErrEmailAlreadyExists,
			wantKind: apperror.KindConflict,
		},
		{
			name:     "store failure",
			patch:    func() entity.UserPatch { e := "x@example.com"; return entity.UserPatch{Email: &e} },
			err:      errors.New("deadlock"),
			wantKind: apperror.KindInternal,
		},
		{
			name:     "short password",
			patch:    func() entity.UserPatch { p := "short"; return entity.UserPatch{Password: &p} },
			wantKind: apperror.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, mr := setupCache(t)
			id := uuid.New()
			key := "user:" + id.String()
			require.NoError(t, mr.Set(key, `{"id":"`+id.String()+`","email":"old@example.com"}`))

			repo := &mockUserRepository{
				UpdateFunc: func(ctx context.Context, id uuid.UUID, apply func(*entity.User)) (*entity.User, error) {
					return nil, tt.err
				},
			}
			_, err := newTestUsecase(repo, &mockJWTGenerator{}, c).UpdateMe(context.Background(), id, tt.patch())
			assert.True(t, apperror.IsKind(err, tt.wantKind), "got %v", err)
			assert.True(t, mr.Exists(key), "failed commits must not invalidate")
		})
	}
}
