package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"issue_backend/internal/feature/issue/domain/entity"
	"issue_backend/internal/platform/cache"
	"issue_backend/internal/shared/apperror"
	"issue_backend/internal/shared/query"
)

// IssueRepository はIssueの永続化層を抽象化します。
// 存在しないIDに対しては ErrIssueNotFound を返します。
type IssueRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Issue, error)
	// Create は親プロジェクトが存在しない場合 ErrProjectNotFound を返します。
	Create(ctx context.Context, issue *entity.Issue) error
	Update(ctx context.Context, id uuid.UUID, apply func(*entity.Issue)) (*entity.Issue, error)
	Delete(ctx context.Context, id uuid.UUID) (*entity.Issue, error)
	Query(ctx context.Context, scope Scope, filter entity.Filter, sort query.Sort, page query.Pagination) ([]entity.Issue, error)
	Count(ctx context.Context, scope Scope, filter entity.Filter) (int64, error)
}

type issueUsecase struct {
	repo  IssueRepository
	cache *cache.Aside[entity.IssueView]
	now   func() time.Time
}

// NewIssueUsecase はissueUsecaseの新しいインスタンスを生成します。
func NewIssueUsecase(repo IssueRepository, issueCache *cache.Aside[entity.IssueView]) *issueUsecase {
	return &issueUsecase{
		repo:  repo,
		cache: issueCache,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Get はIssueのスナップショットをキャッシュアサイドで返します。
func (u *issueUsecase) Get(ctx context.Context, id uuid.UUID) (entity.IssueView, error) {
	view, err := u.cache.Load(ctx, id.String(), func(ctx context.Context) (entity.IssueView, error) {
		i, err := u.repo.FindByID(ctx, id)
		if err != nil {
			return entity.IssueView{}, err
		}
		return i.View(), nil
	})
	if err != nil {
		return entity.IssueView{}, storeError("load issue", err)
	}
	return view, nil
}

// Evict drops the cached snapshot of id without touching the store.
func (u *issueUsecase) Evict(ctx context.Context, id uuid.UUID) {
	u.cache.Invalidate(ctx, id.String())
}

// List はscope内のIssueをフィルタ・ソートして1ページ分返します。
func (u *issueUsecase) List(ctx context.Context, scope Scope, filter entity.Filter, sort query.Sort, page query.Pagination) (query.Page[entity.Issue], error) {
	if err := page.Validate(); err != nil {
		return query.Page[entity.Issue]{}, err
	}
	if err := validateFilter(filter); err != nil {
		return query.Page[entity.Issue]{}, err
	}

	total, err := u.repo.Count(ctx, scope, filter)
	if err != nil {
		return query.Page[entity.Issue]{}, storeError("count issues", err)
	}
	if page.Beyond(total) {
		return query.Page[entity.Issue]{Items: []entity.Issue{}, Page: page.Page, PageSize: page.PageSize, Total: total}, nil
	}
	items, err := u.repo.Query(ctx, scope, filter, sort, page)
	if err != nil {
		return query.Page[entity.Issue]{}, storeError("query issues", err)
	}

	return query.Page[entity.Issue]{Items: items, Page: page.Page, PageSize: page.PageSize, Total: total}, nil
}

// Create はプロジェクト配下にIssueを作成します。キャッシュには触れません。
func (u *issueUsecase) Create(ctx context.Context, projectID uuid.UUID, in entity.NewIssue) (*entity.Issue, error) {
	in = in.WithDefaults()
	if !in.Status.Valid() {
		return nil, invalidEnum("status", string(in.Status))
	}
	if !in.Priority.Valid() {
		return nil, invalidEnum("priority", string(in.Priority))
	}

	issue := &entity.Issue{
		ProjectID:   projectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
	}
	if err := u.repo.Create(ctx, issue); err != nil {
		return nil, storeError("create issue", err)
	}
	return issue, nil
}

// Update は指定されたフィールドのみを更新して updated_at を刻み、コミット後に issue:{id} を無効化します。
func (u *issueUsecase) Update(ctx context.Context, id uuid.UUID, patch entity.IssuePatch) (*entity.Issue, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, invalidEnum("status", string(*patch.Status))
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, invalidEnum("priority", string(*patch.Priority))
	}

	issue, err := cache.CommitThenInvalidate(ctx, u.cache, id.String(), func(ctx context.Context) (*entity.Issue, error) {
		return u.repo.Update(ctx, id, func(i *entity.Issue) {
			patch.ApplyTo(i, u.now())
		})
	})
	if err != nil {
		return nil, storeError("update issue", err)
	}
	return issue, nil
}

// Delete はIssueを削除し、コミット後に issue:{id} を無効化します。
func (u *issueUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := cache.CommitThenInvalidate(ctx, u.cache, id.String(), func(ctx context.Context) (*entity.Issue, error) {
		return u.repo.Delete(ctx, id)
	})
	if err != nil {
		return storeError("delete issue", err)
	}
	return nil
}

func validateFilter(f entity.Filter) error {
	if f.Status != nil && !f.Status.Valid() {
		return invalidEnum("status", string(*f.Status))
	}
	if f.Priority != nil && !f.Priority.Valid() {
		return invalidEnum("priority", string(*f.Priority))
	}
	return nil
}

func invalidEnum(field, value string) error {
	return apperror.Validation(fmt.Sprintf("invalid %s %q", field, value)).
		WithDetails(map[string]any{"field": field, "value": value})
}

// storeError passes the not-found sentinels through and wraps anything else as internal.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, ErrIssueNotFound):
		return ErrIssueNotFound
	case errors.Is(err, ErrProjectNotFound):
		return ErrProjectNotFound
	default:
		return apperror.Internal(fmt.Errorf("%s: %w", op, err))
	}
}
