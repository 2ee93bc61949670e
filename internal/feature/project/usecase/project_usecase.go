package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"issue_backend/internal/feature/project/domain/entity"
	"issue_backend/internal/platform/cache"
	"issue_backend/internal/shared/apperror"
	"issue_backend/internal/shared/query"
)

// ProjectRepository はプロジェクトの永続化層を抽象化します。
// 存在しないIDに対しては ErrProjectNotFound を返します。
type ProjectRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	Create(ctx context.Context, p *entity.Project) error
	// Update はストアの最新状態にapplyを適用して保存します。
	Update(ctx context.Context, id uuid.UUID, apply func(*entity.Project)) (*entity.Project, error)
	// Delete は削除したプロジェクトを返します。配下のIssueはストアのカスケードで削除されます。
	Delete(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	Query(ctx context.Context, ownerID uuid.UUID, sort query.Sort, page query.Pagination) ([]entity.Project, error)
	Count(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

type projectUsecase struct {
	repo  ProjectRepository
	cache *cache.Aside[entity.ProjectView]
}

// NewProjectUsecase はprojectUsecaseの新しいインスタンスを生成します。
func NewProjectUsecase(repo ProjectRepository, projectCache *cache.Aside[entity.ProjectView]) *projectUsecase {
	return &projectUsecase{repo: repo, cache: projectCache}
}

// Get はプロジェクトのスナップショットをキャッシュアサイドで返します。
func (u *projectUsecase) Get(ctx context.Context, id uuid.UUID) (entity.ProjectView, error) {
	view, err := u.cache.Load(ctx, id.String(), func(ctx context.Context) (entity.ProjectView, error) {
		p, err := u.repo.FindByID(ctx, id)
		if err != nil {
			return entity.ProjectView{}, err
		}
		return p.View(), nil
	})
	if err != nil {
		return entity.ProjectView{}, storeError("load project", err)
	}
	return view, nil
}

// List は所有者のプロジェクトを1ページ分返します。totalは同じ条件のCOUNTです。
func (u *projectUsecase) List(ctx context.Context, ownerID uuid.UUID, sort query.Sort, page query.Pagination) (query.Page[entity.Project], error) {
	if err := page.Validate(); err != nil {
		return query.Page[entity.Project]{}, err
	}

	total, err := u.repo.Count(ctx, ownerID)
	if err != nil {
		return query.Page[entity.Project]{}, storeError("count projects", err)
	}
	if page.Beyond(total) {
		return query.Page[entity.Project]{Items: []entity.Project{}, Page: page.Page, PageSize: page.PageSize, Total: total}, nil
	}
	items, err := u.repo.Query(ctx, ownerID, sort, page)
	if err != nil {
		return query.Page[entity.Project]{}, storeError("query projects", err)
	}

	return query.Page[entity.Project]{Items: items, Page: page.Page, PageSize: page.PageSize, Total: total}, nil
}

// Create はプロジェクトを作成します。キャッシュには触れません。
func (u *projectUsecase) Create(ctx context.Context, ownerID uuid.UUID, in entity.NewProject) (*entity.Project, error) {
	p := &entity.Project{
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     ownerID,
	}
	if err := u.repo.Create(ctx, p); err != nil {
		return nil, storeError("create project", err)
	}
	return p, nil
}

// Update は指定されたフィールドのみを更新し、コミット後に project:{id} を無効化します。
func (u *projectUsecase) Update(ctx context.Context, id uuid.UUID, patch entity.ProjectPatch) (*entity.Project, error) {
	p, err := cache.CommitThenInvalidate(ctx, u.cache, id.String(), func(ctx context.Context) (*entity.Project, error) {
		return u.repo.Update(ctx, id, patch.ApplyTo)
	})
	if err != nil {
		return nil, storeError("update project", err)
	}
	return p, nil
}

// Delete はプロジェクトを削除し、コミット後に project:{id} を無効化します。
// 配下のIssueのスナップショットは無効化せず、TTLで失効させます。
func (u *projectUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := cache.CommitThenInvalidate(ctx, u.cache, id.String(), func(ctx context.Context) (*entity.Project, error) {
		return u.repo.Delete(ctx, id)
	})
	if err != nil {
		return storeError("delete project", err)
	}
	return nil
}

// storeError passes ErrProjectNotFound through and wraps anything else as internal.
func storeError(op string, err error) error {
	if errors.Is(err, ErrProjectNotFound) {
		return ErrProjectNotFound
	}
	return apperror.Internal(fmt.Errorf("%s: %w", op, err))
}
