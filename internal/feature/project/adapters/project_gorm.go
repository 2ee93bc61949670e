// Package adapters はprojectフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authentity "issue_backend/internal/feature/auth/domain/entity"
	"issue_backend/internal/feature/project/domain/entity"
	"issue_backend/internal/feature/project/usecase"
	"issue_backend/internal/shared/query"
)

// sortColumns はソートキーの許可リストです。
var sortColumns = map[string]string{
	"created_at": "created_at",
	"name":       "name",
}

// ProjectModel is the projects table. Deleting the owner or the project cascades in the store.
type ProjectModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"size:100;not null;index"`
	Description *string         `gorm:"size:500"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Owner       authentity.User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"not null;index"`
}

func (ProjectModel) TableName() string {
	return "projects"
}

// BeforeCreate assigns a new UUID when the caller did not set one.
func (m *ProjectModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func toModel(e *entity.Project) ProjectModel {
	return ProjectModel{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		OwnerID:     e.OwnerID,
		CreatedAt:   e.CreatedAt,
	}
}

func (m *ProjectModel) toEntity() *entity.Project {
	return &entity.Project{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		OwnerID:     m.OwnerID,
		CreatedAt:   m.CreatedAt,
	}
}

type projectGorm struct {
	db *gorm.DB
}

var _ usecase.ProjectRepository = (*projectGorm)(nil)

// NewProjectGorm はGORM実装のProjectRepositoryを生成します。
func NewProjectGorm(db *gorm.DB) *projectGorm {
	return &projectGorm{db: db}
}

func findModel(tx *gorm.DB, id uuid.UUID) (*ProjectModel, error) {
	var m ProjectModel
	if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrProjectNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *projectGorm) FindByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	m, err := findModel(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return m.toEntity(), nil
}

// Create はサーバー側でIDと作成日時を採番し、pに書き戻します。
func (r *projectGorm) Create(ctx context.Context, p *entity.Project) error {
	m := toModel(p)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		return err
	}
	*p = *m.toEntity()
	return nil
}

func (r *projectGorm) Update(ctx context.Context, id uuid.UUID, apply func(*entity.Project)) (*entity.Project, error) {
	var out *entity.Project
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findModel(tx, id)
		if err != nil {
			return err
		}
		p := m.toEntity()
		apply(p)
		next := toModel(p)
		if err := tx.Omit(clause.Associations).Save(&next).Error; err != nil {
			return err
		}
		out = next.toEntity()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectGorm) Delete(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	var out *entity.Project
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findModel(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&ProjectModel{}, "id = ?", id).Error; err != nil {
			return err
		}
		out = m.toEntity()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Query は所有者のプロジェクトを許可リストのキーでソートし、1ページ分返します。
// 同値の場合はidで順序を確定させます。
func (r *projectGorm) Query(ctx context.Context, ownerID uuid.UUID, sort query.Sort, page query.Pagination) ([]entity.Project, error) {
	col, order := sort.Resolve(sortColumns)
	desc := order == query.Desc

	var rows []ProjectModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: col}, Desc: desc},
			{Column: clause.Column{Name: "id"}, Desc: desc},
		}}).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]entity.Project, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toEntity())
	}
	return out, nil
}

func (r *projectGorm) Count(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ProjectModel{}).Where("owner_id = ?", ownerID).Count(&n).Error
	return n, err
}
