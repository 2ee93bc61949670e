// Package adapters はissueフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"issue_backend/internal/feature/issue/domain/entity"
	"issue_backend/internal/feature/issue/usecase"
	projectadapters "issue_backend/internal/feature/project/adapters"
	"issue_backend/internal/shared/query"
)

// sortExprs はソートキーの許可リストです。値はORDER BYにそのまま埋め込まれるため、
// 利用者の入力は常にこのマップを経由させます。priority/status は意味上の順位で並べます。
var sortExprs = map[string]string{
	"created_at": "issues.created_at",
	"title":      "issues.title",
	"priority":   "CASE issues.priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 ELSE 0 END",
	"status":     "CASE issues.status WHEN 'open' THEN 1 WHEN 'in_progress' THEN 2 WHEN 'done' THEN 3 ELSE 0 END",
}

// IssueModel is the issues table. Deleting the parent project cascades in the store.
type IssueModel struct {
	ID          uuid.UUID                    `gorm:"type:uuid;primaryKey"`
	ProjectID   uuid.UUID                    `gorm:"type:uuid;not null;index"`
	Project     projectadapters.ProjectModel `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Title       string                       `gorm:"size:200;not null"`
	Description *string                      `gorm:"size:1000"`
	Status      string                       `gorm:"size:20;not null;default:open;index"`
	Priority    string                       `gorm:"size:20;not null;default:medium;index"`
	CreatedAt   time.Time                    `gorm:"not null;index"`
	UpdatedAt   *time.Time                   `gorm:"autoUpdateTime:false"`
}

func (IssueModel) TableName() string {
	return "issues"
}

// BeforeCreate assigns a new UUID when the caller did not set one.
func (m *IssueModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func toModel(e *entity.Issue) IssueModel {
	return IssueModel{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		Title:       e.Title,
		Description: e.Description,
		Status:      string(e.Status),
		Priority:    string(e.Priority),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (m *IssueModel) toEntity() *entity.Issue {
	return &entity.Issue{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		Title:       m.Title,
		Description: m.Description,
		Status:      entity.Status(m.Status),
		Priority:    entity.Priority(m.Priority),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type issueGorm struct {
	db *gorm.DB
}

var _ usecase.IssueRepository = (*issueGorm)(nil)

// NewIssueGorm はGORM実装のIssueRepositoryを生成します。
func NewIssueGorm(db *gorm.DB) *issueGorm {
	return &issueGorm{db: db}
}

func findModel(tx *gorm.DB, id uuid.UUID) (*IssueModel, error) {
	var m IssueModel
	if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrIssueNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *issueGorm) FindByID(ctx context.Context, id uuid.UUID) (*entity.Issue, error) {
	m, err := findModel(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return m.toEntity(), nil
}

// Create は親プロジェクトの存在を確認してからIssueを追加します。
func (r *issueGorm) Create(ctx context.Context, issue *entity.Issue) error {
	m := toModel(issue)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&projectadapters.ProjectModel{}).Where("id = ?", issue.ProjectID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return usecase.ErrProjectNotFound
		}
		return tx.Omit(clause.Associations).Create(&m).Error
	})
	if err != nil {
		return err
	}
	*issue = *m.toEntity()
	return nil
}

func (r *issueGorm) Update(ctx context.Context, id uuid.UUID, apply func(*entity.Issue)) (*entity.Issue, error) {
	var out *entity.Issue
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findModel(tx, id)
		if err != nil {
			return err
		}
		i := m.toEntity()
		apply(i)
		next := toModel(i)
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

func (r *issueGorm) Delete(ctx context.Context, id uuid.UUID) (*entity.Issue, error) {
	var out *entity.Issue
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findModel(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&IssueModel{}, "id = ?", id).Error; err != nil {
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

// scoped は一覧とCOUNTで共通の述語を組み立てます。
func (r *issueGorm) scoped(ctx context.Context, scope usecase.Scope, filter entity.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&IssueModel{})
	if scope.IsProject() {
		q = q.Where("issues.project_id = ?", scope.ProjectID)
	} else {
		q = q.Joins("JOIN projects ON projects.id = issues.project_id").
			Where("projects.owner_id = ?", scope.OwnerID)
	}
	if filter.Status != nil {
		q = q.Where("issues.status = ?", string(*filter.Status))
	}
	if filter.Priority != nil {
		q = q.Where("issues.priority = ?", string(*filter.Priority))
	}
	return q
}

func (r *issueGorm) Query(ctx context.Context, scope usecase.Scope, filter entity.Filter, sort query.Sort, page query.Pagination) ([]entity.Issue, error) {
	expr, order := sort.Resolve(sortExprs)
	dir := "DESC"
	if order == query.Asc {
		dir = "ASC"
	}

	var rows []IssueModel
	err := r.scoped(ctx, scope, filter).
		Select("issues.*").
		Order(fmt.Sprintf("%s %s", expr, dir)).
		Order("issues.id " + dir).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]entity.Issue, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toEntity())
	}
	return out, nil
}

func (r *issueGorm) Count(ctx context.Context, scope usecase.Scope, filter entity.Filter) (int64, error) {
	var n int64
	err := r.scoped(ctx, scope, filter).Count(&n).Error
	return n, err
}
