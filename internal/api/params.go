package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"issue_backend/internal/shared/apperror"
	"issue_backend/internal/shared/query"
)

// ListParams は一覧エンドポイント共通のクエリパラメータです。
// 未指定のパラメータはnilのままです。
type ListParams struct {
	Page     *int
	PageSize *int
	SortBy   *string
	Order    *string
	Status   *string
	Priority *string
}

// BindListParams はクエリ文字列を型付きで読み取ります。型が合わない値は VALIDATION_ERROR になります。
func BindListParams(c *gin.Context) (ListParams, error) {
	var params ListParams
	q := c.Request.URL.Query()

	bindings := []struct {
		name string
		dest any
	}{
		{"page", &params.Page},
		{"page_size", &params.PageSize},
		{"sort_by", &params.SortBy},
		{"order", &params.Order},
		{"status", &params.Status},
		{"priority", &params.Priority},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return ListParams{}, apperror.Validation("invalid format for parameter "+b.name).
				WithDetails(map[string]any{"field": b.name})
		}
	}
	return params, nil
}

// Pagination returns the requested page, applying defaults for absent values.
// Explicit out-of-range values are kept so that Validate can reject them.
func (p ListParams) Pagination() query.Pagination {
	pg := query.Pagination{Page: query.DefaultPage, PageSize: query.DefaultPageSize}
	if p.Page != nil {
		pg.Page = *p.Page
	}
	if p.PageSize != nil {
		pg.PageSize = *p.PageSize
	}
	return pg
}

// Sort returns the requested sort; the key is resolved later against an allow-list.
func (p ListParams) Sort() query.Sort {
	s := query.Sort{Key: query.DefaultSortKey, Order: query.Desc}
	if p.SortBy != nil {
		s.Key = *p.SortBy
	}
	if p.Order != nil {
		s.Order = query.ParseOrder(*p.Order)
	}
	return s
}

// PageResponse は一覧レスポンスの {items, page, page_size, total} 形式です。
type PageResponse[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// NewPageResponse converts every item with conv. Items is never null in JSON.
func NewPageResponse[S, T any](p query.Page[S], conv func(S) T) PageResponse[T] {
	items := make([]T, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, conv(it))
	}
	return PageResponse[T]{Items: items, Page: p.Page, PageSize: p.PageSize, Total: p.Total}
}

// UUIDParam parses the path parameter name as a UUID.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.Validation(name+" must be a valid UUID").
			WithDetails(map[string]any{"field": name})
	}
	return id, nil
}
