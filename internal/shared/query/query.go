// Package query は一覧APIで共通のページング・ソート指定を提供します。
package query

import (
	"fmt"
	"math"
	"strings"

	"issue_backend/internal/shared/apperror"
)

const (
	// DefaultPage は1始まりのページ番号のデフォルト値です。
	DefaultPage = 1
	// DefaultPageSize は1ページあたりのデフォルト件数です。
	DefaultPageSize = 10
	// MaxPageSize は1ページあたりの最大件数です。
	MaxPageSize = 100
	// DefaultSortKey は許可リストに無いキーが指定された場合のフォールバック先です。
	DefaultSortKey = "created_at"
)

// Pagination は1始まりのページ番号とページサイズです。
type Pagination struct {
	Page     int
	PageSize int
}

// Validate は page >= 1 かつ 1 <= page_size <= 100 を検証します。
func (p Pagination) Validate() error {
	if p.Page < 1 {
		return apperror.Validation("page must be greater than or equal to 1").
			WithDetails(map[string]any{"field": "page", "value": p.Page})
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return apperror.Validation(fmt.Sprintf("page_size must be between 1 and %d", MaxPageSize)).
			WithDetails(map[string]any{"field": "page_size", "value": p.PageSize})
	}
	return nil
}

// Offset は (page-1)*page_size を返します。
// 桁あふれする場合は math.MaxInt に丸めます。負の値は返しません。
func (p Pagination) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// Beyond reports whether the page starts at or after the last of total rows,
// in which case the page is empty and the query can be skipped.
func (p Pagination) Beyond(total int64) bool {
	return int64(p.Offset()) >= total
}

// Limit はページサイズを返します。
func (p Pagination) Limit() int {
	return p.PageSize
}

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder falls back to Desc for anything other than "asc".
func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), string(Asc)) {
		return Asc
	}
	return Desc
}

// Sort is a caller supplied sort key and direction.
type Sort struct {
	Key   string
	Order Order
}

// Resolve maps the caller's key through allowed. Unknown keys silently fall back
// to DefaultSortKey; this never errors.
func (s Sort) Resolve(allowed map[string]string) (column string, order Order) {
	order = s.Order
	if order != Asc {
		order = Desc
	}
	if col, ok := allowed[s.Key]; ok {
		return col, order
	}
	return allowed[DefaultSortKey], order
}

// Page is one page of results together with the total matching count.
type Page[T any] struct {
	Items    []T
	Page     int
	PageSize int
	Total    int64
}
