package common

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// PaginationParams are the page inputs of a list request
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// PaginationInfo describes the page that was returned
type PaginationInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ExtractPaginationParams reads page and page_size, clamping bad values
func ExtractPaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Page: 1, PageSize: DefaultPageSize}
	q := r.URL.Query()
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		params.Page = p
	}
	if ps, err := strconv.Atoi(q.Get("page_size")); err == nil && ps > 0 {
		params.PageSize = min(ps, MaxPageSize)
	}
	return params
}

// Offset returns the index of the first item on the page
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Paginate slices items to the requested page
func Paginate[T any](items []T, p PaginationParams) ([]T, *PaginationInfo) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	total := len(items)
	start := min(p.Offset(), total)
	end := min(start+p.PageSize, total)

	totalPages := (total + p.PageSize - 1) / p.PageSize
	return items[start:end], &PaginationInfo{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
