// Package paging slices in-memory lists into pages.
package paging

import "strconv"

// DefaultPerPage is used when a caller asks for a non-positive page size.
const DefaultPerPage = 20

// MaxPerPage caps page sizes taken from query strings.
const MaxPerPage = 100

// Page is one page of a list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	TotalCount int `json:"total_count"`
}

// Paginate returns the requested page of items. A page outside
// [1, TotalPages] falls back to the first page.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := len(items)
	totalPages := (total + perPage - 1) / perPage

	if page < 1 || page > totalPages {
		page = 1
	}

	skip := (page - 1) * perPage
	end := skip + perPage
	if skip > total {
		skip = total
	}
	if end > total {
		end = total
	}

	pageItems := make([]T, end-skip)
	copy(pageItems, items[skip:end])

	return Page[T]{
		Items:      pageItems,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		TotalCount: total,
	}
}

// ParseParams reads page and per_page query values. Missing or invalid values
// become page 1 and defaultPerPage.
func ParseParams(pageStr, perPageStr string, defaultPerPage int) (page, perPage int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page <= 0 {
		page = 1
	}
	perPage, err = strconv.Atoi(perPageStr)
	if err != nil || perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}
