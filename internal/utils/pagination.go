package utils

import (
	"strconv"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination is a parsed page request
type Pagination struct {
	Page    int
	PerPage int
}

// Skip returns the number of records before the requested page
func (p Pagination) Skip() int64 {
	return int64((p.Page - 1) * p.PerPage)
}

// TotalPages returns the number of pages needed for total records
func (p Pagination) TotalPages(total int64) int {
	if p.PerPage <= 0 {
		return 0
	}
	return int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// ParsePagination reads page and per_page query values, falling back to
// defaults for missing or invalid input and capping per_page.
func ParsePagination(page, perPage string) Pagination {
	p := Pagination{Page: DefaultPage, PerPage: DefaultPerPage}

	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(perPage); err == nil && n > 0 {
		p.PerPage = min(n, MaxPerPage)
	}
	return p
}
