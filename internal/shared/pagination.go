package shared

import "math"

const (
	// DefaultPage is used when the caller omits the page parameter.
	DefaultPage = 1
	// DefaultLimit is used when the caller omits the limit parameter.
	DefaultLimit = 10
)

// PageRequest carries the windowing controls for a paginated listing.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize replaces out-of-range values with the defaults.
func (p PageRequest) Normalize() PageRequest {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	return p
}

// Offset computes the row offset for the window.
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Pagination contains metadata for paginated listings.
type Pagination struct {
	TotalItems   int `json:"totalItems"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// NewPagination computes pagination metadata for a windowed result.
func NewPagination(req PageRequest, totalItems int) Pagination {
	n := req.Normalize()
	totalPages := int(math.Ceil(float64(totalItems) / float64(n.Limit)))
	return Pagination{
		TotalItems:   totalItems,
		TotalPages:   totalPages,
		CurrentPage:  n.Page,
		ItemsPerPage: n.Limit,
	}
}
