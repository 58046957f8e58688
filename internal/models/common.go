package models

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Pagination selects one page of a list query. Pages start at 1.
type Pagination struct {
	Page     int
	PageSize int
}

// DefaultPagination returns the first page at the default size.
func DefaultPagination() Pagination {
	return Pagination{Page: 1, PageSize: DefaultPageSize}
}

// NewPagination clamps page and size into range.
func NewPagination(page, size int) Pagination {
	p := Pagination{Page: page, PageSize: size}
	if p.Page < 1 {
		p.Page = 1
	}
	p.PageSize = p.Limit()
	return p
}

// Offset calculates the SQL offset for the current page.
func (p Pagination) Offset() int {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * p.Limit()
}

// Limit returns the page size bounded to [1, MaxPageSize].
func (p Pagination) Limit() int {
	switch {
	case p.PageSize < 1:
		return DefaultPageSize
	case p.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return p.PageSize
	}
}

// TotalPages returns how many pages total rows span. An empty result still
// has one page.
func (p Pagination) TotalPages(total int) int {
	size := p.Limit()
	pages := (total + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// Next returns the following page.
func (p Pagination) Next() Pagination {
	return Pagination{Page: p.Page + 1, PageSize: p.PageSize}
}

// Prev returns the preceding page, never below the first.
func (p Pagination) Prev() Pagination {
	if p.Page <= 1 {
		return Pagination{Page: 1, PageSize: p.PageSize}
	}
	return Pagination{Page: p.Page - 1, PageSize: p.PageSize}
}
