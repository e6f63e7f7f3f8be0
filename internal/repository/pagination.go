package repository

// Pagination bounds.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Pagination selects one page of a listing. Pages start at 1.
type Pagination struct {
	Page    int `query:"page"`
	PerPage int `query:"perPage"`
}

// Normalize clamps the page to at least 1 and the page size to 1..MaxPerPage.
// A zero page size is unset and becomes DefaultPerPage.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PerPage == 0:
		p.PerPage = DefaultPerPage
	case p.PerPage < 1:
		p.PerPage = 1
	case p.PerPage > MaxPerPage:
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Pagination) offset() int {
	return (p.Page - 1) * p.PerPage
}

// PageMeta describes where a page sits in the full listing.
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
}

// Page is one page of a listing.
type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

func newPage[T any](data []T, total int64, p Pagination) *Page[T] {
	if data == nil {
		data = []T{}
	}
	pages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	return &Page[T]{
		Data: data,
		Meta: PageMeta{Total: total, Page: p.Page, PerPage: p.PerPage, TotalPages: pages},
	}
}
