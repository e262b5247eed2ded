package shared

// DefaultPerPage is the fixed page size of list views.
const DefaultPerPage = 20

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// PageItem is one control in a page window. Ellipsis items are gap markers, not pages.
type PageItem struct {
	Number   int
	Current  bool
	Ellipsis bool
}

// NewPagination computes pagination metadata. TotalPages is at least 1 and Page is
// clamped into [1, TotalPages].
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	totalPages := TotalPages(total, perPage)
	return Pagination{Page: ClampPage(page, totalPages), PerPage: perPage, Total: total, TotalPages: totalPages}
}

// TotalPages returns max(1, ceil(total/perPage)).
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// ClampPage limits page to [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// PageBounds returns the half-open index range of page within total items. A page past
// the end yields an empty range at total.
func PageBounds(page, perPage, total int) (int, int) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 1 || total <= 0 {
		return 0, 0
	}
	start := (page - 1) * perPage
	if start >= total {
		return total, total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return start, end
}

// PageWindow lists the page controls to render: the first and last page plus every
// page within one of current, with an ellipsis wherever consecutive numbers skip.
func PageWindow(current, totalPages int) []PageItem {
	if totalPages < 1 {
		totalPages = 1
	}
	items := make([]PageItem, 0, 7)
	prev := 0
	for page := 1; page <= totalPages; page++ {
		if page != 1 && page != totalPages && abs(page-current) > 1 {
			continue
		}
		if prev != 0 && page-prev > 1 {
			items = append(items, PageItem{Ellipsis: true})
		}
		items = append(items, PageItem{Number: page, Current: page == current})
		prev = page
	}
	return items
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// Prev returns the previous page number, never below 1.
func (p Pagination) Prev() int { return ClampPage(p.Page-1, p.TotalPages) }

// Next returns the next page number, never above TotalPages.
func (p Pagination) Next() int { return ClampPage(p.Page+1, p.TotalPages) }

// Window returns the page controls for p.
func (p Pagination) Window() []PageItem { return PageWindow(p.Page, p.TotalPages) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
