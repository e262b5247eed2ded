package merchants

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/maxp/merchant-portal/internal/shared"
)

// PageSize is the fixed number of merchants per list page.
const PageSize = shared.DefaultPerPage

// ListingState is the serialisable part of a Listing, kept between requests.
type ListingState struct {
	Pending string `json:"pending"`
	Active  string `json:"active"`
	Page    int    `json:"page"`
}

// Listing holds the search and pagination state of the merchant list view.
// The displayed records always derive from the active query; typing only changes
// the pending query until SubmitSearch commits it.
type Listing struct {
	records []Merchant
	pending string
	active  string
	page    int
}

// NewListing returns a Listing over records positioned on page 1 with no query.
func NewListing(records []Merchant) *Listing {
	return &Listing{records: records, page: 1}
}

// RestoreListing rebuilds a Listing from a saved state. The saved page is clamped
// against the current records.
func RestoreListing(records []Merchant, state ListingState) *Listing {
	l := &Listing{records: records, pending: state.Pending, active: state.Active, page: 1}
	l.SetPage(state.Page)
	return l
}

// State snapshots the listing for persistence.
func (l *Listing) State() ListingState {
	return ListingState{Pending: l.pending, Active: l.active, Page: l.page}
}

// SetQuery records typed text without affecting the displayed results.
func (l *Listing) SetQuery(text string) {
	l.pending = text
}

// SubmitSearch commits the pending query and returns to the first page.
func (l *Listing) SubmitSearch() {
	l.active = l.pending
	l.page = 1
}

// PendingQuery returns the text being typed.
func (l *Listing) PendingQuery() string { return l.pending }

// ActiveQuery returns the committed search text.
func (l *Listing) ActiveQuery() string { return l.active }

// Page returns the current page number.
func (l *Listing) Page() int { return l.page }

// Filtered returns the records matching the active query, in their original order.
func (l *Listing) Filtered() []Merchant {
	return Filter(l.records, l.active)
}

// TotalPages returns max(1, ceil(len(Filtered())/PageSize)).
func (l *Listing) TotalPages() int {
	return shared.TotalPages(len(l.Filtered()), PageSize)
}

// SetPage moves to page n, clamped to [1, TotalPages()].
func (l *Listing) SetPage(n int) {
	l.page = shared.ClampPage(n, l.TotalPages())
}

// CurrentPage returns the filtered records on the current page. It is empty when the
// page lies beyond the filtered set.
func (l *Listing) CurrentPage() []Merchant {
	filtered := l.Filtered()
	start, end := shared.PageBounds(l.page, PageSize, len(filtered))
	return filtered[start:end]
}

// PageWindow returns the page controls to render around the current page.
func (l *Listing) PageWindow() []shared.PageItem {
	return shared.PageWindow(l.page, l.TotalPages())
}

// Pagination summarises the listing for templates.
func (l *Listing) Pagination() shared.Pagination {
	return shared.NewPagination(l.page, PageSize, len(l.Filtered()))
}

// Filter returns the records whose merchant name, business type or product type
// contains query, compared under Unicode case folding. An empty query matches all.
func Filter(records []Merchant, query string) []Merchant {
	if query == "" {
		out := make([]Merchant, len(records))
		copy(out, records)
		return out
	}
	folder := cases.Fold()
	needle := folder.String(query)
	out := make([]Merchant, 0, len(records))
	for _, record := range records {
		if strings.Contains(folder.String(record.MerchantName), needle) ||
			strings.Contains(folder.String(record.BusinessType), needle) ||
			strings.Contains(folder.String(record.ProductType), needle) {
			out = append(out, record)
		}
	}
	return out
}
