// Package paginate slices a visible set into fixed-size pages.
package paginate

// PageSize is the fixed number of regular cards per page. The pinned
// highlight renders outside pagination and never counts against this.
const PageSize = 10

// Pagination is the derived page state. Invariant: 1 <= Page <= TotalPages,
// and TotalPages >= 1 even for an empty visible set.
type Pagination struct {
	Page       int
	TotalPages int
}

// TotalPages computes the page count for n visible items.
func TotalPages(n int) int {
	pages := (n + PageSize - 1) / PageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Clamp forces a requested page into [1, totalPages].
func Clamp(requested, totalPages int) int {
	if requested < 1 {
		return 1
	}
	if requested > totalPages {
		return totalPages
	}
	return requested
}

// Compute derives the pagination for n visible items and a requested page.
// The requested page is clamped, never rejected: a filter change that
// shrinks the set below the previously-viewed page just lands the reader on
// the last page that still exists.
func Compute(n, requested int) Pagination {
	total := TotalPages(n)
	return Pagination{Page: Clamp(requested, total), TotalPages: total}
}

// Slice returns the ids on the given page.
func Slice(ids []string, p Pagination) []string {
	start := (p.Page - 1) * PageSize
	if start >= len(ids) {
		return []string{}
	}
	end := start + PageSize
	if end > len(ids) {
		end = len(ids)
	}
	return ids[start:end]
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// Prev returns the previous page number, a no-op at the lower boundary.
func (p Pagination) Prev() int {
	if !p.HasPrev() {
		return p.Page
	}
	return p.Page - 1
}

// Next returns the next page number, a no-op at the upper boundary.
func (p Pagination) Next() int {
	if !p.HasNext() {
		return p.Page
	}
	return p.Page + 1
}
