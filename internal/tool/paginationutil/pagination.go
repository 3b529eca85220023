// Package paginationutil slices result lists into offset/limit pages.
package paginationutil

// Page describes the slice returned by Apply.
type Page struct {
	Offset int
	Limit  int
	// More is set when items exist past the page.
	More bool
}

// Apply returns items[offset:offset+limit], clamped to the slice bounds.
// A negative offset counts as zero.
func Apply[T any](items []T, offset, limit int) ([]T, Page) {
	offset = max(offset, 0)
	start := min(offset, len(items))
	end := min(offset+limit, len(items))
	return items[start:end], Page{
		Offset: offset,
		Limit:  limit,
		More:   offset+limit < len(items),
	}
}

// Next is the offset of the following page.
func (p Page) Next() int {
	return p.Offset + p.Limit
}
