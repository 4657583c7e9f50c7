// Package pagination slices ordered sequences into fixed-size, page-number addressed pages.
//
// Out-of-range page numbers are clamped to the nearest valid page instead of failing, and an
// empty sequence still has one (empty) page.
package pagination

import (
	"errors"
	"strconv"
)

// Page describes one page of a sequence.
type Page struct {
	Number     int   `json:"number"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ParsePage reads a page number from a query value. Missing or non-numeric input yields 1.
// Integers too large for int saturate, so New clamps them to the last page.
func ParsePage(raw string) int {
	n, err := strconv.ParseInt(raw, 10, 0)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return int(n)
		}
		return 1
	}
	return int(n)
}

// New computes the page that requested resolves to for total items split into pages of size.
// size must be positive.
func New(total int64, size, requested int) Page {
	if size < 1 {
		panic("pagination: page size must be positive")
	}
	if total < 0 {
		total = 0
	}

	pages := int(total / int64(size))
	if total%int64(size) != 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}

	return Page{
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: pages,
		HasNext:    number < pages,
		HasPrev:    number > 1,
	}
}

// Offset is the index of the first item on the page.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Limit is the number of items the page holds.
func (p Page) Limit() int {
	remaining := p.TotalItems - int64(p.Offset())
	if remaining < int64(p.Size) {
		if remaining < 0 {
			return 0
		}
		return int(remaining)
	}
	return p.Size
}

// Paginate returns the slice of items on the requested page together with its metadata.
func Paginate[T any](items []T, size, requested int) ([]T, Page) {
	p := New(int64(len(items)), size, requested)
	start := p.Offset()
	return items[start : start+p.Limit()], p
}
