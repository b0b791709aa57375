// Package pagination derives navigation state from the API's list envelope.
// The cursor is always recomputed wholesale from the latest page, never
// incremented locally, so it cannot drift from what the server reports.
package pagination

import (
	"net/url"
	"strconv"
)

// DefaultPageSize matches the API's default page size.
const DefaultPageSize = 10

// Cursor is the navigation state of one fetched page.
type Cursor struct {
	HasNext     bool
	HasPrev     bool
	CurrentPage int
	TotalPages  int
}

// Track computes the cursor for a page envelope. next and previous are the
// envelope's link URLs (nil on the last/first page), count the total number
// of results across all pages.
//
// The current page is read off the next link's page= parameter minus one,
// since next always points one page ahead. On the last page it is derived
// from the total count instead.
func Track(count int, next, previous *string, pageSize int) Cursor {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	c := Cursor{
		HasNext: next != nil,
		HasPrev: previous != nil,
	}
	c.TotalPages = (count + pageSize - 1) / pageSize
	if c.TotalPages < 1 {
		c.TotalPages = 1
	}

	switch {
	case next != nil:
		c.CurrentPage = pageFromURL(*next) - 1
		if c.CurrentPage < 1 {
			c.CurrentPage = 1
		}
	default:
		c.CurrentPage = c.TotalPages
	}
	return c
}

// pageFromURL extracts the page= query parameter. A next link without an
// explicit page parameter points at page 2.
func pageFromURL(raw string) int {
	u, err := url.Parse(raw)
	if err != nil {
		return 2
	}
	page, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || page < 1 {
		return 2
	}
	return page
}
