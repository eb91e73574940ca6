// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows in a paged list.
const PageSize = 50

// Page is a 1-based page number with its size.
type Page struct {
	Number int
	Size   int
}

// ParsePage reads the "page" query parameter. Missing, invalid and
// non-positive values give page 1. size <= 0 means PageSize.
func ParsePage(r *http.Request, size int) Page {
	if size <= 0 {
		size = PageSize
	}
	n, err := strconv.Atoi(query.Get(r, "page"))
	if err != nil || n < 1 {
		n = 1
	}
	return Page{Number: n, Size: size}
}

// Limit is the Mongo limit for the page.
func (p Page) Limit() int64 { return int64(p.Size) }

// Offset is the number of rows to skip.
func (p Page) Offset() int64 { return int64(p.Number-1) * int64(p.Size) }

// TotalPages is the page count for total rows. Zero rows is zero pages.
func (p Page) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}
