// Package pagination holds the page-window arithmetic of the user list.
// Page indexes are 0-based; the backend is addressed with PageNumber.
package pagination

import (
	"errors"
	"fmt"
	"slices"
)

const (
	DefaultPageSize = 10
	WindowSize      = 5
)

// PageSizes are the page sizes offered to the user.
var PageSizes = []int{5, 10, 25, 50, 100}

var (
	ErrInvalidPageSize = errors.New("page size must be positive")
	ErrPageOutOfRange  = errors.New("page out of range")
)

// IsPageSizeChoice reports whether n is one of PageSizes.
func IsPageSizeChoice(n int) bool {
	return slices.Contains(PageSizes, n)
}

type Controller struct {
	pageIndex int
	pageSize  int
	total     int
}

func New(pageSize int) (*Controller, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}
	return &Controller{pageSize: pageSize}, nil
}

func (c *Controller) PageIndex() int { return c.pageIndex }
func (c *Controller) PageSize() int  { return c.pageSize }
func (c *Controller) Total() int     { return c.total }

// PageNumber is the 1-based page number sent to the backend.
func (c *Controller) PageNumber() int { return c.pageIndex + 1 }

// SetTotal records the collection size reported by the last fetch.
func (c *Controller) SetTotal(total int) {
	c.total = max(total, 0)
}

func (c *Controller) TotalPages() int {
	return (c.total + c.pageSize - 1) / c.pageSize
}

func (c *Controller) FirstItemOrdinal() int {
	return min(c.pageIndex*c.pageSize+1, c.total)
}

func (c *Controller) LastItemOrdinal() int {
	return min((c.pageIndex+1)*c.pageSize, c.total)
}

func (c *Controller) HasPrevious() bool { return c.pageIndex > 0 }
func (c *Controller) HasFirst() bool    { return c.HasPrevious() }
func (c *Controller) HasNext() bool     { return c.pageIndex < c.TotalPages()-1 }
func (c *Controller) HasLast() bool     { return c.HasNext() }

// SetPageSize changes the page size and always returns to the first page.
func (c *Controller) SetPageSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	c.pageSize = n
	c.pageIndex = 0
	return nil
}

// GoTo moves to index. Index 0 is always reachable, even for an empty list.
func (c *Controller) GoTo(index int) error {
	if index < 0 || index > 0 && index >= c.TotalPages() {
		return fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, index+1, c.TotalPages())
	}
	c.pageIndex = index
	return nil
}

func (c *Controller) Next() bool {
	if !c.HasNext() {
		return false
	}
	c.pageIndex++
	return true
}

func (c *Controller) Previous() bool {
	if !c.HasPrevious() {
		return false
	}
	c.pageIndex--
	return true
}

func (c *Controller) First() bool {
	if !c.HasFirst() {
		return false
	}
	c.pageIndex = 0
	return true
}

func (c *Controller) Last() bool {
	if !c.HasLast() {
		return false
	}
	c.pageIndex = c.TotalPages() - 1
	return true
}

// PageNumbers returns the 0-based indexes of the page buttons to show: at
// most WindowSize of them, anchored at the start for the first pages, at
// the end for the last pages and centered on the current page otherwise.
func (c *Controller) PageNumbers() []int {
	tp := c.TotalPages()
	n := min(WindowSize, tp)

	var start int
	switch {
	case c.pageIndex < 3:
		start = 0
	case c.pageIndex > tp-4:
		start = tp - WindowSize
	default:
		start = c.pageIndex - 2
	}
	start = max(0, min(start, tp-n))

	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, start+i)
	}
	return out
}

// ShowPageStrip reports whether the numbered page strip is worth showing,
// which is only the case when there are more pages than buttons.
func (c *Controller) ShowPageStrip() bool {
	return c.TotalPages() > WindowSize
}
