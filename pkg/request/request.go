// Package request describes one logical paginated fetch of a WordPress
// collection: the item type, query parameters and paging limits.
package request

import (
	"fmt"
	"net/url"

	"github.com/Sternrassler/wp-reader/pkg/client"
	"github.com/Sternrassler/wp-reader/pkg/item"
	"github.com/Sternrassler/wp-reader/pkg/query"
)

const (
	// DefaultStartPage is the first page fetched unless configured otherwise.
	DefaultStartPage = 1

	// DefaultPerPage is the page size used when the parameters set none.
	// 100 is the maximum the WordPress REST API accepts.
	DefaultPerPage = 100
)

// Collection is a paginated fetch plan for item type T.
//
// The field filter (_fields) always reflects T's field names: it is
// recomputed on every change to the parameters and overrides caller values.
type Collection[T item.Item] struct {
	params query.Set

	// StartPage is the first page of the window. Must be >= 1.
	StartPage int

	// MaxPages caps the number of pages fetched. 0 means no cap.
	MaxPages int

	// PerPage is used when the parameters do not set per_page.
	PerPage int

	// MaxConcurrency caps parallel page fetches. 0 means unbounded.
	MaxConcurrency int

	// Transport overrides the site transport when set.
	Transport client.Transport
}

// Window is the closed range of pages a fetch covers.
type Window struct {
	Start int
	End   int
}

// Len returns the number of pages in the window.
func (w Window) Len() int {
	return w.End - w.Start + 1
}

// Pages lists the page numbers of the window in ascending order.
func (w Window) Pages() []int {
	pages := make([]int, 0, w.Len())
	for p := w.Start; p <= w.End; p++ {
		pages = append(pages, p)
	}
	return pages
}

// New creates a request for T with the given parameters.
func New[T item.Item](params ...query.Parameter) *Collection[T] {
	c := &Collection[T]{
		StartPage: DefaultStartPage,
		PerPage:   DefaultPerPage,
	}
	c.SetParameters(params...)
	return c
}

// SetParameters replaces all parameters.
func (c *Collection[T]) SetParameters(params ...query.Parameter) *Collection[T] {
	c.params = query.NewSet(params...)
	c.injectFields()
	return c
}

// Update adds or replaces parameters.
func (c *Collection[T]) Update(params ...query.Parameter) *Collection[T] {
	for _, p := range params {
		c.params.Update(p)
	}
	c.injectFields()
	return c
}

// Remove deletes the named parameter. The field filter cannot be removed.
func (c *Collection[T]) Remove(name string) *Collection[T] {
	c.params.Remove(name)
	c.injectFields()
	return c
}

func (c *Collection[T]) injectFields() {
	fields := item.Fields[T]()
	if len(fields) == 0 {
		c.params.Remove(query.NameFields)
		return
	}
	c.params.Update(query.Fields(fields))
}

// Parameters returns a copy of the current parameters.
func (c *Collection[T]) Parameters() query.Set {
	return c.params.Clone()
}

// QuerySet returns the parameters plus per_page unless already present.
// It is the query sent with the page count probe.
func (c *Collection[T]) QuerySet() query.Set {
	qs := c.params.Clone()
	if !qs.Contains(query.NamePerPage) {
		qs.Update(query.PerPage(c.PerPage))
	}
	return qs
}

// PageQuery returns the query for page n. A page pinned by the caller wins.
func (c *Collection[T]) PageQuery(n int) query.Set {
	return c.QuerySet().Union(query.NewSet(query.Page(n)))
}

// PinnedPage returns the page set through the parameters, if any.
func (c *Collection[T]) PinnedPage() (int, bool) {
	return c.params.Page()
}

// PageWindow resolves the pages to fetch given the total reported by the
// server. ok is false when StartPage lies beyond total.
func (c *Collection[T]) PageWindow(total int) (w Window, ok bool) {
	if c.StartPage > total {
		return Window{}, false
	}

	end := total
	if c.MaxPages > 0 && c.MaxPages <= total-c.StartPage {
		end = c.StartPage + c.MaxPages - 1
	}
	return Window{Start: c.StartPage, End: end}, true
}

// Segment returns the collection path segment of T.
func (c *Collection[T]) Segment() string {
	return item.Segment[T]()
}

// Validate checks the paging limits. Invalid values are reported, never
// coerced.
func (c *Collection[T]) Validate() error {
	switch {
	case c.StartPage < 1:
		return badArgument(fmt.Sprintf("start page must be >= 1 (got %d)", c.StartPage))
	case c.MaxPages < 0:
		return badArgument(fmt.Sprintf("max pages must be >= 0 (got %d)", c.MaxPages))
	case c.PerPage < 1 && !c.params.Contains(query.NamePerPage):
		return badArgument(fmt.Sprintf("per page must be >= 1 (got %d)", c.PerPage))
	case c.MaxConcurrency < 0:
		return badArgument(fmt.Sprintf("max concurrency must be >= 0 (got %d)", c.MaxConcurrency))
	}
	if p, ok := c.params.Get(query.NamePage); ok {
		if n, ok := c.params.Page(); !ok || n < 1 {
			return badArgument(fmt.Sprintf("pinned page must be an integer >= 1 (got %q)", p.Value))
		}
	}
	return nil
}

func badArgument(msg string) error {
	return &client.Error{Class: client.ClassAPI, Err: client.ErrBadArgument, Message: msg}
}

// WithStartPage sets StartPage.
func (c *Collection[T]) WithStartPage(n int) *Collection[T] {
	c.StartPage = n
	return c
}

// WithMaxPages sets MaxPages.
func (c *Collection[T]) WithMaxPages(n int) *Collection[T] {
	c.MaxPages = n
	return c
}

// WithPerPage sets PerPage.
func (c *Collection[T]) WithPerPage(n int) *Collection[T] {
	c.PerPage = n
	return c
}

// WithMaxConcurrency sets MaxConcurrency.
func (c *Collection[T]) WithMaxConcurrency(n int) *Collection[T] {
	c.MaxConcurrency = n
	return c
}

// WithTransport sets Transport.
func (c *Collection[T]) WithTransport(t client.Transport) *Collection[T] {
	c.Transport = t
	return c
}

// JoinURL resolves root, which must be an absolute http or https URL, and
// appends the path elements.
func JoinURL(root string, elems ...string) (*url.URL, error) {
	u, err := client.ParseHTTPURL(root)
	if err != nil {
		return nil, err
	}
	return u.JoinPath(elems...), nil
}
