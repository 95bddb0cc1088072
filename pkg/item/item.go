// Package item defines the WordPress item types the reader can decode and the
// descriptor every item type provides: its URL path segment and the static
// list of JSON fields it decodes.
package item

import (
	"net/url"
	"slices"
	"strings"
)

// Item describes a WordPress collection item type. Both methods are
// implemented on value receivers so the zero value of a type describes it.
type Item interface {
	// PathSegment is the collection segment appended to the REST root, e.g. "posts".
	PathSegment() string
	// FieldNames lists the JSON fields the type decodes. It is used to build
	// the _fields filter and must be static data.
	FieldNames() []string
}

// Content is implemented by posts and pages. The text accessors return the
// rendered fields with percent encoding removed.
type Content interface {
	Item
	ContentTitle() string
	ContentHTML() string
	ExcerptCleaned() string
	SlugCleaned() string
}

// Taxonomy is implemented by categories and tags.
type Taxonomy interface {
	Item
	TaxonomyName() string
	SlugCleaned() string
}

// CompareContent orders content by cleaned title.
func CompareContent[T Content](a, b T) int {
	return strings.Compare(a.ContentTitle(), b.ContentTitle())
}

// CompareTaxonomy orders categories and tags by name.
func CompareTaxonomy[T Taxonomy](a, b T) int {
	return strings.Compare(a.TaxonomyName(), b.TaxonomyName())
}

// SortContent sorts items in place by cleaned title, keeping the order of
// equal titles.
func SortContent[T Content](items []T) {
	slices.SortStableFunc(items, CompareContent[T])
}

// SortTaxonomy sorts items in place by name, keeping the order of equal names.
func SortTaxonomy[T Taxonomy](items []T) {
	slices.SortStableFunc(items, CompareTaxonomy[T])
}

// Segment returns the path segment of item type T.
func Segment[T Item]() string {
	var zero T
	return zero.PathSegment()
}

// Fields returns a copy of the field names of item type T.
func Fields[T Item]() []string {
	var zero T
	names := zero.FieldNames()
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// RenderedContent is rendered HTML returned by the API.
type RenderedContent struct {
	Rendered string `json:"rendered"`
}

// Cleaned returns the rendered HTML with percent encoding removed.
func (r RenderedContent) Cleaned() string {
	return unescape(r.Rendered)
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}
