// Package query models the WordPress REST API query parameters used by
// collection requests.
package query

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies which WordPress query parameter a Parameter represents.
type Kind string

const (
	KindFields         Kind = "fields"
	KindPostedAfter    Kind = "posted_after"
	KindPostedBefore   Kind = "posted_before"
	KindModifiedAfter  Kind = "modified_after"
	KindModifiedBefore Kind = "modified_before"
	KindOrderBy        Kind = "order_by"
	KindOrder          Kind = "order"
	KindPerPage        Kind = "per_page"
	KindPage           Kind = "page"
	KindCustom         Kind = "custom"
)

// Wire names of the well-known parameters.
const (
	NameFields         = "_fields"
	NamePostedAfter    = "after"
	NamePostedBefore   = "before"
	NameModifiedAfter  = "modified_after"
	NameModifiedBefore = "modified_before"
	NameOrderBy        = "orderBy"
	NameOrder          = "order"
	NamePerPage        = "per_page"
	NamePage           = "page"
)

// OrderBy is the attribute a collection is sorted by.
type OrderBy string

const (
	OrderByDate     OrderBy = "date"
	OrderByModified OrderBy = "modified"
)

// Order is the sort direction of a collection.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Parameter is a single name/value query parameter.
//
// Two parameters are equal when both name and value match. Inside a Set a
// parameter is identified by its name alone.
type Parameter struct {
	Kind  Kind
	Name  string
	Value string
}

func newParameter(kind Kind, name, value string) Parameter {
	return Parameter{Kind: kind, Name: name, Value: value}
}

func dateParameter(kind Kind, name string, t time.Time) Parameter {
	return newParameter(kind, name, t.UTC().Format(time.RFC3339))
}

func intParameter(kind Kind, name string, n int) Parameter {
	return newParameter(kind, name, strconv.Itoa(n))
}

// Fields limits the response to the named fields.
func Fields(names []string) Parameter {
	return newParameter(KindFields, NameFields, strings.Join(names, ","))
}

// PostedAfter limits results to items published after t.
func PostedAfter(t time.Time) Parameter {
	return dateParameter(KindPostedAfter, NamePostedAfter, t)
}

// PostedBefore limits results to items published before t.
func PostedBefore(t time.Time) Parameter {
	return dateParameter(KindPostedBefore, NamePostedBefore, t)
}

// ModifiedAfter limits results to items modified after t.
func ModifiedAfter(t time.Time) Parameter {
	return dateParameter(KindModifiedAfter, NameModifiedAfter, t)
}

// ModifiedBefore limits results to items modified before t.
func ModifiedBefore(t time.Time) Parameter {
	return dateParameter(KindModifiedBefore, NameModifiedBefore, t)
}

// SortBy sorts the collection by the given attribute.
func SortBy(by OrderBy) Parameter {
	return newParameter(KindOrderBy, NameOrderBy, string(by))
}

// Sort sets the sort direction.
func Sort(order Order) Parameter {
	return newParameter(KindOrder, NameOrder, string(order))
}

// PerPage sets the page size.
func PerPage(n int) Parameter {
	return intParameter(KindPerPage, NamePerPage, n)
}

// Page pins the request to a single page number.
func Page(n int) Parameter {
	return intParameter(KindPage, NamePage, n)
}

// Custom returns an arbitrary parameter not covered by the named constructors.
func Custom(name, value string) Parameter {
	return newParameter(KindCustom, name, value)
}

// Equal reports whether p and o have the same name and value.
func (p Parameter) Equal(o Parameter) bool {
	return p.Name == o.Name && p.Value == o.Value
}

// Less orders parameters by name.
func (p Parameter) Less(o Parameter) bool {
	return p.Name < o.Name
}

// String returns the parameter in name=value form (unescaped).
func (p Parameter) String() string {
	return p.Name + "=" + p.Value
}
