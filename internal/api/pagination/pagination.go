// Package pagination implements the offset page window used by listing
// endpoints: an optional (page, pageSize) pair plus a single optional sort
// column, and the paged result envelope echoed back to clients.
package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryError reports an invalid pagination parameter. It is a client error,
// not a server fault.
type QueryError struct {
	Field   string
	Message string
}

func (e QueryError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return "invalid " + e.Field + ": " + e.Message
}

// Query is the raw, validated pagination request. Page and PageSize are
// pointers so "not provided" stays distinguishable from any numeric value;
// they must be provided together or not at all.
type Query struct {
	Page       *int
	PageSize   *int
	SortBy     string
	Descending bool
}

// Paged reports whether a page window was requested.
func (q Query) Paged() bool {
	return q.Page != nil && q.PageSize != nil
}

// Window returns the zero-based offset and the row limit.
// Only meaningful when Paged() is true.
func (q Query) Window() (offset, limit int) {
	return (*q.Page - 1) * *q.PageSize, *q.PageSize
}

// ParseQuery reads page, pageSize, sortBy, and descending from URL query
// parameters. Violations of the numeric bounds or of the both-or-neither rule
// come back as QueryError.
func ParseQuery(values url.Values) (Query, error) {
	query := Query{
		SortBy: strings.TrimSpace(values.Get("sortBy")),
	}

	page, err := parsePositiveInt(values, "page")
	if err != nil {
		return Query{}, err
	}
	pageSize, err := parsePositiveInt(values, "pageSize")
	if err != nil {
		return Query{}, err
	}
	if (page == nil) != (pageSize == nil) {
		return Query{}, QueryError{Field: "page", Message: "page and pageSize must be provided together"}
	}
	query.Page = page
	query.PageSize = pageSize

	if raw := strings.TrimSpace(values.Get("descending")); raw != "" {
		descending, err := strconv.ParseBool(raw)
		if err != nil {
			return Query{}, QueryError{Field: "descending", Message: "must be true or false"}
		}
		query.Descending = descending
	}

	return query, nil
}

func parsePositiveInt(values url.Values, field string) (*int, error) {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return nil, QueryError{Field: field, Message: "must be a number"}
	}
	if parsed < 1 {
		return nil, QueryError{Field: field, Message: "must be greater than 0"}
	}
	return &parsed, nil
}

// PagedResult is a windowed subset of a collection plus the total count
// across all pages. For unpaginated requests Page is 1 and PageSize equals
// TotalCount.
type PagedResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
}

// NewPagedResult fills the envelope, defaulting the echoed page and pageSize
// for unpaginated requests.
func NewPagedResult[T any](items []T, totalCount int64, query Query) PagedResult[T] {
	result := PagedResult[T]{
		Items:      items,
		TotalCount: totalCount,
		Page:       1,
		PageSize:   int(totalCount),
	}
	if query.Paged() {
		result.Page = *query.Page
		result.PageSize = *query.PageSize
	}
	return result
}
