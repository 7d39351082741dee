package events

import (
	"fmt"
	"strings"
)

// SortKey is a canonical, intentionally-sortable column. Sort requests are
// resolved against a fixed set; no user-supplied string ever reaches a SQL
// ORDER BY clause.
type SortKey string

const (
	SortByID       SortKey = "id"
	SortByName     SortKey = "name"
	SortByLocation SortKey = "location"
	SortByCountry  SortKey = "country"
	SortByCapacity SortKey = "capacity"
)

var sortKeys = map[string]SortKey{
	"id":       SortByID,
	"name":     SortByName,
	"location": SortByLocation,
	"country":  SortByCountry,
	"capacity": SortByCapacity,
}

// SortError reports a sort column that is not in the allowed set.
type SortError struct {
	SortBy string
}

func (e SortError) Error() string {
	return fmt.Sprintf("invalid sort property: %s", e.SortBy)
}

// ResolveSortKey maps a raw, case-insensitive column name to its canonical
// key. An empty name resolves to the stable default, ID ascending.
func ResolveSortKey(name string) (SortKey, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return SortByID, nil
	}
	if key, ok := sortKeys[strings.ToLower(trimmed)]; ok {
		return key, nil
	}
	return "", SortError{SortBy: trimmed}
}
