package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQueryEmpty(t *testing.T) {
	query, err := ParseQuery(url.Values{})

	require.NoError(t, err)
	require.False(t, query.Paged())
	require.Empty(t, query.SortBy)
	require.False(t, query.Descending)
}

func TestParseQueryFull(t *testing.T) {
	values := url.Values{
		"page":       {"2"},
		"pageSize":   {"25"},
		"sortBy":     {"name"},
		"descending": {"true"},
	}

	query, err := ParseQuery(values)

	require.NoError(t, err)
	require.True(t, query.Paged())
	offset, limit := query.Window()
	require.Equal(t, 25, offset)
	require.Equal(t, 25, limit)
	require.Equal(t, "name", query.SortBy)
	require.True(t, query.Descending)
}

func TestParseQueryWindowFirstPage(t *testing.T) {
	query, err := ParseQuery(url.Values{"page": {"1"}, "pageSize": {"10"}})

	require.NoError(t, err)
	offset, limit := query.Window()
	require.Equal(t, 0, offset)
	require.Equal(t, 10, limit)
}

func TestParseQueryRejects(t *testing.T) {
	cases := []struct {
		name   string
		values url.Values
	}{
		{"page without pageSize", url.Values{"page": {"1"}}},
		{"pageSize without page", url.Values{"pageSize": {"10"}}},
		{"zero page", url.Values{"page": {"0"}, "pageSize": {"10"}}},
		{"negative pageSize", url.Values{"page": {"1"}, "pageSize": {"-1"}}},
		{"non-numeric page", url.Values{"page": {"abc"}, "pageSize": {"10"}}},
		{"bad descending", url.Values{"descending": {"maybe"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseQuery(tc.values)
			var queryErr QueryError
			require.ErrorAs(t, err, &queryErr)
		})
	}
}

func TestNewPagedResultPaged(t *testing.T) {
	page, pageSize := 2, 1
	query := Query{Page: &page, PageSize: &pageSize}

	result := NewPagedResult([]string{"b"}, 3, query)

	require.Equal(t, []string{"b"}, result.Items)
	require.EqualValues(t, 3, result.TotalCount)
	require.Equal(t, 2, result.Page)
	require.Equal(t, 1, result.PageSize)
}

func TestNewPagedResultUnpaged(t *testing.T) {
	result := NewPagedResult([]string{"a", "b", "c"}, 3, Query{})

	require.Equal(t, 1, result.Page)
	require.Equal(t, 3, result.PageSize)
}
