package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveSortKey(t *testing.T) {
	cases := []struct {
		input string
		want  SortKey
	}{
		{"", SortByID},
		{"id", SortByID},
		{"Name", SortByName},
		{"LOCATION", SortByLocation},
		{"country", SortByCountry},
		{"Capacity", SortByCapacity},
		{"  name  ", SortByName},
	}

	for _, tc := range cases {
		key, err := ResolveSortKey(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		require.Equal(t, tc.want, key, "input %q", tc.input)
	}
}

func TestResolveSortKeyRejectsUnknown(t *testing.T) {
	for _, input := range []string{"DROP TABLE", "created_at", "name; --", "eventid2"} {
		_, err := ResolveSortKey(input)
		var sortErr SortError
		require.ErrorAs(t, err, &sortErr, "input %q", input)
		require.Contains(t, sortErr.Error(), "invalid sort property")
	}
}
