package pdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseResidueID(t *testing.T) {
	tests := []struct {
		in   string
		want ResidueID
	}{
		{"56", ResidueID{56, 0}},
		{"56A", ResidueID{56, 'A'}},
		{" 93B ", ResidueID{93, 'B'}},
		{"-3", ResidueID{-3, 0}},
		{"1000", ResidueID{1000, 0}},
	}
	for _, test := range tests {
		got, err := ParseResidueID(test.in)
		require.NoError(t, err, test.in)
		require.Equal(t, test.want, got, test.in)
	}

	for _, bad := range []string{"", "  ", "A", "5x6", "12AB"} {
		_, err := ParseResidueID(bad)
		require.Error(t, err, "%q should not parse", bad)
	}
}

func TestResidueIDString(t *testing.T) {
	for _, s := range []string{"1", "56", "56A", "93B", "-2"} {
		id, err := ParseResidueID(s)
		require.NoError(t, err)
		require.Equal(t, s, id.String())
	}
}

func TestResidueIDInsertionCodeIsDistinct(t *testing.T) {
	plain, err := ParseResidueID("56")
	require.NoError(t, err)
	coded, err := ParseResidueID("56A")
	require.NoError(t, err)
	require.NotEqual(t, plain, coded)

	set := NewResidueSet([]ResidueID{coded})
	require.True(t, set.Contains(coded))
	require.False(t, set.Contains(plain))
}

func TestResidueSetOrder(t *testing.T) {
	ids, err := ParseResidueIDs([]string{"93B", "93", "56", "56A", "57", "93"})
	require.NoError(t, err)

	set := NewResidueSet(ids)
	require.Equal(t, 5, set.Len())
	require.Equal(t, ids[:5], set.IDs())

	// File order, not numeric order.
	require.True(t, set.Less(ids[0], ids[1]))
	require.False(t, set.Less(ids[1], ids[0]))
	require.True(t, set.Less(ids[2], ids[3]))

	absent := ResidueID{Number: 1}
	require.True(t, set.Less(ids[4], absent))
	require.False(t, set.Less(absent, ids[0]))
}

func TestParseResidueIDsError(t *testing.T) {
	_, err := ParseResidueIDs([]string{"1", "2", "x"})
	require.Error(t, err)
}
