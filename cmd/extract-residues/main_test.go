package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BurntSushi/ensembler/pdb"
)

func TestParseResidues(t *testing.T) {
	tests := []struct {
		arg  string
		want []pdb.ResidueID
	}{
		{"93", []pdb.ResidueID{{Number: 93, ICode: 0}}},
		{"93B", []pdb.ResidueID{{Number: 93, ICode: 'B'}}},
		{"-5", []pdb.ResidueID{{Number: -5, ICode: 0}}},
		{"23-25", []pdb.ResidueID{{Number: 23, ICode: 0}, {Number: 24, ICode: 0}, {Number: 25, ICode: 0}}},
		{"-2-1", []pdb.ResidueID{{Number: -2, ICode: 0}, {Number: -1, ICode: 0}, {Number: 0, ICode: 0}, {Number: 1, ICode: 0}}},
		{"-3--2", []pdb.ResidueID{{Number: -3, ICode: 0}, {Number: -2, ICode: 0}}},
		{"7-7", []pdb.ResidueID{{Number: 7, ICode: 0}}},
	}
	for _, test := range tests {
		got, err := parseResidues(test.arg)
		require.NoError(t, err, test.arg)
		require.Equal(t, test.want, got, test.arg)
	}

	for _, arg := range []string{"", "-", "x", "5-3", "5-", "1-2A", "a-3"} {
		_, err := parseResidues(arg)
		require.Error(t, err, arg)
	}
}
