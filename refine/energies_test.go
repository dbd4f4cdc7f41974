package refine

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const energiesFile = `# iteration | simulation time (ps) | potential_energy (kT) | kinetic_energy (kT) | ns per day
         0      1.0 -4512.117 1203.551 12.345
         1      2.0 -4600.000 1190.250 12.500
         2      3.0 -4620.500 1210.000 12.655
`

func TestReadEnergies(t *testing.T) {
	energies, err := ReadEnergies(strings.NewReader(energiesFile))
	require.NoError(t, err)
	require.Equal(t, []Energy{
		{0, 1.0, -4512.117, 1203.551, 12.345},
		{1, 2.0, -4600.000, 1190.250, 12.500},
		{2, 3.0, -4620.500, 1210.000, 12.655},
	}, energies)
}

func TestReadEnergiesRoundTrip(t *testing.T) {
	energies, err := ReadEnergies(strings.NewReader(energiesFile))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteEnergies(&buf, energies))
	require.Equal(t, energiesFile, buf.String())
}

func TestReadEnergiesNaN(t *testing.T) {
	src := energiesFile + "         3      4.0      nan 1210.000 12.655\n"
	energies, err := ReadEnergies(strings.NewReader(src))

	var eerr *EnergyError
	require.True(t, errors.As(err, &eerr))
	require.Equal(t, 3, eerr.Iteration)
	require.Len(t, energies, 3)

	src = "  0 1.0 -10.0 +Inf 1.0\n"
	_, err = ReadEnergies(strings.NewReader(src))
	require.True(t, errors.As(err, &eerr))
}

func TestReadEnergiesFileNaN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "implicit-energies.txt")
	require.NoError(t, os.WriteFile(path,
		[]byte("  0 1.0 NaN 10.0 1.0\n"), 0666))

	_, err := ReadEnergiesFile(path)
	var eerr *EnergyError
	require.True(t, errors.As(err, &eerr))
	require.Equal(t, path, eerr.Path)
	require.Contains(t, err.Error(), "nan")
}

func TestReadEnergiesMalformed(t *testing.T) {
	for _, src := range []string{
		"0 1.0 2.0 3.0\n",
		"x 1.0 2.0 3.0 4.0\n",
		"0 1.0 two 3.0 4.0\n",
	} {
		_, err := ReadEnergies(strings.NewReader(src))
		require.Error(t, err, src)
	}
}

func TestSummarize(t *testing.T) {
	energies, err := ReadEnergies(strings.NewReader(energiesFile))
	require.NoError(t, err)

	s := Summarize(energies)
	require.Equal(t, 3, s.Iterations)
	require.Equal(t, 3.0, s.SimulationTime)
	require.Equal(t, -4620.5, s.FinalPotential)

	mean := (-4512.117 - 4600.0 - 4620.5) / 3
	require.InDelta(t, mean, s.MeanPotential, 1e-9)

	var ss float64
	for _, e := range energies {
		ss += (e.Potential - mean) * (e.Potential - mean)
	}
	require.InDelta(t, math.Sqrt(ss/2), s.StdPotential, 1e-9)
	require.InDelta(t, 12.5, s.NsPerDay, 1e-9)

	require.Equal(t, Summary{}, Summarize(nil))

	one := Summarize(energies[:1])
	require.Equal(t, -4512.117, one.MeanPotential)
	require.Zero(t, one.StdPotential)
}
