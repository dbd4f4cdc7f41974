package refine

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/BurntSushi/ensembler/pdb"
)

// EnergiesHeader is the first line of an energies file.
const EnergiesHeader = "# iteration | simulation time (ps) | " +
	"potential_energy (kT) | kinetic_energy (kT) | ns per day"

// Energy is one row of an energies file, written after each iteration of
// dynamics. Energies are in units of kT.
type Energy struct {
	Iteration int
	Time      float64 // picoseconds
	Potential float64
	Kinetic   float64
	NsPerDay  float64
}

// EnergyError is returned when an energies file records a non-finite energy,
// which means the simulation blew up.
type EnergyError struct {
	Path      string
	Iteration int
}

func (err *EnergyError) Error() string {
	return fmt.Sprintf("Potential or kinetic energies are nan at iteration "+
		"%d in '%s'.", err.Iteration, err.Path)
}

// ReadEnergiesFile reads the energies file at path. See ReadEnergies.
func ReadEnergiesFile(path string) ([]Energy, error) {
	f, err := pdb.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	energies, err := ReadEnergies(f)
	if eerr, ok := err.(*EnergyError); ok {
		eerr.Path = path
	}
	return energies, err
}

// ReadEnergies reads an energies file. Lines starting with '#' and blank
// lines are skipped. Every other line must have five whitespace separated
// columns: iteration, simulation time, potential energy, kinetic energy and
// speed.
//
// If a potential or kinetic energy is NaN or infinite, the rows read so far
// are returned along with an *EnergyError.
func ReadEnergies(r io.Reader) ([]Energy, error) {
	var energies []Energy

	scanner := bufio.NewScanner(r)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("Line %d: Expected 5 columns but got %d.",
				lineNum, len(fields))
		}

		var e Energy
		var err error
		if e.Iteration, err = strconv.Atoi(fields[0]); err != nil {
			return nil, fmt.Errorf("Line %d: Invalid iteration '%s'.",
				lineNum, fields[0])
		}
		floats := []*float64{&e.Time, &e.Potential, &e.Kinetic, &e.NsPerDay}
		for i, dst := range floats {
			if *dst, err = strconv.ParseFloat(fields[i+1], 64); err != nil {
				return nil, fmt.Errorf("Line %d: Invalid number '%s'.",
					lineNum, fields[i+1])
			}
		}
		if !finite(e.Potential) || !finite(e.Kinetic) {
			return energies, &EnergyError{Iteration: e.Iteration}
		}
		energies = append(energies, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return energies, nil
}

// WriteEnergies writes energies in the format read by ReadEnergies, header
// included.
func WriteEnergies(w io.Writer, energies []Energy) error {
	if _, err := fmt.Fprintln(w, EnergiesHeader); err != nil {
		return err
	}
	for _, e := range energies {
		_, err := fmt.Fprintf(w, "  %8d %8.1f %8.3f %8.3f %.3f\n",
			e.Iteration, e.Time, e.Potential, e.Kinetic, e.NsPerDay)
		if err != nil {
			return err
		}
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Summary describes the energies of a refinement run.
type Summary struct {
	Iterations     int
	SimulationTime float64 // picoseconds

	FinalPotential float64
	MeanPotential  float64
	StdPotential   float64
	MeanKinetic    float64

	// NsPerDay is the average simulation speed.
	NsPerDay float64
}

// Summarize computes a Summary. It returns the zero Summary when there are no
// energies.
func Summarize(energies []Energy) Summary {
	if len(energies) == 0 {
		return Summary{}
	}
	potential := make([]float64, len(energies))
	kinetic := make([]float64, len(energies))
	speed := make([]float64, len(energies))
	for i, e := range energies {
		potential[i], kinetic[i], speed[i] = e.Potential, e.Kinetic, e.NsPerDay
	}

	last := energies[len(energies)-1]
	s := Summary{
		Iterations:     len(energies),
		SimulationTime: last.Time,
		FinalPotential: last.Potential,
		MeanKinetic:    stat.Mean(kinetic, nil),
		NsPerDay:       stat.Mean(speed, nil),
	}
	if len(energies) > 1 {
		s.MeanPotential, s.StdPotential = stat.MeanStdDev(potential, nil)
	} else {
		s.MeanPotential = potential[0]
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d iterations, %0.1f ps, potential %0.3f kT "+
		"(mean %0.3f +/- %0.3f), kinetic %0.3f kT, %0.3f ns/day",
		s.Iterations, s.SimulationTime, s.FinalPotential,
		s.MeanPotential, s.StdPotential, s.MeanKinetic, s.NsPerDay)
}
