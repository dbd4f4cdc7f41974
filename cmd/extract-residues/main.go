// extract-residues copies the ATOM and HETATM records of some residues of one
// chain in a PDB file. Residues are given by their number and optional
// insertion code, e.g., "56" and "56A" are different residues. A range
// "23-27" includes every residue numbered 23 through 27 without an insertion
// code.
//
// A PDB file may be plain text or gzipped. If it is gzipped, it must end with
// a '.gz' extension.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/ensembler/cmd/util"
	"github.com/BurntSushi/ensembler/pdb"
)

var (
	flagOutput = ""
	flagStrict = false
)

func init() {
	flag.StringVar(&flagOutput, "o", flagOutput,
		"The file to write records to. When empty, records are written\n"+
			"to stdout.")
	flag.BoolVar(&flagStrict, "strict", flagStrict,
		"When set, it is an error for a requested residue to be missing.")
	util.FlagUse("verbose")
}

func main() {
	util.FlagParse("pdb-file chain-id residue [residue ...]",
		"Residues may be written as '93', '93B' or '23-27'.")
	util.AssertLeastNArg(3)

	pdbFile, chain := util.Arg(0), util.Arg(1)
	if len(chain) != 1 {
		util.Fatalf("Chain identifiers are a single character, but got '%s'.",
			chain)
	}

	var want []pdb.ResidueID
	for _, arg := range flag.Args()[2:] {
		ids, err := parseResidues(arg)
		util.Assert(err)
		want = append(want, ids...)
	}

	var w io.Writer = os.Stdout
	if len(flagOutput) > 0 {
		f := util.CreateFile(flagOutput)
		defer f.Close()
		w = f
	}

	ex, err := pdb.ExtractResidues(w, pdbFile, want, chain[0])
	util.Assert(err)
	util.Verbosef("Wrote %d records for %d of %d residues.\n",
		ex.Records, ex.Residues, len(want))

	if len(ex.Missing) > 0 {
		missing := make([]string, len(ex.Missing))
		for i, id := range ex.Missing {
			missing[i] = id.String()
		}
		msg := "Residues not found in chain %s of '%s': %s"
		if flagStrict {
			util.Fatalf(msg, chain, pdbFile, strings.Join(missing, " "))
		}
		util.Warnf(msg, chain, pdbFile, strings.Join(missing, " "))
	}
}

// parseResidues parses a single residue identifier or an inclusive range of
// residue numbers. Residue numbers may be negative, e.g., "-5-3" is the range
// from -5 through 3.
func parseResidues(arg string) ([]pdb.ResidueID, error) {
	// A leading '-' is the sign of the first number.
	i := -1
	if len(arg) > 1 {
		if k := strings.Index(arg[1:], "-"); k >= 0 {
			i = k + 1
		}
	}
	if i > 0 {
		start, err := strconv.Atoi(arg[:i])
		if err != nil {
			return nil, fmt.Errorf("Invalid residue range '%s': %s", arg, err)
		}
		end, err := strconv.Atoi(arg[i+1:])
		if err != nil {
			return nil, fmt.Errorf("Invalid residue range '%s': %s", arg, err)
		}
		if end < start {
			return nil, fmt.Errorf("Invalid residue range '%s': %d comes "+
				"after %d.", arg, start, end)
		}
		ids := make([]pdb.ResidueID, 0, end-start+1)
		for num := start; num <= end; num++ {
			ids = append(ids, pdb.ResidueID{Number: num})
		}
		return ids, nil
	}
	return pdb.ParseResidueIDs([]string{arg})
}
