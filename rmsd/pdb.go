package rmsd

import (
	"fmt"

	"github.com/BurntSushi/ensembler/pdb"
)

// Residues is a convenience function for computing the RMSD between two
// equal length lists of residues. Residue i of res1 is paired with residue i
// of res2, and only carbon-alpha atoms are used.
//
// An error will be returned if: the lists have different lengths or are
// empty. Any residue is missing its carbon-alpha atom.
func Residues(res1, res2 []*pdb.Residue) (float64, error) {
	if len(res1) != len(res2) {
		return 0.0, fmt.Errorf("Cannot compare %d residues with %d residues.",
			len(res1), len(res2))
	}
	if len(res1) == 0 {
		return 0.0, fmt.Errorf("No residues to compare.")
	}

	struct1 := make([]pdb.Coords, len(res1))
	struct2 := make([]pdb.Coords, len(res2))
	for i := range res1 {
		ca1, ca2 := res1[i].Ca(), res2[i].Ca()
		if ca1 == nil {
			return 0.0, fmt.Errorf("Residue %s %s has no carbon-alpha atom.",
				res1[i].Name, res1[i].ID)
		}
		if ca2 == nil {
			return 0.0, fmt.Errorf("Residue %s %s has no carbon-alpha atom.",
				res2[i].Name, res2[i].ID)
		}
		struct1[i], struct2[i] = *ca1, *ca2
	}
	return RMSD(struct1, struct2), nil
}

// Chains computes the carbon-alpha RMSD of two chains with the same number of
// residues, pairing residues by position.
func Chains(chain1, chain2 *pdb.Chain) (float64, error) {
	rmsd, err := Residues(chain1.Residues, chain2.Residues)
	if err != nil {
		return 0.0, fmt.Errorf("Could not compare chain %c of '%s' with "+
			"chain %c of '%s': %s", chain1.Ident, entryPath(chain1),
			chain2.Ident, entryPath(chain2), err)
	}
	return rmsd, nil
}

func entryPath(c *pdb.Chain) string {
	if c.Entry == nil {
		return ""
	}
	return c.Entry.Path
}
