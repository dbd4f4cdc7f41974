package main

import (
	"fmt"

	"github.com/BurntSushi/ensembler/cmd/util"
	"github.com/BurntSushi/ensembler/pdb"
	"github.com/BurntSushi/ensembler/rmsd"
)

func init() {
	util.FlagParse(
		"pdb-file chain-id [start stop] pdb-file chain-id [start stop]", "")
	if util.NArg() != 4 && util.NArg() != 8 {
		util.Usage()
	}
}

func main() {
	if util.NArg() == 4 {
		chain1 := readChain(util.Arg(0), util.Arg(1))
		chain2 := readChain(util.Arg(2), util.Arg(3))
		r, err := rmsd.Chains(chain1, chain2)
		util.Assert(err)
		fmt.Println(r)
		return
	}

	res1 := residueRange(readChain(util.Arg(0), util.Arg(1)),
		util.Arg(2), util.Arg(3))
	res2 := residueRange(readChain(util.Arg(4), util.Arg(5)),
		util.Arg(6), util.Arg(7))
	r, err := rmsd.Residues(res1, res2)
	util.Assert(err)
	fmt.Println(r)
}

func readChain(path, ident string) *pdb.Chain {
	if len(ident) != 1 {
		util.Fatalf("Chain identifiers are a single character, but got '%s'.",
			ident)
	}
	chain := util.PDBRead(path).Chain(ident[0])
	if chain == nil {
		util.Fatalf("The chain '%s' could not be found in '%s'.", ident, path)
	}
	return chain
}

// residueRange returns the residues with a carbon-alpha atom from the residue
// start through the residue stop, inclusive.
func residueRange(chain *pdb.Chain, start, stop string) []*pdb.Residue {
	first, err := pdb.ParseResidueID(start)
	util.Assert(err)
	last, err := pdb.ParseResidueID(stop)
	util.Assert(err)

	var residues []*pdb.Residue
	inside := false
	for _, res := range chain.Residues {
		if res.ID == first {
			inside = true
		}
		if inside && res.Ca() != nil {
			residues = append(residues, res)
		}
		if res.ID == last {
			if !inside {
				break
			}
			return residues
		}
	}
	util.Fatalf("The range %s-%s does not correspond to any residues in "+
		"chain %c of '%s'.", first, last, chain.Ident, chain.Entry.Path)
	panic("unreachable")
}
