// pdb2fasta writes the resolved sequence of template structures as FASTA.
// The sequence of a chain is read from the residues that have an
// alpha-carbon, so residues missing from the structure are missing from the
// sequence too. Each entry is named by its template identifier, which is the
// base name of the PDB file without its extension.
//
// With -project-dir and no PDB files, every structure in the project's
// resolved structures directory is read and the project's resolved sequence
// file is written.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/TuftsBCB/io/fasta"
	"github.com/TuftsBCB/seq"

	"github.com/BurntSushi/ensembler/cmd/util"
	"github.com/BurntSushi/ensembler/project"
)

var (
	flagOutput = ""
)

func init() {
	flag.StringVar(&flagOutput, "o", flagOutput,
		"The FASTA file to write. When empty, sequences are written to\n"+
			"stdout, or to the project's resolved sequence file when no PDB\n"+
			"files are given.")
	util.FlagUse("project-dir", "verbose")
}

func main() {
	util.FlagParse("[pdb-file ...]", "")

	pdbFiles := flag.Args()
	output := flagOutput
	if len(pdbFiles) == 0 {
		layout := util.Project()
		pdbFiles = structures(layout.TemplatesDir())
		if len(output) == 0 {
			output = layout.ResolvedSequences()
		}
	}

	entries := make([]seq.Sequence, 0, len(pdbFiles))
	for _, pdbFile := range pdbFiles {
		id, chainID, err := templateChain(pdbFile)
		util.Assert(err)

		chain := util.PDBRead(pdbFile).Chain(chainID)
		if chain == nil {
			util.Warnf("Template %s has no chain %c. Skipping.", id, chainID)
			continue
		}
		entries = append(entries, seq.Sequence{
			Name:     id,
			Residues: chain.Sequence(),
		})
		util.Verbosef("%s: %d residues.\n", id, len(entries[len(entries)-1].Residues))
	}
	if len(entries) == 0 {
		util.Fatalf("Could not find any chains with amino acids.")
	}

	var out io.Writer = os.Stdout
	if len(output) > 0 {
		f := util.CreateFile(output)
		defer f.Close()
		out = f
	}
	util.Assert(fasta.NewWriter(out).WriteAll(entries),
		"Could not write FASTA file '%s'", output)
}

// structures lists the resolved template structures of a project.
func structures(templatesDir string) []string {
	dir := path.Join(templatesDir, project.ResolvedStructuresDir)
	util.AssertIsDir(dir)

	infos, err := os.ReadDir(dir)
	util.Assert(err, "Could not read directory '%s'", dir)

	var files []string
	for _, info := range infos {
		name := info.Name()
		if strings.HasSuffix(name, ".pdb") || strings.HasSuffix(name, ".pdb.gz") {
			files = append(files, path.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files
}

// templateChain returns the template identifier of a PDB file and the chain
// it names.
func templateChain(pdbFile string) (string, byte, error) {
	id := templateID(pdbFile)
	chainID, err := project.ChainID(id)
	if err != nil {
		return "", 0, err
	}
	if len(chainID) != 1 {
		return "", 0, fmt.Errorf("Template '%s' names chain '%s', but chain "+
			"identifiers are a single character.", id, chainID)
	}
	return id, chainID[0], nil
}

func templateID(pdbFile string) string {
	base := path.Base(pdbFile)
	base = strings.TrimSuffix(base, ".gz")
	return strings.TrimSuffix(base, ".pdb")
}
