package pdbfix

import (
	"fmt"
	"strings"

	"github.com/TuftsBCB/io/fasta"
	"github.com/TuftsBCB/seq"

	"github.com/BurntSushi/ensembler/pdb"
	"github.com/BurntSushi/ensembler/project"
)

// Template is a structure that models are built from. Resolved holds the
// residues that have coordinates in the template's structure, and Full is the
// complete sequence of the same chain. Both are one letter amino acid codes.
type Template struct {
	ID      string
	ChainID string

	Resolved []seq.Residue
	Full     []seq.Residue
}

func NewTemplate(id, chainID, resolved, full string) Template {
	return Template{
		ID:       id,
		ChainID:  chainID,
		Resolved: []seq.Residue(resolved),
		Full:     []seq.Residue(full),
	}
}

func (t Template) String() string {
	return fmt.Sprintf("%s (chain %s, %d of %d residues resolved)",
		t.ID, t.ChainID, len(t.Resolved), len(t.Full))
}

// LoadTemplates reads the resolved and full sequence FASTA files of a project
// and pairs them up by template identifier. The identifier is the first word
// of a FASTA header. Templates are returned in the order of the resolved
// sequence file.
func LoadTemplates(layout project.Layout) ([]Template, error) {
	resolved, err := readSequences(layout.ResolvedSequences())
	if err != nil {
		return nil, err
	}
	full, err := readSequences(layout.FullSequences())
	if err != nil {
		return nil, err
	}

	fullByID := make(map[string]seq.Sequence, len(full))
	for _, s := range full {
		fullByID[templateID(s)] = s
	}

	templates := make([]Template, 0, len(resolved))
	for _, s := range resolved {
		id := templateID(s)
		f, ok := fullByID[id]
		if !ok {
			return nil, fmt.Errorf("Template '%s' has no full sequence in '%s'.",
				id, layout.FullSequences())
		}
		chain, err := project.ChainID(id)
		if err != nil {
			return nil, err
		}
		templates = append(templates, Template{
			ID:       id,
			ChainID:  chain,
			Resolved: s.Residues,
			Full:     f.Residues,
		})
	}
	return templates, nil
}

func readSequences(path string) ([]seq.Sequence, error) {
	f, err := pdb.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seqs, err := fasta.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("Could not read FASTA file '%s': %s", path, err)
	}
	return seqs, nil
}

func templateID(s seq.Sequence) string {
	fields := strings.Fields(s.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
