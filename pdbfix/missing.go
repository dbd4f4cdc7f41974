package pdbfix

import (
	"fmt"
	"sort"

	"github.com/TuftsBCB/seq"

	"github.com/BurntSushi/ensembler/align"
	"github.com/BurntSushi/ensembler/pdb"
)

// Gap is a run of residues in a template's full sequence that have no
// coordinates in its structure.
type Gap struct {
	// Index is the number of resolved residues before the gap. It is the
	// position in the resolved chain where the missing residues go.
	Index int

	// FullStart is the index of the first missing residue in the full
	// sequence.
	FullStart int

	// Residues are three letter residue names.
	Residues []string

	// Terminal is true when the gap runs up to either end of the chain.
	Terminal bool
}

// SpanKey identifies a run of missing residues: the index of the chain in the
// structure (always 0, templates have a single chain) and the position in
// the resolved chain where the residues are inserted.
type SpanKey struct {
	Chain int
	Index int
}

func (k SpanKey) String() string {
	return fmt.Sprintf("(%d, %d)", k.Chain, k.Index)
}

// MissingResidues maps each run of missing residues to their three letter
// names.
type MissingResidues map[SpanKey][]string

// Spans returns the keys of m in ascending order.
func (m MissingResidues) Spans() []SpanKey {
	keys := make([]SpanKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Chain != keys[j].Chain {
			return keys[i].Chain < keys[j].Chain
		}
		return keys[i].Index < keys[j].Index
	})
	return keys
}

// Count returns the total number of missing residues.
func (m MissingResidues) Count() int {
	n := 0
	for _, names := range m {
		n += len(names)
	}
	return n
}

// countBefore returns the number of missing residues inserted before
// resolved residue index.
func (m MissingResidues) countBefore(index int) int {
	n := 0
	for k, names := range m {
		if k.Index <= index {
			n += len(names)
		}
	}
	return n
}

// ResidueNames translates one letter amino acid codes to three letter
// residue names. Entries in extra take precedence over the standard table in
// pdb.AminoOneToThree.
func ResidueNames(residues []seq.Residue, extra map[byte]string) ([]string, error) {
	names := make([]string, len(residues))
	for i, r := range residues {
		name, ok := extra[byte(r)]
		if !ok {
			name, ok = pdb.AminoOneToThree[byte(r)]
		}
		if !ok {
			return nil, fmt.Errorf("No residue name for '%c' at position %d.",
				r, i)
		}
		names[i] = name
	}
	return names, nil
}

// DetectGaps aligns the resolved sequence of t to its full sequence and
// returns every run of unresolved residues, terminal runs included.
//
// If the resolved sequence is not a subsequence of the full sequence, an
// *AlignmentError is returned.
func DetectGaps(t Template, names map[byte]string) ([]Gap, error) {
	mapping, err := align.Gapped(t.Resolved, t.Full)
	if err != nil {
		return nil, &AlignmentError{TemplateID: t.ID, Err: err}
	}

	var gaps []Gap
	for _, g := range mapping.Gaps(len(t.Full)) {
		residues, err := ResidueNames(t.Full[g.Start:g.End], names)
		if err != nil {
			return nil, fmt.Errorf("Template '%s': %s", t.ID, err)
		}
		gaps = append(gaps, Gap{
			Index:     g.Index,
			FullStart: g.Start,
			Residues:  residues,
			Terminal:  g.Terminal(len(t.Full)),
		})
	}
	return gaps, nil
}

// DetectMissing returns the internal runs of missing residues of t. Missing
// residues at either terminus are left out: loop modeling only rebuilds
// residues that are anchored on both sides.
func DetectMissing(t Template) (MissingResidues, error) {
	gaps, err := DetectGaps(t, nil)
	if err != nil {
		return nil, err
	}
	return missingFromGaps(gaps, false), nil
}

func missingFromGaps(gaps []Gap, keepTermini bool) MissingResidues {
	missing := make(MissingResidues, len(gaps))
	for _, g := range gaps {
		if g.Terminal && !keepTermini {
			continue
		}
		missing[SpanKey{Chain: 0, Index: g.Index}] = g.Residues
	}
	return missing
}
