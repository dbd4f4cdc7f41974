package pdb

import (
	"fmt"
	"io"
)

// Extraction summarizes a call to Extract or ExtractResidues.
type Extraction struct {
	// Records is the number of ATOM/HETATM lines written.
	Records int

	// Residues is the number of distinct requested residues that had at
	// least one record in the chain.
	Residues int

	// Missing lists the requested residues that never appeared in the chain,
	// in the order they were requested. A missing residue is not an error.
	Missing []ResidueID
}

// ExtractResidues copies the ATOM and HETATM records of the residues in want
// from chain in the PDB file at path to w. Files ending in ".gz" are
// decompressed. See Extract.
func ExtractResidues(
	w io.Writer,
	path string,
	want []ResidueID,
	chain byte,
) (Extraction, error) {
	r, err := Open(path)
	if err != nil {
		return Extraction{}, err
	}
	defer r.Close()

	ex, err := Extract(w, r, want, chain)
	if err != nil {
		return ex, fmt.Errorf("Could not extract residues from '%s': %s",
			path, err)
	}
	return ex, nil
}

// Extract copies every ATOM and HETATM record read from r whose chain
// identifier is chain and whose residue identifier (sequence number and
// insertion code) is in want. Records are written byte for byte, each followed
// by a single newline, in the order they appear in r.
//
// Matching is exact: asking for "56A" never yields residue "56" and vice
// versa. Records with an unreadable residue number are skipped. Only read
// and write failures are returned as errors.
//
// For a file with a single record per residue (e.g., alpha-carbon traces),
// Records equals the number of requested residues that are present.
func Extract(
	w io.Writer,
	r io.Reader,
	want []ResidueID,
	chain byte,
) (Extraction, error) {
	set := NewResidueSet(want)
	seen := make(map[ResidueID]bool, set.Len())
	ex := Extraction{}

	scanner := newLineScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if !isAtomRecord(line) {
			continue
		}
		rec := record(line)
		if rec.at(22) != chain {
			continue
		}
		id, err := residueIDFromColumns(string(rec.raw(23, 26)), rec.at(27))
		if err != nil || !set.Contains(id) {
			continue
		}

		if _, err := w.Write(line); err != nil {
			return ex, err
		}
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return ex, err
		}
		ex.Records++
		if !seen[id] {
			seen[id] = true
			ex.Residues++
		}
	}
	if err := scanner.Err(); err != nil {
		return ex, err
	}

	for _, id := range set.IDs() {
		if !seen[id] {
			ex.Missing = append(ex.Missing, id)
		}
	}
	return ex, nil
}

func isAtomRecord(line []byte) bool {
	switch recordName(line) {
	case "ATOM", "HETATM":
		return true
	}
	return false
}
