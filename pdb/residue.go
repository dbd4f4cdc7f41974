package pdb

import (
	"fmt"
	"strconv"
	"strings"
)

// ResidueID identifies a residue in the numbering scheme of a PDB file: the
// residue sequence number from columns 23-26 and the insertion code from
// column 27.
//
// An ICode of 0 means "no insertion code". It is distinct from every letter,
// so that residue 56 and residue 56A never compare equal.
type ResidueID struct {
	Number int
	ICode  byte
}

// ParseResidueID parses strings like "93" or "93B". Surrounding whitespace is
// ignored. A trailing letter is taken as the insertion code.
func ParseResidueID(s string) (ResidueID, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return ResidueID{}, fmt.Errorf("Empty residue identifier.")
	}

	var icode byte
	if last := s[len(s)-1]; isLetter(last) {
		icode = last
		s = strings.TrimSpace(s[:len(s)-1])
	}
	num, err := strconv.Atoi(s)
	if err != nil {
		return ResidueID{}, fmt.Errorf("Invalid residue number '%s': %s", s, err)
	}
	return ResidueID{Number: num, ICode: icode}, nil
}

// ParseResidueIDs parses every string in ids with ParseResidueID. The order
// is preserved.
func ParseResidueIDs(ids []string) ([]ResidueID, error) {
	parsed := make([]ResidueID, len(ids))
	for i, s := range ids {
		id, err := ParseResidueID(s)
		if err != nil {
			return nil, err
		}
		parsed[i] = id
	}
	return parsed, nil
}

// String returns the identifier the way it would be written by hand, e.g.,
// "56" or "56A".
func (id ResidueID) String() string {
	if id.ICode == 0 {
		return strconv.Itoa(id.Number)
	}
	return fmt.Sprintf("%d%c", id.Number, id.ICode)
}

// residueIDFromColumns reads a residue identifier from the raw columns of an
// ATOM or HETATM record.
func residueIDFromColumns(resSeq string, icode byte) (ResidueID, error) {
	num, err := strconv.Atoi(strings.TrimSpace(resSeq))
	if err != nil {
		return ResidueID{}, err
	}
	if icode == ' ' {
		icode = 0
	}
	return ResidueID{Number: num, ICode: icode}, nil
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// ResidueSet is an ordered set of residue identifiers. The order is the order
// the identifiers were given in, which is expected to be the order in which
// they appear in a PDB file. Residue numbering in PDB files is not monotonic
// (56, 56A, 57 or even 93B before 93), so numeric order is never used.
type ResidueSet struct {
	ids   []ResidueID
	index map[ResidueID]int
}

// NewResidueSet builds a set from ids. Duplicates keep their first position.
func NewResidueSet(ids []ResidueID) *ResidueSet {
	set := &ResidueSet{
		ids:   make([]ResidueID, 0, len(ids)),
		index: make(map[ResidueID]int, len(ids)),
	}
	for _, id := range ids {
		if _, ok := set.index[id]; ok {
			continue
		}
		set.index[id] = len(set.ids)
		set.ids = append(set.ids, id)
	}
	return set
}

// Len returns the number of distinct identifiers in the set.
func (set *ResidueSet) Len() int {
	return len(set.ids)
}

// Contains returns true if exactly id (number and insertion code) is in the set.
func (set *ResidueSet) Contains(id ResidueID) bool {
	_, ok := set.index[id]
	return ok
}

// Less reports whether a comes before b in the set's order. Identifiers not
// in the set sort after every identifier that is.
func (set *ResidueSet) Less(a, b ResidueID) bool {
	ia, oka := set.index[a]
	ib, okb := set.index[b]
	switch {
	case !oka:
		return false
	case !okb:
		return true
	}
	return ia < ib
}

// IDs returns the identifiers in order.
func (set *ResidueSet) IDs() []ResidueID {
	ids := make([]ResidueID, len(set.ids))
	copy(ids, set.ids)
	return ids
}
