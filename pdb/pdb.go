package pdb

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"

	"github.com/TuftsBCB/seq"
)

// Entry represents the coordinate section of a PDB file. Only the first
// model is kept.
type Entry struct {
	Path   string
	Chains []*Chain
}

// Chain is a list of residues sharing a chain identifier, in file order.
type Chain struct {
	Entry    *Entry
	Ident    byte
	Residues []*Residue
}

// Residue groups consecutive ATOM/HETATM records with the same residue
// identifier and residue name.
type Residue struct {
	ID    ResidueID
	Name  string
	Atoms []Atom
}

// Atom is a single ATOM or HETATM record. Line holds the record exactly as it
// was read (without the line terminator) and is never modified.
type Atom struct {
	Record  string
	Serial  int
	Name    string
	ResName string
	ChainID byte
	Residue ResidueID
	Coords
	Line []byte
}

type Coords struct {
	X, Y, Z float64
}

// Open opens a PDB file for reading. If the file name ends with ".gz", gzip
// decompression will be used. Closing the returned reader closes the file.
func Open(fileName string) (io.ReadCloser, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	if path.Ext(fileName) != ".gz" {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("Could not decompress '%s': %s", fileName, err)
	}
	return gzipFile{gz, f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (gf gzipFile) Close() error {
	gzerr := gf.Reader.Close()
	if err := gf.f.Close(); err != nil {
		return err
	}
	return gzerr
}

// ReadPDB reads the PDB file at fileName.
func ReadPDB(fileName string) (*Entry, error) {
	r, err := Open(fileName)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	entry, err := Read(r, fileName)
	if err != nil {
		return nil, fmt.Errorf("Could not read PDB file '%s': %s", fileName, err)
	}
	return entry, nil
}

// Read reads a PDB entry from r. The name is only used to fill in Entry.Path.
//
// The order of ATOM records is preserved. A new residue is started whenever
// the residue identifier or residue name changes within a chain, so that
// residues with insertion codes (56, 56A, 57) are kept apart.
func Read(r io.Reader, name string) (*Entry, error) {
	entry := &Entry{Path: name}
	model := 0

	scanner := newLineScanner(r)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := scanner.Bytes()
		switch recordName(line) {
		case "MODEL":
			model++
		case "ENDMDL":
			if model <= 1 {
				return entry, nil
			}
		case "ATOM", "HETATM":
			if model > 1 {
				continue
			}
			atom, err := ParseAtom(line)
			if err != nil {
				return nil, fmt.Errorf("Line %d: %s", lineNum, err)
			}
			entry.addAtom(atom)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entry, nil
}

// Chain returns a chain with the given identifier.
// If such a chain does not exist, nil is returned.
func (e *Entry) Chain(ident byte) *Chain {
	for _, chain := range e.Chains {
		if chain.Ident == ident {
			return chain
		}
	}
	return nil
}

func (e *Entry) addAtom(atom Atom) {
	chain := e.Chain(atom.ChainID)
	if chain == nil {
		chain = &Chain{Entry: e, Ident: atom.ChainID}
		e.Chains = append(e.Chains, chain)
	}

	n := len(chain.Residues)
	if n == 0 || chain.Residues[n-1].ID != atom.Residue ||
		chain.Residues[n-1].Name != atom.ResName {
		chain.Residues = append(chain.Residues, &Residue{
			ID:   atom.Residue,
			Name: atom.ResName,
		})
		n++
	}
	chain.Residues[n-1].Atoms = append(chain.Residues[n-1].Atoms, atom)
}

// CaAtoms returns the alpha-carbon of every residue that has one. HETATM
// alpha-carbons (modified residues) are included.
func (c *Chain) CaAtoms() []Coords {
	cas := make([]Coords, 0, len(c.Residues))
	for _, r := range c.Residues {
		if ca := r.Ca(); ca != nil {
			cas = append(cas, *ca)
		}
	}
	return cas
}

// Sequence returns the one letter sequence of the residues in this chain that
// have an alpha-carbon. Residue names without a one letter code become 'X'.
func (c *Chain) Sequence() []seq.Residue {
	residues := make([]seq.Residue, 0, len(c.Residues))
	for _, r := range c.Residues {
		if r.Ca() == nil {
			continue
		}
		one, ok := AminoThreeToOne[r.Name]
		if !ok {
			one = 'X'
		}
		residues = append(residues, seq.Residue(one))
	}
	return residues
}

// Ca returns the alpha-carbon atom in this residue.
// If one does not exist, nil is returned.
func (r *Residue) Ca() *Coords {
	for i := range r.Atoms {
		if r.Atoms[i].IsCa() {
			return &r.Atoms[i].Coords
		}
	}
	return nil
}

// IsCa returns true if this atom is an alpha-carbon. Calcium is also called
// "CA", but its name is left justified in columns 13-16 ("CA  ") while
// carbon names start in column 14 (" CA "). Atoms that were not parsed from
// a record are told apart by their residue name instead.
func (a Atom) IsCa() bool {
	if a.Name != "CA" {
		return false
	}
	if len(a.Line) >= 16 {
		return string(record(a.Line).raw(13, 16)) == " CA "
	}
	return a.ResName != "CA"
}

// ParseAtom reads the fields of an ATOM or HETATM record. Columns are
// numbered from 1, as in the PDB format description.
//
// The record must at least reach the z coordinate (column 54).
func ParseAtom(line []byte) (Atom, error) {
	if len(line) < 54 {
		return Atom{}, fmt.Errorf("Record too short (%d columns): '%s'",
			len(line), line)
	}
	rec := record(line)
	id, err := residueIDFromColumns(rec.cols(23, 26), rec.at(27))
	if err != nil {
		return Atom{}, fmt.Errorf("Invalid residue number '%s'.", rec.cols(23, 26))
	}

	atom := Atom{
		Record:  rec.cols(1, 6),
		Name:    rec.cols(13, 16),
		ResName: rec.cols(18, 20),
		ChainID: rec.at(22),
		Residue: id,
		Line:    append([]byte(nil), line...),
	}
	if atom.Serial, err = rec.atoi(7, 11); err != nil {
		// Serial numbers overflow in big files; they aren't needed for
		// anything here.
		atom.Serial = -1
	}
	if atom.X, err = rec.atof(31, 38); err != nil {
		return Atom{}, err
	}
	if atom.Y, err = rec.atof(39, 46); err != nil {
		return Atom{}, err
	}
	if atom.Z, err = rec.atof(47, 54); err != nil {
		return Atom{}, err
	}
	return atom, nil
}

func (a Atom) String() string {
	return fmt.Sprintf("(%d, %s, %s %c%s, [%0.3f %0.3f %0.3f])",
		a.Serial, a.Name, a.ResName, a.ChainID, a.Residue, a.X, a.Y, a.Z)
}

func (coords Coords) String() string {
	return fmt.Sprintf("%0.3f %0.3f %0.3f", coords.X, coords.Y, coords.Z)
}

// record provides access to the columns of a single PDB line.
type record []byte

func (r record) cols(start, end int) string {
	return string(bytes.TrimSpace(r.raw(start, end)))
}

// raw is like cols, but leaves surrounding whitespace alone.
func (r record) raw(start, end int) []byte {
	rs, re := start-1, end
	if rs >= len(r) || rs < 0 {
		return nil
	}
	if re > len(r) {
		re = len(r)
	}
	if re < rs {
		return nil
	}
	return r[rs:re]
}

func (r record) at(column int) byte {
	i := column - 1
	if i < 0 || i >= len(r) {
		return ' '
	}
	return r[i]
}

func (r record) atoi(start, end int) (int, error) {
	return strconv.Atoi(r.cols(start, end))
}

func (r record) atof(start, end int) (float64, error) {
	return strconv.ParseFloat(r.cols(start, end), 64)
}

// recordName returns the record name in the first six columns.
func recordName(line []byte) string {
	return record(line).cols(1, 6)
}

// newLineScanner returns a scanner over PDB lines. PDB lines are 80 columns,
// but some programs write long REMARKs, so the buffer is generous.
func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	return scanner
}
