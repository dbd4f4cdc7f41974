package util

import (
	"os"
	"strconv"

	"github.com/BurntSushi/ensembler/pdb"
	"github.com/BurntSushi/ensembler/project"
)

func PDBRead(path string) *pdb.Entry {
	entry, err := pdb.ReadPDB(path)
	Assert(err, "Could not open PDB file '%s'", path)
	return entry
}

// Project returns the layout of the project given by the project-dir flag.
func Project() project.Layout {
	AssertIsDir(FlagProjectDir)
	return project.Layout(FlagProjectDir)
}

func OpenFile(path string) *os.File {
	f, err := os.Open(path)
	Assert(err, "Could not open file '%s'", path)
	return f
}

func CreateFile(path string) *os.File {
	f, err := os.Create(path)
	Assert(err, "Could not create file '%s'", path)
	return f
}

func ParseInt(str string) int {
	num, err := strconv.ParseInt(str, 10, 32)
	Assert(err, "Could not parse '%s' as an integer", str)
	return int(num)
}
