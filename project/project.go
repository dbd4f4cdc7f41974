// Package project knows where things live inside a modeling project
// directory.
//
// A project is a directory with two trees: 'templates' holds the template
// structures and their sequences, and 'models' holds one directory per target
// with one sub-directory per template that was used to model it.
package project

import (
	"fmt"
	"os"
	"path"
	"strings"
)

// File and directory names inside a project.
const (
	TemplatesDir          = "templates"
	ResolvedStructuresDir = "structures-resolved"
	ModeledLoopsDir       = "structures-modeled-loops"
	ResolvedSeqFile       = "templates-resolved-seq.fa"
	FullSeqFile           = "templates-full-seq.fa"

	ModelsDir = "models"

	SequenceIdentitiesFile = "sequence-identities.txt"
	UniqueMarkerFile       = "unique_by_clustering"
	ModelFile              = "model.pdb"
	RefinedFile            = "implicit-refined.pdb"
	EnergiesFile           = "implicit-energies.txt"
	TrajectoryFile         = "implicit-trajectory.pdb"
	RejectsFile            = "reject-implicit.txt"
)

// Layout is the root directory of a project. A value of type Layout should
// simply be the path to the project, e.g., 'Layout(".")'.
type Layout string

func (l Layout) TemplatesDir() string {
	return path.Join(string(l), TemplatesDir)
}

// ResolvedStructure is the PDB file containing only the resolved residues
// of a template.
func (l Layout) ResolvedStructure(templateID string) string {
	return path.Join(l.TemplatesDir(), ResolvedStructuresDir,
		templateID+".pdb")
}

// RepairedStructure is the PDB file with the missing loops of a template
// rebuilt.
func (l Layout) RepairedStructure(templateID string) string {
	return path.Join(l.TemplatesDir(), ModeledLoopsDir,
		templateID+"-pdbfixed.pdb")
}

func (l Layout) ResolvedSequences() string {
	return path.Join(l.TemplatesDir(), ResolvedSeqFile)
}

func (l Layout) FullSequences() string {
	return path.Join(l.TemplatesDir(), FullSeqFile)
}

func (l Layout) ModelsDir() string {
	return path.Join(string(l), ModelsDir)
}

func (l Layout) TargetDir(target string) string {
	return path.Join(l.ModelsDir(), target)
}

// ModelDir is where the model of target built from templateID lives.
func (l Layout) ModelDir(target, templateID string) string {
	return path.Join(l.TargetDir(target), templateID)
}

// Init creates the directories that structure repair writes into. Existing
// directories are left alone.
func (l Layout) Init() error {
	dirs := []string{
		path.Join(l.TemplatesDir(), ResolvedStructuresDir),
		path.Join(l.TemplatesDir(), ModeledLoopsDir),
		l.ModelsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return fmt.Errorf("Could not create directory '%s': %s", dir, err)
		}
	}
	return nil
}

// Targets returns the name of every target directory under 'models', in
// directory order.
func (l Layout) Targets() ([]string, error) {
	entries, err := os.ReadDir(l.ModelsDir())
	if err != nil {
		return nil, err
	}
	var targets []string
	for _, entry := range entries {
		if entry.IsDir() {
			targets = append(targets, entry.Name())
		}
	}
	return targets, nil
}

// ChainID returns the chain identifier encoded in a template identifier. It
// is the last '_' separated field, e.g., "D" for "KC1D_HUMAN_D0_4KB8_D".
func ChainID(templateID string) (string, error) {
	i := strings.LastIndex(templateID, "_")
	if i < 0 || i == len(templateID)-1 {
		return "", fmt.Errorf("Template identifier '%s' has no chain.",
			templateID)
	}
	return templateID[i+1:], nil
}

// Exists returns true if path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
