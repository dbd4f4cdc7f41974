/*
Package pdbfixer runs an external structure completion program on templates.

The program is given a job file (JSON) describing the input structure, the
chain to complete, its full sequence and the runs of missing residues to
rebuild, along with the path to write the completed structure to:

	ensembler-pdbfix --job job.json --output repaired.pdb

A Config value satisfies pdbfix.Completer.
*/
package pdbfixer

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/BurntSushi/ensembler/pdbfix"
)

// DefaultConfig provides some sane defaults to run the completion program
// with. For example:
//
//	err := pdbfixer.DefaultConfig.Complete(completion)
var DefaultConfig = Config{
	Exec:             "ensembler-pdbfix",
	PH:               7.0,
	AddMissingAtoms:  true,
	RemoveHeterogens: true,
	Verbose:          false,
	Vomit:            false,
}

// Config is used to specify the location of the completion program in
// addition to the parameters passed to it. It also controls the level of
// vomit echoed to stderr.
type Config struct {
	// Exec points to the completion program. If it is in your PATH, it is
	// sufficient to leave this as its base name.
	Exec string

	// PH is used when hydrogens are added.
	PH float64

	AddMissingAtoms  bool
	AddHydrogens     bool
	RemoveHeterogens bool

	// Verbose controls whether all commands executed are printed to stderr.
	Verbose bool

	// When Vomit is true, all vomit from commands executed will also be
	// printed to stderr.
	Vomit bool
}

// Job is the JSON document handed to the completion program.
type Job struct {
	TemplateID       string        `json:"template_id"`
	Input            string        `json:"input"`
	Output           string        `json:"output"`
	ChainID          string        `json:"chain_id"`
	Sequence         []string      `json:"sequence"`
	MissingResidues  []MissingSpan `json:"missing_residues"`
	PH               float64       `json:"ph"`
	AddMissingAtoms  bool          `json:"add_missing_atoms"`
	AddHydrogens     bool          `json:"add_hydrogens"`
	RemoveHeterogens bool          `json:"remove_heterogens"`
}

// MissingSpan is one run of missing residues in a Job. Chain and Index are
// those of pdbfix.SpanKey.
type MissingSpan struct {
	Chain    int      `json:"chain"`
	Index    int      `json:"index"`
	Residues []string `json:"residues"`
}

// NewJob builds the job for a completion. Missing residues are listed in
// ascending order of their position.
func (conf Config) NewJob(c pdbfix.Completion) Job {
	job := Job{
		TemplateID:       c.TemplateID,
		Input:            c.Input,
		Output:           c.Output,
		ChainID:          c.ChainID,
		Sequence:         c.Sequence,
		MissingResidues:  make([]MissingSpan, 0, len(c.Missing)),
		PH:               conf.PH,
		AddMissingAtoms:  conf.AddMissingAtoms,
		AddHydrogens:     conf.AddHydrogens,
		RemoveHeterogens: conf.RemoveHeterogens,
	}
	for _, span := range c.Missing.Spans() {
		job.MissingResidues = append(job.MissingResidues, MissingSpan{
			Chain:    span.Chain,
			Index:    span.Index,
			Residues: c.Missing[span],
		})
	}
	return job
}

// Complete writes a job file for c, runs the completion program on it and
// checks that the completed structure was written.
func (conf Config) Complete(c pdbfix.Completion) error {
	jobFile, err := os.CreateTemp("", "ensembler-pdbfix-job")
	if err != nil {
		return err
	}
	defer os.Remove(jobFile.Name())

	enc := json.NewEncoder(jobFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(conf.NewJob(c)); err != nil {
		jobFile.Close()
		return fmt.Errorf("Could not write job file '%s': %s",
			jobFile.Name(), err)
	}
	if err := jobFile.Close(); err != nil {
		return err
	}

	args := []string{"--job", jobFile.Name(), "--output", c.Output}
	if conf.Verbose {
		fmt.Fprintf(os.Stderr, "%s %s\n", conf.Exec, strings.Join(args, " "))
	}
	out, err := exec.Command(conf.Exec, args...).CombinedOutput()
	if conf.Vomit {
		fmt.Fprintf(os.Stderr, "%s\n", string(out))
	}
	if err != nil {
		return fmt.Errorf("%s\n%s", strings.TrimSpace(string(out)), err)
	}

	if info, err := os.Stat(c.Output); err != nil {
		return fmt.Errorf("%s did not write '%s': %s", conf.Exec, c.Output, err)
	} else if info.Size() == 0 {
		return fmt.Errorf("%s wrote an empty structure to '%s'.",
			conf.Exec, c.Output)
	}
	return nil
}
