package pdbfix

import (
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/google/uuid"

	"github.com/BurntSushi/ensembler/pdb"
	"github.com/BurntSushi/ensembler/project"
	"github.com/BurntSushi/ensembler/rmsd"
)

// Completion describes one call to a structure completion program: read the
// structure at Input, rebuild the Missing residues of chain ChainID so that
// the chain matches Sequence, and write the result to Output.
type Completion struct {
	TemplateID string
	Input      string
	Output     string
	ChainID    string

	// Sequence is the full sequence of the chain as three letter names.
	Sequence []string

	Missing MissingResidues
}

// Completer rebuilds missing residues in a structure. It is usually an
// external program, see the apps/pdbfixer package.
type Completer interface {
	Complete(c Completion) error
}

// Repairer rebuilds the missing loops of templates in a project.
type Repairer struct {
	Layout    project.Layout
	Completer Completer

	// Names extends the one to three letter residue name table used to
	// describe missing residues.
	Names map[byte]string

	// When KeepTermini is true, missing residues at the ends of a chain are
	// rebuilt too.
	KeepTermini bool

	// When MaxDrift is positive, the repaired structure is read back and the
	// carbon-alpha RMSD between the resolved residues before and after repair
	// must not exceed MaxDrift (in Angstroms).
	MaxDrift float64

	// Workers is the number of templates repaired simultaneously by
	// RepairAll. Values less than 2 repair templates one at a time.
	Workers int

	// Logf, when set, receives progress messages.
	Logf func(format string, v ...interface{})

	// Done, when set, is called by RepairAll as soon as each template is
	// finished. It may be called from several goroutines at once.
	Done func(Result)
}

// Result is the outcome of repairing one template in a batch. Exactly one of
// Missing and Err is set.
type Result struct {
	Template Template
	Missing  MissingResidues
	Err      error
}

// Batch is the outcome of RepairAll. Results are in the same order as the
// templates given.
type Batch struct {
	RunID   string
	Results []Result
}

// Succeeded returns the number of templates that were repaired.
func (b Batch) Succeeded() int {
	n := 0
	for _, res := range b.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the results of templates that could not be repaired.
func (b Batch) Failed() []Result {
	var failed []Result
	for _, res := range b.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Missing maps template identifiers to the missing residues that were rebuilt
// for every template that was repaired.
func (b Batch) Missing() map[string]MissingResidues {
	all := make(map[string]MissingResidues, len(b.Results))
	for _, res := range b.Results {
		if res.Err == nil {
			all[res.Template.ID] = res.Missing
		}
	}
	return all
}

// Repair finds the missing residues of t, asks the Completer to rebuild them
// and returns them. The first error encountered is returned: an
// *AlignmentError if t's sequences don't agree, an *InputNotFoundError if
// there is no resolved structure for t, or a *StructureRepairError if the
// structure could not be completed.
func (r Repairer) Repair(t Template) (MissingResidues, error) {
	gaps, err := DetectGaps(t, r.Names)
	if err != nil {
		return nil, err
	}
	missing := missingFromGaps(gaps, r.KeepTermini)

	input := r.Layout.ResolvedStructure(t.ID)
	if _, err := os.Stat(input); err != nil {
		return nil, &InputNotFoundError{TemplateID: t.ID, Path: input, Err: err}
	}
	sequence, err := ResidueNames(t.Full, r.Names)
	if err != nil {
		return nil, &StructureRepairError{TemplateID: t.ID, Err: err}
	}

	output := r.Layout.RepairedStructure(t.ID)
	if err := os.MkdirAll(path.Dir(output), 0777); err != nil {
		return nil, &StructureRepairError{TemplateID: t.ID, Err: err}
	}

	r.logf("Repairing %s: %d residues missing in %d loops.",
		t.ID, missing.Count(), len(missing))
	err = r.Completer.Complete(Completion{
		TemplateID: t.ID,
		Input:      input,
		Output:     output,
		ChainID:    t.ChainID,
		Sequence:   sequence,
		Missing:    missing,
	})
	if err != nil {
		return nil, &StructureRepairError{TemplateID: t.ID, Err: err}
	}

	if r.MaxDrift > 0 {
		if err := r.checkDrift(t, missing, input, output); err != nil {
			return nil, &StructureRepairError{TemplateID: t.ID, Err: err}
		}
	}
	return missing, nil
}

// RepairAll repairs every template in ts. A failure to repair one template
// never stops the others; it is recorded in that template's Result.
func (r Repairer) RepairAll(ts []Template) Batch {
	batch := Batch{
		RunID:   uuid.New().String(),
		Results: make([]Result, len(ts)),
	}
	r.logf("Repair run %s: %d templates.", batch.RunID, len(ts))

	repairOne := func(i int) {
		missing, err := r.Repair(ts[i])
		if err != nil {
			r.logf("%s", err)
			batch.Results[i] = Result{Template: ts[i], Err: err}
		} else {
			batch.Results[i] = Result{Template: ts[i], Missing: missing}
		}
		if r.Done != nil {
			r.Done(batch.Results[i])
		}
	}
	if r.Workers < 2 {
		for i := range ts {
			repairOne(i)
		}
		return batch
	}

	jobs := make(chan int, 100)
	wg := new(sync.WaitGroup)
	for i := 0; i < r.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				repairOne(job)
			}
		}()
	}
	for i := range ts {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return batch
}

// checkDrift compares the resolved residues of the template structure with
// their counterparts in the repaired structure.
func (r Repairer) checkDrift(
	t Template,
	missing MissingResidues,
	input, output string,
) error {
	before, err := readChain(input, t.ChainID)
	if err != nil {
		return err
	}
	after, err := readChain(output, t.ChainID)
	if err != nil {
		return err
	}

	if len(before) != len(t.Resolved) {
		r.logf("Skipping drift check of %s: the structure has %d residues "+
			"but the resolved sequence has %d.",
			t.ID, len(before), len(t.Resolved))
		return nil
	}
	if want := len(t.Resolved) + missing.Count(); len(after) != want {
		return fmt.Errorf("The repaired structure has %d residues in chain "+
			"%s, but %d were expected.", len(after), t.ChainID, want)
	}

	counterparts := make([]*pdb.Residue, len(before))
	for j := range before {
		counterparts[j] = after[j+missing.countBefore(j)]
	}
	drift, err := rmsd.Residues(before, counterparts)
	if err != nil {
		return err
	}
	if drift > r.MaxDrift {
		return fmt.Errorf("Resolved residues moved by %0.3f Angstroms RMSD "+
			"during repair (maximum is %0.3f).", drift, r.MaxDrift)
	}
	r.logf("%s: resolved residues moved by %0.3f Angstroms RMSD.",
		t.ID, drift)
	return nil
}

// readChain returns the amino acid residues (those with an alpha-carbon) of
// the chain in the PDB file at path.
func readChain(path, chainID string) ([]*pdb.Residue, error) {
	if len(chainID) != 1 {
		return nil, fmt.Errorf("Invalid chain identifier '%s'.", chainID)
	}
	entry, err := pdb.ReadPDB(path)
	if err != nil {
		return nil, err
	}
	chain := entry.Chain(chainID[0])
	if chain == nil {
		return nil, fmt.Errorf("Chain %s not found in '%s'.", chainID, path)
	}

	residues := make([]*pdb.Residue, 0, len(chain.Residues))
	for _, res := range chain.Residues {
		if res.Ca() != nil {
			residues = append(residues, res)
		}
	}
	return residues, nil
}

func (r Repairer) logf(format string, v ...interface{}) {
	if r.Logf != nil {
		r.Logf(format, v...)
	}
}
