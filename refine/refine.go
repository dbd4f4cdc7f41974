package refine

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/BurntSushi/ensembler/pdb"
	"github.com/BurntSushi/ensembler/project"
	"github.com/BurntSushi/ensembler/rmsd"
)

// Job describes one implicit-solvent simulation of a model.
type Job struct {
	Target   string
	Template string

	// Model is the structure to refine.
	Model string

	// Reference is the model built from the template with the highest
	// sequence identity to the target. Protonation states are taken from it
	// so that every model of a target is simulated with the same ones.
	Reference string

	// Refined and Energies are the files the engine must write.
	Refined  string
	Energies string

	// Trajectory is written only when the engine is asked to.
	Trajectory string

	// Device is the index of the worker running this job. Engines running
	// on GPUs use it to pick a device.
	Device int
}

// Engine runs molecular dynamics. Simulate must write job.Refined and
// job.Energies, or return an error.
type Engine interface {
	Simulate(job Job) error
}

// Status is what happened to a model.
type Status int

const (
	Refined Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Refined:
		return "refined"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome records what happened to one model. When a whole target fails
// (e.g., it has no sequence identities file), Template is empty.
type Outcome struct {
	Target   string
	Template string
	Status   Status

	// Reason explains why a model was skipped.
	Reason string
	Err    error

	Energies Summary

	// RMSD is the carbon-alpha RMSD between the model and its refined
	// structure. It is only set when HasRMSD is true.
	RMSD    float64
	HasRMSD bool
}

// Report is the outcome of Driver.Run.
type Report struct {
	RunID    string
	Outcomes []Outcome
}

// Count returns the number of outcomes with the given status.
func (r Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Driver refines the models of a project.
type Driver struct {
	Layout project.Layout
	Engine Engine

	// Targets and Templates restrict which models are refined. When empty,
	// every target (or template) is used.
	Targets   []string
	Templates []string

	// WriteTrajectory asks the engine to write a trajectory for every model.
	WriteTrajectory bool

	// Workers is the number of simulations run at the same time. Values less
	// than 2 run one simulation at a time.
	Workers int

	// Logf, when set, receives progress messages.
	Logf func(format string, v ...interface{})
}

// Run refines the models of every selected target. A failure with one model
// or target never stops the others; it is recorded in the report and, for
// models, in the target's reject file. An error is returned only if the
// targets could not be listed.
func (d Driver) Run() (Report, error) {
	report := Report{RunID: uuid.New().String()}

	targets := d.Targets
	if len(targets) == 0 {
		var err error
		if targets, err = d.Layout.Targets(); err != nil {
			return report, fmt.Errorf("Could not list targets: %s", err)
		}
	}
	d.logf("Refinement run %s: %d targets.", report.RunID, len(targets))

	for _, target := range targets {
		if !project.Exists(d.Layout.TargetDir(target)) {
			d.logf("Target %s has no models.", target)
			continue
		}
		outcomes, err := d.RefineTarget(target)
		if err != nil {
			d.logf("%s", err)
			report.Outcomes = append(report.Outcomes, Outcome{
				Target: target,
				Status: Failed,
				Err:    err,
			})
			continue
		}
		report.Outcomes = append(report.Outcomes, outcomes...)
	}
	return report, nil
}

// RefineTarget refines every selected model of target, in template order.
// The target's reject file is rewritten with one line per failed model.
func (d Driver) RefineTarget(target string) ([]Outcome, error) {
	targetDir := d.Layout.TargetDir(target)

	refTemplate, identity, err := ReadReference(
		path.Join(targetDir, project.SequenceIdentitiesFile))
	if err != nil {
		return nil, fmt.Errorf("Target %s: %s", target, err)
	}
	d.logf("Using %s as highest identity model (%s%%) for %s.",
		refTemplate, identity, target)
	reference := path.Join(d.Layout.ModelDir(target, refTemplate),
		project.ModelFile)

	templates, err := d.templates(target)
	if err != nil {
		return nil, fmt.Errorf("Target %s: %s", target, err)
	}

	rejects, err := os.Create(path.Join(targetDir, project.RejectsFile))
	if err != nil {
		return nil, err
	}
	defer rejects.Close()

	outcomes := make([]Outcome, len(templates))
	var rejectsMu sync.Mutex
	refineOne := func(i, device int) {
		job := d.newJob(target, templates[i], reference, device)
		outcomes[i] = d.refineModel(job)
		if outcomes[i].Status == Failed {
			rejectsMu.Lock()
			fmt.Fprintf(rejects, "%s : %s\n", templates[i], outcomes[i].Err)
			rejectsMu.Unlock()
		}
	}

	if d.Workers < 2 {
		for i := range templates {
			refineOne(i, 0)
		}
		return outcomes, nil
	}

	jobs := make(chan int, 100)
	wg := new(sync.WaitGroup)
	for w := 0; w < d.Workers; w++ {
		wg.Add(1)
		go func(device int) {
			defer wg.Done()
			for i := range jobs {
				refineOne(i, device)
			}
		}(w)
	}
	for i := range templates {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return outcomes, nil
}

func (d Driver) newJob(target, template, reference string, device int) Job {
	dir := d.Layout.ModelDir(target, template)
	job := Job{
		Target:    target,
		Template:  template,
		Model:     path.Join(dir, project.ModelFile),
		Reference: reference,
		Refined:   path.Join(dir, project.RefinedFile),
		Energies:  path.Join(dir, project.EnergiesFile),
		Device:    device,
	}
	if d.WriteTrajectory {
		job.Trajectory = path.Join(dir, project.TrajectoryFile)
	}
	return job
}

// refineModel simulates a single model unless it should be skipped.
func (d Driver) refineModel(job Job) Outcome {
	out := Outcome{Target: job.Target, Template: job.Template}
	skip := func(reason string) Outcome {
		out.Status, out.Reason = Skipped, reason
		return out
	}
	fail := func(err error) Outcome {
		d.logf("%s => %s: %s", job.Target, job.Template, err)
		out.Status, out.Err = Failed, err
		return out
	}

	dir := path.Dir(job.Model)
	switch {
	case !project.Exists(path.Join(dir, project.UniqueMarkerFile)):
		return skip("not unique by clustering")
	case !project.Exists(job.Model):
		return skip("no model")
	case project.Exists(job.Refined):
		return skip("already refined")
	}

	d.logf("Simulating %s => %s in implicit solvent.", job.Target, job.Template)
	if err := d.Engine.Simulate(job); err != nil {
		return fail(err)
	}

	energies, err := ReadEnergiesFile(job.Energies)
	if err != nil {
		// The next run must not skip this model.
		os.Remove(job.Refined)
		return fail(err)
	}
	if !project.Exists(job.Refined) {
		return fail(fmt.Errorf("No refined structure was written to '%s'.",
			job.Refined))
	}
	out.Status = Refined
	out.Energies = Summarize(energies)

	if drift, err := modelDrift(job.Model, job.Refined); err != nil {
		d.logf("%s => %s: no RMSD: %s", job.Target, job.Template, err)
	} else {
		out.RMSD, out.HasRMSD = drift, true
	}
	d.logf("%s => %s: %s", job.Target, job.Template, out.Energies)
	return out
}

// templates lists the model directories of target, in name order, restricted
// to d.Templates when it is not empty.
func (d Driver) templates(target string) ([]string, error) {
	entries, err := os.ReadDir(d.Layout.TargetDir(target))
	if err != nil {
		return nil, err
	}

	var only map[string]bool
	if len(d.Templates) > 0 {
		only = make(map[string]bool, len(d.Templates))
		for _, t := range d.Templates {
			only[t] = true
		}
	}

	var templates []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if only != nil && !only[entry.Name()] {
			continue
		}
		templates = append(templates, entry.Name())
	}
	sort.Strings(templates)
	return templates, nil
}

// ReadReference reads the first line of a sequence identities file, which
// names the template with the highest sequence identity to the target, and
// returns the template and its identity.
func ReadReference(path string) (template, identity string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", "", err
		}
		return "", "", fmt.Errorf("'%s' is empty.", path)
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) != 2 {
		return "", "", fmt.Errorf("Expected a template and an identity on "+
			"the first line of '%s', but got '%s'.", path, scanner.Text())
	}
	return fields[0], fields[1], nil
}

// modelDrift computes the carbon-alpha RMSD between the first chains of two
// structures.
func modelDrift(model, refined string) (float64, error) {
	before, err := firstChainResidues(model)
	if err != nil {
		return 0, err
	}
	after, err := firstChainResidues(refined)
	if err != nil {
		return 0, err
	}
	return rmsd.Residues(before, after)
}

func firstChainResidues(path string) ([]*pdb.Residue, error) {
	entry, err := pdb.ReadPDB(path)
	if err != nil {
		return nil, err
	}
	if len(entry.Chains) == 0 {
		return nil, fmt.Errorf("'%s' has no chains.", path)
	}
	var residues []*pdb.Residue
	for _, res := range entry.Chains[0].Residues {
		if res.Ca() != nil {
			residues = append(residues, res)
		}
	}
	return residues, nil
}

func (d Driver) logf(format string, v ...interface{}) {
	if d.Logf != nil {
		d.Logf(format, v...)
	}
}
