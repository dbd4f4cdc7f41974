/*
Package openmm runs implicit-solvent simulations with an external program
built on OpenMM.

The program is given a job file (JSON) with the input model, the reference
model used to choose protonation states, the output files and every
simulation parameter:

	ensembler-implicit-md --job job.json

A Config value satisfies refine.Engine.
*/
package openmm

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/BurntSushi/ensembler/refine"
)

// Platforms that OpenMM can run simulations on.
var Platforms = []string{"CUDA", "OpenCL", "CPU", "Reference"}

// DefaultConfig provides the parameters used to refine models: 100
// iterations of 500 steps of Langevin dynamics at 300K with a 2fs timestep,
// after a short minimization.
var DefaultConfig = Config{
	Exec:                  "ensembler-implicit-md",
	Platform:              "CUDA",
	GPUsPerNode:           1,
	Forcefields:           []string{"amber99sbildn.xml", "amber99_obc.xml"},
	Timestep:              2.0,
	Temperature:           300.0,
	CollisionRate:         20.0,
	StepsPerIteration:     500,
	Iterations:            100,
	Cutoff:                0,
	MinimizationTolerance: 10.0,
	MinimizationSteps:     20,
	PH:                    8.0,
	Verbose:               false,
	Vomit:                 false,
}

// Config is used to specify the location of the simulation program in
// addition to the simulation parameters. It also controls the level of
// vomit echoed to stderr.
type Config struct {
	Exec string

	// Platform is one of Platforms.
	Platform string

	// GPUsPerNode is the number of devices jobs are spread over on the CUDA
	// and OpenCL platforms. A job's device is its refine.Job.Device modulo
	// GPUsPerNode.
	GPUsPerNode int

	Forcefields []string

	Timestep      float64 // femtoseconds
	Temperature   float64 // kelvin
	CollisionRate float64 // per picosecond

	StepsPerIteration int
	Iterations        int

	// Cutoff is the nonbonded cutoff in nanometers. Zero means no cutoff.
	Cutoff float64

	MinimizationTolerance float64 // kJ/mol/nm
	MinimizationSteps     int

	// PH is used to choose protonation states of the reference model.
	PH float64

	// Verbose controls whether all commands executed are printed to stderr.
	Verbose bool

	// When Vomit is true, all vomit from commands executed will also be
	// printed to stderr.
	Vomit bool
}

// SimulationTime returns the length of the simulation in picoseconds.
func (conf Config) SimulationTime() float64 {
	return float64(conf.Iterations*conf.StepsPerIteration) * conf.Timestep / 1000
}

// Validate returns an error if conf cannot be run.
func (conf Config) Validate() error {
	known := false
	for _, p := range Platforms {
		if p == conf.Platform {
			known = true
			break
		}
	}
	switch {
	case !known:
		return fmt.Errorf("Unknown platform '%s'. Choose one of %s.",
			conf.Platform, strings.Join(Platforms, ", "))
	case conf.GPUsPerNode < 1:
		return fmt.Errorf("GPUs per node must be at least 1, but is %d.",
			conf.GPUsPerNode)
	case len(conf.Forcefields) == 0:
		return fmt.Errorf("At least one forcefield is required.")
	case conf.Timestep <= 0 || conf.Temperature <= 0:
		return fmt.Errorf("Timestep and temperature must be positive.")
	case conf.StepsPerIteration < 1 || conf.Iterations < 1:
		return fmt.Errorf("At least one iteration of one step is required.")
	}
	return nil
}

// Job is the JSON document handed to the simulation program.
type Job struct {
	Target     string `json:"target"`
	Template   string `json:"template"`
	Model      string `json:"model"`
	Reference  string `json:"reference"`
	Refined    string `json:"refined"`
	Energies   string `json:"energies"`
	Trajectory string `json:"trajectory,omitempty"`

	Platform    string   `json:"platform"`
	DeviceIndex int      `json:"device_index"`
	Forcefields []string `json:"forcefields"`

	TimestepFS            float64 `json:"timestep_fs"`
	TemperatureK          float64 `json:"temperature_k"`
	CollisionRatePS       float64 `json:"collision_rate_per_ps"`
	StepsPerIteration     int     `json:"nsteps_per_iteration"`
	Iterations            int     `json:"niterations"`
	CutoffNM              float64 `json:"cutoff_nm,omitempty"`
	MinimizationTolerance float64 `json:"minimization_tolerance"`
	MinimizationSteps     int     `json:"minimization_steps"`
	PH                    float64 `json:"ph"`
}

// NewJob builds the job file contents for a refinement job.
func (conf Config) NewJob(job refine.Job) Job {
	device := 0
	if conf.Platform == "CUDA" || conf.Platform == "OpenCL" {
		device = job.Device % conf.GPUsPerNode
	}
	return Job{
		Target:     job.Target,
		Template:   job.Template,
		Model:      job.Model,
		Reference:  job.Reference,
		Refined:    job.Refined,
		Energies:   job.Energies,
		Trajectory: job.Trajectory,

		Platform:    conf.Platform,
		DeviceIndex: device,
		Forcefields: conf.Forcefields,

		TimestepFS:            conf.Timestep,
		TemperatureK:          conf.Temperature,
		CollisionRatePS:       conf.CollisionRate,
		StepsPerIteration:     conf.StepsPerIteration,
		Iterations:            conf.Iterations,
		CutoffNM:              conf.Cutoff,
		MinimizationTolerance: conf.MinimizationTolerance,
		MinimizationSteps:     conf.MinimizationSteps,
		PH:                    conf.PH,
	}
}

// Simulate writes a job file and runs the simulation program on it. The
// program is responsible for writing the refined structure and the energies
// file named in the job.
func (conf Config) Simulate(job refine.Job) error {
	if err := conf.Validate(); err != nil {
		return err
	}

	jobFile, err := os.CreateTemp("", "ensembler-implicit-md-job")
	if err != nil {
		return err
	}
	defer os.Remove(jobFile.Name())

	if err := json.NewEncoder(jobFile).Encode(conf.NewJob(job)); err != nil {
		jobFile.Close()
		return fmt.Errorf("Could not write job file '%s': %s",
			jobFile.Name(), err)
	}
	if err := jobFile.Close(); err != nil {
		return err
	}

	args := []string{"--job", jobFile.Name()}
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
	return nil
}
