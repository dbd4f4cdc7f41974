// refine-implicit refines the unique models of a modeling project with a
// short molecular dynamics simulation in implicit solvent. Models that have
// already been refined are skipped, so an interrupted run can be restarted.
// Models that fail are listed in each target's reject file.
package main

import (
	"flag"
	"fmt"

	"github.com/BurntSushi/ensembler/apps/openmm"
	"github.com/BurntSushi/ensembler/cmd/util"
	"github.com/BurntSushi/ensembler/refine"
)

var (
	flagExec        = openmm.DefaultConfig.Exec
	flagPlatform    = openmm.DefaultConfig.Platform
	flagGPUsPerNode = openmm.DefaultConfig.GPUsPerNode
	flagIterations  = openmm.DefaultConfig.Iterations
	flagTargets     = ""
	flagTargetsFile = ""
	flagTemplates   = ""
	flagTrajectory  = false
	flagVomit       = false
)

func init() {
	flag.StringVar(&flagExec, "exec", flagExec,
		"The simulation program to run.")
	flag.StringVar(&flagPlatform, "platform", flagPlatform,
		"The OpenMM platform: CUDA, OpenCL, CPU or Reference.")
	flag.IntVar(&flagGPUsPerNode, "gpupn", flagGPUsPerNode,
		"The number of GPUs per node. One simulation is run per GPU.")
	flag.IntVar(&flagIterations, "iterations", flagIterations,
		"The number of iterations of each simulation.")
	flag.StringVar(&flagTargets, "targets", flagTargets,
		"A comma separated list of targets to refine.")
	flag.StringVar(&flagTargetsFile, "targetsfile", flagTargetsFile,
		"A file with one target per line. Text after '#' is ignored.")
	flag.StringVar(&flagTemplates, "templates", flagTemplates,
		"A comma separated list of templates to refine.")
	flag.BoolVar(&flagTrajectory, "trajectory", flagTrajectory,
		"When set, a trajectory is written for every model.")
	flag.BoolVar(&flagVomit, "vomit", flagVomit,
		"When set, the output of the simulation program is printed.")

	util.FlagUse("project-dir", "verbose")
	util.FlagParse("", "")
	util.AssertNArg(0)
}

func main() {
	conf := openmm.DefaultConfig
	conf.Exec = flagExec
	conf.Platform = flagPlatform
	conf.GPUsPerNode = flagGPUsPerNode
	conf.Iterations = flagIterations
	conf.Verbose = util.FlagVerbose
	conf.Vomit = flagVomit
	util.Assert(conf.Validate(), "Invalid simulation parameters")

	targets := util.SplitList(flagTargets)
	if len(flagTargetsFile) > 0 {
		targets = append(targets, util.ReadList(flagTargetsFile)...)
	}

	workers := 1
	if conf.Platform == "CUDA" || conf.Platform == "OpenCL" {
		workers = conf.GPUsPerNode
	}
	driver := refine.Driver{
		Layout:          util.Project(),
		Engine:          conf,
		Targets:         targets,
		Templates:       util.SplitList(flagTemplates),
		WriteTrajectory: flagTrajectory,
		Workers:         workers,
	}
	if util.FlagVerbose {
		driver.Logf = util.Warnf
	}
	util.Verbosef("Simulating %0.1f ps per model on %s.\n",
		conf.SimulationTime(), conf.Platform)

	report, err := driver.Run()
	util.Assert(err)

	for _, o := range report.Outcomes {
		switch o.Status {
		case refine.Refined:
			rmsd := "-"
			if o.HasRMSD {
				rmsd = fmt.Sprintf("%0.3f", o.RMSD)
			}
			fmt.Printf("%s\t%s\t%s\t%0.3f\t%s\n", o.Target, o.Template,
				o.Status, o.Energies.FinalPotential, rmsd)
		case refine.Failed:
			util.Warning(o.Err, "%s %s", o.Target, o.Template)
		}
	}
	util.Verbosef("Run %s: %d refined, %d skipped, %d failed.\n",
		report.RunID, report.Count(refine.Refined),
		report.Count(refine.Skipped), report.Count(refine.Failed))
}
