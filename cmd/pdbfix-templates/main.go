// pdbfix-templates rebuilds the missing loops of every template in a modeling
// project. Missing residues are found by aligning each template's resolved
// sequence to its full sequence, and the structure completion program is run
// on each template in parallel.
package main

import (
	"flag"
	"fmt"
	"runtime"

	"github.com/BurntSushi/ensembler/apps/pdbfixer"
	"github.com/BurntSushi/ensembler/cmd/util"
	"github.com/BurntSushi/ensembler/pdbfix"
)

var (
	flagExec        = pdbfixer.DefaultConfig.Exec
	flagPH          = pdbfixer.DefaultConfig.PH
	flagHydrogens   = pdbfixer.DefaultConfig.AddHydrogens
	flagKeepTermini = false
	flagMaxDrift    = 0.0
	flagTemplates   = ""
	flagVomit       = false
)

func init() {
	flag.StringVar(&flagExec, "exec", flagExec,
		"The structure completion program to run.")
	flag.Float64Var(&flagPH, "ph", flagPH,
		"The pH used to add missing hydrogens.")
	flag.BoolVar(&flagHydrogens, "hydrogens", flagHydrogens,
		"When set, missing hydrogens are added.")
	flag.BoolVar(&flagKeepTermini, "keep-termini", flagKeepTermini,
		"When set, missing residues at the ends of chains are rebuilt too.")
	flag.Float64Var(&flagMaxDrift, "max-drift", flagMaxDrift,
		"When positive, repairs that move resolved carbon-alpha atoms by\n"+
			"more than this RMSD (in Angstroms) are rejected.")
	flag.StringVar(&flagTemplates, "templates", flagTemplates,
		"A comma separated list of template identifiers to repair.\n"+
			"When empty, every template is repaired.")
	flag.BoolVar(&flagVomit, "vomit", flagVomit,
		"When set, the output of the completion program is printed.")

	util.FlagUse("project-dir", "cpu", "verbose")
	util.FlagParse("", "")
	util.AssertNArg(0)
}

func main() {
	layout := util.Project()
	util.Assert(layout.Init(), "Could not create project directories")

	templates, err := pdbfix.LoadTemplates(layout)
	util.Assert(err, "Could not load templates")
	templates = selectTemplates(templates, util.SplitList(flagTemplates))
	util.Verbosef("Repairing %d templates.\n", len(templates))

	conf := pdbfixer.DefaultConfig
	conf.Exec = flagExec
	conf.PH = flagPH
	conf.AddHydrogens = flagHydrogens
	conf.Verbose = util.FlagVerbose
	conf.Vomit = flagVomit

	repairer := pdbfix.Repairer{
		Layout:      layout,
		Completer:   conf,
		KeepTermini: flagKeepTermini,
		MaxDrift:    flagMaxDrift,
		Workers:     runtime.GOMAXPROCS(0),
	}
	if util.FlagVerbose {
		repairer.Logf = util.Warnf
	}
	progress := util.NewProgress(len(templates))
	repairer.Done = func(result pdbfix.Result) {
		progress.JobDone(result.Template.ID, result.Err)
	}
	batch := repairer.RepairAll(templates)
	progress.Close()

	for _, result := range batch.Results {
		if result.Err != nil {
			continue
		}
		fmt.Printf("%s\t%d\t%d\n",
			result.Template.ID, len(result.Missing.Spans()),
			result.Missing.Count())
	}
	if failed := batch.Failed(); len(failed) > 0 {
		util.Fatalf("Run %s: %d of %d templates could not be repaired.",
			batch.RunID, len(failed), len(batch.Results))
	}
}

func selectTemplates(templates []pdbfix.Template, ids []string) []pdbfix.Template {
	if len(ids) == 0 {
		return templates
	}
	byID := make(map[string]pdbfix.Template, len(templates))
	for _, t := range templates {
		byID[t.ID] = t
	}
	selected := make([]pdbfix.Template, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			util.Fatalf("Unknown template '%s'.", id)
		}
		selected = append(selected, t)
	}
	return selected
}
