/*
Package pdbfix finds the residues missing from template structures and has
them rebuilt.

A template's resolved sequence is aligned to its full sequence (see the align
package) to find the runs of residues that were never observed. Each run is
keyed by the position in the resolved chain where it belongs:

	missing, err := pdbfix.DetectMissing(template)
	for _, span := range missing.Spans() {
		fmt.Println(span, missing[span])
	}

A Repairer hands the missing residues of each template to a Completer, which
writes the repaired structure into the project. RepairAll does this for many
templates, possibly in parallel, and reports the outcome of each.
*/
package pdbfix
