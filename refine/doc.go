/*
Package refine drives implicit-solvent molecular dynamics refinement of the
models in a project.

For every target, the model built from the template with the highest sequence
identity (the first line of the target's sequence identities file) is used as
the reference for protonation states. Each model that survived clustering and
hasn't been refined yet is then handed to an Engine, which writes the refined
structure and an energies file. Models whose simulation fails, or whose
energies are not finite, are listed in the target's reject file.
*/
package refine
