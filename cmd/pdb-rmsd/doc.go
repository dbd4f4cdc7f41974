/*
pdb-rmsd computes the carbon-alpha RMSD between two chains, or two residue
ranges of chains, read from PDB files. Typically this compares a template
structure with its repaired or refined counterpart.

A range is given by its first and last residue, which may carry insertion
codes (e.g., "56A"). Residues are taken in file order from the first
through the last. Both sets must have exactly the same number of residues
with carbon-alpha atoms. Residue i of the first set is paired with residue i
of the second set.

A PDB file may either be plain text or compressed using the Lempel-Ziv coding
(i.e., gzip). If the PDB file is gzipped, it must end with a '.gz' extension.

Usage:
	pdb-rmsd pdb-file chain-id pdb-file chain-id
	pdb-rmsd pdb-file chain-id start stop pdb-file chain-id start stop

Details

The algorithm used to compute RMSD is based on the Kabsch algorithm for
computing the optimal rotation which minimizes RMSD between two paired sets
of points.
*/
package main
