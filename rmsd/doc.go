/*
Package rmsd computes the root-mean-square deviation of two paired sets of
points after optimal superposition (Kabsch). The rotation is found from the
singular value decomposition of the covariance matrix of the centered sets.

Residues and Chains compare structures read by the pdb package using their
carbon-alpha atoms. They are used to check that repaired and refined
structures have not moved away from the structures they were built from.
*/
package rmsd
