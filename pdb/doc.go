/*
Package pdb provides minimal support for reading the fixed-column records of
PDB files. It reads ATOM and HETATM records into residues and chains, knows
how to parse residue identifiers that carry insertion codes (like "56A"), and
can copy the records of a chosen set of residues from one file to another
without touching them.

Files ending in ".gz" are transparently decompressed.

Anything in a PDB file that isn't an ATOM, HETATM or MODEL/ENDMDL record is
ignored.
*/
package pdb
