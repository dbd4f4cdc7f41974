package rmsd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/BurntSushi/ensembler/pdb"
)

// RMSD implements a version of the Kabsch alogrithm that is described here:
// http://cnx.org/content/m11608/latest/
//
// A brief, high-level overview:
//
// Build the Nx3 matrices X and Y containing, for the sets x and y
// respectively, the coordinates for each of the N atoms after centering
// the atoms by subtracting the centroids.
//
// Compute the covariance matrix C=(X^T)Y
//
// Compute the singular values s1 >= s2 >= s3 of C.
//
// Compute d=sign(det(C))
//
// The optimal rotation is never built. The residual after superposition is
// |X|^2 + |Y|^2 - 2(s1 + s2 + d*s3), so the RMSD is the square root of that
// divided by N.
//
// Note that RMSD will panic if the lengths of struct1 and struct2 differ.
func RMSD(struct1, struct2 []pdb.Coords) float64 {
	if len(struct1) != len(struct2) {
		panic(fmt.Sprintf("Computing the RMSD of two structures require that "+
			"they have equal length. But the lengths of the two structures "+
			"provided are %d and %d.", len(struct1), len(struct2)))
	}
	if len(struct1) == 0 {
		return 0
	}

	X, normX := centered(struct1)
	Y, normY := centered(struct2)

	var C mat.Dense
	C.Mul(X.T(), Y)

	var svd mat.SVD
	if !svd.Factorize(&C, mat.SVDNone) {
		panic("Could not compute the SVD of the covariance matrix.")
	}
	s := svd.Values(nil)

	// A negative determinant means the best orthogonal transformation is a
	// reflection. Flip the smallest singular value to force a rotation.
	d := 1.0
	if mat.Det(&C) < 0 {
		d = -1.0
	}

	residual := normX + normY - 2*(s[0]+s[1]+d*s[2])
	if residual < 0 {
		residual = 0
	}
	return math.Sqrt(residual / float64(len(struct1)))
}

// centered returns the coordinates as an Nx3 matrix with their centroid
// subtracted, along with the sum of squared centered coordinates.
func centered(coords []pdb.Coords) (*mat.Dense, float64) {
	cx, cy, cz := centroid(coords)
	m := mat.NewDense(len(coords), 3, nil)
	norm := 0.0
	for i, c := range coords {
		x, y, z := c.X-cx, c.Y-cy, c.Z-cz
		m.Set(i, 0, x)
		m.Set(i, 1, y)
		m.Set(i, 2, z)
		norm += x*x + y*y + z*z
	}
	return m, norm
}

// centroid calculates the average position of a set of atoms.
func centroid(coords []pdb.Coords) (float64, float64, float64) {
	var xs, ys, zs float64
	for _, c := range coords {
		xs += c.X
		ys += c.Y
		zs += c.Z
	}
	n := float64(len(coords))
	return xs / n, ys / n, zs / n
}
