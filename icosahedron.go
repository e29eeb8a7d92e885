package geodesic

import (
	"math"

	"github.com/golang/geo/r3"
)

// NumRoots is the number of level-0 zones, one per icosahedron face.
const NumRoots = 20

var (
	icosahedronG = 0.5 * (1.0 + math.Sqrt(5.0))
	icosahedronB = 1.0 / math.Sqrt(1.0+icosahedronG*icosahedronG)
	icosahedronA = icosahedronB * icosahedronG
)

// icosahedronCorners are the 12 vertices of a regular icosahedron inscribed
// in the unit sphere.
var icosahedronCorners = [12]r3.Vector{
	{X: icosahedronA, Y: -icosahedronB, Z: 0},
	{X: icosahedronA, Y: icosahedronB, Z: 0},
	{X: -icosahedronA, Y: icosahedronB, Z: 0},
	{X: -icosahedronA, Y: -icosahedronB, Z: 0},
	{X: 0, Y: icosahedronA, Z: -icosahedronB},
	{X: 0, Y: icosahedronA, Z: icosahedronB},
	{X: 0, Y: -icosahedronA, Z: icosahedronB},
	{X: 0, Y: -icosahedronA, Z: -icosahedronB},
	{X: -icosahedronB, Y: 0, Z: icosahedronA},
	{X: icosahedronB, Y: 0, Z: icosahedronA},
	{X: icosahedronB, Y: 0, Z: -icosahedronA},
	{X: -icosahedronB, Y: 0, Z: -icosahedronA},
}

// icosahedronTriangles lists the corner indices of the 20 faces, each
// counter-clockwise when seen from outside the sphere. The position of a
// face in this table is its level-0 zone id, so the order is part of the
// zone numbering and must never change.
var icosahedronTriangles = [NumRoots][3]int{
	{1, 0, 10},
	{0, 1, 9},
	{0, 9, 6},
	{9, 8, 6},
	{0, 7, 10},
	{6, 7, 0},
	{7, 6, 3},
	{6, 8, 3},
	{11, 10, 7},
	{7, 3, 11},
	{3, 2, 11},
	{2, 3, 8},
	{10, 11, 4},
	{2, 4, 11},
	{5, 4, 2},
	{2, 8, 5},
	{4, 1, 10},
	{4, 5, 1},
	{5, 9, 1},
	{8, 9, 5},
}

// IcosahedronCorner returns the i-th of the 12 icosahedron vertices.
func IcosahedronCorner(i int) r3.Vector {
	return icosahedronCorners[i]
}

func rootCorners(index int) (r3.Vector, r3.Vector, r3.Vector) {
	c := icosahedronTriangles[index]
	return icosahedronCorners[c[0]], icosahedronCorners[c[1]], icosahedronCorners[c[2]]
}
