package geodesic

import (
	"math/bits"

	"github.com/golang/geo/r3"
)

// searchZones classifies every zone down to maxSearchLevel against c and
// records it in r as inside or border. Zones outside c are not recorded.
//
// Each recursion step carries, per corner, a bitmask of the half-spaces that
// contain the corner (bit h for half-space h) and the mask of half-spaces
// not yet decided for the subtree. A half-space whose three corners are all
// inside is decided for the whole subtree; one whose three corners are all
// outside prunes the zone.
func (r *SearchResult) searchZones(c *Convex, maxSearchLevel int) {
	var cornerInside [len(icosahedronCorners)]uint8
	for h := range c.n {
		hs := &c.halfSpaces[h]
		for i := range icosahedronCorners {
			if hs.Contains(icosahedronCorners[i]) {
				cornerInside[i] |= 1 << h
			}
		}
	}

	undecided := uint8(uint16(1)<<c.n - 1)
	for i := range NumRoots {
		t := &icosahedronTriangles[i]
		r.searchTriangle(c, 0, i, undecided,
			cornerInside[t[0]], cornerInside[t[1]], cornerInside[t[2]],
			maxSearchLevel)
	}
}

func (r *SearchResult) searchTriangle(c *Convex, level, index int, undecided, c0, c1, c2 uint8, maxSearchLevel int) {
	if undecided&^(c0|c1|c2) != 0 {
		return
	}
	undecided &^= c0 & c1 & c2

	if undecided == 0 {
		r.zones[level][r.insideLen[level]] = index
		r.insideLen[level]++
		return
	}

	r.borderStart[level]--
	r.zones[level][r.borderStart[level]] = index
	if level >= maxSearchLevel {
		return
	}

	t := &r.grid.triangles[level][index]
	e0 := classify(c, undecided, t.E0)
	e1 := classify(c, undecided, t.E1)
	e2 := classify(c, undecided, t.E2)

	level++
	index *= 4
	r.searchTriangle(c, level, index+0, undecided, c0, e2, e1, maxSearchLevel)
	r.searchTriangle(c, level, index+1, undecided, e2, c1, e0, maxSearchLevel)
	r.searchTriangle(c, level, index+2, undecided, e1, e0, c2, maxSearchLevel)
	r.searchTriangle(c, level, index+3, undecided, e0, e1, e2, maxSearchLevel)
}

// classify returns the mask of half-spaces in undecided that contain v.
func classify(c *Convex, undecided uint8, v r3.Vector) uint8 {
	var inside uint8
	for m := undecided; m != 0; m &= m - 1 {
		h := bits.TrailingZeros8(m)
		if c.halfSpaces[h].Contains(v) {
			inside |= 1 << h
		}
	}
	return inside
}
