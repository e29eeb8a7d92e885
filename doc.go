// Package geodesic provides a hierarchical spatial index over the sphere.
//
// The sky is divided into triangular zones by recursively subdividing the 20
// faces of an icosahedron. Level 0 holds the 20 faces; each level splits
// every zone into four, so level L has 20·4^L zones, identified by integers
// in [0, 20·4^L). The children of zone i are 4i+0 .. 4i+3, where child 3 is
// the central triangle spanned by the parent's edge midpoints. Zone ids are
// stable and meant to be used directly as array indices by catalogs.
//
// # Quick Start
//
//	g, _ := geodesic.New(7)
//
//	// Which leaf zone holds a direction?
//	zone, _ := g.Zone(r3.Vector{X: 0.3, Y: -0.2, Z: 0.93}, 7)
//
//	// Which zones meet a field of view?
//	res := geodesic.NewSearchResult(g)
//	res.Search(geodesic.Field(center, 2*s1.Degree), 7)
//	for zone := range res.InsideZones(7) {
//	    // every object of zone is in the region
//	}
//	for zone := range res.BorderZones(7) {
//	    // objects of zone need an exact test
//	}
//
// # Regions
//
// A region is a Convex intersection of up to MaxHalfSpaces half-spaces.
// Cap, Quad and Field build the common shapes. Zones are reported inside
// when all three of their corners lie in every half-space, which is exact
// for half-spaces with a non-negative offset (caps no larger than a
// hemisphere).
//
// # Concurrency
//
// A Grid is immutable and safe for concurrent use. A SearchResult is a
// reusable scratch buffer; use one per goroutine.
package geodesic
