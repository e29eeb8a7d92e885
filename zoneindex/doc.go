// Package zoneindex buckets values by the geodesic zone of their direction.
//
// An Index is the typical consumer of a geodesic.Grid: a star or object
// catalog that stores every entry in the leaf zone containing it and answers
// "what is near this direction" by searching the grid for the zones around
// the direction and testing only the entries of zones on the region border.
//
//	g, _ := geodesic.New(6)
//	idx, _ := zoneindex.New[string](g, 6)
//	_ = idx.Insert(r3.Vector{X: 1, Y: 0.1, Z: 0}, "vega")
//	hits, _ := idx.SearchAround(ctx, r3.Vector{X: 1}, 5*s1.Degree)
//
// An Index is safe for concurrent use.
package zoneindex
