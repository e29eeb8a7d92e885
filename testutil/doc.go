// Package testutil provides testing utilities for geodesic.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random directions on the unit sphere
// and comparing zone sets against brute-force ground truth.
//
// # Random Directions
//
//	rng := testutil.NewRNG(seed)
//	v := rng.UnitVector()        // uniform on the sphere
//	vs := rng.UnitVectors(1000)
//
// # Ground Truth Comparison
//
//	missing, extra := testutil.Diff(expected, actual)
package testutil
