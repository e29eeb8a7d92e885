package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UnitVector generates a single direction uniformly distributed on the
// unit sphere.
func (r *RNG) UnitVector() r3.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unitVectorLocked()
}

// UnitVectors generates num directions uniformly distributed on the sphere.
func (r *RNG) UnitVectors(num int) []r3.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([]r3.Vector, num)
	for i := range vectors {
		vectors[i] = r.unitVectorLocked()
	}
	return vectors
}

// unitVectorLocked draws a Gaussian 3-vector and normalizes it (caller must
// hold lock).
func (r *RNG) unitVectorLocked() r3.Vector {
	for {
		v := r3.Vector{X: r.rand.NormFloat64(), Y: r.rand.NormFloat64(), Z: r.rand.NormFloat64()}
		if n := v.Norm(); n > 1e-9 {
			return v.Mul(1 / n)
		}
	}
}

// NearbyVector returns a direction at most radius away from center.
func (r *RNG) NearbyVector(center r3.Vector, radius s1.Angle) r3.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()

	center = center.Normalize()
	axis := center.Cross(r.unitVectorLocked()).Normalize()
	tangent := axis.Cross(center)
	d := radius.Radians() * math.Sqrt(r.rand.Float64())
	return center.Mul(math.Cos(d)).Add(tangent.Mul(math.Sin(d))).Normalize()
}

// Diff compares two zone sets. missing holds the ids of expected that are
// not in actual, extra the ids of actual that are not in expected. Both are
// sorted; duplicates in actual are reported as extra.
func Diff(expected, actual []int) (missing, extra []int) {
	want := make(map[int]int, len(expected))
	for _, z := range expected {
		want[z]++
	}
	for _, z := range actual {
		if want[z] > 0 {
			want[z]--
			continue
		}
		extra = append(extra, z)
	}
	for z, n := range want {
		for range n {
			missing = append(missing, z)
		}
	}
	slices.Sort(missing)
	slices.Sort(extra)
	return missing, extra
}

// Sorted returns a sorted copy of zones.
func Sorted(zones []int) []int {
	out := slices.Clone(zones)
	slices.Sort(out)
	return out
}
