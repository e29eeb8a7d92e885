package geodesic

import (
	"context"
	"iter"
	"math"
	"time"

	"github.com/golang/geo/r3"
)

// MaxLevel is the deepest subdivision level a grid can be built to.
// 20·4^13 zones is the largest zone count whose ids still fit in a uint32.
const MaxLevel = 13

// NumZones returns the number of zones at the given level, 20·4^level.
func NumZones(level int) int {
	return NumRoots << (2 * uint(level))
}

// Triangle holds the normalized edge midpoints of a subdivided zone.
//
// E0 is the midpoint of the edge opposite corner 0 (between corners 1 and 2),
// E1 the one opposite corner 1 and E2 the one opposite corner 2. They are the
// vertices shared with the zone's four children.
type Triangle struct {
	E0, E1, E2 r3.Vector
}

// Node is a zone together with its three vertices, as produced by All.
type Node struct {
	Level   int
	Index   int
	Corners [3]r3.Vector
}

// VisitFunc is called by Visit for every zone with its vertices.
type VisitFunc func(level, index int, c0, c1, c2 r3.Vector)

// Grid is a geodesic subdivision of the unit sphere seeded by an icosahedron.
//
// A Grid is immutable once New returns and may be shared by any number of
// goroutines. Region searches write into a SearchResult, which must not be
// shared between concurrent searches.
type Grid struct {
	maxLevel  int
	triangles [][]Triangle // triangles[l] has NumZones(l) nodes, l < maxLevel

	logger  *Logger
	metrics MetricsCollector
}

// New builds a grid subdivided down to maxLevel.
//
// Levels 0..maxLevel-1 store the edge midpoints of every zone; zones at
// maxLevel are leaves. A maxLevel of 0 yields a grid of the 20 faces only.
func New(maxLevel int, optFns ...Option) (*Grid, error) {
	if err := checkLevel(maxLevel, MaxLevel); err != nil {
		return nil, err
	}

	opts := applyOptions(optFns)
	start := time.Now()

	g := &Grid{
		maxLevel:  maxLevel,
		triangles: make([][]Triangle, maxLevel),
		logger:    opts.logger,
		metrics:   opts.metricsCollector,
	}

	nodes := 0
	for l := range maxLevel {
		g.triangles[l] = make([]Triangle, NumZones(l))
		nodes += NumZones(l)
	}

	if maxLevel > 0 {
		for i := range NumRoots {
			c0, c1, c2 := rootCorners(i)
			g.initTriangle(0, i, c0, c1, c2)
		}
	}

	elapsed := time.Since(start)
	g.logger.LogBuild(context.Background(), maxLevel, nodes, elapsed)
	g.metrics.RecordBuild(maxLevel, nodes, elapsed)

	return g, nil
}

func (g *Grid) initTriangle(level, index int, c0, c1, c2 r3.Vector) {
	t := &g.triangles[level][index]
	t.E0 = midpoint(c1, c2)
	t.E1 = midpoint(c2, c0)
	t.E2 = midpoint(c0, c1)

	level++
	if level < g.maxLevel {
		index *= 4
		g.initTriangle(level, index+0, c0, t.E2, t.E1)
		g.initTriangle(level, index+1, t.E2, c1, t.E0)
		g.initTriangle(level, index+2, t.E1, t.E0, c2)
		g.initTriangle(level, index+3, t.E0, t.E1, t.E2)
	}
}

// midpoint returns the normalized midpoint of the arc between a and b.
func midpoint(a, b r3.Vector) r3.Vector {
	s := a.Add(b)
	n := s.Norm()
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		invariant("New", "degenerate edge between %v and %v", a, b)
	}
	return s.Mul(1 / n)
}

// MaxLevel returns the level of the grid's leaf zones.
func (g *Grid) MaxLevel() int {
	return g.maxLevel
}

// Triangle returns the edge midpoints of zone index at level.
// level must be below MaxLevel(); leaf zones are not subdivided.
func (g *Grid) Triangle(level, index int) (Triangle, error) {
	if err := checkLevel(level, g.maxLevel-1); err != nil {
		return Triangle{}, err
	}
	if index < 0 || index >= NumZones(level) {
		return Triangle{}, &ErrInvalidZone{Level: level, Zone: index}
	}
	return g.triangles[level][index], nil
}

// Corners returns the three vertices of zone index at level, in the
// orientation used by the child numbering.
func (g *Grid) Corners(level, index int) ([3]r3.Vector, error) {
	if err := checkLevel(level, g.maxLevel); err != nil {
		return [3]r3.Vector{}, err
	}
	if index < 0 || index >= NumZones(level) {
		return [3]r3.Vector{}, &ErrInvalidZone{Level: level, Zone: index}
	}
	return g.corners(level, index), nil
}

func (g *Grid) corners(level, index int) [3]r3.Vector {
	if level == 0 {
		c0, c1, c2 := rootCorners(index)
		return [3]r3.Vector{c0, c1, c2}
	}

	level--
	parent := index >> 2
	t := &g.triangles[level][parent]
	switch index & 3 {
	case 0:
		c := g.corners(level, parent)
		return [3]r3.Vector{c[0], t.E2, t.E1}
	case 1:
		c := g.corners(level, parent)
		return [3]r3.Vector{t.E2, c[1], t.E0}
	case 2:
		c := g.corners(level, parent)
		return [3]r3.Vector{t.E1, t.E0, c[2]}
	default:
		return [3]r3.Vector{t.E0, t.E1, t.E2}
	}
}

// Zone returns the zone at level that contains direction v.
//
// v need not be normalized. Points on a shared edge resolve to the same zone
// on every call. An error is returned for an out-of-range level or a
// direction with NaN, infinite or all-zero components.
func (g *Grid) Zone(v r3.Vector, level int) (int, error) {
	if err := checkLevel(level, g.maxLevel); err != nil {
		g.logger.LogLookupFailure(context.Background(), level, err)
		g.metrics.RecordLookup(level, err)
		return -1, err
	}
	if !ValidDirection(v) {
		g.logger.LogLookupFailure(context.Background(), level, ErrInvalidVector)
		g.metrics.RecordLookup(level, ErrInvalidVector)
		return -1, ErrInvalidVector
	}

	zone := g.locate(v, level)
	g.metrics.RecordLookup(level, nil)
	return zone, nil
}

// MustZone is like Zone but panics if the lookup is rejected.
func (g *Grid) MustZone(v r3.Vector, level int) int {
	zone, err := g.Zone(v, level)
	if err != nil {
		panic(err)
	}
	return zone
}

func (g *Grid) locate(v r3.Vector, level int) int {
	for i := range NumRoots {
		n := &rootEdgeNormals[i]
		if n[0].Dot(v) >= 0 && n[1].Dot(v) >= 0 && n[2].Dot(v) >= 0 {
			index := i
			for l := range level {
				t := &g.triangles[l][index]
				index <<= 2
				switch {
				case t.E1.Cross(t.E2).Dot(v) <= 0:
				case t.E2.Cross(t.E0).Dot(v) <= 0:
					index += 1
				case t.E0.Cross(t.E1).Dot(v) <= 0:
					index += 2
				default:
					index += 3
				}
			}
			return index
		}
	}

	invariant("Zone", "no icosahedron face contains %v", v)
	return -1
}

// rootEdgeNormals[i] holds c0×c1, c1×c2 and c2×c0 of face i.
var rootEdgeNormals = func() (n [NumRoots][3]r3.Vector) {
	for i := range NumRoots {
		c0, c1, c2 := rootCorners(i)
		n[i] = [3]r3.Vector{c0.Cross(c1), c1.Cross(c2), c2.Cross(c0)}
	}
	return n
}()

// Unit returns v scaled to unit length. Unlike r3.Vector.Normalize it does
// not overflow or underflow for components of extreme magnitude. v must
// satisfy ValidDirection.
func Unit(v r3.Vector) r3.Vector {
	m := max(math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z))
	return r3.Vector{X: v.X / m, Y: v.Y / m, Z: v.Z / m}.Normalize()
}

// ValidDirection reports whether v has finite components and is not the
// zero vector, the directions Zone accepts.
func ValidDirection(v r3.Vector) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return v.X != 0 || v.Y != 0 || v.Z != 0
}

// Visit calls fn for every zone from level 0 down to maxVisitLevel, root by
// root in depth-first pre-order with children visited in id order. fn
// receives the zone's vertices. maxVisitLevel is clamped to MaxLevel(); a
// negative value visits nothing.
func (g *Grid) Visit(maxVisitLevel int, fn VisitFunc) {
	if fn == nil {
		return
	}
	g.walk(maxVisitLevel, func(level, index int, c0, c1, c2 r3.Vector) bool {
		fn(level, index, c0, c1, c2)
		return true
	})
}

// All returns an iterator over the zones Visit would visit, in the same order.
func (g *Grid) All(maxVisitLevel int) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		g.walk(maxVisitLevel, func(level, index int, c0, c1, c2 r3.Vector) bool {
			return yield(Node{Level: level, Index: index, Corners: [3]r3.Vector{c0, c1, c2}})
		})
	}
}

type walkFunc func(level, index int, c0, c1, c2 r3.Vector) bool

func (g *Grid) walk(maxVisitLevel int, fn walkFunc) {
	if maxVisitLevel < 0 {
		return
	}
	maxVisitLevel = min(maxVisitLevel, g.maxLevel)
	for i := range NumRoots {
		c0, c1, c2 := rootCorners(i)
		if !g.walkTriangle(0, i, c0, c1, c2, maxVisitLevel, fn) {
			return
		}
	}
}

func (g *Grid) walkTriangle(level, index int, c0, c1, c2 r3.Vector, maxVisitLevel int, fn walkFunc) bool {
	if !fn(level, index, c0, c1, c2) {
		return false
	}
	if level >= maxVisitLevel {
		return true
	}

	t := &g.triangles[level][index]
	level++
	index *= 4
	return g.walkTriangle(level, index+0, c0, t.E2, t.E1, maxVisitLevel, fn) &&
		g.walkTriangle(level, index+1, t.E2, c1, t.E0, maxVisitLevel, fn) &&
		g.walkTriangle(level, index+2, t.E1, t.E0, c2, maxVisitLevel, fn) &&
		g.walkTriangle(level, index+3, t.E0, t.E1, t.E2, maxVisitLevel, fn)
}
