package geodesic

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
)

// MaxHalfSpaces bounds the number of half-spaces in a Convex region.
const MaxHalfSpaces = 8

// HalfSpace is the set of directions v with Normal·v >= Offset.
//
// With a unit normal, Offset is the cosine of the angular radius of the cap
// centered on Normal; an offset of 0 is a hemisphere.
type HalfSpace struct {
	Normal r3.Vector
	Offset float64
}

// Contains reports whether v lies in the half-space.
func (h HalfSpace) Contains(v r3.Vector) bool {
	return h.Normal.Dot(v) >= h.Offset
}

// Cap returns the half-space of all directions within radius of center.
func Cap(center r3.Vector, radius s1.Angle) HalfSpace {
	return HalfSpace{Normal: Unit(center), Offset: math.Cos(radius.Radians())}
}

// Convex is the intersection of up to MaxHalfSpaces half-spaces.
//
// The zero value has no constraints and covers the whole sphere. Convex is a
// value type; copying it never allocates.
type Convex struct {
	halfSpaces [MaxHalfSpaces]HalfSpace
	n          int
}

// NewConvex returns the intersection of hs.
func NewConvex(hs ...HalfSpace) (Convex, error) {
	var c Convex
	for _, h := range hs {
		if err := c.Add(h); err != nil {
			return Convex{}, err
		}
	}
	return c, nil
}

// MustConvex is like NewConvex but panics on error.
func MustConvex(hs ...HalfSpace) Convex {
	c, err := NewConvex(hs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Add intersects the region with h.
func (c *Convex) Add(h HalfSpace) error {
	if c.n == MaxHalfSpaces {
		return ErrTooManyHalfSpaces
	}
	c.halfSpaces[c.n] = h
	c.n++
	return nil
}

// Len returns the number of half-spaces.
func (c Convex) Len() int {
	return c.n
}

// At returns the i-th half-space.
func (c Convex) At(i int) HalfSpace {
	return c.halfSpaces[:c.n][i]
}

// HalfSpaces returns a copy of the half-spaces.
func (c Convex) HalfSpaces() []HalfSpace {
	return append([]HalfSpace(nil), c.halfSpaces[:c.n]...)
}

// Contains reports whether v lies in every half-space.
func (c Convex) Contains(v r3.Vector) bool {
	for i := range c.n {
		if !c.halfSpaces[i].Contains(v) {
			return false
		}
	}
	return true
}

// Quad returns the spherical quadrilateral with corners e0, e1, e2, e3 as
// four half-spaces through the origin. The corners may wind either way.
func Quad(e0, e1, e2, e3 r3.Vector) Convex {
	var c Convex
	if e0.Dot(e1.Sub(e0).Cross(e2.Sub(e0))) > 0 {
		c.halfSpaces = [MaxHalfSpaces]HalfSpace{
			{Normal: e0.Cross(e1)},
			{Normal: e1.Cross(e2)},
			{Normal: e2.Cross(e3)},
			{Normal: e3.Cross(e0)},
		}
	} else {
		c.halfSpaces = [MaxHalfSpaces]HalfSpace{
			{Normal: e1.Cross(e0)},
			{Normal: e2.Cross(e1)},
			{Normal: e3.Cross(e2)},
			{Normal: e0.Cross(e3)},
		}
	}
	c.n = 4
	return c
}

// minFieldRadius keeps the corners of a field far enough apart for its edge
// normals to be accurate. Smaller radii get the field of this radius.
const minFieldRadius = s1.Angle(1e-6)

// Field returns a square field centered on center that encloses the cap of
// the given radius. Radii of a right angle or more yield the whole sphere.
func Field(center r3.Vector, radius s1.Angle) Convex {
	if radius >= s1.Angle(math.Pi/2) {
		return Convex{}
	}

	v := Unit(center)

	// h0 and h1 span the tangent plane at v.
	var h0 r3.Vector
	switch a0, a1, a2 := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z); {
	case a0 <= a1 && a0 <= a2:
		h0.X = 1
	case a0 > a1 && a1 <= a2:
		h0.Y = 1
	default:
		h0.Z = 1
	}
	h1 := h0.Cross(v).Normalize()
	h0 = h1.Cross(v).Normalize()

	f := math.Sqrt2 * math.Tan(max(radius, minFieldRadius).Radians())
	h0 = h0.Mul(f)
	h1 = h1.Mul(f)
	return Quad(
		v.Add(h0).Normalize(),
		v.Add(h1).Normalize(),
		v.Sub(h0).Normalize(),
		v.Sub(h1).Normalize(),
	)
}
