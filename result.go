package geodesic

import (
	"context"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/golang/geo/r3"
)

// SearchResult holds the zones found by the most recent region search.
//
// Each level owns one buffer of NumZones(level) ids: inside zones are stored
// from the front, border zones from the back. The buffers are allocated once
// by NewSearchResult, so searches do not allocate.
//
// A SearchResult is scratch space. Slices returned by Inside and Border and
// all iterators are invalidated by the next Search. Concurrent searches need
// separate results; they may share one Grid.
type SearchResult struct {
	grid           *Grid
	zones          [][]int
	insideLen      []int
	borderStart    []int
	maxSearchLevel int
}

// NewSearchResult allocates a result able to hold any search on g.
func NewSearchResult(g *Grid) *SearchResult {
	levels := g.maxLevel + 1
	r := &SearchResult{
		grid:           g,
		zones:          make([][]int, levels),
		insideLen:      make([]int, levels),
		borderStart:    make([]int, levels),
		maxSearchLevel: -1,
	}
	for l := range levels {
		r.zones[l] = make([]int, NumZones(l))
		r.borderStart[l] = NumZones(l)
	}
	return r
}

// Search returns a new result holding the zones of c down to maxSearchLevel.
func (g *Grid) Search(c Convex, maxSearchLevel int) *SearchResult {
	r := NewSearchResult(g)
	r.Search(c, maxSearchLevel)
	return r
}

// Grid returns the grid the result searches.
func (r *SearchResult) Grid() *Grid {
	return r.grid
}

// MaxSearchLevel returns the level the last search descended to, or -1
// before the first search.
func (r *SearchResult) MaxSearchLevel() int {
	return r.maxSearchLevel
}

// Search replaces the result with the zones of region c.
//
// At every level from 0 to maxSearchLevel it records the zones wholly inside
// c whose ancestors straddle the boundary, and the zones straddling the
// boundary. maxSearchLevel is clamped to [0, MaxLevel()] of the grid.
//
// Regions are not validated. An empty or non-convex intersection is searched
// all the same and may yield border zones that do not meet the region.
//
// A zone is reported inside when its three corners lie in every half-space.
// That is exact for half-spaces with a non-negative offset. A half-space
// with a negative offset excludes a cap that can lie wholly between the
// corners of a zone, so such a zone is reported inside although part of it
// is outside the region.
//
// A zone is pruned when all three of its corners lie outside one
// half-space. That is exact for half-spaces through the origin. A cap
// narrower than a zone can pass between the corners, so the zones it cuts
// are dropped; search such caps through Field or at a level whose zones are
// smaller than the cap.
func (r *SearchResult) Search(c Convex, maxSearchLevel int) {
	start := time.Now()
	maxSearchLevel = max(0, min(maxSearchLevel, r.grid.maxLevel))

	for l := range r.zones {
		r.insideLen[l] = 0
		r.borderStart[l] = len(r.zones[l])
	}
	r.maxSearchLevel = maxSearchLevel

	r.searchZones(&c, maxSearchLevel)

	var inside, border int
	for l := range r.zones {
		inside += r.insideLen[l]
		border += len(r.zones[l]) - r.borderStart[l]
	}
	elapsed := time.Since(start)
	r.grid.logger.LogSearch(context.Background(), maxSearchLevel, c.Len(), inside, border, elapsed)
	r.grid.metrics.RecordSearch(maxSearchLevel, inside, border, elapsed)
}

// SearchQuad searches the spherical quadrilateral with the given corners.
func (r *SearchResult) SearchQuad(e0, e1, e2, e3 r3.Vector, maxSearchLevel int) {
	r.Search(Quad(e0, e1, e2, e3), maxSearchLevel)
}

// Inside returns the zones at level found wholly inside the region.
// Descendants of these zones are not listed at deeper levels.
func (r *SearchResult) Inside(level int) []int {
	if level < 0 || level >= len(r.zones) {
		return nil
	}
	return r.zones[level][:r.insideLen[level]]
}

// Border returns the zones at level found straddling the region boundary.
func (r *SearchResult) Border(level int) []int {
	if level < 0 || level >= len(r.zones) {
		return nil
	}
	return r.zones[level][r.borderStart[level]:]
}

// InsideBitmap returns the leaf zones at level covered by inside zones of
// levels 0..level, the same set InsideIterator yields.
func (r *SearchResult) InsideBitmap(level int) *roaring.Bitmap {
	level = r.clampLevel(level)
	bm := roaring.New()
	for l := 0; l <= min(level, r.maxSearchLevel); l++ {
		span := uint64(1) << (2 * uint(level-l))
		for _, z := range r.Inside(l) {
			bm.AddRange(uint64(z)*span, uint64(z+1)*span)
		}
	}
	return bm
}

// BorderBitmap returns the border zones recorded at level.
func (r *SearchResult) BorderBitmap(level int) *roaring.Bitmap {
	bm := roaring.New()
	for _, z := range r.Border(r.clampLevel(level)) {
		bm.Add(uint32(z))
	}
	return bm
}

func (r *SearchResult) clampLevel(level int) int {
	return max(0, min(level, r.grid.maxLevel))
}
