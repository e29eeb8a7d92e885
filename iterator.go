package geodesic

import "iter"

// InsideIterator enumerates the leaf zones of one level that lie inside the
// searched region.
//
// Every inside zone recorded at a level l up to the iterator's level expands
// to its 4^(level-l) descendants, which have consecutive ids. No geometry is
// evaluated while iterating. Once exhausted, the iterator stays exhausted
// until Reset.
type InsideIterator struct {
	r         *SearchResult
	maxLevel  int
	lastLevel int

	level int
	pos   int
	base  int
	count int
	span  int
}

// InsideIterator returns an iterator over the inside leaf zones at level.
// level is clamped to [0, MaxLevel()] of the grid.
func (r *SearchResult) InsideIterator(level int) *InsideIterator {
	level = r.clampLevel(level)
	it := &InsideIterator{
		r:         r,
		maxLevel:  level,
		lastLevel: min(level, r.maxSearchLevel),
	}
	it.Reset()
	return it
}

// Reset rewinds the iterator to the first zone.
func (it *InsideIterator) Reset() {
	it.level = 0
	it.pos = 0
	it.base = 0
	it.count = 0
	it.span = 0
}

// Next returns the next zone, or false when the iteration is done.
func (it *InsideIterator) Next() (int, bool) {
	for {
		if it.count < it.span {
			zone := it.base + it.count
			it.count++
			return zone, true
		}
		if it.level > it.lastLevel {
			return -1, false
		}

		inside := it.r.Inside(it.level)
		if it.pos < len(inside) {
			it.span = 1 << (2 * uint(it.maxLevel-it.level))
			it.base = inside[it.pos] * it.span
			it.count = 0
			it.pos++
			continue
		}

		it.level++
		it.pos = 0
	}
}

// BorderIterator enumerates the border zones recorded at one level.
type BorderIterator struct {
	zones []int
	pos   int
}

// BorderIterator returns an iterator over the border zones at level.
// level is clamped to [0, MaxLevel()] of the grid; levels deeper than the
// last search descended to hold no border zones.
func (r *SearchResult) BorderIterator(level int) *BorderIterator {
	return &BorderIterator{zones: r.Border(r.clampLevel(level))}
}

// Reset rewinds the iterator to the first zone.
func (it *BorderIterator) Reset() {
	it.pos = 0
}

// Next returns the next zone, or false when the iteration is done.
func (it *BorderIterator) Next() (int, bool) {
	if it.pos < len(it.zones) {
		zone := it.zones[it.pos]
		it.pos++
		return zone, true
	}
	return -1, false
}

// InsideZones returns a sequence over the inside leaf zones at level.
func (r *SearchResult) InsideZones(level int) iter.Seq[int] {
	return func(yield func(int) bool) {
		it := r.InsideIterator(level)
		for zone, ok := it.Next(); ok; zone, ok = it.Next() {
			if !yield(zone) {
				return
			}
		}
	}
}

// BorderZones returns a sequence over the border zones at level.
func (r *SearchResult) BorderZones(level int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, zone := range r.Border(r.clampLevel(level)) {
			if !yield(zone) {
				return
			}
		}
	}
}
