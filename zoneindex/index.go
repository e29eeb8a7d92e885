package zoneindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/stellarium/geodesic"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidRadius is returned for a negative or NaN search radius.
var ErrInvalidRadius = errors.New("zoneindex: invalid radius")

// Entry is a value stored at a direction.
type Entry[T any] struct {
	// Pos is the normalized direction of the entry.
	Pos   r3.Vector
	Value T
}

// Index buckets entries by the zone containing them at a fixed level.
type Index[T any] struct {
	grid  *geodesic.Grid
	level int

	mu       sync.RWMutex
	zones    map[int][]Entry[T]
	occupied *roaring.Bitmap
	n        int

	concurrency int
	logger      *geodesic.Logger
	resultPool  sync.Pool
}

// New creates an empty index bucketing entries by their zone at level.
func New[T any](grid *geodesic.Grid, level int, optFns ...Option) (*Index[T], error) {
	if level < 0 || level > grid.MaxLevel() {
		return nil, &geodesic.ErrInvalidLevel{Level: level, Max: grid.MaxLevel()}
	}

	opts := applyOptions(optFns)

	idx := &Index[T]{
		grid:        grid,
		level:       level,
		zones:       make(map[int][]Entry[T]),
		occupied:    roaring.New(),
		concurrency: opts.concurrency,
		logger:      opts.logger.WithLevel(level),
		resultPool: sync.Pool{
			New: func() any {
				return geodesic.NewSearchResult(grid)
			},
		},
	}
	return idx, nil
}

// Grid returns the grid the index is built on.
func (idx *Index[T]) Grid() *geodesic.Grid { return idx.grid }

// Level returns the level of the zones entries are bucketed by.
func (idx *Index[T]) Level() int { return idx.level }

// Len returns the number of entries.
func (idx *Index[T]) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.n
}

// Insert stores v at direction pos and returns the zone it was put in.
func (idx *Index[T]) Insert(pos r3.Vector, v T) (int, error) {
	zone, err := idx.grid.Zone(pos, idx.level)
	if err != nil {
		return -1, err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.zones[zone] = append(idx.zones[zone], Entry[T]{Pos: geodesic.Unit(pos), Value: v})
	idx.occupied.Add(uint32(zone))
	idx.n++

	if ctx := context.Background(); idx.logger.Enabled(ctx, slog.LevelDebug) {
		idx.logger.WithZone(zone).DebugContext(ctx, "zone index insert", "entries", len(idx.zones[zone]))
	}
	return zone, nil
}

// Zone returns a copy of the entries stored in zone.
func (idx *Index[T]) Zone(zone int) []Entry[T] {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return slices.Clone(idx.zones[zone])
}

// Occupied returns the zones holding at least one entry.
func (idx *Index[T]) Occupied() *roaring.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.occupied.Clone()
}

// SearchRegion returns the entries lying in region c.
//
// When no half-space of c has a negative offset, entries of zones found
// wholly inside c are returned without a test and only entries of border
// zones are tested against c. A negative offset excludes a cap that can hide
// between the corners of an inside zone, so then every entry is tested.
// Half-spaces with a positive offset smaller than a zone may prune zones
// they cut, as described for geodesic.SearchResult.Search; SearchAround has
// no such limit.
func (idx *Index[T]) SearchRegion(ctx context.Context, c geodesic.Convex) ([]Entry[T], error) {
	trustInside := true
	for i := range c.Len() {
		if c.At(i).Offset < 0 {
			trustInside = false
			break
		}
	}
	return idx.search(ctx, c, trustInside, c.Contains)
}

// SearchAround returns the entries within radius of center.
//
// The grid is searched with the square field enclosing the cap, and every
// entry of the zones meeting the field is tested against the cap.
func (idx *Index[T]) SearchAround(ctx context.Context, center r3.Vector, radius s1.Angle) ([]Entry[T], error) {
	if !geodesic.ValidDirection(center) {
		return nil, geodesic.ErrInvalidVector
	}
	if math.IsNaN(radius.Radians()) || radius < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}

	within := func(r3.Vector) bool { return true }
	if radius < s1.Angle(math.Pi) {
		within = geodesic.Cap(center, radius).Contains
	}
	return idx.search(ctx, geodesic.Field(center, radius), false, within)
}

// Nearest returns the entry closest to pos within radius. ok is false when
// no entry is that close.
func (idx *Index[T]) Nearest(ctx context.Context, pos r3.Vector, radius s1.Angle) (e Entry[T], ok bool, err error) {
	hits, err := idx.SearchAround(ctx, pos, radius)
	if err != nil {
		return e, false, err
	}

	p := geodesic.Unit(pos)
	best := math.Inf(-1)
	for _, h := range hits {
		if d := h.Pos.Dot(p); d > best {
			best, e, ok = d, h, true
		}
	}
	return e, ok, nil
}

// SearchAroundMany runs SearchAround for every center, at most
// WithConcurrency searches at a time. out[i] holds the entries around
// centers[i]. The first failing search cancels the others.
func (idx *Index[T]) SearchAroundMany(ctx context.Context, centers []r3.Vector, radius s1.Angle) ([][]Entry[T], error) {
	out := make([][]Entry[T], len(centers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.concurrency)

	for i, center := range centers {
		g.Go(func() error {
			hits, err := idx.SearchAround(gctx, center, radius)
			if err != nil {
				return fmt.Errorf("center %d: %w", i, err)
			}
			out[i] = hits
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (idx *Index[T]) search(ctx context.Context, c geodesic.Convex, trustInside bool, keep func(r3.Vector) bool) ([]Entry[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	res := idx.resultPool.Get().(*geodesic.SearchResult)
	defer idx.resultPool.Put(res)

	res.Search(c, idx.level)
	inside := res.InsideBitmap(idx.level)
	border := res.BorderBitmap(idx.level)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	inside.And(idx.occupied)
	border.And(idx.occupied)

	var hits []Entry[T]
	candidates := 0

	for _, zones := range []*roaring.Bitmap{inside, border} {
		test := zones == border || !trustInside

		it := zones.Iterator()
		for it.HasNext() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			entries := idx.zones[int(it.Next())]
			candidates += len(entries)
			if !test {
				hits = append(hits, entries...)
				continue
			}
			for _, e := range entries {
				if keep(e.Pos) {
					hits = append(hits, e)
				}
			}
		}
	}

	idx.logger.DebugContext(ctx, "zone index search",
		"inside_zones", inside.GetCardinality(),
		"border_zones", border.GetCardinality(),
		"candidates", candidates,
		"hits", len(hits),
		"duration", time.Since(start),
	)
	return hits, nil
}
