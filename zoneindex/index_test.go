package zoneindex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/stellarium/geodesic"
	"github.com/stellarium/geodesic/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t testing.TB, level, n int, optFns ...Option) (*Index[int], *testutil.RNG) {
	t.Helper()

	g, err := geodesic.New(level)
	require.NoError(t, err)

	idx, err := New[int](g, level, optFns...)
	require.NoError(t, err)

	rng := testutil.NewRNG(4711)
	for i, v := range rng.UnitVectors(n) {
		_, err := idx.Insert(v, i)
		require.NoError(t, err)
	}
	return idx, rng
}

// all returns every stored entry.
func all[T any](idx *Index[T]) []Entry[T] {
	var out []Entry[T]
	it := idx.Occupied().Iterator()
	for it.HasNext() {
		out = append(out, idx.Zone(int(it.Next()))...)
	}
	return out
}

func values[T any](entries []Entry[T]) []T {
	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}

func bruteForce(entries []Entry[int], keep func(r3.Vector) bool) []int {
	var out []int
	for _, e := range entries {
		if keep(e.Pos) {
			out = append(out, e.Value)
		}
	}
	return out
}

func TestNew(t *testing.T) {
	g, err := geodesic.New(3)
	require.NoError(t, err)

	for _, level := range []int{-1, 4} {
		idx, err := New[string](g, level)
		assert.Nil(t, idx)

		var el *geodesic.ErrInvalidLevel
		require.True(t, errors.As(err, &el))
		assert.Equal(t, 3, el.Max)
	}

	idx, err := New[string](g, 3, nil, WithLogger(nil), WithConcurrency(-2))
	require.NoError(t, err)
	assert.Same(t, g, idx.Grid())
	assert.Equal(t, 3, idx.Level())
	assert.Positive(t, idx.concurrency)
	assert.Zero(t, idx.Len())
}

func TestInsert(t *testing.T) {
	g, err := geodesic.New(4)
	require.NoError(t, err)
	idx, err := New[string](g, 4)
	require.NoError(t, err)

	pos := r3.Vector{X: 3, Y: 0.2, Z: -0.1}
	zone, err := idx.Insert(pos, "a")
	require.NoError(t, err)
	assert.Equal(t, g.MustZone(pos, 4), zone)

	_, err = idx.Insert(pos, "b")
	require.NoError(t, err)

	entries := idx.Zone(zone)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Value)
	assert.InDelta(t, 1.0, entries[0].Pos.Norm(), 1e-15)
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []uint32{uint32(zone)}, idx.Occupied().ToArray())

	// Zone returns a copy.
	entries[0].Value = "changed"
	assert.Equal(t, "a", idx.Zone(zone)[0].Value)

	_, err = idx.Insert(r3.Vector{}, "zero")
	assert.ErrorIs(t, err, geodesic.ErrInvalidVector)
	assert.Equal(t, 2, idx.Len())

	assert.Empty(t, idx.Zone(zone+1))
}

func TestSearchAround(t *testing.T) {
	idx, rng := newTestIndex(t, 5, 3000)
	entries := all(idx)
	require.Len(t, entries, 3000)

	ctx := context.Background()
	for i := range 40 {
		center := rng.UnitVector()
		radius := s1.Angle(0.01 + 0.8*rng.Float64())
		if i == 0 {
			radius = 2
		}

		hits, err := idx.SearchAround(ctx, center, radius)
		require.NoError(t, err)

		missing, extra := testutil.Diff(bruteForce(entries, geodesic.Cap(center, radius).Contains), values(hits))
		require.Empty(t, missing, "search %d", i)
		require.Empty(t, extra, "search %d", i)
	}

	t.Run("whole sphere", func(t *testing.T) {
		hits, err := idx.SearchAround(ctx, r3.Vector{Z: 1}, s1.Angle(4))
		require.NoError(t, err)
		assert.Len(t, hits, 3000)
	})

	t.Run("tiny radius", func(t *testing.T) {
		hits, err := idx.SearchAround(ctx, entries[7].Pos, 1e-6)
		require.NoError(t, err)
		assert.Contains(t, values(hits), entries[7].Value)
	})
}

func TestSearchAroundErrors(t *testing.T) {
	idx, _ := newTestIndex(t, 2, 10)

	_, err := idx.SearchAround(context.Background(), r3.Vector{}, 0.1)
	assert.ErrorIs(t, err, geodesic.ErrInvalidVector)

	for _, r := range []s1.Angle{-0.1, s1.Angle(math.NaN())} {
		_, err = idx.SearchAround(context.Background(), r3.Vector{X: 1}, r)
		assert.ErrorIs(t, err, ErrInvalidRadius)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = idx.SearchAround(ctx, r3.Vector{X: 1}, 0.1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchRegion(t *testing.T) {
	idx, rng := newTestIndex(t, 4, 2000)
	entries := all(idx)

	for i := range 30 {
		var c geodesic.Convex
		for range 1 + rng.Intn(3) {
			require.NoError(t, c.Add(geodesic.HalfSpace{Normal: rng.UnitVector()}))
		}

		hits, err := idx.SearchRegion(context.Background(), c)
		require.NoError(t, err)

		missing, extra := testutil.Diff(bruteForce(entries, c.Contains), values(hits))
		require.Empty(t, missing, "region %d", i)
		require.Empty(t, extra, "region %d", i)
	}
}

func TestSearchRegionNegativeOffset(t *testing.T) {
	g, err := geodesic.New(1)
	require.NoError(t, err)
	idx, err := New[string](g, 1)
	require.NoError(t, err)

	c, err := g.Corners(1, 3)
	require.NoError(t, err)
	p := geodesic.Unit(c[0].Add(c[1]).Add(c[2]))

	_, err = idx.Insert(p, "excluded")
	require.NoError(t, err)
	_, err = idx.Insert(p.Mul(-1), "included")
	require.NoError(t, err)

	// Everything but a small cap around p, which fits between the corners
	// of zone 3.
	region := geodesic.MustConvex(geodesic.HalfSpace{Normal: p.Mul(-1), Offset: -0.99})
	require.False(t, region.Contains(p))
	require.True(t, g.Search(region, 1).InsideBitmap(1).Contains(3))

	hits, err := idx.SearchRegion(context.Background(), region)
	require.NoError(t, err)
	assert.Equal(t, []string{"included"}, values(hits))
}

func TestExtremeMagnitudes(t *testing.T) {
	g, err := geodesic.New(4)
	require.NoError(t, err)
	idx, err := New[string](g, 4)
	require.NoError(t, err)

	for name, v := range map[string]r3.Vector{
		"huge": {X: 1e200, Y: 1e200, Z: 1e200},
		"tiny": {X: 1e-200, Y: 1e-200, Z: 1e-200},
		"unit": {X: 1, Y: 1, Z: 1},
	} {
		_, err := idx.Insert(v, name)
		require.NoError(t, err)
	}
	for _, e := range all(idx) {
		assert.InDelta(t, 1.0, e.Pos.Norm(), 1e-15, e.Value)
	}

	ctx := context.Background()
	for _, center := range []r3.Vector{
		{X: 1, Y: 1, Z: 1},
		{X: 1e-200, Y: 1e-200, Z: 1e-200},
		{X: 1e200, Y: 1e200, Z: 1e200},
	} {
		hits, err := idx.SearchAround(ctx, center, s1.Degree)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"huge", "tiny", "unit"}, values(hits), "center %v", center)

		_, ok, err := idx.Nearest(ctx, center, s1.Degree)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestNearest(t *testing.T) {
	g, err := geodesic.New(4)
	require.NoError(t, err)
	idx, err := New[string](g, 4)
	require.NoError(t, err)

	for name, v := range map[string]r3.Vector{
		"x":  {X: 1},
		"xy": {X: 1, Y: 0.05},
		"y":  {Y: 1},
	} {
		_, err := idx.Insert(v, name)
		require.NoError(t, err)
	}

	ctx := context.Background()

	e, ok, err := idx.Nearest(ctx, r3.Vector{X: 1, Y: 0.04}, 10*s1.Degree)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "xy", e.Value)

	e, ok, err = idx.Nearest(ctx, r3.Vector{X: 1, Y: -0.01}, 10*s1.Degree)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "x", e.Value)

	_, ok, err = idx.Nearest(ctx, r3.Vector{Z: 1}, 10*s1.Degree)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = idx.Nearest(ctx, r3.Vector{Z: 1}, -1)
	assert.ErrorIs(t, err, ErrInvalidRadius)
}

func TestSearchAroundMany(t *testing.T) {
	idx, rng := newTestIndex(t, 5, 2000, WithConcurrency(3))
	ctx := context.Background()

	centers := rng.UnitVectors(25)
	radius := 15 * s1.Degree

	got, err := idx.SearchAroundMany(ctx, centers, radius)
	require.NoError(t, err)
	require.Len(t, got, len(centers))

	for i, center := range centers {
		want, err := idx.SearchAround(ctx, center, radius)
		require.NoError(t, err)
		assert.Equal(t, want, got[i], "center %d", i)
	}

	t.Run("failing center", func(t *testing.T) {
		bad := append(centers[:3:3], r3.Vector{})
		out, err := idx.SearchAroundMany(ctx, bad, radius)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, geodesic.ErrInvalidVector)
		assert.Contains(t, err.Error(), "center 3")
	})

	t.Run("empty", func(t *testing.T) {
		out, err := idx.SearchAroundMany(ctx, nil, radius)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestConcurrentAccess(t *testing.T) {
	idx, _ := newTestIndex(t, 4, 500)
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			rng := testutil.NewRNG(int64(w))
			for i := range 50 {
				if w%2 == 0 {
					_, err := idx.Insert(rng.UnitVector(), 1000*w+i)
					assert.NoError(t, err)
					continue
				}
				_, err := idx.SearchAround(ctx, rng.UnitVector(), 0.3)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 500+4*50, idx.Len())
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := geodesic.NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	idx, _ := newTestIndex(t, 3, 100, WithLogger(logger))
	_, err := idx.SearchAround(context.Background(), r3.Vector{X: 1}, 0.2)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "zone index search")
	assert.Contains(t, buf.String(), "level=3")

	buf.Reset()
	zone, err := idx.Insert(r3.Vector{Z: 1}, -1)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "zone index insert")
	assert.Contains(t, buf.String(), fmt.Sprintf("zone=%d", zone))
}

func BenchmarkSearchAround(b *testing.B) {
	idx, rng := newTestIndex(b, 7, 100000)
	centers := rng.UnitVectors(256)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	i := 0
	for b.Loop() {
		_, _ = idx.SearchAround(ctx, centers[i&255], 2*s1.Degree)
		i++
	}
}
