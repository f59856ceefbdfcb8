package utils

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(minX, minY, maxX, maxY float64) r2.Rect {
	return r2.RectFromPoints(r2.Point{X: minX, Y: minY}, r2.Point{X: maxX, Y: maxY})
}

func TestBuildSpatialIndexEmpty(t *testing.T) {
	_, err := BuildSpatialIndex(nil)
	var buildErr *IndexBuildError
	require.ErrorAs(t, err, &buildErr)
}

func TestQuerySingleEntry(t *testing.T) {
	si, err := BuildSpatialIndex([]IndexEntry{{Bounds: rect(0, 0, 1, 1), ID: "a"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, si.Query(rect(0.5, 0.5, 2, 2)))
	assert.Empty(t, si.Query(rect(5, 5, 6, 6)))
}

func TestQueryTouchingBoxesAreCandidates(t *testing.T) {
	// Adjacent unit squares share an edge; the index must return both as
	// candidates since exact classification happens downstream.
	si, err := BuildSpatialIndex([]IndexEntry{
		{Bounds: rect(0, 0, 1, 1), ID: "a"},
		{Bounds: rect(1, 0, 2, 1), ID: "b"},
	})
	require.NoError(t, err)

	got := si.Query(rect(0, 0, 1, 1))
	sort.Strings(got)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestQueryMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	entries := make([]IndexEntry, 1000)
	for i := range entries {
		x := rng.Float64() * 100
		y := rng.Float64() * 100
		w := rng.Float64() * 5
		h := rng.Float64() * 5
		entries[i] = IndexEntry{Bounds: rect(x, y, x+w, y+h), ID: fmt.Sprintf("f%04d", i)}
	}

	si, err := BuildSpatialIndex(entries)
	require.NoError(t, err)
	require.Equal(t, len(entries), si.Size())

	for q := 0; q < 50; q++ {
		x := rng.Float64() * 100
		y := rng.Float64() * 100
		query := rect(x, y, x+rng.Float64()*20, y+rng.Float64()*20)

		var want []string
		for _, e := range entries {
			if e.Bounds.Intersects(query) {
				want = append(want, e.ID)
			}
		}
		got := si.Query(query)
		sort.Strings(want)
		sort.Strings(got)
		require.Equal(t, want, got, "query %d", q)
	}
}
