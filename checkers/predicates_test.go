package checkers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geos"

	"github.com/bsaid97/go-topology-checker/geometry"
)

func geosBox(t *testing.T, minX, minY, maxX, maxY float64) *geos.Geom {
	t.Helper()
	feat := boxFeature(t, "x", "x", minX, minY, maxX, maxY)
	g, err := geometry.ToGeos(feat.Geometry)
	require.NoError(t, err)
	t.Cleanup(func() { g.Destroy() })
	return g
}

func TestIntersectsWithAreaOverlap(t *testing.T) {
	preds := NewPredicates(1e-9)
	a := geosBox(t, 0, 0, 2, 2)
	b := geosBox(t, 1, 1, 3, 3)

	region, area, err := preds.IntersectsWithArea(a, b, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, region, 1)
	assert.InDelta(t, 1.0, area, 1e-9)
}

func TestIntersectsWithAreaBoundaryTouch(t *testing.T) {
	preds := NewPredicates(1e-9)
	a := geosBox(t, 0, 0, 1, 1)
	b := geosBox(t, 1, 0, 2, 1)

	region, area, err := preds.IntersectsWithArea(a, b, []string{"a", "b"})
	require.NoError(t, err)
	assert.Empty(t, region, "shared edge has zero area")
	assert.Zero(t, area)
}

func TestContainsExcludesIdentity(t *testing.T) {
	preds := NewPredicates(1e-9)
	a := geosBox(t, 0, 0, 4, 4)
	b := geosBox(t, 1, 1, 2, 2)
	twin := geosBox(t, 0, 0, 4, 4)

	contained, err := preds.Contains(a, b, []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, contained)

	contained, err = preds.Contains(b, a, []string{"b", "a"})
	require.NoError(t, err)
	assert.False(t, contained)

	contained, err = preds.Contains(a, twin, []string{"a", "twin"})
	require.NoError(t, err)
	assert.False(t, contained, "identical geometries are not containment")
}

func TestUnionAreaCountsOverlapOnce(t *testing.T) {
	preds := NewPredicates(1e-9)
	a := geosBox(t, 0, 0, 2, 2)
	b := geosBox(t, 1, 1, 3, 3)

	area, err := preds.UnionArea([]*geos.Geom{a, b}, []string{"a", "b"})
	require.NoError(t, err)
	assert.InDelta(t, 7.0, area, 1e-9, "4 + 4 minus the shared 1")
}

func TestUnionDoesNotConsumeInputs(t *testing.T) {
	preds := NewPredicates(1e-9)
	a := geosBox(t, 0, 0, 1, 1)
	b := geosBox(t, 2, 0, 3, 1)

	union, err := preds.Union([]*geos.Geom{a, b}, []string{"a", "b"})
	require.NoError(t, err)
	defer union.Destroy()

	assert.InDelta(t, 2.0, union.Area(), 1e-9)
	assert.InDelta(t, 1.0, a.Area(), 1e-9, "input still usable after union")
}

func TestUnionEmptyInput(t *testing.T) {
	preds := NewPredicates(1e-9)
	_, err := preds.Union(nil, nil)
	var perr *PredicateError
	require.ErrorAs(t, err, &perr)
}

func TestConvexHull(t *testing.T) {
	preds := NewPredicates(1e-9)
	a := geosBox(t, 0, 0, 1, 1)

	hull, err := preds.ConvexHull(a, []string{"a"})
	require.NoError(t, err)
	defer hull.Destroy()
	assert.InDelta(t, 1.0, hull.Area(), 1e-9)
}
