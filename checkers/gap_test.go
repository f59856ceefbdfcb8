package checkers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsaid97/go-topology-checker/geometry"
)

func strip(t *testing.T) []geometry.Feature {
	return []geometry.Feature{
		boxFeature(t, "a", "tiles", 0, 0, 1, 1),
		boxFeature(t, "b", "tiles", 1, 0, 2, 1),
		boxFeature(t, "c", "tiles", 2, 0, 3, 1),
	}
}

func TestGapNoneOnExactTiling(t *testing.T) {
	report := runCheck(t, DefaultConfig(), strip(t))
	assert.Empty(t, report.Findings)
	assert.Empty(t, report.Warnings)
}

func TestGapShrunkMiddleTile(t *testing.T) {
	// Middle tile shrunk to (1.2,0.2)-(1.8,0.8): the strip's coverage misses
	// the border region around it, one connected void of area 1 - 0.36 plus
	// nothing else (outer tiles still span the full envelope height).
	features := []geometry.Feature{
		boxFeature(t, "a", "tiles", 0, 0, 1, 1),
		boxFeature(t, "b", "tiles", 1.2, 0.2, 1.8, 0.8),
		boxFeature(t, "c", "tiles", 2, 0, 3, 1),
	}
	report := runCheck(t, DefaultConfig(), features)

	assert.Empty(t, report.ByKind(KindOverlap))
	assert.Empty(t, report.ByKind(KindContainment))

	gaps := report.ByKind(KindGap)
	require.Len(t, gaps, 1)
	assert.InDelta(t, 0.64, gaps[0].Measure, 1e-9)
	assert.Equal(t, []string{"a", "b", "c"}, gaps[0].Features, "void touches all three tiles")
}

func TestGapRemovedInteriorTile(t *testing.T) {
	// 3x3 grid of unit squares minus the center: exactly one void whose
	// area equals the removed tile.
	var features []geometry.Feature
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if row == 1 && col == 1 {
				continue
			}
			id := string(rune('a' + row*3 + col))
			features = append(features, boxFeature(t, id, "tiles",
				float64(col), float64(row), float64(col+1), float64(row+1)))
		}
	}
	report := runCheck(t, DefaultConfig(), features)

	gaps := report.ByKind(KindGap)
	require.Len(t, gaps, 1)
	assert.InDelta(t, 1.0, gaps[0].Measure, 1e-9)

	require.Len(t, gaps[0].Region, 1)
	bounds := gaps[0].Region[0].Bounds()
	assert.InDelta(t, 1.0, bounds.X.Lo, 1e-9)
	assert.InDelta(t, 2.0, bounds.X.Hi, 1e-9)
	assert.InDelta(t, 1.0, bounds.Y.Lo, 1e-9)
	assert.InDelta(t, 2.0, bounds.Y.Hi, 1e-9)
}

func TestGapExcludeEdgeGaps(t *testing.T) {
	features := []geometry.Feature{
		boxFeature(t, "a", "tiles", 0, 0, 1, 1),
		boxFeature(t, "b", "tiles", 1.2, 0.2, 1.8, 0.8),
		boxFeature(t, "c", "tiles", 2, 0, 3, 1),
	}

	cfg := DefaultConfig()
	cfg.ExcludeEdgeGaps = true
	report := runCheck(t, cfg, features)
	assert.Empty(t, report.ByKind(KindGap), "void touches the envelope edge")
}

func TestGapMinAreaFloor(t *testing.T) {
	features := []geometry.Feature{
		boxFeature(t, "a", "tiles", 0, 0, 1, 1),
		boxFeature(t, "b", "tiles", 1.2, 0.2, 1.8, 0.8),
		boxFeature(t, "c", "tiles", 2, 0, 3, 1),
	}

	cfg := DefaultConfig()
	cfg.GapMinArea = 1.0
	report := runCheck(t, cfg, features)
	assert.Empty(t, report.ByKind(KindGap), "0.64 void is below the 1.0 floor")
}

func TestGapGroupsCheckedSeparately(t *testing.T) {
	// Two groups each tiling their own region exactly: the space between
	// the groups is not a gap in either group's coverage.
	features := []geometry.Feature{
		boxFeature(t, "a", "east", 0, 0, 1, 1),
		boxFeature(t, "b", "east", 1, 0, 2, 1),
		boxFeature(t, "c", "west", 10, 0, 11, 1),
		boxFeature(t, "d", "west", 11, 0, 12, 1),
	}
	report := runCheck(t, DefaultConfig(), features)
	assert.Empty(t, report.ByKind(KindGap))
}

func TestGapDeclaredBoundary(t *testing.T) {
	// Declared boundary wider than the union: the uncovered margin inside
	// the declared boundary is a gap even though the hull alone would show
	// none.
	boundary, err := geometry.NewPolygon([]geometry.Coord{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0},
	}, nil, 1e-9)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Boundaries = map[string]geometry.Polygon{"tiles": boundary}
	report := runCheck(t, cfg, strip(t))

	gaps := report.ByKind(KindGap)
	require.Len(t, gaps, 1)
	assert.InDelta(t, 1.0, gaps[0].Measure, 1e-9)
}
