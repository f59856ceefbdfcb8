package checkers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsaid97/go-topology-checker/geometry"
)

func regionAt(minX, minY, maxX, maxY float64) []geometry.Polygon {
	return []geometry.Polygon{{Outer: []geometry.Coord{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
		{X: minX, Y: minY},
	}}}
}

func TestAggregateSupersession(t *testing.T) {
	overlaps := []Finding{
		{Kind: KindOverlap, Features: []string{"a", "b"}, Region: regionAt(0, 0, 1, 1), Measure: 1},
		{Kind: KindOverlap, Features: []string{"c", "d"}, Region: regionAt(5, 5, 6, 6), Measure: 1},
	}
	// Containment reports outer-then-inner; it must supersede the overlap
	// for the same unordered pair.
	containments := []Finding{
		{Kind: KindContainment, Features: []string{"b", "a"}, Region: regionAt(0, 0, 1, 1), Measure: 1},
	}

	report := aggregate(1e-9, overlaps, containments, nil, nil)
	require.Len(t, report.Findings, 2)
	assert.Equal(t, KindOverlap, report.Findings[0].Kind)
	assert.Equal(t, []string{"c", "d"}, report.Findings[0].Features)
	assert.Equal(t, KindContainment, report.Findings[1].Kind)
}

func TestAggregateDedupe(t *testing.T) {
	dup := Finding{Kind: KindOverlap, Features: []string{"a", "b"}, Region: regionAt(0, 0, 1, 1), Measure: 1}
	report := aggregate(1e-9, []Finding{dup, dup}, nil, nil, nil)
	assert.Len(t, report.Findings, 1)
}

func TestAggregateKeepsDistinctGaps(t *testing.T) {
	gaps := []Finding{
		{Kind: KindGap, Features: []string{"a", "b"}, Region: regionAt(0, 0, 1, 1), Measure: 1},
		{Kind: KindGap, Features: []string{"a", "b"}, Region: regionAt(3, 3, 4, 4), Measure: 1},
	}
	report := aggregate(1e-9, nil, nil, gaps, nil)
	assert.Len(t, report.Findings, 2, "same touchers, different regions")
}

func TestAggregateOrderDeterministic(t *testing.T) {
	overlaps := []Finding{
		{Kind: KindOverlap, Features: []string{"x", "y"}, Region: regionAt(9, 9, 10, 10), Measure: 1},
		{Kind: KindOverlap, Features: []string{"a", "b"}, Region: regionAt(0, 0, 1, 1), Measure: 1},
	}
	gaps := []Finding{
		{Kind: KindGap, Features: nil, Region: regionAt(2, 2, 3, 3), Measure: 1},
	}

	report := aggregate(1e-9, overlaps, nil, gaps, nil)
	require.Len(t, report.Findings, 3)
	assert.Equal(t, []string{"a", "b"}, report.Findings[0].Features)
	assert.Equal(t, []string{"x", "y"}, report.Findings[1].Features)
	assert.Equal(t, KindGap, report.Findings[2].Kind)
}

func TestReportEmpty(t *testing.T) {
	report := aggregate(1e-9, nil, nil, nil, nil)
	assert.True(t, report.Empty())

	withWarn := aggregate(1e-9, nil, nil, nil, []Warning{{Op: "contains", Message: "boom"}})
	assert.False(t, withWarn.Empty(), "warnings mean the run may be incomplete")
}
