package checkers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bsaid97/go-topology-checker/geometry"
)

func boxFeature(t *testing.T, id, source string, minX, minY, maxX, maxY float64) geometry.Feature {
	t.Helper()
	ring := []geometry.Coord{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
		{X: minX, Y: minY},
	}
	p, err := geometry.NewPolygon(ring, nil, 1e-9)
	require.NoError(t, err)
	return geometry.Feature{ID: id, Source: source, Geometry: p}
}

func runCheck(t *testing.T, cfg Config, features []geometry.Feature) *Report {
	t.Helper()
	runner, err := NewRunner(cfg, nil)
	require.NoError(t, err)
	report, err := runner.Run(context.Background(), features)
	require.NoError(t, err)
	return report
}
