package checkers

import (
	"context"
	"sort"

	"github.com/bsaid97/go-topology-checker/geometry"
)

// checkContainment finds every feature wholly enclosed by another feature.
// Only polygons can contain; the contained feature may be any variant.
// Geometrically identical pairs are excluded by the predicate. Findings
// reference outer then inner.
func checkContainment(ctx context.Context, rc *runContext) ([]Finding, []Warning, error) {
	var findings []Finding
	var warnings []Warning

	for _, id := range rc.order {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		outer := rc.feats[id]
		if !outer.polygon {
			continue
		}

		candidates := rc.index.Query(outer.bounds)
		sort.Strings(candidates)
		for _, cid := range candidates {
			if cid == id {
				continue
			}
			inner := rc.feats[cid]
			if !inScope(rc.cfg.OverlapScope, outer.feat.Source, inner.feat.Source) {
				continue
			}

			pair := []string{id, cid}
			contained, err := rc.preds.Contains(outer.geom, inner.geom, pair)
			if err != nil {
				warnings = append(warnings, Warning{
					Op:       "contains",
					Features: pair,
					Message:  err.Error(),
				})
				continue
			}
			if !contained {
				continue
			}

			region, measure := containedRegion(inner.feat.Geometry)
			if inner.polygon && measure < rc.cfg.ContainmentMinArea {
				continue
			}
			findings = append(findings, Finding{
				Kind:     KindContainment,
				Features: pair,
				Region:   region,
				Measure:  measure,
			})
		}
	}
	return findings, warnings, nil
}

// containedRegion derives the finding region and measure from the inner
// feature: area for polygons, length for polylines, zero for points.
func containedRegion(g geometry.Geometry) ([]geometry.Polygon, float64) {
	switch s := g.(type) {
	case geometry.Polygon:
		return []geometry.Polygon{s}, s.Area()
	case geometry.Polyline:
		return nil, s.Length()
	default:
		return nil, 0
	}
}
