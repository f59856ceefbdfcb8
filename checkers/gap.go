package checkers

import (
	"context"
	"fmt"
	"sort"

	"github.com/twpayne/go-geos"

	"github.com/bsaid97/go-topology-checker/geometry"
)

// checkGaps reports voids in the coverage of each comparison group. Per
// group: union all polygon features, derive the expected coverage envelope
// (declared boundary or convex hull of the union), subtract the union from
// the envelope, and report every remaining component above the minimum
// area. Voids touching the envelope edge are reported unless the
// configuration excludes them.
func checkGaps(ctx context.Context, rc *runContext) ([]Finding, []Warning, error) {
	var findings []Finding
	var warnings []Warning

	for _, group := range groupNames(rc) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		groupFindings, groupWarnings := checkGroupGaps(ctx, rc, group)
		findings = append(findings, groupFindings...)
		warnings = append(warnings, groupWarnings...)
	}
	return findings, warnings, nil
}

func groupNames(rc *runContext) []string {
	seen := make(map[string]bool)
	var names []string
	for _, id := range rc.order {
		g := rc.feats[id].feat.Source
		if !seen[g] {
			seen[g] = true
			names = append(names, g)
		}
	}
	sort.Strings(names)
	return names
}

func checkGroupGaps(ctx context.Context, rc *runContext, group string) ([]Finding, []Warning) {
	var members []string
	var geoms []*geos.Geom
	for _, id := range rc.order {
		fg := rc.feats[id]
		if fg.feat.Source == group && fg.polygon {
			members = append(members, id)
			geoms = append(geoms, fg.geom)
		}
	}
	if len(geoms) == 0 {
		return nil, nil
	}

	union, err := rc.preds.Union(geoms, members)
	if err != nil {
		return nil, []Warning{{Op: "union", Features: members, Message: err.Error()}}
	}
	defer union.Destroy()

	envelope, err := groupEnvelope(rc, group, union, members)
	if err != nil {
		return nil, []Warning{{Op: "envelope", Features: members, Message: err.Error()}}
	}
	defer envelope.Destroy()

	var findings []Finding
	var warnings []Warning
	perr := rc.preds.guard("gap-difference", members, func() error {
		voids := envelope.Difference(union)
		if voids == nil {
			return fmt.Errorf("nil difference result")
		}
		defer voids.Destroy()

		edge := envelope.Boundary()
		if edge == nil {
			return fmt.Errorf("nil envelope boundary")
		}
		defer edge.Destroy()

		forEachPolygonPart(voids, func(void *geos.Geom) {
			area := void.Area()
			if area <= rc.cfg.Tolerance || area < rc.cfg.GapMinArea {
				return
			}
			if rc.cfg.ExcludeEdgeGaps && void.Intersects(edge) {
				return
			}
			region, convErr := geometry.PolygonsFromGeos(void)
			if convErr != nil || len(region) == 0 {
				warnings = append(warnings, Warning{
					Op:       "gap-region",
					Features: members,
					Message:  fmt.Sprintf("void region conversion failed: %v", convErr),
				})
				return
			}
			touchers, touchWarnings := voidTouchers(rc, group, void)
			warnings = append(warnings, touchWarnings...)
			findings = append(findings, Finding{
				Kind:     KindGap,
				Features: touchers,
				Region:   region,
				Measure:  area,
			})
		})
		return nil
	})
	if perr != nil {
		warnings = append(warnings, Warning{Op: "gap-difference", Features: members, Message: perr.Error()})
	}
	return findings, warnings
}

// groupEnvelope returns the expected coverage boundary for a group: the
// declared boundary when configured, the convex hull of the group union
// otherwise. The caller owns the result.
func groupEnvelope(rc *runContext, group string, union *geos.Geom, members []string) (*geos.Geom, error) {
	if boundary, ok := rc.cfg.Boundaries[group]; ok {
		return geometry.ToGeos(boundary)
	}
	return rc.preds.ConvexHull(union, members)
}

// voidTouchers lists the ids of group features adjacent to the void, the
// way the defect is reported to users: a gap is located by its neighbors.
func voidTouchers(rc *runContext, group string, void *geos.Geom) ([]string, []Warning) {
	var warnings []Warning
	var touchers []string
	for _, cid := range rc.index.Query(rectFromBox2D(void.Bounds())) {
		fg := rc.feats[cid]
		if fg.feat.Source != group || !fg.polygon {
			continue
		}
		touches, err := rc.preds.Touches(void, fg.geom, []string{cid})
		if err != nil {
			warnings = append(warnings, Warning{Op: "touches", Features: []string{cid}, Message: err.Error()})
			continue
		}
		if touches {
			touchers = append(touchers, cid)
		}
	}
	sort.Strings(touchers)
	return touchers, warnings
}

// forEachPolygonPart visits every polygonal component of g, flattening
// multi-geometries and collections.
func forEachPolygonPart(g *geos.Geom, fn func(*geos.Geom)) {
	if g == nil || g.IsEmpty() {
		return
	}
	switch g.TypeID() {
	case geos.TypeIDPolygon:
		fn(g)
	case geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		for i := 0; i < g.NumGeometries(); i++ {
			forEachPolygonPart(g.Geometry(i), fn)
		}
	}
}
