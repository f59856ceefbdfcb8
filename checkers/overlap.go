package checkers

import (
	"context"
	"sort"
)

// checkOverlaps finds every pair of polygon features whose interiors
// intersect with positive area. Candidate pairs come from the spatial index;
// each unordered pair is evaluated once, with the lexicographically smaller
// id as the anchor. Predicate failures skip the pair and leave a warning.
func checkOverlaps(ctx context.Context, rc *runContext) ([]Finding, []Warning, error) {
	var findings []Finding
	var warnings []Warning

	for _, id := range rc.order {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		fg := rc.feats[id]
		if !fg.polygon {
			continue
		}

		candidates := rc.index.Query(fg.bounds)
		sort.Strings(candidates)
		for _, cid := range candidates {
			// Deduplicate unordered pairs: only the smaller id anchors.
			if cid <= id {
				continue
			}
			other := rc.feats[cid]
			if !other.polygon {
				continue
			}
			if !inScope(rc.cfg.OverlapScope, fg.feat.Source, other.feat.Source) {
				continue
			}

			pair := []string{id, cid}
			region, area, err := rc.preds.IntersectsWithArea(fg.geom, other.geom, pair)
			if err != nil {
				warnings = append(warnings, Warning{
					Op:       "intersects-with-area",
					Features: pair,
					Message:  err.Error(),
				})
				continue
			}
			if len(region) == 0 || area < rc.cfg.OverlapMinArea {
				continue
			}
			findings = append(findings, Finding{
				Kind:     KindOverlap,
				Features: pair,
				Region:   region,
				Measure:  area,
			})
		}
	}
	return findings, warnings, nil
}
