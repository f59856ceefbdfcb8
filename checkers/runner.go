// Package checkers implements the topology checking engine: exact geometric
// predicates, the overlap, containment and gap checkers, and the runner that
// fans them out over a shared read-only spatial index and merges their
// findings into a report.
package checkers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang/geo/r2"
	"github.com/twpayne/go-geos"
	"golang.org/x/sync/errgroup"

	"github.com/bsaid97/go-topology-checker/geometry"
	"github.com/bsaid97/go-topology-checker/utils"
)

// Runner executes one full topology check: index build, the three checkers
// in parallel, aggregation. Stateless between runs; safe to reuse.
type Runner struct {
	cfg Config
	log *slog.Logger
}

// NewRunner validates the configuration and returns a runner.
func NewRunner(cfg Config, logger *slog.Logger) (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, log: logger}, nil
}

// featureGeom pairs a feature with its GEOS form, cached once per run so
// the checkers never re-convert.
type featureGeom struct {
	feat    geometry.Feature
	geom    *geos.Geom
	bounds  r2.Rect
	polygon bool
}

// runContext is the per-invocation state shared read-only by the checkers.
// Nothing in it survives the run.
type runContext struct {
	cfg   Config
	preds *Predicates
	index *utils.SpatialIndex
	feats map[string]*featureGeom
	order []string
}

// Run checks the feature set and returns the aggregated report. The input
// must be non-empty with unique feature ids and geometries satisfying the
// model invariants; violations are rejected, never repaired. Cancellation
// via ctx aborts between feature iterations without a partial report.
func (r *Runner) Run(ctx context.Context, features []geometry.Feature) (*Report, error) {
	start := time.Now()

	rc, cleanup, err := r.prepare(features)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var overlaps, containments, gaps []Finding
	var overlapWarns, containWarns, gapWarns []Warning

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overlaps, overlapWarns, err = checkOverlaps(gctx, rc)
		return err
	})
	g.Go(func() error {
		var err error
		containments, containWarns, err = checkContainment(gctx, rc)
		return err
	})
	g.Go(func() error {
		var err error
		gaps, gapWarns, err = checkGaps(gctx, rc)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	warnings := append(append(overlapWarns, containWarns...), gapWarns...)
	report := aggregate(r.cfg.Tolerance, overlaps, containments, gaps, warnings)

	r.log.Info("check run complete",
		"features", len(features),
		"findings", len(report.Findings),
		"warnings", len(report.Warnings),
		"elapsed", time.Since(start),
	)
	return report, nil
}

// prepare converts the features to GEOS form, re-checks validity, and builds
// the spatial index. The returned cleanup releases every GEOS geometry.
func (r *Runner) prepare(features []geometry.Feature) (*runContext, func(), error) {
	feats := make(map[string]*featureGeom, len(features))
	order := make([]string, 0, len(features))
	entries := make([]utils.IndexEntry, 0, len(features))

	cleanup := func() {
		for _, fg := range feats {
			if fg.geom != nil {
				fg.geom.Destroy()
			}
		}
	}

	for _, feat := range features {
		if feat.ID == "" {
			cleanup()
			return nil, nil, fmt.Errorf("feature without id (source %q)", feat.Source)
		}
		if _, dup := feats[feat.ID]; dup {
			cleanup()
			return nil, nil, fmt.Errorf("duplicate feature id %q", feat.ID)
		}
		g, err := geometry.ToGeos(feat.Geometry)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("feature %q: %w", feat.ID, err)
		}
		if !g.IsValid() {
			reason := g.IsValidReason()
			g.Destroy()
			cleanup()
			return nil, nil, fmt.Errorf("feature %q: %w", feat.ID,
				&geometry.InvalidGeometryError{Reason: reason})
		}
		_, polygon := feat.Geometry.(geometry.Polygon)
		fg := &featureGeom{feat: feat, geom: g, bounds: feat.Geometry.Bounds(), polygon: polygon}
		feats[feat.ID] = fg
		order = append(order, feat.ID)
		entries = append(entries, utils.IndexEntry{Bounds: fg.bounds, ID: feat.ID})
	}

	index, err := utils.BuildSpatialIndex(entries)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	r.log.Debug("spatial index built", "entries", index.Size())

	rc := &runContext{
		cfg:   r.cfg,
		preds: NewPredicates(r.cfg.Tolerance),
		index: index,
		feats: feats,
		order: order,
	}
	return rc, cleanup, nil
}

// rectFromBox2D converts a GEOS bounding box to the model's rectangle type.
func rectFromBox2D(box *geos.Box2D) r2.Rect {
	return r2.RectFromPoints(
		r2.Point{X: box.MinX, Y: box.MinY},
		r2.Point{X: box.MaxX, Y: box.MaxY},
	)
}
