package checkers

import (
	"fmt"
	"strings"

	"github.com/twpayne/go-geos"

	"github.com/bsaid97/go-topology-checker/geometry"
)

// PredicateError reports a numerical failure inside a geometric computation.
// Recovered at the pair level: the offending pair is skipped with a warning,
// the run continues.
type PredicateError struct {
	Op       string
	Features []string
	Err      error
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("predicate %s failed for [%s]: %v", e.Op, strings.Join(e.Features, ", "), e.Err)
}

func (e *PredicateError) Unwrap() error {
	return e.Err
}

// Predicates bundles the exact geometric tests over GEOS geometries. GEOS
// signals hard numerical failures by panicking through the binding, so every
// predicate runs under a recover guard that converts the panic into a
// PredicateError.
type Predicates struct {
	tolerance float64
}

// NewPredicates returns predicates applying the given tolerance.
func NewPredicates(tolerance float64) *Predicates {
	return &Predicates{tolerance: tolerance}
}

func (p *Predicates) guard(op string, features []string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PredicateError{Op: op, Features: features, Err: fmt.Errorf("%v", r)}
		}
	}()
	return fn()
}

// IntersectsWithArea tests whether the interiors of a and b intersect with
// positive area. Boundary-only touching is not an overlap: intersections
// whose area is at or below the tolerance report no region. On overlap it
// returns the intersection region and its area.
func (p *Predicates) IntersectsWithArea(a, b *geos.Geom, ids []string) ([]geometry.Polygon, float64, error) {
	var region []geometry.Polygon
	var area float64
	err := p.guard("intersects-with-area", ids, func() error {
		if !a.Intersects(b) {
			return nil
		}
		intersection := a.Intersection(b)
		if intersection == nil {
			return fmt.Errorf("nil intersection")
		}
		defer intersection.Destroy()

		area = intersection.Area()
		if area <= p.tolerance {
			area = 0
			return nil
		}
		var err error
		region, err = geometry.PolygonsFromGeos(intersection)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return region, area, nil
}

// Contains reports whether a wholly encloses b. Geometric identity is not
// containment: equal geometries report false.
func (p *Predicates) Contains(a, b *geos.Geom, ids []string) (bool, error) {
	var contained bool
	err := p.guard("contains", ids, func() error {
		contained = a.Contains(b) && !a.Equals(b)
		return nil
	})
	return contained, err
}

// Touches reports whether a and b share boundary points without sharing
// interior points.
func (p *Predicates) Touches(a, b *geos.Geom, ids []string) (bool, error) {
	var touches bool
	err := p.guard("touches", ids, func() error {
		touches = a.Touches(b)
		return nil
	})
	return touches, err
}

// Union computes the set union of the geometries by cascaded pairwise
// unioning, which keeps intermediate results balanced instead of degrading
// to a linear accumulation. Inputs are not consumed; the caller owns the
// returned geometry.
func (p *Predicates) Union(geoms []*geos.Geom, ids []string) (*geos.Geom, error) {
	if len(geoms) == 0 {
		return nil, &PredicateError{Op: "union", Features: ids, Err: fmt.Errorf("no geometries")}
	}
	var result *geos.Geom
	err := p.guard("union", ids, func() error {
		result = cascadedUnion(geoms)
		if result == nil {
			return fmt.Errorf("nil union result")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// cascadedUnion unions by divide and conquer. Leaves are cloned so every
// intermediate is owned here and the inputs survive.
func cascadedUnion(geoms []*geos.Geom) *geos.Geom {
	if len(geoms) == 1 {
		return geoms[0].Clone()
	}
	mid := len(geoms) / 2
	left := cascadedUnion(geoms[:mid])
	right := cascadedUnion(geoms[mid:])
	result := left.Union(right)
	left.Destroy()
	right.Destroy()
	return result
}

// UnionArea returns the area of the set union of the geometries. Overlapping
// inputs are counted once.
func (p *Predicates) UnionArea(geoms []*geos.Geom, ids []string) (float64, error) {
	union, err := p.Union(geoms, ids)
	if err != nil {
		return 0, err
	}
	defer union.Destroy()

	var area float64
	err = p.guard("union-area", ids, func() error {
		area = union.Area()
		return nil
	})
	return area, err
}

// ConvexHull returns the convex hull of g. The caller owns the result.
func (p *Predicates) ConvexHull(g *geos.Geom, ids []string) (*geos.Geom, error) {
	var hull *geos.Geom
	err := p.guard("convex-hull", ids, func() error {
		hull = g.ConvexHull()
		if hull == nil {
			return fmt.Errorf("nil hull result")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hull, nil
}
