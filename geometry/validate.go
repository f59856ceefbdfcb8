package geometry

import (
	"fmt"
	"math"
)

// InvalidGeometryError reports a malformed input geometry. Raised at load
// validation; the caller decides whether to abort the file or the batch.
type InvalidGeometryError struct {
	Reason string
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("invalid geometry: %s", e.Reason)
}

func invalidf(format string, args ...interface{}) error {
	return &InvalidGeometryError{Reason: fmt.Sprintf(format, args...)}
}

// NewPoint validates a single coordinate.
func NewPoint(c Coord) (Point, error) {
	if !finite(c) {
		return Point{}, invalidf("non-finite coordinate (%v, %v)", c.X, c.Y)
	}
	return Point{Coord: c}, nil
}

// NewPolyline validates an open coordinate sequence of at least two
// positions.
func NewPolyline(coords []Coord, tolerance float64) (Polyline, error) {
	if len(coords) < 2 {
		return Polyline{}, invalidf("polyline has %d coordinates, need at least 2", len(coords))
	}
	for _, c := range coords {
		if !finite(c) {
			return Polyline{}, invalidf("non-finite coordinate (%v, %v)", c.X, c.Y)
		}
	}
	return Polyline{Coords: append([]Coord(nil), coords...)}, nil
}

// NewPolygon validates and normalizes the outer ring and holes: every ring
// must be finite, closed within tolerance, have at least 3 distinct
// vertices, and be simple. The returned polygon owns copies of the input
// rings with the closing coordinate snapped exactly onto the first.
func NewPolygon(outer []Coord, holes [][]Coord, tolerance float64) (Polygon, error) {
	normOuter, err := normalizeRing(outer, tolerance)
	if err != nil {
		return Polygon{}, fmt.Errorf("outer ring: %w", err)
	}
	normHoles := make([][]Coord, 0, len(holes))
	for i, hole := range holes {
		normHole, err := normalizeRing(hole, tolerance)
		if err != nil {
			return Polygon{}, fmt.Errorf("hole %d: %w", i, err)
		}
		normHoles = append(normHoles, normHole)
	}
	poly := Polygon{Outer: normOuter, Holes: normHoles}
	if err := checkSimple(poly); err != nil {
		return Polygon{}, err
	}
	return poly, nil
}

// normalizeRing copies the ring, verifies closure within tolerance and at
// least 3 distinct vertices, and snaps the closing coordinate.
func normalizeRing(ring []Coord, tolerance float64) ([]Coord, error) {
	if len(ring) < 4 {
		return nil, invalidf("ring has %d coordinates, need at least 4 (closed triangle)", len(ring))
	}
	for _, c := range ring {
		if !finite(c) {
			return nil, invalidf("non-finite coordinate (%v, %v)", c.X, c.Y)
		}
	}
	first, last := ring[0], ring[len(ring)-1]
	if math.Hypot(last.X-first.X, last.Y-first.Y) > tolerance {
		return nil, invalidf("ring is not closed: first (%v, %v) != last (%v, %v)", first.X, first.Y, last.X, last.Y)
	}
	out := append([]Coord(nil), ring...)
	out[len(out)-1] = out[0]
	if distinctCount(out, tolerance) < 3 {
		return nil, invalidf("ring has fewer than 3 distinct vertices")
	}
	return out, nil
}

func distinctCount(ring []Coord, tolerance float64) int {
	n := 0
	for i, c := range ring[:len(ring)-1] {
		dup := false
		for _, d := range ring[:i] {
			if math.Hypot(c.X-d.X, c.Y-d.Y) <= tolerance {
				dup = true
				break
			}
		}
		if !dup {
			n++
		}
	}
	return n
}

// checkSimple rejects self-intersecting rings. GEOS does the heavy lifting:
// the polygon is constructed and IsValid/IsValidReason report bowties,
// ring crossings and hole violations the same way the rest of the pipeline
// will see them.
func checkSimple(p Polygon) error {
	geom, err := ToGeos(p)
	if err != nil {
		return invalidf("unrepresentable polygon: %v", err)
	}
	defer geom.Destroy()
	if !geom.IsValid() {
		return invalidf("self-intersection: %s", geom.IsValidReason())
	}
	return nil
}

func finite(c Coord) bool {
	return !math.IsNaN(c.X) && !math.IsInf(c.X, 0) && !math.IsNaN(c.Y) && !math.IsInf(c.Y, 0)
}
