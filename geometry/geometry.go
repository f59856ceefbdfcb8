// Package geometry holds the normalized in-memory geometry model shared by
// all checkers: value-semantic coordinates, the Point/Polyline/Polygon
// variants, and the Feature record that ties a geometry to its source file.
package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// Coord is a position in a single projected coordinate reference system.
// Callers reproject before loading; the model never converts coordinates.
type Coord struct {
	X float64
	Y float64
}

// Geometry is the closed set of shape variants the checkers operate on.
// Predicates match exhaustively on the concrete type.
type Geometry interface {
	// Bounds returns the minimal axis-aligned rectangle enclosing the shape.
	Bounds() r2.Rect
	isGeometry()
}

// Point is a single position.
type Point struct {
	Coord Coord
}

// Polyline is an ordered, open sequence of positions.
type Polyline struct {
	Coords []Coord
}

// Polygon is a closed outer ring with zero or more hole rings. Rings are
// closed (first == last) and simple; NewPolygon enforces both.
type Polygon struct {
	Outer []Coord
	Holes [][]Coord
}

func (Point) isGeometry()    {}
func (Polyline) isGeometry() {}
func (Polygon) isGeometry()  {}

// Feature is one record of the dataset under check. Immutable after load.
type Feature struct {
	ID       string
	Source   string
	Geometry Geometry
}

func (p Point) Bounds() r2.Rect {
	return r2.RectFromPoints(r2.Point{X: p.Coord.X, Y: p.Coord.Y})
}

func (l Polyline) Bounds() r2.Rect {
	return boundsOf(l.Coords)
}

func (p Polygon) Bounds() r2.Rect {
	// Holes lie inside the outer ring and cannot extend the bounds.
	return boundsOf(p.Outer)
}

func boundsOf(coords []Coord) r2.Rect {
	rect := r2.EmptyRect()
	for _, c := range coords {
		rect = rect.AddPoint(r2.Point{X: c.X, Y: c.Y})
	}
	return rect
}

// Length returns the total length of the polyline.
func (l Polyline) Length() float64 {
	var total float64
	for i := 1; i < len(l.Coords); i++ {
		total += math.Hypot(l.Coords[i].X-l.Coords[i-1].X, l.Coords[i].Y-l.Coords[i-1].Y)
	}
	return total
}

// Area returns the polygon area with hole areas subtracted.
func (p Polygon) Area() float64 {
	area := ringArea(p.Outer)
	for _, hole := range p.Holes {
		area -= ringArea(hole)
	}
	if area < 0 {
		return 0
	}
	return area
}

// ringArea returns the absolute shoelace area of a closed ring.
func ringArea(ring []Coord) float64 {
	var sum float64
	for i := 1; i < len(ring); i++ {
		sum += ring[i-1].X*ring[i].Y - ring[i].X*ring[i-1].Y
	}
	return math.Abs(sum) / 2
}

// ContainsCoord reports whether c lies inside the polygon (outer ring minus
// holes) using even-odd ray casting. Points exactly on an edge may land on
// either side; exact boundary classification belongs to the predicates.
func (p Polygon) ContainsCoord(c Coord) bool {
	if !ringContains(p.Outer, c) {
		return false
	}
	for _, hole := range p.Holes {
		if ringContains(hole, c) {
			return false
		}
	}
	return true
}

func ringContains(ring []Coord, c Coord) bool {
	inside := false
	for i := 1; i < len(ring); i++ {
		a, b := ring[i-1], ring[i]
		if (a.Y > c.Y) != (b.Y > c.Y) {
			x := a.X + (c.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if c.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
