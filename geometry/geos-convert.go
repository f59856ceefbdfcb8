package geometry

import (
	"fmt"

	"github.com/twpayne/go-geos"
)

// ToGeos builds a GEOS geometry from a model geometry. The caller owns the
// returned geometry and must Destroy it. GEOS construction failures surface
// as errors, never as panics.
func ToGeos(g Geometry) (geom *geos.Geom, err error) {
	defer func() {
		if r := recover(); r != nil {
			geom = nil
			err = fmt.Errorf("geos construction failed: %v", r)
		}
	}()

	switch s := g.(type) {
	case Point:
		return geos.NewPoint([]float64{s.Coord.X, s.Coord.Y}), nil
	case Polyline:
		return geos.NewLineString(coordSlice(s.Coords)), nil
	case Polygon:
		rings := make([][][]float64, 0, 1+len(s.Holes))
		rings = append(rings, coordSlice(s.Outer))
		for _, hole := range s.Holes {
			rings = append(rings, coordSlice(hole))
		}
		return geos.NewPolygon(rings), nil
	default:
		return nil, fmt.Errorf("unsupported geometry variant %T", g)
	}
}

func coordSlice(coords []Coord) [][]float64 {
	out := make([][]float64, len(coords))
	for i, c := range coords {
		out[i] = []float64{c.X, c.Y}
	}
	return out
}

// PolygonsFromGeos extracts the polygonal parts of a GEOS geometry as model
// polygons. MultiPolygons and collections are flattened; point and line
// parts are dropped. Empty geometries yield an empty slice.
func PolygonsFromGeos(geom *geos.Geom) ([]Polygon, error) {
	if geom == nil {
		return nil, fmt.Errorf("nil geos geometry")
	}
	if geom.IsEmpty() {
		return nil, nil
	}
	switch geom.TypeID() {
	case geos.TypeIDPolygon:
		poly, err := polygonFromGeos(geom)
		if err != nil {
			return nil, err
		}
		return []Polygon{poly}, nil
	case geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		var out []Polygon
		for i := 0; i < geom.NumGeometries(); i++ {
			parts, err := PolygonsFromGeos(geom.Geometry(i))
			if err != nil {
				return nil, err
			}
			out = append(out, parts...)
		}
		return out, nil
	default:
		return nil, nil
	}
}

func polygonFromGeos(geom *geos.Geom) (Polygon, error) {
	outer := geom.ExteriorRing()
	if outer == nil {
		return Polygon{}, fmt.Errorf("polygon without exterior ring")
	}
	poly := Polygon{Outer: ringFromGeos(outer)}
	for i := 0; i < geom.NumInteriorRings(); i++ {
		poly.Holes = append(poly.Holes, ringFromGeos(geom.InteriorRing(i)))
	}
	return poly, nil
}

func ringFromGeos(ring *geos.Geom) []Coord {
	seq := ring.CoordSeq()
	coords := make([]Coord, seq.Size())
	for i := 0; i < seq.Size(); i++ {
		coords[i] = Coord{X: seq.X(i), Y: seq.Y(i)}
	}
	return coords
}
