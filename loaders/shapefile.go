package loaders

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"

	"github.com/bsaid97/go-topology-checker/geometry"
)

// LoadShapefile reads polygon and polyline records from a shapefile. idField
// names the DBF attribute used as feature id; when empty or absent, record
// numbers are used. The file's base name becomes the source group.
func LoadShapefile(path, idField string, tolerance float64) ([]geometry.Feature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer reader.Close()

	idIdx := -1
	for i, field := range reader.Fields() {
		if strings.EqualFold(field.String(), idField) {
			idIdx = i
			break
		}
	}

	source := SourceName(path)
	var features []geometry.Feature
	for reader.Next() {
		row, shape := reader.Shape()
		id := fmt.Sprintf("%s-%d", source, row+1)
		if idIdx >= 0 {
			if attr := reader.ReadAttribute(row, idIdx); attr != "" {
				id = attr
			}
		}

		shapes, err := shapeToModel(shape, tolerance)
		if err != nil {
			return nil, fmt.Errorf("record %d (%q) in %s: %w", row, id, path, err)
		}
		features = append(features, attach(shapes, id, source)...)
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return features, nil
}

func shapeToModel(shape shp.Shape, tolerance float64) ([]geometry.Geometry, error) {
	switch s := shape.(type) {
	case *shp.Null:
		return nil, nil
	case *shp.Point:
		p, err := geometry.NewPoint(geometry.Coord{X: s.X, Y: s.Y})
		if err != nil {
			return nil, err
		}
		return []geometry.Geometry{p}, nil
	case *shp.PolyLine:
		var shapes []geometry.Geometry
		for _, part := range splitParts(s.Points, s.Parts) {
			l, err := geometry.NewPolyline(part, tolerance)
			if err != nil {
				return nil, err
			}
			shapes = append(shapes, l)
		}
		return shapes, nil
	case *shp.Polygon:
		return polygonsFromParts(splitParts(s.Points, s.Parts), tolerance)
	default:
		return nil, &geometry.InvalidGeometryError{Reason: fmt.Sprintf("unsupported shape type %T", shape)}
	}
}

// splitParts cuts the flat point array at the part offsets.
func splitParts(points []shp.Point, parts []int32) [][]geometry.Coord {
	if len(parts) == 0 {
		parts = []int32{0}
	}
	out := make([][]geometry.Coord, 0, len(parts))
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		coords := make([]geometry.Coord, 0, end-int(start))
		for _, p := range points[start:end] {
			coords = append(coords, geometry.Coord{X: p.X, Y: p.Y})
		}
		out = append(out, coords)
	}
	return out
}

// polygonsFromParts assembles rings into polygons by winding order: shapefile
// outer rings wind clockwise, holes counter-clockwise. Each hole goes to the
// outer ring containing its first vertex.
func polygonsFromParts(rings [][]geometry.Coord, tolerance float64) ([]geometry.Geometry, error) {
	var outers [][]geometry.Coord
	var holes [][]geometry.Coord
	for _, ring := range rings {
		if signedRingArea(ring) < 0 {
			outers = append(outers, ring)
		} else {
			holes = append(holes, ring)
		}
	}
	if len(outers) == 0 {
		// Degenerate winding: treat every ring as its own outer.
		outers, holes = rings, nil
	}

	holesByOuter := make([][][]geometry.Coord, len(outers))
	for _, hole := range holes {
		for i, outer := range outers {
			if (geometry.Polygon{Outer: outer}).ContainsCoord(hole[0]) {
				holesByOuter[i] = append(holesByOuter[i], hole)
				break
			}
		}
	}

	shapes := make([]geometry.Geometry, 0, len(outers))
	for i, outer := range outers {
		p, err := geometry.NewPolygon(outer, holesByOuter[i], tolerance)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, p)
	}
	return shapes, nil
}

// signedRingArea is the shoelace sum: negative for clockwise rings.
func signedRingArea(ring []geometry.Coord) float64 {
	var sum float64
	for i := 1; i < len(ring); i++ {
		sum += ring[i-1].X*ring[i].Y - ring[i].X*ring[i-1].Y
	}
	return sum / 2
}
