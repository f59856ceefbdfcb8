// Package loaders reads feature collections from disk into the geometry
// model, validating every ring on the way in, and writes check reports back
// out as GeoJSON. One bad feature aborts its file; batch callers isolate
// file failures from each other.
package loaders

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/bsaid97/go-topology-checker/geometry"
)

// LoadGeoJSON reads a GeoJSON feature collection. idField names the property
// used as feature id; when empty or missing, the GeoJSON feature id is used,
// then a sequential id. The file's base name becomes the features' source
// group.
func LoadGeoJSON(path, idField string, tolerance float64) ([]geometry.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseGeoJSON(data, SourceName(path), idField, tolerance)
}

// ParseGeoJSON decodes a GeoJSON feature collection from raw bytes.
func ParseGeoJSON(data []byte, source, idField string, tolerance float64) ([]geometry.Feature, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing feature collection %s: %w", source, err)
	}

	var features []geometry.Feature
	for i, f := range fc.Features {
		id := featureID(f, idField, source, i)
		shapes, err := modelShapes(f.Geometry, tolerance)
		if err != nil {
			return nil, fmt.Errorf("feature %q in %s: %w", id, source, err)
		}
		features = append(features, attach(shapes, id, source)...)
	}
	return features, nil
}

func featureID(f *geojson.Feature, idField, source string, index int) string {
	if idField != "" && f.Properties != nil {
		if v, ok := f.Properties[idField]; ok {
			return fmt.Sprintf("%v", v)
		}
	}
	if f.ID != "" {
		return f.ID
	}
	return fmt.Sprintf("%s-%d", source, index+1)
}

// modelShapes converts one decoded geometry into model shapes. Multi-part
// geometries flatten to one shape per part; attach suffixes their ids.
func modelShapes(t geom.T, tolerance float64) ([]geometry.Geometry, error) {
	switch g := t.(type) {
	case *geom.Point:
		p, err := geometry.NewPoint(coordOf(g.Coords()))
		if err != nil {
			return nil, err
		}
		return []geometry.Geometry{p}, nil
	case *geom.LineString:
		l, err := geometry.NewPolyline(coordsOf(g.Coords()), tolerance)
		if err != nil {
			return nil, err
		}
		return []geometry.Geometry{l}, nil
	case *geom.MultiLineString:
		var shapes []geometry.Geometry
		for _, part := range g.Coords() {
			l, err := geometry.NewPolyline(coordsOf(part), tolerance)
			if err != nil {
				return nil, err
			}
			shapes = append(shapes, l)
		}
		return shapes, nil
	case *geom.Polygon:
		p, err := polygonFromRings(g.Coords(), tolerance)
		if err != nil {
			return nil, err
		}
		return []geometry.Geometry{p}, nil
	case *geom.MultiPolygon:
		var shapes []geometry.Geometry
		for _, rings := range g.Coords() {
			p, err := polygonFromRings(rings, tolerance)
			if err != nil {
				return nil, err
			}
			shapes = append(shapes, p)
		}
		return shapes, nil
	default:
		return nil, &geometry.InvalidGeometryError{Reason: fmt.Sprintf("unsupported geometry type %T", t)}
	}
}

func polygonFromRings(rings [][]geom.Coord, tolerance float64) (geometry.Polygon, error) {
	if len(rings) == 0 {
		return geometry.Polygon{}, &geometry.InvalidGeometryError{Reason: "polygon without rings"}
	}
	holes := make([][]geometry.Coord, 0, len(rings)-1)
	for _, hole := range rings[1:] {
		holes = append(holes, coordsOf(hole))
	}
	return geometry.NewPolygon(coordsOf(rings[0]), holes, tolerance)
}

func coordOf(c geom.Coord) geometry.Coord {
	return geometry.Coord{X: c[0], Y: c[1]}
}

func coordsOf(coords []geom.Coord) []geometry.Coord {
	out := make([]geometry.Coord, len(coords))
	for i, c := range coords {
		out[i] = coordOf(c)
	}
	return out
}

// attach wraps model shapes into features. A single shape keeps the id as
// is; parts of a multi-geometry get a #n suffix to keep ids unique.
func attach(shapes []geometry.Geometry, id, source string) []geometry.Feature {
	if len(shapes) == 1 {
		return []geometry.Feature{{ID: id, Source: source, Geometry: shapes[0]}}
	}
	features := make([]geometry.Feature, len(shapes))
	for i, s := range shapes {
		features[i] = geometry.Feature{ID: fmt.Sprintf("%s#%d", id, i+1), Source: source, Geometry: s}
	}
	return features
}

// SourceName derives the comparison group name from a file path: the base
// name without extension.
func SourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
