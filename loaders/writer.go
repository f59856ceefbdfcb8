package loaders

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/bsaid97/go-topology-checker/checkers"
	"github.com/bsaid97/go-topology-checker/geometry"
)

// WriteReportGeoJSON writes the report's findings as a GeoJSON feature
// collection: one feature per finding with the offending region as geometry
// and kind, involved ids and measure as properties.
func WriteReportGeoJSON(path string, report *checkers.Report) error {
	fc := geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(report.Findings))}
	for _, f := range report.Findings {
		g, err := regionToGeom(f.Region)
		if err != nil {
			return fmt.Errorf("finding %s %v: %w", f.Kind, f.Features, err)
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: g,
			Properties: map[string]interface{}{
				"kind":     string(f.Kind),
				"features": f.Features,
				"measure":  f.Measure,
			},
		})
	}

	data, err := json.MarshalIndent(&fc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// regionToGeom encodes a finding region as a Polygon when single-part, a
// MultiPolygon otherwise. Regionless findings (contained points and lines)
// encode as an empty MultiPolygon.
func regionToGeom(region []geometry.Polygon) (geom.T, error) {
	if len(region) == 1 {
		return geom.NewPolygon(geom.XY).SetCoords(polygonCoords(region[0]))
	}
	coords := make([][][]geom.Coord, len(region))
	for i, p := range region {
		coords[i] = polygonCoords(p)
	}
	return geom.NewMultiPolygon(geom.XY).SetCoords(coords)
}

func polygonCoords(p geometry.Polygon) [][]geom.Coord {
	rings := make([][]geom.Coord, 0, 1+len(p.Holes))
	rings = append(rings, ringCoords(p.Outer))
	for _, hole := range p.Holes {
		rings = append(rings, ringCoords(hole))
	}
	return rings
}

func ringCoords(ring []geometry.Coord) []geom.Coord {
	out := make([]geom.Coord, len(ring))
	for i, c := range ring {
		out[i] = geom.Coord{c.X, c.Y}
	}
	return out
}
