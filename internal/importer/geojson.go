package importer

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mapdrape/mapdrape/internal/geo"
)

// FromGeoJSON parses uploaded GeoJSON text into a feature collection.
// Malformed input fails with a *geo.ParseError and leaves prior shape
// state untouched; the caller only swaps in the result on success.
func FromGeoJSON(raw []byte) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, &geo.ParseError{Raw: "geojson", Reason: err.Error()}
	}
	return fc, nil
}

// MarkersToGeoJSON renders imported markers as a point feature collection
// for the display surface.
func MarkersToGeoJSON(markers []Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		f := geojson.NewFeature(orb.Point{m.Position.Lng, m.Position.Lat})
		f.Properties["name"] = m.Label
		fc.Append(f)
	}
	return fc
}
