package importer

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/mapdrape/mapdrape/internal/geo"
)

func csvDoc(rows ...string) []byte {
	return []byte(strings.Join(rows, "\n"))
}

func TestFromCSV(t *testing.T) {
	raw := csvDoc(
		"name,lat,lng",
		"Station A,35412338,139461225",
		"Station B,348536,1394612",
	)

	res, err := FromCSV(raw, DefaultColumns)
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	if len(res.Markers) != 2 {
		t.Fatalf("markers = %d, want 2", len(res.Markers))
	}
	if res.Skipped != 0 {
		t.Errorf("skipped = %d, want 0", res.Skipped)
	}

	m := res.Markers[0]
	if m.Label != "Station A" {
		t.Errorf("label = %q", m.Label)
	}
	wantLat := 35 + 41.0/60 + 23.38/3600
	if math.Abs(m.Position.Lat-wantLat) > 1e-9 {
		t.Errorf("lat = %v, want %v", m.Position.Lat, wantLat)
	}
}

func TestRowAcceptancePolicy(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		skipped bool
	}{
		{name: "valid row", row: "Here,35412338,139461225"},
		{name: "empty label", row: ",35412338,139461225", skipped: true},
		{name: "whitespace label", row: "   ,35412338,139461225", skipped: true},
		{name: "empty latitude", row: "Here,,139461225", skipped: true},
		{name: "malformed latitude", row: "Here,abc,139461225", skipped: true},
		{name: "malformed longitude", row: "Here,35412338,13.25E2", skipped: true},
		{name: "zero latitude rejected", row: "Here,00000000,139461225", skipped: true},
		{name: "zero longitude rejected", row: "Here,35412338,000000000", skipped: true},
		{name: "missing columns", row: "Here", skipped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := FromCSV(csvDoc("name,lat,lng", tt.row), DefaultColumns)
			if err != nil {
				t.Fatalf("FromCSV: %v", err)
			}

			wantMarkers, wantSkipped := 1, 0
			if tt.skipped {
				wantMarkers, wantSkipped = 0, 1
			}
			if len(res.Markers) != wantMarkers {
				t.Errorf("markers = %d, want %d", len(res.Markers), wantMarkers)
			}
			if res.Skipped != wantSkipped {
				t.Errorf("skipped = %d, want %d", res.Skipped, wantSkipped)
			}
		})
	}
}

func TestHeaderRowIsAlwaysSkipped(t *testing.T) {
	// The header looks like a valid row; it must not become a marker.
	raw := csvDoc("Header Label,35412338,139461225")

	res, err := FromCSV(raw, DefaultColumns)
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	if len(res.Markers) != 0 {
		t.Errorf("header row imported as marker: %+v", res.Markers)
	}
	if res.Skipped != 0 {
		t.Errorf("header counted as skipped: %d", res.Skipped)
	}
}

func TestCustomColumns(t *testing.T) {
	raw := csvDoc(
		"lng,name,lat",
		"139461225,Somewhere,35412338",
	)

	res, err := FromCSV(raw, Columns{Label: 1, Lat: 2, Lng: 0})
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	if len(res.Markers) != 1 || res.Markers[0].Label != "Somewhere" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestFromGeoJSON(t *testing.T) {
	raw := []byte(`{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [139.76, 35.68]},
			"properties": {"name": "Tokyo"}
		}]
	}`)

	fc, err := FromGeoJSON(raw)
	if err != nil {
		t.Fatalf("FromGeoJSON: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Errorf("features = %d, want 1", len(fc.Features))
	}
}

func TestFromGeoJSONMalformed(t *testing.T) {
	for _, raw := range []string{"", "{", `{"type": 12}`} {
		_, err := FromGeoJSON([]byte(raw))
		if err == nil {
			t.Fatalf("FromGeoJSON(%q) expected error", raw)
		}
		var pe *geo.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("FromGeoJSON(%q) error is %T, want *geo.ParseError", raw, err)
		}
	}
}

func TestMarkersToGeoJSON(t *testing.T) {
	markers := []Marker{
		{Label: "A", Position: geo.Point{Lat: 35.5, Lng: 139.5}},
		{Label: "B", Position: geo.Point{Lat: 36.0, Lng: 140.0}},
	}

	fc := MarkersToGeoJSON(markers)
	if len(fc.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(fc.Features))
	}
	if fc.Features[0].Properties["name"] != "A" {
		t.Errorf("name property = %v", fc.Features[0].Properties["name"])
	}
	pt := fc.Features[0].Point()
	if pt[0] != 139.5 || pt[1] != 35.5 {
		t.Errorf("coordinates = %v, want [139.5 35.5]", pt)
	}
}

func TestSheetKind(t *testing.T) {
	if k, err := SheetKind("markers.XLSX"); err != nil || k != "xlsx" {
		t.Errorf("SheetKind(xlsx) = %q, %v", k, err)
	}
	if k, err := SheetKind("markers.csv"); err != nil || k != "csv" {
		t.Errorf("SheetKind(csv) = %q, %v", k, err)
	}
	if _, err := SheetKind("markers.ods"); err == nil {
		t.Error("SheetKind(ods) expected error")
	}
}
