package geo

import (
	"math"
	"testing"
)

func TestBoundingBoxTranslate(t *testing.T) {
	tests := []struct {
		name  string
		box   BoundingBox
		delta Point
	}{
		{
			name:  "north east shift",
			box:   BoundingBox{North: 36, South: 35, East: 140, West: 139},
			delta: Point{Lat: 0.5, Lng: 0.25},
		},
		{
			name:  "south west shift",
			box:   BoundingBox{North: 36, South: 35, East: 140, West: 139},
			delta: Point{Lat: -1.25, Lng: -3},
		},
		{
			name:  "zero delta",
			box:   BoundingBox{North: 10, South: 5, East: 20, West: 15},
			delta: Point{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.box.Translate(tt.delta)

			if got.North != tt.box.North+tt.delta.Lat ||
				got.South != tt.box.South+tt.delta.Lat ||
				got.East != tt.box.East+tt.delta.Lng ||
				got.West != tt.box.West+tt.delta.Lng {
				t.Errorf("Translate moved edges unevenly: %+v", got)
			}
			if got.Width() != tt.box.Width() || got.Height() != tt.box.Height() {
				t.Errorf("Translate changed size: %vx%v -> %vx%v",
					tt.box.Width(), tt.box.Height(), got.Width(), got.Height())
			}
		})
	}
}

func TestBoundingBoxCornerOrder(t *testing.T) {
	box := BoundingBox{North: 36, South: 35, East: 140, West: 139}
	corners := box.Corners()

	expected := [4]Point{
		{Lat: 36, Lng: 139}, // NW
		{Lat: 36, Lng: 140}, // NE
		{Lat: 35, Lng: 140}, // SE
		{Lat: 35, Lng: 139}, // SW
	}
	if corners != expected {
		t.Errorf("Corners() = %v, want NW,NE,SE,SW order %v", corners, expected)
	}

	cursors := [4]string{"nw-resize", "ne-resize", "se-resize", "sw-resize"}
	for i, want := range cursors {
		if got := Corner(i).Cursor(); got != want {
			t.Errorf("Corner(%d).Cursor() = %q, want %q", i, got, want)
		}
	}
}

func TestCornerOpposite(t *testing.T) {
	pairs := map[Corner]Corner{
		CornerNW: CornerSE,
		CornerNE: CornerSW,
		CornerSE: CornerNW,
		CornerSW: CornerNE,
	}
	for c, want := range pairs {
		if got := c.Opposite(); got != want {
			t.Errorf("%v.Opposite() = %v, want %v", c, got, want)
		}
	}
}

func TestProjectorRoundTrip(t *testing.T) {
	proj := NewProjector(Point{Lat: 35.68, Lng: 139.76}, 12, 1280, 800)

	points := []Point{
		{Lat: 35.68, Lng: 139.76},
		{Lat: 35.7, Lng: 139.8},
		{Lat: 35.65, Lng: 139.7},
	}

	for _, pt := range points {
		px := proj.Project(pt)
		back := proj.Unproject(px)

		if math.Abs(back.Lat-pt.Lat) > 1e-9 || math.Abs(back.Lng-pt.Lng) > 1e-9 {
			t.Errorf("round trip %v -> %v -> %v", pt, px, back)
		}
	}
}

func TestProjectorCenterMapsToViewportCenter(t *testing.T) {
	center := Point{Lat: 51.5, Lng: -0.12}
	proj := NewProjector(center, 10, 1024, 768)

	px := proj.Project(center)
	if math.Abs(px.X-512) > 1e-6 || math.Abs(px.Y-384) > 1e-6 {
		t.Errorf("center projected to %v, want (512, 384)", px)
	}
}

func TestProjectorLatitudeClamp(t *testing.T) {
	proj := NewProjector(Point{}, 3, 512, 512)

	px := proj.Project(Point{Lat: 89, Lng: 0})
	back := proj.Unproject(px)
	if back.Lat > MaxLat {
		t.Errorf("latitude not clamped: %v", back.Lat)
	}
}
