package geo

import "math"

// MaxLat is the latitude limit of the web mercator projection.
const MaxLat = 85.05112878

// TileSize is the pixel size of a single basemap tile.
const TileSize = 256

// Projector converts between geographic coordinates and viewport pixels
// using a web mercator projection at a fixed zoom level. The viewport is
// centered on a geographic point; pixel (0,0) is its top-left corner.
//
// Symmetric on-screen offsets must be computed in pixel space because
// degrees are not linear in pixels under mercator; Project and Unproject
// are the round-trip primitives the overlay engine depends on.
type Projector struct {
	originX   float64
	originY   float64
	worldSize float64
	viewportW float64
	viewportH float64
}

// NewProjector builds a projector for a viewport of the given pixel size
// centered on center at the given zoom level.
func NewProjector(center Point, zoom int, viewportW, viewportH float64) *Projector {
	p := &Projector{
		worldSize: float64(TileSize) * math.Exp2(float64(zoom)),
		viewportW: viewportW,
		viewportH: viewportH,
	}

	cx, cy := p.worldPixel(center)
	p.originX = cx - viewportW/2
	p.originY = cy - viewportH/2

	return p
}

// ViewportSize returns the viewport dimensions in pixels.
func (p *Projector) ViewportSize() (w, h float64) {
	return p.viewportW, p.viewportH
}

// Project converts a geographic point to viewport pixel coordinates.
func (p *Projector) Project(pt Point) PixelPoint {
	x, y := p.worldPixel(pt)
	return PixelPoint{X: x - p.originX, Y: y - p.originY}
}

// Unproject converts viewport pixel coordinates back to a geographic point.
func (p *Projector) Unproject(px PixelPoint) Point {
	x := px.X + p.originX
	y := px.Y + p.originY

	lng := x/p.worldSize*360.0 - 180.0

	// Inverse mercator for latitude
	mercY := math.Pi * (1 - 2*y/p.worldSize)
	lat := math.Atan(math.Sinh(mercY)) * 180.0 / math.Pi

	return Point{Lat: clampLat(lat), Lng: lng}
}

// worldPixel maps a point to absolute world pixel coordinates at the
// projector's zoom level.
func (p *Projector) worldPixel(pt Point) (x, y float64) {
	lat := clampLat(pt.Lat)

	x = (pt.Lng + 180.0) / 360.0 * p.worldSize

	latRad := lat * math.Pi / 180.0
	mercY := math.Log(math.Tan(latRad) + 1/math.Cos(latRad))
	y = (1 - mercY/math.Pi) / 2 * p.worldSize

	return x, y
}

func clampLat(lat float64) float64 {
	if lat > MaxLat {
		return MaxLat
	}
	if lat < -MaxLat {
		return -MaxLat
	}
	return lat
}
