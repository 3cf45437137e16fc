// Package geo provides geographic primitives: points, bounding boxes and
// the viewport projection used to map between screen pixels and coordinates.
package geo

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// PixelPoint is a position in viewport pixel space, origin at the top-left.
type PixelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Corner identifies one corner of a bounding box. The numeric order is
// fixed: the front end maps it directly to resize cursors.
type Corner int

// Corners in clockwise order starting north-west.
const (
	CornerNW Corner = iota
	CornerNE
	CornerSE
	CornerSW
)

// Cursor returns the CSS resize cursor name for the corner.
func (c Corner) Cursor() string {
	switch c {
	case CornerNW:
		return "nw-resize"
	case CornerNE:
		return "ne-resize"
	case CornerSE:
		return "se-resize"
	case CornerSW:
		return "sw-resize"
	}
	return ""
}

// String returns the compass label for the corner.
func (c Corner) String() string {
	switch c {
	case CornerNW:
		return "nw"
	case CornerNE:
		return "ne"
	case CornerSE:
		return "se"
	case CornerSW:
		return "sw"
	}
	return "unknown"
}

// BoundingBox is an axis-aligned rectangle in geographic coordinates.
// A valid box has North > South and East > West; wraparound across the
// antimeridian is not handled. Boxes are values, replaced as a whole on
// every geometry update and never mutated in place.
type BoundingBox struct {
	North float64 `json:"north" yaml:"north"`
	South float64 `json:"south" yaml:"south"`
	East  float64 `json:"east" yaml:"east"`
	West  float64 `json:"west" yaml:"west"`
}

// Valid reports whether the box satisfies North > South and East > West.
func (b BoundingBox) Valid() bool {
	return b.North > b.South && b.East > b.West
}

// Width returns the longitude span in degrees.
func (b BoundingBox) Width() float64 {
	return b.East - b.West
}

// Height returns the latitude span in degrees.
func (b BoundingBox) Height() float64 {
	return b.North - b.South
}

// Center returns the geometric center of the box.
func (b BoundingBox) Center() Point {
	return Point{
		Lat: (b.North + b.South) / 2,
		Lng: (b.East + b.West) / 2,
	}
}

// Translate returns a copy of the box shifted by delta. Width and height
// are preserved exactly.
func (b BoundingBox) Translate(delta Point) BoundingBox {
	return BoundingBox{
		North: b.North + delta.Lat,
		South: b.South + delta.Lat,
		East:  b.East + delta.Lng,
		West:  b.West + delta.Lng,
	}
}

// Corners returns the four corners in NW, NE, SE, SW order. The order is
// part of the contract, see Corner.
func (b BoundingBox) Corners() [4]Point {
	return [4]Point{
		{Lat: b.North, Lng: b.West},
		{Lat: b.North, Lng: b.East},
		{Lat: b.South, Lng: b.East},
		{Lat: b.South, Lng: b.West},
	}
}

// Corner returns the position of a single corner.
func (b BoundingBox) Corner(c Corner) Point {
	return b.Corners()[c]
}

// Opposite returns the diagonally opposite corner.
func (c Corner) Opposite() Corner {
	return (c + 2) % 4
}
