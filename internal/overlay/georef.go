package overlay

import (
	"math"

	"github.com/mapdrape/mapdrape/internal/geo"
)

// ClampScale returns scale if it is a positive finite number and the
// default otherwise. Malformed numeric input from the scale control is
// recovered silently, never surfaced.
func ClampScale(scale float64) float64 {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return DefaultScale
	}
	return scale
}

// ComputeInitialBounds places an image of the given natural size around the
// anchor point. The display width is viewport width times scale, the height
// follows the image aspect ratio. The symmetric rectangle is built in pixel
// space around the projected anchor and its corners unprojected back to
// geographic coordinates; degree offsets would not be symmetric on screen
// under mercator.
func ComputeInitialBounds(imgW, imgH int, scale float64, anchor geo.Point, proj *geo.Projector) (geo.BoundingBox, error) {
	if imgW <= 0 || imgH <= 0 {
		return geo.BoundingBox{}, ErrDegenerateImage
	}
	scale = ClampScale(scale)

	viewportW, _ := proj.ViewportSize()
	displayW := viewportW * scale
	displayH := displayW * float64(imgH) / float64(imgW)

	center := proj.Project(anchor)
	nw := proj.Unproject(geo.PixelPoint{X: center.X - displayW/2, Y: center.Y - displayH/2})
	se := proj.Unproject(geo.PixelPoint{X: center.X + displayW/2, Y: center.Y + displayH/2})

	return geo.BoundingBox{North: nw.Lat, South: se.Lat, East: se.Lng, West: nw.Lng}, nil
}

// Resize applies a corner drag to the box under the center-anchored,
// aspect-preserving policy: the box center stays fixed, the new half
// diagonal is the distance from the center to the pointer, and width and
// height are rebuilt from aspect so the ratio captured at drag start holds
// for every intermediate sample. All four corners behave identically under
// this policy, so the dragged corner does not enter the geometry.
func Resize(b geo.BoundingBox, _ geo.Corner, pointer geo.Point, aspect float64) geo.BoundingBox {
	center := b.Center()

	halfDiag := math.Hypot(pointer.Lat-center.Lat, pointer.Lng-center.Lng)
	if halfDiag < MinDragDegrees {
		halfDiag = MinDragDegrees
	}

	// halfDiag^2 = halfW^2 + halfH^2 with halfH = halfW * aspect
	halfW := halfDiag / math.Hypot(1, aspect)
	halfH := halfW * aspect

	if halfW*2 < MinBoxDegrees {
		halfW = MinBoxDegrees / 2
		halfH = halfW * aspect
	}
	if halfH*2 < MinBoxDegrees {
		halfH = MinBoxDegrees / 2
		halfW = halfH / aspect
	}

	return geo.BoundingBox{
		North: center.Lat + halfH,
		South: center.Lat - halfH,
		East:  center.Lng + halfW,
		West:  center.Lng - halfW,
	}
}

// Move translates the box by delta. The delta is computed by the caller
// from the previous pointer sample, not the drag origin, so a nonlinear
// pointer path does not compound error.
func Move(b geo.BoundingBox, delta geo.Point) geo.BoundingBox {
	return b.Translate(delta)
}

// ScaleFor back-computes the normalized scale of a box: its projected
// pixel width divided by the viewport width. Keeps the numeric scale
// control consistent after direct manipulation.
func ScaleFor(b geo.BoundingBox, proj *geo.Projector) float64 {
	nw := proj.Project(geo.Point{Lat: b.North, Lng: b.West})
	ne := proj.Project(geo.Point{Lat: b.North, Lng: b.East})

	viewportW, _ := proj.ViewportSize()
	return (ne.X - nw.X) / viewportW
}
