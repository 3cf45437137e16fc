// Package overlay implements the interactive georeferencing core: placing a
// raster image on the map as a geographic bounding box, resizing it through
// corner handles, moving it by its center marker and keeping the scale and
// opacity readouts consistent with the geometry.
package overlay

import (
	"errors"

	"github.com/mapdrape/mapdrape/internal/geo"
)

const (
	// DefaultScale is the display width as a fraction of the viewport
	// width, used when the requested scale is malformed or out of range.
	DefaultScale = 0.3

	// DefaultOpacity is the initial overlay opacity in percent.
	DefaultOpacity = 50

	// MinBoxDegrees is the floor for box width and height, preventing a
	// resize from collapsing the box to a degenerate rectangle.
	MinBoxDegrees = 0.001

	// MinDragDegrees is the floor for the pointer's distance from the box
	// center during a resize.
	MinDragDegrees = 0.0001
)

// ErrDegenerateImage is returned when an image reports a zero dimension.
var ErrDegenerateImage = errors.New("image has degenerate dimensions")

// Overlay is the state of the single active overlay image.
type Overlay struct {
	ImageWidth  int             `json:"image_width"`
	ImageHeight int             `json:"image_height"`
	Scale       float64         `json:"scale"`
	Opacity     int             `json:"opacity"`
	Anchor      geo.Point       `json:"anchor"`
	Bounds      geo.BoundingBox `json:"bounds"`
}

// AspectRatio returns height divided by width of the source image.
func (o *Overlay) AspectRatio() float64 {
	return float64(o.ImageHeight) / float64(o.ImageWidth)
}

// Handle is a draggable corner marker derived from a bounding box. Handles
// are never persisted; they are recomputed after every geometry change.
type Handle struct {
	Corner   geo.Corner `json:"corner"`
	Position geo.Point  `json:"position"`
	Cursor   string     `json:"cursor"`
}

// Handles derives the four corner handles in NW, NE, SE, SW order.
func Handles(b geo.BoundingBox) [4]Handle {
	var out [4]Handle
	for i, pt := range b.Corners() {
		c := geo.Corner(i)
		out[i] = Handle{Corner: c, Position: pt, Cursor: c.Cursor()}
	}
	return out
}
