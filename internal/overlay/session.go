package overlay

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mapdrape/mapdrape/internal/geo"
)

// Phase is the overlay lifecycle state.
type Phase int

// Lifecycle phases: an image must be decoded before it can be placed, and
// placed before it can be manipulated.
const (
	PhaseNoImage Phase = iota
	PhaseLoaded
	PhaseDisplayed
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseLoaded:
		return "loaded"
	case PhaseDisplayed:
		return "displayed"
	}
	return "no_image"
}

// Session state errors.
var (
	ErrNoOverlay  = errors.New("no overlay image loaded")
	ErrNotPlaced  = errors.New("overlay not placed on the map")
	ErrDragActive = errors.New("another drag session is active")
	ErrNoDrag     = errors.New("no drag session is active")
	ErrCentering  = errors.New("centering mode is active")
)

type dragKind int

const (
	dragIdle dragKind = iota
	dragResize
	dragMove
)

type dragSession struct {
	kind        dragKind
	corner      geo.Corner
	aspect      float64   // height/width captured when the resize started
	lastPointer geo.Point // previous sample of an active move
}

// Session owns the single active overlay and the transient drag state. It
// is the one mutator of overlay geometry; handlers from concurrent HTTP
// requests serialize on its mutex. At most one drag session exists at a
// time and a drag is mutually exclusive with centering mode.
type Session struct {
	mu        sync.Mutex
	phase     Phase
	overlay   *Overlay
	drag      dragSession
	centering bool
	epoch     uint64
}

// Snapshot is a read-only view of the session for the display surface.
type Snapshot struct {
	Phase   string    `json:"phase"`
	Overlay *Overlay  `json:"overlay,omitempty"`
	Handles []Handle  `json:"handles,omitempty"`
	Epoch   uint64    `json:"epoch"`
	Dragged bool      `json:"dragging"`
	Center  geo.Point `json:"center,omitempty"`
}

// NewSession returns a session in centering mode with no image.
func NewSession() *Session {
	return &Session{centering: true}
}

// LoadImage installs a freshly decoded image, destroying any previous
// overlay. Zero dimensions fail without touching existing state.
func (s *Session) LoadImage(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrDegenerateImage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.overlay = &Overlay{
		ImageWidth:  width,
		ImageHeight: height,
		Scale:       DefaultScale,
		Opacity:     DefaultOpacity,
	}
	s.phase = PhaseLoaded
	s.drag = dragSession{}
	s.centering = false

	log.Debug().Int("width", width).Int("height", height).Msg("Overlay image loaded")
	return nil
}

// Place computes the initial bounding box around anchor and moves the
// session to the displayed phase.
func (s *Session) Place(anchor geo.Point, scale float64, proj *geo.Projector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.overlay == nil {
		return ErrNoOverlay
	}

	scale = ClampScale(scale)
	bounds, err := ComputeInitialBounds(s.overlay.ImageWidth, s.overlay.ImageHeight, scale, anchor, proj)
	if err != nil {
		return err
	}

	s.overlay.Anchor = anchor
	s.overlay.Scale = scale
	s.overlay.Bounds = bounds
	s.phase = PhaseDisplayed
	s.epoch++

	return nil
}

// SetScale rebuilds the geometry around the current center for the new
// scale value. The previous opacity carries over to the replacement layer.
func (s *Session) SetScale(scale float64, proj *geo.Projector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseDisplayed {
		return ErrNotPlaced
	}

	scale = ClampScale(scale)
	anchor := s.overlay.Bounds.Center()
	bounds, err := ComputeInitialBounds(s.overlay.ImageWidth, s.overlay.ImageHeight, scale, anchor, proj)
	if err != nil {
		return err
	}

	s.overlay.Anchor = anchor
	s.overlay.Scale = scale
	s.overlay.Bounds = bounds
	s.epoch++

	return nil
}

// SetOpacity clamps and stores the opacity. Geometry is untouched and the
// epoch does not advance: the display surface updates the existing layer
// in place.
func (s *Session) SetOpacity(opacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.overlay == nil {
		return ErrNoOverlay
	}

	if opacity < 0 {
		opacity = 0
	} else if opacity > 100 {
		opacity = 100
	}
	s.overlay.Opacity = opacity

	return nil
}

// BeginResize opens a corner drag session, capturing the aspect ratio that
// every subsequent sample must preserve.
func (s *Session) BeginResize(corner geo.Corner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.canStartDrag(); err != nil {
		return err
	}

	b := s.overlay.Bounds
	s.drag = dragSession{
		kind:   dragResize,
		corner: corner,
		aspect: b.Height() / b.Width(),
	}

	return nil
}

// ResizeTo applies one pointer sample of the active resize and back
// computes the scale readout from the new geometry.
func (s *Session) ResizeTo(pointer geo.Point, proj *geo.Projector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.drag.kind != dragResize {
		return ErrNoDrag
	}

	s.overlay.Bounds = Resize(s.overlay.Bounds, s.drag.corner, pointer, s.drag.aspect)
	s.overlay.Scale = ScaleFor(s.overlay.Bounds, proj)
	s.overlay.Anchor = s.overlay.Bounds.Center()
	s.epoch++

	return nil
}

// BeginMove opens a center-marker drag session at the given pointer
// position.
func (s *Session) BeginMove(pointer geo.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.canStartDrag(); err != nil {
		return err
	}

	s.drag = dragSession{kind: dragMove, lastPointer: pointer}
	return nil
}

// MoveTo translates the overlay by the delta since the previous pointer
// sample. Re-entrant per pointer-move event.
func (s *Session) MoveTo(pointer geo.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.drag.kind != dragMove {
		return ErrNoDrag
	}

	delta := geo.Point{
		Lat: pointer.Lat - s.drag.lastPointer.Lat,
		Lng: pointer.Lng - s.drag.lastPointer.Lng,
	}
	s.overlay.Bounds = Move(s.overlay.Bounds, delta)
	s.overlay.Anchor = s.overlay.Bounds.Center()
	s.drag.lastPointer = pointer
	s.epoch++

	return nil
}

// EndDrag terminates any active drag session. Safe to call repeatedly: the
// front end fires it from the map, the document and window blur so a
// release outside the viewport can never leave a drag stuck.
func (s *Session) EndDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drag = dragSession{}
}

// EnterCentering re-enters centering mode, destroying the current overlay.
func (s *Session) EnterCentering() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overlay = nil
	s.phase = PhaseNoImage
	s.drag = dragSession{}
	s.centering = true
	s.epoch++
}

// Snapshot returns a copy of the current state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:   s.phase.String(),
		Epoch:   s.epoch,
		Dragged: s.drag.kind != dragIdle,
	}
	if s.overlay != nil {
		o := *s.overlay
		snap.Overlay = &o
		if s.phase == PhaseDisplayed {
			handles := Handles(o.Bounds)
			snap.Handles = handles[:]
			snap.Center = o.Bounds.Center()
		}
	}

	return snap
}

func (s *Session) canStartDrag() error {
	if s.phase != PhaseDisplayed {
		return ErrNotPlaced
	}
	if s.centering {
		return ErrCentering
	}
	if s.drag.kind != dragIdle {
		return ErrDragActive
	}
	return nil
}
