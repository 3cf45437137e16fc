package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mapdrape/mapdrape/internal/geo"
	"github.com/mapdrape/mapdrape/internal/imaging"
	"github.com/mapdrape/mapdrape/internal/importer"
	"github.com/mapdrape/mapdrape/internal/overlay"
)

const maxUploadBytes = 32 << 20

// viewportPayload is the client's current map view, needed whenever a
// request has to project between pixels and coordinates.
type viewportPayload struct {
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Zoom   int       `json:"zoom"`
	Center geo.Point `json:"center"`
}

// projector builds a projector from the payload, falling back to the
// configured viewport defaults.
func (s *ServerContext) projector(v viewportPayload) *geo.Projector {
	if v.Width <= 0 {
		v.Width = float64(s.Config.Viewport.Width)
	}
	if v.Height <= 0 {
		v.Height = float64(s.Config.Viewport.Height)
	}
	if v.Zoom <= 0 {
		v.Zoom = s.Config.Viewport.Zoom
	}
	if v.Center == (geo.Point{}) {
		v.Center = s.Config.Viewport.Center
	}
	return geo.NewProjector(v.Center, v.Zoom, v.Width, v.Height)
}

// HandleIndex serves the main HTML application, or the terminal error
// page while the basemap is unavailable.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && strings.Contains(r.URL.Path, ".") {
		http.NotFound(w, r)
		return
	}

	if !s.Ready() {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write(s.ErrorHTML)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandleFavicon serves the site icon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleConfig exposes the basemap and viewport defaults to the front end.
func (s *ServerContext) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"basemap":         s.Config.Basemap,
		"viewport":        s.Config.Viewport,
		"viewport_center": s.Config.Viewport.Center,
		"default_scale":   s.Config.DefaultScale,
	})
}

// HandleState serves the current overlay snapshot.
func (s *ServerContext) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// HandleHealth reports probe status.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if !s.Ready() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]bool{"ready": s.Ready()})
}

// HandleImageUpload decodes an uploaded raster and loads it into the
// session. A decode failure leaves the previous overlay untouched.
func (s *ServerContext) HandleImageUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.uploadLimiter.Allow() {
		writeError(w, http.StatusTooManyRequests, errors.New("too many uploads, slow down"))
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}

	raster, err := imaging.Decode(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Overlay image rejected")
		writeError(w, http.StatusBadRequest, err)
		return
	}

	display, err := imaging.EncodeWebP(raster)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if err := s.Session.LoadImage(raster.Width, raster.Height); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.imageMu.Lock()
	s.overlayWebP = display
	s.imageMu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"width":  raster.Width,
		"height": raster.Height,
		"format": raster.Format,
	})
}

// HandleOverlayImage serves the display copy of the current overlay.
func (s *ServerContext) HandleOverlayImage(w http.ResponseWriter, r *http.Request) {
	s.imageMu.RLock()
	img := s.overlayWebP
	s.imageMu.RUnlock()

	if len(img) == 0 {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(img)
}

// HandlePlace anchors the loaded image on the map.
func (s *ServerContext) HandlePlace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Anchor   geo.Point       `json:"anchor"`
		Scale    float64         `json:"scale"`
		Viewport viewportPayload `json:"viewport"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.Session.Place(req.Anchor, req.Scale, s.projector(req.Viewport)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// HandleScale applies a scale-control edit; malformed values are clamped
// inside the session, never rejected.
func (s *ServerContext) HandleScale(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scale    float64         `json:"scale"`
		Viewport viewportPayload `json:"viewport"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.Session.SetScale(req.Scale, s.projector(req.Viewport)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// HandleOpacity applies an opacity-control edit. Geometry is untouched.
func (s *ServerContext) HandleOpacity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Opacity int `json:"opacity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.Session.SetOpacity(req.Opacity); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// HandleGesture dispatches drag-session requests.
// Path: /api/gesture/{resize|move}/{begin|move} or /api/gesture/end.
func (s *ServerContext) HandleGesture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// parts: api, gesture, kind[, phase]
	if len(parts) == 3 && parts[2] == "end" {
		s.Session.EndDrag()
		writeJSON(w, http.StatusOK, s.Session.Snapshot())
		return
	}
	if len(parts) != 4 {
		http.NotFound(w, r)
		return
	}

	var req struct {
		Corner   geo.Corner      `json:"corner"`
		Pointer  geo.Point       `json:"pointer"`
		Viewport viewportPayload `json:"viewport"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	var err error
	switch parts[2] + "/" + parts[3] {
	case "resize/begin":
		err = s.Session.BeginResize(req.Corner)
	case "resize/move":
		err = s.Session.ResizeTo(req.Pointer, s.projector(req.Viewport))
	case "move/begin":
		err = s.Session.BeginMove(req.Pointer)
	case "move/move":
		err = s.Session.MoveTo(req.Pointer)
	default:
		http.NotFound(w, r)
		return
	}

	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// HandleCentering re-enters centering mode, destroying the overlay.
func (s *ServerContext) HandleCentering(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.Session.EnterCentering()
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// HandleMarkerImport runs a spreadsheet through the bulk importer and
// appends the accepted rows. A parse failure leaves markers untouched.
func (s *ServerContext) HandleMarkerImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.uploadLimiter.Allow() {
		writeError(w, http.StatusTooManyRequests, errors.New("too many uploads, slow down"))
		return
	}

	kind, err := importer.SheetKind(r.URL.Query().Get("filename"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}

	var res *importer.Result
	if kind == "xlsx" {
		res, err = importer.FromXLSX(raw, s.Config.ImportColumns)
	} else {
		res, err = importer.FromCSV(raw, s.Config.ImportColumns)
	}
	if err != nil {
		log.Warn().Err(err).Msg("Marker import rejected")
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.stateMu.Lock()
	s.markers = append(s.markers, res.Markers...)
	total := len(s.markers)
	s.stateMu.Unlock()

	markersImported.Add(float64(len(res.Markers)))
	rowsSkipped.Add(float64(res.Skipped))

	log.Info().
		Int("created", len(res.Markers)).
		Int("skipped", res.Skipped).
		Int("total", total).
		Msg("Markers imported")

	writeJSON(w, http.StatusOK, map[string]int{
		"created": len(res.Markers),
		"skipped": res.Skipped,
		"total":   total,
	})
}

// HandleMarkers serves the imported markers as GeoJSON.
func (s *ServerContext) HandleMarkers(w http.ResponseWriter, r *http.Request) {
	s.stateMu.RLock()
	fc := importer.MarkersToGeoJSON(s.markers)
	s.stateMu.RUnlock()

	w.Header().Set("Content-Type", "application/geo+json")
	_ = json.NewEncoder(w).Encode(fc)
}

// HandleShapes stores an uploaded GeoJSON document (POST) or serves the
// stored one (GET).
func (s *ServerContext) HandleShapes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.stateMu.RLock()
		fc := s.shapes
		s.stateMu.RUnlock()

		if fc == nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		_ = json.NewEncoder(w).Encode(fc)

	case http.MethodPost:
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}

		fc, err := importer.FromGeoJSON(raw)
		if err != nil {
			log.Warn().Err(err).Msg("GeoJSON upload rejected")
			writeError(w, http.StatusBadRequest, err)
			return
		}

		s.stateMu.Lock()
		s.shapes = fc
		s.stateMu.Unlock()

		w.Header().Set("Content-Type", "application/geo+json")
		_ = json.NewEncoder(w).Encode(fc)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

// statusFor maps session state errors to HTTP statuses: gesture conflicts
// are 409, missing preconditions 400.
func statusFor(err error) int {
	switch {
	case errors.Is(err, overlay.ErrDragActive), errors.Is(err, overlay.ErrCentering):
		return http.StatusConflict
	case errors.Is(err, overlay.ErrNoDrag),
		errors.Is(err, overlay.ErrNoOverlay),
		errors.Is(err, overlay.ErrNotPlaced),
		errors.Is(err, overlay.ErrDegenerateImage):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
