// Package server handles HTTP requests and middleware.
package server

import (
	"sync"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/svg"
	"golang.org/x/time/rate"

	"github.com/mapdrape/mapdrape/assets"
	"github.com/mapdrape/mapdrape/internal/config"
	"github.com/mapdrape/mapdrape/internal/importer"
	"github.com/mapdrape/mapdrape/internal/overlay"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config  *config.Config
	Session *overlay.Session

	IndexHTML []byte
	ErrorHTML []byte
	Favicon   []byte

	// ready is set once the basemap probe succeeds. While false the index
	// route serves the terminal error page, never a partial map.
	readyMu sync.RWMutex
	ready   bool

	// markers and shapes accumulate bulk imports; each import either
	// appends atomically or fails leaving them untouched.
	stateMu sync.RWMutex
	markers []importer.Marker
	shapes  *geojson.FeatureCollection

	// overlayWebP is the display copy of the current overlay image.
	imageMu     sync.RWMutex
	overlayWebP []byte

	uploadLimiter *rate.Limiter
}

// NewServerContext initializes the context, minifying the embedded assets.
func NewServerContext(cfg *config.Config) *ServerContext {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)

	index, err := m.Bytes("text/html", assets.Index)
	if err != nil {
		log.Warn().Err(err).Msg("Index minification failed, serving raw asset")
		index = assets.Index
	}
	errorPage, err := m.Bytes("text/html", assets.ErrorPage)
	if err != nil {
		errorPage = assets.ErrorPage
	}
	favicon, err := m.Bytes("image/svg+xml", assets.Favicon)
	if err != nil {
		favicon = assets.Favicon
	}

	log.Info().
		Int("index_bytes", len(index)).
		Str("tile_url", cfg.Basemap.TileURL).
		Msg("Server context initialized")

	return &ServerContext{
		Config:        cfg,
		Session:       overlay.NewSession(),
		IndexHTML:     index,
		ErrorHTML:     errorPage,
		Favicon:       favicon,
		markers:       []importer.Marker{},
		uploadLimiter: rate.NewLimiter(rate.Limit(2), 5),
	}
}

// SetReady marks the basemap as available.
func (s *ServerContext) SetReady() {
	s.readyMu.Lock()
	s.ready = true
	s.readyMu.Unlock()
}

// Ready reports whether the basemap probe has succeeded.
func (s *ServerContext) Ready() bool {
	s.readyMu.RLock()
	defer s.readyMu.RUnlock()
	return s.ready
}
