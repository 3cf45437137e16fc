// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mapdrape/mapdrape/internal/geo"
	"github.com/mapdrape/mapdrape/internal/importer"
)

// Basemap describes the background tile layer the overlay is draped onto.
type Basemap struct {
	// TileURL is a {z}/{x}/{y} slippy tile URL template. The server probes
	// it at startup before the map surface is allowed to render.
	TileURL     string `yaml:"tile_url" json:"tile_url"`
	Attribution string `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	MaxZoom     int    `yaml:"max_zoom,omitempty" json:"max_zoom"`
}

// Viewport holds the default viewport used when a client does not report
// its own size.
type Viewport struct {
	Width  int       `yaml:"width" json:"width"`
	Height int       `yaml:"height" json:"height"`
	Zoom   int       `yaml:"zoom" json:"zoom"`
	Center geo.Point `yaml:"center" json:"center"`
}

// Probe controls the basemap readiness poll at startup.
type Probe struct {
	Interval time.Duration `yaml:"interval" json:"-"`
	Timeout  time.Duration `yaml:"timeout" json:"-"`
}

// Config represents the root configuration file structure.
type Config struct {
	Basemap        Basemap          `yaml:"basemap" json:"basemap"`
	Viewport       Viewport         `yaml:"viewport,omitempty" json:"viewport"`
	Probe          Probe            `yaml:"probe,omitempty" json:"-"`
	ImportColumns  importer.Columns `yaml:"import_columns,omitempty" json:"-"`
	DefaultScale   float64          `yaml:"default_scale,omitempty" json:"default_scale"`
	DefaultOpacity int              `yaml:"default_opacity,omitempty" json:"default_opacity"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if cfg.Basemap.TileURL == "" {
		return nil, fmt.Errorf("config %s: basemap.tile_url is required", path)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Viewport.Width <= 0 {
		c.Viewport.Width = 1280
	}
	if c.Viewport.Height <= 0 {
		c.Viewport.Height = 800
	}
	if c.Viewport.Zoom <= 0 {
		c.Viewport.Zoom = 12
	}
	if c.Viewport.Center == (geo.Point{}) {
		c.Viewport.Center = geo.Point{Lat: 51.505, Lng: -0.09}
	}
	if c.Basemap.MaxZoom <= 0 {
		c.Basemap.MaxZoom = 19
	}
	if c.Probe.Interval <= 0 {
		c.Probe.Interval = 500 * time.Millisecond
	}
	if c.Probe.Timeout <= 0 {
		c.Probe.Timeout = 15 * time.Second
	}
	if c.ImportColumns == (importer.Columns{}) {
		c.ImportColumns = importer.DefaultColumns
	}
	if c.DefaultScale <= 0 {
		c.DefaultScale = 0.3
	}
	if c.DefaultOpacity <= 0 || c.DefaultOpacity > 100 {
		c.DefaultOpacity = 50
	}
}
