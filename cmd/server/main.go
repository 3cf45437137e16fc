package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/mapdrape/mapdrape/internal/config"
	"github.com/mapdrape/mapdrape/internal/logger"
	"github.com/mapdrape/mapdrape/internal/server"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr       string `short:"a" long:"addr"   env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"   env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	SkipProbe  bool   `long:"skip-probe" env:"SKIP_PROBE" description:"Skip the basemap readiness probe"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	srvCtx := server.NewServerContext(cfg)

	// Probe the basemap before exposing the map surface. On timeout the
	// server still runs but serves only the terminal error page.
	if opts.SkipProbe {
		srvCtx.SetReady()
	} else {
		client := &http.Client{Timeout: 10 * time.Second}
		err := server.ProbeBasemap(
			context.Background(),
			client,
			cfg.Basemap.TileURL,
			cfg.Probe.Interval,
			cfg.Probe.Timeout,
		)
		if err != nil {
			log.Error().Err(err).Msg("Basemap unavailable, serving error page only")
		} else {
			srvCtx.SetReady()
		}
	}

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", srvCtx.HandleConfig)
	mux.HandleFunc("/api/state", srvCtx.HandleState)
	mux.HandleFunc("/api/image", srvCtx.HandleImageUpload)
	mux.HandleFunc("/api/place", srvCtx.HandlePlace)
	mux.HandleFunc("/api/scale", srvCtx.HandleScale)
	mux.HandleFunc("/api/opacity", srvCtx.HandleOpacity)
	mux.HandleFunc("/api/centering", srvCtx.HandleCentering)
	mux.HandleFunc("/api/gesture/", srvCtx.HandleGesture)
	mux.HandleFunc("/api/markers/import", srvCtx.HandleMarkerImport)
	mux.HandleFunc("/api/markers", srvCtx.HandleMarkers)
	mux.HandleFunc("/api/shapes", srvCtx.HandleShapes)
	mux.HandleFunc("/overlay.webp", srvCtx.HandleOverlayImage)
	mux.HandleFunc("/favicon.svg", srvCtx.HandleFavicon)
	mux.HandleFunc("/healthz", srvCtx.HandleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", srvCtx.HandleIndex)

	handler := server.RequestLogger(mux)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Bool("basemap_ready", srvCtx.Ready()).
		Msg("Web server started")

	if err := http.ListenAndServe(listenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
