package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/mapdrape/mapdrape/internal/importer"
	"github.com/mapdrape/mapdrape/internal/logger"

	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input    string `short:"i" long:"in" description:"Input file path or http(s) URL. Reads from stdin if empty"`
	Output   string `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`
	Kind     string `short:"k" long:"kind" description:"Input kind" choice:"xlsx" choice:"csv" choice:"geojson" required:"true"`
	Format   string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	LabelCol int    `long:"label-col" description:"Zero-based label column" default:"0"`
	LatCol   int    `long:"lat-col" description:"Zero-based latitude column" default:"1"`
	LngCol   int    `long:"lng-col" description:"Zero-based longitude column" default:"2"`
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

	opts.Logger.Setup()

	raw, err := readInput(opts.Input)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read input")
	}

	var out any
	switch opts.Kind {
	case "geojson":
		fc, err := importer.FromGeoJSON(raw)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to parse GeoJSON")
		}
		log.Info().Int("features", len(fc.Features)).Msg("GeoJSON parsed")
		out = fc

	default:
		cols := importer.Columns{Label: opts.LabelCol, Lat: opts.LatCol, Lng: opts.LngCol}

		var res *importer.Result
		if opts.Kind == "xlsx" {
			res, err = importer.FromXLSX(raw, cols)
		} else {
			res, err = importer.FromCSV(raw, cols)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to parse spreadsheet")
		}

		log.Info().
			Int("created", len(res.Markers)).
			Int("skipped", res.Skipped).
			Msg("Spreadsheet imported")
		out = importer.MarkersToGeoJSON(res.Markers)
	}

	outputData, err := marshal(out, opts.Format)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal output")
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output")
		}
		return
	}
	fmt.Println(string(outputData))
}

func readInput(input string) ([]byte, error) {
	if input == "" {
		return io.ReadAll(os.Stdin)
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		client := &http.Client{Timeout: 15 * time.Second}
		resp, err := client.Get(input)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("download failed: %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	return os.ReadFile(input)
}

func marshal(v any, format string) ([]byte, error) {
	if format == "yaml" {
		// round trip through JSON so orb's custom marshalers apply
		j, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		var plain any
		if err := json.Unmarshal(j, &plain); err != nil {
			return nil, err
		}
		return yaml.Marshal(plain)
	}
	return json.MarshalIndent(v, "", "  ")
}
