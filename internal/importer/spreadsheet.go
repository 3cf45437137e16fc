// Package importer turns bulk user uploads, spreadsheets of fixed-width
// DMS coordinates and GeoJSON files, into map markers and features.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/mapdrape/mapdrape/internal/geo"
)

// Marker is one imported point. Immutable once created.
type Marker struct {
	Label    string    `json:"label"`
	Position geo.Point `json:"position"`
}

// Columns maps spreadsheet columns to marker fields. Zero-based indices.
type Columns struct {
	Label int `yaml:"label"`
	Lat   int `yaml:"lat"`
	Lng   int `yaml:"lng"`
}

// DefaultColumns is the conventional label, latitude, longitude layout.
var DefaultColumns = Columns{Label: 0, Lat: 1, Lng: 2}

// Result summarizes a bulk import. Skipped counts rows rejected by the
// acceptance policy; they never become markers.
type Result struct {
	Markers []Marker `json:"markers"`
	Skipped int      `json:"skipped"`
}

// FromXLSX reads markers from the first sheet of an xlsx workbook. Row 0
// is a header and is skipped.
func FromXLSX(raw []byte, cols Columns) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &geo.ParseError{Raw: "xlsx", Reason: err.Error()}
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, &geo.ParseError{Raw: "xlsx", Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &geo.ParseError{Raw: "xlsx", Reason: err.Error()}
	}

	return fromRows(rows, cols), nil
}

// FromCSV reads markers from comma-separated rows. Row 0 is a header and
// is skipped.
func FromCSV(raw []byte, cols Columns) (*Result, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &geo.ParseError{Raw: "csv", Reason: err.Error()}
		}
		rows = append(rows, record)
	}

	return fromRows(rows, cols), nil
}

// fromRows applies the row acceptance policy: the trimmed label must be
// non-empty, both coordinates must parse to finite numbers and both must
// be strictly positive. The positivity rule deliberately biases the
// importer toward the north-eastern quadrant; source sheets encode no
// hemisphere sign.
func fromRows(rows [][]string, cols Columns) *Result {
	res := &Result{Markers: []Marker{}}

	for i, row := range rows {
		if i == 0 {
			continue // header
		}

		label := strings.TrimSpace(cell(row, cols.Label))
		if label == "" {
			res.Skipped++
			continue
		}

		lat, latErr := geo.ParseDMS(strings.TrimSpace(cell(row, cols.Lat)), false)
		lng, lngErr := geo.ParseDMS(strings.TrimSpace(cell(row, cols.Lng)), true)
		if latErr != nil || lngErr != nil {
			log.Debug().
				Int("row", i).
				AnErr("lat", latErr).
				AnErr("lng", lngErr).
				Msg("Skipping row with malformed coordinates")
			res.Skipped++
			continue
		}
		if !positiveFinite(lat) || !positiveFinite(lng) {
			res.Skipped++
			continue
		}

		res.Markers = append(res.Markers, Marker{
			Label:    label,
			Position: geo.Point{Lat: lat, Lng: lng},
		})
	}

	return res
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// SheetKind guesses the spreadsheet format from the upload filename.
func SheetKind(filename string) (string, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".xlsx"):
		return "xlsx", nil
	case strings.HasSuffix(strings.ToLower(filename), ".csv"):
		return "csv", nil
	}
	return "", fmt.Errorf("unsupported spreadsheet format: %s", filename)
}
