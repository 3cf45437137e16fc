// Package imaging is the boundary to the image decoder: raw uploaded bytes
// in, natural dimensions and a normalized display copy out.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeError reports a corrupt or unusable uploaded image.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode image: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode image: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Raster is a decoded overlay image.
type Raster struct {
	Image  image.Image
	Width  int
	Height int
	Format string
}

// Decode parses raw image bytes, accepting plain payloads and data URLs.
// Corrupt input and images with a zero natural dimension fail with a
// *DecodeError; existing overlay state is the caller's to keep.
func Decode(raw []byte) (*Raster, error) {
	data, err := stripDataURL(raw)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Reason: "corrupt or unsupported image", Err: err}
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Reason: "image has zero natural dimensions"}
	}

	log.Debug().
		Str("format", format).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Msg("Image decoded")

	return &Raster{Image: img, Width: b.Dx(), Height: b.Dy(), Format: format}, nil
}

// EncodeWebP renders the display copy served to the map surface.
func EncodeWebP(r *Raster) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, r.Image, &webp.Options{Lossless: false, Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// stripDataURL unwraps a "data:...;base64," prefix if present.
func stripDataURL(raw []byte) ([]byte, error) {
	if !bytes.HasPrefix(raw, []byte("data:")) {
		return raw, nil
	}

	s := string(raw)
	idx := strings.Index(s, ",")
	if idx < 0 {
		return nil, &DecodeError{Reason: "malformed data URL"}
	}

	meta, payload := s[:idx], s[idx+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return []byte(payload), nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &DecodeError{Reason: "malformed base64 data URL", Err: err}
	}
	return data, nil
}
