package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	raw := pngBytes(t, 24, 16)

	r, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.Width != 24 || r.Height != 16 {
		t.Errorf("dimensions = %dx%d, want 24x16", r.Width, r.Height)
	}
	if r.Format != "png" {
		t.Errorf("format = %q, want png", r.Format)
	}
}

func TestDecodeDataURL(t *testing.T) {
	raw := pngBytes(t, 8, 8)
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	r, err := Decode([]byte(dataURL))
	if err != nil {
		t.Fatalf("Decode data URL: %v", err)
	}
	if r.Width != 8 || r.Height != 8 {
		t.Errorf("dimensions = %dx%d, want 8x8", r.Width, r.Height)
	}
}

func TestDecodeCorruptInput(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "garbage", raw: []byte("not an image at all")},
		{name: "empty", raw: nil},
		{name: "truncated png", raw: pngBytes(t, 8, 8)[:20]},
		{name: "bad base64 data URL", raw: []byte("data:image/png;base64,@@@@")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			if err == nil {
				t.Fatal("expected error")
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("error is %T, want *DecodeError", err)
			}
		})
	}
}

func TestEncodeWebP(t *testing.T) {
	r, err := Decode(pngBytes(t, 16, 16))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	out, err := EncodeWebP(r)
	if err != nil {
		t.Fatalf("EncodeWebP: %v", err)
	}
	if len(out) == 0 {
		t.Error("empty webp output")
	}
}
