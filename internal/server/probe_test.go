package server

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tileBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 256, 256))))
	return buf.Bytes()
}

func TestProbeBasemapReady(t *testing.T) {
	tile := tileBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/0/0/0.png", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(tile)
	}))
	defer srv.Close()

	err := ProbeBasemap(context.Background(), srv.Client(),
		srv.URL+"/{z}/{x}/{y}.png", 50*time.Millisecond, 2*time.Second)
	assert.NoError(t, err)
}

func TestProbeBasemapBecomesReadyLater(t *testing.T) {
	tile := tileBytes(t)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(tile)
	}))
	defer srv.Close()

	err := ProbeBasemap(context.Background(), srv.Client(),
		srv.URL+"/{z}/{x}/{y}.png", 20*time.Millisecond, 5*time.Second)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestProbeBasemapTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	err := ProbeBasemap(context.Background(), srv.Client(),
		srv.URL+"/{z}/{x}/{y}.png", 20*time.Millisecond, 150*time.Millisecond)
	require.Error(t, err)

	var unavailable *PluginUnavailableError
	assert.True(t, errors.As(err, &unavailable), "error is %T", err)
}

func TestProbeBasemapRejectsPlaceholderTile(t *testing.T) {
	// Out-of-bounds placeholders are 1px images; they do not count as
	// readiness.
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	err := ProbeBasemap(context.Background(), srv.Client(),
		srv.URL+"/{z}/{x}/{y}.png", 20*time.Millisecond, 150*time.Millisecond)
	assert.Error(t, err)
}
