package server

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// PluginUnavailableError is fatal to the session: the basemap tile source
// never became ready within the startup timeout, so the interactive map
// surface must not render.
type PluginUnavailableError struct {
	URL     string
	Timeout time.Duration
}

func (e *PluginUnavailableError) Error() string {
	return fmt.Sprintf("basemap %s not ready within %s", e.URL, e.Timeout)
}

// ProbeBasemap polls the tile source at a fixed interval until one probe
// tile decodes, the timeout elapses or ctx is cancelled. It returns
// exactly once: nil on readiness, *PluginUnavailableError on timeout.
func ProbeBasemap(ctx context.Context, client *http.Client, tileURL string, interval, timeout time.Duration) error {
	url := probeTileURL(tileURL)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	attempt := 0
	for {
		attempt++
		if checkTile(ctx, client, url) {
			log.Info().Str("url", url).Int("attempts", attempt).Msg("Basemap ready")
			return nil
		}
		log.Debug().Str("url", url).Int("attempt", attempt).Msg("Basemap not ready yet")

		select {
		case <-ctx.Done():
			return &PluginUnavailableError{URL: tileURL, Timeout: timeout}
		case <-ticker.C:
		}
	}
}

// probeTileURL fills the template for the single zoom-zero tile.
func probeTileURL(tpl string) string {
	s := strings.ReplaceAll(tpl, "{z}", "0")
	s = strings.ReplaceAll(s, "{x}", "0")
	s = strings.ReplaceAll(s, "{y}", "0")
	s = strings.ReplaceAll(s, "{s}", "a")
	return s
}

func checkTile(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return false
	}

	// Map servers answer out-of-bounds requests with 1px placeholders.
	return img.Bounds().Dx() > 1
}
