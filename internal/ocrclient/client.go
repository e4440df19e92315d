// Package ocrclient extracts HUD text from screen regions via Tesseract.
package ocrclient

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"
	"sync"

	"github.com/corona10/goimagehash"
	"github.com/otiai10/gosseract/v2"

	apperrors "github.com/overmind-labs/sc2copilot/internal/errors"
	"github.com/overmind-labs/sc2copilot/internal/resilience"
)

const (
	// Frames with Hamming distance at or below this are treated as
	// unchanged and served from the per-region text cache.
	maxHashDistance = 3

	// Game HUD counters only ever contain digits, the supply slash
	// and the timer colon. Restricting the character set cuts most
	// misreads on the small overlay font.
	hudWhitelist = "0123456789:/ "
)

// extractFunc performs raw text extraction on an encoded image.
type extractFunc func(ctx context.Context, imageData []byte) (string, error)

// regionState caches the last frame hash and text per screen region.
type regionState struct {
	hash *goimagehash.ImageHash
	text string
}

// Client extracts text from region crops, skipping OCR on frames that
// are perceptually identical to the previous read of the same region.
type Client struct {
	extract extractFunc
	breaker *resilience.Breaker
	closer  func() error

	mu      sync.Mutex
	regions map[string]*regionState
}

// Options configures the Tesseract engine.
type Options struct {
	// TessdataPrefix overrides the trained-data directory. Empty uses
	// the system default.
	TessdataPrefix string
}

// New creates a Tesseract-backed client.
func New(opts Options) (*Client, error) {
	tess := gosseract.NewClient()
	if opts.TessdataPrefix != "" {
		if err := tess.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			_ = tess.Close()
			return nil, apperrors.Wrap(err, apperrors.CodeOCRInitFailed, "failed to set tessdata prefix")
		}
	}
	if err := tess.SetWhitelist(hudWhitelist); err != nil {
		_ = tess.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeOCRInitFailed, "failed to set character whitelist")
	}
	if err := tess.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		_ = tess.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeOCRInitFailed, "failed to set page segmentation mode")
	}

	var engineMu sync.Mutex
	extract := func(_ context.Context, imageData []byte) (string, error) {
		engineMu.Lock()
		defer engineMu.Unlock()
		if err := tess.SetImageFromBytes(imageData); err != nil {
			return "", apperrors.Wrap(err, apperrors.CodeOCRInvalidImage, "failed to load image")
		}
		text, err := tess.Text()
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.CodeOCRExtractFailed, "text extraction failed")
		}
		return text, nil
	}

	c := newWithExtract(extract)
	c.closer = tess.Close
	return c, nil
}

// newWithExtract wires a client around a raw extraction function.
func newWithExtract(fn extractFunc) *Client {
	return &Client{
		extract: fn,
		breaker: resilience.NewBreaker(resilience.OCRBreakerConfig()),
		regions: make(map[string]*regionState),
	}
}

// ExtractText returns the text content of a region crop. Unchanged
// frames return the cached text without touching the engine. Returns
// empty string on failure.
func (c *Client) ExtractText(ctx context.Context, region string, img image.Image) string {
	if img == nil {
		return ""
	}

	state := c.state(region)

	hash, err := goimagehash.PerceptionHash(img)
	if err == nil && state.hash != nil {
		if dist, derr := state.hash.Distance(hash); derr == nil && dist <= maxHashDistance {
			slog.Debug("skipping OCR on similar frame", "region", region, "distance", dist)
			return state.text
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		slog.Debug("failed to encode region crop", "region", region, "error", err)
		return ""
	}

	text, err := resilience.ExecuteWithResult(c.breaker, func() (string, error) {
		return c.extract(ctx, buf.Bytes())
	})
	if err != nil {
		slog.Debug("OCR extraction failed", "region", region, "error", err)
		return ""
	}

	c.mu.Lock()
	state.hash = hash
	state.text = text
	c.mu.Unlock()
	return text
}

// state returns the cache entry for a region, creating it on first use.
func (c *Client) state(region string) *regionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.regions[region]
	if !ok {
		s = &regionState{}
		c.regions[region] = s
	}
	return s
}

// Close releases the underlying engine.
func (c *Client) Close() error {
	if c.closer != nil {
		return c.closer()
	}
	return nil
}
