package screen

import (
	"bytes"
	"crypto/md5"
	"image"
	"image/draw"
	_ "image/jpeg" // JPEG decoder for screenshot files
	_ "image/png"  // PNG decoder for screenshot files
	"log/slog"
	"os"
)

// backend implements platform-specific raw full-screen capture.
type backend interface {
	captureRaw() []byte
	cleanup()
}

// Capturer grabs full frames and serves cropped named regions out of the
// latest one. Change detection hashes the raw bytes so identical frames
// are skipped cheaply without decoding.
type Capturer struct {
	backend  backend
	regions  Regions
	tempDir  string
	lastHash [16]byte
	frame    image.Image
}

// NewCapturer creates a capturer for the current platform.
func NewCapturer(regions Regions) *Capturer {
	tmpDir, err := os.MkdirTemp("", "sc2copilot-screen-*")
	if err != nil {
		slog.Error("failed to create temp dir for screenshots", "error", err)
		tmpDir = os.TempDir()
	}
	return &Capturer{
		backend: newBackend(tmpDir),
		regions: regions,
		tempDir: tmpDir,
	}
}

func newWithBackend(b backend, regions Regions) *Capturer {
	return &Capturer{backend: b, regions: regions}
}

// Refresh captures a new full frame. Returns false when capture failed
// or the screen has not changed since the last refresh; the previous
// frame stays available either way.
func (c *Capturer) Refresh() bool {
	data := c.backend.captureRaw()
	if data == nil {
		return false
	}

	// Hash the first 4KB for speed.
	hash := md5.Sum(data[:min(len(data), 4096)])
	if hash == c.lastHash {
		return false
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Error("failed to decode screenshot", "error", err)
		return false
	}

	c.lastHash = hash
	c.frame = img
	return true
}

// Region crops the named region out of the latest frame. Returns false
// when the region is undefined or no frame has been captured yet.
func (c *Capturer) Region(name string) (image.Image, bool) {
	if c.frame == nil {
		return nil, false
	}
	r, ok := c.regions[name]
	if !ok {
		slog.Warn("capture region not defined", "region", name)
		return nil, false
	}

	rect := r.Rect().Intersect(c.frame.Bounds())
	if rect.Empty() {
		return nil, false
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), c.frame, rect.Min, draw.Src)
	return out, true
}

// Close releases capture resources.
func (c *Capturer) Close() {
	c.backend.cleanup()
	if c.tempDir != "" {
		os.RemoveAll(c.tempDir)
	}
}
