package ocrclient

import (
	"context"
	"image"
	"image/color"
	"testing"

	apperrors "github.com/overmind-labs/sc2copilot/internal/errors"
)

// solidFrame produces a uniform frame; distinct colors hash differently
// only when the gradient differs, so gradientFrame is used for change.
func solidFrame(c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// gradientFrame produces a frame whose perceptual hash differs sharply
// from any solid frame.
func gradientFrame() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if (x/8+y/8)%2 == 0 {
				img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			} else {
				img.Set(x, y, color.RGBA{A: 255})
			}
		}
	}
	return img
}

func TestExtractTextFirstRead(t *testing.T) {
	calls := 0
	c := newWithExtract(func(_ context.Context, _ []byte) (string, error) {
		calls++
		return "150 88", nil
	})

	got := c.ExtractText(context.Background(), "resources", solidFrame(color.RGBA{R: 40, A: 255}))
	if got != "150 88" {
		t.Errorf("ExtractText = %q, want %q", got, "150 88")
	}
	if calls != 1 {
		t.Errorf("extract calls = %d, want 1", calls)
	}
}

func TestExtractTextSkipsSimilarFrame(t *testing.T) {
	calls := 0
	c := newWithExtract(func(_ context.Context, _ []byte) (string, error) {
		calls++
		return "42/200", nil
	})

	frame := solidFrame(color.RGBA{R: 40, A: 255})
	first := c.ExtractText(context.Background(), "resources", frame)
	second := c.ExtractText(context.Background(), "resources", frame)

	if first != "42/200" || second != "42/200" {
		t.Errorf("reads = (%q, %q), want both %q", first, second, "42/200")
	}
	if calls != 1 {
		t.Errorf("extract calls = %d, want 1 (second frame should hit cache)", calls)
	}
}

func TestExtractTextReextractsChangedFrame(t *testing.T) {
	texts := []string{"100 50", "350 120"}
	calls := 0
	c := newWithExtract(func(_ context.Context, _ []byte) (string, error) {
		text := texts[calls]
		calls++
		return text, nil
	})

	first := c.ExtractText(context.Background(), "resources", solidFrame(color.RGBA{R: 40, A: 255}))
	second := c.ExtractText(context.Background(), "resources", gradientFrame())

	if first != "100 50" {
		t.Errorf("first read = %q, want %q", first, "100 50")
	}
	if second != "350 120" {
		t.Errorf("second read = %q, want %q", second, "350 120")
	}
	if calls != 2 {
		t.Errorf("extract calls = %d, want 2", calls)
	}
}

func TestExtractTextRegionsCachedIndependently(t *testing.T) {
	calls := 0
	c := newWithExtract(func(_ context.Context, _ []byte) (string, error) {
		calls++
		return "08:30", nil
	})

	frame := solidFrame(color.RGBA{R: 40, A: 255})
	c.ExtractText(context.Background(), "resources", frame)
	c.ExtractText(context.Background(), "timer", frame)

	if calls != 2 {
		t.Errorf("extract calls = %d, want 2 (caches are per region)", calls)
	}
}

func TestExtractTextFailureReturnsEmpty(t *testing.T) {
	c := newWithExtract(func(_ context.Context, _ []byte) (string, error) {
		return "", apperrors.New(apperrors.CodeOCRExtractFailed, "engine error")
	})

	if got := c.ExtractText(context.Background(), "resources", solidFrame(color.RGBA{R: 40, A: 255})); got != "" {
		t.Errorf("ExtractText = %q, want empty on failure", got)
	}
}

func TestExtractTextFailureDoesNotPoisonCache(t *testing.T) {
	calls := 0
	c := newWithExtract(func(_ context.Context, _ []byte) (string, error) {
		calls++
		if calls == 1 {
			return "", apperrors.New(apperrors.CodeOCRExtractFailed, "engine error")
		}
		return "55/100", nil
	})

	frame := solidFrame(color.RGBA{R: 40, A: 255})
	if got := c.ExtractText(context.Background(), "resources", frame); got != "" {
		t.Fatalf("first read = %q, want empty", got)
	}
	if got := c.ExtractText(context.Background(), "resources", frame); got != "55/100" {
		t.Errorf("second read = %q, want %q (failed read must not cache)", got, "55/100")
	}
}

func TestExtractTextBreakerOpensAfterRepeatedFailures(t *testing.T) {
	calls := 0
	c := newWithExtract(func(_ context.Context, _ []byte) (string, error) {
		calls++
		return "", apperrors.New(apperrors.CodeOCRExtractFailed, "engine error")
	})

	frame := solidFrame(color.RGBA{R: 40, A: 255})
	for i := 0; i < 10; i++ {
		c.ExtractText(context.Background(), "resources", frame)
	}

	// OCR breaker opens after 3 consecutive failures; later cycles
	// must fail fast without touching the engine.
	if calls != 3 {
		t.Errorf("extract calls = %d, want 3 (breaker should short-circuit the rest)", calls)
	}
}

func TestExtractTextNilImage(t *testing.T) {
	c := newWithExtract(func(_ context.Context, _ []byte) (string, error) {
		t.Fatal("extract should not run for nil image")
		return "", nil
	})

	if got := c.ExtractText(context.Background(), "resources", nil); got != "" {
		t.Errorf("ExtractText = %q, want empty for nil image", got)
	}
}

func TestCloseWithoutEngine(t *testing.T) {
	c := newWithExtract(func(_ context.Context, _ []byte) (string, error) { return "", nil })
	if err := c.Close(); err != nil {
		t.Errorf("Close = %v, want nil", err)
	}
}
