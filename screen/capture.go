// Package screen provides desktop snapshot capture for the engine.
//
// Information Hiding:
// - Display enumeration and raster grabbing hidden behind Capturer
// - Scaling and JPEG encoding hidden; callers see bytes plus dimensions
//
// The engine projects model-emitted grid coordinates onto the PHYSICAL
// dimensions reported here, so Frame must always carry the real display
// size even though the encoded image is scaled down.

package screen

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"github.com/kbinani/screenshot"
	"golang.org/x/image/draw"
)

// MediaType is the MIME type of encoded frames.
const MediaType = "image/jpeg"

// Defaults for the encoded snapshot.
const (
	DefaultTargetWidth  = 1280
	DefaultTargetHeight = 800
	DefaultJPEGQuality  = 80
)

// Frame is one desktop snapshot.
type Frame struct {
	JPEG         []byte
	Width        int // physical display pixels
	Height       int
	ScaledWidth  int // dimensions of the encoded image
	ScaledHeight int
	CapturedAt   time.Time
}

// Capturer produces snapshots on demand. Capture failure is fatal to a
// run; implementations should not retry internally.
type Capturer interface {
	Capture(ctx context.Context) (*Frame, error)
}

// Display captures the primary display, scales the grab to fit a target
// resolution, and JPEG-encodes it.
type Display struct {
	targetWidth  int
	targetHeight int
	quality      int
}

// NewDisplay creates a capturer with the given target resolution and
// JPEG quality. Non-positive values fall back to the defaults.
func NewDisplay(targetWidth, targetHeight, quality int) *Display {
	if targetWidth <= 0 {
		targetWidth = DefaultTargetWidth
	}
	if targetHeight <= 0 {
		targetHeight = DefaultTargetHeight
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Display{
		targetWidth:  targetWidth,
		targetHeight: targetHeight,
		quality:      quality,
	}
}

// Capture grabs the primary display.
func (d *Display) Capture(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if screenshot.NumActiveDisplays() < 1 {
		return nil, fmt.Errorf("no active displays")
	}

	bounds := screenshot.GetDisplayBounds(0)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display: %w", err)
	}

	width := bounds.Dx()
	height := bounds.Dy()

	scaledW, scaledH := FitWithin(width, height, d.targetWidth, d.targetHeight)
	encoded := image.Image(img)
	if scaledW != width || scaledH != height {
		dst := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		encoded = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, encoded, &jpeg.Options{Quality: d.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return &Frame{
		JPEG:         buf.Bytes(),
		Width:        width,
		Height:       height,
		ScaledWidth:  scaledW,
		ScaledHeight: scaledH,
		CapturedAt:   time.Now(),
	}, nil
}

// FitWithin scales (w, h) down to fit inside (maxW, maxH) preserving
// aspect ratio. Images already inside the box keep their size; nothing
// is ever scaled up.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	if w <= maxW && h <= maxH {
		return w, h
	}

	scaled := func(dim, num, den int) int {
		v := dim * num / den
		if v < 1 {
			v = 1
		}
		return v
	}

	// Pick the tighter constraint.
	if w*maxH >= h*maxW {
		return maxW, scaled(h, maxW, w)
	}
	return scaled(w, maxH, h), maxH
}

// Verify Display implements Capturer
var _ Capturer = (*Display)(nil)
