// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/inkboard"
	"github.com/gogpu/inkboard/visual"
)

var (
	// ErrUnsupportedFormat is returned by Composite for targets that are not
	// RGBA8.
	ErrUnsupportedFormat = errors.New("unsupported target format")

	// ErrNoPixels is returned by Composite for targets whose pixel buffer is
	// missing or too small for their size.
	ErrNoPixels = errors.New("target has no usable pixel buffer")
)

// Raster is a visual.Compositor that stacks image children top to bottom.
//
// Invalidate only counts; the pixels are produced on demand by Composite.
// Invalidations may be read from any goroutine. Size and Composite read the
// host child list and must run on the host loop.
type Raster struct {
	gap        int
	background color.Color

	invalidations atomic.Int64
}

// RasterOption configures a Raster.
type RasterOption func(*Raster)

// WithGap sets the vertical spacing between children in pixels.
func WithGap(px int) RasterOption {
	return func(r *Raster) {
		r.gap = max(px, 0)
	}
}

// WithBackground sets the color the target is cleared to before drawing.
// Nil clears to transparent.
func WithBackground(c color.Color) RasterOption {
	return func(r *Raster) {
		r.background = c
	}
}

// NewRaster creates a Raster compositor.
func NewRaster(opts ...RasterOption) *Raster {
	r := &Raster{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Invalidate records that h's child list changed.
func (r *Raster) Invalidate(h *visual.Host) {
	n := r.invalidations.Add(1)
	inkboard.Logger().Debug("render: host invalidated", "children", h.ChildCount(), "invalidations", n)
}

// Invalidations returns how many times Invalidate has been called.
func (r *Raster) Invalidations() int64 {
	return r.invalidations.Load()
}

// Size returns the size Composite needs to fit every drawable child.
// Host loop only.
func (r *Raster) Size(h *visual.Host) image.Point {
	var size image.Point
	drawn := 0
	for i := range h.ChildCount() {
		img, ok := childImage(h, i)
		if !ok {
			continue
		}
		b := img.Bounds()
		size.X = max(size.X, b.Dx())
		size.Y += b.Dy()
		drawn++
	}
	if drawn > 1 {
		size.Y += (drawn - 1) * r.gap
	}
	return size
}

// Composite clears target and draws every drawable child in index order,
// top to bottom. A target implementing Resizer is first resized to Size(h);
// any other target keeps its size and clips. Only RGBA8 targets with CPU
// pixel access are supported; others are refused before anything is
// written. On success it clears the host's dirty flag and returns the
// number of children drawn. Host loop only.
func (r *Raster) Composite(h *visual.Host, target RenderTarget) (int, error) {
	if f := target.Format(); f != gputypes.TextureFormatRGBA8Unorm {
		return 0, fmt.Errorf("render: composite: %w: %v", ErrUnsupportedFormat, f)
	}

	size := r.Size(h)
	if rs, ok := target.(Resizer); ok && (target.Width() != size.X || target.Height() != size.Y) {
		rs.Resize(size.X, size.Y)
	}

	dst, err := pixelView(target)
	if err != nil {
		return 0, err
	}

	bg := r.background
	if bg == nil {
		bg = color.Transparent
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	y, drawn := 0, 0
	for i := range h.ChildCount() {
		img, ok := childImage(h, i)
		if !ok {
			continue
		}
		b := img.Bounds()
		rect := image.Rect(0, y, b.Dx(), y+b.Dy())
		draw.Draw(dst, rect, img, b.Min, draw.Over)
		y += b.Dy() + r.gap
		drawn++
	}

	h.ClearDirty()
	return drawn, nil
}

// pixelView wraps the target's pixel buffer as an *image.RGBA without
// copying.
func pixelView(target RenderTarget) (*image.RGBA, error) {
	w, h := target.Width(), target.Height()
	pix, stride := target.Pixels(), target.Stride()
	if w > 0 && h > 0 && (stride < 4*w || len(pix) < stride*(h-1)+4*w) {
		return nil, fmt.Errorf("render: composite: %w: %dx%d target, stride %d, %d bytes",
			ErrNoPixels, w, h, stride, len(pix))
	}
	return &image.RGBA{Pix: pix, Stride: stride, Rect: image.Rect(0, 0, w, h)}, nil
}

// childImage returns the image held by child i, if any.
func childImage(h *visual.Host, i int) (image.Image, bool) {
	n, err := h.ChildAt(i)
	if err != nil || !n.Ready() {
		return nil, false
	}

	var v any
	switch n := n.(type) {
	case *visual.Container:
		v, err = n.Content()
		if err != nil {
			return nil, false
		}
	case *visual.Leaf:
		v = n.Value()
	default:
		return nil, false
	}

	img, ok := v.(image.Image)
	return img, ok
}

// Ensure Raster implements visual.Compositor.
var _ visual.Compositor = (*Raster)(nil)
