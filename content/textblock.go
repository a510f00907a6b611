// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package content

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// TextBlock is a block of text rendered with a fixed 7x13 bitmap face.
//
// The zero value renders black text on a transparent background at scale 1
// with no padding. Lines are separated by '\n'.
type TextBlock struct {
	Text string

	// Color is the ink color. Nil means black.
	Color color.Color

	// Background fills the block before drawing. Nil leaves it transparent.
	Background color.Color

	// Scale is an integer magnification applied after rasterization.
	// Values below 1 are treated as 1.
	Scale int

	// Padding is the unscaled margin around the text, in pixels.
	Padding int
}

// face is shared by every TextBlock; basicfont faces are immutable.
var face font.Face = basicfont.Face7x13

// lines returns the NFC-normalized text split into lines.
func (tb TextBlock) lines() []string {
	return strings.Split(norm.NFC.String(tb.Text), "\n")
}

func (tb TextBlock) scale() int {
	return max(tb.Scale, 1)
}

func (tb TextBlock) padding() int {
	return max(tb.Padding, 0)
}

// unscaledSize returns the 1x size of the rendered block.
func (tb TextBlock) unscaledSize(lines []string) image.Point {
	width := 0
	for _, line := range lines {
		width = max(width, font.MeasureString(face, line).Ceil())
	}
	lineHeight := face.Metrics().Height.Ceil()
	pad := tb.padding()
	return image.Pt(width+2*pad, len(lines)*lineHeight+2*pad)
}

// Size returns the size in pixels that Render will produce.
func (tb TextBlock) Size() image.Point {
	return tb.unscaledSize(tb.lines()).Mul(tb.scale())
}

// Render rasterizes the block into a new image.
func (tb TextBlock) Render() *image.RGBA {
	lines := tb.lines()
	size := tb.unscaledSize(lines)

	img := image.NewRGBA(image.Rectangle{Max: size})
	if tb.Background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(tb.Background), image.Point{}, draw.Src)
	}

	ink := tb.Color
	if ink == nil {
		ink = color.Black
	}

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()
	pad := tb.padding()

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(ink),
		Face: face,
	}
	for i, line := range lines {
		d.Dot = fixed.P(pad, pad+i*lineHeight+ascent)
		d.DrawString(line)
	}

	s := tb.scale()
	if s == 1 {
		return img
	}
	scaled := image.NewRGBA(image.Rectangle{Max: size.Mul(s)})
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
	return scaled
}

// Factory returns a function that renders tb each time it is called. Its
// signature matches visual.Factory.
func (tb TextBlock) Factory() func() (any, error) {
	return func() (any, error) {
		return tb.Render(), nil
	}
}
