// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render composites a visual.Host child list into pixels.
//
// # Core Types
//
//   - PixmapTarget: CPU-backed *image.RGBA render target
//   - Raster: a visual.Compositor that stacks image children vertically
//
// # Usage
//
// Raster is installed on the host and counts invalidations as children are
// attached. Composite reads the child list, so it must run on the host loop:
//
//	raster := render.NewRaster(render.WithGap(4))
//	board, _ := visual.Open(ctx, visual.WithHostOptions(visual.WithCompositor(raster)))
//
//	target := render.NewPixmapTarget(0, 0)
//	var compErr error
//	err := board.Host().Do(ctx, func(h *visual.Host) {
//	    _, compErr = raster.Composite(h, target)
//	})
//
// Any RenderTarget with an RGBA8 pixel buffer can be composited into;
// PixmapTarget also implements Resizer and grows to fit. Children whose
// content is not an image.Image are skipped, as are containers that are not
// yet ready.
package render
