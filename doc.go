// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package inkboard hosts a composited visual surface that accepts content
// built on execution contexts other than the one owning the surface.
//
// # Overview
//
// Expensive visual elements (ink strokes, text, shapes) are constructed on
// dedicated single-threaded loops and then handed off to a single host loop
// that owns the scene graph. The host loop is the only goroutine allowed to
// mutate the graph; everything else marshals work onto it.
//
// # Quick Start
//
//	board, err := visual.Open(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer board.Close()
//
//	c, err := board.Host().BuildChild(ctx, func() (any, error) {
//	    return content.TextBlock{Text: "Helloworld!"}.Render(), nil
//	}, "ink")
//
// # Architecture
//
// The module is organized into:
//   - dispatch: Loop (execution context), Future, Registry, CheckHang
//   - visual: Container (cross-context handoff), Host, Board
//   - content: reference content (TextBlock)
//   - render: reference raster compositor and pixmap target
//
// # Logging
//
// Nothing is logged by default. See [SetLogger].
package inkboard

// Version is the current version of the module.
const Version = "0.1.0"
