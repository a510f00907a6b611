// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package content provides reference visual content for building on worker
// loops.
//
// [TextBlock] rasterizes a block of text into an *image.RGBA. Rendering is
// self-contained and allocates a fresh image on every call, so a TextBlock
// can be rendered on any loop and the result handed off without copying.
package content
