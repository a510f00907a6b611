// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package visual implements the host side of cross-loop content handoff.
//
// A [Host] is the composite root of a scene graph. It is owned by a single
// host loop (a [dispatch.Loop]) and only that loop may touch its children.
// Other goroutines reach it through [Host.Do] or by posting to the loop.
//
// Content that is expensive to build is constructed on a dedicated worker
// loop and handed off through a [Container]:
//
//	c, err := host.BuildChild(ctx, func() (any, error) {
//	    return content.TextBlock{Text: "X"}.Render(), nil
//	}, "text")
//
// BuildChild creates a worker loop, runs the factory on it, then marshals
// onto the host loop where the Container is attached and appended. From the
// attach on, the content belongs to the host loop; the worker loop must not
// mutate it any more.
//
// A [Compositor] is told through Invalidate whenever the child list changes
// and reads it back with ChildCount and ChildAt, on the host loop.
//
// [Board] wires a host loop, a [dispatch.Registry] and a Host together and
// tears all of them down on Close.
package visual
