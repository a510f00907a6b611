// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel/trace"

	"github.com/gogpu/inkboard/dispatch"
)

// Host is the composite root of a scene graph.
//
// Host is NOT safe for concurrent use: every method except Do, BuildChild,
// Loop and Registry must run on the host loop. Other goroutines marshal
// through Do:
//
//	err := host.Do(ctx, func(h *visual.Host) {
//	    h.AddChild(visual.NewLeaf(bg))
//	})
type Host struct {
	loop     *dispatch.Loop
	registry *dispatch.Registry
	cfg      hostConfig
	tracer   trace.Tracer

	// Host-loop owned.
	children []Node
	dirty    bool
}

// NewHost creates a Host owned by loop that builds children on loops from
// registry.
func NewHost(loop *dispatch.Loop, registry *dispatch.Registry, opts ...HostOption) (*Host, error) {
	if loop == nil {
		return nil, ErrNilLoop
	}
	if registry == nil {
		return nil, ErrNilRegistry
	}

	cfg := defaultHostConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Host{
		loop:     loop,
		registry: registry,
		cfg:      cfg,
		tracer:   cfg.tracerProvider.Tracer(tracerName),
	}, nil
}

// Loop returns the host loop.
func (h *Host) Loop() *dispatch.Loop {
	return h.loop
}

// Registry returns the registry worker loops are created in.
func (h *Host) Registry() *dispatch.Registry {
	return h.registry
}

// AddChild appends n and signals the compositor. Nil nodes are ignored.
// Host loop only.
func (h *Host) AddChild(n Node) {
	if n == nil {
		return
	}
	h.children = append(h.children, n)
	h.invalidate()
}

// ChildCount returns the number of children. Host loop only.
func (h *Host) ChildCount() int {
	return len(h.children)
}

// ChildAt returns the child at index, or an *IndexError if index is outside
// [0, ChildCount()). Host loop only.
func (h *Host) ChildAt(index int) (Node, error) {
	if index < 0 || index >= len(h.children) {
		return nil, &IndexError{Index: index, Count: len(h.children)}
	}
	return h.children[index], nil
}

// RemoveAt removes the child at index and returns it. A removed Container
// releases its content and its origin loop is disposed if still
// registered. Host loop only.
func (h *Host) RemoveAt(index int) (Node, error) {
	n, err := h.ChildAt(index)
	if err != nil {
		return nil, err
	}
	h.children = slices.Delete(h.children, index, index+1)
	if c, ok := n.(*Container); ok {
		c.release()
		h.discard(c.Origin())
	}
	h.invalidate()
	return n, nil
}

// IsDirty reports whether the child list changed since the last ClearDirty.
// Host loop only.
func (h *Host) IsDirty() bool {
	return h.dirty
}

// ClearDirty resets the dirty flag, typically after compositing.
// Host loop only.
func (h *Host) ClearDirty() {
	h.dirty = false
}

func (h *Host) invalidate() {
	h.dirty = true
	if h.cfg.compositor != nil {
		h.cfg.compositor.Invalidate(h)
	}
}

// Do runs fn on the host loop and waits for it to return or for ctx to end.
// Giving up on ctx does not cancel fn. Do must not be called from the host
// loop itself.
func (h *Host) Do(ctx context.Context, fn func(h *Host)) error {
	f := dispatch.Post(h.loop, func() struct{} {
		fn(h)
		return struct{}{}
	})
	_, err := f.Wait(ctx)
	return err
}
