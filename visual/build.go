// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gogpu/inkboard"
	"github.com/gogpu/inkboard/dispatch"
)

// Factory builds a content object. It runs exactly once per BuildChild, on
// the worker loop created for it. Returning a nil object with a nil error
// fails the build with ErrNilContent.
type Factory func() (any, error)

// Host-step handshake between BuildChild and the task it posts to the host
// loop. Whichever side moves off handoffPending first decides the outcome.
const (
	handoffPending int32 = iota
	handoffCommitted
	handoffAbandoned
)

// BuildChild builds content on a new worker loop and appends it to the host
// inside a Container.
//
// It creates a worker loop named after nameHint, runs factory there, then
// marshals onto the host loop to verify the worker is still registered,
// attach the content and append the Container. The returned Container is
// the one appended.
//
// On any error the child list is left unchanged. If the factory fails, or
// the build is abandoned, the worker loop is disposed; a worker disposed by
// someone else mid-flight yields ErrAborted.
//
// BuildChild blocks and must not be called from the host loop.
func (h *Host) BuildChild(ctx context.Context, factory Factory, nameHint string) (_ *Container, err error) {
	if factory == nil {
		return nil, ErrNilFactory
	}

	ctx, span := h.tracer.Start(ctx, "visual.BuildChild",
		trace.WithAttributes(attribute.String("inkboard.name_hint", nameHint)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	id, err := h.registry.Create(ctx, nameHint)
	if err != nil {
		return nil, fmt.Errorf("visual: build child: %w", err)
	}
	span.SetAttributes(attribute.String("inkboard.origin", id.String()))

	worker, err := h.registry.Lookup(id)
	if err != nil {
		return nil, fmt.Errorf("visual: build child: %w: %w", ErrAborted, err)
	}

	content, err := dispatch.PostErr[any](worker, factory).Wait(ctx)
	if err != nil {
		h.discard(id)
		return nil, fmt.Errorf("visual: build child: %w", err)
	}

	var handoff atomic.Int32
	f := dispatch.PostErr(h.loop, func() (*Container, error) {
		if !handoff.CompareAndSwap(handoffPending, handoffCommitted) {
			return nil, ErrAborted
		}
		return h.attachChild(id, content)
	})

	select {
	case <-f.Done():
	case <-ctx.Done():
		if handoff.CompareAndSwap(handoffPending, handoffAbandoned) {
			h.discard(id)
			return nil, fmt.Errorf("visual: build child: %w", ctx.Err())
		}
		// The host step already committed; its result is imminent.
	}

	c, err := f.Result()
	if err != nil {
		h.discard(id)
		return nil, fmt.Errorf("visual: build child: %w", err)
	}
	return c, nil
}

// attachChild runs on the host loop.
func (h *Host) attachChild(origin dispatch.ID, content any) (*Container, error) {
	if _, err := h.registry.Lookup(origin); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAborted, err)
	}

	c := NewContainer(origin)
	if err := c.Attach(content, origin); err != nil {
		return nil, err
	}
	h.AddChild(c)

	inkboard.Logger().Debug("visual: child attached", "origin", origin, "children", len(h.children))
	return c, nil
}

// discard disposes the worker loop behind id, if still registered.
func (h *Host) discard(id dispatch.ID) {
	if err := h.registry.Dispose(id); err == nil {
		inkboard.Logger().Debug("visual: discarded worker loop", "id", id)
	}
}
