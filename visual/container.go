// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"sync"

	"github.com/gogpu/inkboard/dispatch"
)

type containerState int

const (
	containerEmpty containerState = iota
	containerReady
	containerReleased
)

// Container is a host-affine node holding content built on another loop.
//
// A Container moves from empty to ready exactly once, through Attach. The
// attach is the handoff point: it happens-before every Content read, and
// from then on the originating loop must not mutate the content.
//
// The origin ID is a relation only. The Container never keeps the origin
// loop alive and never calls into it.
type Container struct {
	mu      sync.Mutex
	state   containerState
	origin  dispatch.ID
	content any
}

// NewContainer returns an empty container. origin may be the zero ID and
// set later by Attach.
func NewContainer(origin dispatch.ID) *Container {
	return &Container{origin: origin}
}

// Attach stores content and marks the container ready. It must be called on
// the host loop and succeeds at most once; later calls return
// ErrAlreadyAttached.
//
// A non-zero origin must match the origin given to NewContainer, if any.
func (c *Container) Attach(content any, origin dispatch.ID) error {
	if content == nil {
		return ErrNilContent
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case containerReady:
		return ErrAlreadyAttached
	case containerReleased:
		return ErrReleased
	}
	if !origin.IsZero() {
		if !c.origin.IsZero() && c.origin != origin {
			return ErrOriginMismatch
		}
		c.origin = origin
	}
	c.content = content
	c.state = containerReady
	return nil
}

// Content returns the attached content. It returns ErrNotReady before Attach
// and ErrReleased after the container left its Host.
func (c *Container) Content() (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case containerEmpty:
		return nil, ErrNotReady
	case containerReleased:
		return nil, ErrReleased
	}
	return c.content, nil
}

// Origin returns the ID of the loop the content was built on.
func (c *Container) Origin() dispatch.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.origin
}

// Ready reports whether content is attached and not yet released.
func (c *Container) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == containerReady
}

// release drops the content reference.
func (c *Container) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = nil
	c.state = containerReleased
}
