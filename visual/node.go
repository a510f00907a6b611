// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

// Node is an element of a Host's child list.
type Node interface {
	// Ready reports whether the node's content can be read by the compositor.
	Ready() bool
}

// Leaf is a plain node built on the host loop. It is always ready.
type Leaf struct {
	value any
}

// NewLeaf wraps v as a host-built node.
func NewLeaf(v any) *Leaf {
	return &Leaf{value: v}
}

// Ready always returns true.
func (l *Leaf) Ready() bool { return true }

// Value returns the wrapped value.
func (l *Leaf) Value() any { return l.value }

// Compositor consumes a Host's child list.
//
// Invalidate is called on the host loop every time the child list changes.
// Implementations read the list back with ChildCount and ChildAt from the
// host loop only.
type Compositor interface {
	Invalidate(h *Host)
}

// CompositorFunc adapts a function to the Compositor interface.
type CompositorFunc func(h *Host)

// Invalidate calls f(h).
func (f CompositorFunc) Invalidate(h *Host) { f(h) }
