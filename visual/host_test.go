// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/inkboard/dispatch"
)

const waitTimeout = 5 * time.Second

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	t.Cleanup(cancel)
	return ctx
}

func openBoardT(t *testing.T, opts ...BoardOption) *Board {
	t.Helper()
	b, err := Open(context.Background(), opts...)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

// do runs fn on the host loop and fails the test if it cannot.
func do(t *testing.T, h *Host, fn func(h *Host)) {
	t.Helper()
	if err := h.Do(testCtx(t), fn); err != nil {
		t.Fatalf("Do() = %v", err)
	}
}

func childCount(t *testing.T, h *Host) int {
	t.Helper()
	var n int
	do(t, h, func(h *Host) { n = h.ChildCount() })
	return n
}

// countingCompositor records invalidations. It is only touched on the host
// loop.
type countingCompositor struct {
	calls int
	seen  []int
}

func (c *countingCompositor) Invalidate(h *Host) {
	c.calls++
	c.seen = append(c.seen, h.ChildCount())
}

// =============================================================================
// NewHost Tests
// =============================================================================

func TestNewHost_NilDependencies(t *testing.T) {
	b := openBoardT(t)

	if _, err := NewHost(nil, b.Registry()); !errors.Is(err, ErrNilLoop) {
		t.Errorf("NewHost(nil loop) = %v, want ErrNilLoop", err)
	}
	if _, err := NewHost(b.HostLoop(), nil); !errors.Is(err, ErrNilRegistry) {
		t.Errorf("NewHost(nil registry) = %v, want ErrNilRegistry", err)
	}
}

// =============================================================================
// Child Collection Tests
// =============================================================================

func TestHost_AddChildAndIndex(t *testing.T) {
	b := openBoardT(t)
	h := b.Host()

	leaves := []*Leaf{NewLeaf("a"), NewLeaf("b"), NewLeaf("c")}
	do(t, h, func(h *Host) {
		for _, l := range leaves {
			h.AddChild(l)
		}
		h.AddChild(nil)
	})

	do(t, h, func(h *Host) {
		if h.ChildCount() != 3 {
			t.Errorf("ChildCount() = %d, want 3", h.ChildCount())
		}
		for i, want := range leaves {
			got, err := h.ChildAt(i)
			if err != nil {
				t.Errorf("ChildAt(%d) = %v", i, err)
				continue
			}
			if got != want {
				t.Errorf("ChildAt(%d) = %v, want %v", i, got, want)
			}
		}
	})
}

func TestHost_ChildAtOutOfRange(t *testing.T) {
	b := openBoardT(t)
	h := b.Host()

	check := func(h *Host) {
		n := h.ChildCount()
		for _, i := range []int{-1, n, n + 1, -100} {
			_, err := h.ChildAt(i)
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("ChildAt(%d) with %d children = %v, want ErrIndexOutOfRange", i, n, err)
			}
			var ie *IndexError
			if errors.As(err, &ie) && (ie.Index != i || ie.Count != n) {
				t.Errorf("IndexError = %+v, want {Index:%d Count:%d}", ie, i, n)
			}
		}
		for i := range n {
			if _, err := h.ChildAt(i); err != nil {
				t.Errorf("ChildAt(%d) = %v", i, err)
			}
		}
	}

	do(t, h, check)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			if err := h.Do(context.Background(), func(h *Host) { h.AddChild(NewLeaf(i)) }); err != nil {
				t.Errorf("Do() = %v", err)
			}
		})
	}
	wg.Wait()

	if n := childCount(t, h); n != 20 {
		t.Errorf("ChildCount() = %d, want 20", n)
	}
	do(t, h, check)
}

func TestHost_RemoveAt(t *testing.T) {
	b := openBoardT(t)
	h := b.Host()

	c := NewContainer(dispatch.NewID())
	do(t, h, func(h *Host) {
		if err := c.Attach("ink", dispatch.ID{}); err != nil {
			t.Errorf("Attach() = %v", err)
			return
		}
		h.AddChild(NewLeaf("first"))
		h.AddChild(c)
		h.AddChild(NewLeaf("last"))
	})

	do(t, h, func(h *Host) {
		n, err := h.RemoveAt(1)
		if err != nil {
			t.Errorf("RemoveAt(1) = %v", err)
			return
		}
		if n != Node(c) {
			t.Errorf("RemoveAt(1) = %v, want the container", n)
		}
		if h.ChildCount() != 2 {
			t.Errorf("ChildCount() = %d, want 2", h.ChildCount())
		}
		last, _ := h.ChildAt(1)
		if last.(*Leaf).Value() != "last" {
			t.Errorf("ChildAt(1) = %v, want last", last.(*Leaf).Value())
		}
		if _, err := h.RemoveAt(5); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("RemoveAt(5) = %v, want ErrIndexOutOfRange", err)
		}
	})

	if _, err := c.Content(); !errors.Is(err, ErrReleased) {
		t.Errorf("Content() of removed container = %v, want ErrReleased", err)
	}
}

func TestHost_RemoveAtDisposesOrigin(t *testing.T) {
	b := openBoardT(t)
	h := b.Host()

	removed, err := h.BuildChild(testCtx(t), func() (any, error) { return "gone", nil }, "removed")
	if err != nil {
		t.Fatalf("BuildChild() = %v", err)
	}
	kept, err := h.BuildChild(testCtx(t), func() (any, error) { return "kept", nil }, "kept")
	if err != nil {
		t.Fatalf("BuildChild() = %v", err)
	}
	worker, err := b.Registry().Lookup(removed.Origin())
	if err != nil {
		t.Fatalf("Lookup(removed origin) = %v", err)
	}

	do(t, h, func(h *Host) {
		if _, err := h.RemoveAt(0); err != nil {
			t.Errorf("RemoveAt(0) = %v", err)
		}
	})

	if _, err := b.Registry().Lookup(removed.Origin()); !errors.Is(err, dispatch.ErrNotFound) {
		t.Errorf("Lookup(removed origin) = %v, want ErrNotFound", err)
	}
	select {
	case <-worker.Done():
	case <-time.After(waitTimeout):
		t.Fatal("origin loop of removed child did not stop")
	}

	if n := b.Registry().Len(); n != 1 {
		t.Errorf("Registry().Len() = %d, want 1", n)
	}
	if l, err := b.Registry().Lookup(kept.Origin()); err != nil || !l.IsAlive() {
		t.Errorf("Lookup(kept origin) = (%v, %v), want a live loop", l, err)
	}
}

func TestHost_Invalidate(t *testing.T) {
	comp := &countingCompositor{}
	b := openBoardT(t, WithHostOptions(WithCompositor(comp)))
	h := b.Host()

	do(t, h, func(h *Host) {
		if h.IsDirty() {
			t.Error("IsDirty() = true on a new host")
		}
		h.AddChild(NewLeaf(1))
		h.AddChild(NewLeaf(2))
		if !h.IsDirty() {
			t.Error("IsDirty() = false after AddChild")
		}
		h.ClearDirty()
		if h.IsDirty() {
			t.Error("IsDirty() = true after ClearDirty")
		}
		if _, err := h.RemoveAt(0); err != nil {
			t.Errorf("RemoveAt(0) = %v", err)
		}
	})

	do(t, h, func(*Host) {
		if comp.calls != 3 {
			t.Errorf("Invalidate calls = %d, want 3", comp.calls)
		}
		want := []int{1, 2, 1}
		for i, n := range want {
			if i < len(comp.seen) && comp.seen[i] != n {
				t.Errorf("Invalidate #%d saw %d children, want %d", i, comp.seen[i], n)
			}
		}
	})
}

func TestCompositorFunc(t *testing.T) {
	var got *Host
	f := CompositorFunc(func(h *Host) { got = h })
	h := &Host{}
	f.Invalidate(h)
	if got != h {
		t.Error("CompositorFunc did not forward the host")
	}
}

func TestHost_DoAfterClose(t *testing.T) {
	b := openBoardT(t)
	b.Close()

	select {
	case <-b.Done():
	case <-time.After(waitTimeout):
		t.Fatal("host loop did not stop")
	}
	err := b.Host().Do(testCtx(t), func(*Host) {})
	if !errors.Is(err, dispatch.ErrLoopStopped) {
		t.Errorf("Do() after Close = %v, want ErrLoopStopped", err)
	}
}
