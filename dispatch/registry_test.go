// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/inkboard"
)

func newRegistryT(t *testing.T, opts ...RegistryOption) *Registry {
	t.Helper()
	r := NewRegistry(opts...)
	t.Cleanup(r.Close)
	return r
}

func lookupT(t *testing.T, r *Registry, id ID) *Loop {
	t.Helper()
	l, err := r.Lookup(id)
	if err != nil {
		t.Fatalf("Lookup(%v) = %v", id, err)
	}
	return l
}

// syncBuffer is a bytes.Buffer safe for the concurrent writes of a logger.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// =============================================================================
// Create Tests
// =============================================================================

func TestRegistry_CreateAndLookup(t *testing.T) {
	r := newRegistryT(t)

	id, err := r.Create(testCtx(t), "ink")
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	l := lookupT(t, r, id)

	if l.ID() != id {
		t.Errorf("Lookup().ID() = %v, want %v", l.ID(), id)
	}
	if want := "ink_" + id.String(); l.Name() != want {
		t.Errorf("Name() = %q, want %q", l.Name(), want)
	}
	if !l.IsAlive() {
		t.Error("registered loop is not alive")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistry_CreateDefaultHint(t *testing.T) {
	r := newRegistryT(t)

	id, err := r.Create(testCtx(t), "")
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	if name := lookupT(t, r, id).Name(); !strings.HasPrefix(name, DefaultNameHint+"_") {
		t.Errorf("Name() = %q, want prefix %q", name, DefaultNameHint+"_")
	}
}

func TestRegistry_CreateDistinctIDs(t *testing.T) {
	r := newRegistryT(t)

	const n = 32
	ids := make([]ID, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Go(func() {
			id, err := r.Create(context.Background(), "same-hint")
			if err != nil {
				t.Errorf("Create() = %v", err)
				return
			}
			ids[i] = id
		})
	}
	wg.Wait()

	seen := make(map[ID]bool, n)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID %v", id)
		}
		seen[id] = true
	}
	if r.Len() != n {
		t.Errorf("Len() = %d, want %d", r.Len(), n)
	}
	if got := len(r.IDs()); got != n {
		t.Errorf("len(IDs()) = %d, want %d", got, n)
	}
}

func TestRegistry_CreateStartFailure(t *testing.T) {
	initErr := errors.New("thread refused")
	r := newRegistryT(t, WithLoopOptions(WithInit(func() error { return initErr })))

	id, err := r.Create(testCtx(t), "ink")
	if !errors.Is(err, ErrStart) || !errors.Is(err, initErr) {
		t.Errorf("Create() error = %v, want StartError wrapping %v", err, initErr)
	}
	if !id.IsZero() {
		t.Errorf("Create() id = %v on failure, want zero", id)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after failed Create, want 0", r.Len())
	}
}

func TestRegistry_IDsOrder(t *testing.T) {
	r := newRegistryT(t)

	var want []ID
	for range 3 {
		id, err := r.Create(testCtx(t), "ordered")
		if err != nil {
			t.Fatalf("Create() = %v", err)
		}
		want = append(want, id)
	}
	if diff := cmp.Diff(want, r.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}

	if err := r.Dispose(want[1]); err != nil {
		t.Fatalf("Dispose() = %v", err)
	}
	want = []ID{want[0], want[2]}
	if diff := cmp.Diff(want, r.IDs()); diff != "" {
		t.Errorf("IDs() after Dispose mismatch (-want +got):\n%s", diff)
	}
}

// =============================================================================
// Lookup / Dispose Tests
// =============================================================================

func TestRegistry_LookupUnknown(t *testing.T) {
	r := newRegistryT(t)
	id := NewID()

	_, err := r.Lookup(id)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.ID != id {
		t.Errorf("Lookup() error = %#v, want *NotFoundError{ID: %v}", err, id)
	}
}

func TestRegistry_DisposeIsPermanent(t *testing.T) {
	r := newRegistryT(t)

	id, err := r.Create(testCtx(t), "ink")
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	l := lookupT(t, r, id)

	if err := r.Dispose(id); err != nil {
		t.Fatalf("Dispose() = %v", err)
	}
	if _, err := r.Lookup(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup() after Dispose = %v, want ErrNotFound", err)
	}

	waitStopped(t, l)

	// Still gone after the loop stopped and after more loops were created.
	for range 4 {
		if _, err := r.Create(testCtx(t), "ink"); err != nil {
			t.Fatalf("Create() = %v", err)
		}
	}
	if _, err := r.Lookup(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup() long after Dispose = %v, want ErrNotFound", err)
	}
	if err := r.Dispose(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Dispose() = %v, want ErrNotFound", err)
	}
	for _, live := range r.IDs() {
		if live == id {
			t.Errorf("disposed ID %v was reused", id)
		}
	}
}

func TestRegistry_DisposeDoesNotBlock(t *testing.T) {
	r := newRegistryT(t)

	id, err := r.Create(testCtx(t), "busy")
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	l := lookupT(t, r, id)
	release := blockLoop(t, l)

	start := time.Now()
	if err := r.Dispose(id); err != nil {
		t.Fatalf("Dispose() = %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Dispose() took %v on a busy loop, want it to return immediately", elapsed)
	}
	if l.State() != StateShuttingDown {
		t.Errorf("State() = %v, want %v", l.State(), StateShuttingDown)
	}

	release()
	waitStopped(t, l)
}

func TestRegistry_DisposeLogsStuckLoop(t *testing.T) {
	orig := inkboard.Logger()
	t.Cleanup(func() { inkboard.SetLogger(orig) })

	var buf syncBuffer
	inkboard.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	r := newRegistryT(t, WithReapTimeout(20*time.Millisecond))
	id, err := r.Create(testCtx(t), "stuck")
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	l := lookupT(t, r, id)
	release := blockLoop(t, l)
	t.Cleanup(release)

	if err := r.Dispose(id); err != nil {
		t.Fatalf("Dispose() = %v", err)
	}

	deadline := time.Now().Add(waitTimeout)
	for !strings.Contains(buf.String(), "did not stop in time") {
		if time.Now().After(deadline) {
			t.Fatalf("no reaper warning logged, got: %s", buf.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry()

	var loops []*Loop
	for range 3 {
		id, err := r.Create(testCtx(t), "ink")
		if err != nil {
			t.Fatalf("Create() = %v", err)
		}
		loops = append(loops, lookupT(t, r, id))
	}

	r.Close()
	r.Close()

	if r.Len() != 0 {
		t.Errorf("Len() after Close = %d, want 0", r.Len())
	}
	for _, l := range loops {
		waitStopped(t, l)
	}
	if _, err := r.Create(testCtx(t), "late"); !errors.Is(err, ErrRegistryClosed) {
		t.Errorf("Create() after Close = %v, want ErrRegistryClosed", err)
	}
}

func TestRegistry_CheckHang(t *testing.T) {
	r := newRegistryT(t)

	if _, err := r.CheckHang(testCtx(t), NewID(), 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("CheckHang(unknown) error = %v, want ErrNotFound", err)
	}

	id, err := r.Create(testCtx(t), "probe")
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	hung, err := r.CheckHang(testCtx(t), id, time.Second)
	if err != nil || hung {
		t.Errorf("CheckHang() = (%v, %v), want (false, nil)", hung, err)
	}
}
