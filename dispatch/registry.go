// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/gogpu/inkboard"
)

// Registry maps IDs to running loops.
//
// A Registry is an explicit instance owned by whatever subsystem needs
// loops; there is no package-level default. Create, Lookup and Dispose may
// be called concurrently.
//
// Example:
//
//	reg := dispatch.NewRegistry()
//	defer reg.Close()
//
//	id, err := reg.Create(ctx, "ink")
//	if err != nil {
//	    return err
//	}
//	l, err := reg.Lookup(id)
type Registry struct {
	cfg registryConfig

	mu      sync.RWMutex
	entries map[ID]*Loop
	order   []ID
	pending map[ID]struct{}
	retired map[ID]struct{}
	closed  bool
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{
		cfg:     cfg,
		entries: make(map[ID]*Loop),
		pending: make(map[ID]struct{}),
		retired: make(map[ID]struct{}),
	}
}

// Create starts a new loop named "<nameHint>_<id>", registers it and
// returns its ID. It blocks until the loop is ready.
//
// A start failure is returned as a *StartError and nothing is registered.
// An empty nameHint is replaced by DefaultNameHint; the hint never affects
// identity.
func (r *Registry) Create(ctx context.Context, nameHint string) (ID, error) {
	if nameHint == "" {
		nameHint = DefaultNameHint
	}

	id, err := r.reserve()
	if err != nil {
		return ID{}, err
	}

	l, err := startLoop(ctx, id, nameHint+"_"+id.String(), r.cfg.loopOpts...)

	r.mu.Lock()
	delete(r.pending, id)
	if err != nil {
		r.retired[id] = struct{}{}
		r.mu.Unlock()
		return ID{}, err
	}
	if r.closed {
		r.retired[id] = struct{}{}
		r.mu.Unlock()
		l.BeginShutdown()
		return ID{}, ErrRegistryClosed
	}
	r.entries[id] = l
	r.order = append(r.order, id)
	r.mu.Unlock()

	inkboard.Logger().Debug("dispatch: loop registered", "name", l.Name(), "id", id)
	return id, nil
}

// reserve picks an ID that is neither live, starting, nor retired.
func (r *Registry) reserve() (ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ID{}, ErrRegistryClosed
	}
	for {
		id := NewID()
		if r.inUse(id) {
			continue
		}
		r.pending[id] = struct{}{}
		return id, nil
	}
}

// inUse must be called with the lock held.
func (r *Registry) inUse(id ID) bool {
	if id.IsZero() {
		return true
	}
	if _, ok := r.entries[id]; ok {
		return true
	}
	if _, ok := r.pending[id]; ok {
		return true
	}
	_, ok := r.retired[id]
	return ok
}

// Lookup returns the loop registered under id, or a *NotFoundError.
func (r *Registry) Lookup(id ID) (*Loop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.entries[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return l, nil
}

// Dispose unregisters id, retires it for good and asks its loop to shut
// down. It does not wait for the loop to stop: a background reaper waits up
// to the reap timeout and logs a warning if the loop is still running.
func (r *Registry) Dispose(id ID) error {
	r.mu.Lock()
	l, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	delete(r.entries, id)
	r.order = slices.DeleteFunc(r.order, func(x ID) bool { return x == id })
	r.retired[id] = struct{}{}
	r.mu.Unlock()

	l.BeginShutdown()
	go r.reap(l)

	inkboard.Logger().Debug("dispatch: loop disposed", "name", l.Name(), "id", id)
	return nil
}

func (r *Registry) reap(l *Loop) {
	timer := time.NewTimer(r.cfg.reapTimeout)
	defer timer.Stop()

	select {
	case <-l.Done():
	case <-timer.C:
		st := l.Stats()
		inkboard.Logger().Warn("dispatch: disposed loop did not stop in time",
			"name", l.Name(), "id", l.ID(), "state", st.State, "pending", st.Pending,
			"timeout", r.cfg.reapTimeout)
	}
}

// DisposeAll disposes every registered loop.
func (r *Registry) DisposeAll() {
	for _, id := range r.IDs() {
		// A concurrent Dispose may have won; NotFound is fine here.
		_ = r.Dispose(id)
	}
}

// Close disposes every loop and makes further Create calls fail with
// ErrRegistryClosed. Close is idempotent.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.DisposeAll()
}

// IDs returns the registered IDs in registration order.
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

// Len returns the number of registered loops.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// CheckHang runs CheckHang against the loop registered under id.
func (r *Registry) CheckHang(ctx context.Context, id ID, timeout time.Duration) (bool, error) {
	l, err := r.Lookup(id)
	if err != nil {
		return false, err
	}
	return CheckHang(ctx, l, timeout)
}
