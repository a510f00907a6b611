// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"context"
	"fmt"
	"sync"

	"github.com/gogpu/inkboard"
	"github.com/gogpu/inkboard/dispatch"
)

// Board owns a host loop, a worker registry and the Host tying them
// together. It is the lifecycle boundary of the subsystem: Open brings it
// up, Close disposes every worker loop and stops the host loop.
type Board struct {
	hostLoop *dispatch.Loop
	registry *dispatch.Registry
	host     *Host

	closeOnce sync.Once
}

// Open starts the host loop and returns a ready Board.
func Open(ctx context.Context, opts ...BoardOption) (*Board, error) {
	cfg := defaultBoardConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	hostLoop, err := dispatch.Start(ctx, cfg.hostName, cfg.hostLoopOpts...)
	if err != nil {
		return nil, fmt.Errorf("visual: open board: %w", err)
	}

	registry := dispatch.NewRegistry(cfg.registryOpts...)
	host, err := NewHost(hostLoop, registry, cfg.hostOpts...)
	if err != nil {
		hostLoop.BeginShutdown()
		return nil, fmt.Errorf("visual: open board: %w", err)
	}

	inkboard.Logger().Info("visual: board opened", "host", cfg.hostName)
	return &Board{
		hostLoop: hostLoop,
		registry: registry,
		host:     host,
	}, nil
}

// Host returns the board's Host.
func (b *Board) Host() *Host {
	return b.host
}

// Registry returns the registry of worker loops.
func (b *Board) Registry() *dispatch.Registry {
	return b.registry
}

// HostLoop returns the loop that owns the Host.
func (b *Board) HostLoop() *dispatch.Loop {
	return b.hostLoop
}

// Close disposes every worker loop and begins shutting down the host loop.
// It does not wait; Done is closed once the host loop has stopped.
// Close is idempotent.
func (b *Board) Close() {
	b.closeOnce.Do(func() {
		b.registry.Close()
		b.hostLoop.BeginShutdown()
		inkboard.Logger().Info("visual: board closed")
	})
}

// Done returns a channel closed once the host loop has stopped.
func (b *Board) Done() <-chan struct{} {
	return b.hostLoop.Done()
}
