// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import "time"

// ShutdownPolicy decides what happens to queued tasks on BeginShutdown.
type ShutdownPolicy int

const (
	// DrainPending runs every task queued before shutdown, then stops.
	DrainPending ShutdownPolicy = iota

	// DropPending discards queued tasks. Their futures resolve with
	// ErrLoopStopped.
	DropPending
)

// String returns the policy name.
func (p ShutdownPolicy) String() string {
	switch p {
	case DrainPending:
		return "drain"
	case DropPending:
		return "drop"
	default:
		return "unknown"
	}
}

// Default values.
const (
	// DefaultStartTimeout bounds how long Start waits for the loop to be ready.
	DefaultStartTimeout = 5 * time.Second

	// DefaultReapTimeout bounds how long a disposed loop may take to stop
	// before the registry logs a warning.
	DefaultReapTimeout = 2 * time.Second

	// DefaultNameHint is used when Create is given an empty hint.
	DefaultNameHint = "inkboard"
)

// LoopOption configures a Loop at start.
type LoopOption func(*loopConfig)

type loopConfig struct {
	init         func() error
	startTimeout time.Duration
	policy       ShutdownPolicy
}

func defaultLoopConfig() loopConfig {
	return loopConfig{
		startTimeout: DefaultStartTimeout,
		policy:       DrainPending,
	}
}

// WithInit runs fn on the loop goroutine before the loop reports ready.
// A non-nil error or a panic makes Start fail with a *StartError.
func WithInit(fn func() error) LoopOption {
	return func(c *loopConfig) {
		c.init = fn
	}
}

// WithStartTimeout sets how long Start waits for the loop to become ready.
// Non-positive values keep the default.
func WithStartTimeout(d time.Duration) LoopOption {
	return func(c *loopConfig) {
		if d > 0 {
			c.startTimeout = d
		}
	}
}

// WithShutdownPolicy sets what BeginShutdown does with queued tasks.
func WithShutdownPolicy(p ShutdownPolicy) LoopOption {
	return func(c *loopConfig) {
		c.policy = p
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	loopOpts    []LoopOption
	reapTimeout time.Duration
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		reapTimeout: DefaultReapTimeout,
	}
}

// WithLoopOptions applies opts to every loop the registry creates.
func WithLoopOptions(opts ...LoopOption) RegistryOption {
	return func(c *registryConfig) {
		c.loopOpts = append(c.loopOpts, opts...)
	}
}

// WithReapTimeout sets how long Dispose waits in the background for a loop
// to stop before logging a warning. Non-positive values keep the default.
func WithReapTimeout(d time.Duration) RegistryOption {
	return func(c *registryConfig) {
		if d > 0 {
			c.reapTimeout = d
		}
	}
}
