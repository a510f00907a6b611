// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/gogpu/inkboard/dispatch"
)

// tracerName is the instrumentation scope of spans emitted by this package.
const tracerName = "github.com/gogpu/inkboard/visual"

// HostOption configures a Host.
type HostOption func(*hostConfig)

type hostConfig struct {
	compositor     Compositor
	tracerProvider trace.TracerProvider
}

func defaultHostConfig() hostConfig {
	return hostConfig{
		tracerProvider: otel.GetTracerProvider(),
	}
}

// WithCompositor sets the compositor notified when children change.
func WithCompositor(c Compositor) HostOption {
	return func(o *hostConfig) {
		o.compositor = c
	}
}

// WithTracerProvider sets the provider used for BuildChild spans.
// The default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) HostOption {
	return func(o *hostConfig) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// BoardOption configures a Board.
type BoardOption func(*boardConfig)

type boardConfig struct {
	hostName     string
	hostOpts     []HostOption
	hostLoopOpts []dispatch.LoopOption
	registryOpts []dispatch.RegistryOption
}

func defaultBoardConfig() boardConfig {
	return boardConfig{
		hostName: "inkboard-host",
	}
}

// WithHostName sets the diagnostic name of the host loop.
func WithHostName(name string) BoardOption {
	return func(o *boardConfig) {
		if name != "" {
			o.hostName = name
		}
	}
}

// WithHostOptions passes opts to the Board's Host.
func WithHostOptions(opts ...HostOption) BoardOption {
	return func(o *boardConfig) {
		o.hostOpts = append(o.hostOpts, opts...)
	}
}

// WithHostLoopOptions passes opts to the host loop.
func WithHostLoopOptions(opts ...dispatch.LoopOption) BoardOption {
	return func(o *boardConfig) {
		o.hostLoopOpts = append(o.hostLoopOpts, opts...)
	}
}

// WithRegistryOptions passes opts to the Board's worker registry.
func WithRegistryOptions(opts ...dispatch.RegistryOption) BoardOption {
	return func(o *boardConfig) {
		o.registryOpts = append(o.registryOpts, opts...)
	}
}
