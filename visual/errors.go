// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"errors"
	"fmt"
)

// Errors returned by Container and Host.
var (
	// ErrAlreadyAttached is returned by a second Attach on a Container.
	ErrAlreadyAttached = errors.New("visual: container already attached")

	// ErrNotReady is returned by Content before Attach.
	ErrNotReady = errors.New("visual: container content not ready")

	// ErrReleased is returned once a Container has been removed from its Host.
	ErrReleased = errors.New("visual: container released")

	// ErrOriginMismatch is returned when Attach names a different origin than
	// the one the Container was created with.
	ErrOriginMismatch = errors.New("visual: origin does not match container")

	// ErrNilContent is returned when Attach is given nil content.
	ErrNilContent = errors.New("visual: nil content")

	// ErrIndexOutOfRange matches every *IndexError.
	ErrIndexOutOfRange = errors.New("visual: child index out of range")

	// ErrAborted is returned by BuildChild when the origin loop was disposed
	// before the content reached the host.
	ErrAborted = errors.New("visual: build aborted")

	// ErrNilFactory is returned by BuildChild when factory is nil.
	ErrNilFactory = errors.New("visual: nil factory")

	// ErrNilLoop is returned by NewHost when the host loop is nil.
	ErrNilLoop = errors.New("visual: nil host loop")

	// ErrNilRegistry is returned by NewHost when the registry is nil.
	ErrNilRegistry = errors.New("visual: nil registry")
)

// IndexError reports a child index outside [0, Count).
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("visual: child index %d out of range [0, %d)", e.Index, e.Count)
}

// Is makes errors.Is(err, ErrIndexOutOfRange) hold for any IndexError.
func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }
