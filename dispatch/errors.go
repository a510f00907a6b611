// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"errors"
	"fmt"
)

// Errors.
var (
	// ErrStart matches every *StartError.
	ErrStart = errors.New("dispatch: loop failed to start")

	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("dispatch: loop not found")

	// ErrLoopStopped is returned when work is posted to a loop that is shutting
	// down or stopped, and resolves futures whose tasks were dropped.
	ErrLoopStopped = errors.New("dispatch: loop is not accepting work")

	// ErrRegistryClosed is returned by Create after Close.
	ErrRegistryClosed = errors.New("dispatch: registry is closed")

	errStartTimeout = errors.New("start timed out")
)

// StartError reports that a loop could not be brought up.
type StartError struct {
	Name string
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("dispatch: start loop %q: %v", e.Name, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStart) hold for any StartError.
func (e *StartError) Is(target error) bool { return target == ErrStart }

// NotFoundError indicates an ID that is not registered, either because it
// never was or because it has been disposed.
type NotFoundError struct {
	ID ID
}

func (e *NotFoundError) Error() string {
	return "dispatch: loop not found: " + e.ID.String()
}

// Is makes errors.Is(err, ErrNotFound) hold for any NotFoundError.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PanicError carries a panic recovered while running a task or init hook.
type PanicError struct {
	Loop  string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("dispatch: panic on loop %q: %v", e.Loop, e.Value)
}
