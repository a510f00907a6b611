// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package dispatch provides dedicated single-threaded execution loops and a
// registry that creates, looks up and disposes them.
//
// A [Loop] owns one goroutine locked to its own OS thread. Work is posted
// from any goroutine and always runs on the loop goroutine, in the order the
// loop received it:
//
//	l, err := dispatch.Start(ctx, "ink")
//	if err != nil {
//	    return err
//	}
//	defer l.BeginShutdown()
//
//	f := dispatch.Post(l, func() int { return 42 })
//	v, err := f.Wait(ctx)
//
// A [Registry] maps process-unique [ID] values to loops. Disposed IDs are
// retired and never handed out again, so a stale ID can never alias a new
// loop.
//
// [CheckHang] detects a wedged loop by racing a no-op task against a timer.
// It never cancels the outstanding no-op; deciding what to do with a hung
// loop is up to the caller.
package dispatch
