// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"time"
)

// DefaultHangTimeout is the probe window used when CheckHang gets a
// non-positive timeout.
const DefaultHangTimeout = 1500 * time.Millisecond

// CheckHang reports whether l fails to run a no-op task within timeout.
//
// The no-op is never cancelled; if it completes after the timer fired the
// result is discarded. A loop that no longer accepts work is reported hung.
// If ctx ends first, CheckHang returns false and ctx.Err().
func CheckHang(ctx context.Context, l *Loop, timeout time.Duration) (bool, error) {
	if timeout <= 0 {
		timeout = DefaultHangTimeout
	}

	f := Post(l, func() struct{} { return struct{}{} })

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.Done():
		_, err := f.Result()
		return err != nil, nil
	case <-timer.C:
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
