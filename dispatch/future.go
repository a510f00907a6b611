// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/gogpu/inkboard"
)

// Future is the eventual result of work posted to a Loop.
//
// A Future resolves exactly once. Waiters may give up early; the result is
// still stored and simply dropped with the Future once nothing references it.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T, err error) {
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
	})
}

// Done returns a channel closed when the future resolves.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Ready reports whether the future has resolved.
func (f *Future[T]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the future resolves or ctx is done. Giving up does not
// cancel the work.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until the future resolves.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.val, f.err
}

// Post queues work on l and returns a Future for its result.
//
// work always runs on the loop goroutine, never on the caller's, and Post
// never blocks. If l is not accepting work the future resolves immediately
// with ErrLoopStopped. A panic in work resolves the future with a
// *PanicError.
func Post[T any](l *Loop, work func() T) *Future[T] {
	return PostErr(l, func() (T, error) {
		return work(), nil
	})
}

// PostErr is like Post for work that can fail.
func PostErr[T any](l *Loop, work func() (T, error)) *Future[T] {
	f := newFuture[T]()

	err := l.enqueue(task{
		run: func() {
			defer func() {
				if r := recover(); r != nil {
					var zero T
					f.resolve(zero, &PanicError{Loop: l.name, Value: r, Stack: debug.Stack()})
					inkboard.Logger().Warn("dispatch: posted work panicked", "name", l.name, "panic", r)
				}
			}()
			v, err := work()
			f.resolve(v, err)
		},
		drop: func() {
			var zero T
			f.resolve(zero, ErrLoopStopped)
		},
	})
	if err != nil {
		var zero T
		f.resolve(zero, err)
	}
	return f
}
