// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/inkboard"
)

// State is the lifecycle state of a Loop.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateShuttingDown
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// task is one queued work item. drop is called instead of run when the
// loop discards the task; it may be nil.
type task struct {
	run  func()
	drop func()
}

// Loop is a dedicated single-threaded run loop.
//
// The loop goroutine is locked to its own OS thread for its whole life, so
// objects with thread affinity can be created and used on it. Tasks are
// queued without bound: posting never blocks the caller.
//
// Thread safety: all methods are safe for concurrent use. Posted work runs
// only on the loop goroutine, one task at a time, in FIFO order.
type Loop struct {
	id   ID
	name string
	cfg  loopConfig

	// mu guards queue and every state transition that must be ordered
	// against enqueue.
	mu    sync.Mutex
	queue []task

	// wake has capacity 1 and is signalled whenever queue goes non-empty.
	wake chan struct{}

	// quit is closed exactly once, by the goroutine that moves the loop out
	// of Starting/Running.
	quit chan struct{}

	// done is closed when the loop goroutine exits.
	done chan struct{}

	state atomic.Int32

	executed atomic.Int64
	rejected atomic.Int64
	dropped  atomic.Int64
}

// LoopStats is a point-in-time snapshot of a loop's counters.
type LoopStats struct {
	Name     string
	State    State
	Pending  int
	Executed int64
	Rejected int64
	Dropped  int64
}

// Start spawns a new loop with a fresh ID and waits until it is ready to
// accept work.
//
// Start fails with a *StartError if the init hook fails or panics, if ctx
// is done, or if the start timeout elapses first. A loop whose start was
// abandoned shuts itself down as soon as it notices.
func Start(ctx context.Context, name string, opts ...LoopOption) (*Loop, error) {
	return startLoop(ctx, NewID(), name, opts...)
}

func startLoop(ctx context.Context, id ID, name string, opts ...LoopOption) (*Loop, error) {
	cfg := defaultLoopConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	l := &Loop{
		id:   id,
		name: name,
		cfg:  cfg,
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	l.state.Store(int32(StateStarting))

	ready := make(chan error, 1)
	go l.run(ready)

	timer := time.NewTimer(cfg.startTimeout)
	defer timer.Stop()

	select {
	case err := <-ready:
		if err != nil {
			return nil, &StartError{Name: name, Err: err}
		}
		inkboard.Logger().Debug("dispatch: loop started", "name", name, "id", id)
		return l, nil
	case <-ctx.Done():
		l.BeginShutdown()
		return nil, &StartError{Name: name, Err: ctx.Err()}
	case <-timer.C:
		l.BeginShutdown()
		return nil, &StartError{Name: name, Err: errStartTimeout}
	}
}

// run is the loop goroutine. The OS thread is never unlocked: it exits
// together with the loop.
func (l *Loop) run(ready chan<- error) {
	runtime.LockOSThread()
	defer close(l.done)

	if err := l.runInit(); err != nil {
		l.setStopped()
		ready <- err
		return
	}

	l.mu.Lock()
	ok := l.State() == StateStarting
	if ok {
		l.state.Store(int32(StateRunning))
	}
	l.mu.Unlock()
	if !ok {
		// BeginShutdown won the race with startup.
		l.setStopped()
		ready <- ErrLoopStopped
		return
	}
	ready <- nil

	for {
		select {
		case <-l.quit:
			l.finish()
			return
		case <-l.wake:
			l.runPending()
		}
	}
}

func (l *Loop) runInit() (err error) {
	if l.cfg.init == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Loop: l.name, Value: r, Stack: debug.Stack()}
		}
	}()
	return l.cfg.init()
}

// runPending executes queued tasks until the queue is empty. Under
// DropPending it stops as soon as shutdown has begun.
func (l *Loop) runPending() {
	for {
		if l.cfg.policy == DropPending && l.State() != StateRunning {
			return
		}
		t, ok := l.pop()
		if !ok {
			return
		}
		l.exec(t)
	}
}

// finish applies the shutdown policy to whatever is still queued. Enqueue
// is already refusing work, so the queue can only shrink here.
func (l *Loop) finish() {
	for {
		t, ok := l.pop()
		if !ok {
			break
		}
		if l.cfg.policy == DropPending {
			l.dropped.Add(1)
			if t.drop != nil {
				t.drop()
			}
			continue
		}
		l.exec(t)
	}
	l.setStopped()
	inkboard.Logger().Debug("dispatch: loop stopped", "name", l.name, "id", l.id,
		"executed", l.executed.Load(), "dropped", l.dropped.Load())
}

func (l *Loop) exec(t task) {
	defer func() {
		if r := recover(); r != nil {
			inkboard.Logger().Warn("dispatch: task panicked", "name", l.name, "panic", r)
		}
	}()
	l.executed.Add(1)
	t.run()
}

func (l *Loop) pop() (task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return task{}, false
	}
	t := l.queue[0]
	l.queue[0] = task{}
	l.queue = l.queue[1:]
	return t, true
}

func (l *Loop) enqueue(t task) error {
	l.mu.Lock()
	if l.State() != StateRunning {
		l.mu.Unlock()
		l.rejected.Add(1)
		return ErrLoopStopped
	}
	l.queue = append(l.queue, t)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
		// Already signalled; the loop will see this task in the same pass.
	}
	return nil
}

func (l *Loop) setStopped() {
	l.mu.Lock()
	l.state.Store(int32(StateStopped))
	l.mu.Unlock()
}

// Submit queues fn for execution on the loop without waiting for it.
// Returns ErrLoopStopped if the loop no longer accepts work.
// A panic in fn is logged and does not stop the loop.
func (l *Loop) Submit(fn func()) error {
	if fn == nil {
		return nil
	}
	return l.enqueue(task{run: fn})
}

// BeginShutdown asks the loop to stop. Queued tasks are drained or dropped
// according to the loop's ShutdownPolicy. It does not wait for the loop to
// exit; use Done for that.
//
// BeginShutdown is idempotent and safe to call from any goroutine,
// including the loop itself.
func (l *Loop) BeginShutdown() {
	l.mu.Lock()
	s := l.State()
	if s == StateShuttingDown || s == StateStopped {
		l.mu.Unlock()
		return
	}
	l.state.Store(int32(StateShuttingDown))
	l.mu.Unlock()

	close(l.quit)
}

// IsAlive reports whether the loop is starting or running.
// It reads a local flag and never calls into the loop.
func (l *Loop) IsAlive() bool {
	s := l.State()
	return s == StateStarting || s == StateRunning
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// ID returns the loop identity.
func (l *Loop) ID() ID {
	return l.id
}

// Name returns the diagnostic name given at start.
func (l *Loop) Name() string {
	return l.name
}

// Done returns a channel closed once the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Stats returns a snapshot of the loop's counters.
func (l *Loop) Stats() LoopStats {
	l.mu.Lock()
	pending := len(l.queue)
	l.mu.Unlock()

	return LoopStats{
		Name:     l.name,
		State:    l.State(),
		Pending:  pending,
		Executed: l.executed.Load(),
		Rejected: l.rejected.Load(),
		Dropped:  l.dropped.Load(),
	}
}
