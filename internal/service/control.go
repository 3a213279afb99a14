// Package service runs the sniper's long-lived loops: a control structure
// that spawns them, coordinates fail-fast shutdown, and joins them, plus
// the log-consumption drivers built on top of it.
package service

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Control coordinates a group of service loops.
//
// Every loop spawned from the same Control shares one stop flag: the
// first loop to fail sets it, and every sibling stops after its current
// iteration. Cancellation is cooperative only - the flag is checked at
// iteration boundaries, never mid-handler.
type Control struct {
	stop atomic.Bool
	log  *slog.Logger
}

// NewControl creates a Control. A nil logger uses slog.Default().
func NewControl(logger *slog.Logger) *Control {
	if logger == nil {
		logger = slog.Default()
	}
	return &Control{log: logger}
}

// Stop requests a graceful stop of every loop spawned from this Control.
func (c *Control) Stop() {
	c.stop.Store(true)
}

// Stopping reports whether a stop has been requested.
func (c *Control) Stopping() bool {
	return c.stop.Load()
}

// SpawnLoop runs body repeatedly on a dedicated goroutine until it
// returns an error or the shared stop flag is set. On error the flag is
// set (stopping all sibling loops) and the error is recorded for Join.
//
// A panic inside body is recovered and treated as a loop-fatal error.
// This covers the case of shared state left inconsistent by a panic
// while a lock was held: the whole control group goes down rather than
// limping on.
func (c *Control) SpawnLoop(name string, body func() error) *Handle {
	h := &Handle{name: name, done: make(chan struct{})}

	go func() {
		defer close(h.done)

		c.log.Debug("service loop starting", "loop", name)
		for !c.stop.Load() {
			if err := runIteration(body); err != nil {
				c.stop.Store(true)
				h.err = fmt.Errorf("%s: %w", name, err)
				c.log.Error("service loop failed", "loop", name, "error", err)
				return
			}
		}
		c.log.Debug("service loop stopped", "loop", name)
	}()

	return h
}

// failedHandle returns a handle that is already finished with err, and
// stops the whole group. Used when a loop cannot even start (e.g. its
// initial cursor load fails).
func (c *Control) failedHandle(name string, err error) *Handle {
	c.stop.Store(true)
	c.log.Error("service loop failed to start", "loop", name, "error", err)

	h := &Handle{name: name, done: make(chan struct{}), err: fmt.Errorf("%s: %w", name, err)}
	close(h.done)
	return h
}

func runIteration(body func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in loop body: %v", r)
		}
	}()
	return body()
}

// Handle is a join handle for one spawned loop.
type Handle struct {
	name string
	done chan struct{}
	err  error
}

// Name returns the loop's name.
func (h *Handle) Name() string {
	return h.name
}

// Join blocks until the loop finishes and returns its recorded error, if
// any. Safe to call multiple times.
func (h *Handle) Join() error {
	<-h.done
	return h.err
}

// Done returns a channel closed when the loop finishes. Useful for
// selecting across several loops and OS signals.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
