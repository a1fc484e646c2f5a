// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package priority defines the closed set of logging priorities and the
// attempt-counter encoding used by the recursion guard.
package priority

import "fmt"

// Priority is a logging priority. Values are multiples of 4; the low two
// bits of the stored byte are reserved for the attempt counter used by the
// recursion guard (see Attempt/WithAttempt).
type Priority uint8

// The closed set of priorities. Values are multiples of 4 so the low two
// bits never collide with a real priority value.
const (
	None  Priority = 0
	Trace Priority = 4
	Debug Priority = 8
	Info  Priority = 16
	Warn  Priority = 32
	Error Priority = 64
	Fatal Priority = 128
)

// attemptMask isolates the attempt counter (low 2 bits).
const attemptMask Priority = 0x03

// levelMask isolates the user-visible priority, discarding the attempt
// counter.
const levelMask = ^attemptMask

// MaxAttempt is the highest attempt counter the recursion guard allows
// before it must stop re-entering the logger and panic instead.
const MaxAttempt = 3

// Valid reports whether p, once the attempt counter is masked off, is one
// of the defined priority values.
func Valid(p Priority) bool {
	switch p.Level() {
	case None, Trace, Debug, Info, Warn, Error, Fatal:
		return true
	default:
		return false
	}
}

// Level returns p with the attempt counter masked off.
func (p Priority) Level() Priority {
	return p & levelMask
}

// Attempt returns the recursion-guard attempt counter stored in p's low
// two bits.
func (p Priority) Attempt() int {
	return int(p & attemptMask)
}

// WithAttempt returns p's level with the attempt counter replaced by n.
// n is clamped to [0, MaxAttempt].
func WithAttempt(p Priority, n int) Priority {
	if n < 0 {
		n = 0
	} else if n > MaxAttempt {
		n = MaxAttempt
	}
	return p.Level() | Priority(n)
}

// Elevate computes the priority to use when the logger itself must log an
// internal failure caused by logging p. The attempt counter is incremented;
// once it would exceed MaxAttempt, Elevate reports an error instead of
// returning a priority, signaling that the caller must not re-enqueue and
// should panic instead.
func Elevate(p Priority) (Priority, error) {
	next := p.Attempt() + 1
	if next > MaxAttempt {
		return 0, fmt.Errorf("priority: recursion depth exceeded for %s", p)
	}
	level := p.Level()
	if level < Error {
		level = Error
	}
	return WithAttempt(level, next), nil
}

// String renders the priority the way sinks render it: TRACE, DEBUG, INFO,
// WARN, ERROR, FATAL. Internal-elevated priorities map to the same string
// as their base level since the attempt counter is masked off first.
func (p Priority) String() string {
	switch p.Level() {
	case None:
		return "NONE"
	case Trace:
		return "TRACE"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return fmt.Sprintf("PRIORITY(%d)", uint8(p))
	}
}
