// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ember

import (
	"go.emberlog.dev/ember/internal/clock"
	"go.emberlog.dev/ember/record"
)

// Options configures Logger creation. Build it with NewOptions, which
// carries sane defaults; the zero Options has no clock.
type Options struct {
	clock         record.Clock
	autoCorrelate bool
}

// Builder configures a Logger with a fluent, configure-then-build API.
type Builder struct {
	opts Options
}

// NewOptions creates a Builder with default settings. The record header
// size is a compile-time constant in package record rather than a runtime
// Option: Go's fixed-size-array inlining (record.Record.inline) needs the
// size known at compile time, and a size chosen per-Logger would leave
// every other Record construction path in the record package unable to
// honor it (see DESIGN.md). Likewise there is no pop-timeout option: the
// consumer loop (Logger.run) uses spin.Wait's own backoff on an empty
// queue rather than a caller-tunable sleep, so a timeout value would have
// nowhere to be consulted (see DESIGN.md).
func NewOptions() *Builder {
	return &Builder{opts: Options{
		clock: clock.Wall{},
	}}
}

// Clock overrides the record.Clock used to stamp enqueued records.
// Exposed primarily for deterministic testing.
func (b *Builder) Clock(c record.Clock) *Builder {
	b.opts.clock = c
	return b
}

// AutoCorrelate makes Log generate a fresh record.CorrelationID for every
// Record that does not already carry one, so sinks can trace a log line
// across service boundaries without the caller opting in per call.
func (b *Builder) AutoCorrelate() *Builder {
	b.opts.autoCorrelate = true
	return b
}

// Build finalizes the Options.
func (b *Builder) Build() Options {
	return b.opts
}
