// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sink defines the consumer-facing write contract and the small
// set of text-rendering helpers every concrete sink needs, plus the
// terminal fallback writer the logger calls when the recursion guard runs
// out of attempts.
package sink

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"github.com/google/uuid"

	"go.emberlog.dev/ember/priority"
)

// RenderedRecord is the text-ready form of a Record, built once by the
// consumer and handed to every sink whose threshold is met.
type RenderedRecord struct {
	Priority      priority.Priority
	Timestamp     time.Time
	ThreadID      uint64
	File          string
	Line          uint32
	Function      string
	Text          string
	CorrelationID uuid.UUID // uuid.Nil when the producer did not opt in
}

// Sink receives formatted log output on the consumer goroutine only. Write
// may block; an error propagates back to the logger's recursion guard.
type Sink interface {
	// IsEnabled reports whether p meets this sink's current threshold.
	IsEnabled(p priority.Priority) bool
	// Write renders rr to the sink's destination.
	Write(rr RenderedRecord) error
}

// Threshold is an atomic priority gate embeddable into concrete sinks,
// backed by acquire-load / release-store so a reader never observes a
// torn update.
type Threshold struct {
	level atomix.Uint64
}

// SetThreshold updates the minimum priority this gate accepts.
func (t *Threshold) SetThreshold(p priority.Priority) {
	t.level.StoreRelease(uint64(p.Level()))
}

// IsEnabled reports whether p (after masking its attempt counter) meets
// the current threshold.
func (t *Threshold) IsEnabled(p priority.Priority) bool {
	return uint64(p.Level()) >= t.level.LoadAcquire()
}

// FormatPriority renders p the way every built-in sink renders it.
func FormatPriority(p priority.Priority) string {
	return p.String()
}

// FormatTimestamp renders ts as "YYYY-MM-DD HH:MM:SS.mmm", or the zero
// sentinel when ts is the zero Time, for callers that format a zero
// Timestamp explicitly.
func FormatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "0000-00-00 00:00:00.000"
	}
	return ts.Format("2006-01-02 15:04:05.000")
}

// Stderr writes rendered records to os.Stderr, one line per record.
type Stderr struct {
	Threshold
	mu sync.Mutex
	w  io.Writer
}

// NewStderr creates a Stderr sink gated at threshold p.
func NewStderr(p priority.Priority) *Stderr {
	s := &Stderr{w: os.Stderr}
	s.SetThreshold(p)
	return s
}

func (s *Stderr) Write(rr RenderedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "%s %s [%d]%s %s:%d %s %s\n",
		FormatTimestamp(rr.Timestamp), FormatPriority(rr.Priority), rr.ThreadID,
		correlationSuffix(rr.CorrelationID), rr.File, rr.Line, rr.Function, rr.Text)
	return err
}

// correlationSuffix renders " corr=<id>" when rr carries an opted-in
// correlation id, or "" otherwise.
func correlationSuffix(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return " corr=" + id.String()
}

// Console writes rendered records to os.Stdout, a debug-console
// counterpart to Stderr for development use.
type Console struct {
	Threshold
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a Console sink gated at threshold p.
func NewConsole(p priority.Priority) *Console {
	c := &Console{w: os.Stdout}
	c.SetThreshold(p)
	return c
}

func (c *Console) Write(rr RenderedRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "%s %s [%d]%s %s:%d %s %s\n",
		FormatTimestamp(rr.Timestamp), FormatPriority(rr.Priority), rr.ThreadID,
		correlationSuffix(rr.CorrelationID), rr.File, rr.Line, rr.Function, rr.Text)
	return err
}

// Panic is the terminal fallback the logger invokes when the recursion
// guard's attempt counter is exhausted. It writes directly to stderr,
// bypassing the sink list and the queue entirely, and never returns an
// error: there is nowhere left to report one.
func Panic(file string, line uint32, function, message string) {
	fmt.Fprintf(os.Stderr, "EMBER PANIC %s:%d %s: %s\n", file, line, function, message)
}
