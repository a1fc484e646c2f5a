// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package record implements the per-event argument buffer: a fixed-size
// header plus a growable, type-tagged byte buffer, and the codec that
// writes, skips, copies, moves, destructs and decodes every argument kind
// in the closed set defined by kind.go.
//
// Alignment note: Record's padding is computed from the logical write
// offset (Record.used), not from the buffer's runtime address. Go code
// never reinterprets the buffer through raw pointers of arbitrary
// alignment (all reads go through encoding/binary), so offset-relative
// padding is sufficient to keep alignment stable across growth while
// avoiding unsafe pointer arithmetic. See DESIGN.md.
package record

import (
	"math"
	"time"

	"github.com/google/uuid"

	"go.emberlog.dev/ember/internal/clock"
	"go.emberlog.dev/ember/priority"
)

// headerPayload is the capacity of the inline argument buffer every Record
// carries before its arguments move to the heap. The Record struct as a
// whole is larger than 256 bytes, since its header fields sit beside it.
const headerPayload = 192

// growthChunk is the size growth rounds up to.
const growthChunk = 512

// maxBuffer is the largest addressable buffer size (2^32-1 bytes).
const maxBuffer = math.MaxUint32

// Clock supplies the current time for Stamp, modeled as an external
// collaborator; the queue calls Stamp with a Clock at enqueue time to
// establish per-slot ordering.
type Clock interface {
	Now() time.Time
}

// Record is one log event: a fixed set of header fields plus a growable,
// type-tagged argument buffer. Record is move-only in spirit (see Take)
// even though Go cannot enforce that at compile time; producers construct
// one, append to it, and hand it to a queue which takes ownership.
type Record struct {
	Priority  priority.Priority
	Timestamp time.Time
	ThreadID  uint64
	File      string // MUST be a literal; not copied, only referenced.
	Function  string // MUST be a literal.
	Pattern   string // MUST be a literal, or empty.
	Line      uint32

	// CorrelationID is an optional ambient tag a caller can set to trace a
	// Record across service boundaries. Zero value (uuid.Nil) means unset
	// and is never required (see DESIGN.md).
	CorrelationID uuid.UUID

	used, size    uint32
	hasNonTrivial bool
	inline        [headerPayload]byte
	heap          []byte

	// ext holds custom and exception argument payloads that cannot be
	// serialized as raw bytes (see custom.go). Slots in the byte buffer
	// reference entries here by index.
	ext []customSlot
}

// New creates a Record, capturing the calling goroutine's id the same way
// except.ThrowWithContext captures it for exception Records. The timestamp
// is left zero until Stamp is called.
func New(p priority.Priority, file string, line uint32, function, pattern string) *Record {
	r := &Record{
		Priority: p,
		ThreadID: clock.GoroutineID(),
		File:     file,
		Function: function,
		Pattern:  pattern,
		Line:     line,
	}
	r.size = uint32(len(r.inline))
	return r
}

// NewCorrelationID generates a fresh correlation id for callers that opt
// into tagging their Records (see DESIGN.md).
func NewCorrelationID() uuid.UUID { return uuid.New() }

// Stamp sets the record's timestamp to clock.Now(). Called by the queue at
// enqueue time so timestamp ordering is established after the slot is
// reserved and before it is published.
func (r *Record) Stamp(clock Clock) {
	r.Timestamp = clock.Now()
}

// Used returns the number of bytes currently written to the argument
// buffer.
func (r *Record) Used() uint32 { return r.used }

// Size returns the argument buffer's current capacity.
func (r *Record) Size() uint32 { return r.size }

// HasNonTrivial reports whether the record holds at least one
// non-trivially-copyable custom or exception argument.
func (r *Record) HasNonTrivial() bool { return r.hasNonTrivial }

// buf returns the currently active backing slice (inline or heap).
func (r *Record) buf() []byte {
	if r.heap != nil {
		return r.heap
	}
	return r.inline[:]
}

// grow ensures at least n more bytes are available, relocating the
// buffer to the heap (or to a larger heap allocation) as needed.
func (r *Record) grow(n uint32) error {
	need := uint64(r.used) + uint64(n)
	if need > maxBuffer {
		return ErrCapacityExceeded
	}
	if uint32(need) <= r.size {
		return nil
	}
	newSize := roundUp(uint32(need), growthChunk)
	newBuf := make([]byte, newSize)
	copy(newBuf, r.buf()[:r.used])
	r.heap = newBuf
	r.size = newSize
	return nil
}

func roundUp(n, multiple uint32) uint32 {
	if n%multiple == 0 {
		return n
	}
	return (n/multiple + 1) * multiple
}

// padding computes the number of padding bytes needed so that a payload
// starting after a 1-byte tag at logical offset pos+1 lands on an
// align-byte boundary.
func padding(pos uint32, align int) int {
	if align <= 1 {
		return 0
	}
	rem := int(pos+1) % align
	if rem == 0 {
		return 0
	}
	return align - rem
}

// Destruct runs the destructor of every non-trivially-copyable argument
// exactly once. Safe to call multiple times (subsequent calls are no-ops
// for already-destroyed entries). Called by the queue consumer after
// formatting a record, and by Record's own cleanup paths.
func (r *Record) Destruct() {
	for i := range r.ext {
		e := &r.ext[i]
		if e.destroyed {
			continue
		}
		if e.vtable != nil && e.vtable.Destruct != nil {
			e.vtable.Destruct(e.value)
		}
		e.destroyed = true
	}
}

// Clone performs a deep copy of r, invoking each non-trivial argument's
// Copy function (or, if unset, a shallow Go value copy, which is correct
// for any custom type whose state is immutable after construction).
func (r *Record) Clone() *Record {
	out := *r
	if r.heap != nil {
		out.heap = append([]byte(nil), r.heap...)
	}
	out.ext = make([]customSlot, len(r.ext))
	for i, e := range r.ext {
		out.ext[i] = e
		if e.vtable != nil && !e.destroyed {
			if e.vtable.Copy != nil {
				out.ext[i].value = e.vtable.Copy(e.value)
			}
		}
	}
	return &out
}

// Take moves r's buffer and arguments into a new Record, leaving r empty
// (Used() == 0) and safe to destruct or discard. Non-trivial arguments are
// relocated via their Move function when available, falling back to Copy,
// falling back to a shallow value copy.
func (r *Record) Take() *Record {
	out := &Record{
		Priority:      r.Priority,
		Timestamp:     r.Timestamp,
		ThreadID:      r.ThreadID,
		File:          r.File,
		Function:      r.Function,
		Pattern:       r.Pattern,
		Line:          r.Line,
		CorrelationID: r.CorrelationID,
		used:          r.used,
		size:          r.size,
		hasNonTrivial: r.hasNonTrivial,
		heap:          r.heap,
	}
	copy(out.inline[:], r.inline[:])
	out.ext = make([]customSlot, len(r.ext))
	for i, e := range r.ext {
		out.ext[i] = e
		if e.vtable != nil && !e.destroyed {
			switch {
			case e.vtable.Move != nil:
				out.ext[i].value = e.vtable.Move(e.value)
			case e.vtable.Copy != nil:
				out.ext[i].value = e.vtable.Copy(e.value)
			}
		}
	}

	r.used = 0
	r.heap = nil
	r.size = uint32(len(r.inline))
	r.hasNonTrivial = false
	r.ext = nil
	return out
}
