// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package queue implements the segmented, lock-free, multi-producer
// single-consumer buffer that ferries Records from producer goroutines to
// the logger's consumer. Unlike a fixed-capacity ring, the segment list
// grows by appending a fresh segment whenever the current one fills, so a
// burst of logging never blocks a producer on consumer throughput -- it
// only ever busy-waits for the brief window during which another producer
// is allocating the next segment.
package queue

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"go.emberlog.dev/ember/record"
)

const segmentBytes = 8 << 20 // 8 MiB per segment

type slot struct {
	ready atomix.Bool
	rec   *record.Record
}

type segment struct {
	slots     []slot
	writeIdx  atomix.Uint64
	remaining atomix.Int64
	next      atomic.Pointer[segment]
	seq       uint64 // monotonic creation order, for checkpoint comparison
}

func newSegment(n int, seq uint64) *segment {
	s := &segment{slots: make([]slot, n), seq: seq}
	s.remaining.StoreRelaxed(int64(n))
	return s
}

// spinLock is a test-and-set spin-lock guarding the segment list's
// structural mutations (appending a new tail, popping the front).
type spinLock struct {
	locked atomix.Bool
}

func (l *spinLock) Lock() {
	sw := spin.Wait{}
	for !l.locked.CompareAndSwapAcqRel(false, true) {
		sw.Once()
	}
}

func (l *spinLock) Unlock() {
	l.locked.StoreRelease(false)
}

// Buffer is the segmented MPSC queue of *record.Record. The zero value is
// not usable; construct with New.
type Buffer struct {
	writeSeg atomic.Pointer[segment]
	segLock  spinLock

	readSeg *segment // consumer-owned only
	readIdx int       // consumer-owned only

	segRecords int
	segSeq     atomix.Uint64
	clock      record.Clock
}

// New creates a Buffer whose segments hold enough slots to fill roughly
// segmentBytes each, and whose producers stamp each Record's timestamp
// using clock at publish time.
func New(clock record.Clock) *Buffer {
	segRecords := segmentBytes / int(unsafe.Sizeof(slot{}))
	if segRecords < 1 {
		segRecords = 1
	}
	return newSized(clock, segRecords)
}

// newSized creates a Buffer whose segments hold exactly segRecords slots,
// bypassing segmentBytes sizing. Used by tests to force segment rotation
// and cross-segment Dequeue advances without enqueueing hundreds of
// thousands of Records.
func newSized(clock record.Clock, segRecords int) *Buffer {
	first := newSegment(segRecords, 0)
	b := &Buffer{segRecords: segRecords, readSeg: first, clock: clock}
	b.segSeq.StoreRelaxed(1)
	b.writeSeg.Store(first)
	return b
}

// Enqueue publishes rec into the queue. It busy-waits only across the
// brief window during which another producer is rotating in the next
// segment.
func (b *Buffer) Enqueue(rec *record.Record) error {
	sw := spin.Wait{}
	for {
		seg := b.writeSeg.Load()
		idx := seg.writeIdx.AddAcqRel(1) - 1
		if idx >= uint64(b.segRecords) {
			sw.Once()
			continue
		}

		s := &seg.slots[idx]
		s.rec = rec
		rec.Stamp(b.clock)
		s.ready.StoreRelease(true)

		if seg.remaining.AddAcqRel(-1) == 0 {
			next := newSegment(b.segRecords, b.segSeq.AddAcqRel(1))
			seg.next.Store(next)
			b.writeSeg.Store(next)
		}
		return nil
	}
}

// Dequeue pops the next ready Record in FIFO order. Only the logger's
// single consumer goroutine may call this.
func (b *Buffer) Dequeue() (*record.Record, error) {
	seg := b.readSeg
	if b.readIdx == b.segRecords {
		next := seg.next.Load()
		if next == nil {
			return nil, ErrEmpty
		}
		b.segLock.Lock()
		b.readSeg = next
		b.readIdx = 0
		b.segLock.Unlock()
		seg = next
	}

	s := &seg.slots[b.readIdx]
	if !s.ready.LoadAcquire() {
		return nil, ErrEmpty
	}
	rec := s.rec
	s.rec = nil
	b.readIdx++
	return rec, nil
}

// checkpoint identifies a position in the segment list: the segment a
// snapshot was taken against, plus the write index within it.
type checkpoint struct {
	seg *segment
	idx uint64
}

// Checkpoint snapshots the current write position, for use with Reached
// (as Logger.Flush does) to wait until every Record enqueued before the
// snapshot has been consumed.
func (b *Buffer) Checkpoint() checkpoint {
	seg := b.writeSeg.Load()
	return checkpoint{seg: seg, idx: seg.writeIdx.LoadAcquire()}
}

// Reached reports whether the consumer has consumed every Record that
// existed at the time cp was taken, either because the read position has
// passed it or because cp's segment has already been fully drained and
// left behind (its creation sequence number is lower than the current
// read segment's).
func (b *Buffer) Reached(cp checkpoint) bool {
	switch {
	case b.readSeg.seq < cp.seg.seq:
		return false
	case b.readSeg.seq == cp.seg.seq:
		return uint64(b.readIdx) >= cp.idx
	default:
		return true
	}
}

// Empty reports whether the queue currently holds zero unread Records,
// for drain-to-empty flush mode.
func (b *Buffer) Empty() bool {
	seg := b.readSeg
	if b.readIdx < b.segRecords {
		if seg.slots[b.readIdx].ready.LoadAcquire() {
			return false
		}
	}
	return seg.next.Load() == nil
}
