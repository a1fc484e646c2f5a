// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.emberlog.dev/ember/priority"
	"go.emberlog.dev/ember/record"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestEnqueueDequeueFIFO(t *testing.T) {
	b := New(fixedClock{t: time.Unix(0, 0)})
	for i := 0; i < 100; i++ {
		r := record.New(priority.Info, "f.go", uint32(i), "fn", "")
		require.NoError(t, b.Enqueue(r))
	}
	for i := 0; i < 100; i++ {
		r, err := b.Dequeue()
		require.NoError(t, err)
		assert.EqualValues(t, i, r.Line)
	}
	_, err := b.Dequeue()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestStampSetOnEnqueue(t *testing.T) {
	want := time.Unix(1000, 0)
	b := New(fixedClock{t: want})
	r := record.New(priority.Info, "f.go", 1, "fn", "")
	require.NoError(t, b.Enqueue(r))
	out, _ := b.Dequeue()
	assert.True(t, out.Timestamp.Equal(want))
}

func TestConcurrentProducersPreserveCount(t *testing.T) {
	b := New(fixedClock{t: time.Now()})
	const producers, perProducer = 8, 200
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				r := record.New(priority.Debug, "f.go", 1, "fn", "")
				require.NoError(t, b.Enqueue(r))
			}
		}()
	}
	wg.Wait()

	count := 0
	for {
		_, err := b.Dequeue()
		if err != nil {
			break
		}
		count++
	}
	assert.Equal(t, producers*perProducer, count)
}

func TestCheckpointReachedAfterDrain(t *testing.T) {
	b := New(fixedClock{t: time.Now()})
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Enqueue(record.New(priority.Info, "f.go", 1, "fn", "")))
	}
	cp := b.Checkpoint()
	assert.False(t, b.Reached(cp))
	for i := 0; i < 10; i++ {
		_, err := b.Dequeue()
		require.NoError(t, err)
	}
	assert.True(t, b.Reached(cp))
}

func TestSegmentRotationAndCrossSegmentDequeue(t *testing.T) {
	const segRecords = 4
	b := newSized(fixedClock{t: time.Now()}, segRecords)

	first := b.writeSeg.Load()
	rotations := 3
	if RaceEnabled {
		rotations = 1
	}
	total := segRecords*rotations + 1 // crosses one or more full segment rotations
	for i := 0; i < total; i++ {
		require.NoError(t, b.Enqueue(record.New(priority.Info, "f.go", uint32(i), "fn", "")))
	}
	assert.NotSame(t, first, b.writeSeg.Load(), "enqueue past a full segment must rotate in a new one")

	for i := 0; i < total; i++ {
		r, err := b.Dequeue()
		require.NoError(t, err)
		assert.EqualValues(t, i, r.Line)
	}
	_, err := b.Dequeue()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestCheckpointAcrossSegmentBoundary(t *testing.T) {
	const segRecords = 4
	b := newSized(fixedClock{t: time.Now()}, segRecords)

	for i := 0; i < segRecords+2; i++ {
		require.NoError(t, b.Enqueue(record.New(priority.Info, "f.go", 1, "fn", "")))
	}
	cp := b.Checkpoint()
	assert.False(t, b.Reached(cp))

	for i := 0; i < segRecords+2; i++ {
		_, err := b.Dequeue()
		require.NoError(t, err)
	}
	assert.True(t, b.Reached(cp))
}

func TestEmptyReportsDrained(t *testing.T) {
	b := New(fixedClock{t: time.Now()})
	assert.True(t, b.Empty())
	require.NoError(t, b.Enqueue(record.New(priority.Info, "f.go", 1, "fn", "")))
	assert.False(t, b.Empty())
	_, _ = b.Dequeue()
	assert.True(t, b.Empty())
}
