// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ember

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"go.emberlog.dev/ember/format"
	"go.emberlog.dev/ember/queue"
	"go.emberlog.dev/ember/record"
	"go.emberlog.dev/ember/sink"
)

// lifecycle states for Logger's init/start/shutdown state machine. The
// zero value is stateInit, so a Logger built without calling Start is
// inert and AddSink remains valid.
type lifecycle uint32

const (
	stateInit lifecycle = iota
	stateReady
	stateShutdown
)

// Logger owns the consumer goroutine, the sink list, and the queue that
// ferries Records from producers to that goroutine. Producers call Log
// (or LogNoThrow); exactly one goroutine, started by Start, drains the
// queue and dispatches to sinks.
type Logger struct {
	opts Options
	q    *queue.Buffer
	eng  format.Engine

	mu    sync.RWMutex // guards sinks during the Init window
	sinks []sink.Sink

	state lifecycleVar
	stop  chan struct{}
	done  chan struct{}
}

// lifecycleVar wraps atomix.Uint64 (the width used throughout this module
// for atomic counters) to hold the Logger's three-state lifecycle.
type lifecycleVar struct{ v atomix.Uint64 }

func (l *lifecycleVar) load() lifecycle { return lifecycle(l.v.LoadAcquire()) }
func (l *lifecycleVar) cas(from, to lifecycle) bool {
	return l.v.CompareAndSwapAcqRel(uint64(from), uint64(to))
}

// Initialize constructs a Logger with the given options and initial sink
// set. The logger does not start consuming until Start is called, so
// AddSink may still be used to register further sinks up to that point.
func Initialize(opts Options, sinks ...sink.Sink) *Logger {
	l := &Logger{
		opts:  opts,
		q:     queue.New(opts.clock),
		sinks: append([]sink.Sink(nil), sinks...),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	return l
}

// IsInitialized reports whether Start has been called.
func (l *Logger) IsInitialized() bool {
	return l.state.load() != stateInit
}

// AddSink registers an additional sink. Valid only before Start; calling
// it afterward panics rather than silently being ignored.
func (l *Logger) AddSink(s sink.Sink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.load() != stateInit {
		panic("ember: AddSink called after Start")
	}
	l.sinks = append(l.sinks, s)
}

// Start launches the consumer goroutine. Calling Start more than once is
// a no-op.
func (l *Logger) Start() {
	if !l.state.cas(stateInit, stateReady) {
		return
	}
	go l.run()
}

// run is the consumer loop: pop, format, dispatch, repeat. It busy-waits
// with backoff on a pop miss rather than blocking on a condition
// variable, the same spin.Wait idiom the queue package's segment rotation
// uses, since the queue itself exposes no wakeup channel.
func (l *Logger) run() {
	defer close(l.done)
	sw := spin.Wait{}
	for {
		rec, err := l.q.Dequeue()
		if err != nil {
			select {
			case <-l.stop:
				if l.q.Empty() {
					return
				}
			default:
			}
			sw.Once()
			continue
		}
		sw = spin.Wait{}
		l.dispatch(rec)
	}
}

func (l *Logger) dispatch(rec *record.Record) {
	defer rec.Destruct()

	text, err := rec.Format(&l.eng)
	if err != nil {
		text = "<ERROR>"
	}
	rr := sink.RenderedRecord{
		Priority:      rec.Priority,
		Timestamp:     rec.Timestamp,
		ThreadID:      rec.ThreadID,
		File:          rec.File,
		Line:          rec.Line,
		Function:      rec.Function,
		Text:          text,
		CorrelationID: rec.CorrelationID,
	}

	l.mu.RLock()
	sinks := l.sinks
	l.mu.RUnlock()

	for _, s := range sinks {
		if !s.IsEnabled(rec.Priority) {
			continue
		}
		if werr := s.Write(rr); werr != nil {
			l.handleSinkFailure(rec, werr)
		}
	}
}

// Flush blocks until every Record enqueued strictly before the call has
// been rendered.
func (l *Logger) Flush() {
	cp := l.q.Checkpoint()
	sw := spin.Wait{}
	for !l.q.Reached(cp) {
		sw.Once()
	}
}

// Shutdown signals the consumer to drain the queue to empty and stop,
// then waits for it to exit. Shutdown more than once is a no-op.
func (l *Logger) Shutdown() {
	if !l.state.cas(stateReady, stateShutdown) {
		return
	}
	close(l.stop)
	<-l.done
}
