// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ember

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.emberlog.dev/ember/priority"
	"go.emberlog.dev/ember/record"
	"go.emberlog.dev/ember/sink"
)

// captureSink collects every RenderedRecord handed to it, for assertions
// against what the consumer goroutine actually dispatched.
type captureSink struct {
	sink.Threshold
	mu  sync.Mutex
	got []sink.RenderedRecord
}

func newCaptureSink(p priority.Priority) *captureSink {
	s := &captureSink{}
	s.SetThreshold(p)
	return s
}

func (s *captureSink) Write(rr sink.RenderedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, rr)
	return nil
}

func (s *captureSink) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.got))
	for i, rr := range s.got {
		out[i] = rr.Text
	}
	return out
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// S1: a basic log line renders with the expected priority and text.
func TestBasicLogLine(t *testing.T) {
	cs := newCaptureSink(priority.Trace)
	l := Initialize(NewOptions().Build(), cs)
	l.Start()
	defer l.Shutdown()

	require.NoError(t, l.Log(priority.Info, "main.go", 10, "main", "listening on {0}", "127.0.0.1:8080"))
	l.Flush()

	texts := cs.texts()
	require.Len(t, texts, 1)
	assert.Equal(t, "listening on 127.0.0.1:8080", texts[0])
}

// S2: an over-long string argument is truncated and reported, but the
// record still enqueues and renders.
func TestStringArgumentTruncationReported(t *testing.T) {
	cs := newCaptureSink(priority.Trace)
	l := Initialize(NewOptions().Build(), cs)
	l.Start()
	defer l.Shutdown()

	huge := make([]byte, 70000)
	for i := range huge {
		huge[i] = 'x'
	}
	err := l.Log(priority.Info, "f.go", 1, "fn", "{0}", string(huge))
	assert.ErrorIs(t, err, record.ErrTruncated)
	l.Flush()
	require.Len(t, cs.texts(), 1)
}

// S3: escaping renders control characters as their two-character escape.
func TestEscapedCharRendersLiteralBackslashN(t *testing.T) {
	cs := newCaptureSink(priority.Trace)
	l := Initialize(NewOptions().Build(), cs)
	l.Start()
	defer l.Shutdown()

	require.NoError(t, l.Log(priority.Info, "f.go", 1, "fn", "{0}", record.Escape('\n')))
	l.Flush()

	require.Len(t, cs.texts(), 1)
	assert.Equal(t, `\n`, cs.texts()[0])
}

// S4: an exception captured via ThrowWithContext renders through the
// exception pattern language when logged as an argument.
func TestExceptionArgumentRendersThroughPatternLanguage(t *testing.T) {
	cs := newCaptureSink(priority.Trace)
	l := Initialize(NewOptions().Build(), cs)
	l.Start()
	defer l.Shutdown()

	base := errors.New("testarg")
	wrapped := ThrowWithContext(base, "myfile.cpp", 15, "exfunc", "Exception {0} - {1}", 1.8, "test")

	err := l.Log(priority.Error, "myfile.cpp", 15, "exfunc",
		`{0} {1:%[%C (%c={0}) ]}caused by {1:%e}{1:%[: %l\n@ %F:%L]}{2:.4}`,
		"Error", wrapped, "")
	require.NoError(t, err)
	l.Flush()

	require.Len(t, cs.texts(), 1)
	assert.Equal(t, "Error caused by testarg: Exception 1.8 - test\n@ myfile.cpp:15", cs.texts()[0])
}

// S5: a system-error exception renders the default exception spec with
// its category name, code, and message folded in.
func TestSystemErrorRendersDefaultSpec(t *testing.T) {
	cs := newCaptureSink(priority.Trace)
	l := Initialize(NewOptions().Build(), cs)
	l.Start()
	defer l.Shutdown()

	base := errors.New("testmsg")
	wrapped := ThrowWithContext(base, "myfile.cpp", 15, "exfunc", "")
	rec, ok := CurrentExceptionContext(wrapped)
	require.True(t, ok)
	cat := &ExceptionCategory{Name: "TestError", Message: func(code int32) string { return "This is an error message" }}
	rec.SetOSError(7, cat)

	require.NoError(t, l.Log(priority.Error, "myfile.cpp", 15, "exfunc", "{0} {1}", "Error", wrapped))
	l.Flush()

	require.Len(t, cs.texts(), 1)
	want := "Error testmsg: This is an error message (TestError 7=testmsg: This is an error message)"
	assert.Equal(t, want, cs.texts()[0])
}

// S6: a sink that always fails triggers exactly MaxAttempt re-entries,
// then the recursion guard stops re-enqueueing instead of spinning.
func TestRecursionGuardCapsReentry(t *testing.T) {
	var calls int64
	failing := &alwaysFailSink{calls: &calls, threshold: priority.Trace}
	l := Initialize(NewOptions().Build(), failing)
	l.Start()
	defer l.Shutdown()

	require.NoError(t, l.Log(priority.Info, "f.go", 1, "fn", "boom"))

	// One external call plus at most MaxAttempt internal re-entries.
	waitUntil(t, func() bool { return atomic.LoadInt64(&calls) >= int64(priority.MaxAttempt)+1 })
	time.Sleep(20 * time.Millisecond)
	assert.LessOrEqual(t, atomic.LoadInt64(&calls), int64(priority.MaxAttempt)+1)
}

func TestIsInitializedTracksStart(t *testing.T) {
	cs := newCaptureSink(priority.Trace)
	l := Initialize(NewOptions().Build(), cs)
	assert.False(t, l.IsInitialized())
	l.Start()
	defer l.Shutdown()
	assert.True(t, l.IsInitialized())
}

func TestAddSinkAfterStartPanics(t *testing.T) {
	cs := newCaptureSink(priority.Trace)
	l := Initialize(NewOptions().Build(), cs)
	l.Start()
	defer l.Shutdown()

	assert.PanicsWithValue(t, "ember: AddSink called after Start", func() {
		l.AddSink(newCaptureSink(priority.Trace))
	})
}

func TestLogNoThrowSwallowsInvalidPriority(t *testing.T) {
	cs := newCaptureSink(priority.Trace)
	l := Initialize(NewOptions().Build(), cs)
	l.Start()
	defer l.Shutdown()

	assert.NotPanics(t, func() {
		l.LogNoThrow(priority.Priority(0xFF), "f.go", 1, "fn", "unreachable")
	})
	l.Flush()
	assert.Empty(t, cs.texts())
}

func TestShutdownIsIdempotent(t *testing.T) {
	cs := newCaptureSink(priority.Trace)
	l := Initialize(NewOptions().Build(), cs)
	l.Start()

	require.NoError(t, l.Log(priority.Info, "f.go", 1, "fn", "one"))
	l.Shutdown()
	assert.NotPanics(t, func() { l.Shutdown() })
	require.Len(t, cs.texts(), 1)
}

func TestStartIsIdempotent(t *testing.T) {
	cs := newCaptureSink(priority.Trace)
	l := Initialize(NewOptions().Build(), cs)
	l.Start()
	l.Start() // must not spawn a second consumer goroutine
	defer l.Shutdown()

	require.NoError(t, l.Log(priority.Info, "f.go", 1, "fn", "only once"))
	l.Flush()
	require.Len(t, cs.texts(), 1)
}

type alwaysFailSink struct {
	calls     *int64
	threshold priority.Priority
}

func (s *alwaysFailSink) IsEnabled(p priority.Priority) bool { return p.Level() >= s.threshold }
func (s *alwaysFailSink) Write(sink.RenderedRecord) error {
	atomic.AddInt64(s.calls, 1)
	return errors.New("sink always fails")
}
