// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ember

import (
	"fmt"

	"go.emberlog.dev/ember/except"
	"go.emberlog.dev/ember/priority"
	"go.emberlog.dev/ember/record"
)

// Log constructs a Record from the given priority, source location,
// pattern and arguments, and enqueues it for the consumer to render and
// dispatch. It blocks only on the queue's bounded segment-rotation path.
// The file is stored without its directory prefix (see ShortFile).
// An error argument carrying context captured by ThrowWithContext is
// appended under the matching exception Kind rather than as an opaque
// value, so sinks render it through the exception pattern language.
func (l *Logger) Log(p priority.Priority, file string, line uint32, function, pattern string, args ...any) error {
	if !priority.Valid(p) {
		return fmt.Errorf("ember: invalid priority %d", p)
	}

	rec := record.New(p, ShortFile(file), line, function, pattern)
	if l.opts.autoCorrelate {
		rec.CorrelationID = record.NewCorrelationID()
	}
	var appendErr error
	for _, a := range args {
		if err := appendArg(rec, a); err != nil && appendErr == nil {
			appendErr = err
		}
	}
	if err := l.q.Enqueue(rec); err != nil {
		return err
	}
	return appendErr
}

// LogNoThrow behaves like Log but never propagates a failure: any error
// building or enqueuing the Record, including a panic from a malformed
// custom argument's encoder, is swallowed.
func (l *Logger) LogNoThrow(p priority.Priority, file string, line uint32, function, pattern string, args ...any) {
	defer func() { _ = recover() }()
	_ = l.Log(p, file, line, function, pattern, args...)
}

func appendArg(rec *record.Record, a any) error {
	if err, ok := a.(error); ok {
		if ctx, ok := except.FromError(err); ok {
			_, appendErr := record.AppendException(rec, ctx.Kind(), ctx)
			return appendErr
		}
	}
	_, err := record.Append(rec, a)
	return err
}
