// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ember

import (
	"fmt"

	"go.emberlog.dev/ember/priority"
	"go.emberlog.dev/ember/record"
	"go.emberlog.dev/ember/sink"
)

// handleSinkFailure implements the recursion guard. A failed sink write
// is itself logged through the same pipeline at an elevated priority; if
// that re-entry's attempt counter is already exhausted, Elevate refuses
// and the failure is reported through sink.Panic instead of looping
// forever.
func (l *Logger) handleSinkFailure(rec *record.Record, cause error) {
	elevated, err := priority.Elevate(rec.Priority)
	if err != nil {
		sink.Panic(rec.File, rec.Line, rec.Function,
			fmt.Sprintf("sink write failed and recursion guard exhausted: %v", cause))
		return
	}

	internal := record.New(elevated, rec.File, rec.Line, rec.Function, "sink write failed: {0}")
	if _, appendErr := record.Append(internal, cause.Error()); appendErr != nil {
		sink.Panic(rec.File, rec.Line, rec.Function,
			fmt.Sprintf("sink write failed, and failure record could not be built: %v", appendErr))
		return
	}
	if enqueueErr := l.q.Enqueue(internal); enqueueErr != nil {
		sink.Panic(rec.File, rec.Line, rec.Function,
			fmt.Sprintf("sink write failed, and failure record could not be re-enqueued: %v", enqueueErr))
	}
}
