// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package clock supplies the wall-clock and goroutine-identity
// collaborators every Record needs at publish time. This is a deliberate,
// documented standard-library component (see DESIGN.md).
package clock

import (
	"bytes"
	"runtime"
	"strconv"
	"time"
)

// Wall is a record.Clock backed by time.Now.
type Wall struct{}

// Now returns the current wall-clock time.
func (Wall) Now() time.Time { return time.Now() }

// GoroutineID extracts the calling goroutine's numeric id by parsing the
// "goroutine N [...]" header runtime.Stack always writes first. This is the
// closest Go analogue to a native thread id; it is not guaranteed stable
// across goroutine hops, so callers should treat it as a best-effort
// diagnostic value rather than a durable identity.
func GoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return 0
	}
	b = b[len(prefix):]
	end := bytes.IndexByte(b, ' ')
	if end < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(b[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
