// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record

// TrivialVTable is the function table for a trivially-copyable custom
// argument: the payload bytes alone are enough to reconstruct a formatter
// argument, and a raw byte copy is always safe.
type TrivialVTable struct {
	// MakeFormatArg decodes payload (the exact bytes returned by EncodeTrivial)
	// into a value the format engine can render.
	MakeFormatArg func(payload []byte) any
}

// VTable is the function table for a non-trivially-copyable custom
// argument. Copy and Move operate on the decoded Go value (T boxed as
// any) rather than raw bytes, since Go values already carry their own
// memory management; Destruct is the hook for custom types that hold
// non-GC resources (file descriptors, OS handles) and must release them
// deterministically when a Record is dropped.
type VTable struct {
	// Copy duplicates v. May allocate; used only when Move is nil.
	Copy func(v any) any
	// Move transfers ownership of v to the returned value and must leave
	// the original in a destructible-but-empty state. Move must not fail.
	Move func(v any) any
	// Destruct releases any non-GC resources held by v. Must not fail.
	Destruct func(v any)
	// MakeFormatArg decodes v into a value the format engine can render.
	MakeFormatArg func(v any) any
}

// customSlot holds the out-of-line state of a custom or exception argument.
// It lives in Record.ext; the byte buffer stores only a 4-byte index into
// that slice, so growth and Skip never need the argument's size. No
// separate payload-size field is kept: the payload slice and the boxed any
// already carry their own length and type.
type customSlot struct {
	trivial   *TrivialVTable
	vtable    *VTable
	payload   []byte // raw bytes for trivial custom args
	value     any    // boxed Go value for non-trivial custom args
	destroyed bool
}
