// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record

// Value is the decoded form of one ArgumentSlot, ready for the format
// engine to render. Exactly one of the typed fields is meaningful,
// selected by Kind.
type Value struct {
	Kind      Kind
	Escaped   bool
	IsPointer bool
	IsNull    bool

	Bool bool
	I64  int64
	U64  uint64
	F64  float64
	Str  string

	// Custom carries the formatter-ready value produced by a custom
	// argument's VTable.MakeFormatArg or TrivialVTable.MakeFormatArg function.
	Custom any
}
