// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.emberlog.dev/ember/priority"
)

func newTestRecord() *Record {
	return New(priority.Debug, "f.go", 99, "fn", "{}")
}

func TestAppendDecodeRoundTrip(t *testing.T) {
	r := newTestRecord()
	_, err := Append(r, int32(7))
	require.NoError(t, err)
	_, err = Append(r, "hello")
	require.NoError(t, err)
	_, err = Append(r, true)
	require.NoError(t, err)
	_, err = Append(r, 3.5)
	require.NoError(t, err)

	values := r.Decode()
	require.Len(t, values, 4)
	assert.EqualValues(t, 7, values[0].I64)
	assert.Equal(t, "hello", values[1].Str)
	assert.True(t, values[2].Bool)
	assert.InDelta(t, 3.5, values[3].F64, 1e-9)
}

func TestGrowthPreservesUsedLEQSize(t *testing.T) {
	r := newTestRecord()
	big := strings.Repeat("x", 1024)
	_, err := Append(r, big)
	require.NoError(t, err)
	assert.LessOrEqual(t, r.Used(), r.Size())
	values := r.Decode()
	require.Len(t, values, 1)
	assert.Equal(t, big, values[0].Str)
}

func TestStringTruncationBoundary(t *testing.T) {
	r := newTestRecord()
	exact := strings.Repeat("a", maxInlineLen)
	_, err := Append(r, exact)
	require.NoError(t, err)

	r2 := newTestRecord()
	over := strings.Repeat("a", maxInlineLen+1)
	_, err = Append(r2, over)
	require.ErrorIs(t, err, ErrTruncated)
	values := r2.Decode()
	require.Len(t, values, 1)
	assert.Len(t, values[0].Str, maxInlineLen)
}

func TestNullPointer(t *testing.T) {
	r := newTestRecord()
	var p *int32
	_, err := AppendPtr(r, p)
	require.NoError(t, err)
	values := r.Decode()
	require.Len(t, values, 1)
	assert.True(t, values[0].IsNull)
}

func TestEscapeFlag(t *testing.T) {
	r := newTestRecord()
	_, err := Append(r, Escape("a\nb"))
	require.NoError(t, err)
	values := r.Decode()
	require.Len(t, values, 1)
	assert.True(t, values[0].Escaped)
	assert.Equal(t, "a\nb", values[0].Str)
}

type resource struct {
	id        int
	destroyed *int
}

func (r *resource) VTable() *VTable {
	return &VTable{
		Copy: func(v any) any {
			src := v.(*resource)
			return &resource{id: src.id, destroyed: src.destroyed}
		},
		Move: func(v any) any {
			return v
		},
		Destruct: func(v any) {
			*v.(*resource).destroyed++
		},
		MakeFormatArg: func(v any) any { return v.(*resource).id },
	}
}

func TestNonTrivialDestructExactlyOnce(t *testing.T) {
	var destroyed int
	r := newTestRecord()
	_, err := Append(r, &resource{id: 1, destroyed: &destroyed})
	require.NoError(t, err)
	assert.True(t, r.HasNonTrivial())

	r.Destruct()
	r.Destruct() // idempotent: must not double-destruct
	assert.Equal(t, 1, destroyed)
}

func TestTakeLeavesSourceEmpty(t *testing.T) {
	var destroyed int
	r := newTestRecord()
	_, err := Append(r, &resource{id: 2, destroyed: &destroyed})
	require.NoError(t, err)

	moved := r.Take()
	assert.EqualValues(t, 0, r.Used())
	assert.False(t, r.HasNonTrivial())

	values := moved.Decode()
	require.Len(t, values, 1)
	assert.EqualValues(t, 2, values[0].Custom)

	moved.Destruct()
	assert.Equal(t, 1, destroyed)
}

type trivialPoint struct{ x, y int32 }

func (p trivialPoint) EncodeTrivial() []byte {
	b := make([]byte, 8)
	b[0], b[4] = byte(p.x), byte(p.y)
	return b
}

func (p trivialPoint) TrivialVTable() *TrivialVTable {
	return &TrivialVTable{MakeFormatArg: func(b []byte) any {
		return trivialPoint{x: int32(b[0]), y: int32(b[4])}
	}}
}

func TestTrivialCustomRoundTrip(t *testing.T) {
	r := newTestRecord()
	_, err := Append(r, trivialPoint{x: 3, y: 4})
	require.NoError(t, err)
	assert.False(t, r.HasNonTrivial())

	values := r.Decode()
	require.Len(t, values, 1)
	assert.Equal(t, trivialPoint{x: 3, y: 4}, values[0].Custom)
}

// oversizedTrivial encodes a payload past maxCustomPayload.
type oversizedTrivial struct{}

func (oversizedTrivial) EncodeTrivial() []byte        { return make([]byte, maxCustomPayload+1) }
func (oversizedTrivial) TrivialVTable() *TrivialVTable { return &TrivialVTable{} }

func TestTrivialCustomTooLargeRejected(t *testing.T) {
	r := newTestRecord()
	_, err := Append(r, oversizedTrivial{})
	assert.ErrorIs(t, err, ErrCustomTooLarge)
}

// oversizedNonTrivial's own concrete type is one byte larger than
// maxCustomPayload, exercising the reflect.TypeOf(v).Size() check in appendNonTrivialCustom
// (a static type-size check, unlike the trivial path's byte-payload
// length). Append must be called with a value, not a pointer, since a
// pointer's reflect size is always machine-word-sized regardless of what
// it points to.
type oversizedNonTrivial struct {
	data [maxCustomPayload + 1]byte
}

func (oversizedNonTrivial) VTable() *VTable { return &VTable{} }

func TestNonTrivialCustomTooLargeRejected(t *testing.T) {
	r := newTestRecord()
	_, err := Append(r, oversizedNonTrivial{})
	assert.ErrorIs(t, err, ErrCustomTooLarge)
}

func TestDecimalCustomArgumentRoundTrip(t *testing.T) {
	r := newTestRecord()
	d := decimal.RequireFromString("19.99")
	_, err := Append(r, NewDecimalArg(d))
	require.NoError(t, err)
	assert.False(t, r.HasNonTrivial())

	values := r.Decode()
	require.Len(t, values, 1)
	got, ok := values[0].Custom.(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, d.Equal(got))
}

func TestCloneDeepCopiesNonTrivial(t *testing.T) {
	var destroyed int
	r := newTestRecord()
	_, _ = Append(r, &resource{id: 9, destroyed: &destroyed})

	clone := r.Clone()
	r.Destruct()
	assert.Equal(t, 1, destroyed)

	values := clone.Decode()
	require.Len(t, values, 1)
	assert.EqualValues(t, 9, values[0].Custom)
}
