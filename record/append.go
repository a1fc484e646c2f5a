// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record

import (
	"encoding/binary"
	"math"
	"reflect"
)

// Escaped wraps a value so Append renders it with C-style escaping,
// an `escape<T>`-style wrapper type that needs no thread-local state.
type Escaped[T any] struct{ Value T }

// Escape wraps v so the next Append call encodes it with the escape tag
// bit set.
func Escape[T any](v T) Escaped[T] { return Escaped[T]{Value: v} }

type escapedValue interface{ unwrap() any }

func (e Escaped[T]) unwrap() any { return e.Value }

// TrivialCustom is implemented by custom argument types whose bytes alone
// fully describe the value.
type TrivialCustom interface {
	EncodeTrivial() []byte
	TrivialVTable() *TrivialVTable
}

// NonTrivialCustom is implemented by custom argument types that require
// explicit copy/move/destruct handling.
type NonTrivialCustom interface {
	VTable() *VTable
}

// Append encodes v into r and returns r for chaining, a fluent argument
// chain replacing a C++ `operator<<` idiom.
func Append[T any](r *Record, v T) (*Record, error) {
	escaped := false
	var iv any = v
	if ev, ok := iv.(escapedValue); ok {
		iv = ev.unwrap()
		escaped = true
	}
	return r, appendDispatch(r, iv, false, escaped)
}

// AppendPtr encodes *v, or a Null slot if v is nil.
func AppendPtr[T any](r *Record, v *T) (*Record, error) {
	if v == nil {
		return r, r.appendFixed(KindNull, true, true, false, nil)
	}
	return r, appendDispatch(r, *v, true, false)
}

func appendDispatch(r *Record, v any, isPointer, escaped bool) error {
	switch x := v.(type) {
	case nil:
		return r.appendFixed(KindNull, isPointer, true, escaped, nil)
	case bool:
		return r.appendFixed(KindBool, isPointer, false, escaped, func(b []byte) {
			if x {
				b[0] = 1
			}
		})
	case int8:
		return r.appendFixed(KindInt8, isPointer, false, escaped, func(b []byte) { b[0] = byte(x) })
	case int16:
		return r.appendFixed(KindInt16, isPointer, false, escaped, func(b []byte) { binary.LittleEndian.PutUint16(b, uint16(x)) })
	case int32:
		return r.appendFixed(KindInt32, isPointer, false, escaped, func(b []byte) { binary.LittleEndian.PutUint32(b, uint32(x)) })
	case int64:
		return r.appendFixed(KindInt64, isPointer, false, escaped, func(b []byte) { binary.LittleEndian.PutUint64(b, uint64(x)) })
	case int:
		return r.appendFixed(KindInt64, isPointer, false, escaped, func(b []byte) { binary.LittleEndian.PutUint64(b, uint64(int64(x))) })
	case uint8:
		return r.appendFixed(KindUint8, isPointer, false, escaped, func(b []byte) { b[0] = x })
	case uint16:
		return r.appendFixed(KindUint16, isPointer, false, escaped, func(b []byte) { binary.LittleEndian.PutUint16(b, x) })
	case uint32:
		return r.appendFixed(KindUint32, isPointer, false, escaped, func(b []byte) { binary.LittleEndian.PutUint32(b, x) })
	case uint64:
		return r.appendFixed(KindUint64, isPointer, false, escaped, func(b []byte) { binary.LittleEndian.PutUint64(b, x) })
	case uint:
		return r.appendFixed(KindUint64, isPointer, false, escaped, func(b []byte) { binary.LittleEndian.PutUint64(b, uint64(x)) })
	case float32:
		return r.appendFixed(KindFloat32, isPointer, false, escaped, func(b []byte) { binary.LittleEndian.PutUint32(b, math.Float32bits(x)) })
	case float64:
		return r.appendFixed(KindFloat64, isPointer, false, escaped, func(b []byte) { binary.LittleEndian.PutUint64(b, math.Float64bits(x)) })
	case string:
		return r.appendString(KindInlineString8, x, escaped)
	case []uint16: // wide/UTF-16 code units
		return appendWide(r, x, isPointer, escaped)
	case TrivialCustom:
		return appendTrivialCustom(r, x)
	case NonTrivialCustom:
		return appendNonTrivialCustom(r, x)
	default:
		return ErrUnsupportedType
	}
}

func appendWide(r *Record, units []uint16, isPointer, escaped bool) error {
	truncated := len(units) > maxInlineLen
	if truncated {
		units = units[:maxInlineLen]
	}
	info := kindTable[KindInlineString16]
	tag := NewTag(KindInlineString16, isPointer, escaped)
	payload, err := r.reserve(tag, info.align, 2+len(units)*2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(payload, uint16(len(units)))
	for i, u := range units {
		binary.LittleEndian.PutUint16(payload[2+i*2:], u)
	}
	if truncated {
		return ErrTruncated
	}
	return nil
}

func appendTrivialCustom(r *Record, v TrivialCustom) error {
	payload := v.EncodeTrivial()
	if len(payload) > maxCustomPayload {
		return ErrCustomTooLarge
	}
	return r.appendExt(KindTriviallyCopyableCustom, customSlot{
		trivial: v.TrivialVTable(),
		payload: payload,
	})
}

// appendNonTrivialCustom stores v boxed as any; the Record's own buffer
// only ever grows by a fixed-size slot for it regardless of v's size, so
// the rejection here checks the static size of v's concrete type
// (reflect.TypeOf(v).Size(), Go's runtime stand-in for a sizeof(X) check)
// rather than a serialized byte count.
func appendNonTrivialCustom(r *Record, v NonTrivialCustom) error {
	if reflect.TypeOf(v).Size() > maxCustomPayload {
		return ErrCustomTooLarge
	}
	return r.appendExt(KindNonTriviallyCopyableCustom, customSlot{
		vtable: v.VTable(),
		value:  v,
	})
}

// exceptionKinds is the set of Kinds AppendException accepts: the six
// variant/system-error combinations an except.Record can represent.
var exceptionKinds = map[Kind]bool{
	KindStackException:   true,
	KindHeapException:    true,
	KindStackSystemError: true,
	KindHeapSystemError:  true,
	KindPlainException:   true,
	KindPlainSystemError: true,
}

// AppendException stores v (an ExceptionRecord) under one of the six
// exception Kinds. Used by package except so the outer Record's buffer
// carries a distinguishing tag instead of the generic
// NonTriviallyCopyableCustom tag a plain Append would use.
func AppendException(r *Record, kind Kind, v NonTrivialCustom) (*Record, error) {
	if !exceptionKinds[kind] {
		return r, ErrUnsupportedType
	}
	return r, r.appendExt(kind, customSlot{vtable: v.VTable(), value: v})
}
