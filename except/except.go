// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package except implements the exception-aware record layout: a
// stack/heap/plain tagged union that captures a nested argument buffer and
// optional OS-error information at throw time, plus a dedicated
// pattern-language formatter distinct from the outer {index:spec} engine.
package except

import (
	"errors"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	"go.emberlog.dev/ember/format"
	"go.emberlog.dev/ember/internal/clock"
	"go.emberlog.dev/ember/record"
)

// ErrEncoding describes a captured exception whose nested argument buffer
// could not be fully built (an argument's type is unsupported).
// ThrowWithContext does not return it; it appends its text to the
// Record's Message instead.
var ErrEncoding = errors.New("except: failed to encode nested argument buffer")

// Variant selects which of the three throw-site capture shapes a Record
// holds: Stack for a value still on the caller's stack at format time (the
// common case), Heap when the original error must outlive the throw frame,
// Plain when there is no nested argument buffer at all (a bare error
// wrapped only for its message).
type Variant uint8

const (
	Plain Variant = iota
	Stack
	Heap
)

// Category is a process-static error-category marker. Two OSErrors compare
// equal in category only if their Category pointers are identical, mirroring
// std::error_category's pointer-identity contract.
type Category struct {
	Name    string
	Message func(code int32) string
}

// OSError carries a platform error code plus the category that can render
// it, generalizing a Win32-style DWORD capture to any platform's integer
// error code.
type OSError struct {
	Code     int32
	Category *Category
}

func (e *OSError) codeString() string {
	if e.Code >= 0 && e.Code <= 0xFFFF {
		return fmt.Sprintf("%d", e.Code)
	}
	return fmt.Sprintf("0x%X", uint32(e.Code))
}

func (e *OSError) message() string {
	if e.Category == nil || e.Category.Message == nil {
		return ""
	}
	return e.Category.Message(e.Code)
}

// onceString is a lazily-computed, shared, immutable string: the value is
// computed at most once, on first call to get, and the result is shared by
// every Record that points at the same onceString.
type onceString struct {
	once sync.Once
	val  string
}

func (o *onceString) get(compute func() string) string {
	o.once.Do(func() { o.val = compute() })
	return o.val
}

// Record is one captured exception context: a throw-site location, an
// optional nested argument buffer (Stack/Heap variants only), an optional
// OS error, and a user-supplied or error-derived message.
type Record struct {
	Variant   Variant
	Timestamp time.Time
	ThreadID  uint64
	File      string
	Function  string
	Line      uint32
	Message   string // the wrapped error's own message, e.g. err.Error()

	nested *record.Record // nil for Plain
	os     *OSError
	what   *onceString
}

// VTable implements record.NonTrivialCustom so a Record can be appended to
// an outer argument buffer under one of the six exception Kinds via
// record.AppendException.
func (r *Record) VTable() *record.VTable {
	return &record.VTable{
		Copy: func(v any) any {
			src := v.(*Record)
			out := *src
			if src.nested != nil {
				out.nested = src.nested.Clone()
			}
			return &out
		},
		Move: func(v any) any {
			src := v.(*Record)
			if src.nested != nil {
				out := *src
				out.nested = src.nested.Take()
				return &out
			}
			return src
		},
		Destruct: func(v any) {
			rec := v.(*Record)
			if rec.nested != nil {
				rec.nested.Destruct()
			}
		},
		MakeFormatArg: func(v any) any { return v },
	}
}

// Kind reports the exception Kind this Record should be tagged with when
// appended to an outer buffer, combining variant with OS-error presence.
func (r *Record) Kind() record.Kind {
	switch {
	case r.Variant == Stack && r.os == nil:
		return record.KindStackException
	case r.Variant == Stack && r.os != nil:
		return record.KindStackSystemError
	case r.Variant == Heap && r.os == nil:
		return record.KindHeapException
	case r.Variant == Heap && r.os != nil:
		return record.KindHeapSystemError
	case r.os != nil:
		return record.KindPlainSystemError
	default:
		return record.KindPlainException
	}
}

// contextError wraps a user error together with the captured Record, as
// returned by ThrowWithContext.
type contextError struct {
	err   error
	cause error
	rec   *Record
}

func (e *contextError) Error() string { return e.cause.Error() }
func (e *contextError) Unwrap() error { return e.cause }

// ThrowWithContext captures the current throw site (file, line, function),
// optionally builds a nested argument buffer from pattern/args, and returns
// a new error that wraps err together with that context. The stack trace is
// captured via github.com/pkg/errors, since an exception payload benefits
// from a captured stack unlike ordinary sentinel errors elsewhere in this
// module.
func ThrowWithContext(err error, file string, line uint32, function string, pattern string, args ...any) error {
	rec := &Record{
		Variant:  Plain,
		ThreadID: clock.GoroutineID(),
		File:     file,
		Function: function,
		Line:     line,
		Message:  err.Error(),
		what:     &onceString{},
	}
	if pattern != "" {
		rec.Variant = Stack
		nested := record.New(0, file, line, function, pattern)
		var encodeErr error
		for _, a := range args {
			if _, appendErr := record.Append(nested, a); appendErr != nil && encodeErr == nil {
				encodeErr = appendErr
			}
		}
		rec.nested = nested
		if encodeErr != nil {
			rec.Message += " (" + ErrEncoding.Error() + ")"
		}
	}
	cause := pkgerrors.WithStack(err)
	return &contextError{err: err, cause: cause, rec: rec}
}

// FromError extracts the Record captured by ThrowWithContext, if err (or
// something it wraps) is such an error.
func FromError(err error) (*Record, bool) {
	for err != nil {
		if ce, ok := err.(*contextError); ok {
			return ce.rec, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return nil, false
}

// What returns the what()-style message: the wrapped error's own message,
// with ": <category message>" appended for system-error variants. This is
// distinct from the nested context buffer's rendering (see the %l
// directive in pattern.go) -- an exception's own message and the
// separately-captured log pattern passed to ThrowWithContext stay two
// independent things. The result is computed once and shared across
// clones (onceString).
func (r *Record) What() string {
	if r.what == nil {
		r.what = &onceString{}
	}
	return r.what.get(func() string {
		msg := r.Message
		if r.os != nil {
			if cat := r.os.message(); cat != "" {
				msg += ": " + cat
			}
		}
		return msg
	})
}

// FormatSpec implements format.SpecFormatter, letting an exception value
// embedded as an outer placeholder's argument ({1:%[...]}) delegate the
// placeholder's entire spec text into the exception pattern language
// instead of the outer engine's generic per-type rendering, with the
// outer frame's own arguments available for {N} back-references.
func (r *Record) FormatSpec(spec string, hasSpec bool, outer []format.Arg) (string, error) {
	if !hasSpec {
		spec = ""
	}
	return r.Format(spec, outer)
}

// SetOSError attaches OS-error context to r, switching its Kind to one of
// the *SystemError variants.
func (r *Record) SetOSError(code int32, category *Category) {
	r.os = &OSError{Code: code, Category: category}
}
