// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package format implements the generic `{index:spec}` placeholder engine
// used to render a Record's final text. It is a standalone collaborator
// with no dependency on record or except, so both can depend on it
// without depending on each other.
package format

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrFormat is returned when a pattern references an out-of-range argument
// index or a malformed placeholder.
var ErrFormat = errors.New("format: invalid pattern or argument")

// Arg is one renderable argument: a value plus the escape/null-replacement
// metadata the renderer needs.
type Arg struct {
	Value      any
	Escaped    bool
	IsNull     bool
	NullAlt    string // rendered when IsNull and a "?alt" suffix was given
	HasNullAlt bool
}

// SpecFormatter is implemented by argument values that own a pattern
// language distinct from this engine's own {index:spec} placeholders (the
// exception-record mini-language is the only such value in this module).
// When a placeholder's argument implements it, Render delegates the entire
// spec text to the value instead of interpreting it as a per-type format
// spec, and passes the full argument vector so the value can resolve its
// own back-references into the same frame.
type SpecFormatter interface {
	FormatSpec(spec string, hasSpec bool, outer []Arg) (string, error)
}

// Engine renders patterns against an argument vector. The zero value is
// ready to use.
type Engine struct{}

// Render expands every `{index[:spec]}` placeholder in pattern against
// args, returning the rendered string. Unmatched `{`/`}` or an index past
// len(args) is reported as ErrFormat; callers (record.Record.Format) fall
// back to rendering the literal string "<ERROR>" in that case.
func (Engine) Render(pattern string, args []Arg) (string, error) {
	var b strings.Builder
	i := 0
	n := len(pattern)
	auto := 0
	for i < n {
		c := pattern[i]
		switch c {
		case '{':
			if i+1 < n && pattern[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := matchingBrace(pattern, i)
			if end < 0 {
				return "", ErrFormat
			}
			body := pattern[i+1 : end]
			if err := renderPlaceholder(&b, body, args, &auto); err != nil {
				return "", err
			}
			i = end + 1
		case '}':
			if i+1 < n && pattern[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return "", ErrFormat
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// matchingBrace returns the index of the '}' that closes the '{' found at
// start, accounting for nesting: a SpecFormatter's delegated spec text can
// itself contain balanced {N} references (the exception mini-language's
// own argument syntax). Returns -1 if unmatched.
func matchingBrace(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func renderPlaceholder(b *strings.Builder, body string, args []Arg, auto *int) error {
	idxStr, spec, hasSpec := strings.Cut(body, ":")
	var idx int
	if idxStr == "" {
		idx = *auto
		*auto++
	} else {
		n, err := strconv.Atoi(idxStr)
		if err != nil {
			return ErrFormat
		}
		idx = n
	}
	if idx < 0 || idx >= len(args) {
		return ErrFormat
	}
	a := args[idx]
	if a.IsNull {
		if a.HasNullAlt {
			b.WriteString(a.NullAlt)
		}
		return nil
	}
	if sf, ok := a.Value.(SpecFormatter); ok {
		rendered, err := sf.FormatSpec(spec, hasSpec, args)
		if err != nil {
			return err
		}
		if a.Escaped {
			WriteEscaped(b, rendered)
		} else {
			b.WriteString(rendered)
		}
		return nil
	}
	rendered := renderValue(a.Value, spec, hasSpec)
	if a.Escaped {
		WriteEscaped(b, rendered)
	} else {
		b.WriteString(rendered)
	}
	return nil
}

func renderValue(v any, spec string, hasSpec bool) string {
	switch x := v.(type) {
	case string:
		if hasSpec {
			if n, ok := parsePrecision(spec); ok {
				if r := []rune(x); n < len(r) {
					return string(r[:n])
				}
			}
		}
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		if hasSpec {
			if prec, ok := parsePrecision(spec); ok {
				return strconv.FormatFloat(x, 'f', prec, 64)
			}
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case decimal.Decimal:
		return x.String()
	case nil:
		return ""
	default:
		if s, ok := v.(interface{ String() string }); ok {
			return s.String()
		}
		return ""
	}
}

// parsePrecision parses a ".N" float spec, e.g. "{2:.4}" means "4
// fractional digits".
func parsePrecision(spec string) (int, bool) {
	spec = strings.TrimPrefix(spec, ".")
	n, err := strconv.Atoi(spec)
	if err != nil {
		return 0, false
	}
	return n, true
}

// WriteEscaped appends s to b using C-style escaping for Escaped
// arguments: control characters become their named escape
// (\n \r \t \b \f \v \a \\) or, for bytes < 0x20 with no named escape,
// \xHH.
func WriteEscaped(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case '\a':
			b.WriteString(`\a`)
		default:
			if c < 0x20 {
				b.WriteString(`\x`)
				const hex = "0123456789abcdef"
				b.WriteByte(hex[c>>4])
				b.WriteByte(hex[c&0xF])
			} else {
				b.WriteByte(c)
			}
		}
	}
}
