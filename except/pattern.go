// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package except

import (
	"strconv"
	"strings"

	"go.emberlog.dev/ember/format"
)

// DefaultSpec is used when Format is called with an empty spec string.
// The location group carries no braces, so nothing in it is read as an
// argument reference: the whole group is suppressed for Plain
// records, since every directive inside evaluates to empty for them.
//
// The literal brackets around %t are escaped (\[ \]) rather than bare:
// a bare ']' anywhere inside a %[...] group closes that group, so a
// literal bracket pair nested inside one must be escaped to survive.
const DefaultSpec = `%w%[ (%C %c={0})]%[ @%T \[%t\] %F:%L %f]`

// patternCursor walks a pattern spec string one byte at a time, the same
// "scan, dispatch on a lookahead byte, recurse for bracket groups" shape
// used for the segment-rotation retry loop this package's sibling packages
// are grounded on: a single forward pass with no backtracking.
type patternCursor struct {
	s   string
	pos int
	rec *Record
	out []format.Arg // the enclosing frame's arguments, for {N[:spec]}
}

// Format renders spec (or DefaultSpec if empty) against r, resolving
// directives from r's own fields and, for {N[:spec]}, from outerArgs (the
// frame the exception argument itself was passed in).
func (r *Record) Format(spec string, outerArgs []format.Arg) (string, error) {
	if spec == "" {
		spec = DefaultSpec
	}
	c := &patternCursor{s: spec, rec: r, out: outerArgs}
	var b strings.Builder
	_, err := c.render(&b)
	return b.String(), err
}

// render writes c's pattern (or the remainder of it, if called recursively
// for a %[...] group) into b, returning whether any data-bearing directive
// produced non-empty output and stopping at an unmatched ']' for group
// recursion.
func (c *patternCursor) render(b *strings.Builder) (bool, error) {
	hadContent := false
	for c.pos < len(c.s) {
		ch := c.s[c.pos]
		switch {
		case ch == ']':
			return hadContent, nil
		case ch == '\\':
			c.pos++
			if c.pos < len(c.s) {
				b.WriteByte(unescape(c.s[c.pos]))
				c.pos++
			}
		case ch == '%':
			c.pos++
			if c.pos >= len(c.s) {
				return hadContent, nil
			}
			directive := c.s[c.pos]
			c.pos++
			if directive == '[' {
				var sub strings.Builder
				groupHad, err := c.render(&sub)
				if err != nil {
					return hadContent, err
				}
				if c.pos < len(c.s) && c.s[c.pos] == ']' {
					c.pos++
				}
				if groupHad {
					b.WriteString(sub.String())
					hadContent = true
				}
				continue
			}
			text, had := c.directive(directive)
			b.WriteString(text)
			if had {
				hadContent = true
			}
		case ch == '{':
			end := strings.IndexByte(c.s[c.pos:], '}')
			if end < 0 {
				return hadContent, nil
			}
			body := c.s[c.pos+1 : c.pos+end]
			c.pos += end + 1
			// A {N[:spec]} reference never counts toward a group's
			// suppression decision -- the conditional-group rule (spec
			// default spec's "%[ (%C %c={0})]") only looks at whether a
			// %-directive produced output, so {0} alone inside a group
			// must not force it to render.
			text, _ := c.reference(body)
			b.WriteString(text)
		default:
			b.WriteByte(ch)
			c.pos++
		}
	}
	return hadContent, nil
}

// unescape maps a pattern's `\X` escape target to the literal byte it
// stands for, the mirror image of format.WriteEscaped's control-character
// escaping: `\n` in a pattern means an actual newline in the rendered
// output, not the two characters backslash-n.
func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'v':
		return '\v'
	case 'a':
		return '\a'
	default:
		return c
	}
}

func (c *patternCursor) directive(d byte) (string, bool) {
	r := c.rec
	switch d {
	case 'T':
		if r.Variant == Plain {
			return "", false
		}
		return r.Timestamp.Format("2006-01-02 15:04:05.000"), true
	case 't':
		if r.Variant == Plain {
			return "", false
		}
		return strconv.FormatUint(r.ThreadID, 10), true
	case 'F':
		if r.Variant == Plain {
			return "", false
		}
		return r.File, r.File != ""
	case 'L':
		if r.Variant == Plain {
			return "", false
		}
		return strconv.FormatUint(uint64(r.Line), 10), r.Line != 0
	case 'f':
		if r.Variant == Plain {
			return "", false
		}
		return r.Function, r.Function != ""
	case 'l':
		if r.nested == nil {
			return "", false
		}
		var eng format.Engine
		s, err := r.nested.Format(&eng)
		return s, err == nil && s != ""
	case 'w', 'e':
		// 'e' is an alias for 'w' kept for a scenario text observed in the
		// source material that used %e where the directive table defines
		// only %w for "exception's own message" (see DESIGN.md).
		s := r.What()
		return s, s != ""
	case 'c':
		if r.os == nil {
			return "", false
		}
		return r.os.codeString(), true
	case 'C':
		if r.os == nil || r.os.Category == nil {
			return "", false
		}
		return r.os.Category.Name, r.os.Category.Name != ""
	case 'm':
		if r.os == nil {
			return "", false
		}
		s := r.os.message()
		return s, s != ""
	default:
		return "", false
	}
}

// reference resolves "{N[:spec]}". N == 0 means "the exception itself"
// (rendered with spec, or What() if spec is empty); N >= 1 indexes into
// the enclosing frame's own argument vector (1-based there, so outer
// argument N-1).
func (c *patternCursor) reference(body string) (string, bool) {
	idxStr, spec, _ := strings.Cut(body, ":")
	n, err := strconv.Atoi(idxStr)
	if err != nil {
		return "", false
	}
	if n == 0 {
		if spec == "" {
			s := c.rec.What()
			return s, s != ""
		}
		sub := &patternCursor{s: spec, rec: c.rec, out: c.out}
		var b strings.Builder
		had, _ := sub.render(&b)
		return b.String(), had
	}
	i := n - 1
	if i < 0 || i >= len(c.out) {
		return "", false
	}
	arg := c.out[i]
	var eng format.Engine
	rendered, err := eng.Render("{0"+specSuffix(spec)+"}", []format.Arg{arg})
	if err != nil {
		return "", false
	}
	return rendered, rendered != ""
}

func specSuffix(spec string) string {
	if spec == "" {
		return ""
	}
	return ":" + spec
}
