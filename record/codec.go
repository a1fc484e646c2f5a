// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record

import (
	"encoding/binary"
	"math"

	"golang.org/x/text/encoding/unicode"
)

// kindInfo describes the fixed layout of a Kind's payload. Variable-length
// kinds (strings) set fixedSize < 0; ext-referenced kinds (custom and
// exception slots) store a 4-byte index into Record.ext.
type kindInfo struct {
	align     int
	fixedSize int // -1 for variable-length strings; 4 for ext index kinds
}

var kindTable = [numKinds]kindInfo{
	KindNull:                    {1, 0},
	KindBool:                    {1, 1},
	KindChar:                    {1, 1},
	KindInt8:                    {1, 1},
	KindInt16:                   {2, 2},
	KindInt32:                   {4, 4},
	KindInt64:                   {8, 8},
	KindUint8:                   {1, 1},
	KindUint16:                  {2, 2},
	KindUint32:                  {4, 4},
	KindUint64:                  {8, 8},
	KindFloat32:                 {4, 4},
	KindFloat64:                 {8, 8},
	KindFloat80:                 {8, 8},
	KindRawPointer:              {8, 8},
	KindInlineString8:           {2, -1},
	KindInlineString16:          {2, -1},
	KindStackException:          {4, 4},
	KindHeapException:           {4, 4},
	KindStackSystemError:        {4, 4},
	KindHeapSystemError:         {4, 4},
	KindPlainException:          {4, 4},
	KindPlainSystemError:        {4, 4},
	KindTriviallyCopyableCustom: {4, 4},
	KindNonTriviallyCopyableCustom: {4, 4},
}

const maxInlineLen = math.MaxUint16

// reserve allocates space (growing the buffer if necessary) for a slot
// whose payload needs payloadLen bytes aligned to align, writes the
// padding and the tag, and returns the byte range for the payload.
func (r *Record) reserve(tag Tag, align, payloadLen int) ([]byte, error) {
	pad := padding(r.used, align)
	need := uint32(pad + 1 + payloadLen)
	if err := r.grow(need); err != nil {
		return nil, err
	}
	// Growth never changes r.used, so the padding computed above (a pure
	// function of r.used) remains valid after growth.
	buf := r.buf()
	off := r.used
	for i := 0; i < pad; i++ {
		buf[off] = 0
		off++
	}
	buf[off] = byte(tag)
	off++
	payload := buf[off : off+uint32(payloadLen)]
	r.used += need
	return payload, nil
}

func (r *Record) appendFixed(k Kind, isPointer, isNull, escaped bool, write func([]byte)) error {
	info := kindTable[k]
	tagKind := k
	if isNull {
		tagKind = KindNull
		info = kindTable[KindNull]
	}
	tag := NewTag(tagKind, isPointer, escaped)
	payload, err := r.reserve(tag, info.align, info.fixedSize)
	if err != nil {
		return err
	}
	if !isNull && write != nil {
		write(payload)
	}
	return nil
}

func (r *Record) appendExt(k Kind, slot customSlot) error {
	info := kindTable[k]
	idx := len(r.ext)
	r.ext = append(r.ext, slot)
	tag := NewTag(k, false, false)
	payload, err := r.reserve(tag, info.align, info.fixedSize)
	if err != nil {
		r.ext = r.ext[:idx]
		return err
	}
	binary.LittleEndian.PutUint32(payload, uint32(idx))
	if slot.vtable != nil {
		r.hasNonTrivial = true
	}
	return nil
}

func (r *Record) appendString(k Kind, s string, escaped bool) error {
	truncated := false
	var unitLen int
	if k == KindInlineString16 {
		units := []uint16(nil)
		for _, ru := range s {
			units = append(units, uint16(ru))
			if len(units) == maxInlineLen {
				truncated = true
				break
			}
		}
		unitLen = len(units)
		info := kindTable[k]
		tag := NewTag(k, false, escaped)
		payload, err := r.reserve(tag, info.align, 2+unitLen*2)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint16(payload, uint16(unitLen))
		for i, u := range units {
			binary.LittleEndian.PutUint16(payload[2+i*2:], u)
		}
	} else {
		b := []byte(s)
		if len(b) > maxInlineLen {
			b = b[:maxInlineLen]
			truncated = true
		}
		info := kindTable[k]
		tag := NewTag(k, false, escaped)
		payload, err := r.reserve(tag, info.align, 2+len(b))
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint16(payload, uint16(len(b)))
		copy(payload[2:], b)
	}
	if truncated {
		return ErrTruncated
	}
	return nil
}

// Skip advances a cursor past one slot without decoding its payload,
// returning the new cursor position.
func (r *Record) Skip(pos uint32) uint32 {
	_, next := r.decodeSlot(pos)
	return next
}

// decodeSlot decodes the slot starting at or after pos and returns the
// Value plus the cursor position immediately after the slot. Padding
// bytes are always zero and Kind 0 is reserved (see kind.go), so the tag
// is simply the first nonzero byte at or after pos -- no alignment needs
// to be guessed to find it.
func (r *Record) decodeSlot(pos uint32) (Value, uint32) {
	buf := r.buf()
	tagPos := pos
	for tagPos < r.used && buf[tagPos] == 0 {
		tagPos++
	}
	if tagPos >= r.used {
		return Value{}, r.used
	}
	tag := Tag(buf[tagPos])
	k := tag.Kind()
	payloadStart := tagPos + 1
	v, payloadLen := r.decodePayload(k, tag, buf[payloadStart:])
	return v, payloadStart + uint32(payloadLen)
}

func (r *Record) decodePayload(k Kind, tag Tag, payload []byte) (Value, int) {
	v := Value{Kind: k, Escaped: tag.Escaped(), IsPointer: tag.IsPointer()}
	switch k {
	case KindNull:
		v.IsNull = true
		return v, 0
	case KindBool:
		v.Bool = payload[0] != 0
		return v, 1
	case KindChar:
		v.I64 = int64(int8(payload[0]))
		return v, 1
	case KindInt8:
		v.I64 = int64(int8(payload[0]))
		return v, 1
	case KindUint8:
		v.U64 = uint64(payload[0])
		return v, 1
	case KindInt16:
		v.I64 = int64(int16(binary.LittleEndian.Uint16(payload)))
		return v, 2
	case KindUint16:
		v.U64 = uint64(binary.LittleEndian.Uint16(payload))
		return v, 2
	case KindInt32:
		v.I64 = int64(int32(binary.LittleEndian.Uint32(payload)))
		return v, 4
	case KindUint32:
		v.U64 = uint64(binary.LittleEndian.Uint32(payload))
		return v, 4
	case KindInt64:
		v.I64 = int64(binary.LittleEndian.Uint64(payload))
		return v, 8
	case KindUint64:
		v.U64 = binary.LittleEndian.Uint64(payload)
		return v, 8
	case KindFloat32:
		v.F64 = float64(math.Float32frombits(binary.LittleEndian.Uint32(payload)))
		return v, 4
	case KindFloat64, KindFloat80:
		v.F64 = math.Float64frombits(binary.LittleEndian.Uint64(payload))
		return v, 8
	case KindRawPointer:
		v.U64 = binary.LittleEndian.Uint64(payload)
		return v, 8
	case KindInlineString8:
		n := int(binary.LittleEndian.Uint16(payload))
		v.Str = string(payload[2 : 2+n])
		return v, 2 + n
	case KindInlineString16:
		n := int(binary.LittleEndian.Uint16(payload))
		units := make([]uint16, n)
		for i := 0; i < n; i++ {
			units[i] = binary.LittleEndian.Uint16(payload[2+i*2:])
		}
		v.Str = decodeUTF16(units)
		return v, 2 + n*2
	default:
		idx := binary.LittleEndian.Uint32(payload)
		e := &r.ext[idx]
		v.Custom = e.formatArg()
		return v, 4
	}
}

func (e *customSlot) formatArg() any {
	if e.destroyed {
		return nil
	}
	if e.trivial != nil {
		return e.trivial.MakeFormatArg(e.payload)
	}
	if e.vtable != nil && e.vtable.MakeFormatArg != nil {
		return e.vtable.MakeFormatArg(e.value)
	}
	return e.value
}

// decodeUTF16 converts raw UTF-16LE code units to a UTF-8 string using
// golang.org/x/text's codec rather than a hand-rolled surrogate-pair scan.
// A malformed sequence yields the literal "<ERROR>".
func decodeUTF16(units []uint16) string {
	raw := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(raw[i*2:], u)
	}
	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return "<ERROR>"
	}
	return string(decoded)
}

// Decode walks the entire buffer and returns every argument Value in
// order. Used by Record.Format to build the formatter argument vector.
func (r *Record) Decode() []Value {
	var values []Value
	pos := uint32(0)
	for pos < r.used {
		v, next := r.decodeSlot(pos)
		if next <= pos {
			break // malformed buffer guard
		}
		values = append(values, v)
		pos = next
	}
	return values
}
