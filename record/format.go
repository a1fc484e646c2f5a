// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record

import "go.emberlog.dev/ember/format"

// Format decodes r's argument buffer and renders r.Pattern against it using
// eng. A malformed pattern or out-of-range argument index yields "<ERROR>";
// callers are expected to also emit an internal diagnostic in that case.
func (r *Record) Format(eng *format.Engine) (string, error) {
	if r.Pattern == "" {
		return "", nil
	}
	values := r.Decode()
	args := make([]format.Arg, len(values))
	for i, v := range values {
		args[i] = toArg(v)
	}
	s, err := eng.Render(r.Pattern, args)
	if err != nil {
		return "<ERROR>", err
	}
	return s, nil
}

func toArg(v Value) format.Arg {
	a := format.Arg{Escaped: v.Escaped, IsNull: v.IsNull}
	switch v.Kind {
	case KindBool:
		a.Value = v.Bool
	case KindInlineString8, KindInlineString16:
		a.Value = v.Str
	case KindFloat32, KindFloat64, KindFloat80:
		a.Value = v.F64
	case KindUint8, KindUint16, KindUint32, KindUint64, KindRawPointer:
		a.Value = v.U64
	case KindNull:
		a.IsNull = true
	default:
		if v.Custom != nil {
			a.Value = v.Custom
		} else {
			a.Value = v.I64
		}
	}
	return a
}
