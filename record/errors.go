// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record

import "errors"

// ErrCapacityExceeded is returned when a slot write would grow a Record's
// buffer past the maximum addressable size (2^32-1 bytes).
var ErrCapacityExceeded = errors.New("record: capacity exceeded")

// ErrUnsupportedType is returned by Append when the argument's type is
// neither a builtin kind nor implements TrivialCustom/NonTrivialCustom.
var ErrUnsupportedType = errors.New("record: unsupported argument type")

// ErrTruncated reports that a string argument was longer than 65535
// characters/code-units and was silently truncated. Callers may use this
// to emit their own internal warning.
var ErrTruncated = errors.New("record: string argument truncated to 65535 units")

// maxCustomPayload is the largest payload a trivially-copyable custom
// argument may carry; custom types larger than 2^28 bytes are rejected.
// Go has no static_assert equivalent, so the check happens at append time
// instead of compile time (see DESIGN.md).
const maxCustomPayload = 1 << 28

// ErrCustomTooLarge is returned when a trivially-copyable custom
// argument's encoded payload is larger than maxCustomPayload bytes.
var ErrCustomTooLarge = errors.New("record: custom argument payload too large")
