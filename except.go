// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ember

import (
	"strings"

	"go.emberlog.dev/ember/except"
)

// ExceptionRecord is the captured throw-site context returned by
// CurrentExceptionContext.
type ExceptionRecord = except.Record

// ExceptionCategory is a process-static error-category marker attached to
// an ExceptionRecord via SetOSError.
type ExceptionCategory = except.Category

// ThrowWithContext wraps err with the throw-site's file, line, function,
// and an optional nested pattern/args, returning a new error a catching
// frame can recover the context from via CurrentExceptionContext.
func ThrowWithContext(err error, file string, line uint32, function string, pattern string, args ...any) error {
	return except.ThrowWithContext(err, file, line, function, pattern, args...)
}

// CurrentExceptionContext extracts the ExceptionRecord captured by
// ThrowWithContext from err (or anything err wraps), if present.
func CurrentExceptionContext(err error) (*ExceptionRecord, bool) {
	return except.FromError(err)
}

// ShortFile strips any directory prefix from a __FILE__-style source
// literal, the way sinks render file fields without the full build-path
// noise a compiler's __FILE__ expansion carries.
func ShortFile(file string) string {
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		return file[i+1:]
	}
	return file
}
