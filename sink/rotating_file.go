// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sink

import (
	"fmt"
	"os"
	"sync"

	"go.emberlog.dev/ember/priority"
)

// RotatingFile writes rendered records to a growing file. Before a write
// that would take the file past maxBytes, it renames the file aside (to
// path + ".1") and opens a fresh file in its place. Directory
// scanning, retention policy, and backup numbering beyond a single rename
// are out of scope -- this covers only the "never let one file grow
// unbounded" core behavior.
type RotatingFile struct {
	Threshold

	mu       sync.Mutex
	path     string
	maxBytes int64
	file     *os.File
	size     int64
}

// NewRotatingFile opens (creating if necessary) path for append, rotating
// before a write would make its size exceed maxBytes (never, if maxBytes
// is 0 or less).
func NewRotatingFile(path string, maxBytes int64, p priority.Priority) (*RotatingFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	rf := &RotatingFile{path: path, maxBytes: maxBytes, file: f, size: info.Size()}
	rf.SetThreshold(p)
	return rf, nil
}

func (rf *RotatingFile) Write(rr RenderedRecord) error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	line := fmt.Sprintf("%s %s [%d] %s:%d %s %s\n",
		FormatTimestamp(rr.Timestamp), FormatPriority(rr.Priority), rr.ThreadID, rr.File, rr.Line, rr.Function, rr.Text)
	if rf.maxBytes > 0 && rf.size+int64(len(line)) > rf.maxBytes {
		if err := rf.rotate(); err != nil {
			return err
		}
	}
	n, err := rf.file.WriteString(line)
	rf.size += int64(n)
	return err
}

func (rf *RotatingFile) rotate() error {
	if err := rf.file.Close(); err != nil {
		return err
	}
	if err := os.Rename(rf.path, rf.path+".1"); err != nil && !os.IsNotExist(err) {
		return err
	}
	f, err := os.OpenFile(rf.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	rf.file = f
	rf.size = 0
	return nil
}

// Close closes the underlying file.
func (rf *RotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.file.Close()
}
