// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package queue

// RaceEnabled is true when the race detector is active. Stress tests use it
// to skip iteration counts that would make -race runs impractically slow.
const RaceEnabled = true
