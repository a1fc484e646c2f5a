// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelMasksAttemptCounter(t *testing.T) {
	p := WithAttempt(Warn, 2)
	assert.Equal(t, Warn, p.Level())
	assert.Equal(t, 2, p.Attempt())
}

func TestElevateIncrementsAndFloorsAtError(t *testing.T) {
	p, err := Elevate(Debug)
	require.NoError(t, err)
	assert.Equal(t, Error, p.Level())
	assert.Equal(t, 1, p.Attempt())

	p, err = Elevate(p)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Attempt())

	p, err = Elevate(p)
	require.NoError(t, err)
	assert.Equal(t, MaxAttempt, p.Attempt())

	_, err = Elevate(p)
	assert.Error(t, err)
}

func TestValidRejectsUnknownLevel(t *testing.T) {
	assert.True(t, Valid(Info))
	assert.False(t, Valid(Priority(200)))
}

func TestString(t *testing.T) {
	assert.Equal(t, "ERROR", Error.String())
	assert.Equal(t, "ERROR", WithAttempt(Error, 1).String())
}
