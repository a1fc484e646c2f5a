// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package format

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPositional(t *testing.T) {
	var eng Engine
	out, err := eng.Render("hello {0}, you are {1}", []Arg{
		{Value: "world"},
		{Value: int64(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world, you are 3", out)
}

func TestRenderFloatPrecision(t *testing.T) {
	var eng Engine
	out, err := eng.Render("{0:.4}", []Arg{{Value: 1.8}})
	require.NoError(t, err)
	assert.Equal(t, "1.8000", out)
}

func TestRenderAutoNumberedPlaceholders(t *testing.T) {
	var eng Engine
	out, err := eng.Render("{} {:.3}", []Arg{
		{Value: "Test"},
		{Value: strings.Repeat("x", 1024)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Test xxx", out)
}

func TestRenderStringPrecisionTruncates(t *testing.T) {
	var eng Engine
	out, err := eng.Render("{0:.3}", []Arg{{Value: "hello"}})
	require.NoError(t, err)
	assert.Equal(t, "hel", out)
}

func TestRenderStringPrecisionLongerThanValueIsNoOp(t *testing.T) {
	var eng Engine
	out, err := eng.Render("{0:.10}", []Arg{{Value: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestRenderOutOfRangeIndex(t *testing.T) {
	var eng Engine
	_, err := eng.Render("{5}", []Arg{{Value: "x"}})
	require.ErrorIs(t, err, ErrFormat)
}

func TestRenderEscapedBraces(t *testing.T) {
	var eng Engine
	out, err := eng.Render("{{literal}}", nil)
	require.NoError(t, err)
	assert.Equal(t, "{literal}", out)
}

func TestRenderNullWithAlt(t *testing.T) {
	var eng Engine
	out, err := eng.Render("{0}", []Arg{{IsNull: true, HasNullAlt: true, NullAlt: "none"}})
	require.NoError(t, err)
	assert.Equal(t, "none", out)
}

func TestRenderDecimalValue(t *testing.T) {
	var eng Engine
	out, err := eng.Render("total: {0}", []Arg{{Value: decimal.RequireFromString("19.99")}})
	require.NoError(t, err)
	assert.Equal(t, "total: 19.99", out)
}

func TestRenderEscapedValue(t *testing.T) {
	var eng Engine
	out, err := eng.Render("{0}", []Arg{{Value: "a\nb", Escaped: true}})
	require.NoError(t, err)
	assert.Equal(t, `a\nb`, out)
}
