// Copyright 2026 The Ember Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record

import "github.com/shopspring/decimal"

// DecimalArg wraps a decimal.Decimal so it can be appended as a trivially
// copyable custom argument (the worked example this module uses to
// exercise the TrivialCustom v-table path end to end). It round-trips
// through its exact decimal string representation rather than IEEE-754,
// since the whole point of decimal.Decimal is avoiding float rounding.
type DecimalArg struct {
	decimal.Decimal
}

// NewDecimalArg wraps d for appending.
func NewDecimalArg(d decimal.Decimal) DecimalArg { return DecimalArg{d} }

// EncodeTrivial implements record.TrivialCustom.
func (d DecimalArg) EncodeTrivial() []byte { return []byte(d.Decimal.String()) }

// TrivialVTable implements record.TrivialCustom.
func (d DecimalArg) TrivialVTable() *TrivialVTable {
	return &TrivialVTable{
		MakeFormatArg: func(payload []byte) any {
			v, err := decimal.NewFromString(string(payload))
			if err != nil {
				return decimal.Decimal{}
			}
			return v
		},
	}
}
