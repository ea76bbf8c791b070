// Copyright (c) 2024 The echosounder developers. All rights reserved.
// Project site: https://github.com/gotmc/echosounder
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package echosounder

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a parameter value as exchanged with the instrument. The text is
// authoritative; the numeric forms are decoded from it on demand.
type Value struct {
	text string
}

// NewValue wraps text as a Value.
func NewValue(text string) Value { return Value{text: text} }

// IntValue encodes n in decimal.
func IntValue(n int64) Value { return Value{text: strconv.FormatInt(n, 10)} }

// FloatValue encodes f with six decimals, e.g. "14.000000".
func FloatValue(f float64) Value { return Value{text: strconv.FormatFloat(f, 'f', 6, 64)} }

// Text returns the value's text.
func (v Value) Text() string { return v.text }

func (v Value) String() string { return v.text }

// Valid reports whether the value is non-empty.
func (v Value) Valid() bool { return v.text != "" }

// Int decodes the value as a decimal integer.
func (v Value) Int() (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(v.text), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, v.text)
	}
	return n, nil
}

// Float decodes the value as a floating point number.
func (v Value) Float() (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, v.text)
	}
	return f, nil
}
