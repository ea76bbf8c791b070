// Copyright (c) 2024 The echosounder developers. All rights reserved.
// Project site: https://github.com/gotmc/echosounder
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package echosounder

import "errors"

var (
	// ErrTimeout indicates no terminal reply arrived within the response
	// timeout. The instrument is unresponsive or the link is broken.
	ErrTimeout = errors.New("echosounder: timeout waiting for reply")
	// ErrCommand indicates the instrument replied "Invalid command", which
	// usually means the command table does not match the firmware.
	ErrCommand = errors.New("echosounder: invalid command")
	// ErrArgument indicates the instrument rejected the command's argument.
	ErrArgument = errors.New("echosounder: invalid argument")
	// ErrDetectionFailed indicates no prompt was obtained after all
	// detection attempts, or the probe command failed.
	ErrDetectionFailed = errors.New("echosounder: detection failed")
	// ErrUnsupportedParameter indicates the engine's command table has no
	// entry for the requested parameter.
	ErrUnsupportedParameter = errors.New("echosounder: parameter not supported by command table")
	// ErrNotDetected is returned by operations that need a detected
	// instrument.
	ErrNotDetected = errors.New("echosounder: instrument not detected")
	// ErrNoValue indicates a parameter has no cached value.
	ErrNoValue = errors.New("echosounder: no cached value")
	// ErrNotNumeric indicates a value's text is not a valid number.
	ErrNotNumeric = errors.New("echosounder: value is not numeric")
)

// Result is the outcome of one command exchange with the instrument.
type Result int

// Command exchange outcomes. The numeric values are part of the public
// contract.
const (
	ResultNone          Result = 0
	ResultOK            Result = 1
	ResultArgumentError Result = 2
	ResultCommandError  Result = 3
	ResultTimeout       Result = -2
)

var resultDesc = map[Result]string{
	ResultNone:          "none",
	ResultOK:            "ok",
	ResultArgumentError: "invalid argument",
	ResultCommandError:  "invalid command",
	ResultTimeout:       "timeout",
}

func (r Result) String() string {
	if s, ok := resultDesc[r]; ok {
		return s
	}
	return "unknown"
}

// OK reports whether the instrument acknowledged the command.
func (r Result) OK() bool { return r == ResultOK }

// Err returns the sentinel error matching a failed outcome, or nil for
// ResultOK and ResultNone.
func (r Result) Err() error {
	switch r {
	case ResultArgumentError:
		return ErrArgument
	case ResultCommandError:
		return ErrCommand
	case ResultTimeout:
		return ErrTimeout
	}
	return nil
}
