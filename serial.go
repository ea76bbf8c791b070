// Copyright (c) 2024 The echosounder developers. All rights reserved.
// Project site: https://github.com/gotmc/echosounder
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package echosounder

import (
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.uber.org/multierr"
)

// Serial port defaults.
const (
	DefaultBaudRate          = 115200
	DefaultSerialReadTimeout = 100 * time.Millisecond
)

// SerialConfig describes the serial port an echosounder is attached to.
type SerialConfig struct {
	Port        string        // e.g. /dev/ttyUSB0 or COM31
	BaudRate    int           // defaults to DefaultBaudRate
	ReadTimeout time.Duration // per-read bound, defaults to DefaultSerialReadTimeout
}

// openPort is replaced in tests.
var openPort = func(name string, mode *serial.Mode) (serial.Port, error) {
	return serial.Open(name, mode)
}

// Open opens the serial port described by cfg with 8N1 framing and creates
// an engine on it. If the port cannot be opened no engine is returned. See
// New for the detection performed on the new engine.
func Open(cfg SerialConfig, table *CommandTable, opts ...Option) (*Engine, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultSerialReadTimeout
	}

	port, err := openPort(cfg.Port, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", cfg.Port, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		return nil, multierr.Append(
			fmt.Errorf("setting read timeout on %s: %w", cfg.Port, err),
			port.Close(),
		)
	}

	e, err := New(port, table, opts...)
	if err != nil {
		return nil, multierr.Append(err, port.Close())
	}
	return e, nil
}
