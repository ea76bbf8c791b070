// Copyright (c) 2024 The echosounder developers. All rights reserved.
// Project site: https://github.com/gotmc/echosounder
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package echosounder

import (
	"bytes"
	"errors"
	"io"
	"time"
)

// signal is a terminal reply recognized by the response classifier.
type signal int

const (
	signalTimeout signal = iota
	signalIdle
	signalRunning
	signalCommandError
	signalArgumentError
)

// Terminal byte sequences ending every command reply.
var terminators = [...]struct {
	token  []byte
	signal signal
}{
	{[]byte("OK\r\n"), signalIdle},
	{[]byte("OK go\r\n"), signalRunning},
	{[]byte("Invalid command\r\n"), signalCommandError},
	{[]byte("Invalid argument\r\n"), signalArgumentError},
}

// promptMarker is sent by the instrument when it is ready for a command.
const promptMarker = '>'

// windowSize is the length of the longest terminator.
const windowSize = len("Invalid argument\r\n")

// result maps a terminal signal onto the public outcome.
func (s signal) result() Result {
	switch s {
	case signalIdle, signalRunning:
		return ResultOK
	case signalArgumentError:
		return ResultArgumentError
	case signalCommandError:
		return ResultCommandError
	}
	return ResultTimeout
}

// window is a fixed-size ring buffer holding the trailing bytes of a reply.
type window struct {
	buf [windowSize]byte
	pos int // index the next byte is written to
	n   int // number of valid bytes, at most windowSize
}

func (w *window) push(b byte) {
	w.buf[w.pos] = b
	w.pos = (w.pos + 1) % windowSize
	if w.n < windowSize {
		w.n++
	}
}

// endsWith compares tok against the newest bytes, newest first.
func (w *window) endsWith(tok []byte) bool {
	if len(tok) > w.n {
		return false
	}
	idx := w.pos
	for i := len(tok) - 1; i >= 0; i-- {
		idx--
		if idx < 0 {
			idx = windowSize - 1
		}
		if w.buf[idx] != tok[i] {
			return false
		}
	}
	return true
}

// classifier recognizes the terminal replies in a byte stream one byte at a
// time and keeps every byte it sees.
type classifier struct {
	win  window
	resp bytes.Buffer
}

// feed consumes one byte and reports the terminal signal it completes, if
// any.
func (c *classifier) feed(b byte) (signal, bool) {
	c.win.push(b)
	c.resp.WriteByte(b)
	for _, t := range terminators {
		if c.win.endsWith(t.token) {
			return t.signal, true
		}
	}
	return signalTimeout, false
}

// readByte reads at most one byte from the transport. A transport reporting
// io.EOF is treated like one that timed out without data.
func (e *Engine) readByte() (byte, bool, error) {
	var b [1]byte
	n, err := e.rw.Read(b[:])
	if n > 0 {
		return b[0], true, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, false, err
	}
	return 0, false, nil
}

// readResponse consumes bytes until a terminal reply is recognized or the
// response timeout elapses. It returns the signal and all bytes read.
func (e *Engine) readResponse() (signal, string, error) {
	var c classifier
	start := time.Now()
	for {
		b, ok, err := e.readByte()
		if err != nil {
			return signalTimeout, c.resp.String(), err
		}
		if ok {
			if sig, done := c.feed(b); done {
				return sig, c.resp.String(), nil
			}
		}
		if time.Since(start) > e.responseTimeout {
			return signalTimeout, c.resp.String(), nil
		}
	}
}

// waitPrompt consumes bytes until the prompt marker is seen or timeout
// elapses.
func (e *Engine) waitPrompt(timeout time.Duration) (bool, error) {
	start := time.Now()
	for {
		b, ok, err := e.readByte()
		if err != nil {
			return false, err
		}
		if ok && b == promptMarker {
			return true, nil
		}
		if time.Since(start) > timeout {
			return false, nil
		}
	}
}
