// Copyright (c) 2024 The echosounder developers. All rights reserved.
// Project site: https://github.com/gotmc/echosounder
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package echosounder

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// singleReport is a #info self-report of a single frequency unit.
const singleReport = "#info\r\n" +
	" Echosounder single frequency\r\n" +
	" S/W Ver: 1.05 build 2024\r\n" +
	" - #range    [ 10000 mm ]  max range\r\n" +
	" - #interval [ 0.1 sec ]\r\n" +
	" - #txlength [ 50 uks ]\r\n" +
	" - #gain     [ -3.5 dB ]\r\n" +
	" - #tvgmode  [ 1 ]\r\n" +
	" - #tvgabs   [ 0.140 dB/m ]\r\n" +
	" - #tvgsprd  [ 15.0 ]\r\n" +
	" - #sound    [ 1500 mps ]\r\n" +
	" - #deadzone [ 300 mm ]\r\n" +
	" - #threshold [ 10 % ]\r\n" +
	" - #offset   [ 0 mm ]\r\n" +
	" - #medianflt [ 2 ]\r\n" +
	" - #movavgflt [ 1 ]\r\n" +
	" - #outrate  [ 0.5 sec ]\r\n" +
	" - #nmeadbt  [ 1 ]\r\n" +
	" - #nmeadpt  [ 0 ]\r\n" +
	" - #nmeadptoff [ -1.25 m ]\r\n" +
	" - #nmeadpzero [ 1 ]\r\n" +
	" - #nmeamtw  [ 1 ]\r\n" +
	" - #altprec  [ 3 ]\r\n" +
	" - #nmeaxdr  [ 0 ]\r\n" +
	" - #nmeaema  [ 1 ]\r\n" +
	" - #nmeazda  [ 0 ]\r\n" +
	" - #output   [ 3 ]\r\n" +
	" - #time     [ 1700000000 ]\r\n" +
	" - #syncextern [ 0 ]\r\n" +
	" - #syncextmod [ 1 ]\r\n" +
	" - #syncoutpol [ 1 ]\r\n" +
	"OK\r\n"

// simInstrument is an in-memory echosounder. It answers command lines the
// way the firmware does: every reply ends in a terminal line followed by the
// '>' prompt.
type simInstrument struct {
	mu      sync.Mutex
	table   *CommandTable
	out     bytes.Buffer
	line    []byte
	lines   []string // command lines received, bare carriage returns excluded
	crs     int      // bare carriage returns received
	resets  int
	closed  bool
	running bool

	silent  bool              // never answers
	mute    bool              // answers carriage returns only
	report  string            // #info reply
	replies map[string]string // keyword -> terminal line overriding "OK"
	values  map[string]string // keyword -> last accepted argument
}

func newSim(table *CommandTable) *simInstrument {
	return &simInstrument{
		table:   table,
		report:  singleReport,
		replies: make(map[string]string),
		values:  make(map[string]string),
	}
}

func (s *simInstrument) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range p {
		if b != '\r' {
			s.line = append(s.line, b)
			continue
		}
		s.handle(string(s.line))
		s.line = s.line[:0]
	}
	return len(p), nil
}

func (s *simInstrument) handle(line string) {
	if line == "" {
		s.crs++
		if s.silent {
			return
		}
		s.running = false
		s.out.WriteString("\r\n>")
		return
	}
	s.lines = append(s.lines, line)
	if s.silent || s.mute {
		return
	}

	kw, arg, _ := strings.Cut(line, " ")
	s.out.WriteString(line + "\r\n")
	if reply, ok := s.replies[kw]; ok {
		s.out.WriteString(reply + "\r\n>")
		return
	}
	switch kw {
	case probeKeyword:
		s.out.WriteString(" 1500 mps\r\nOK\r\n>")
		return
	case "#info":
		s.out.WriteString(s.report + ">")
		return
	case "#go":
		s.running = true
		s.out.WriteString("OK go\r\n>")
		return
	}
	if _, ok := s.table.LookupKeyword(kw); !ok {
		s.out.WriteString("Invalid command\r\n>")
		return
	}
	s.values[kw] = arg
	s.out.WriteString("OK\r\n>")
}

// Read returns at most what is pending, pausing briefly when there is
// nothing, like a serial port with a short read timeout.
func (s *simInstrument) Read(p []byte) (int, error) {
	s.mu.Lock()
	if s.out.Len() == 0 {
		s.mu.Unlock()
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	defer s.mu.Unlock()
	return s.out.Read(p)
}

func (s *simInstrument) ResetInputBuffer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	s.out.Reset()
	return nil
}

func (s *simInstrument) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// emit queues raw instrument output, e.g. NMEA sentences while running.
func (s *simInstrument) emit(data string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.WriteString(data)
}

func (s *simInstrument) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func (s *simInstrument) carriageReturns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.crs
}

// scriptedTransport replays fixed reply bytes regardless of what is written.
type scriptedTransport struct {
	reply   *bytes.Reader
	written bytes.Buffer
}

func newScripted(reply string) *scriptedTransport {
	return &scriptedTransport{reply: bytes.NewReader([]byte(reply))}
}

func (s *scriptedTransport) Read(p []byte) (int, error) {
	if s.reply.Len() == 0 {
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	return s.reply.Read(p)
}

func (s *scriptedTransport) Write(p []byte) (int, error) { return s.written.Write(p) }

func (s *scriptedTransport) ResetInputBuffer() error { return nil }

// fastOptions shortens every protocol timeout for tests.
func fastOptions() []Option {
	return []Option{
		WithResponseTimeout(80 * time.Millisecond),
		WithPromptTimeout(30 * time.Millisecond),
		WithDetectPromptTimeout(30 * time.Millisecond),
		WithCarriageReturnDelay(time.Millisecond),
		WithDetectRetries(3),
	}
}

// newTestEngine creates an engine on tr with short timeouts.
func newTestEngine(t *testing.T, tr Transport, table *CommandTable, opts ...Option) *Engine {
	t.Helper()

	e, err := New(tr, table, append(fastOptions(), opts...)...)
	require.NoError(t, err)

	return e
}

// recordingObserver keeps every notification.
type recordingObserver struct {
	exchanges []string
	detects   []bool
	states    []State
}

func (o *recordingObserver) ObserveExchange(keyword string, r Result, _ time.Duration) {
	o.exchanges = append(o.exchanges, keyword+":"+r.String())
}

func (o *recordingObserver) ObserveDetect(_ int, ok bool) { o.detects = append(o.detects, ok) }

func (o *recordingObserver) ObserveState(s State) { o.states = append(o.states, s) }
