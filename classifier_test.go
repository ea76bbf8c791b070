// Copyright (c) 2024 The echosounder developers. All rights reserved.
// Project site: https://github.com/gotmc/echosounder
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package echosounder

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedAll(c *classifier, s string) (signal, bool, int) {
	for i := 0; i < len(s); i++ {
		if sig, ok := c.feed(s[i]); ok {
			return sig, true, i + 1
		}
	}
	return signalTimeout, false, len(s)
}

func TestClassifier_Terminators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  signal
	}{
		{"ok", "#range 100\r\nOK\r\n", signalIdle},
		{"ok go", "#go\r\nOK go\r\n", signalRunning},
		{"invalid command", "#bogus\r\nInvalid command\r\n", signalCommandError},
		{"invalid argument", "#gainh 14\r\nInvalid argument\r\n", signalArgumentError},
		{"bare ok", "OK\r\n", signalIdle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c classifier
			sig, ok, n := feedAll(&c, tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, sig)
			assert.Equal(t, len(tt.input), n, "must stop on the final byte")
			assert.Equal(t, tt.input, c.resp.String())
		})
	}
}

func TestClassifier_NoFalseTerminal(t *testing.T) {
	for _, input := range []string{
		"OK",
		"OK\r",
		"OK go\r",
		"Invalid argument",
		" - #range [ 100 mm ]\r\n",
		"OK\n\r",
	} {
		var c classifier
		_, ok, _ := feedAll(&c, input)
		assert.False(t, ok, "%q", input)
	}
}

func TestClassifier_WrapsAround(t *testing.T) {
	var c classifier
	noise := strings.Repeat("$SDDBT,12.1,f,3.7,M,2.0,F*1B\r\n", 7)
	_, ok, _ := feedAll(&c, noise)
	require.False(t, ok)

	sig, ok, _ := feedAll(&c, "Invalid argument\r\n")
	require.True(t, ok)
	assert.Equal(t, signalArgumentError, sig)
	assert.Equal(t, noise+"Invalid argument\r\n", c.resp.String())
}

func TestWindow_EndsWith(t *testing.T) {
	var w window
	assert.False(t, w.endsWith([]byte("OK\r\n")))
	for _, b := range []byte("xxxxxxxxxxxxxxxxxxxxxxxxxOK\r\n") {
		w.push(b)
	}
	assert.Equal(t, windowSize, w.n)
	assert.True(t, w.endsWith([]byte("OK\r\n")))
	assert.True(t, w.endsWith([]byte("\n")))
	assert.False(t, w.endsWith([]byte("OK go\r\n")))
}

func TestSignal_Result(t *testing.T) {
	assert.Equal(t, ResultOK, signalIdle.result())
	assert.Equal(t, ResultOK, signalRunning.result())
	assert.Equal(t, ResultCommandError, signalCommandError.result())
	assert.Equal(t, ResultArgumentError, signalArgumentError.result())
	assert.Equal(t, ResultTimeout, signalTimeout.result())
}

func TestReadResponse_Timeout(t *testing.T) {
	tr := newScripted("partial reply without terminator")
	e := newTestEngine(t, tr, SingleFrequencyCommands(), WithoutDetect())

	start := time.Now()
	sig, resp, err := e.readResponse()
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, signalTimeout, sig)
	assert.Equal(t, "partial reply without terminator", resp)
	assert.GreaterOrEqual(t, elapsed, e.responseTimeout)
	assert.Less(t, elapsed, e.responseTimeout+time.Second)
}

type failingReader struct{ scriptedTransport }

var errLinkDown = errors.New("link down")

func (failingReader) Read([]byte) (int, error) { return 0, errLinkDown }

func TestReadResponse_TransportError(t *testing.T) {
	tr := &failingReader{*newScripted("")}
	e := newTestEngine(t, tr, SingleFrequencyCommands(), WithoutDetect())

	_, _, err := e.readResponse()
	assert.ErrorIs(t, err, errLinkDown)

	_, err = e.waitPrompt(time.Second)
	assert.ErrorIs(t, err, errLinkDown)
}

func TestWaitPrompt(t *testing.T) {
	e := newTestEngine(t, newScripted("\r\nEchosounder ready\r\n>"), SingleFrequencyCommands(), WithoutDetect())
	seen, err := e.waitPrompt(time.Second)
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = e.waitPrompt(20 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, seen)
}
