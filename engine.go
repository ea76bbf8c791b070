// Copyright (c) 2024 The echosounder developers. All rights reserved.
// Project site: https://github.com/gotmc/echosounder
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package echosounder

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/multierr"

	"github.com/gotmc/echosounder/lib/logger"
)

// Transport is the duplex byte channel to the instrument. Read must return
// within a bounded time, returning zero bytes when nothing arrived.
// ResetInputBuffer discards pending input. A go.bug.st/serial Port satisfies
// Transport.
type Transport interface {
	io.ReadWriter
	ResetInputBuffer() error
}

// State is the instrument state tracked by the engine.
type State int

// Instrument states.
const (
	Undetected State = iota
	Idle
	Running
)

var stateDesc = map[State]string{
	Undetected: "undetected",
	Idle:       "idle",
	Running:    "running",
}

func (s State) String() string {
	return stateDesc[s]
}

// Observer receives notifications of engine activity. See lib/monitor for a
// prometheus implementation.
type Observer interface {
	ObserveExchange(keyword string, r Result, d time.Duration)
	ObserveDetect(attempts int, ok bool)
	ObserveState(s State)
}

// probeKeyword is the diagnostic command detection requires an OK for.
const probeKeyword = "#speed"

// Engine drives one echosounder over a Transport: it sends commands,
// classifies replies, tracks whether the instrument is pinging and caches
// the instrument's settings.
//
// Every method performs its own I/O and blocks until a reply or a timeout.
// Calls must be serialized by the caller; GetValue and Settings may be used
// from any goroutine.
type Engine struct {
	rw       Transport
	table    *CommandTable
	settings *xsync.MapOf[ParameterID, string]
	state    State

	log      logger.Logger
	debug    bool
	observer Observer
	now      func() time.Time

	responseTimeout     time.Duration
	promptTimeout       time.Duration
	detectPromptTimeout time.Duration
	crDelay             time.Duration
	detectRetries       int
	skipDetect          bool
}

// New creates an engine driving the instrument on rw using the command
// table of its variant. Unless WithoutDetect is given, New runs the
// detection handshake and, if the instrument answers, reads its settings.
// An instrument that does not answer is not an error; IsDetected reports
// false and Detect may be retried.
func New(rw Transport, table *CommandTable, opts ...Option) (*Engine, error) {
	if rw == nil {
		return nil, errors.New("echosounder: nil transport")
	}
	if table == nil {
		return nil, errors.New("echosounder: nil command table")
	}
	e := Engine{
		rw:                  rw,
		table:               table,
		settings:            xsync.NewMapOf[ParameterID, string](),
		state:               Undetected,
		log:                 logger.GetLogger(),
		observer:            nopObserver{},
		now:                 time.Now,
		responseTimeout:     DefaultResponseTimeout,
		promptTimeout:       DefaultPromptTimeout,
		detectPromptTimeout: DefaultDetectPromptTimeout,
		crDelay:             DefaultCarriageReturnDelay,
		detectRetries:       DefaultDetectRetries,
	}

	// Apply options using the functional option pattern.
	for _, opt := range opts {
		if err := opt(&e); err != nil {
			return nil, err
		}
	}
	e.log = e.log.With("variant", table.Name())

	if e.skipDetect {
		return &e, nil
	}
	if err := e.Detect(); err != nil {
		if !errors.Is(err, ErrDetectionFailed) {
			return nil, err
		}
		e.log.Warn("echosounder not detected", "error", err)
		return &e, nil
	}
	if r, err := e.RefreshFromDevice(); err != nil || !r.OK() {
		e.log.Warn("reading echosounder settings failed", "result", r, "error", err)
	}
	return &e, nil
}

// Table returns the engine's command table.
func (e *Engine) Table() *CommandTable { return e.table }

// State returns the current instrument state.
func (e *Engine) State() State { return e.state }

// IsDetected reports whether the instrument has been detected.
func (e *Engine) IsDetected() bool { return e.state != Undetected }

// IsRunning reports whether the instrument is pinging.
func (e *Engine) IsRunning() bool { return e.state == Running }

func (e *Engine) setState(s State) {
	if e.state == s {
		return
	}
	e.log.Debug("echosounder state change", "from", e.state, "to", s)
	e.state = s
	e.observer.ObserveState(s)
}

// SendCommand sends the command for id, with arg appended when non-empty,
// and returns the instrument's reply outcome. A running instrument is
// stopped before the command and restarted afterwards. The returned error
// reports transport failures and parameters missing from the command table;
// protocol failures are reported through the Result.
func (e *Engine) SendCommand(id ParameterID, arg string) (Result, error) {
	r, _, err := e.exchange(id, arg)
	return r, err
}

// exchange is SendCommand, also returning the text of the reply.
func (e *Engine) exchange(id ParameterID, arg string) (Result, string, error) {
	d, ok := e.table.Lookup(id)
	if !ok {
		return ResultNone, "", fmt.Errorf("%w: %s", ErrUnsupportedParameter, id)
	}

	wasRunning := e.state == Running && id != IDGo
	if wasRunning {
		if err := e.Stop(); err != nil {
			e.log.Warn("stopping echosounder before command failed", "keyword", d.Keyword, "error", err)
		}
	}

	r, resp, err := e.transact(d.Keyword, arg)
	if err != nil {
		return r, resp, err
	}

	if wasRunning {
		if serr := e.Start(); serr != nil {
			return r, resp, fmt.Errorf("resuming echosounder after %s: %w", d.Keyword, serr)
		}
	}
	return r, resp, nil
}

// transact writes one command line, classifies the reply and resynchronizes
// with the prompt.
func (e *Engine) transact(keyword, arg string) (Result, string, error) {
	line := keyword
	if arg != "" {
		line += " " + arg
	}
	line += "\r"
	if e.debug {
		e.log.Info("cmd", "line", strconv.Quote(line))
	}

	start := time.Now()
	if _, err := io.WriteString(e.rw, line); err != nil {
		e.log.Error("error writing command", "keyword", keyword, "error", err)
		return ResultNone, "", fmt.Errorf("error writing command %s: %w", keyword, err)
	}

	sig, resp, err := e.readResponse()
	if err != nil {
		return ResultNone, resp, fmt.Errorf("error reading reply to %s: %w", keyword, err)
	}
	if _, err := e.waitPrompt(e.promptTimeout); err != nil {
		return ResultNone, resp, fmt.Errorf("error reading prompt after %s: %w", keyword, err)
	}

	r := e.applySignal(sig)
	if e.debug {
		e.log.Info("reply", "keyword", keyword, "result", r, "data", strconv.Quote(resp))
	} else if !r.OK() {
		e.log.Debug("command failed", "keyword", keyword, "result", r)
	}
	e.observer.ObserveExchange(keyword, r, time.Since(start))
	return r, resp, nil
}

// applySignal updates the running state of a detected instrument from a
// success reply.
func (e *Engine) applySignal(sig signal) Result {
	if e.state != Undetected {
		switch sig {
		case signalIdle:
			e.setState(Idle)
		case signalRunning:
			e.setState(Running)
		}
	}
	return sig.result()
}

// Start makes an idle instrument start pinging. It does nothing unless the
// instrument is detected and idle.
func (e *Engine) Start() error {
	if e.state != Idle {
		return nil
	}
	r, err := e.SendCommand(IDGo, "")
	if err != nil {
		return err
	}
	if !r.OK() {
		return fmt.Errorf("start: %w", r.Err())
	}
	return nil
}

// Stop makes a running instrument stop pinging by repeating the detection
// handshake. The instrument is considered idle afterwards even if the
// handshake failed, in which case the failure is returned. Stop does nothing
// unless the instrument is running.
func (e *Engine) Stop() error {
	if e.state != Running {
		return nil
	}
	err := e.handshake()
	e.setState(Idle)
	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

// Detect runs the detection handshake: each attempt sends five carriage
// returns and waits for a prompt, then requires an OK reply to the #speed
// probe. On success the instrument is idle; on failure it is undetected and
// the returned error wraps ErrDetectionFailed.
func (e *Engine) Detect() error {
	if err := e.handshake(); err != nil {
		if errors.Is(err, ErrDetectionFailed) {
			e.setState(Undetected)
		}
		return err
	}
	e.setState(Idle)
	return nil
}

func (e *Engine) handshake() error {
	for attempt := 1; attempt <= e.detectRetries; attempt++ {
		for i := 0; i < 5; i++ {
			if _, err := io.WriteString(e.rw, "\r"); err != nil {
				return fmt.Errorf("error writing detection break: %w", err)
			}
			time.Sleep(e.crDelay)
		}

		seen, err := e.waitPrompt(e.detectPromptTimeout)
		if err != nil {
			return fmt.Errorf("error reading detection prompt: %w", err)
		}
		if !seen {
			e.log.Debug("no prompt from echosounder", "attempt", attempt)
			continue
		}

		if err := e.rw.ResetInputBuffer(); err != nil {
			return fmt.Errorf("error flushing input: %w", err)
		}
		if _, err := io.WriteString(e.rw, probeKeyword+"\r"); err != nil {
			return fmt.Errorf("error writing %s probe: %w", probeKeyword, err)
		}
		sig, _, err := e.readResponse()
		if err != nil {
			return fmt.Errorf("error reading %s reply: %w", probeKeyword, err)
		}
		if r := sig.result(); !r.OK() {
			e.observer.ObserveDetect(attempt, false)
			return fmt.Errorf("%w: %s probe returned %s", ErrDetectionFailed, probeKeyword, r)
		}
		if _, err := e.waitPrompt(e.promptTimeout); err != nil {
			return fmt.Errorf("error reading prompt after %s: %w", probeKeyword, err)
		}
		e.log.Debug("echosounder detected", "attempt", attempt)
		e.observer.ObserveDetect(attempt, true)
		return nil
	}
	e.observer.ObserveDetect(e.detectRetries, false)
	return fmt.Errorf("%w: no prompt after %d attempts", ErrDetectionFailed, e.detectRetries)
}

// SetCurrentTime sets the instrument clock to the host's UTC time in epoch
// seconds.
func (e *Engine) SetCurrentTime() (Result, error) {
	return e.SetValue(IDTime, strconv.FormatInt(e.now().UTC().Unix(), 10))
}

// ReadRawData reads up to max bytes of whatever the instrument sends, which
// while running is its NMEA output. It must not be called while a command
// is in progress.
func (e *Engine) ReadRawData(max int) ([]byte, error) {
	buf := make([]byte, max)
	n, err := e.rw.Read(buf)
	return buf[:n], err
}

// Read reads raw instrument output into p, bypassing the command protocol.
func (e *Engine) Read(p []byte) (n int, err error) {
	return e.rw.Read(p)
}

// Close discards unread input and closes the transport if it is an
// io.Closer. The instrument is left in its current state.
func (e *Engine) Close() error {
	err := e.rw.ResetInputBuffer()
	if c, ok := e.rw.(io.Closer); ok {
		err = multierr.Append(err, c.Close())
	}
	return err
}

type nopObserver struct{}

func (nopObserver) ObserveExchange(string, Result, time.Duration) {}
func (nopObserver) ObserveDetect(int, bool)                       {}
func (nopObserver) ObserveState(State)                            {}
