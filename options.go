// Copyright (c) 2024 The echosounder developers. All rights reserved.
// Project site: https://github.com/gotmc/echosounder
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package echosounder

import (
	"errors"
	"fmt"
	"time"

	"github.com/gotmc/echosounder/lib/logger"
)

// Default protocol timing.
const (
	DefaultResponseTimeout     = 4000 * time.Millisecond // terminal reply
	DefaultPromptTimeout       = 1000 * time.Millisecond // prompt after a reply
	DefaultDetectPromptTimeout = 500 * time.Millisecond  // prompt during detection
	DefaultCarriageReturnDelay = 50 * time.Millisecond   // between detection carriage returns
	DefaultDetectRetries       = 10

	// MaxDetectRetries bounds WithDetectRetries.
	MaxDetectRetries = 100
)

// Option applies an option to the engine.
type Option func(*Engine) error

// WithResponseTimeout sets how long to wait for a terminal reply to a
// command.
func WithResponseTimeout(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return errors.New("echosounder: response timeout must be positive")
		}
		e.responseTimeout = d
		return nil
	}
}

// WithPromptTimeout sets how long to wait for the prompt that follows every
// command reply.
func WithPromptTimeout(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return errors.New("echosounder: prompt timeout must be positive")
		}
		e.promptTimeout = d
		return nil
	}
}

// WithDetectPromptTimeout sets how long each detection attempt waits for a
// prompt.
func WithDetectPromptTimeout(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return errors.New("echosounder: detect prompt timeout must be positive")
		}
		e.detectPromptTimeout = d
		return nil
	}
}

// WithCarriageReturnDelay sets the pause after each of the carriage returns
// sent by a detection attempt.
func WithCarriageReturnDelay(d time.Duration) Option {
	return func(e *Engine) error {
		if d < 0 {
			return errors.New("echosounder: carriage return delay must not be negative")
		}
		e.crDelay = d
		return nil
	}
}

// WithDetectRetries sets the number of detection attempts, 1 to
// MaxDetectRetries.
func WithDetectRetries(n int) Option {
	return func(e *Engine) error {
		if n < 1 || n > MaxDetectRetries {
			return fmt.Errorf("echosounder: detect retries %d out of range [1, %d]", n, MaxDetectRetries)
		}
		e.detectRetries = n
		return nil
	}
}

// WithLogger sets the logger used by the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) error {
		if l == nil {
			return errors.New("echosounder: logger must not be nil")
		}
		e.log = l
		return nil
	}
}

// WithDebug causes commands and responses to be logged.
func WithDebug() Option {
	return func(e *Engine) error {
		e.debug = true
		return nil
	}
}

// WithObserver registers an observer notified of every exchange, detection
// and state change.
func WithObserver(o Observer) Option {
	return func(e *Engine) error {
		if o == nil {
			return errors.New("echosounder: observer must not be nil")
		}
		e.observer = o
		return nil
	}
}

// WithClock sets the clock used by SetCurrentTime.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		if now == nil {
			return errors.New("echosounder: clock must not be nil")
		}
		e.now = now
		return nil
	}
}

// WithoutDetect skips the detection handshake and settings refresh New
// performs by default.
func WithoutDetect() Option {
	return func(e *Engine) error {
		e.skipDetect = true
		return nil
	}
}
