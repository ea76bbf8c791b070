// Copyright (c) 2024 The echosounder developers. All rights reserved.
// Project site: https://github.com/gotmc/echosounder
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package echosounder

import (
	"fmt"
	"strings"

	"github.com/gotmc/query"
	"go.uber.org/multierr"
)

// GetValue returns the cached value of id, or an empty string if the value
// has never been read from or acknowledged by the instrument.
func (e *Engine) GetValue(id ParameterID) string {
	v, _ := e.settings.Load(id)
	return v
}

// Value returns the cached value of id and whether there is one.
func (e *Engine) Value(id ParameterID) (Value, bool) {
	v, ok := e.settings.Load(id)
	return NewValue(v), ok
}

// SetValue sends value as the argument of id's command. The cache is
// updated only when the instrument acknowledges the command.
func (e *Engine) SetValue(id ParameterID, value string) (Result, error) {
	r, _, err := e.exchange(id, value)
	if r.OK() {
		e.settings.Store(id, value)
	}
	return r, err
}

// Settings returns a snapshot of the settings cache.
func (e *Engine) Settings() map[ParameterID]string {
	snap := make(map[ParameterID]string, e.settings.Size())
	e.settings.Range(func(id ParameterID, v string) bool {
		snap[id] = v
		return true
	})
	return snap
}

// RefreshFromDevice sends #info and stores every value found in the
// instrument's self-report. Parameters missing from the report keep their
// previous value.
func (e *Engine) RefreshFromDevice() (Result, error) {
	r, resp, err := e.exchange(IDInfo, "")
	if err != nil || !r.OK() {
		return r, err
	}
	n := e.parseReport(resp)
	e.log.Debug("echosounder settings refreshed", "values", n)
	return r, nil
}

// parseReport stores the first capture group of the first report line
// matching each reported parameter's pattern and returns the number of
// values stored.
func (e *Engine) parseReport(report string) int {
	lines := reportLines(report)
	stored := 0
	for _, id := range e.table.ids {
		d := e.table.cmds[id]
		if !d.Reported() {
			continue
		}
		for _, line := range lines {
			if v, ok := d.match(line); ok {
				e.settings.Store(id, v)
				stored++
				break
			}
		}
	}
	return stored
}

func reportLines(report string) []string {
	lines := strings.Split(report, "\n")
	for i, line := range lines {
		lines[i] = strings.Map(func(r rune) rune {
			if r == '\r' || r == '\n' {
				return -1
			}
			return r
		}, line)
	}
	return lines
}

// PushToDevice replays every cached value of a settable parameter onto the
// instrument, in parameter order. It continues past failures and returns
// them combined.
func (e *Engine) PushToDevice() error {
	var errs error
	for _, id := range e.table.ids {
		v, ok := e.settings.Load(id)
		if !ok || !e.table.cmds[id].Settable() {
			continue
		}
		r, err := e.SetValue(id, v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		if !r.OK() {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", id, r.Err()))
		}
	}
	return errs
}

// Query returns the cached value of the parameter whose command keyword is
// kw, such as "#range". It lets the engine serve as a query.Querier.
func (e *Engine) Query(kw string) (string, error) {
	kw = strings.TrimSpace(kw)
	id, ok := e.table.LookupKeyword(kw)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedParameter, kw)
	}
	v, ok := e.settings.Load(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoValue, id)
	}
	return v, nil
}

func (e *Engine) keyword(id ParameterID) (string, error) {
	d, ok := e.table.Lookup(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedParameter, id)
	}
	return d.Keyword, nil
}

// Int returns the cached value of id as an integer.
func (e *Engine) Int(id ParameterID) (int, error) {
	kw, err := e.keyword(id)
	if err != nil {
		return 0, err
	}
	return query.Int(e, kw)
}

// Float returns the cached value of id as a floating point number.
func (e *Engine) Float(id ParameterID) (float64, error) {
	kw, err := e.keyword(id)
	if err != nil {
		return 0, err
	}
	return query.Float64(e, kw)
}

// Bool returns the cached value of an on/off parameter such as #nmeadbt.
func (e *Engine) Bool(id ParameterID) (bool, error) {
	kw, err := e.keyword(id)
	if err != nil {
		return false, err
	}
	return query.Bool(e, kw)
}
