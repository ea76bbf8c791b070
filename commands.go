// Copyright (c) 2024 The echosounder developers. All rights reserved.
// Project site: https://github.com/gotmc/echosounder
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package echosounder

import (
	"fmt"
	"regexp"
	"sort"
)

// ParameterID identifies one configurable echosounder property or action.
// Identifiers are shared by all instrument variants; a variant's CommandTable
// omits the identifiers it does not support.
type ParameterID int

// Available parameter identifiers. The numeric values are stable.
const (
	IDInfo ParameterID = iota
	IDGo
	IDRange
	IDRangeH
	IDRangeL
	IDInterval
	IDPingonce
	IDTxLength
	IDTxLengthH
	IDTxLengthL
	IDTxPower
	IDGain
	IDGainH
	IDGainL
	IDTVGMode
	IDTVGAbs
	IDTVGAbsH
	IDTVGAbsL
	IDTVGSprd
	IDTVGSprdH
	IDTVGSprdL
	IDAttn
	IDAttnH
	IDAttnL
	IDSound
	IDDeadzone
	IDDeadzoneH
	IDDeadzoneL
	IDThreshold
	IDThresholdH
	IDThresholdL
	IDOffset
	IDOffsetH
	IDOffsetL
	IDMedianFlt
	IDSMAFlt
	IDNMEADBT
	IDNMEADPT
	IDNMEAMTW
	IDNMEAXDR
	IDNMEAEMA
	IDNMEAZDA
	IDOutrate
	IDNMEADPTOffset
	IDNMEADPTZero
	IDOutput
	IDAltprec
	IDSamplFreq
	IDTime
	IDSyncExtern
	IDSyncExternMode
	IDSyncOutPolarity
	IDAnlgMode
	IDAnlgRate
	IDAnlgMaxOut
	IDVersion

	IDSetHighFreq
	IDSetLowFreq
	IDSetDualFreq

	IDGetHighFreq
	IDGetLowFreq
	IDGetWorkFreq
)

var parameterNames = map[ParameterID]string{
	IDInfo:            "Info",
	IDGo:              "Go",
	IDRange:           "Range",
	IDRangeH:          "RangeH",
	IDRangeL:          "RangeL",
	IDInterval:        "Interval",
	IDPingonce:        "Pingonce",
	IDTxLength:        "TxLength",
	IDTxLengthH:       "TxLengthH",
	IDTxLengthL:       "TxLengthL",
	IDTxPower:         "TxPower",
	IDGain:            "Gain",
	IDGainH:           "GainH",
	IDGainL:           "GainL",
	IDTVGMode:         "TVGMode",
	IDTVGAbs:          "TVGAbs",
	IDTVGAbsH:         "TVGAbsH",
	IDTVGAbsL:         "TVGAbsL",
	IDTVGSprd:         "TVGSprd",
	IDTVGSprdH:        "TVGSprdH",
	IDTVGSprdL:        "TVGSprdL",
	IDAttn:            "Attn",
	IDAttnH:           "AttnH",
	IDAttnL:           "AttnL",
	IDSound:           "Sound",
	IDDeadzone:        "Deadzone",
	IDDeadzoneH:       "DeadzoneH",
	IDDeadzoneL:       "DeadzoneL",
	IDThreshold:       "Threshold",
	IDThresholdH:      "ThresholdH",
	IDThresholdL:      "ThresholdL",
	IDOffset:          "Offset",
	IDOffsetH:         "OffsetH",
	IDOffsetL:         "OffsetL",
	IDMedianFlt:       "MedianFlt",
	IDSMAFlt:          "SMAFlt",
	IDNMEADBT:         "NMEADBT",
	IDNMEADPT:         "NMEADPT",
	IDNMEAMTW:         "NMEAMTW",
	IDNMEAXDR:         "NMEAXDR",
	IDNMEAEMA:         "NMEAEMA",
	IDNMEAZDA:         "NMEAZDA",
	IDOutrate:         "Outrate",
	IDNMEADPTOffset:   "NMEADPTOffset",
	IDNMEADPTZero:     "NMEADPTZero",
	IDOutput:          "Output",
	IDAltprec:         "Altprec",
	IDSamplFreq:       "SamplFreq",
	IDTime:            "Time",
	IDSyncExtern:      "SyncExtern",
	IDSyncExternMode:  "SyncExternMode",
	IDSyncOutPolarity: "SyncOutPolarity",
	IDAnlgMode:        "AnlgMode",
	IDAnlgRate:        "AnlgRate",
	IDAnlgMaxOut:      "AnlgMaxOut",
	IDVersion:         "Version",
	IDSetHighFreq:     "SetHighFreq",
	IDSetLowFreq:      "SetLowFreq",
	IDSetDualFreq:     "SetDualFreq",
	IDGetHighFreq:     "GetHighFreq",
	IDGetLowFreq:      "GetLowFreq",
	IDGetWorkFreq:     "GetWorkFreq",
}

func (id ParameterID) String() string {
	if s, ok := parameterNames[id]; ok {
		return s
	}
	return fmt.Sprintf("ParameterID(%d)", int(id))
}

// CommandDescriptor describes how one parameter is set on the instrument and
// how its value is found in the instrument's #info self-report.
type CommandDescriptor struct {
	Keyword         string // e.g. "#range"
	DefaultValue    string // factory default, empty for actions and read-only values
	ResponsePattern string // whole-line pattern whose first group is the value; empty if not reported

	re *regexp.Regexp
}

// Reported reports whether the parameter's value can be extracted from the
// #info self-report.
func (d CommandDescriptor) Reported() bool {
	return d.re != nil
}

// Settable reports whether the parameter takes a value argument. Actions
// (#go, #setfh) and read-only reports (#version, #getf) have no default.
func (d CommandDescriptor) Settable() bool {
	return d.DefaultValue != ""
}

// match returns the first capture group of line if line matches the
// descriptor's pattern in full.
func (d CommandDescriptor) match(line string) (string, bool) {
	if d.re == nil {
		return "", false
	}
	m := d.re.FindStringSubmatch(line)
	if m == nil || len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// CommandTable maps parameter identifiers to their command descriptors for
// one instrument variant. A CommandTable is immutable once constructed and
// may be shared by any number of engines.
type CommandTable struct {
	name      string
	cmds      map[ParameterID]CommandDescriptor
	ids       []ParameterID
	byKeyword map[string]ParameterID
}

// NewCommandTable builds a command table from the given descriptors. Each
// non-empty response pattern is compiled as a whole-line match.
func NewCommandTable(name string, cmds map[ParameterID]CommandDescriptor) (*CommandTable, error) {
	t := &CommandTable{
		name:      name,
		cmds:      make(map[ParameterID]CommandDescriptor, len(cmds)),
		ids:       make([]ParameterID, 0, len(cmds)),
		byKeyword: make(map[string]ParameterID, len(cmds)),
	}
	for id, d := range cmds {
		if d.Keyword == "" {
			return nil, fmt.Errorf("command table %s: %s has no keyword", name, id)
		}
		if d.ResponsePattern != "" {
			re, err := regexp.Compile("^(?:" + d.ResponsePattern + ")$")
			if err != nil {
				return nil, fmt.Errorf("command table %s: %s pattern: %w", name, id, err)
			}
			d.re = re
		}
		t.cmds[id] = d
		t.ids = append(t.ids, id)
		t.byKeyword[d.Keyword] = id
	}
	sort.Slice(t.ids, func(i, j int) bool { return t.ids[i] < t.ids[j] })
	return t, nil
}

// MustCommandTable is like NewCommandTable but panics on error.
func MustCommandTable(name string, cmds map[ParameterID]CommandDescriptor) *CommandTable {
	t, err := NewCommandTable(name, cmds)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the variant name of the table.
func (t *CommandTable) Name() string { return t.name }

// Lookup returns the descriptor for id.
func (t *CommandTable) Lookup(id ParameterID) (CommandDescriptor, bool) {
	d, ok := t.cmds[id]
	return d, ok
}

// LookupKeyword returns the parameter identifier bound to a command keyword.
func (t *CommandTable) LookupKeyword(keyword string) (ParameterID, bool) {
	id, ok := t.byKeyword[keyword]
	return id, ok
}

// IDs returns the table's parameter identifiers in ascending order.
func (t *CommandTable) IDs() []ParameterID {
	ids := make([]ParameterID, len(t.ids))
	copy(ids, t.ids)
	return ids
}

// Defaults returns the factory default value of every settable parameter.
func (t *CommandTable) Defaults() map[ParameterID]string {
	defaults := make(map[ParameterID]string)
	for _, id := range t.ids {
		if d := t.cmds[id]; d.Settable() {
			defaults[id] = d.DefaultValue
		}
	}
	return defaults
}
