// Copyright (c) 2024 The echosounder developers. All rights reserved.
// Project site: https://github.com/gotmc/echosounder
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package echosounder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTables(t *testing.T) {
	single := SingleFrequencyCommands()
	dual := DualFrequencyCommands()

	assert.Equal(t, "single", single.Name())
	assert.Equal(t, "dual", dual.Name())
	assert.Len(t, single.IDs(), 31)
	assert.Len(t, dual.IDs(), 62)

	for _, id := range single.IDs() {
		_, ok := dual.Lookup(id)
		assert.True(t, ok, "%s missing from dual table", id)
	}

	_, ok := single.Lookup(IDGainH)
	assert.False(t, ok)
}

func TestCommandTable_Keywords(t *testing.T) {
	testCases := []struct {
		table   *CommandTable
		id      ParameterID
		keyword string
	}{
		{SingleFrequencyCommands(), IDSMAFlt, "#movavgflt"},
		{SingleFrequencyCommands(), IDOutrate, "#nmearate"},
		{DualFrequencyCommands(), IDOutrate, "#outrate"},
		{DualFrequencyCommands(), IDSyncExternMode, "#syncextmod"},
		{DualFrequencyCommands(), IDAnlgMaxOut, "#anlgmax"},
		{DualFrequencyCommands(), IDGetWorkFreq, "#getf"},
	}
	for _, tc := range testCases {
		t.Run(tc.table.Name()+"/"+tc.id.String(), func(t *testing.T) {
			d, ok := tc.table.Lookup(tc.id)
			require.True(t, ok)
			assert.Equal(t, tc.keyword, d.Keyword)

			id, ok := tc.table.LookupKeyword(tc.keyword)
			require.True(t, ok)
			assert.Equal(t, tc.id, id)
		})
	}
}

func TestCommandTable_IDsOrderedAndCopied(t *testing.T) {
	table := DualFrequencyCommands()
	ids := table.IDs()
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
	ids[0] = IDGetWorkFreq
	assert.Equal(t, IDInfo, table.IDs()[0])
}

func TestCommandTable_Defaults(t *testing.T) {
	defaults := SingleFrequencyCommands().Defaults()

	assert.Equal(t, "50000", defaults[IDRange])
	assert.Equal(t, "0.140", defaults[IDTVGAbs])
	assert.Equal(t, "0.0", defaults[IDOutrate])
	assert.NotContains(t, defaults, IDInfo)
	assert.NotContains(t, defaults, IDGo)
	assert.NotContains(t, defaults, IDVersion)
	assert.Len(t, defaults, 28)
}

func TestCommandDescriptor(t *testing.T) {
	table := DualFrequencyCommands()

	d, _ := table.Lookup(IDSetHighFreq)
	assert.False(t, d.Reported())
	assert.False(t, d.Settable())

	d, _ = table.Lookup(IDGetHighFreq)
	assert.True(t, d.Reported())
	assert.False(t, d.Settable())

	d, _ = table.Lookup(IDGain)
	assert.True(t, d.Reported())
	assert.True(t, d.Settable())
}

func TestNewCommandTable_Errors(t *testing.T) {
	_, err := NewCommandTable("bad", map[ParameterID]CommandDescriptor{
		IDRange: {Keyword: "#range", ResponsePattern: `([0-9]`},
	})
	assert.Error(t, err)

	_, err = NewCommandTable("bad", map[ParameterID]CommandDescriptor{
		IDRange: {},
	})
	assert.Error(t, err)

	assert.Panics(t, func() {
		MustCommandTable("bad", map[ParameterID]CommandDescriptor{IDGo: {}})
	})
}

func TestParseVariant(t *testing.T) {
	testCases := []struct {
		given string
		want  Variant
		err   bool
	}{
		{"single", SingleFrequency, false},
		{" Dual ", DualFrequency, false},
		{"triple", "", true},
		{"", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.given, func(t *testing.T) {
			v, err := ParseVariant(tc.given)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)

			table, err := v.Table()
			require.NoError(t, err)
			assert.Equal(t, string(tc.want), table.Name())
		})
	}

	_, err := Variant("triple").Table()
	assert.Error(t, err)
}

func TestParameterIDString(t *testing.T) {
	assert.Equal(t, "NMEADPTOffset", IDNMEADPTOffset.String())
	assert.Equal(t, "GetWorkFreq", IDGetWorkFreq.String())
	assert.Equal(t, "ParameterID(99)", ParameterID(99).String())
}
