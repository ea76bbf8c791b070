// Copyright (c) 2024 The echosounder developers. All rights reserved.
// Project site: https://github.com/gotmc/echosounder
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package echosounder

import (
	"fmt"
	"strings"
)

// Variant names a family of instruments sharing one command table.
type Variant string

// Supported instrument variants.
const (
	SingleFrequency Variant = "single"
	DualFrequency   Variant = "dual"
)

// ParseVariant parses a variant name, case-insensitively.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(s))); v {
	case SingleFrequency, DualFrequency:
		return v, nil
	}
	return "", fmt.Errorf("unknown echosounder variant %q (want single or dual)", s)
}

// Table builds the command table for the variant.
func (v Variant) Table() (*CommandTable, error) {
	switch v {
	case SingleFrequency:
		return SingleFrequencyCommands(), nil
	case DualFrequency:
		return DualFrequencyCommands(), nil
	}
	return nil, fmt.Errorf("unknown echosounder variant %q", string(v))
}

// Response patterns shared by several keywords.
const (
	patUnsigned = `([0-9]{1,})`
	patFloat    = `([+-]?([0-9]*[.])?[0-9]+)`
	patBit      = `([01]{1})`
)

func reportLine(keyword, value, unit string) string {
	if unit != "" {
		unit = " " + unit
	}
	return ` - ` + keyword + `[ ]{0,}\[[ ]{0,}` + value + unit + `[ ]{0,}\].*`
}

// SingleFrequencyCommands returns the command table of single frequency
// echosounders.
func SingleFrequencyCommands() *CommandTable {
	return MustCommandTable(string(SingleFrequency), map[ParameterID]CommandDescriptor{
		IDInfo:            {Keyword: "#info"},
		IDRange:           {Keyword: "#range", DefaultValue: "50000", ResponsePattern: reportLine("#range", patUnsigned, "mm")},
		IDInterval:        {Keyword: "#interval", DefaultValue: "0.1", ResponsePattern: reportLine("#interval", `(([0-9]*[.])?[0-9]+)`, "sec")},
		IDTxLength:        {Keyword: "#txlength", DefaultValue: "50", ResponsePattern: reportLine("#txlength", patUnsigned, "uks")},
		IDGain:            {Keyword: "#gain", DefaultValue: "0.0", ResponsePattern: reportLine("#gain", patFloat, "dB")},
		IDTVGMode:         {Keyword: "#tvgmode", DefaultValue: "1", ResponsePattern: reportLine("#tvgmode", `([0-4]{1})`, "")},
		IDTVGAbs:          {Keyword: "#tvgabs", DefaultValue: "0.140", ResponsePattern: ` - #tvgabs[ ]{0,}\[[ ]{0,}` + patFloat + ` dB\/m[ ]{0,}\].*`},
		IDTVGSprd:         {Keyword: "#tvgsprd", DefaultValue: "15.0", ResponsePattern: reportLine("#tvgsprd", patFloat, "")},
		IDSound:           {Keyword: "#sound", DefaultValue: "1500", ResponsePattern: reportLine("#sound", patUnsigned, "mps")},
		IDDeadzone:        {Keyword: "#deadzone", DefaultValue: "300", ResponsePattern: reportLine("#deadzone", patUnsigned, "mm")},
		IDThreshold:       {Keyword: "#threshold", DefaultValue: "10", ResponsePattern: reportLine("#threshold", patUnsigned, "%")},
		IDOffset:          {Keyword: "#offset", DefaultValue: "0", ResponsePattern: reportLine("#offset", patUnsigned, "mm")},
		IDMedianFlt:       {Keyword: "#medianflt", DefaultValue: "2", ResponsePattern: reportLine("#medianflt", `([0-9]{1,3})`, "")},
		IDSMAFlt:          {Keyword: "#movavgflt", DefaultValue: "1", ResponsePattern: reportLine("#movavgflt", `([0-9]{1,3})`, "")},
		IDOutrate:         {Keyword: "#nmearate", DefaultValue: "0.0", ResponsePattern: reportLine("#outrate", patFloat, "sec")},
		IDNMEADBT:         {Keyword: "#nmeadbt", DefaultValue: "1", ResponsePattern: reportLine("#nmeadbt", patBit, "")},
		IDNMEADPT:         {Keyword: "#nmeadpt", DefaultValue: "1", ResponsePattern: reportLine("#nmeadpt", patBit, "")},
		IDNMEADPTOffset:   {Keyword: "#nmeadptoff", DefaultValue: "0.0", ResponsePattern: reportLine("#nmeadptoff", patFloat, "m")},
		IDNMEADPTZero:     {Keyword: "#nmeadpzero", DefaultValue: "1", ResponsePattern: reportLine("#nmeadpzero", patBit, "")},
		IDNMEAMTW:         {Keyword: "#nmeamtw", DefaultValue: "1", ResponsePattern: reportLine("#nmeamtw", patBit, "")},
		IDAltprec:         {Keyword: "#altprec", DefaultValue: "3", ResponsePattern: reportLine("#altprec", `([1-4]{1})`, "")},
		IDNMEAXDR:         {Keyword: "#nmeaxdr", DefaultValue: "1", ResponsePattern: reportLine("#nmeaxdr", patBit, "")},
		IDNMEAEMA:         {Keyword: "#nmeaema", DefaultValue: "1", ResponsePattern: reportLine("#nmeaema", patBit, "")},
		IDNMEAZDA:         {Keyword: "#nmeazda", DefaultValue: "0", ResponsePattern: reportLine("#nmeazda", patBit, "")},
		IDOutput:          {Keyword: "#output", DefaultValue: "3", ResponsePattern: reportLine("#output", patUnsigned, "")},
		IDTime:            {Keyword: "#time", DefaultValue: "0", ResponsePattern: reportLine("#time", patUnsigned, "")},
		IDSyncExtern:      {Keyword: "#syncextern", DefaultValue: "0", ResponsePattern: reportLine("#syncextern", patBit, "")},
		IDSyncExternMode:  {Keyword: "#syncextmod", DefaultValue: "1", ResponsePattern: reportLine("#syncextmod", patBit, "")},
		IDSyncOutPolarity: {Keyword: "#syncoutpol", DefaultValue: "1", ResponsePattern: reportLine("#syncoutpol", patBit, "")},
		IDVersion:         {Keyword: "#version", ResponsePattern: ` S\/W Ver: ([0-9]{1,}[.][0-9]{1,}) .*`},
		IDGo:              {Keyword: "#go"},
	})
}

// DualFrequencyCommands returns the command table of dual frequency
// echosounders. The H and L suffixed parameters address the high and low
// frequency channels.
func DualFrequencyCommands() *CommandTable {
	return MustCommandTable(string(DualFrequency), map[ParameterID]CommandDescriptor{
		IDInfo:            {Keyword: "#info"},
		IDRange:           {Keyword: "#range", DefaultValue: "50000", ResponsePattern: reportLine("#range", patUnsigned, "mm")},
		IDRangeH:          {Keyword: "#rangeh", DefaultValue: "50000", ResponsePattern: reportLine("#rangeh", patUnsigned, "mm")},
		IDRangeL:          {Keyword: "#rangel", DefaultValue: "50000", ResponsePattern: reportLine("#rangel", patUnsigned, "mm")},
		IDInterval:        {Keyword: "#interval", DefaultValue: "1.0", ResponsePattern: reportLine("#interval", `(([0-9]*[.])?[0-9]+)`, "sec")},
		IDPingonce:        {Keyword: "#pingonce", DefaultValue: "0", ResponsePattern: reportLine("#pingonce", patBit, "")},
		IDTxLength:        {Keyword: "#txlength", DefaultValue: "50", ResponsePattern: reportLine("#txlength", patUnsigned, "uks")},
		IDTxLengthH:       {Keyword: "#txlengthh", DefaultValue: "50", ResponsePattern: reportLine("#txlengthh", patUnsigned, "uks")},
		IDTxLengthL:       {Keyword: "#txlengthl", DefaultValue: "100", ResponsePattern: reportLine("#txlengthl", patUnsigned, "uks")},
		IDTxPower:         {Keyword: "#txpower", DefaultValue: "0.0", ResponsePattern: reportLine("#txpower", patFloat, "dB")},
		IDGain:            {Keyword: "#gain", DefaultValue: "0.0", ResponsePattern: reportLine("#gain", patFloat, "dB")},
		IDGainH:           {Keyword: "#gainh", DefaultValue: "0.0", ResponsePattern: reportLine("#gainh", patFloat, "dB")},
		IDGainL:           {Keyword: "#gainl", DefaultValue: "0.0", ResponsePattern: reportLine("#gainl", patFloat, "dB")},
		IDTVGMode:         {Keyword: "#tvgmode", DefaultValue: "1", ResponsePattern: reportLine("#tvgmode", `([0-4]{1})`, "")},
		IDTVGAbs:          {Keyword: "#tvgabs", DefaultValue: "0.140", ResponsePattern: ` - #tvgabs[ ]{0,}\[[ ]{0,}` + patFloat + ` dB\/m[ ]{0,}\].*`},
		IDTVGAbsH:         {Keyword: "#tvgabsh", DefaultValue: "0.140", ResponsePattern: ` - #tvgabsh[ ]{0,}\[[ ]{0,}` + patFloat + ` dB\/m[ ]{0,}\].*`},
		IDTVGAbsL:         {Keyword: "#tvgabsl", DefaultValue: "0.060", ResponsePattern: ` - #tvgabsl[ ]{0,}\[[ ]{0,}` + patFloat + ` dB\/m[ ]{0,}\].*`},
		IDTVGSprd:         {Keyword: "#tvgsprd", DefaultValue: "15.0", ResponsePattern: reportLine("#tvgsprd", patFloat, "")},
		IDTVGSprdH:        {Keyword: "#tvgsprdh", DefaultValue: "15.0", ResponsePattern: reportLine("#tvgsprdh", patFloat, "")},
		IDTVGSprdL:        {Keyword: "#tvgsprdl", DefaultValue: "15.0", ResponsePattern: reportLine("#tvgsprdl", patFloat, "")},
		IDAttn:            {Keyword: "#attn", DefaultValue: "0", ResponsePattern: reportLine("#attn", patUnsigned, "uks")},
		IDAttnH:           {Keyword: "#attnh", DefaultValue: "0", ResponsePattern: reportLine("#attnh", patUnsigned, "uks")},
		IDAttnL:           {Keyword: "#attnl", DefaultValue: "0", ResponsePattern: reportLine("#attnl", patUnsigned, "uks")},
		IDSound:           {Keyword: "#sound", DefaultValue: "1500", ResponsePattern: reportLine("#sound", patUnsigned, "mps")},
		IDDeadzone:        {Keyword: "#deadzone", DefaultValue: "300", ResponsePattern: reportLine("#deadzone", patUnsigned, "mm")},
		IDDeadzoneH:       {Keyword: "#deadzoneh", DefaultValue: "300", ResponsePattern: reportLine("#deadzoneh", patUnsigned, "mm")},
		IDDeadzoneL:       {Keyword: "#deadzonel", DefaultValue: "500", ResponsePattern: reportLine("#deadzonel", patUnsigned, "mm")},
		IDThreshold:       {Keyword: "#threshold", DefaultValue: "10", ResponsePattern: reportLine("#threshold", patUnsigned, "%")},
		IDThresholdH:      {Keyword: "#thresholdh", DefaultValue: "10", ResponsePattern: reportLine("#thresholdh", patUnsigned, "%")},
		IDThresholdL:      {Keyword: "#thresholdl", DefaultValue: "10", ResponsePattern: reportLine("#thresholdl", patUnsigned, "%")},
		IDOffset:          {Keyword: "#offset", DefaultValue: "0", ResponsePattern: reportLine("#offset", patUnsigned, "mm")},
		IDOffsetH:         {Keyword: "#offseth", DefaultValue: "0", ResponsePattern: reportLine("#offseth", patUnsigned, "mm")},
		IDOffsetL:         {Keyword: "#offsetl", DefaultValue: "0", ResponsePattern: reportLine("#offsetl", patUnsigned, "mm")},
		IDMedianFlt:       {Keyword: "#medianflt", DefaultValue: "2", ResponsePattern: reportLine("#medianflt", `([0-9]{1,3})`, "")},
		IDSMAFlt:          {Keyword: "#movavgflt", DefaultValue: "1", ResponsePattern: reportLine("#movavgflt", `([0-9]{1,3})`, "")},
		IDNMEADBT:         {Keyword: "#nmeadbt", DefaultValue: "1", ResponsePattern: reportLine("#nmeadbt", patBit, "")},
		IDNMEADPT:         {Keyword: "#nmeadpt", DefaultValue: "0", ResponsePattern: reportLine("#nmeadpt", patBit, "")},
		IDNMEAMTW:         {Keyword: "#nmeamtw", DefaultValue: "1", ResponsePattern: reportLine("#nmeamtw", patBit, "")},
		IDNMEAXDR:         {Keyword: "#nmeaxdr", DefaultValue: "1", ResponsePattern: reportLine("#nmeaxdr", patBit, "")},
		IDNMEAEMA:         {Keyword: "#nmeaema", DefaultValue: "0", ResponsePattern: reportLine("#nmeaema", patBit, "")},
		IDNMEAZDA:         {Keyword: "#nmeazda", DefaultValue: "0", ResponsePattern: reportLine("#nmeazda", patBit, "")},
		IDOutrate:         {Keyword: "#outrate", DefaultValue: "0.0", ResponsePattern: reportLine("#nmearate", patFloat, "sec")},
		IDNMEADPTOffset:   {Keyword: "#nmeadptoff", DefaultValue: "0.0", ResponsePattern: reportLine("#nmeadptoff", patFloat, "m")},
		IDNMEADPTZero:     {Keyword: "#nmeadpzero", DefaultValue: "1", ResponsePattern: reportLine("#nmeadpzero", patBit, "")},
		IDOutput:          {Keyword: "#output", DefaultValue: "3", ResponsePattern: reportLine("#output", patUnsigned, "")},
		IDAltprec:         {Keyword: "#altprec", DefaultValue: "3", ResponsePattern: reportLine("#altprec", `([1-4]{1})`, "")},
		IDSamplFreq:       {Keyword: "#samplfreq", DefaultValue: "0", ResponsePattern: reportLine("#samplfreq", `([0-9]{1,6})`, "")},
		IDTime:            {Keyword: "#time", DefaultValue: "0", ResponsePattern: reportLine("#time", patUnsigned, "")},
		IDSyncExtern:      {Keyword: "#syncextern", DefaultValue: "0", ResponsePattern: reportLine("#syncextern", patBit, "")},
		IDSyncExternMode:  {Keyword: "#syncextmod", DefaultValue: "1", ResponsePattern: reportLine("#syncextmod", patBit, "")},
		IDSyncOutPolarity: {Keyword: "#syncoutpol", DefaultValue: "1", ResponsePattern: reportLine("#syncoutpol", patBit, "")},
		IDAnlgMode:        {Keyword: "#anlgmode", DefaultValue: "0", ResponsePattern: reportLine("#anlgmode", patBit, "")},
		IDAnlgRate:        {Keyword: "#anlgrate", DefaultValue: "0.100", ResponsePattern: ` - #anlgrate[ ]{0,}\[[ ]{0,}` + patFloat + ` V\/m[ ]{0,}\].*`},
		IDAnlgMaxOut:      {Keyword: "#anlgmax", DefaultValue: "4", ResponsePattern: reportLine("#anlgmax", `([1-4]{1})`, "")},
		IDVersion:         {Keyword: "#version", ResponsePattern: ` S\/W Ver: ([0-9]{1,}[.][0-9]{1,}) .*`},

		IDSetHighFreq: {Keyword: "#setfh"},
		IDSetLowFreq:  {Keyword: "#setfl"},
		IDSetDualFreq: {Keyword: "#setfd"},

		IDGetHighFreq: {Keyword: "#getfh", ResponsePattern: `.*High Frequency:[ ]{0,}([0-9]{4,})Hz.*`},
		IDGetLowFreq:  {Keyword: "#getfl", ResponsePattern: `.*Low Frequency:[ ]{0,}([0-9]{4,})Hz.*`},
		IDGetWorkFreq: {Keyword: "#getf", ResponsePattern: `.*:[ ]{1,}([0-9]{4,})Hz[ ]{0,}\(Active\).*`},

		IDGo: {Keyword: "#go"},
	})
}
