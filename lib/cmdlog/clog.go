// Package cmdlog logs echosounder exchanges with lipgloss styling, for
// interactive programs.
package cmdlog

import (
	"log"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gotmc/echosounder"
)

func isAscii(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool {
		switch {
		case r < 7:
			return true
		case r > 6 && r < 14:
			return false
		case r > 13 && r < 32:
			return true
		case r > 127:
			return true
		}
		return false
	})
}

var (
	CmdStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	R1Style   = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	R2Style   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	FailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func keyword(snr *echosounder.Engine, id echosounder.ParameterID) string {
	if d, ok := snr.Table().Lookup(id); ok {
		return d.Keyword
	}
	return id.String()
}

func resultStyle(r echosounder.Result) lipgloss.Style {
	if r.OK() {
		return R2Style
	}
	return FailStyle
}

// PrettyFuncs returns helpers that operate on snr and log what they did:
// get reads the settings cache, set sends a value and cmd sends a command
// without argument. set and cmd report whether the instrument acknowledged.
func PrettyFuncs(snr *echosounder.Engine) (
	get func(echosounder.ParameterID) string,
	set func(echosounder.ParameterID, string) bool,
	cmd func(echosounder.ParameterID) bool,
) {
	get = func(id echosounder.ParameterID) string {
		kw := CmdStyle.Render(keyword(snr, id))
		v, ok := snr.Value(id)
		if !ok {
			log.Printf("%s: %s", kw, R1Style.Render("<no value>"))
			return ""
		}
		log.Printf("%s = %s", kw, R2Style.Render(v.Text()))
		return v.Text()
	}

	set = func(id echosounder.ParameterID, value string) bool {
		kw := CmdStyle.Render(keyword(snr, id))
		r, err := snr.SetValue(id, value)
		if err != nil {
			log.Printf("set %s %s: error %s", kw, value, err)
			return false
		}
		log.Printf("%s %s: %s", kw, value, resultStyle(r).Render(r.String()))
		return r.OK()
	}

	cmd = func(id echosounder.ParameterID) bool {
		kw := CmdStyle.Render(keyword(snr, id))
		r, err := snr.SendCommand(id, "")
		if err != nil {
			log.Printf("cmd %s: error %s", kw, err)
			return false
		}
		log.Printf("%s(): %s", kw, resultStyle(r).Render(r.String()))
		return r.OK()
	}
	return get, set, cmd
}

// Data logs raw instrument output, quoted when it is text and in hex
// otherwise.
func Data(p []byte) {
	a := string(p)
	if len(a) == 0 {
		log.Print(R1Style.Render("<no data>"))
		return
	}
	if isAscii(a) {
		log.Printf("[%d] %q", len(a), a)
	} else if len(a) < 32 {
		log.Printf("[%d] %q (% 2x)", len(a), a, p)
	} else {
		log.Printf("[%d] % 2x", len(a), p)
	}
}
