// Package profile loads echosounder connection profiles from YAML.
//
// A profile names the serial port and instrument variant, optionally tunes
// the protocol timing and lists parameter presets applied after the
// instrument is detected:
//
//	port: /dev/ttyUSB0
//	baud: 115200
//	variant: single
//	timeouts:
//	  response: 4s
//	  prompt: 1s
//	settings:
//	  "#range": "20000"
//	  "#tvgsprd": "14.000000"
package profile

import (
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/gotmc/echosounder"
)

// Profile describes how to reach one echosounder and how to configure it.
type Profile struct {
	Port          string            `yaml:"port"`
	BaudRate      int               `yaml:"baud"`
	ReadTimeout   time.Duration     `yaml:"read_timeout"`
	Variant       string            `yaml:"variant"`
	Timeouts      Timeouts          `yaml:"timeouts"`
	DetectRetries int               `yaml:"detect_retries"`
	Debug         bool              `yaml:"debug"`
	MetricsAddr   string            `yaml:"metrics_addr"`
	Settings      map[string]string `yaml:"settings"`
}

// Timeouts overrides the engine's protocol timing. Zero fields keep the
// engine defaults.
type Timeouts struct {
	Response       time.Duration `yaml:"response"`
	Prompt         time.Duration `yaml:"prompt"`
	DetectPrompt   time.Duration `yaml:"detect_prompt"`
	CarriageReturn time.Duration `yaml:"carriage_return"`
}

// Default returns the profile used when no file is given.
func Default() *Profile {
	return &Profile{
		BaudRate:    echosounder.DefaultBaudRate,
		ReadTimeout: echosounder.DefaultSerialReadTimeout,
		Variant:     string(echosounder.SingleFrequency),
	}
}

// Load reads the profile at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a YAML profile. Fields missing from data keep their Default
// values.
func Parse(data []byte) (*Profile, error) {
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	if _, err := echosounder.ParseVariant(p.Variant); err != nil {
		return nil, err
	}
	if p.BaudRate < 0 {
		return nil, fmt.Errorf("invalid baud rate %d", p.BaudRate)
	}
	return p, nil
}

// SerialConfig returns the serial port settings of the profile.
func (p *Profile) SerialConfig() echosounder.SerialConfig {
	return echosounder.SerialConfig{
		Port:        p.Port,
		BaudRate:    p.BaudRate,
		ReadTimeout: p.ReadTimeout,
	}
}

// Table returns the command table of the profile's variant.
func (p *Profile) Table() (*echosounder.CommandTable, error) {
	v, err := echosounder.ParseVariant(p.Variant)
	if err != nil {
		return nil, err
	}
	return v.Table()
}

// Options returns the engine options the profile asks for.
func (p *Profile) Options() []echosounder.Option {
	var opts []echosounder.Option
	if p.Timeouts.Response > 0 {
		opts = append(opts, echosounder.WithResponseTimeout(p.Timeouts.Response))
	}
	if p.Timeouts.Prompt > 0 {
		opts = append(opts, echosounder.WithPromptTimeout(p.Timeouts.Prompt))
	}
	if p.Timeouts.DetectPrompt > 0 {
		opts = append(opts, echosounder.WithDetectPromptTimeout(p.Timeouts.DetectPrompt))
	}
	if p.Timeouts.CarriageReturn > 0 {
		opts = append(opts, echosounder.WithCarriageReturnDelay(p.Timeouts.CarriageReturn))
	}
	if p.DetectRetries != 0 {
		opts = append(opts, echosounder.WithDetectRetries(p.DetectRetries))
	}
	if p.Debug {
		opts = append(opts, echosounder.WithDebug())
	}
	return opts
}

// Apply sets every preset of the profile on the instrument, in parameter
// order. Keywords unknown to the engine's command table are reported
// without sending anything; the other presets are still applied. All
// failures are returned combined.
func (p *Profile) Apply(e *echosounder.Engine) error {
	table := e.Table()

	var errs error
	ids := make([]echosounder.ParameterID, 0, len(p.Settings))
	var unknown []string
	for kw := range p.Settings {
		id, ok := table.LookupKeyword(kw)
		if !ok {
			unknown = append(unknown, kw)
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(unknown)
	for _, kw := range unknown {
		errs = multierr.Append(errs, fmt.Errorf("%w: %s", echosounder.ErrUnsupportedParameter, kw))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		d, _ := table.Lookup(id)
		r, err := e.SetValue(id, p.Settings[d.Keyword])
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", d.Keyword, err))
			continue
		}
		if !r.OK() {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", d.Keyword, r.Err()))
		}
	}
	return errs
}
