package connutil

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"

	"github.com/gotmc/echosounder"
	"github.com/gotmc/echosounder/lib/find"
	"github.com/gotmc/echosounder/lib/logger"
	"github.com/gotmc/echosounder/lib/monitor"
	"github.com/gotmc/echosounder/lib/profile"
)

// Conn collects the flags shared by programs driving one echosounder.
type Conn struct {
	SerialPort  string
	BaudRate    int
	Variant     string
	Profile     string
	Debug       bool
	MetricsAddr string

	tty     string
	finderr error
}

// AddFlags is to be called before [flag.Parse].
func (c *Conn) AddFlags() {
	c.tty, c.finderr = find.Find(find.BridgeFilter)
	if c.finderr != nil {
		c.tty = "/dev/ttyUSB0"
	}
	if c.BaudRate == 0 {
		c.BaudRate = echosounder.DefaultBaudRate
	}
	if c.Variant == "" {
		c.Variant = string(echosounder.SingleFrequency)
	}

	flag.StringVar(&c.SerialPort, "port", c.tty, "Serial port the echosounder is attached to")
	flag.IntVar(&c.BaudRate, "baud", c.BaudRate, "Serial baud rate")
	flag.StringVar(&c.Variant, "variant", c.Variant, "Echosounder variant: single or dual")
	flag.StringVar(&c.Profile, "profile", c.Profile, "YAML profile with port, timing and parameter presets")
	flag.BoolVar(&c.Debug, "debug", c.Debug, "log every command and reply")
	flag.StringVar(&c.MetricsAddr, "metrics", c.MetricsAddr, "serve prometheus metrics on this address, e.g. :9100")
}

// profile merges the profile file, if any, with the flags. Flags given on
// the command line win over the file.
func (c *Conn) profile() (*profile.Profile, error) {
	prof := profile.Default()
	if c.Profile != "" {
		var err error
		if prof, err = profile.Load(c.Profile); err != nil {
			return nil, err
		}
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["port"] || prof.Port == "" {
		prof.Port = c.SerialPort
	}
	if set["baud"] {
		prof.BaudRate = c.BaudRate
	}
	if set["variant"] || c.Profile == "" {
		prof.Variant = c.Variant
	}
	if set["metrics"] {
		prof.MetricsAddr = c.MetricsAddr
	}
	prof.Debug = prof.Debug || c.Debug
	return prof, nil
}

// Setup is to be called after variables are initialized, i.e. after both [(Conn).AddFlags] and [flag.Parse] are called.
// It opens the echosounder, which is detected and has its settings read, and
// applies the profile's presets if it was detected.
func (c *Conn) Setup(opts []echosounder.Option) (snr *echosounder.Engine, cleanup func(), err error) {
	nocleanup := func() {}

	log.SetFlags(log.Lmicroseconds)

	prof, err := c.profile()
	if err != nil {
		return nil, nocleanup, err
	}
	if c.finderr != nil && prof.Port == c.tty {
		// only print this if the port isn't overridden via flag or profile
		log.Printf("locating serial port failed, guessing %s: %s", c.tty, c.finderr)
	}
	if prof.Debug {
		logger.SetLevel(logger.DebugLevel)
	}
	log.Printf("Serial port = %s (%s, %d baud)", prof.Port, prof.Variant, prof.BaudRate)

	table, err := prof.Table()
	if err != nil {
		return nil, nocleanup, err
	}
	opts = append(prof.Options(), opts...)

	stopMetrics := func() {}
	if prof.MetricsAddr != "" {
		m := monitor.New(prof.Port)
		opts = append(opts, echosounder.WithObserver(m))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := m.Serve(ctx, prof.MetricsAddr, logger.GetLogger()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics server: %s", err)
			}
		}()
		stopMetrics = func() {
			cancel()
			<-done
		}
	}

	snr, err = echosounder.Open(prof.SerialConfig(), table, opts...)
	if err != nil {
		stopMetrics()
		return nil, nocleanup, err
	}

	if !snr.IsDetected() {
		log.Printf("echosounder on %s not detected", prof.Port)
	} else if len(prof.Settings) > 0 {
		if err := prof.Apply(snr); err != nil {
			log.Printf("applying profile presets: %s", err)
		}
	}

	cleanup = func() {
		// Discard any unread data on the serial port and then close.
		if err := snr.Close(); err != nil {
			log.Printf("error closing serial port: %s", err)
		}
		stopMetrics()
	}
	return snr, cleanup, nil
}
