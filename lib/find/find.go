// Package find locates the USB serial adapter an echosounder is attached to.
package find

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.bug.st/serial/enumerator"

	"github.com/gotmc/echosounder/lib/logger"
)

type FilterFn func(*Usbtty) bool

// USB vendor ids of the serial bridges echosounders ship with.
const (
	VendorFTDI       = "0403"
	VendorSiliconLab = "10c4"
	VendorProlific   = "067b"
)

func FTDIFilter(ut *Usbtty) bool {
	return strings.EqualFold(ut.IDv, VendorFTDI)
}

// BridgeFilter matches any of the common USB serial bridges.
func BridgeFilter(ut *Usbtty) bool {
	switch strings.ToLower(ut.IDv) {
	case VendorFTDI, VendorSiliconLab, VendorProlific:
		return true
	}
	return false
}

func SerialFilter(s string) FilterFn {
	return func(ut *Usbtty) bool { return ut.Serial == s }
}

func ProductFilter(substr string) FilterFn {
	return func(ut *Usbtty) bool {
		return strings.Contains(strings.ToLower(ut.Prod), strings.ToLower(substr))
	}
}

// Find searches for a usb serial device and returns its device path, e.g.
// /dev/ttyUSB0. If filter is not nil, it is used to narrow choices down.
// The first device for which it returns true (if any) is chosen.
func Find(filter FilterFn) (string, error) {
	ttys, err := AllUsbTtys()
	if err != nil {
		return "", err
	}
	return pick(ttys, filter)
}

func pick(ttys Usbttys, filter FilterFn) (string, error) {
	if filter != nil {
		var match Usbttys
		for i := range ttys {
			if filter(&ttys[i]) {
				match = Usbttys{ttys[i]}
				break
			}
		}
		ttys = match
	}

	if len(ttys) == 0 {
		return "", errors.New("no matching ttys found")
	}
	if len(ttys) == 1 {
		return ttys[0].Dev, nil
	}
	return "", fmt.Errorf("multiple ttys:\n%s", ttys)
}

type Usbtty struct {
	Dev, Path string
	IDp, IDv  string
	Mfg, Prod string
	Serial    string
}

func (u Usbtty) String() string {
	return fmt.Sprintf("dev %s path %s pid/vid %s/%s mfg/prod %s/%s serial %s", u.Dev, u.Path, u.IDp, u.IDv, u.Mfg, u.Prod, u.Serial)
}

type Usbttys []Usbtty

func (uts Usbttys) String() string {
	s := make([]string, 0, len(uts))
	for _, ut := range uts {
		s = append(s, ut.String())
	}
	return strings.Join(s, "\n")
}

// AllUsbTtys lists ttys on usb devices. On Linux it looks at
// /sys/class/tty and the usb device directories behind it; elsewhere it
// asks the serial port enumerator.
func AllUsbTtys() (Usbttys, error) {
	ttys, err := sysfsTtys("/sys", "/dev")
	if errors.Is(err, fs.ErrNotExist) {
		return enumeratedTtys()
	}
	return ttys, err
}

func sysfsTtys(sys, dev string) (Usbttys, error) {
	log := logger.GetLogger()

	var devs Usbttys
	sct := filepath.Join(sys, "class", "tty")
	entries, err := os.ReadDir(sct)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Type()&fs.ModeSymlink == 0 {
			// just in case there's anything in the dir that isn't a symlink
			continue
		}
		// we have a symlink like
		// /sys/class/tty/ttyUSB0 ->
		// /sys/devices/pci0000:00/0000:00:14.0/usb1/1-2/1-2:1.0/ttyUSB0/tty/ttyUSB0
		path := filepath.Join(sct, e.Name())
		abs, err := filepath.EvalSymlinks(path)
		if err != nil {
			log.Debug("skipping unresolvable tty", "path", path, "error", err)
			continue
		}
		if !strings.Contains(abs, "usb") {
			continue
		}
		// device points at the usb interface, e.g.
		// /sys/devices/pci0000:00/0000:00:14.0/usb1/1-2/1-2:1.0
		// whose parent holds the descriptor strings.
		iface, err := filepath.EvalSymlinks(filepath.Join(abs, "device"))
		if err != nil {
			log.Warn("usb tty lacks device link", "path", abs, "error", err)
			continue
		}
		idP, idV, mfg, prod, serial, err := readUsbInfo(filepath.Dir(iface))
		if err != nil {
			log.Warn("reading usb descriptors", "path", abs, "error", err)
		}
		devs = append(devs, Usbtty{
			Dev:    filepath.Join(dev, e.Name()),
			Path:   abs,
			IDp:    idP,
			IDv:    idV,
			Mfg:    mfg,
			Prod:   prod,
			Serial: serial,
		})
	}
	return devs, nil
}

func enumeratedTtys() (Usbttys, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerating serial ports: %w", err)
	}
	var devs Usbttys
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		devs = append(devs, Usbtty{
			Dev:    p.Name,
			IDp:    strings.ToLower(p.PID),
			IDv:    strings.ToLower(p.VID),
			Prod:   p.Product,
			Serial: p.SerialNumber,
		})
	}
	return devs, nil
}

// reads prod and vendor ids, and mfg/product/serial strings
//
// returns last error encountered, ignoring os.ErrNotExist.
// errors do not prevent reading additional files or returning data collected.
func readUsbInfo(dir string) (idp, idv, mfg, prod, serial string, err error) {
	read := func(name string) string {
		b, rerr := os.ReadFile(filepath.Join(dir, name))
		if rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			err = rerr
		}
		return strings.TrimSpace(string(b))
	}
	idp = read("idProduct")
	idv = read("idVendor")
	mfg = read("manufacturer")
	prod = read("product")
	serial = read("serial")
	return idp, idv, mfg, prod, serial, err
}
