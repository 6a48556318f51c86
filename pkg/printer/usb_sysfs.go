package printer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultSysfsRoot is where the kernel exposes usblp class devices.
const DefaultSysfsRoot = "/sys/class/usbmisc"

// DefaultDevRoot holds the usblp character devices.
const DefaultDevRoot = "/dev/usb"

// USBLocator maps a vendor/product id pair to a usblp device file.
type USBLocator struct {
	SysfsRoot string
	DevRoot   string
}

// NewUSBLocator returns a locator over the live sysfs tree.
func NewUSBLocator() *USBLocator {
	return &USBLocator{SysfsRoot: DefaultSysfsRoot, DevRoot: DefaultDevRoot}
}

// Resolve walks lp* entries and returns the device file whose parent USB
// device reports the given ids.
func (l *USBLocator) Resolve(vendorID, productID uint16) (string, error) {
	entries, err := os.ReadDir(l.SysfsRoot)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrNotFound, l.SysfsRoot, err)
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "lp") {
			continue
		}
		iface, err := filepath.EvalSymlinks(filepath.Join(l.SysfsRoot, e.Name(), "device"))
		if err != nil {
			continue
		}
		usbDev := filepath.Dir(iface)
		vid, ok1 := readHexID(filepath.Join(usbDev, "idVendor"))
		pid, ok2 := readHexID(filepath.Join(usbDev, "idProduct"))
		if ok1 && ok2 && vid == vendorID && pid == productID {
			return filepath.Join(l.DevRoot, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: no usblp device for %04x:%04x", ErrNotFound, vendorID, productID)
}

func readHexID(path string) (uint16, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}

// ParseUSBID parses a hex id as printed by lsusb, with or without 0x.
func ParseUSBID(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimSpace(strings.ToLower(s)), "0x")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("printer: invalid USB id %q: %w", s, err)
	}
	return uint16(v), nil
}
