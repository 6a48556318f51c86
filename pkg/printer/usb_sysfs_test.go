package printer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func fakeUsbmisc(t *testing.T, lp, vid, pid string) string {
	t.Helper()
	root := t.TempDir()
	iface := filepath.Join(root, "devices", "usb1", "1-1", "1-1:1.0")
	if err := os.MkdirAll(iface, 0o755); err != nil {
		t.Fatal(err)
	}
	dev := filepath.Dir(iface)
	if err := os.WriteFile(filepath.Join(dev, "idVendor"), []byte(vid+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dev, "idProduct"), []byte(pid+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	class := filepath.Join(root, "class", lp)
	if err := os.MkdirAll(class, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(iface, filepath.Join(class, "device")); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(root, "class")
}

func TestUSBLocatorResolvesByIDs(t *testing.T) {
	sysfs := fakeUsbmisc(t, "lp1", "04b8", "0202")
	l := &USBLocator{SysfsRoot: sysfs, DevRoot: "/dev/usb"}

	path, err := l.Resolve(0x04b8, 0x0202)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if path != "/dev/usb/lp1" {
		t.Fatalf("got %s", path)
	}

	if _, err := l.Resolve(0x0416, 0x5011); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParseUSBID(t *testing.T) {
	for in, want := range map[string]uint16{"0x04b8": 0x04b8, "04B8": 0x04b8, "": 0} {
		got, err := ParseUSBID(in)
		if err != nil || got != want {
			t.Fatalf("ParseUSBID(%q) = %#x, %v", in, got, err)
		}
	}
	if _, err := ParseUSBID("zz"); err == nil {
		t.Fatal("expected error")
	}
}
