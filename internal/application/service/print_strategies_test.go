package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/pkg/printer"
)

type stubLister struct {
	printers []printer.SystemPrinter
	err      error
	calls    int
}

func (l *stubLister) List(context.Context) ([]printer.SystemPrinter, error) {
	l.calls++
	return l.printers, l.err
}

type recordingSpooler struct {
	name string
	data []byte
	ext  string
	raw  bool
	err  error
}

func (s *recordingSpooler) SubmitRaw(_ context.Context, name string, data []byte) error {
	s.name, s.data, s.raw = name, data, true
	return s.err
}

func (s *recordingSpooler) SubmitDocument(_ context.Context, name string, data []byte, ext string) error {
	s.name, s.data, s.ext = name, data, ext
	return s.err
}

type recordingPrinter struct {
	data   []byte
	err    error
	closed bool
}

func (p *recordingPrinter) Print(_ context.Context, data []byte) error {
	p.data = append([]byte(nil), data...)
	return p.err
}
func (p *recordingPrinter) Close() error      { p.closed = true; return nil }
func (p *recordingPrinter) IsConnected() bool { return true }
func (p *recordingPrinter) Describe() string  { return "recording" }

type fakePDF struct{ html string }

func (f *fakePDF) HTMLToPDF(_ context.Context, html string) ([]byte, error) {
	f.html = html
	return []byte("%PDF-1.4"), nil
}

func TestResolverPrefersInstalledPrinter(t *testing.T) {
	lister := &stubLister{printers: []printer.SystemPrinter{{Name: "Office"}, {Name: "POS-80"}}}
	name, warning, err := printerResolver{preferred: "pos-80", lister: lister}.resolve(context.Background())
	if err != nil || name != "POS-80" || warning != "" {
		t.Fatalf("got %q %q %v", name, warning, err)
	}
}

func TestResolverFallsBackToDefaultWithWarning(t *testing.T) {
	lister := &stubLister{printers: []printer.SystemPrinter{{Name: "Office", IsDefault: true}}}
	name, warning, err := printerResolver{preferred: "POS-80", lister: lister}.resolve(context.Background())
	if err != nil || name != "Office" {
		t.Fatalf("got %q %v", name, err)
	}
	if !strings.Contains(warning, "POS-80") {
		t.Errorf("warning should name the missing printer, got %q", warning)
	}
}

func TestResolverFailures(t *testing.T) {
	cases := map[string]*stubLister{
		"none installed":       {},
		"no match, no default": {printers: []printer.SystemPrinter{{Name: "Office"}}},
	}
	for name, lister := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := printerResolver{preferred: "POS-80", lister: lister}.resolve(context.Background())
			if !errors.Is(err, ErrDeviceUnavailable) {
				t.Errorf("expected ErrDeviceUnavailable, got %v", err)
			}
		})
	}
}

func TestResolverUsesPreferredWhenListingFails(t *testing.T) {
	lister := &stubLister{err: errors.New("lpstat missing")}
	name, warning, err := printerResolver{preferred: "POS-80", lister: lister}.resolve(context.Background())
	if err != nil || name != "POS-80" || warning == "" {
		t.Fatalf("got %q %q %v", name, warning, err)
	}
}

func TestUSBStrategySendsEscPos(t *testing.T) {
	p := &recordingPrinter{}
	s := &usbStrategy{
		target:  entity.DeviceTarget{DevicePath: "/dev/usb/lp0"},
		timeout: time.Second,
		open:    func(entity.DeviceTarget) (printer.Printer, error) { return p, nil },
	}
	doc := testDocument()
	out := s.Attempt(context.Background(), doc)
	if out.Err != nil {
		t.Fatalf("Attempt: %v", out.Err)
	}
	if !bytes.Equal(p.data, doc.EscPos()) || !p.closed {
		t.Error("usb strategy should write the ESC/POS stream and close the device")
	}
}

func TestUSBStrategyWithoutTarget(t *testing.T) {
	out := NewUSBStrategy(entity.DeviceTarget{}, time.Second).Attempt(context.Background(), testDocument())
	if !errors.Is(out.Err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", out.Err)
	}
}

func TestUSBStrategyReachability(t *testing.T) {
	if _, ok := NewUSBStrategy(entity.DeviceTarget{}, time.Second).(*usbStrategy).Reachability(); ok {
		t.Error("unconfigured usb printer should not be reported")
	}

	s := &usbStrategy{
		target: entity.DeviceTarget{DevicePath: "/dev/usb/lp0"},
		open:   func(entity.DeviceTarget) (printer.Printer, error) { return &recordingPrinter{}, nil },
	}
	status, ok := s.Reachability()
	if !ok || !status.Connected || status.Strategy != "USBRaw" || status.Target != "recording" {
		t.Errorf("unexpected status %+v", status)
	}

	s.open = func(entity.DeviceTarget) (printer.Printer, error) { return nil, printer.ErrNotFound }
	status, ok = s.Reachability()
	if !ok || status.Connected || status.Target != "usb:/dev/usb/lp0" {
		t.Errorf("missing device should be reported disconnected, got %+v", status)
	}
}

func TestNetworkStrategyReachability(t *testing.T) {
	if _, ok := NewNetworkStrategy("", 0, time.Second, PayloadEscPos).(*networkStrategy).Reachability(); ok {
		t.Error("unconfigured network printer should not be reported")
	}

	s := NewNetworkStrategy("10.0.0.7", 9100, time.Second, PayloadEscPos).(*networkStrategy)
	s.dial = func(string, time.Duration) printer.Printer { return &recordingPrinter{} }
	status, ok := s.Reachability()
	if !ok || !status.Connected || status.Strategy != "NetworkRaw" {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestNetworkStrategy(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		out := NewNetworkStrategy("", 0, time.Second, PayloadEscPos).Attempt(context.Background(), testDocument())
		if !errors.Is(out.Err, ErrDeviceUnavailable) {
			t.Fatalf("expected ErrDeviceUnavailable, got %v", out.Err)
		}
	})

	t.Run("text payload", func(t *testing.T) {
		p := &recordingPrinter{}
		var addr string
		s := NewNetworkStrategy("10.0.0.7", 0, time.Second, PayloadText).(*networkStrategy)
		s.dial = func(a string, _ time.Duration) printer.Printer { addr = a; return p }

		doc := testDocument()
		if out := s.Attempt(context.Background(), doc); out.Err != nil {
			t.Fatalf("Attempt: %v", out.Err)
		}
		if addr != "10.0.0.7:9100" {
			t.Errorf("addr = %q", addr)
		}
		if string(p.data) != doc.PlainText() {
			t.Error("text format should send the plain text rendering")
		}
	})
}

func TestSpoolStrategySubmitsRaw(t *testing.T) {
	sp := &recordingSpooler{}
	lister := &stubLister{printers: []printer.SystemPrinter{{Name: "Thermal", IsDefault: true}}}
	s := NewSpoolStrategy("POS-80", lister, sp, time.Second, PayloadEscPos)

	out := s.Attempt(context.Background(), testDocument())
	if out.Err != nil {
		t.Fatalf("Attempt: %v", out.Err)
	}
	if !sp.raw || sp.name != "Thermal" || out.Warning == "" {
		t.Errorf("unexpected submission: raw=%v name=%q warning=%q", sp.raw, sp.name, out.Warning)
	}
	if s.Kind() != enum.PrintStrategyOSRawSpool {
		t.Errorf("kind = %v", s.Kind())
	}
}

func TestDialogStrategyPrintsPDF(t *testing.T) {
	sp := &recordingSpooler{}
	pdf := &fakePDF{}
	lister := &stubLister{printers: []printer.SystemPrinter{{Name: "POS-80"}}}
	s := NewDialogStrategy("POS-80", lister, sp, pdf, time.Second)

	out := s.Attempt(context.Background(), testDocument())
	if out.Err != nil {
		t.Fatalf("Attempt: %v", out.Err)
	}
	if sp.raw || sp.ext != ".pdf" || sp.name != "POS-80" {
		t.Errorf("unexpected submission: raw=%v ext=%q name=%q", sp.raw, sp.ext, sp.name)
	}
	if !strings.Contains(pdf.html, "SALES RECEIPT") {
		t.Error("pdf should be rendered from the receipt html")
	}
}

func TestBuildStrategyChain(t *testing.T) {
	available := map[enum.PrintStrategy]PrintStrategy{
		enum.PrintStrategyUSBRaw:     &fakeStrategy{kind: enum.PrintStrategyUSBRaw},
		enum.PrintStrategyNetworkRaw: &fakeStrategy{kind: enum.PrintStrategyNetworkRaw},
		enum.PrintStrategyOSRawSpool: &fakeStrategy{kind: enum.PrintStrategyOSRawSpool},
	}

	chain, err := BuildStrategyChain([]string{"spool", "usb", "spool"}, available)
	if err != nil {
		t.Fatalf("BuildStrategyChain: %v", err)
	}
	if len(chain) != 2 || chain[0].Kind() != enum.PrintStrategyOSRawSpool || chain[1].Kind() != enum.PrintStrategyUSBRaw {
		t.Errorf("unexpected chain order")
	}

	if _, err := BuildStrategyChain([]string{"dialog"}, available); err == nil {
		t.Error("expected error for unavailable strategy")
	}
	if _, err := BuildStrategyChain([]string{"fax"}, available); err == nil {
		t.Error("expected error for unknown strategy")
	}
	if _, err := BuildStrategyChain(nil, available); err == nil {
		t.Error("expected error for empty chain")
	}
}
