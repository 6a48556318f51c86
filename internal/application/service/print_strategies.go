package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/pkg/printer"
)

// PayloadFormat selects what raw transports send.
type PayloadFormat string

const (
	PayloadEscPos PayloadFormat = "escpos"
	PayloadText   PayloadFormat = "text"
)

func rawPayload(doc PrintDocument, format PayloadFormat) []byte {
	if format == PayloadText {
		return []byte(doc.PlainText())
	}
	return doc.EscPos()
}

// Spooler submits jobs to the operating system print queue.
type Spooler interface {
	SubmitRaw(ctx context.Context, printerName string, data []byte) error
	SubmitDocument(ctx context.Context, printerName string, data []byte, ext string) error
}

// DeviceStatus reports whether a directly addressed printer answers.
type DeviceStatus struct {
	Strategy  string `json:"strategy"`
	Target    string `json:"target"`
	Connected bool   `json:"connected"`
}

// reachabilityChecker is implemented by strategies bound to a single device.
type reachabilityChecker interface {
	Reachability() (DeviceStatus, bool)
}

// PrinterLister enumerates printers known to the operating system.
type PrinterLister interface {
	List(ctx context.Context) ([]printer.SystemPrinter, error)
}

// --- USBRaw ---

type usbStrategy struct {
	target  entity.DeviceTarget
	timeout time.Duration
	open    func(entity.DeviceTarget) (printer.Printer, error)
}

// NewUSBStrategy writes ESC/POS straight to a USB printer, addressed by
// vendor/product id or by device path.
func NewUSBStrategy(target entity.DeviceTarget, timeout time.Duration) PrintStrategy {
	return &usbStrategy{target: target, timeout: timeout, open: openUSBPrinter}
}

func openUSBPrinter(t entity.DeviceTarget) (printer.Printer, error) {
	switch {
	case t.VendorID != 0 && t.ProductID != 0:
		return printer.OpenUSBByID(t.VendorID, t.ProductID)
	case t.DevicePath != "":
		return printer.NewUSBPrinter(t.DevicePath), nil
	}
	return nil, fmt.Errorf("%w: no USB printer configured", ErrDeviceUnavailable)
}

func (s *usbStrategy) Kind() enum.PrintStrategy { return enum.PrintStrategyUSBRaw }
func (s *usbStrategy) Timeout() time.Duration   { return s.timeout }

func (s *usbStrategy) Attempt(ctx context.Context, doc PrintDocument) StrategyOutcome {
	p, err := s.open(s.target)
	if err != nil {
		return StrategyOutcome{Target: s.target, Err: err}
	}
	defer p.Close()
	return StrategyOutcome{Target: s.target, Err: p.Print(ctx, doc.EscPos())}
}

func (s *usbStrategy) Reachability() (DeviceStatus, bool) {
	if s.target.VendorID == 0 && s.target.DevicePath == "" {
		return DeviceStatus{}, false
	}
	status := DeviceStatus{Strategy: s.Kind().String(), Target: s.target.String()}
	p, err := s.open(s.target)
	if err != nil {
		return status, true
	}
	defer p.Close()
	status.Target = p.Describe()
	status.Connected = p.IsConnected()
	return status, true
}

// --- NetworkRaw ---

type networkStrategy struct {
	target  entity.DeviceTarget
	timeout time.Duration
	format  PayloadFormat
	dial    func(address string, timeout time.Duration) printer.Printer
}

// NewNetworkStrategy streams the payload to a raw TCP port (JetDirect 9100).
func NewNetworkStrategy(host string, port int, timeout time.Duration, format PayloadFormat) PrintStrategy {
	if port <= 0 {
		port = 9100
	}
	return &networkStrategy{
		target:  entity.DeviceTarget{Host: host, Port: port},
		timeout: timeout,
		format:  format,
		dial:    printer.NewNetworkPrinter,
	}
}

func (s *networkStrategy) Kind() enum.PrintStrategy { return enum.PrintStrategyNetworkRaw }
func (s *networkStrategy) Timeout() time.Duration   { return s.timeout }

func (s *networkStrategy) Attempt(ctx context.Context, doc PrintDocument) StrategyOutcome {
	if s.target.Host == "" {
		return StrategyOutcome{Err: fmt.Errorf("%w: network printer not configured (set THERMAL_PRINTER_HOST)", ErrDeviceUnavailable)}
	}
	p := s.dial(printer.NetworkAddress(s.target.Host, s.target.Port), s.timeout)
	defer p.Close()
	return StrategyOutcome{Target: s.target, Err: p.Print(ctx, rawPayload(doc, s.format))}
}

func (s *networkStrategy) Reachability() (DeviceStatus, bool) {
	if s.target.Host == "" {
		return DeviceStatus{}, false
	}
	p := s.dial(printer.NetworkAddress(s.target.Host, s.target.Port), s.timeout)
	defer p.Close()
	return DeviceStatus{Strategy: s.Kind().String(), Target: p.Describe(), Connected: p.IsConnected()}, true
}

// --- printer name resolution shared by the OS strategies ---

type printerResolver struct {
	preferred string
	lister    PrinterLister
}

// resolve picks the queue to use: the preferred name when installed,
// otherwise the system default with a warning.
func (r printerResolver) resolve(ctx context.Context) (string, string, error) {
	if r.lister == nil {
		return r.preferred, "", nil
	}
	printers, err := r.lister.List(ctx)
	if err != nil {
		return r.preferred, fmt.Sprintf("could not list printers (%v), using %q", err, r.preferred), nil
	}
	if len(printers) == 0 {
		return "", "", fmt.Errorf("%w: no printers installed", ErrDeviceUnavailable)
	}
	def, hasDefault := printer.DefaultPrinter(printers)
	if r.preferred == "" {
		if hasDefault {
			return def.Name, "", nil
		}
		return "", "", nil
	}
	if p, ok := printer.FindPrinter(printers, r.preferred); ok {
		return p.Name, "", nil
	}
	if hasDefault {
		return def.Name, fmt.Sprintf("printer %q not found, using system default %q", r.preferred, def.Name), nil
	}
	return "", "", fmt.Errorf("%w: printer %q not found and no system default is set", ErrDeviceUnavailable, r.preferred)
}

// --- OSRawSpool ---

type spoolStrategy struct {
	resolver printerResolver
	spooler  Spooler
	timeout  time.Duration
	format   PayloadFormat
}

// NewSpoolStrategy submits the raw payload through the OS spooler so the
// driver passes it through untouched.
func NewSpoolStrategy(printerName string, lister PrinterLister, spooler Spooler, timeout time.Duration, format PayloadFormat) PrintStrategy {
	return &spoolStrategy{
		resolver: printerResolver{preferred: printerName, lister: lister},
		spooler:  spooler,
		timeout:  timeout,
		format:   format,
	}
}

func (s *spoolStrategy) Kind() enum.PrintStrategy { return enum.PrintStrategyOSRawSpool }
func (s *spoolStrategy) Timeout() time.Duration   { return s.timeout }

func (s *spoolStrategy) Attempt(ctx context.Context, doc PrintDocument) StrategyOutcome {
	name, warning, err := s.resolver.resolve(ctx)
	target := entity.DeviceTarget{PrinterName: name}
	if err != nil {
		return StrategyOutcome{Target: target, Err: err}
	}
	err = s.spooler.SubmitRaw(ctx, name, rawPayload(doc, s.format))
	return StrategyOutcome{Target: target, Warning: warning, Err: err}
}

// --- OSPrintDialog ---

type dialogStrategy struct {
	resolver printerResolver
	spooler  Spooler
	pdf      printer.PDFRenderer
	timeout  time.Duration
}

// NewDialogStrategy renders the HTML layout to PDF and prints it through the
// regular driver path, the unattended equivalent of a print dialog.
func NewDialogStrategy(printerName string, lister PrinterLister, spooler Spooler, pdf printer.PDFRenderer, timeout time.Duration) PrintStrategy {
	return &dialogStrategy{
		resolver: printerResolver{preferred: printerName, lister: lister},
		spooler:  spooler,
		pdf:      pdf,
		timeout:  timeout,
	}
}

func (s *dialogStrategy) Kind() enum.PrintStrategy { return enum.PrintStrategyOSPrintDialog }
func (s *dialogStrategy) Timeout() time.Duration   { return s.timeout }

func (s *dialogStrategy) Attempt(ctx context.Context, doc PrintDocument) StrategyOutcome {
	name, warning, err := s.resolver.resolve(ctx)
	target := entity.DeviceTarget{PrinterName: name}
	if err != nil {
		return StrategyOutcome{Target: target, Err: err}
	}
	pdf, err := s.pdf.HTMLToPDF(ctx, doc.HTML())
	if err != nil {
		return StrategyOutcome{Target: target, Warning: warning, Err: err}
	}
	err = s.spooler.SubmitDocument(ctx, name, pdf, ".pdf")
	return StrategyOutcome{Target: target, Warning: warning, Err: err}
}
