package main

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/sangkips/posprint/internal/application/service"
	"github.com/sangkips/posprint/internal/config"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/pkg/printer"
)

// printerHardware holds the OS facing pieces shared by the strategies.
type printerHardware struct {
	usb        entity.DeviceTarget
	enumerator *printer.Enumerator
	spooler    *printer.Spooler
	pdf        printer.PDFRenderer
	format     service.PayloadFormat
	deviceKey  string
}

func newPrinterHardware(cfg *config.PrinterConfig, log *slog.Logger) (*printerHardware, error) {
	vid, err := printer.ParseUSBID(cfg.USBVendorID)
	if err != nil {
		return nil, fmt.Errorf("PRINTER_USB_VENDOR_ID: %w", err)
	}
	pid, err := printer.ParseUSBID(cfg.USBProductID)
	if err != nil {
		return nil, fmt.Errorf("PRINTER_USB_PRODUCT_ID: %w", err)
	}

	var format service.PayloadFormat
	switch cfg.RawFormat {
	case "", string(service.PayloadEscPos):
		format = service.PayloadEscPos
	case string(service.PayloadText):
		format = service.PayloadText
	default:
		return nil, fmt.Errorf("PRINTER_RAW_FORMAT must be escpos or text, got %q", cfg.RawFormat)
	}

	runner := printer.ExecRunner{Logger: log}
	hw := &printerHardware{
		usb:        entity.DeviceTarget{VendorID: vid, ProductID: pid, DevicePath: cfg.USBPath},
		enumerator: printer.NewEnumerator(runner, runtime.GOOS),
		spooler: printer.NewSpooler(printer.SpoolerConfig{
			Runner:       runner,
			GOOS:         runtime.GOOS,
			CleanupDelay: cfg.SpoolCleanupDelay,
			Logger:       log,
		}),
		pdf:       printer.NewRodPDFRenderer(cfg.ChromeBin, cfg.PaperWidthMM),
		format:    format,
		deviceKey: cfg.Name,
	}
	return hw, nil
}

func (hw *printerHardware) strategies(cfg *config.PrinterConfig) map[enum.PrintStrategy]service.PrintStrategy {
	return map[enum.PrintStrategy]service.PrintStrategy{
		enum.PrintStrategyUSBRaw:        service.NewUSBStrategy(hw.usb, cfg.USBTimeout),
		enum.PrintStrategyNetworkRaw:    service.NewNetworkStrategy(cfg.Host, cfg.Port, cfg.NetworkTimeout, hw.format),
		enum.PrintStrategyOSRawSpool:    service.NewSpoolStrategy(cfg.Name, hw.enumerator, hw.spooler, cfg.SpoolTimeout, hw.format),
		enum.PrintStrategyOSPrintDialog: service.NewDialogStrategy(cfg.Name, hw.enumerator, hw.spooler, hw.pdf, cfg.DialogTimeout),
	}
}
