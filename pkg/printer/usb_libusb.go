//go:build libusb

package printer

import (
	"context"
	"fmt"

	"github.com/google/gousb"
)

type libusbPrinter struct {
	vendorID  gousb.ID
	productID gousb.ID
}

// OpenUSBByID returns a printer that writes to the first bulk OUT endpoint
// of the device with the given ids.
func OpenUSBByID(vendorID, productID uint16) (Printer, error) {
	return &libusbPrinter{vendorID: gousb.ID(vendorID), productID: gousb.ID(productID)}, nil
}

func (p *libusbPrinter) Print(ctx context.Context, data []byte) error {
	usb := gousb.NewContext()
	defer usb.Close()

	dev, err := usb.OpenDeviceWithVIDPID(p.vendorID, p.productID)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.Describe(), err)
	}
	if dev == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, p.Describe())
	}
	defer dev.Close()
	_ = dev.SetAutoDetach(true)

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		return fmt.Errorf("printer: claim interface on %s: %w", p.Describe(), err)
	}
	defer done()

	epNum := -1
	for _, ep := range intf.Setting.Endpoints {
		if ep.Direction == gousb.EndpointDirectionOut && ep.TransferType == gousb.TransferTypeBulk {
			epNum = ep.Number
			break
		}
	}
	if epNum < 0 {
		return fmt.Errorf("printer: no bulk OUT endpoint on %s", p.Describe())
	}
	out, err := intf.OutEndpoint(epNum)
	if err != nil {
		return fmt.Errorf("printer: open endpoint on %s: %w", p.Describe(), err)
	}
	if _, err := out.WriteContext(ctx, data); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s: %v", ErrTimeout, p.Describe(), err)
		}
		return fmt.Errorf("printer: write to %s: %w", p.Describe(), err)
	}
	return nil
}

func (p *libusbPrinter) Close() error {
	return nil
}

func (p *libusbPrinter) IsConnected() bool {
	usb := gousb.NewContext()
	defer usb.Close()
	devs, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == p.vendorID && desc.Product == p.productID
	})
	for _, d := range devs {
		d.Close()
	}
	return err == nil && len(devs) > 0
}

func (p *libusbPrinter) Describe() string {
	return fmt.Sprintf("usb:%s:%s", p.vendorID, p.productID)
}
