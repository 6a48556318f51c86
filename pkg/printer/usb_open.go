//go:build !libusb

package printer

// OpenUSBByID returns a printer for the usblp device matching the ids.
// Builds tagged libusb talk to the bulk endpoint directly instead.
func OpenUSBByID(vendorID, productID uint16) (Printer, error) {
	path, err := NewUSBLocator().Resolve(vendorID, productID)
	if err != nil {
		return nil, err
	}
	return NewUSBPrinter(path), nil
}
