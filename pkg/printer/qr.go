package printer

import (
	"fmt"
	"image"

	qrcode "github.com/skip2/go-qrcode"
)

// QRImage renders data as a square QR code of size pixels.
func QRImage(data string, size int) (image.Image, error) {
	qr, err := qrcode.New(data, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("printer: generate QR code: %w", err)
	}
	return qr.Image(size), nil
}
