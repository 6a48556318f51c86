package printer

import (
	"image/color"
	"testing"
)

func TestQRImageKeepsQuietZone(t *testing.T) {
	img, err := QRImage("INV-1709993107000", 192)
	if err != nil {
		t.Fatalf("QRImage: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 192 || b.Dy() != 192 {
		t.Fatalf("size = %dx%d, want 192x192", b.Dx(), b.Dy())
	}
	r, g, bl, _ := img.At(b.Min.X, b.Min.Y).RGBA()
	if r != 0xFFFF || g != 0xFFFF || bl != 0xFFFF {
		t.Errorf("corner should be quiet-zone white, got %v", color.RGBA64{uint16(r), uint16(g), uint16(bl), 0xFFFF})
	}

	raster := NewRaster(img, Dots58mm)
	if raster.Height != 192 || raster.WidthDots() != 192 {
		t.Errorf("raster = %dx%d", raster.WidthDots(), raster.Height)
	}
}
