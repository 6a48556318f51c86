package printer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// InkThreshold is the luminance below which a pixel is printed as a black dot.
const InkThreshold = 180

// Raster is a 1-bit image packed 8 pixels per byte, MSB first, row major.
type Raster struct {
	WidthBytes int
	Height     int
	Data       []byte
}

// Luminance returns the Rec. 709 luma of an 8-bit RGB triple.
func Luminance(r, g, b uint8) float64 {
	return 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
}

// DecodeImage decodes PNG, JPEG or GIF bytes.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("printer: decode image: %w", err)
	}
	return img, nil
}

// NewRaster flattens img onto white, scales it down to maxWidth dots when
// wider (never up) and thresholds it into a 1-bit raster.
func NewRaster(img image.Image, maxWidth int) Raster {
	if img == nil {
		return Raster{}
	}
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if w == 0 || h == 0 {
		return Raster{}
	}
	if maxWidth > 0 && w > maxWidth {
		h = h * maxWidth / w
		if h < 1 {
			h = 1
		}
		w = maxWidth
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(canvas, canvas.Bounds(), img, src.Min, draw.Over)
	} else {
		draw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), img, src, draw.Over, nil)
	}

	widthBytes := (w + 7) / 8
	data := make([]byte, widthBytes*h)
	for y := 0; y < h; y++ {
		row := y * widthBytes
		for x := 0; x < w; x++ {
			px := canvas.RGBAAt(x, y)
			if Luminance(px.R, px.G, px.B) < InkThreshold {
				data[row+x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return Raster{WidthBytes: widthBytes, Height: h, Data: data}
}

// WidthDots returns the raster width in dots, including padding bits.
func (r Raster) WidthDots() int {
	return r.WidthBytes * 8
}
