package printer

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// RasterBandRows is the tallest GS v 0 block sent at once; taller images are
// split into consecutive bands.
const RasterBandRows = 2048

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Font size
const (
	FontNormal = 0x00
	FontDouble = 0x11 // Double width + double height
	FontWide   = 0x10 // Double width only
	FontTall   = 0x01 // Double height only
)

// Paper widths in characters (Font A) and dots at 203 DPI.
const (
	Columns58mm = 32
	Columns80mm = 48
	Dots58mm    = 288
	Dots80mm    = 384
)

// Document builds an ESC/POS byte stream for thermal printers.
type Document struct {
	buf      bytes.Buffer
	width    int
	codePage CodePage
}

// NewDocument creates a new ESC/POS document with the given character width.
// Common widths: 32 for 58mm paper, 48 for 80mm paper.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = Columns58mm
	}
	d := &Document{width: charWidth, codePage: DefaultCodePage()}
	d.Init()
	return d
}

// Width returns the line width in characters.
func (d *Document) Width() int {
	return d.width
}

// Init sends the ESC @ (initialize printer) command.
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// SelectCodePage emits ESC t n and encodes all subsequent text with cp.
func (d *Document) SelectCodePage(cp CodePage) *Document {
	d.codePage = cp
	d.buf.Write([]byte{ESC, 't', cp.Table})
	return d
}

// LineFeed sends a line feed.
func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(LF)
	return d
}

// FeedLines sends n line feeds.
func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

// SetAlign sets text alignment: AlignLeft, AlignCenter, AlignRight.
func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

// SetBold enables or disables bold text.
func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

// SetFontSize sets the character size. Use FontNormal, FontDouble, FontWide, or FontTall.
func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Text writes a line of text followed by a line feed.
func (d *Document) Text(s string) *Document {
	d.write(s)
	d.buf.WriteByte(LF)
	return d
}

// Separator prints a full-width separator line (e.g. "--------------------------------").
func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// KeyValue prints a left-aligned key and right-aligned value on the same line.
// Example: "Subtotal           Rs 100.00"
func (d *Document) KeyValue(key, value string) *Document {
	d.write(PadBetween(key, value, d.width))
	d.buf.WriteByte(LF)
	return d
}

// Raster writes a GS v 0 raster bit image.
func (d *Document) Raster(r Raster) *Document {
	if r.Height == 0 || r.WidthBytes == 0 || len(r.Data) < r.WidthBytes*r.Height {
		return d
	}
	for y := 0; y < r.Height; y += RasterBandRows {
		rows := min(RasterBandRows, r.Height-y)
		d.buf.Write([]byte{
			GS, 'v', '0', 0,
			byte(r.WidthBytes & 0xFF), byte(r.WidthBytes >> 8),
			byte(rows & 0xFF), byte(rows >> 8),
		})
		d.buf.Write(r.Data[y*r.WidthBytes : (y+rows)*r.WidthBytes])
	}
	d.buf.WriteByte(LF)
	return d
}

// BarcodeEAN13 prints an EAN-13 symbol with human readable digits below it.
// code may hold 12 digits (check digit is appended) or a full valid 13 digit code.
func (d *Document) BarcodeEAN13(code string) error {
	full, err := CompleteEAN13(code)
	if err != nil {
		return err
	}
	d.buf.Write([]byte{GS, 'H', 2})  // HRI below
	d.buf.Write([]byte{GS, 'h', 80}) // height in dots
	d.buf.Write([]byte{GS, 'w', 2})  // module width
	d.buf.Write([]byte{GS, 'k', 67, 13})
	d.buf.WriteString(full)
	d.buf.WriteByte(LF)
	return nil
}

// Cut sends the paper cut command (full cut).
func (d *Document) Cut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x00})
	return d
}

// PartialCut feeds to the cutter and performs a partial cut.
func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 66, 0})
	return d
}

// OpenDrawer pulses pin 2 to kick the cash drawer.
func (d *Document) OpenDrawer() *Document {
	d.buf.Write([]byte{ESC, 'p', 0, 25, 250})
	return d
}

// Bytes returns the accumulated ESC/POS byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// Reset clears the buffer and reinitializes the document.
func (d *Document) Reset() *Document {
	d.buf.Reset()
	d.Init()
	return d
}

func (d *Document) write(s string) {
	d.buf.Write(d.codePage.Encode(s))
}

// PadBetween joins left and right with enough spaces to fill width columns.
// At least one space is always kept; the left side is truncated when the
// pair would overflow.
func PadBetween(left, right string, width int) string {
	rw := utf8.RuneCountInString(right)
	room := width - rw - 1
	if room < 0 {
		room = 0
	}
	left = Truncate(left, room)
	spaces := width - utf8.RuneCountInString(left) - rw
	if spaces < 1 {
		spaces = 1
	}
	return left + strings.Repeat(" ", spaces) + right
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// Center pads s with leading spaces so it sits in the middle of width columns.
func Center(s string, width int) string {
	s = Truncate(s, width)
	pad := (width - utf8.RuneCountInString(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
