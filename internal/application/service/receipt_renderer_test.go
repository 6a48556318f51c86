package service

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sangkips/posprint/internal/domain/entity"
)

func testHeader() entity.ReceiptHeader {
	return entity.ReceiptHeader{
		StoreName: "Creative Hands",
		Tagline:   "By TEVTA",
		Subtitle:  "Point of Sale System",
		Footer:    "No returns without receipt",
		Currency:  "Rs",
	}
}

func sampleReceipt() entity.Receipt {
	return newTestNormalizer().Normalize(map[string]any{
		"invoiceNo": "INV-1",
		"items": []any{
			map[string]any{"name": "Hand embroidered cushion cover with mirror work", "quantity": 2, "price": 10},
			map[string]any{"name": "Pen", "quantity": 1, "price": 5},
		},
		"discount":      5,
		"taxPercentage": 10,
		"paid":          50,
		"servedBy":      "Sana",
	})
}

func TestRenderPlainTextLayout(t *testing.T) {
	rr := NewReceiptRenderer(testHeader())
	out := rr.RenderPlainText(sampleReceipt())

	for _, want := range []string{
		"SALES RECEIPT",
		"Invoice: INV-1",
		"  2 x Rs 10.00",
		"Tax (10%):",
		"-Rs 5.00",
		"TOTAL:",
		"Change:",
		"Served by: Sana",
		"No returns without receipt",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("plain text missing %q\n%s", want, out)
		}
	}
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if n := utf8.RuneCountInString(line); n > 32 {
			t.Errorf("line exceeds 32 columns (%d): %q", n, line)
		}
	}
}

func TestRenderOmitsZeroTaxDiscountAndChange(t *testing.T) {
	rr := NewReceiptRenderer(testHeader())
	r := newTestNormalizer().Normalize(map[string]any{
		"items": []any{map[string]any{"name": "Pen", "quantity": 1, "price": 5}},
	})
	out := rr.RenderPlainText(r)
	for _, unwanted := range []string{"Tax", "Discount:", "Change:"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("plain text should not contain %q\n%s", unwanted, out)
		}
	}
}

func TestRenderTaxLineFollowsPercentage(t *testing.T) {
	rr := NewReceiptRenderer(testHeader())

	zeroBase := newTestNormalizer().Normalize(map[string]any{
		"items":         []any{map[string]any{"name": "Pen", "quantity": 2, "price": 10}},
		"discount":      20,
		"taxPercentage": 10,
	})
	if out := rr.RenderPlainText(zeroBase); !strings.Contains(out, "Tax (10%):") {
		t.Errorf("10%% tax on a zero base should still print the tax line\n%s", out)
	}

	noRate := newTestNormalizer().Normalize(map[string]any{
		"items": []any{map[string]any{"name": "Pen", "quantity": 2, "price": 10}},
		"tax":   2,
	})
	if out := rr.RenderPlainText(noRate); strings.Contains(out, "Tax") {
		t.Errorf("no tax percentage should print no tax line\n%s", out)
	}
	if html := rr.RenderHTML(noRate); strings.Contains(html, "Tax") {
		t.Error("html should omit the tax line without a percentage")
	}
}

func TestRenderEscPosDeterministic(t *testing.T) {
	rr := NewReceiptRenderer(testHeader())
	r := sampleReceipt()
	opts := RenderOptions{ColumnWidth: 48, CutPaper: true, CodePage: "cp437"}

	a := rr.RenderEscPos(r, opts)
	b := rr.RenderEscPos(r, opts)
	if !bytes.Equal(a, b) {
		t.Fatal("rendering the same receipt twice must give identical bytes")
	}
	if !bytes.HasPrefix(a, []byte{0x1B, 0x40}) {
		t.Errorf("stream should start with ESC @, got % x", a[:2])
	}
	if !bytes.HasSuffix(a, []byte{0x1D, 0x56, 0x00}) {
		t.Errorf("stream should end with a full cut, got % x", a[len(a)-3:])
	}
	if !bytes.Contains(a, []byte("SALES RECEIPT")) {
		t.Error("stream missing title")
	}
}

func TestRenderEscPosOptionalCommands(t *testing.T) {
	rr := NewReceiptRenderer(testHeader())
	r := sampleReceipt()

	plain := rr.RenderEscPos(r, RenderOptions{})
	if bytes.Contains(plain, []byte{0x1D, 0x56}) {
		t.Error("cut emitted although CutPaper is false")
	}
	if bytes.Contains(plain, []byte{0x1B, 0x70}) {
		t.Error("drawer kick emitted although OpenDrawer is false")
	}

	drawer := rr.RenderEscPos(r, RenderOptions{OpenDrawer: true})
	if !bytes.HasSuffix(drawer, []byte{0x1B, 0x70, 0x00, 0x19, 0xFA}) {
		t.Errorf("expected drawer kick at end, got % x", drawer[len(drawer)-5:])
	}
}

func TestRenderEscPosWithQRIncludesRaster(t *testing.T) {
	rr := NewReceiptRenderer(testHeader())
	out := rr.RenderEscPos(sampleReceipt(), RenderOptions{QRData: "INV-1"})
	if !bytes.Contains(out, []byte{0x1D, 0x76, 0x30, 0x00}) {
		t.Error("expected a raster image command for the QR code")
	}
}

func TestRenderHTMLIsSelfContained(t *testing.T) {
	rr := NewReceiptRenderer(testHeader())
	r := sampleReceipt()
	r.CustomerName = "<script>alert(1)</script>"

	out := rr.RenderHTML(r)
	if !strings.Contains(out, "@page { size: 80mm auto") {
		t.Error("html should declare an 80mm page")
	}
	if strings.Contains(out, "<script>") {
		t.Error("customer name must be escaped")
	}
	for _, ref := range []string{"http://", "https://", "src=\"/"} {
		if strings.Contains(out, ref) {
			t.Errorf("html must not reference external resources (%s)", ref)
		}
	}
	if !strings.Contains(out, "Rs 22.00") {
		t.Errorf("html missing total\n%s", out)
	}
}

func TestRenderHTMLInlinesLogo(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	rr := NewReceiptRenderer(testHeader()).WithLogo(png)
	out := rr.RenderHTML(sampleReceipt())
	if !strings.Contains(out, `src="data:image/png;base64,`) {
		t.Error("logo should be inlined as a data URI")
	}

	rr = NewReceiptRenderer(testHeader()).WithLogo([]byte("plain text"))
	if strings.Contains(rr.RenderHTML(sampleReceipt()), "<img") {
		t.Error("unsupported logo data must be ignored")
	}
}
