package printer

import (
	"context"
	"fmt"
	"io"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// PDFRenderer turns an HTML document into PDF bytes.
type PDFRenderer interface {
	HTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// RodPDFRenderer prints HTML to PDF with a headless Chromium.
type RodPDFRenderer struct {
	bin          string
	paperWidthIn float64
}

// NewRodPDFRenderer creates a renderer. bin may be empty to let rod locate
// or download a browser; paperWidthMM is the roll width.
func NewRodPDFRenderer(bin string, paperWidthMM float64) *RodPDFRenderer {
	if paperWidthMM <= 0 {
		paperWidthMM = 80
	}
	return &RodPDFRenderer{bin: bin, paperWidthIn: paperWidthMM / 25.4}
}

func (r *RodPDFRenderer) HTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	l := launcher.New().Context(ctx).Headless(true)
	if r.bin != "" {
		l = l.Bin(r.bin)
	}
	defer l.Cleanup()

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("printer: launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("printer: connect browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("printer: open page: %w", err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("printer: load receipt html: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("printer: wait for receipt html: %w", err)
	}

	width := r.paperWidthIn
	margin := 0.0
	stream, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:        &width,
		MarginTop:         &margin,
		MarginBottom:      &margin,
		MarginLeft:        &margin,
		MarginRight:       &margin,
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("printer: print to pdf: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("printer: read pdf: %w", err)
	}
	return data, nil
}
