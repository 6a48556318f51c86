package service

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/pkg/printer"
)

// RenderLabelEscPos prints copies of a product label with an EAN-13 symbol.
// barcode must already be a valid 13 digit code.
func (rr *ReceiptRenderer) RenderLabelEscPos(l entity.LabelRequest, barcode string, opts RenderOptions) ([]byte, error) {
	width := opts.width()
	doc := printer.NewDocument(width)
	if cp, ok := printer.LookupCodePage(opts.CodePage); ok {
		doc.SelectCodePage(cp)
	}
	for i := 0; i < labelCopies(l); i++ {
		doc.SetAlign(printer.AlignCenter).
			SetBold(true).
			Text(printer.Truncate(l.Name, width)).
			SetBold(false).
			Text(rr.money(l.Price))
		if err := doc.BarcodeEAN13(barcode); err != nil {
			return nil, err
		}
		doc.FeedLines(2)
		if opts.CutPaper {
			doc.PartialCut()
		}
	}
	doc.SetAlign(printer.AlignLeft)
	return doc.Bytes(), nil
}

func (rr *ReceiptRenderer) RenderLabelText(l entity.LabelRequest, barcode string) string {
	w := rr.textWidth
	block := printer.Center(l.Name, w) + "\n" +
		printer.Center(rr.money(l.Price), w) + "\n" +
		printer.Center(barcode, w) + "\n"
	return strings.Repeat(block+"\n", labelCopies(l))
}

var labelHTML = template.Must(template.New("label").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Name}}</title>
<style>
@page { size: 80mm auto; margin: 0; }
body { width: 80mm; margin: 0; padding: 4mm; box-sizing: border-box; font-family: "Courier New", monospace; text-align: center; }
.label { padding: 4mm 0; border-bottom: 1px dashed #000; }
.name { font-weight: bold; font-size: 14px; }
.code { letter-spacing: 2px; }
</style>
</head>
<body>
{{range .Copies}}<div class="label"><div class="name">{{$.Name}}</div><div>{{$.Price}}</div><div class="code">{{$.Barcode}}</div></div>
{{end}}</body>
</html>
`))

func (rr *ReceiptRenderer) RenderLabelHTML(l entity.LabelRequest, barcode string) string {
	var buf bytes.Buffer
	err := labelHTML.Execute(&buf, struct {
		Name    string
		Price   string
		Barcode string
		Copies  []struct{}
	}{l.Name, rr.money(l.Price), barcode, make([]struct{}, labelCopies(l))})
	if err != nil {
		return ""
	}
	return buf.String()
}

func labelCopies(l entity.LabelRequest) int {
	switch {
	case l.Copies < 1:
		return 1
	case l.Copies > 50:
		return 50
	default:
		return l.Copies
	}
}
