package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/pkg/printer"
)

// RenderOptions tunes the ESC/POS output for a specific device.
type RenderOptions struct {
	ColumnWidth   int
	CutPaper      bool
	OpenDrawer    bool
	CodePage      string
	MaxImageWidth int
	Logo          []byte
	QRData        string
}

func (o RenderOptions) width() int {
	if o.ColumnWidth <= 0 {
		return printer.Columns80mm
	}
	return o.ColumnWidth
}

func (o RenderOptions) imageWidth() int {
	if o.MaxImageWidth > 0 {
		return o.MaxImageWidth
	}
	if o.width() <= printer.Columns58mm {
		return printer.Dots58mm
	}
	return printer.Dots80mm
}

// ReceiptRenderer produces ESC/POS, HTML and plain text from a Receipt.
// Rendering is pure: the same receipt and options give the same output.
type ReceiptRenderer struct {
	header    entity.ReceiptHeader
	textWidth int
	logoURI   template.URL
}

func NewReceiptRenderer(header entity.ReceiptHeader) *ReceiptRenderer {
	return &ReceiptRenderer{header: header, textWidth: printer.Columns58mm}
}

// WithTextWidth sets the plain text line width.
func (rr *ReceiptRenderer) WithTextWidth(n int) *ReceiptRenderer {
	if n > 0 {
		rr.textWidth = n
	}
	return rr
}

// WithLogo embeds logo bytes in HTML output as a data URI. Unsupported
// formats are ignored.
func (rr *ReceiptRenderer) WithLogo(logo []byte) *ReceiptRenderer {
	if len(logo) == 0 {
		return rr
	}
	switch mime := http.DetectContentType(logo); mime {
	case "image/png", "image/jpeg", "image/gif":
		rr.logoURI = template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(logo))
	}
	return rr
}

type totalLine struct {
	Label  string
	Value  string
	Strong bool
	Large  bool
}

func (rr *ReceiptRenderer) money(v float64) string {
	return formatMoney(rr.header.Currency, v)
}

func (rr *ReceiptRenderer) totals(r entity.Receipt) []totalLine {
	lines := []totalLine{{Label: "Subtotal:", Value: rr.money(r.Subtotal)}}
	if r.TaxPercentage > 0 {
		label := fmt.Sprintf("Tax (%s%%):", formatPercent(r.TaxPercentage))
		lines = append(lines, totalLine{Label: label, Value: rr.money(r.TaxAmount)})
	}
	if r.DiscountAmount > 0 {
		lines = append(lines, totalLine{Label: "Discount:", Value: "-" + rr.money(r.DiscountAmount)})
	}
	lines = append(lines,
		totalLine{Label: "TOTAL:", Value: rr.money(r.Total), Strong: true, Large: true},
		totalLine{Label: "Paid:", Value: rr.money(r.AmountPaid)},
	)
	if r.ChangeDue > 0 {
		lines = append(lines, totalLine{Label: "Change:", Value: rr.money(r.ChangeDue), Strong: true})
	}
	return lines
}

func (rr *ReceiptRenderer) itemDetail(it entity.ReceiptLineItem) string {
	return fmt.Sprintf("  %s x %s", formatQuantity(it.Quantity), rr.money(it.UnitPrice))
}

// RenderEscPos builds the byte stream for a thermal printer.
func (rr *ReceiptRenderer) RenderEscPos(r entity.Receipt, opts RenderOptions) []byte {
	width := opts.width()
	doc := printer.NewDocument(width)
	if cp, ok := printer.LookupCodePage(opts.CodePage); ok {
		doc.SelectCodePage(cp)
	}

	doc.SetAlign(printer.AlignCenter)
	rr.escPosImage(doc, opts.Logo, opts.imageWidth())
	rr.escPosHeader(doc, width)

	doc.LineFeed().
		SetBold(true).
		Text("SALES RECEIPT").
		SetBold(false).
		Text("Invoice: " + r.InvoiceNo).
		Text(r.TimestampLabel)

	doc.SetAlign(printer.AlignLeft).
		Separator('-').
		KeyValue("Customer:", r.CustomerName).
		KeyValue("Payment:", r.PaymentMethod).
		Separator('-')

	for _, it := range r.Items {
		doc.Text(printer.Truncate(it.Name, width)).
			KeyValue(rr.itemDetail(it), rr.money(it.LineTotal))
	}
	doc.Separator('-')

	for _, l := range rr.totals(r) {
		if l.Strong {
			doc.SetBold(true)
		}
		if l.Large {
			doc.SetFontSize(printer.FontTall)
		}
		doc.KeyValue(l.Label, l.Value)
		if l.Large {
			doc.SetFontSize(printer.FontNormal)
		}
		if l.Strong {
			doc.SetBold(false)
		}
	}
	doc.Separator('-')

	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Thank you for your purchase!").
		Text("Served by: " + r.ServedBy)
	if rr.header.Footer != "" {
		doc.Text(rr.header.Footer)
	}
	if opts.QRData != "" {
		if img, err := printer.QRImage(opts.QRData, 192); err == nil {
			doc.LineFeed().Raster(printer.NewRaster(img, opts.imageWidth()))
		}
	}
	doc.SetAlign(printer.AlignLeft).FeedLines(3)

	if opts.CutPaper {
		doc.Cut()
	}
	if opts.OpenDrawer {
		doc.OpenDrawer()
	}
	return doc.Bytes()
}

func (rr *ReceiptRenderer) escPosHeader(doc *printer.Document, width int) {
	doc.SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(printer.Truncate(rr.header.StoreName, width/2)).
		SetFontSize(printer.FontNormal).
		SetBold(false)
	if rr.header.Tagline != "" {
		doc.Text(printer.Truncate(rr.header.Tagline, width))
	}
	if rr.header.Subtitle != "" {
		doc.Text(printer.Truncate(rr.header.Subtitle, width))
	}
}

func (rr *ReceiptRenderer) escPosImage(doc *printer.Document, data []byte, maxWidth int) {
	if len(data) == 0 {
		return
	}
	img, err := printer.DecodeImage(data)
	if err != nil {
		return
	}
	doc.Raster(printer.NewRaster(img, maxWidth))
}

// RenderPlainText lays the receipt out in fixed-width text without control codes.
func (rr *ReceiptRenderer) RenderPlainText(r entity.Receipt) string {
	w := rr.textWidth
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	sep := func(c string) { line(strings.Repeat(c, w)) }

	line(printer.Center(rr.header.StoreName, w))
	if rr.header.Tagline != "" {
		line(printer.Center(rr.header.Tagline, w))
	}
	if rr.header.Subtitle != "" {
		line(printer.Center(rr.header.Subtitle, w))
	}
	line("")
	line(printer.Center("SALES RECEIPT", w))
	line(printer.Truncate("Invoice: "+r.InvoiceNo, w))
	line(printer.Truncate(r.TimestampLabel, w))
	sep("=")
	line(printer.PadBetween("Customer:", r.CustomerName, w))
	line(printer.PadBetween("Payment:", r.PaymentMethod, w))
	sep("-")
	for _, it := range r.Items {
		line(printer.Truncate(it.Name, w))
		line(printer.PadBetween(rr.itemDetail(it), rr.money(it.LineTotal), w))
	}
	sep("-")
	for _, l := range rr.totals(r) {
		line(printer.PadBetween(l.Label, l.Value, w))
	}
	sep("=")
	line(printer.Center("Thank you for your purchase!", w))
	line(printer.Center("Served by: "+r.ServedBy, w))
	if rr.header.Footer != "" {
		line(printer.Center(rr.header.Footer, w))
	}
	return b.String()
}

var receiptHTML = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Receipt {{.Receipt.InvoiceNo}}</title>
<style>
@page { size: 80mm auto; margin: 0; }
body { width: 80mm; margin: 0; padding: 4mm; box-sizing: border-box; font-family: "Courier New", monospace; font-size: 12px; color: #000; }
.center { text-align: center; }
.store { font-size: 18px; font-weight: bold; }
.title { font-weight: bold; margin-top: 6px; }
.sep { border-top: 1px dashed #000; margin: 6px 0; }
table { width: 100%; border-collapse: collapse; }
td { vertical-align: top; padding: 1px 0; }
td.amt { text-align: right; white-space: nowrap; }
.detail { padding-left: 8px; }
.strong { font-weight: bold; }
.large { font-size: 15px; }
img.logo { max-width: 60mm; }
</style>
</head>
<body>
<div class="center">
{{if .Logo}}<img class="logo" src="{{.Logo}}" alt="">{{end}}
<div class="store">{{.Header.StoreName}}</div>
{{if .Header.Tagline}}<div>{{.Header.Tagline}}</div>{{end}}
{{if .Header.Subtitle}}<div>{{.Header.Subtitle}}</div>{{end}}
<div class="title">SALES RECEIPT</div>
<div>Invoice: {{.Receipt.InvoiceNo}}</div>
<div>{{.Receipt.TimestampLabel}}</div>
</div>
<div class="sep"></div>
<table>
<tr><td>Customer:</td><td class="amt">{{.Receipt.CustomerName}}</td></tr>
<tr><td>Payment:</td><td class="amt">{{.Receipt.PaymentMethod}}</td></tr>
</table>
<div class="sep"></div>
<table>
{{range .Items}}<tr><td colspan="2">{{.Name}}</td></tr>
<tr><td class="detail">{{.Detail}}</td><td class="amt">{{.Total}}</td></tr>
{{end}}</table>
<div class="sep"></div>
<table>
{{range .Totals}}<tr class="{{if .Strong}}strong{{end}}{{if .Large}} large{{end}}"><td>{{.Label}}</td><td class="amt">{{.Value}}</td></tr>
{{end}}</table>
<div class="sep"></div>
<div class="center">
<div>Thank you for your purchase!</div>
<div>Served by: {{.Receipt.ServedBy}}</div>
{{if .Header.Footer}}<div>{{.Header.Footer}}</div>{{end}}
</div>
</body>
</html>
`))

type htmlItem struct {
	Name   string
	Detail string
	Total  string
}

// RenderHTML produces a standalone 80mm document. Images are inlined only.
func (rr *ReceiptRenderer) RenderHTML(r entity.Receipt) string {
	items := make([]htmlItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, htmlItem{
			Name:   it.Name,
			Detail: strings.TrimSpace(rr.itemDetail(it)),
			Total:  rr.money(it.LineTotal),
		})
	}

	var buf bytes.Buffer
	err := receiptHTML.Execute(&buf, struct {
		Header  entity.ReceiptHeader
		Receipt entity.Receipt
		Items   []htmlItem
		Totals  []totalLine
		Logo    template.URL
	}{rr.header, r, items, rr.totals(r), rr.logoURI})
	if err != nil {
		// Only reachable on a writer error, which bytes.Buffer never returns.
		return ""
	}
	return buf.String()
}
