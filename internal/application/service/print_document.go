package service

import (
	"fmt"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
)

type receiptDocument struct {
	kind     string
	receipt  entity.Receipt
	renderer *ReceiptRenderer
	opts     RenderOptions
}

func (d *receiptDocument) Kind() string      { return d.kind }
func (d *receiptDocument) Reference() string { return d.receipt.InvoiceNo }
func (d *receiptDocument) EscPos() []byte    { return d.renderer.RenderEscPos(d.receipt, d.opts) }
func (d *receiptDocument) PlainText() string { return d.renderer.RenderPlainText(d.receipt) }
func (d *receiptDocument) HTML() string      { return d.renderer.RenderHTML(d.receipt) }

type labelDocument struct {
	label    entity.LabelRequest
	barcode  string
	escpos   []byte
	renderer *ReceiptRenderer
}

func newLabelDocument(rr *ReceiptRenderer, l entity.LabelRequest, barcode string, opts RenderOptions) (*labelDocument, error) {
	data, err := rr.RenderLabelEscPos(l, barcode, opts)
	if err != nil {
		return nil, err
	}
	return &labelDocument{label: l, barcode: barcode, escpos: data, renderer: rr}, nil
}

func (d *labelDocument) Kind() string      { return "label" }
func (d *labelDocument) Reference() string { return d.barcode }
func (d *labelDocument) EscPos() []byte    { return d.escpos }
func (d *labelDocument) PlainText() string { return d.renderer.RenderLabelText(d.label, d.barcode) }
func (d *labelDocument) HTML() string      { return d.renderer.RenderLabelHTML(d.label, d.barcode) }

// BuildStrategyChain orders the available strategies by name
// ("usb", "network", "spool", "dialog"). Duplicates are ignored.
func BuildStrategyChain(order []string, available map[enum.PrintStrategy]PrintStrategy) ([]PrintStrategy, error) {
	chain := make([]PrintStrategy, 0, len(order))
	seen := make(map[enum.PrintStrategy]bool)
	for _, name := range order {
		kind, err := enum.ParsePrintStrategy(name)
		if err != nil {
			return nil, err
		}
		if seen[kind] {
			continue
		}
		s, ok := available[kind]
		if !ok {
			return nil, fmt.Errorf("print strategy %s is not available", kind)
		}
		seen[kind] = true
		chain = append(chain, s)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no print strategies configured")
	}
	return chain, nil
}
