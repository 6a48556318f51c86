package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sangkips/posprint/internal/domain/entity"
)

const (
	DefaultCustomerName  = "Walk-in Customer"
	DefaultPaymentMethod = "Cash"
	DefaultServedBy      = "Staff"
	DefaultItemName      = "Item"

	timestampLayout = "2006-01-02 15:04:05"
)

// Accepted spellings per field, first match wins.
var (
	aliasInvoiceNo = []string{"invoiceNo", "invoice_no", "invoiceNumber", "invoice"}
	aliasTimestamp = []string{"timestampLabel", "timestamp", "date", "createdAt", "created_at"}
	aliasCustomer  = []string{"customerName", "customer_name", "customer"}
	aliasPayment   = []string{"paymentMethod", "payment_method", "payment"}
	aliasServedBy  = []string{"servedBy", "served_by", "user", "cashier"}
	aliasItems     = []string{"items", "cart", "lineItems", "line_items"}
	aliasSubtotal  = []string{"subtotal", "subTotal", "sub_total"}
	aliasTax       = []string{"taxAmount", "tax_amount", "tax"}
	aliasTaxPct    = []string{"taxPercentage", "tax_percentage", "taxPct", "taxRate"}
	aliasDiscount  = []string{"discountAmount", "discount_amount", "discount"}
	aliasTotal     = []string{"total", "grandTotal", "grand_total"}
	aliasPaid      = []string{"amountPaid", "amount_paid", "paid"}
	aliasChange    = []string{"changeDue", "change_due", "change"}

	aliasItemName  = []string{"name", "productName", "product_name", "title"}
	aliasItemQty   = []string{"quantity", "qty", "cartQuantity"}
	aliasItemPrice = []string{"unitPrice", "unit_price", "price"}
	aliasItemTotal = []string{"lineTotal", "line_total", "total", "cartTotal"}
)

// ReceiptNormalizer turns loosely shaped sale payloads into a Receipt.
type ReceiptNormalizer struct {
	now func() time.Time
}

// NewReceiptNormalizer creates a normalizer; now may be nil to use the wall clock.
func NewReceiptNormalizer(now func() time.Time) *ReceiptNormalizer {
	if now == nil {
		now = time.Now
	}
	return &ReceiptNormalizer{now: now}
}

// NormalizeReceipt normalizes raw against the wall clock.
func NormalizeReceipt(raw map[string]any) entity.Receipt {
	return NewReceiptNormalizer(nil).Normalize(raw)
}

// HasServedBy reports whether raw already names the cashier under any
// accepted spelling.
func HasServedBy(raw map[string]any) bool {
	return stringField(raw, aliasServedBy) != ""
}

// Normalize never fails: missing or unparseable fields fall back to their
// defaults, derivable amounts are recomputed and every amount is clamped to
// be non-negative.
func (n *ReceiptNormalizer) Normalize(raw map[string]any) entity.Receipt {
	now := n.now()

	r := entity.Receipt{
		InvoiceNo:      stringField(raw, aliasInvoiceNo),
		TimestampLabel: stringField(raw, aliasTimestamp),
		CustomerName:   stringField(raw, aliasCustomer),
		PaymentMethod:  stringField(raw, aliasPayment),
		ServedBy:       stringField(raw, aliasServedBy),
	}
	if r.InvoiceNo == "" {
		r.InvoiceNo = fmt.Sprintf("INV-%d", now.UnixMilli())
	}
	if r.TimestampLabel == "" {
		r.TimestampLabel = now.Format(timestampLayout)
	}
	if r.CustomerName == "" {
		r.CustomerName = DefaultCustomerName
	}
	if r.PaymentMethod == "" {
		r.PaymentMethod = DefaultPaymentMethod
	}
	if r.ServedBy == "" {
		r.ServedBy = DefaultServedBy
	}

	r.Items = normalizeItems(lookup(raw, aliasItems))

	itemsSum := 0.0
	for _, it := range r.Items {
		itemsSum += it.LineTotal
	}

	r.Subtotal = amountOr(raw, aliasSubtotal, itemsSum)
	r.DiscountAmount = amountOr(raw, aliasDiscount, 0)
	r.TaxPercentage = amountOr(raw, aliasTaxPct, 0)
	taxBase := math.Max(0, r.Subtotal-r.DiscountAmount)
	r.TaxAmount = amountOr(raw, aliasTax, taxBase*r.TaxPercentage/100)
	r.Total = amountOr(raw, aliasTotal, r.Subtotal-r.DiscountAmount+r.TaxAmount)
	r.AmountPaid = amountOr(raw, aliasPaid, r.Total)
	r.ChangeDue = amountOr(raw, aliasChange, r.AmountPaid-r.Total)

	return r
}

func normalizeItems(v any) []entity.ReceiptLineItem {
	list, ok := v.([]any)
	if !ok {
		return []entity.ReceiptLineItem{}
	}

	items := make([]entity.ReceiptLineItem, 0, len(list))
	for _, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		qty, _ := numberField(m, aliasItemQty)
		if qty <= 0 {
			continue
		}
		price, _ := numberField(m, aliasItemPrice)
		price = nonNegative(price)

		name := stringField(m, aliasItemName)
		if name == "" {
			name = DefaultItemName
		}
		items = append(items, entity.ReceiptLineItem{
			Name:      name,
			Quantity:  qty,
			UnitPrice: round2(price),
			LineTotal: amountOr(m, aliasItemTotal, qty*price),
		})
	}
	return items
}

// amountOr returns the supplied amount when present and numeric, otherwise
// fallback; either way rounded to cents and clamped at zero.
func amountOr(m map[string]any, keys []string, fallback float64) float64 {
	if v, ok := numberField(m, keys); ok {
		return round2(nonNegative(v))
	}
	return round2(nonNegative(fallback))
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func lookup(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// numberField reports ok=false when the field is absent or not a finite number.
func numberField(m map[string]any, keys []string) (float64, bool) {
	var f float64
	switch v := lookup(m, keys).(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringField(m map[string]any, keys []string) string {
	switch v := lookup(m, keys).(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}
