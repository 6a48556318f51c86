package entity

// ReceiptHeader holds the store branding printed around a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Tagline   string `json:"tagline,omitempty"`
	Subtitle  string `json:"subtitle,omitempty"`
	Footer    string `json:"footer,omitempty"`
	Currency  string `json:"currency"`
}

// ReceiptLineItem represents a single line item on a receipt.
type ReceiptLineItem struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

// Receipt is a value object representing a normalized, printable sale.
// It is NOT a database entity; it is built from the caller's payload at print time.
type Receipt struct {
	InvoiceNo      string            `json:"invoiceNo"`
	TimestampLabel string            `json:"timestampLabel"`
	CustomerName   string            `json:"customerName"`
	PaymentMethod  string            `json:"paymentMethod"`
	Items          []ReceiptLineItem `json:"items"`
	Subtotal       float64           `json:"subtotal"`
	TaxAmount      float64           `json:"taxAmount"`
	TaxPercentage  float64           `json:"taxPercentage"`
	DiscountAmount float64           `json:"discountAmount"`
	Total          float64           `json:"total"`
	AmountPaid     float64           `json:"amountPaid"`
	ChangeDue      float64           `json:"changeDue"`
	ServedBy       string            `json:"servedBy"`
}

// IsEmpty reports whether the receipt has nothing to print.
func (r *Receipt) IsEmpty() bool {
	return len(r.Items) == 0
}

// LabelRequest describes a shelf/product label with an EAN-13 barcode.
type LabelRequest struct {
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price"`
	ProductID int     `json:"productId"`
	Barcode   string  `json:"barcode"`
	Copies    int     `json:"copies"`
}
