package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/internal/infrastructure/lock"
	"github.com/sangkips/posprint/pkg/apperror"
	"github.com/sangkips/posprint/pkg/printer"
)

const printersCacheKey = "system_printers"

// Preview formats accepted by Preview.
const (
	PreviewHTML   = "html"
	PreviewText   = "text"
	PreviewEscPos = "escpos"
)

// PrinterServiceDeps wires the printer service.
type PrinterServiceDeps struct {
	Normalizer *ReceiptNormalizer
	Renderer   *ReceiptRenderer
	Dispatcher *PrintDispatcher
	Lister     PrinterLister
	Jobs       repository.PrintJobRepository
	Lock       lock.DeviceLock
	Options    RenderOptions
	QREnabled  bool
	// DeviceKey names the physical printer for locking.
	DeviceKey    string
	ListCacheTTL time.Duration
	Logger       *slog.Logger
}

// PrinterService handles receipt normalization, rendering and printing.
type PrinterService struct {
	normalizer *ReceiptNormalizer
	renderer   *ReceiptRenderer
	dispatcher *PrintDispatcher
	lister     PrinterLister
	jobs       repository.PrintJobRepository
	lock       lock.DeviceLock
	opts       RenderOptions
	qrEnabled  bool
	deviceKey  string
	cache      *gocache.Cache
	logger     *slog.Logger

	mu         sync.RWMutex
	lastResult *entity.PrintResult
	lastAt     time.Time
}

// NewPrinterService creates a new printer service.
func NewPrinterService(d PrinterServiceDeps) *PrinterService {
	s := &PrinterService{
		normalizer: d.Normalizer,
		renderer:   d.Renderer,
		dispatcher: d.Dispatcher,
		lister:     d.Lister,
		jobs:       d.Jobs,
		lock:       d.Lock,
		opts:       d.Options,
		qrEnabled:  d.QREnabled,
		deviceKey:  d.DeviceKey,
		logger:     d.Logger,
	}
	if s.normalizer == nil {
		s.normalizer = NewReceiptNormalizer(nil)
	}
	if s.lock == nil {
		s.lock = lock.NewLocalLock()
	}
	if s.deviceKey == "" {
		s.deviceKey = "default"
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	ttl := d.ListCacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	s.cache = gocache.New(ttl, 2*ttl)
	return s
}

// PrinterStatus describes the configured chain and the last print outcome.
type PrinterStatus struct {
	Strategies    []string            `json:"strategies"`
	Devices       []DeviceStatus      `json:"devices"`
	ColumnWidth   int                 `json:"column_width"`
	LastResult    *entity.PrintResult `json:"last_result,omitempty"`
	LastPrintedAt *time.Time          `json:"last_printed_at,omitempty"`
}

// GetStatus returns the strategy chain, whether the USB and network
// printers answer, and the most recent result.
func (s *PrinterService) GetStatus() *PrinterStatus {
	status := &PrinterStatus{ColumnWidth: s.opts.width(), Devices: s.dispatcher.Devices()}
	for _, k := range s.dispatcher.Strategies() {
		status.Strategies = append(status.Strategies, k.String())
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastResult != nil {
		last := *s.lastResult
		at := s.lastAt
		status.LastResult = &last
		status.LastPrintedAt = &at
	}
	return status
}

// Print normalizes a raw sale payload and prints it.
func (s *PrinterService) Print(ctx context.Context, raw map[string]any) (entity.Receipt, entity.PrintResult) {
	receipt := s.normalizer.Normalize(raw)
	return receipt, s.PrintReceipt(ctx, receipt)
}

// PrintReceipt prints an already normalized receipt. An empty receipt fails
// without touching any device.
func (s *PrinterService) PrintReceipt(ctx context.Context, r entity.Receipt) entity.PrintResult {
	return s.printReceipt(ctx, "receipt", r)
}

func (s *PrinterService) printReceipt(ctx context.Context, kind string, r entity.Receipt) entity.PrintResult {
	if r.IsEmpty() {
		result := entity.PrintResult{
			Attempts: []entity.PrintAttemptResult{},
			Err:      ErrEmptyReceipt,
			Error:    ErrEmptyReceipt.Error(),
		}
		s.logger.Warn("refusing to print empty receipt", "reference", r.InvoiceNo)
		return result
	}
	doc := &receiptDocument{kind: kind, receipt: r, renderer: s.renderer, opts: s.renderOptions(r)}
	return s.dispatch(ctx, doc, r.Total, r.ServedBy)
}

// TestPrint prints a synthetic one item receipt through the normal chain.
func (s *PrinterService) TestPrint(ctx context.Context) (entity.Receipt, entity.PrintResult) {
	receipt := s.normalizer.Normalize(map[string]any{
		"invoiceNo":    fmt.Sprintf("TEST-%d", time.Now().UnixMilli()),
		"customerName": "Test Customer",
		"servedBy":     "System",
		"items": []any{
			map[string]any{"name": "Test Item", "quantity": 1, "price": 1},
		},
	})
	return receipt, s.printReceipt(ctx, "test", receipt)
}

// PrintLabel prints a product label. The barcode comes from the request or
// is generated from the product id.
func (s *PrinterService) PrintLabel(ctx context.Context, req entity.LabelRequest) (string, entity.PrintResult, error) {
	barcode, err := resolveLabelBarcode(req)
	if err != nil {
		return "", entity.PrintResult{}, err
	}
	doc, err := newLabelDocument(s.renderer, req, barcode, s.opts)
	if err != nil {
		return "", entity.PrintResult{}, apperror.NewBadRequestError(err.Error())
	}
	return barcode, s.dispatch(ctx, doc, req.Price, ""), nil
}

func resolveLabelBarcode(req entity.LabelRequest) (string, error) {
	switch {
	case req.Barcode != "":
		code, err := printer.CompleteEAN13(req.Barcode)
		if err != nil {
			return "", apperror.NewBadRequestError(err.Error())
		}
		return code, nil
	case req.ProductID > 0:
		code, err := printer.ProductBarcode(req.ProductID)
		if err != nil {
			return "", apperror.NewBadRequestError(err.Error())
		}
		return code, nil
	}
	return "", apperror.NewBadRequestError("barcode or productId is required")
}

// ListAvailablePrinters returns OS printers, cached for a short TTL.
func (s *PrinterService) ListAvailablePrinters(ctx context.Context) ([]printer.SystemPrinter, error) {
	if cached, ok := s.cache.Get(printersCacheKey); ok {
		return cached.([]printer.SystemPrinter), nil
	}
	if s.lister == nil {
		return []printer.SystemPrinter{}, nil
	}
	printers, err := s.lister.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list printers: %w", err)
	}
	s.cache.SetDefault(printersCacheKey, printers)
	return printers, nil
}

// Preview renders a raw payload without printing it.
func (s *PrinterService) Preview(raw map[string]any, format string) (entity.Receipt, []byte, string, error) {
	receipt := s.normalizer.Normalize(raw)
	switch format {
	case PreviewHTML, "":
		return receipt, []byte(s.renderer.RenderHTML(receipt)), "text/html; charset=utf-8", nil
	case PreviewText:
		return receipt, []byte(s.renderer.RenderPlainText(receipt)), "text/plain; charset=utf-8", nil
	case PreviewEscPos:
		return receipt, s.renderer.RenderEscPos(receipt, s.renderOptions(receipt)), "application/octet-stream", nil
	}
	return receipt, nil, "", apperror.NewBadRequestError("format must be html, text or escpos")
}

func (s *PrinterService) renderOptions(r entity.Receipt) RenderOptions {
	opts := s.opts
	if s.qrEnabled {
		opts.QRData = r.InvoiceNo
	}
	return opts
}

func (s *PrinterService) dispatch(ctx context.Context, doc PrintDocument, total float64, servedBy string) entity.PrintResult {
	start := time.Now()

	var result entity.PrintResult
	release, err := s.lock.Acquire(ctx, s.deviceKey)
	if err != nil {
		result = entity.PrintResult{
			Attempts: []entity.PrintAttemptResult{},
			Err:      fmt.Errorf("%w: waiting for printer: %v", ErrTransmissionTimeout, err),
		}
		result.Error = result.Err.Error()
	} else {
		result = s.dispatcher.Dispatch(ctx, doc)
		release()
	}

	s.mu.Lock()
	last := result
	s.lastResult = &last
	s.lastAt = time.Now()
	s.mu.Unlock()

	s.recordJob(ctx, doc, result, total, servedBy, time.Since(start))
	return result
}

func (s *PrinterService) recordJob(ctx context.Context, doc PrintDocument, result entity.PrintResult, total float64, servedBy string, elapsed time.Duration) {
	if s.jobs == nil {
		return
	}
	attempts, err := json.Marshal(result.Attempts)
	if err != nil {
		attempts = []byte("[]")
	}
	job := &entity.PrintJob{
		Kind:         doc.Kind(),
		Reference:    doc.Reference(),
		Success:      result.Success,
		StrategyUsed: result.StrategyUsed,
		Error:        result.Error,
		Attempts:     string(attempts),
		Total:        total,
		ServedBy:     servedBy,
		DurationMS:   elapsed.Milliseconds(),
		CreatedAt:    time.Now(),
	}
	// History is best effort and must not outlive a cancelled request.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.jobs.Create(rctx, job); err != nil {
		s.logger.Warn("failed to record print job", "reference", job.Reference, "error", err)
	}
}
