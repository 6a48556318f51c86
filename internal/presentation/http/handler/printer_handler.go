package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/posprint/internal/application/service"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/presentation/http/dto/request"
	"github.com/sangkips/posprint/internal/presentation/http/dto/response"
)

const maxReceiptBody = 1 << 20

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

type printResponse struct {
	Receipt *entity.Receipt    `json:"receipt,omitempty"`
	Barcode string             `json:"barcode,omitempty"`
	Result  entity.PrintResult `json:"result"`
}

// decodeSale reads a loosely shaped sale payload. Numbers stay as
// json.Number so the normalizer sees exactly what the till sent.
func decodeSale(c *gin.Context) (map[string]any, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxReceiptBody))
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("body must be a JSON object")
	}
	return raw, nil
}

// Print normalizes the posted sale and prints it.
func (h *PrinterHandler) Print(c *gin.Context) {
	raw, err := decodeSale(c)
	if err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	if !service.HasServedBy(raw) {
		if name := GetUserName(c); name != "" {
			raw["servedBy"] = name
		}
	}

	receipt, result := h.printerService.Print(c.Request.Context(), raw)
	h.respond(c, "Receipt printed", printResponse{Receipt: &receipt, Result: result})
}

// TestPrint sends a test receipt through the strategy chain.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	receipt, result := h.printerService.TestPrint(c.Request.Context())
	h.respond(c, "Test page printed", printResponse{Receipt: &receipt, Result: result})
}

// PrintLabel prints product labels with an EAN-13 barcode.
func (h *PrinterHandler) PrintLabel(c *gin.Context) {
	var req request.PrintLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	barcode, result, err := h.printerService.PrintLabel(c.Request.Context(), entity.LabelRequest{
		Name:      req.Name,
		Price:     req.Price,
		ProductID: req.ProductID,
		Barcode:   req.Barcode,
		Copies:    req.Copies,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, "Label printed", printResponse{Barcode: barcode, Result: result})
}

func (h *PrinterHandler) respond(c *gin.Context, message string, body printResponse) {
	if !body.Result.Success {
		response.ErrorWithData(c, service.PrintErrorToAppError(body.Result.Err), body)
		return
	}
	response.OK(c, message, body)
}

// ListPrinters returns the printers installed on this machine.
func (h *PrinterHandler) ListPrinters(c *gin.Context) {
	printers, err := h.printerService.ListAvailablePrinters(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}
	response.OK(c, "Printers retrieved", printers)
}

// GetStatus returns the strategy chain and the last print outcome.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.printerService.GetStatus())
}

// Preview renders the posted sale without printing it.
func (h *PrinterHandler) Preview(c *gin.Context) {
	var q request.PreviewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	raw, err := decodeSale(c)
	if err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	_, body, contentType, err := h.printerService.Preview(raw, q.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, body)
}

// ListJobs returns paginated print history.
func (h *PrinterHandler) ListJobs(c *gin.Context) {
	var q request.ListPrintJobsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.printerService.ListJobs(c.Request.Context(), q.Filter(), &q.PaginationParams)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Print jobs retrieved", result)
}

// ExportJobs downloads print history as an XLSX workbook.
func (h *PrinterHandler) ExportJobs(c *gin.Context) {
	var q request.ListPrintJobsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	data, err := h.printerService.ExportJobsXLSX(c.Request.Context(), q.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("print-jobs-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
