package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/pkg/apperror"
	"github.com/sangkips/posprint/pkg/pagination"
	"github.com/xuri/excelize/v2"
)

var errHistoryDisabled = apperror.NewAppError(http.StatusServiceUnavailable, "Print history is not enabled")

// ListJobs returns print history newest first.
func (s *PrinterService) ListJobs(ctx context.Context, filter repository.PrintJobFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.PrintJob], error) {
	if s.jobs == nil {
		return nil, errHistoryDisabled
	}
	params.Validate()

	jobs, total, err := s.jobs.List(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("list print jobs: %w", err)
	}
	return pagination.NewPaginatedResult(jobs, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// ExportJobsXLSX writes the filtered print history to a workbook.
func (s *PrinterService) ExportJobsXLSX(ctx context.Context, filter repository.PrintJobFilter) ([]byte, error) {
	if s.jobs == nil {
		return nil, errHistoryDisabled
	}
	start := time.Now()

	jobs, err := s.jobs.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query print jobs: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Print Jobs"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Printed At", "Kind", "Reference", "Success", "Strategy", "Total", "Served By", "Duration (ms)", "Error"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, j := range jobs {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, j.CreatedAt.Format(timestampLayout))
		write(2, j.Kind)
		write(3, j.Reference)
		write(4, j.Success)
		write(5, j.StrategyUsed)
		write(6, j.Total)
		write(7, j.ServedBy)
		write(8, j.DurationMS)
		write(9, j.Error)
	}

	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "B", 10)
	_ = f.SetColWidth(sheet, "C", "C", 24)
	_ = f.SetColWidth(sheet, "D", "H", 14)
	_ = f.SetColWidth(sheet, "I", "I", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("print jobs exported", "rows", len(jobs), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}
