package request

import (
	"time"

	"github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/pkg/pagination"
)

// PrintLabelRequest is the request body for printing product labels.
type PrintLabelRequest struct {
	Name      string  `json:"name" binding:"required,max=100"`
	Price     float64 `json:"price" binding:"gte=0"`
	ProductID int     `json:"productId" binding:"gte=0"`
	Barcode   string  `json:"barcode" binding:"omitempty,numeric,min=12,max=13"`
	Copies    int     `json:"copies" binding:"gte=0,lte=50"`
}

// PreviewQuery selects the preview rendering.
type PreviewQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=html text escpos"`
}

// ListPrintJobsQuery filters print history. Dates are YYYY-MM-DD.
type ListPrintJobsQuery struct {
	Kind    string `form:"kind" binding:"omitempty,oneof=receipt test label"`
	Success *bool  `form:"success"`
	From    string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To      string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	pagination.PaginationParams
}

// Filter converts the query to a repository filter. The To day is included.
func (q *ListPrintJobsQuery) Filter() repository.PrintJobFilter {
	f := repository.PrintJobFilter{Kind: q.Kind, Success: q.Success}
	if t, err := time.Parse("2006-01-02", q.From); err == nil {
		f.From = &t
	}
	if t, err := time.Parse("2006-01-02", q.To); err == nil {
		end := t.AddDate(0, 0, 1)
		f.To = &end
	}
	return f
}
