package repository

import (
	"context"
	"time"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/pkg/pagination"
)

// PrintJobFilter narrows print job listings
type PrintJobFilter struct {
	Kind    string
	Success *bool
	From    *time.Time
	To      *time.Time
}

// PrintJobRepository defines the interface for print job history
type PrintJobRepository interface {
	Create(ctx context.Context, job *entity.PrintJob) error
	// List returns jobs newest first with page-based pagination.
	List(ctx context.Context, filter PrintJobFilter, params *pagination.PaginationParams) ([]entity.PrintJob, int64, error)
	// ListAll returns every job matching filter, oldest first, for exports.
	ListAll(ctx context.Context, filter PrintJobFilter) ([]entity.PrintJob, error)
}
