package repository

import (
	"context"

	"github.com/sangkips/posprint/internal/domain/entity"
	domainRepo "github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/pkg/pagination"
	"gorm.io/gorm"
)

type printJobRepository struct {
	db *gorm.DB
}

// NewPrintJobRepository creates a new print job repository
func NewPrintJobRepository(db *gorm.DB) domainRepo.PrintJobRepository {
	return &printJobRepository{db: db}
}

func (r *printJobRepository) Create(ctx context.Context, job *entity.PrintJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *printJobRepository) List(ctx context.Context, filter domainRepo.PrintJobFilter, params *pagination.PaginationParams) ([]entity.PrintJob, int64, error) {
	var jobs []entity.PrintJob
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PrintJob{}).Scopes(PrintJobFilterScope(filter))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params)).
		Order("created_at DESC").
		Find(&jobs).Error

	return jobs, total, err
}

func (r *printJobRepository) ListAll(ctx context.Context, filter domainRepo.PrintJobFilter) ([]entity.PrintJob, error) {
	var jobs []entity.PrintJob
	err := r.db.WithContext(ctx).
		Scopes(PrintJobFilterScope(filter)).
		Order("created_at ASC").
		Find(&jobs).Error
	return jobs, err
}
