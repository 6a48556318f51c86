package repository

import (
	domainRepo "github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/pkg/pagination"
	"gorm.io/gorm"
)

// Paginate returns a GORM scope applying page-based offset and limit.
func Paginate(params *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		params.Validate()
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}

// PrintJobFilterScope returns a GORM scope applying the optional filters.
// To is exclusive.
func PrintJobFilterScope(f domainRepo.PrintJobFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Kind != "" {
			db = db.Where("kind = ?", f.Kind)
		}
		if f.Success != nil {
			db = db.Where("success = ?", *f.Success)
		}
		if f.From != nil {
			db = db.Where("created_at >= ?", *f.From)
		}
		if f.To != nil {
			db = db.Where("created_at < ?", *f.To)
		}
		return db
	}
}
