package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/domain/entity"
	domainRepo "github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/pkg/pagination"
)

// memoryPrintJobRepository keeps a bounded history in process when no
// database is configured.
type memoryPrintJobRepository struct {
	mu    sync.RWMutex
	jobs  []entity.PrintJob
	limit int
}

// NewMemoryPrintJobRepository keeps at most limit jobs, dropping the oldest.
func NewMemoryPrintJobRepository(limit int) domainRepo.PrintJobRepository {
	if limit <= 0 {
		limit = 500
	}
	return &memoryPrintJobRepository{limit: limit}
}

func (r *memoryPrintJobRepository) Create(ctx context.Context, job *entity.PrintJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, *job)
	if len(r.jobs) > r.limit {
		r.jobs = r.jobs[len(r.jobs)-r.limit:]
	}
	return nil
}

func (r *memoryPrintJobRepository) List(ctx context.Context, filter domainRepo.PrintJobFilter, params *pagination.PaginationParams) ([]entity.PrintJob, int64, error) {
	all, _ := r.ListAll(ctx, filter)
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	params.Validate()
	total := int64(len(all))
	start := params.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.PerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *memoryPrintJobRepository) ListAll(ctx context.Context, filter domainRepo.PrintJobFilter) ([]entity.PrintJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.PrintJob, 0, len(r.jobs))
	for _, j := range r.jobs {
		if filter.Kind != "" && j.Kind != filter.Kind {
			continue
		}
		if filter.Success != nil && j.Success != *filter.Success {
			continue
		}
		if filter.From != nil && j.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !j.CreatedAt.Before(*filter.To) {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}
