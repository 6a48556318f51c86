package repository

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/posprint/internal/domain/entity"
	domainRepo "github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/pkg/pagination"
)

func TestMemoryPrintJobRepositoryListsNewestFirst(t *testing.T) {
	repo := NewMemoryPrintJobRepository(10)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		job := &entity.PrintJob{Kind: "receipt", Reference: string(rune('A' + i)), Success: i != 1, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Create(ctx, job); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	jobs, total, err := repo.List(ctx, domainRepo.PrintJobFilter{}, &pagination.PaginationParams{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(jobs) != 2 || jobs[0].Reference != "C" {
		t.Fatalf("unexpected page total=%d jobs=%+v", total, jobs)
	}

	failed := false
	jobs, _, _ = repo.List(ctx, domainRepo.PrintJobFilter{Success: &failed}, pagination.DefaultPagination())
	if len(jobs) != 1 || jobs[0].Reference != "B" {
		t.Fatalf("unexpected filtered jobs %+v", jobs)
	}
}

func TestMemoryPrintJobRepositoryDropsOldest(t *testing.T) {
	repo := NewMemoryPrintJobRepository(2)
	ctx := context.Background()
	for _, ref := range []string{"A", "B", "C"} {
		_ = repo.Create(ctx, &entity.PrintJob{Kind: "receipt", Reference: ref})
	}
	all, _ := repo.ListAll(ctx, domainRepo.PrintJobFilter{})
	if len(all) != 2 || all[0].Reference != "B" {
		t.Fatalf("unexpected jobs %+v", all)
	}
}
