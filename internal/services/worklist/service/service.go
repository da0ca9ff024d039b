// Package service implements the worklist partitioner
package service

import (
	"context"
	"time"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/worklist/domain"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/worklist/repo"
)

// Service implements domain.ReaderPort over the worklist repo
type Service struct {
	store repo.Storage
	now   func() time.Time
}

// New constructs the worklist service
func New(store repo.Storage) *Service {
	return &Service{store: store, now: time.Now}
}

// LatestRun implements domain.ReaderPort; a run without an as-of-date
// resolves to the current date
func (s *Service) LatestRun(ctx context.Context) (domain.Run, error) {
	row, err := s.store.LatestRun(ctx)
	if err != nil {
		return domain.Run{}, err
	}
	asOf := s.now().UTC().Format("2006-01-02")
	if row.AsOf != nil {
		asOf = row.AsOf.Format("2006-01-02")
	}
	return domain.Run{ID: row.ID, AsOfDate: asOf}, nil
}

// BatchRange implements domain.ReaderPort
func (s *Service) BatchRange(ctx context.Context) (domain.BatchRange, error) {
	return s.store.BatchRange(ctx)
}

// Batch implements domain.ReaderPort; empty means the batch is skipped
func (s *Service) Batch(ctx context.Context, batchNo int) ([]int64, error) {
	return s.store.Batch(ctx, batchNo)
}
