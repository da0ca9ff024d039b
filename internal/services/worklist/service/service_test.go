package service

import (
	"context"
	"testing"
	"time"

	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/worklist/domain"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/worklist/repo"
)

type fakeStorage struct {
	run     repo.RunRow
	runErr  error
	rng     domain.BatchRange
	batches map[int][]int64
}

func (f *fakeStorage) LatestRun(context.Context) (repo.RunRow, error) { return f.run, f.runErr }
func (f *fakeStorage) BatchRange(context.Context) (domain.BatchRange, error) {
	return f.rng, nil
}
func (f *fakeStorage) Batch(_ context.Context, batchNo int) ([]int64, error) {
	return f.batches[batchNo], nil
}

func TestLatestRunUsesStoredAsOfDate(t *testing.T) {
	t.Parallel()

	asOf := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	s := New(&fakeStorage{run: repo.RunRow{ID: 7, AsOf: &asOf}})

	run, err := s.LatestRun(context.Background())
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if run.ID != 7 || run.AsOfDate != "2024-03-15" {
		t.Fatalf("got %+v", run)
	}
}

func TestLatestRunDefaultsAsOfDateToToday(t *testing.T) {
	t.Parallel()

	s := New(&fakeStorage{run: repo.RunRow{ID: 3}})
	s.now = func() time.Time {
		return time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC)
	}

	run, err := s.LatestRun(context.Background())
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if run.AsOfDate != "2024-06-01" {
		t.Fatalf("as-of not defaulted: %q", run.AsOfDate)
	}
}

func TestLatestRunPropagatesNotFound(t *testing.T) {
	t.Parallel()

	s := New(&fakeStorage{runErr: perr.NotFoundf("no report runs exist")})
	if _, err := s.LatestRun(context.Background()); err == nil {
		t.Fatal("want error when no run exists")
	}
}

func TestBatchPassthrough(t *testing.T) {
	t.Parallel()

	s := New(&fakeStorage{
		rng:     domain.BatchRange{Min: 1, Max: 3},
		batches: map[int][]int64{2: {101, 102}},
	})

	rng, err := s.BatchRange(context.Background())
	if err != nil || rng.Min != 1 || rng.Max != 3 {
		t.Fatalf("range=%+v err=%v", rng, err)
	}
	ids, err := s.Batch(context.Background(), 2)
	if err != nil || len(ids) != 2 || ids[0] != 101 {
		t.Fatalf("ids=%v err=%v", ids, err)
	}
	empty, err := s.Batch(context.Background(), 3)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty batch should yield no ids: %v", empty)
	}
}
