// Package service implements the report run coordinator: it resolves the
// run once, walks batches in ascending order and drives every module
// builder in the fixed declared order, persisting through the idempotent
// bulk writer.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/logger"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/domain"
	wldomain "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/worklist/domain"
)

// Config tunes one coordinator instance. Modules is the authoritative
// generation order; builders missing from it never run
type Config struct {
	Modules []string

	// Workers bounds batch-level concurrency; <=1 runs batches sequentially
	Workers int
}

// Service drives one full generation run
type Service struct {
	worklist wldomain.ReaderPort
	builders map[string]domain.Builder
	order    []string
	writer   domain.DocWriterPort
	stats    domain.StatsPort
	workers  int
	now      func() time.Time
}

// New constructs the coordinator. Every module named in cfg.Modules must
// have a matching builder
func New(
	worklist wldomain.ReaderPort,
	builders []domain.Builder,
	writer domain.DocWriterPort,
	stats domain.StatsPort,
	cfg Config,
) (*Service, error) {
	byCode := make(map[string]domain.Builder, len(builders))
	for _, b := range builders {
		byCode[b.Code()] = b
	}
	order := cfg.Modules
	if len(order) == 0 {
		order = domain.Modules()
	}
	for _, code := range order {
		if _, ok := byCode[code]; !ok {
			return nil, perr.InvalidArgf("no builder registered for module %s", code)
		}
	}
	return &Service{
		worklist: worklist,
		builders: byCode,
		order:    order,
		writer:   writer,
		stats:    stats,
		workers:  cfg.Workers,
		now:      time.Now,
	}, nil
}

// Run implements domain.RunnerPort. A restart replays every batch and
// module from the start; already-written rows are dropped by the writer's
// conflict handling, so replay costs time but never correctness
func (s *Service) Run(ctx context.Context) error {
	run, err := s.worklist.LatestRun(ctx)
	if err != nil {
		return err
	}
	ctx = logger.WithRun(ctx, run.ID)

	br, err := s.worklist.BatchRange(ctx)
	if err != nil {
		return err
	}

	log := logger.C(ctx)
	log.Info().
		Int64("run_id", run.ID).
		Str("as_of_date", run.AsOfDate).
		Int("batch_min", br.Min).
		Int("batch_max", br.Max).
		Strs("modules", s.order).
		Int("workers", s.workers).
		Msg("report run starting")

	started := s.now()
	var totalRows atomic.Int64
	batches := 0

	if s.workers <= 1 {
		for batchNo := br.Min; batchNo <= br.Max; batchNo++ {
			n, err := s.processBatch(ctx, run, batchNo)
			if err != nil {
				return err
			}
			totalRows.Add(int64(n))
			batches++
		}
	} else {
		batches = br.Max - br.Min + 1
		if err := s.runPool(ctx, run, br, &totalRows); err != nil {
			return err
		}
	}

	elapsed := s.now().Sub(started)
	if s.stats != nil {
		s.stats.RunDone(ctx, run.ID, batches, int(totalRows.Load()), elapsed.Milliseconds())
	}
	log.Info().
		Int("batches", batches).
		Int64("rows", totalRows.Load()).
		Dur("elapsed", elapsed).
		Msg("report run complete")
	return nil
}

// runPool fans batches out over a bounded worker pool. The first failure
// cancels the remaining batches; committed chunks stay put
func (s *Service) runPool(ctx context.Context, run wldomain.Run, br wldomain.BatchRange, totalRows *atomic.Int64) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, s.workers)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for batchNo := br.Min; batchNo <= br.Max; batchNo++ {
		select {
		case <-ctx.Done():
			wg.Wait()
			if firstErr != nil {
				return firstErr
			}
			return ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(batchNo int) {
			defer wg.Done()
			defer func() { <-sem }()
			n, err := s.processBatch(ctx, run, batchNo)
			if err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			totalRows.Add(int64(n))
		}(batchNo)
	}

	wg.Wait()
	return firstErr
}

// processBatch generates and persists every module document of one batch.
// Returns the number of rows handed to the writer
func (s *Service) processBatch(ctx context.Context, run wldomain.Run, batchNo int) (int, error) {
	log := logger.C(ctx)

	ids, err := s.worklist.Batch(ctx, batchNo)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		log.Info().Int("batch_no", batchNo).Msg("batch has no customers, skipping")
		return 0, nil
	}
	log.Info().Int("batch_no", batchNo).Int("customers", len(ids)).Msg("batch starting")

	generatedAt := s.now().UTC().Format("2006-01-02T15:04:05Z")
	total := 0

	for _, code := range s.order {
		moduleStart := s.now()
		docs, err := s.builders[code].Build(ctx, ids, run.AsOfDate)
		if err != nil {
			return total, perr.Wrapf(err, perr.ErrorCodeUnknown, "module %s build failed for batch %d", code, batchNo)
		}

		rows := make([]domain.DocumentRow, 0, len(ids))
		for _, cid := range ids {
			payload, ok := docs[cid]
			if !ok {
				payload = domain.WarningPayload("no data generated")
			}
			env := domain.Envelope(code, run.AsOfDate, cid, payload)
			structured, markup := domain.Render(code, env)
			rows = append(rows, domain.DocumentRow{
				RunID:         run.ID,
				CustomerID:    cid,
				ModuleCode:    code,
				StructuredDoc: structured,
				MarkupDoc:     markup,
				GeneratedAt:   generatedAt,
			})
		}

		written, err := s.writer.InsertModuleDocs(ctx, rows, func(written int) {
			log.Info().
				Int("batch_no", batchNo).
				Str("module", code).
				Int("written", written).
				Int("total", len(rows)).
				Msg("insert progress")
		})
		if err != nil {
			return total + written, perr.Wrapf(err, perr.ErrorCodeDB, "module %s insert failed for batch %d", code, batchNo)
		}
		total += written

		elapsed := s.now().Sub(moduleStart)
		if s.stats != nil {
			s.stats.ModuleDone(ctx, run.ID, batchNo, code, written, elapsed.Milliseconds())
		}
		log.Info().
			Int("batch_no", batchNo).
			Str("module", code).
			Int("rows", written).
			Dur("elapsed", elapsed).
			Msg("module complete")
	}

	log.Info().Int("batch_no", batchNo).Int("rows", total).Msg("batch finished")
	return total, nil
}
