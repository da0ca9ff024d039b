// Package service implements the unification merger: after every module
// document of a run exists, it folds the per-module payloads into one
// combined document per customer.
package service

import (
	"time"

	"context"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/docval"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/logger"
	rptdomain "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/domain"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/unify/domain"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/unify/repo"
	wldomain "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/worklist/domain"
)

// Service drives the unification stage of a run
type Service struct {
	worklist wldomain.ReaderPort
	store    repo.Storage
	writer   domain.WriterPort
	modules  []string
	now      func() time.Time
}

// New constructs the merger; an empty modules list means the default order
func New(worklist wldomain.ReaderPort, store repo.Storage, writer domain.WriterPort, modules []string) *Service {
	if len(modules) == 0 {
		modules = rptdomain.Modules()
	}
	return &Service{
		worklist: worklist,
		store:    store,
		writer:   writer,
		modules:  modules,
		now:      time.Now,
	}
}

// Run implements domain.RunnerPort
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
		Msg("unification starting")

	total := 0
	for batchNo := br.Min; batchNo <= br.Max; batchNo++ {
		n, err := s.processBatch(ctx, run, batchNo)
		if err != nil {
			return err
		}
		total += n
	}

	log.Info().Int("rows", total).Msg("unification complete")
	return nil
}

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

	docs, err := s.store.ModuleDocs(ctx, run.ID, ids, s.modules)
	if err != nil {
		return 0, err
	}

	generatedAt := s.now().UTC().Format("2006-01-02T15:04:05Z")
	rows := make([]domain.UnifiedRow, 0, len(ids))
	for _, cid := range ids {
		modules := docval.Object()
		for _, code := range s.modules {
			modules.Set(code, extractPayload(docs[cid][code]))
		}
		env := domain.Envelope(run.AsOfDate, cid, modules)
		structured, markup := domain.Render(env)
		rows = append(rows, domain.UnifiedRow{
			RunID:         run.ID,
			CustomerID:    cid,
			StructuredDoc: structured,
			MarkupDoc:     markup,
			GeneratedAt:   generatedAt,
		})
	}

	written, err := s.writer.InsertUnifiedDocs(ctx, rows, func(written int) {
		log.Info().
			Int("batch_no", batchNo).
			Int("written", written).
			Int("total", len(rows)).
			Msg("unified insert progress")
	})
	if err != nil {
		return written, err
	}

	log.Info().Int("batch_no", batchNo).Int("rows", written).Msg("batch unified")
	return written, nil
}

// extractPayload pulls the payload out of one stored module document.
// An absent module yields an empty object so the unified shape stays
// constant; a malformed document is recovered with a warning payload
// for that module slot only
func extractPayload(doc string) docval.Value {
	if doc == "" {
		return docval.Object()
	}
	v, err := docval.Parse([]byte(doc))
	if err != nil {
		return docval.Object().Set("warning", docval.String("invalid structured_doc"))
	}
	payload, ok := v.Get("payload")
	if !ok {
		return docval.Object()
	}
	return payload
}
