// Package repo reads stored module documents back and persists unified ones
package repo

import (
	"context"
	"strings"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/chunk"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/modkit/repokit"
	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/unify/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the unification read surface
type Storage interface {
	// ModuleDocs returns the raw structured documents of a run keyed by
	// customer then module code, restricted to the given module list
	ModuleDocs(ctx context.Context, runID int64, customerIDs []int64, modules []string) (map[int64]map[string]string, error)
}

// ModuleDocs implements Storage
func (s *pg) ModuleDocs(ctx context.Context, runID int64, customerIDs []int64, modules []string) (map[int64]map[string]string, error) {
	out := make(map[int64]map[string]string, len(customerIDs))

	for _, sub := range chunk.Split(customerIDs, chunk.DefaultSize) {
		args := make([]any, 0, 1+len(sub)+len(modules))
		args = append(args, runID)
		args = append(args, chunk.Args(sub)...)
		for _, m := range modules {
			args = append(args, m)
		}

		rs, err := s.q.Query(ctx, `
			SELECT customer_id, module_code, structured_doc
			FROM ecs_customer_rpt_modules
			WHERE run_id = $1
			  AND customer_id IN (`+chunk.Placeholders(len(sub), 2)+`)
			  AND module_code IN (`+chunk.Placeholders(len(modules), 2+len(sub))+`)
		`, args...)
		if err != nil {
			return nil, perr.FromPostgres(err, "module document read-back failed")
		}

		err = func() error {
			defer rs.Close()
			for rs.Next() {
				var cid int64
				var code, doc string
				if err := rs.Scan(&cid, &code, &doc); err != nil {
					return perr.FromPostgres(err, "module document scan failed")
				}
				if out[cid] == nil {
					out[cid] = make(map[string]string, len(modules))
				}
				out[cid][code] = doc
			}
			return rs.Err()
		}()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Writer persists unified documents in chunked transactions with the same
// conflict handling as the module writer
type Writer struct {
	tx    repokit.TxRunner
	chunk int
	every int
}

// NewWriter constructs a Writer; non-positive sizes use the bulk defaults
func NewWriter(tx repokit.TxRunner, chunkSize, progressEvery int) *Writer {
	return &Writer{tx: tx, chunk: chunkSize, every: progressEvery}
}

// InsertUnifiedDocs implements domain.WriterPort
func (w *Writer) InsertUnifiedDocs(ctx context.Context, rows []domain.UnifiedRow, onProgress func(written int)) (int, error) {
	return repokit.BulkInsert(ctx, w.tx, rows, repokit.BulkOptions{
		ChunkSize:     w.chunk,
		ProgressEvery: w.every,
		OnProgress:    onProgress,
	}, func(q repokit.Queryer, batch []domain.UnifiedRow) error {
		var sb strings.Builder
		sb.WriteString(`
			INSERT INTO ecs_customer_rpt
				(run_id, customer_id, structured_doc, markup_doc, generated_at)
			VALUES `)
		args := make([]any, 0, len(batch)*5)
		for i, r := range batch {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('(')
			sb.WriteString(chunk.Placeholders(5, i*5+1))
			sb.WriteByte(')')
			args = append(args, r.RunID, r.CustomerID, r.StructuredDoc, r.MarkupDoc, r.GeneratedAt)
		}
		sb.WriteString(` ON CONFLICT (run_id, customer_id) DO NOTHING`)

		if _, err := q.Exec(ctx, sb.String(), args...); err != nil {
			return perr.FromPostgres(err, "unified document insert failed")
		}
		return nil
	})
}
