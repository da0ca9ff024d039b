package repo

import (
	"context"
	"strings"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/chunk"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/modkit/repokit"
	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/domain"
)

// Writer persists module documents in chunked transactions. Conflicting
// rows are dropped silently, which is what makes replaying a batch safe
type Writer struct {
	tx    repokit.TxRunner
	chunk int
	every int
}

// NewWriter constructs a Writer; non-positive sizes use the bulk defaults
func NewWriter(tx repokit.TxRunner, chunkSize, progressEvery int) *Writer {
	return &Writer{tx: tx, chunk: chunkSize, every: progressEvery}
}

// InsertModuleDocs implements domain.DocWriterPort
func (w *Writer) InsertModuleDocs(ctx context.Context, rows []domain.DocumentRow, onProgress func(written int)) (int, error) {
	return repokit.BulkInsert(ctx, w.tx, rows, repokit.BulkOptions{
		ChunkSize:     w.chunk,
		ProgressEvery: w.every,
		OnProgress:    onProgress,
	}, func(q repokit.Queryer, batch []domain.DocumentRow) error {
		var sb strings.Builder
		sb.WriteString(`
			INSERT INTO ecs_customer_rpt_modules
				(run_id, customer_id, module_code, structured_doc, markup_doc, generated_at)
			VALUES `)
		args := make([]any, 0, len(batch)*6)
		for i, r := range batch {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('(')
			sb.WriteString(chunk.Placeholders(6, i*6+1))
			sb.WriteByte(')')
			args = append(args, r.RunID, r.CustomerID, r.ModuleCode, r.StructuredDoc, r.MarkupDoc, r.GeneratedAt)
		}
		sb.WriteString(` ON CONFLICT (run_id, customer_id, module_code) DO NOTHING`)

		if _, err := q.Exec(ctx, sb.String(), args...); err != nil {
			return perr.FromPostgres(err, "module document insert failed")
		}
		return nil
	})
}
