package repo

import (
	"context"
	"strings"
	"testing"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/store"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/domain"
)

type execCall struct {
	sql  string
	args []any
}

// captureTx records every Exec issued inside its transactions
type captureTx struct {
	calls []execCall
}

func (c *captureTx) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	c.calls = append(c.calls, execCall{sql: sql, args: args})
	return nil, nil
}
func (c *captureTx) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (c *captureTx) QueryRow(context.Context, string, ...any) store.Row       { return nil }
func (c *captureTx) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	return fn(c)
}

func docRows(n int) []domain.DocumentRow {
	out := make([]domain.DocumentRow, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.DocumentRow{
			RunID:         1,
			CustomerID:    int64(100 + i),
			ModuleCode:    domain.ModuleAccounts,
			StructuredDoc: "{}",
			MarkupDoc:     "<ACCOUNTS></ACCOUNTS>",
			GeneratedAt:   "2024-01-01T00:00:00Z",
		})
	}
	return out
}

func TestInsertModuleDocsMultiRowStatement(t *testing.T) {
	t.Parallel()

	tx := &captureTx{}
	w := NewWriter(tx, 0, 0)

	n, err := w.InsertModuleDocs(context.Background(), docRows(3), nil)
	if err != nil {
		t.Fatalf("InsertModuleDocs: %v", err)
	}
	if n != 3 {
		t.Fatalf("written=%d want 3", n)
	}
	if len(tx.calls) != 1 {
		t.Fatalf("execs=%d want 1", len(tx.calls))
	}

	sql := tx.calls[0].sql
	if !strings.Contains(sql, "INSERT INTO ecs_customer_rpt_modules") {
		t.Fatalf("wrong table: %s", sql)
	}
	if !strings.Contains(sql, "ON CONFLICT (run_id, customer_id, module_code) DO NOTHING") {
		t.Fatalf("conflict clause missing: %s", sql)
	}
	// three rows, six columns, consecutive placeholder numbering
	for _, ph := range []string{"($1,$2,$3,$4,$5,$6)", "($7,$8,$9,$10,$11,$12)", "($13,$14,$15,$16,$17,$18)"} {
		if !strings.Contains(sql, ph) {
			t.Fatalf("placeholder group %s missing: %s", ph, sql)
		}
	}
	if len(tx.calls[0].args) != 18 {
		t.Fatalf("args=%d want 18", len(tx.calls[0].args))
	}
	if tx.calls[0].args[7].(int64) != 101 {
		t.Fatalf("second row customer id wrong: %v", tx.calls[0].args[7])
	}
}

func TestInsertModuleDocsChunking(t *testing.T) {
	t.Parallel()

	tx := &captureTx{}
	w := NewWriter(tx, 2, 0)

	n, err := w.InsertModuleDocs(context.Background(), docRows(5), nil)
	if err != nil {
		t.Fatalf("InsertModuleDocs: %v", err)
	}
	if n != 5 {
		t.Fatalf("written=%d want 5", n)
	}
	if len(tx.calls) != 3 {
		t.Fatalf("execs=%d want 3 (2+2+1 rows)", len(tx.calls))
	}
	if len(tx.calls[2].args) != 6 {
		t.Fatalf("last chunk args=%d want 6", len(tx.calls[2].args))
	}
}

func TestInsertModuleDocsEmpty(t *testing.T) {
	t.Parallel()

	tx := &captureTx{}
	w := NewWriter(tx, 0, 0)
	n, err := w.InsertModuleDocs(context.Background(), nil, nil)
	if err != nil || n != 0 || len(tx.calls) != 0 {
		t.Fatalf("empty insert: n=%d err=%v calls=%d", n, err, len(tx.calls))
	}
}
