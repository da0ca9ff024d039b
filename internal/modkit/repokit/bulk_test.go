package repokit

import (
	"context"
	"errors"
	"testing"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/store"
)

// fakeTx counts transactions and runs each fn against itself
type fakeTx struct {
	txCalls int
	failOn  int // fail the nth Tx call (1-based), 0 = never
}

func (f *fakeTx) Exec(context.Context, string, ...any) (store.CommandTag, error) {
	return nil, nil
}
func (f *fakeTx) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) store.Row       { return nil }

func (f *fakeTx) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	f.txCalls++
	if f.failOn != 0 && f.txCalls == f.failOn {
		return errors.New("boom")
	}
	return fn(f)
}

func TestBulkInsertChunksPerTransaction(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{}
	rows := make([]int, 10)
	var chunkSizes []int

	n, err := BulkInsert(context.Background(), tx, rows, BulkOptions{ChunkSize: 4},
		func(_ Queryer, chunk []int) error {
			chunkSizes = append(chunkSizes, len(chunk))
			return nil
		})
	if err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}
	if n != 10 {
		t.Fatalf("written=%d want 10", n)
	}
	if tx.txCalls != 3 {
		t.Fatalf("txCalls=%d want 3", tx.txCalls)
	}
	if len(chunkSizes) != 3 || chunkSizes[0] != 4 || chunkSizes[1] != 4 || chunkSizes[2] != 2 {
		t.Fatalf("chunk sizes wrong: %v", chunkSizes)
	}
}

func TestBulkInsertEmptyRows(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{}
	n, err := BulkInsert(context.Background(), tx, []int(nil), BulkOptions{},
		func(Queryer, []int) error { t.Fatal("insert called for empty rows"); return nil })
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v, want 0 and nil", n, err)
	}
	if tx.txCalls != 0 {
		t.Fatalf("txCalls=%d want 0", tx.txCalls)
	}
}

func TestBulkInsertStopsOnError(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{failOn: 2}
	rows := make([]int, 9)
	n, err := BulkInsert(context.Background(), tx, rows, BulkOptions{ChunkSize: 3},
		func(Queryer, []int) error { return nil })
	if err == nil {
		t.Fatal("want error from failing chunk")
	}
	// first chunk committed, second rolled back, third never attempted
	if n != 3 {
		t.Fatalf("written=%d want 3", n)
	}
	if tx.txCalls != 2 {
		t.Fatalf("txCalls=%d want 2", tx.txCalls)
	}
}

func TestBulkInsertProgressCadence(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{}
	rows := make([]int, 25)
	var progress []int

	n, err := BulkInsert(context.Background(), tx, rows, BulkOptions{
		ChunkSize:     10,
		ProgressEvery: 10,
		OnProgress:    func(w int) { progress = append(progress, w) },
	}, func(Queryer, []int) error { return nil })
	if err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}
	if n != 25 {
		t.Fatalf("written=%d want 25", n)
	}
	if len(progress) != 2 || progress[0] != 10 || progress[1] != 20 {
		t.Fatalf("progress callbacks wrong: %v", progress)
	}
}
