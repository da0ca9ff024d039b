package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/docval"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/domain"
	wldomain "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/worklist/domain"
)

type fakeWorklist struct {
	run     wldomain.Run
	rng     wldomain.BatchRange
	batches map[int][]int64
}

func (f *fakeWorklist) LatestRun(context.Context) (wldomain.Run, error) { return f.run, nil }
func (f *fakeWorklist) BatchRange(context.Context) (wldomain.BatchRange, error) {
	return f.rng, nil
}
func (f *fakeWorklist) Batch(_ context.Context, batchNo int) ([]int64, error) {
	return f.batches[batchNo], nil
}

type fakeBuilder struct {
	code string
	// build returns the payload map; nil build echoes an empty object per id
	build func(ids []int64) (map[int64]docval.Value, error)
}

func (f *fakeBuilder) Code() string { return f.code }
func (f *fakeBuilder) Build(_ context.Context, ids []int64, _ string) (map[int64]docval.Value, error) {
	if f.build != nil {
		return f.build(ids)
	}
	out := make(map[int64]docval.Value, len(ids))
	for _, id := range ids {
		out[id] = docval.Object()
	}
	return out, nil
}

// recordingWriter collects every row handed to it, concurrency-safe
type recordingWriter struct {
	mu   sync.Mutex
	rows []domain.DocumentRow
	err  error
}

func (w *recordingWriter) InsertModuleDocs(_ context.Context, rows []domain.DocumentRow, _ func(int)) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.mu.Lock()
	w.rows = append(w.rows, rows...)
	w.mu.Unlock()
	return len(rows), nil
}

type recordingStats struct {
	mu          sync.Mutex
	moduleCalls int
	runCalls    int
	totalRows   int
}

func (s *recordingStats) ModuleDone(_ context.Context, _ int64, _ int, _ string, rows int, _ int64) {
	s.mu.Lock()
	s.moduleCalls++
	s.mu.Unlock()
}

func (s *recordingStats) RunDone(_ context.Context, _ int64, _, rows int, _ int64) {
	s.mu.Lock()
	s.runCalls++
	s.totalRows = rows
	s.mu.Unlock()
}

func allBuilders() []domain.Builder {
	out := make([]domain.Builder, 0, len(domain.Modules()))
	for _, code := range domain.Modules() {
		out = append(out, &fakeBuilder{code: code})
	}
	return out
}

func TestNewRejectsMissingBuilder(t *testing.T) {
	t.Parallel()

	wl := &fakeWorklist{}
	_, err := New(wl, nil, &recordingWriter{}, nil, Config{Modules: []string{"ACCOUNTS"}})
	if err == nil {
		t.Fatal("want error when a configured module has no builder")
	}
}

func TestRunWritesEveryCustomerModulePair(t *testing.T) {
	t.Parallel()

	wl := &fakeWorklist{
		run: wldomain.Run{ID: 9, AsOfDate: "2024-03-01"},
		rng: wldomain.BatchRange{Min: 1, Max: 2},
		batches: map[int][]int64{
			1: {101, 102},
			2: {103},
		},
	}
	w := &recordingWriter{}
	st := &recordingStats{}

	svc, err := New(wl, allBuilders(), w, st, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 3 customers x 7 modules
	if len(w.rows) != 21 {
		t.Fatalf("rows=%d want 21", len(w.rows))
	}
	seen := map[string]bool{}
	for _, r := range w.rows {
		if r.RunID != 9 {
			t.Fatalf("row carries run %d", r.RunID)
		}
		seen[r.ModuleCode] = true
		if !strings.Contains(r.StructuredDoc, `"schemaVersion":"1.0"`) {
			t.Fatalf("envelope missing schemaVersion: %s", r.StructuredDoc)
		}
		if !strings.Contains(r.StructuredDoc, `"asOfDate":"2024-03-01"`) {
			t.Fatalf("envelope missing asOfDate: %s", r.StructuredDoc)
		}
		if !strings.HasPrefix(r.MarkupDoc, "<"+r.ModuleCode+">") {
			t.Fatalf("markup not rooted at module code: %s", r.MarkupDoc[:40])
		}
	}
	for _, code := range domain.Modules() {
		if !seen[code] {
			t.Fatalf("module %s never written", code)
		}
	}
	if st.moduleCalls != 14 { // 2 non-empty batches x 7 modules
		t.Fatalf("moduleCalls=%d want 14", st.moduleCalls)
	}
	if st.runCalls != 1 || st.totalRows != 21 {
		t.Fatalf("run stats wrong: calls=%d rows=%d", st.runCalls, st.totalRows)
	}
}

func TestRunModuleOrderWithinBatch(t *testing.T) {
	t.Parallel()

	wl := &fakeWorklist{
		run:     wldomain.Run{ID: 1, AsOfDate: "2024-01-01"},
		rng:     wldomain.BatchRange{Min: 1, Max: 1},
		batches: map[int][]int64{1: {101}},
	}
	w := &recordingWriter{}

	svc, err := New(wl, allBuilders(), w, nil, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var got []string
	for _, r := range w.rows {
		got = append(got, r.ModuleCode)
	}
	want := domain.Modules()
	if len(got) != len(want) {
		t.Fatalf("rows=%d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("module order broken at %d: got %v", i, got)
		}
	}
}

func TestRunFillsWarningForMissingCustomer(t *testing.T) {
	t.Parallel()

	builders := allBuilders()
	// the profile builder drops customer 102 entirely
	builders[0] = &fakeBuilder{
		code: domain.ModuleCustomerProfile,
		build: func(ids []int64) (map[int64]docval.Value, error) {
			return map[int64]docval.Value{101: docval.Object()}, nil
		},
	}
	wl := &fakeWorklist{
		run:     wldomain.Run{ID: 1, AsOfDate: "2024-01-01"},
		rng:     wldomain.BatchRange{Min: 1, Max: 1},
		batches: map[int][]int64{1: {101, 102}},
	}
	w := &recordingWriter{}

	svc, err := New(wl, builders, w, nil, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var found bool
	for _, r := range w.rows {
		if r.ModuleCode == domain.ModuleCustomerProfile && r.CustomerID == 102 {
			found = true
			if !strings.Contains(r.StructuredDoc, `"warning":"no data generated"`) {
				t.Fatalf("missing-customer payload wrong: %s", r.StructuredDoc)
			}
		}
	}
	if !found {
		t.Fatal("customer 102 dropped instead of backfilled")
	}
}

func TestRunAbortsOnBuildError(t *testing.T) {
	t.Parallel()

	builders := allBuilders()
	builders[2] = &fakeBuilder{
		code: domain.ModuleTransactions,
		build: func([]int64) (map[int64]docval.Value, error) {
			return nil, errors.New("source unavailable")
		},
	}
	wl := &fakeWorklist{
		run:     wldomain.Run{ID: 1, AsOfDate: "2024-01-01"},
		rng:     wldomain.BatchRange{Min: 1, Max: 1},
		batches: map[int][]int64{1: {101}},
	}
	w := &recordingWriter{}

	svc, err := New(wl, builders, w, nil, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("want run failure when a builder errors")
	}
	// the two modules before the failing one were still written
	if len(w.rows) != 2 {
		t.Fatalf("rows=%d want 2", len(w.rows))
	}
}

func TestRunWorkerPoolCoversAllBatches(t *testing.T) {
	t.Parallel()

	batches := map[int][]int64{}
	for i := 1; i <= 8; i++ {
		batches[i] = []int64{int64(100 + i)}
	}
	wl := &fakeWorklist{
		run:     wldomain.Run{ID: 5, AsOfDate: "2024-01-01"},
		rng:     wldomain.BatchRange{Min: 1, Max: 8},
		batches: batches,
	}
	w := &recordingWriter{}

	svc, err := New(wl, allBuilders(), w, nil, Config{Workers: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(w.rows) != 8*len(domain.Modules()) {
		t.Fatalf("rows=%d want %d", len(w.rows), 8*len(domain.Modules()))
	}
}

func TestRunWorkerPoolStopsOnFirstError(t *testing.T) {
	t.Parallel()

	wl := &fakeWorklist{
		run: wldomain.Run{ID: 5, AsOfDate: "2024-01-01"},
		rng: wldomain.BatchRange{Min: 1, Max: 6},
		batches: map[int][]int64{
			1: {101}, 2: {102}, 3: {103}, 4: {104}, 5: {105}, 6: {106},
		},
	}
	w := &recordingWriter{err: errors.New("insert failed")}

	svc, err := New(wl, allBuilders(), w, nil, Config{Workers: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("want run failure from pool")
	}
}

func TestRunSkipsEmptyBatch(t *testing.T) {
	t.Parallel()

	wl := &fakeWorklist{
		run: wldomain.Run{ID: 1, AsOfDate: "2024-01-01"},
		rng: wldomain.BatchRange{Min: 1, Max: 3},
		batches: map[int][]int64{
			1: {101},
			// batch 2 empty
			3: {103},
		},
	}
	w := &recordingWriter{}

	svc, err := New(wl, allBuilders(), w, nil, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(w.rows) != 2*len(domain.Modules()) {
		t.Fatalf("rows=%d want %d", len(w.rows), 2*len(domain.Modules()))
	}
}
