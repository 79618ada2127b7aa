package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tracker/internal/core"
	"tracker/internal/ledger"
)

func sampleSnapshot() ledger.Snapshot {
	return ledger.Snapshot{
		Transactions: []core.Transaction{
			{ID: "a", Kind: core.Income, Category: "Salary", Source: "ACME", Amount: core.MustMoney("1000"), Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
			{ID: "b", Kind: core.Expense, Category: "Food", Source: `Bob's "diner", downtown`, Amount: core.MustMoney("200.10"), Date: time.Date(2024, 1, 10, 18, 30, 0, 0, time.UTC)},
		},
		Taxonomy: core.Taxonomy{
			core.Income:  {"Salary", "Gift"},
			core.Expense: {"Food", "Rent"},
		},
	}
}

func assertSnapshotEqual(t *testing.T, want, got ledger.Snapshot) {
	t.Helper()
	if len(got.Transactions) != len(want.Transactions) {
		t.Fatalf("expected %d transactions, got %d", len(want.Transactions), len(got.Transactions))
	}
	for i := range want.Transactions {
		w, g := want.Transactions[i], got.Transactions[i]
		if w.ID != g.ID || !w.SameRecord(g) {
			t.Fatalf("transaction %d mismatch:\nwant %+v\ngot  %+v", i, w, g)
		}
	}
	for _, k := range core.Kinds() {
		w, g := want.Taxonomy.Names(k), got.Taxonomy.Names(k)
		if len(w) != len(g) {
			t.Fatalf("%s categories: want %v, got %v", k, w, g)
		}
		for i := range w {
			if w[i] != g[i] {
				t.Fatalf("%s categories: want %v, got %v", k, w, g)
			}
		}
	}
}

func TestMemoryPersister(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister(ledger.Snapshot{})

	want := sampleSnapshot()
	if err := p.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Mutating the caller's copy must not leak into the store.
	want.Transactions[0].Category = "changed"

	got, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Transactions[0].Category != "Salary" {
		t.Fatalf("persister shares memory with caller")
	}

	p.SaveErr = errors.New("quota exceeded")
	if err := p.Save(ctx, ledger.Snapshot{}); err == nil {
		t.Fatalf("expected injected error")
	}
	if p.Saves() != 1 {
		t.Fatalf("expected 1 successful save, got %d", p.Saves())
	}
}

func TestFilePersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := NewFilePersister(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	empty, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("load on empty dir: %v", err)
	}
	if len(empty.Transactions) != 0 || empty.Taxonomy != nil {
		t.Fatalf("expected empty snapshot, got %+v", empty)
	}

	want := sampleSnapshot()
	if err := p.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSnapshotEqual(t, want, got)

	entries, _ := os.ReadDir(p.Dir())
	if len(entries) != 2 {
		t.Fatalf("expected only the two documents, found %d entries", len(entries))
	}
}

func TestFilePersisterCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFilePersister(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, TransactionsFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Load(context.Background()); !errors.Is(err, core.ErrImportFormat) {
		t.Fatalf("expected import format error, got %v", err)
	}
}

func TestSQLitePersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := NewSQLitePersister(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer p.Close()

	empty, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("load on fresh db: %v", err)
	}
	if len(empty.Transactions) != 0 || !empty.Taxonomy.Empty() {
		t.Fatalf("expected empty snapshot, got %+v", empty)
	}

	want := sampleSnapshot()
	if err := p.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSnapshotEqual(t, want, got)

	// A second save fully replaces the first.
	want.Transactions = want.Transactions[1:]
	want.Taxonomy[core.Expense] = []string{"Rent"}
	if err := p.Save(ctx, want); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err = p.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	assertSnapshotEqual(t, want, got)
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")
	for i := 0; i < 2; i++ {
		if err := RunMigrations(path); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}

func TestStoreOverFilePersisterSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	p, _ := NewFilePersister(dir)
	s, err := ledger.Open(ctx, p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id, err := s.Add(ctx, core.Draft{Kind: core.Expense, Category: "Food", Amount: core.MustMoney("12.5")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddCategory(ctx, core.Expense, "Pets"); err != nil {
		t.Fatalf("add category: %v", err)
	}

	p2, _ := NewFilePersister(dir)
	reopened, err := ledger.Open(ctx, p2)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Get(ctx, id)
	if err != nil || got.Amount.String() != "12.50" {
		t.Fatalf("unexpected %+v err=%v", got, err)
	}
	if !reopened.Taxonomy().Contains(core.Expense, "pets") {
		t.Fatalf("expected category to survive restart")
	}
}
