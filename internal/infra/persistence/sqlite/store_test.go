package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"traitcore/pkg/domain"
	"traitcore/pkg/treeseq"
)

func sampleTables() treeseq.TableCollection {
	return treeseq.TableCollection{
		SequenceLength: 5,
		Individuals:    []treeseq.Individual{{}},
		Nodes: []treeseq.Node{
			{Flags: treeseq.NodeIsSample, Time: 0, Individual: 0},
			{Time: 1, Individual: treeseq.NullID},
		},
		Edges: []treeseq.Edge{{Left: 0, Right: 5, Parent: 1, Child: 0}},
	}
}

func TestStorePersistAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.db")
	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, e := tx.CreateTreeSequence(domain.TreeSequence{Name: "persisted", Tables: sampleTables()})
		return e
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.DB().Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	reloaded, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.DB().Close() })
	listed := reloaded.ListTreeSequences()
	if len(listed) != 1 {
		t.Fatalf("expected 1 tree sequence, got %d", len(listed))
	}
	if listed[0].Name != "persisted" {
		t.Fatalf("unexpected record name %q", listed[0].Name)
	}
	if len(listed[0].Tables.Nodes) != 2 {
		t.Fatalf("expected node rows to survive reload, got %d", len(listed[0].Tables.Nodes))
	}
}

func TestStoreUpsertsBuckets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.DB().Close() })
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			_, e := tx.CreateTraitTable(domain.TraitTable{Name: "effects"})
			return e
		}); err != nil {
			t.Fatalf("transaction %d: %v", i, err)
		}
	}
	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state WHERE bucket = ?`, "trait_tables").Scan(&count); err != nil {
		t.Fatalf("count state rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single trait_tables bucket row, got %d", count)
	}
	if store.Path() != path {
		t.Fatalf("unexpected path %q", store.Path())
	}
}

func TestStoreBlockedTransactionNotPersisted(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(rejectAll{})
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, engine)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, e := tx.CreateTreeSequence(domain.TreeSequence{Name: "blocked"})
		return e
	}); err == nil {
		t.Fatalf("expected blocked transaction")
	}
	if err := store.DB().Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	reloaded, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.DB().Close() })
	if got := len(reloaded.ListTreeSequences()); got != 0 {
		t.Fatalf("expected empty store after blocked transaction, got %d", got)
	}
}

type rejectAll struct{}

func (rejectAll) Name() string { return "reject-all" }

func (rejectAll) Evaluate(context.Context, domain.TransactionView, []domain.Change) (domain.Result, error) {
	return domain.Result{Violations: []domain.Violation{{Rule: "reject-all", Severity: domain.SeverityBlock}}}, nil
}
