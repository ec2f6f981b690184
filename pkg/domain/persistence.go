package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateTreeSequence(TreeSequence) (TreeSequence, error)
	UpdateTreeSequence(id string, mutator func(*TreeSequence) error) (TreeSequence, error)
	DeleteTreeSequence(id string) error
	CreateTraitTable(TraitTable) (TraitTable, error)
	UpdateTraitTable(id string, mutator func(*TraitTable) error) (TraitTable, error)
	DeleteTraitTable(id string) error
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	ListTreeSequences() []TreeSequence
	ListTraitTables() []TraitTable
	FindTreeSequence(id string) (TreeSequence, bool)
	FindTraitTable(id string) (TraitTable, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetTreeSequence(id string) (TreeSequence, bool)
	ListTreeSequences() []TreeSequence
	GetTraitTable(id string) (TraitTable, bool)
	ListTraitTables() []TraitTable
}
