// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"traitcore/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

type (
	// TreeSequence mirrors domain.TreeSequence for store call sites.
	TreeSequence = domain.TreeSequence
	// TraitTable mirrors domain.TraitTable.
	TraitTable = domain.TraitTable
	// Change mirrors domain.Change staged by transactions.
	Change = domain.Change
	// Result mirrors domain.Result of a rule pass.
	Result = domain.Result
	// RulesEngine mirrors domain.RulesEngine.
	RulesEngine = domain.RulesEngine
	// Transaction mirrors domain.Transaction.
	Transaction = domain.Transaction
	// TransactionView mirrors domain.TransactionView.
	TransactionView = domain.TransactionView
	// PersistentStore mirrors domain.PersistentStore.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	treeSequences map[string]TreeSequence
	traitTables   map[string]TraitTable
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	TreeSequences map[string]TreeSequence `json:"tree_sequences"`
	TraitTables   map[string]TraitTable   `json:"trait_tables"`
}

func newMemoryState() memoryState {
	return memoryState{
		treeSequences: make(map[string]TreeSequence),
		traitTables:   make(map[string]TraitTable),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		TreeSequences: make(map[string]TreeSequence, len(state.treeSequences)),
		TraitTables:   make(map[string]TraitTable, len(state.traitTables)),
	}
	for k, v := range state.treeSequences {
		s.TreeSequences[k] = v.Clone()
	}
	for k, v := range state.traitTables {
		s.TraitTables[k] = v.Clone()
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.TreeSequences {
		state.treeSequences[k] = v.Clone()
	}
	for k, v := range s.TraitTables {
		state.traitTables[k] = v.Clone()
	}
	return state
}

// migrateSnapshot normalizes snapshots loaded from older payloads so missing
// buckets decode to empty maps instead of nil.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.TreeSequences == nil {
		snapshot.TreeSequences = map[string]TreeSequence{}
	}
	if snapshot.TraitTables == nil {
		snapshot.TraitTables = map[string]TraitTable{}
	}
	return snapshot
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.treeSequences {
		cloned.treeSequences[k] = v.Clone()
	}
	for k, v := range s.traitTables {
		cloned.traitTables[k] = v.Clone()
	}
	return cloned
}

// Store keeps every record in process memory behind a single RWMutex. It is
// the reference PersistentStore implementation and the substrate the durable
// backends snapshot from.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	clock  func() time.Time
}

// NewStore builds an empty store. A nil engine is replaced with one that has
// no rules registered, so commits always have an engine to consult.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) freshID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// ExportState deep-copies the live state into a serializable Snapshot.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the live state with the snapshot contents. Missing
// buckets are normalized to empty maps first.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine returns the engine commits are evaluated against.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc exposes the store clock so higher layers can align timestamps.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock
}

// transaction stages mutations against a cloned state until commit. The clock
// is sampled once at open so every record touched in the same transaction
// carries the same timestamp.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

// transactionView adapts a memoryState to the read-only contract rules see.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListTreeSequences returns all tree sequences within the snapshot.
func (v transactionView) ListTreeSequences() []TreeSequence {
	out := make([]TreeSequence, 0, len(v.state.treeSequences))
	for _, ts := range v.state.treeSequences {
		out = append(out, ts.Clone())
	}
	return out
}

// ListTraitTables returns all trait tables within the snapshot.
func (v transactionView) ListTraitTables() []TraitTable {
	out := make([]TraitTable, 0, len(v.state.traitTables))
	for _, tt := range v.state.traitTables {
		out = append(out, tt.Clone())
	}
	return out
}

// FindTreeSequence retrieves a tree sequence by ID from the snapshot.
func (v transactionView) FindTreeSequence(id string) (TreeSequence, bool) {
	ts, ok := v.state.treeSequences[id]
	if !ok {
		return TreeSequence{}, false
	}
	return ts.Clone(), true
}

// FindTraitTable retrieves a trait table by ID from the snapshot.
func (v transactionView) FindTraitTable(id string) (TraitTable, bool) {
	tt, ok := v.state.traitTables[id]
	if !ok {
		return TraitTable{}, false
	}
	return tt.Clone(), true
}

// RunInTransaction runs fn against a private copy of the state. The copy
// replaces the live state only after every registered rule allows the commit.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{store: s, state: s.state.clone(), now: s.clock()}
	if err := fn(tx); err != nil {
		return Result{}, err
	}

	result, err := s.evaluate(ctx, tx)
	if err != nil {
		return result, err
	}
	s.state = tx.state
	return result, nil
}

// evaluate runs the rule pass over the staged state. A blocking violation
// surfaces as domain.RuleViolationError and keeps the live state untouched.
func (s *Store) evaluate(ctx context.Context, tx *transaction) (Result, error) {
	if s.engine == nil {
		return Result{}, nil
	}
	res, err := s.engine.Evaluate(ctx, newTransactionView(&tx.state), tx.changes)
	if err != nil {
		return Result{}, err
	}
	if res.HasBlocking() {
		return res, domain.RuleViolationError{Result: res}
	}
	return res, nil
}

// View hands fn a read-only clone of the current state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.state.clone()
	return fn(newTransactionView(&snapshot))
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot exposes the staged state so callers can read their own writes
// before the commit decision.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// CreateTreeSequence stores a new tree sequence within the transaction.
func (tx *transaction) CreateTreeSequence(ts TreeSequence) (TreeSequence, error) {
	if ts.ID == "" {
		ts.ID = tx.store.freshID()
	}
	if _, exists := tx.state.treeSequences[ts.ID]; exists {
		return TreeSequence{}, fmt.Errorf("tree sequence %q already exists", ts.ID)
	}
	ts.CreatedAt = tx.now
	ts.UpdatedAt = tx.now
	tx.state.treeSequences[ts.ID] = ts.Clone()
	tx.recordChange(Change{Entity: domain.EntityTreeSequence, Action: domain.ActionCreate, After: ts.Clone()})
	return ts.Clone(), nil
}

// UpdateTreeSequence mutates a tree sequence using the provided mutator function.
func (tx *transaction) UpdateTreeSequence(id string, mutator func(*TreeSequence) error) (TreeSequence, error) {
	current, ok := tx.state.treeSequences[id]
	if !ok {
		return TreeSequence{}, fmt.Errorf("tree sequence %q not found", id)
	}
	before := current.Clone()
	if err := mutator(&current); err != nil {
		return TreeSequence{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.treeSequences[id] = current.Clone()
	tx.recordChange(Change{Entity: domain.EntityTreeSequence, Action: domain.ActionUpdate, Before: before, After: current.Clone()})
	return current.Clone(), nil
}

// DeleteTreeSequence removes a tree sequence from the transaction state.
func (tx *transaction) DeleteTreeSequence(id string) error {
	current, ok := tx.state.treeSequences[id]
	if !ok {
		return fmt.Errorf("tree sequence %q not found", id)
	}
	delete(tx.state.treeSequences, id)
	tx.recordChange(Change{Entity: domain.EntityTreeSequence, Action: domain.ActionDelete, Before: current.Clone()})
	return nil
}

// CreateTraitTable stores a new trait table within the transaction.
func (tx *transaction) CreateTraitTable(tt TraitTable) (TraitTable, error) {
	if tt.ID == "" {
		tt.ID = tx.store.freshID()
	}
	if _, exists := tx.state.traitTables[tt.ID]; exists {
		return TraitTable{}, fmt.Errorf("trait table %q already exists", tt.ID)
	}
	tt.CreatedAt = tx.now
	tt.UpdatedAt = tx.now
	tx.state.traitTables[tt.ID] = tt.Clone()
	tx.recordChange(Change{Entity: domain.EntityTraitTable, Action: domain.ActionCreate, After: tt.Clone()})
	return tt.Clone(), nil
}

// UpdateTraitTable mutates a trait table using the provided mutator function.
func (tx *transaction) UpdateTraitTable(id string, mutator func(*TraitTable) error) (TraitTable, error) {
	current, ok := tx.state.traitTables[id]
	if !ok {
		return TraitTable{}, fmt.Errorf("trait table %q not found", id)
	}
	before := current.Clone()
	if err := mutator(&current); err != nil {
		return TraitTable{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.traitTables[id] = current.Clone()
	tx.recordChange(Change{Entity: domain.EntityTraitTable, Action: domain.ActionUpdate, Before: before, After: current.Clone()})
	return current.Clone(), nil
}

// DeleteTraitTable removes a trait table from the transaction state.
func (tx *transaction) DeleteTraitTable(id string) error {
	current, ok := tx.state.traitTables[id]
	if !ok {
		return fmt.Errorf("trait table %q not found", id)
	}
	delete(tx.state.traitTables, id)
	tx.recordChange(Change{Entity: domain.EntityTraitTable, Action: domain.ActionDelete, Before: current.Clone()})
	return nil
}

// GetTreeSequence retrieves a tree sequence by ID.
func (s *Store) GetTreeSequence(id string) (TreeSequence, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.state.treeSequences[id]
	if !ok {
		return TreeSequence{}, false
	}
	return ts.Clone(), true
}

// ListTreeSequences returns all stored tree sequences.
func (s *Store) ListTreeSequences() []TreeSequence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TreeSequence, 0, len(s.state.treeSequences))
	for _, ts := range s.state.treeSequences {
		out = append(out, ts.Clone())
	}
	return out
}

// GetTraitTable retrieves a trait table by ID.
func (s *Store) GetTraitTable(id string) (TraitTable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tt, ok := s.state.traitTables[id]
	if !ok {
		return TraitTable{}, false
	}
	return tt.Clone(), true
}

// ListTraitTables returns all stored trait tables.
func (s *Store) ListTraitTables() []TraitTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TraitTable, 0, len(s.state.traitTables))
	for _, tt := range s.state.traitTables {
		out = append(out, tt.Clone())
	}
	return out
}
