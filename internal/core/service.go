package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"traitcore/pkg/domain"
	"traitcore/pkg/trait"
	"traitcore/pkg/treeseq"
	"traitcore/pkg/valuetable"
)

// Service exposes higher-level transactional CRUD operations for the core
// schema plus genetic value computation over stored records. Every operation
// is traced, measured and audited through the configured recorders.
type Service struct {
	store   domain.PersistentStore
	engine  *domain.RulesEngine
	compute *Engine
	clock   Clock
	now     func() time.Time
	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
}

type serviceOptions struct {
	compute *Engine
	clock   Clock
	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		compute: NewEngine(),
		clock:   ClockFunc(nil),
		logger:  noopLogger{},
		audit:   noopAuditRecorder{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
	}
}

// ServiceOption customizes service construction.
type ServiceOption func(*serviceOptions)

// WithComputeEngine overrides the engine used for value computations.
func WithComputeEngine(engine *Engine) ServiceOption {
	return func(o *serviceOptions) {
		if engine != nil {
			o.compute = engine
		}
	}
}

// WithClock overrides the clock used for audit timestamps.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger overrides the logger receiving service events.
func WithLogger(logger Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditRecorder overrides the audit sink.
func WithAuditRecorder(recorder AuditRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.audit = recorder
		}
	}
}

// WithMetricsRecorder overrides the metrics sink.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer overrides the tracer opening spans around operations.
func WithTracer(tracer Tracer) ServiceOption {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	options := defaultServiceOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return &Service{
		store:   store,
		engine:  extractRulesEngine(store),
		compute: options.compute,
		clock:   options.clock,
		now:     selectNowFunc(store, options.clock),
		logger:  options.logger,
		audit:   options.audit,
		metrics: options.metrics,
		tracer:  options.tracer,
	}
}

// NewInMemoryService creates a service and in-memory store with the given rules engine.
func NewInMemoryService(engine *domain.RulesEngine, opts ...ServiceOption) *Service {
	return NewService(NewMemoryStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// RulesEngine returns the rules engine attached to the backing store, or nil
// when the store does not expose one. Callers may register additional rules
// on it; registrations apply to subsequent transactions.
func (s *Service) RulesEngine() *domain.RulesEngine {
	return s.engine
}

// rulesEngineProvider is implemented by stores that expose their engine.
type rulesEngineProvider interface {
	RulesEngine() *domain.RulesEngine
}

func extractRulesEngine(store domain.PersistentStore) *domain.RulesEngine {
	if provider, ok := store.(rulesEngineProvider); ok {
		return provider.RulesEngine()
	}
	return nil
}

// nowFuncProvider is implemented by stores that stamp record timestamps
// themselves. The service reuses that clock so audit timestamps agree with
// record timestamps.
type nowFuncProvider interface {
	NowFunc() func() time.Time
}

func selectNowFunc(store domain.PersistentStore, clock Clock) func() time.Time {
	if provider, ok := store.(nowFuncProvider); ok {
		if fn := provider.NowFunc(); fn != nil {
			return func() time.Time { return fn().UTC() }
		}
	}
	if clock != nil {
		return clock.Now
	}
	return func() time.Time { return time.Now().UTC() }
}

// ErrNotFound is returned when an operation names a record that does not exist.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

type operationInfo struct {
	entity domain.EntityType
	action domain.Action
}

var operationMetadata = map[string]operationInfo{
	"create_tree_sequence":   {entity: domain.EntityTreeSequence, action: domain.ActionCreate},
	"update_tree_sequence":   {entity: domain.EntityTreeSequence, action: domain.ActionUpdate},
	"delete_tree_sequence":   {entity: domain.EntityTreeSequence, action: domain.ActionDelete},
	"create_trait_table":     {entity: domain.EntityTraitTable, action: domain.ActionCreate},
	"update_trait_table":     {entity: domain.EntityTraitTable, action: domain.ActionUpdate},
	"delete_trait_table":     {entity: domain.EntityTraitTable, action: domain.ActionDelete},
	"compute_edge_effects":   {entity: domain.EntityTreeSequence, action: domain.ActionCompute},
	"compute_genetic_values": {entity: domain.EntityTreeSequence, action: domain.ActionCompute},
}

func (s *Service) recordAuditSuccess(ctx context.Context, operation, entityID string, duration time.Duration) {
	meta, ok := operationMetadata[operation]
	if !ok {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Operation: operation,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  entityID,
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: s.now(),
	})
}

func (s *Service) recordAuditError(ctx context.Context, operation, entityID string, duration time.Duration) {
	meta, ok := operationMetadata[operation]
	if !ok {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Operation: operation,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  entityID,
		Status:    AuditStatusError,
		Duration:  duration,
		Timestamp: s.now(),
	})
}

// observe applies the shared accounting tail of every operation: span end,
// metrics, logging and audit.
func (s *Service) observe(ctx context.Context, span TraceSpan, operation, entityID string, duration time.Duration, err error) {
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, duration)
	if err != nil {
		s.logger.Error("operation failed", "operation", operation, "error", err)
		s.recordAuditError(ctx, operation, entityID, duration)
		return
	}
	s.logger.Debug("operation completed", "operation", operation, "duration_ms", float64(duration)/float64(time.Millisecond))
	s.recordAuditSuccess(ctx, operation, entityID, duration)
}

// run executes fn inside a store transaction under the named operation.
// entityID is resolved after fn completes so create operations can report
// their generated id.
func (s *Service) run(ctx context.Context, operation string, entityID func() string, fn func(domain.Transaction) error) (Result, error) {
	ctx, span := s.tracer.Start(ctx, operation)
	started := time.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	id := ""
	if entityID != nil {
		id = entityID()
	}
	s.observe(ctx, span, operation, id, time.Since(started), err)
	return res, err
}

// CreateTreeSequence persists a new genealogy record.
func (s *Service) CreateTreeSequence(ctx context.Context, record TreeSequence) (TreeSequence, Result, error) {
	var created TreeSequence
	res, err := s.run(ctx, "create_tree_sequence", func() string { return created.ID }, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateTreeSequence(record)
		return err
	})
	return created, res, err
}

// UpdateTreeSequence mutates a genealogy record using the provided mutator.
func (s *Service) UpdateTreeSequence(ctx context.Context, id string, mutator func(*TreeSequence) error) (TreeSequence, Result, error) {
	var updated TreeSequence
	res, err := s.run(ctx, "update_tree_sequence", func() string { return id }, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateTreeSequence(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteTreeSequence removes a genealogy record.
func (s *Service) DeleteTreeSequence(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_tree_sequence", func() string { return id }, func(tx domain.Transaction) error {
		return tx.DeleteTreeSequence(id)
	})
}

// CreateTraitTable persists a new trait effect table record.
func (s *Service) CreateTraitTable(ctx context.Context, record TraitTable) (TraitTable, Result, error) {
	var created TraitTable
	res, err := s.run(ctx, "create_trait_table", func() string { return created.ID }, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateTraitTable(record)
		return err
	})
	return created, res, err
}

// UpdateTraitTable mutates a trait table record using the provided mutator.
func (s *Service) UpdateTraitTable(ctx context.Context, id string, mutator func(*TraitTable) error) (TraitTable, Result, error) {
	var updated TraitTable
	res, err := s.run(ctx, "update_trait_table", func() string { return id }, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateTraitTable(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteTraitTable removes a trait table record.
func (s *Service) DeleteTraitTable(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_trait_table", func() string { return id }, func(tx domain.Transaction) error {
		return tx.DeleteTraitTable(id)
	})
}

// GetTreeSequence returns a stored genealogy record by id.
func (s *Service) GetTreeSequence(id string) (TreeSequence, bool) {
	return s.store.GetTreeSequence(id)
}

// ListTreeSequences returns stored genealogy records ordered by creation
// time, then id.
func (s *Service) ListTreeSequences() []TreeSequence {
	out := s.store.ListTreeSequences()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// GetTraitTable returns a stored trait table record by id.
func (s *Service) GetTraitTable(id string) (TraitTable, bool) {
	return s.store.GetTraitTable(id)
}

// ListTraitTables returns stored trait table records ordered by creation
// time, then id.
func (s *Service) ListTraitTables() []TraitTable {
	out := s.store.ListTraitTables()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// EdgeEffects computes the per-edge effect table for a stored genealogy and
// trait table pair.
func (s *Service) EdgeEffects(ctx context.Context, treeSequenceID, traitTableID string) (*valuetable.Table, error) {
	return s.computeOp(ctx, "compute_edge_effects", treeSequenceID, traitTableID,
		func(ctx context.Context, idx *treeseq.Index, effects trait.Table) (*valuetable.Table, error) {
			return s.compute.EdgeEffects(ctx, idx, effects)
		})
}

// GeneticValues computes aggregated genetic values for a stored genealogy
// and trait table pair at the requested level.
func (s *Service) GeneticValues(ctx context.Context, treeSequenceID, traitTableID string, level valuetable.Level) (*valuetable.Table, error) {
	return s.computeOp(ctx, "compute_genetic_values", treeSequenceID, traitTableID,
		func(ctx context.Context, idx *treeseq.Index, effects trait.Table) (*valuetable.Table, error) {
			return s.compute.GeneticValues(ctx, idx, effects, level)
		})
}

func (s *Service) computeOp(ctx context.Context, operation, treeSequenceID, traitTableID string, fn func(context.Context, *treeseq.Index, trait.Table) (*valuetable.Table, error)) (*valuetable.Table, error) {
	ctx, span := s.tracer.Start(ctx, operation)
	started := time.Now()
	table, err := s.computeTable(ctx, treeSequenceID, traitTableID, fn)
	s.observe(ctx, span, operation, treeSequenceID, time.Since(started), err)
	if err != nil {
		return nil, err
	}
	return table, nil
}

func (s *Service) computeTable(ctx context.Context, treeSequenceID, traitTableID string, fn func(context.Context, *treeseq.Index, trait.Table) (*valuetable.Table, error)) (*valuetable.Table, error) {
	record, ok := s.store.GetTreeSequence(treeSequenceID)
	if !ok {
		return nil, ErrNotFound{Entity: EntityTreeSequence, ID: treeSequenceID}
	}
	traits, ok := s.store.GetTraitTable(traitTableID)
	if !ok {
		return nil, ErrNotFound{Entity: EntityTraitTable, ID: traitTableID}
	}
	idx, err := treeseq.NewIndex(record.Tables)
	if err != nil {
		return nil, fmt.Errorf("index tree sequence %s: %w", treeSequenceID, err)
	}
	return fn(ctx, idx, traits.Effects)
}
