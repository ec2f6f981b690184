package core

import (
	"context"

	"golang.org/x/sync/errgroup"

	"traitcore/pkg/trait"
	"traitcore/pkg/treeseq"
	"traitcore/pkg/valuetable"
)

// Engine computes edge effect and genetic value tables over a genealogy
// index and a trait effect table. Both inputs are read-only for the duration
// of a call and never cached across calls. Engines are stateless and safe
// for concurrent use.
type Engine struct {
	model       trait.Model
	parallelism int
}

// EngineOption customizes engine construction.
type EngineOption func(*Engine)

// WithModel selects the attribution model applied when resolving mutations
// to effects. The default is trait.DefaultModel.
func WithModel(model trait.Model) EngineOption {
	return func(e *Engine) { e.model = model }
}

// WithParallelism bounds how many traits are computed concurrently. Each
// trait owns disjoint accumulators over the shared index, so no locking is
// involved. Values below one fall back to sequential computation.
func WithParallelism(n int) EngineOption {
	return func(e *Engine) { e.parallelism = n }
}

// NewEngine constructs an Engine.
func NewEngine(opts ...EngineOption) *Engine {
	engine := &Engine{model: trait.DefaultModel, parallelism: 1}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.parallelism < 1 {
		engine.parallelism = 1
	}
	return engine
}

// Model returns the attribution model the engine applies.
func (e *Engine) Model() trait.Model { return e.model }

// EdgeEffects resolves the trait table onto the genealogy's edges and
// returns rows of shape {trait_id, edge_id, effect_size}, one row per
// (trait, edge) pair, sorted by trait then edge. Any resolution failure
// aborts the whole call; no partial table is returned.
func (e *Engine) EdgeEffects(ctx context.Context, idx *treeseq.Index, table trait.Table) (*valuetable.Table, error) {
	series, err := e.computePerTrait(ctx, table, func(entries []trait.Effect) ([]float64, error) {
		return resolveEdgeEffects(idx, entries, e.model)
	})
	if err != nil {
		return nil, err
	}
	return buildTable(valuetable.EdgeEffectSchema(), valuetable.LevelEdge.IDColumn(), valuetable.ColumnEffectSize, series), nil
}

// GeneticValues resolves the trait table onto edges and propagates the
// resulting effects to the requested aggregation level. It returns rows of
// shape {trait_id, <level>_id, genetic_value}, one row per (trait, entity)
// pair including zero-valued entities, sorted by trait then entity id. An
// empty level selects valuetable.DefaultLevel. Any resolution failure aborts
// the whole call; no partial table is returned.
func (e *Engine) GeneticValues(ctx context.Context, idx *treeseq.Index, table trait.Table, level valuetable.Level) (*valuetable.Table, error) {
	lvl, err := valuetable.ParseLevel(string(level))
	if err != nil {
		return nil, err
	}
	order := edgeOrder(idx)
	series, err := e.computePerTrait(ctx, table, func(entries []trait.Effect) ([]float64, error) {
		effects, err := resolveEdgeEffects(idx, entries, e.model)
		if err != nil {
			return nil, err
		}
		edgeValues := aggregateEdgeValues(idx, order, effects)
		switch lvl {
		case valuetable.LevelEdge:
			return edgeValues, nil
		case valuetable.LevelNode:
			return aggregateNodeValues(idx, edgeValues), nil
		default:
			return aggregateIndividualValues(idx, aggregateNodeValues(idx, edgeValues)), nil
		}
	})
	if err != nil {
		return nil, err
	}
	return buildTable(valuetable.GeneticValueSchema(lvl), lvl.IDColumn(), valuetable.ColumnGeneticValue, series), nil
}

// traitSeries carries one trait's dense value array, indexed by entity id.
type traitSeries struct {
	trait  int
	values []float64
}

// computePerTrait validates the table and runs compute once per trait,
// fanning out across traits up to the configured parallelism. The first
// failure cancels the remaining traits and is returned alone.
func (e *Engine) computePerTrait(ctx context.Context, table trait.Table, compute func([]trait.Effect) ([]float64, error)) ([]traitSeries, error) {
	if err := table.Validate(e.model); err != nil {
		return nil, err
	}
	traits := table.Traits()
	grouped := make(map[int][]trait.Effect, len(traits))
	for _, entry := range table.Entries {
		grouped[entry.Trait] = append(grouped[entry.Trait], entry)
	}
	series := make([]traitSeries, len(traits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, traitID := range traits {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			values, err := compute(grouped[traitID])
			if err != nil {
				return err
			}
			series[i] = traitSeries{trait: traitID, values: values}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return series, nil
}

// buildTable flattens per-trait value arrays into sorted rows. Traits arrive
// ascending and entity ids are array indexes, so rows come out ordered by
// (trait id, entity id) without an extra sort.
func buildTable(schema []valuetable.Column, idColumn, valueColumn string, series []traitSeries) *valuetable.Table {
	total := 0
	for _, s := range series {
		total += len(s.values)
	}
	table := &valuetable.Table{Schema: schema, Rows: make([]valuetable.Row, 0, total)}
	for _, s := range series {
		for id, value := range s.values {
			table.Rows = append(table.Rows, valuetable.Row{
				valuetable.ColumnTrait: s.trait,
				idColumn:               id,
				valueColumn:            value,
			})
		}
	}
	return table
}
