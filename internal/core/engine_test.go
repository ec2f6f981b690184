package core

import (
	"context"
	"errors"
	"math"
	"testing"

	"traitcore/pkg/trait"
	"traitcore/pkg/treeseq"
	"traitcore/pkg/valuetable"
)

// workedCollection reproduces the documented propagation example: two
// diploid individuals (nodes 0-3), recombinant ancestry through nodes 4-7,
// and one mutation per site. Individual 0 must come out with genetic value 1
// and edge 1 with value 1; a pass that ignores the dependency order yields 0
// for both.
func workedCollection() treeseq.TableCollection {
	nodes := []treeseq.Node{
		{Flags: treeseq.NodeIsSample, Time: 0, Individual: 0},
		{Flags: treeseq.NodeIsSample, Time: 0, Individual: 0},
		{Flags: treeseq.NodeIsSample, Time: 0, Individual: 1},
		{Flags: treeseq.NodeIsSample, Time: 0, Individual: 1},
		{Time: 1, Individual: treeseq.NullID},
		{Time: 1, Individual: treeseq.NullID},
		{Time: 2, Individual: treeseq.NullID},
		{Time: 3, Individual: treeseq.NullID},
	}
	edges := []treeseq.Edge{
		{Left: 0, Right: 10, Parent: 4, Child: 0},
		{Left: 0, Right: 10, Parent: 5, Child: 1},
		{Left: 0, Right: 5, Parent: 4, Child: 2},
		{Left: 5, Right: 10, Parent: 5, Child: 3},
		{Left: 0, Right: 10, Parent: 6, Child: 4},
		{Left: 0, Right: 10, Parent: 6, Child: 5},
		{Left: 5, Right: 10, Parent: 7, Child: 2},
		{Left: 0, Right: 5, Parent: 7, Child: 3},
		{Left: 5, Right: 10, Parent: 7, Child: 6},
	}
	sites := make([]treeseq.Site, 10)
	for i := range sites {
		sites[i] = treeseq.Site{Position: float64(i), AncestralState: "0"}
	}
	mutationNodes := []treeseq.ID{2, 0, 0, 2, 4, 7, 4, 3, 4, 6}
	mutations := make([]treeseq.Mutation, len(mutationNodes))
	for i, node := range mutationNodes {
		mutations[i] = treeseq.Mutation{Site: treeseq.ID(i), Node: node, DerivedState: "1", Parent: treeseq.NullID}
	}
	return treeseq.TableCollection{
		SequenceLength: 10,
		Individuals:    []treeseq.Individual{{}, {}},
		Nodes:          nodes,
		Edges:          edges,
		Sites:          sites,
		Mutations:      mutations,
	}
}

func workedEffects() trait.Table {
	sizes := []struct {
		site treeseq.ID
		size float64
	}{
		{0, 2}, {1, 1}, {2, -1}, {4, -1}, {6, -1}, {7, -1}, {8, 1}, {9, 1},
	}
	var table trait.Table
	for _, s := range sizes {
		table.Entries = append(table.Entries, trait.Effect{Site: s.site, Trait: 0, EffectSize: s.size, CausalAllele: "1"})
	}
	return table
}

func mustIndex(t *testing.T, tc treeseq.TableCollection) *treeseq.Index {
	t.Helper()
	idx, err := treeseq.NewIndex(tc)
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	return idx
}

// seriesByEntity extracts one trait's rows into an entity id keyed map.
func seriesByEntity(t *testing.T, table *valuetable.Table, idColumn, valueColumn string, traitID int) map[int]float64 {
	t.Helper()
	out := make(map[int]float64)
	for _, row := range table.Rows {
		if row[valuetable.ColumnTrait].(int) != traitID {
			continue
		}
		id := row[idColumn].(int)
		if _, dup := out[id]; dup {
			t.Fatalf("duplicate row for %s %d", idColumn, id)
		}
		out[id] = row[valueColumn].(float64)
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func TestEdgeEffectsWorkedScenario(t *testing.T) {
	idx := mustIndex(t, workedCollection())
	table, err := NewEngine().EdgeEffects(context.Background(), idx, workedEffects())
	if err != nil {
		t.Fatalf("edge effects: %v", err)
	}
	got := seriesByEntity(t, table, "edge_id", valuetable.ColumnEffectSize, 0)
	want := map[int]float64{0: 0, 1: 0, 2: 2, 3: -1, 4: -1, 5: 0, 6: 0, 7: 0, 8: 1}
	if len(got) != len(want) {
		t.Fatalf("expected %d edge rows, got %d", len(want), len(got))
	}
	for edge, value := range want {
		if !almostEqual(got[edge], value) {
			t.Fatalf("edge %d: got effect %v want %v", edge, got[edge], value)
		}
	}
}

func TestGeneticValuesWorkedScenario(t *testing.T) {
	idx := mustIndex(t, workedCollection())
	engine := NewEngine()
	ctx := context.Background()

	edge, err := engine.GeneticValues(ctx, idx, workedEffects(), valuetable.LevelEdge)
	if err != nil {
		t.Fatalf("edge values: %v", err)
	}
	gotEdges := seriesByEntity(t, edge, "edge_id", valuetable.ColumnGeneticValue, 0)
	wantEdges := map[int]float64{0: 0, 1: 1, 2: 2, 3: 0, 4: 0, 5: 1, 6: 0, 7: 0, 8: 1}
	for id, want := range wantEdges {
		if !almostEqual(gotEdges[id], want) {
			t.Fatalf("edge %d: got value %v want %v", id, gotEdges[id], want)
		}
	}
	// The documented failure mode leaves edge 1 at 0; it must carry the value
	// propagated through node 5.
	if !almostEqual(gotEdges[1], 1) {
		t.Fatalf("edge 1: got %v want 1", gotEdges[1])
	}

	node, err := engine.GeneticValues(ctx, idx, workedEffects(), valuetable.LevelNode)
	if err != nil {
		t.Fatalf("node values: %v", err)
	}
	gotNodes := seriesByEntity(t, node, "node_id", valuetable.ColumnGeneticValue, 0)
	wantNodes := map[int]float64{0: 0, 1: 1, 2: 2, 3: 0, 4: 0, 5: 1, 6: 1, 7: 0}
	for id, want := range wantNodes {
		if !almostEqual(gotNodes[id], want) {
			t.Fatalf("node %d: got value %v want %v", id, gotNodes[id], want)
		}
	}

	individual, err := engine.GeneticValues(ctx, idx, workedEffects(), valuetable.LevelIndividual)
	if err != nil {
		t.Fatalf("individual values: %v", err)
	}
	gotIndividuals := seriesByEntity(t, individual, "individual_id", valuetable.ColumnGeneticValue, 0)
	if !almostEqual(gotIndividuals[0], 1) {
		t.Fatalf("individual 0: got %v want 1", gotIndividuals[0])
	}
	if !almostEqual(gotIndividuals[1], 2) {
		t.Fatalf("individual 1: got %v want 2", gotIndividuals[1])
	}
}

func TestGeneticValuesDefaultLevel(t *testing.T) {
	idx := mustIndex(t, workedCollection())
	table, err := NewEngine().GeneticValues(context.Background(), idx, workedEffects(), "")
	if err != nil {
		t.Fatalf("genetic values: %v", err)
	}
	if got := table.Schema[1].Name; got != "individual_id" {
		t.Fatalf("expected default individual level, got id column %q", got)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected one row per individual, got %d", len(table.Rows))
	}
}

func TestGeneticValuesUnknownLevel(t *testing.T) {
	idx := mustIndex(t, workedCollection())
	if _, err := NewEngine().GeneticValues(context.Background(), idx, workedEffects(), "genome"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestGeneticValuesEdgeOrderIndependence(t *testing.T) {
	base := workedCollection()
	engine := NewEngine()
	ctx := context.Background()

	reference, err := engine.GeneticValues(ctx, mustIndex(t, base), workedEffects(), valuetable.LevelNode)
	if err != nil {
		t.Fatalf("reference values: %v", err)
	}
	wantNodes := seriesByEntity(t, reference, "node_id", valuetable.ColumnGeneticValue, 0)

	permutations := [][]int{
		{8, 7, 6, 5, 4, 3, 2, 1, 0},
		{4, 0, 8, 2, 6, 1, 5, 3, 7},
		{1, 3, 5, 7, 0, 2, 4, 6, 8},
	}
	for _, perm := range permutations {
		shuffled := base.Clone()
		shuffled.Edges = shuffled.Edges[:0]
		for _, i := range perm {
			shuffled.Edges = append(shuffled.Edges, base.Edges[i])
		}
		table, err := engine.GeneticValues(ctx, mustIndex(t, shuffled), workedEffects(), valuetable.LevelNode)
		if err != nil {
			t.Fatalf("permuted values: %v", err)
		}
		got := seriesByEntity(t, table, "node_id", valuetable.ColumnGeneticValue, 0)
		for node, want := range wantNodes {
			if !almostEqual(got[node], want) {
				t.Fatalf("permutation %v node %d: got %v want %v", perm, node, got[node], want)
			}
		}
	}
}

func TestGeneticValuesSiblingIntervalIsolation(t *testing.T) {
	// Root passes its effect through [0,5) only; the sibling edge spanning
	// [5,10) shares the parent node but no interval and must stay at 0.
	tc := treeseq.TableCollection{
		SequenceLength: 10,
		Individuals:    []treeseq.Individual{{}, {}},
		Nodes: []treeseq.Node{
			{Flags: treeseq.NodeIsSample, Time: 0, Individual: 0},
			{Flags: treeseq.NodeIsSample, Time: 0, Individual: 1},
			{Time: 1, Individual: treeseq.NullID},
			{Time: 2, Individual: treeseq.NullID},
		},
		Edges: []treeseq.Edge{
			{Left: 0, Right: 5, Parent: 2, Child: 0},
			{Left: 5, Right: 10, Parent: 2, Child: 1},
			{Left: 0, Right: 5, Parent: 3, Child: 2},
		},
		Sites:     []treeseq.Site{{Position: 1, AncestralState: "0"}},
		Mutations: []treeseq.Mutation{{Site: 0, Node: 2, DerivedState: "1", Parent: treeseq.NullID}},
	}
	effects := trait.Table{Entries: []trait.Effect{{Site: 0, Trait: 0, EffectSize: 4, CausalAllele: "1"}}}
	table, err := NewEngine().GeneticValues(context.Background(), mustIndex(t, tc), effects, valuetable.LevelEdge)
	if err != nil {
		t.Fatalf("genetic values: %v", err)
	}
	got := seriesByEntity(t, table, "edge_id", valuetable.ColumnGeneticValue, 0)
	if !almostEqual(got[2], 4) {
		t.Fatalf("upper edge: got %v want 4", got[2])
	}
	if !almostEqual(got[0], 4) {
		t.Fatalf("overlapping sibling: got %v want 4", got[0])
	}
	if !almostEqual(got[1], 0) {
		t.Fatalf("disjoint sibling: got %v want 0", got[1])
	}
}

func TestGeneticValuesSummationDecomposition(t *testing.T) {
	idx := mustIndex(t, workedCollection())
	engine := NewEngine()
	ctx := context.Background()
	effects := workedEffects()

	edges, err := engine.GeneticValues(ctx, idx, effects, valuetable.LevelEdge)
	if err != nil {
		t.Fatalf("edge values: %v", err)
	}
	nodes, err := engine.GeneticValues(ctx, idx, effects, valuetable.LevelNode)
	if err != nil {
		t.Fatalf("node values: %v", err)
	}
	individuals, err := engine.GeneticValues(ctx, idx, effects, valuetable.LevelIndividual)
	if err != nil {
		t.Fatalf("individual values: %v", err)
	}
	edgeValues := seriesByEntity(t, edges, "edge_id", valuetable.ColumnGeneticValue, 0)
	nodeValues := seriesByEntity(t, nodes, "node_id", valuetable.ColumnGeneticValue, 0)
	individualValues := seriesByEntity(t, individuals, "individual_id", valuetable.ColumnGeneticValue, 0)

	for node := 0; node < idx.NumNodes(); node++ {
		var sum float64
		for _, eid := range idx.EdgesIn(treeseq.ID(node)) {
			sum += edgeValues[int(eid)]
		}
		if !almostEqual(sum, nodeValues[node]) {
			t.Fatalf("node %d: incoming edge sum %v does not match node value %v", node, sum, nodeValues[node])
		}
	}
	for ind := 0; ind < idx.NumIndividuals(); ind++ {
		var sum float64
		for _, nid := range idx.NodesOf(treeseq.ID(ind)) {
			sum += nodeValues[int(nid)]
		}
		if !almostEqual(sum, individualValues[ind]) {
			t.Fatalf("individual %d: node sum %v does not match individual value %v", ind, sum, individualValues[ind])
		}
	}
}

func TestGeneticValuesZeroDefaultRows(t *testing.T) {
	// Two traits: the second touches a single edge, yet every (trait,
	// entity) pair must be present, zeros included.
	effects := workedEffects()
	effects.Entries = append(effects.Entries, trait.Effect{Site: 3, Trait: 7, EffectSize: 5, CausalAllele: "1"})
	idx := mustIndex(t, workedCollection())
	table, err := NewEngine().GeneticValues(context.Background(), idx, effects, valuetable.LevelNode)
	if err != nil {
		t.Fatalf("genetic values: %v", err)
	}
	if got, want := len(table.Rows), 2*idx.NumNodes(); got != want {
		t.Fatalf("expected %d rows, got %d", want, got)
	}
	for _, traitID := range []int{0, 7} {
		series := seriesByEntity(t, table, "node_id", valuetable.ColumnGeneticValue, traitID)
		if len(series) != idx.NumNodes() {
			t.Fatalf("trait %d: expected %d node rows, got %d", traitID, idx.NumNodes(), len(series))
		}
	}
	// Node 7 is a root with no incoming edges: explicit zero row.
	series := seriesByEntity(t, table, "node_id", valuetable.ColumnGeneticValue, 0)
	if !almostEqual(series[7], 0) {
		t.Fatalf("root node: got %v want 0", series[7])
	}
}

func TestGeneticValuesRowOrdering(t *testing.T) {
	effects := workedEffects()
	effects.Entries = append(effects.Entries, trait.Effect{Site: 3, Trait: 7, EffectSize: 5, CausalAllele: "1"})
	idx := mustIndex(t, workedCollection())
	table, err := NewEngine().GeneticValues(context.Background(), idx, effects, valuetable.LevelEdge)
	if err != nil {
		t.Fatalf("genetic values: %v", err)
	}
	lastTrait, lastID := -1, -1
	for i, row := range table.Rows {
		traitID := row[valuetable.ColumnTrait].(int)
		entityID := row["edge_id"].(int)
		if traitID < lastTrait || (traitID == lastTrait && entityID <= lastID) {
			t.Fatalf("row %d out of order: trait %d entity %d after trait %d entity %d", i, traitID, entityID, lastTrait, lastID)
		}
		if traitID != lastTrait {
			lastID = -1
		}
		lastTrait, lastID = traitID, entityID
	}
}

// stackedCollection carries a restated allele: site 0 mutates to "1" on the
// inner branch and is restated as "1" again on the leaf branch.
func stackedCollection() treeseq.TableCollection {
	return treeseq.TableCollection{
		SequenceLength: 10,
		Individuals:    []treeseq.Individual{{}},
		Nodes: []treeseq.Node{
			{Flags: treeseq.NodeIsSample, Time: 0, Individual: 0},
			{Time: 1, Individual: treeseq.NullID},
			{Time: 2, Individual: treeseq.NullID},
		},
		Edges: []treeseq.Edge{
			{Left: 0, Right: 10, Parent: 1, Child: 0},
			{Left: 0, Right: 10, Parent: 2, Child: 1},
		},
		Sites: []treeseq.Site{{Position: 5, AncestralState: "0"}},
		Mutations: []treeseq.Mutation{
			{Site: 0, Node: 1, DerivedState: "1", Parent: treeseq.NullID},
			{Site: 0, Node: 0, DerivedState: "1", Parent: 0},
		},
	}
}

func TestAttributionModels(t *testing.T) {
	effects := trait.Table{Entries: []trait.Effect{{Site: 0, Trait: 0, EffectSize: 3, CausalAllele: "1"}}}
	ctx := context.Background()

	// Allele model: only the origin event carries the effect.
	allele, err := NewEngine(WithModel(trait.ModelAlleleEffects)).GeneticValues(ctx, mustIndex(t, stackedCollection()), effects, valuetable.LevelIndividual)
	if err != nil {
		t.Fatalf("allele model: %v", err)
	}
	got := seriesByEntity(t, allele, "individual_id", valuetable.ColumnGeneticValue, 0)
	if !almostEqual(got[0], 3) {
		t.Fatalf("allele model: got %v want 3", got[0])
	}

	// Mutation model: the restatement counts again on the leaf edge.
	mutation, err := NewEngine(WithModel(trait.ModelMutationEffects)).GeneticValues(ctx, mustIndex(t, stackedCollection()), effects, valuetable.LevelIndividual)
	if err != nil {
		t.Fatalf("mutation model: %v", err)
	}
	got = seriesByEntity(t, mutation, "individual_id", valuetable.ColumnGeneticValue, 0)
	if !almostEqual(got[0], 6) {
		t.Fatalf("mutation model: got %v want 6", got[0])
	}
}

func TestAttributionModelBackMutation(t *testing.T) {
	// "1" appears, reverts to "0", then re-originates. Both "1" events are
	// allele origins, so the models agree here.
	tc := treeseq.TableCollection{
		SequenceLength: 10,
		Individuals:    []treeseq.Individual{{}},
		Nodes: []treeseq.Node{
			{Flags: treeseq.NodeIsSample, Time: 0, Individual: 0},
			{Time: 1, Individual: treeseq.NullID},
			{Time: 2, Individual: treeseq.NullID},
			{Time: 3, Individual: treeseq.NullID},
		},
		Edges: []treeseq.Edge{
			{Left: 0, Right: 10, Parent: 1, Child: 0},
			{Left: 0, Right: 10, Parent: 2, Child: 1},
			{Left: 0, Right: 10, Parent: 3, Child: 2},
		},
		Sites: []treeseq.Site{{Position: 5, AncestralState: "0"}},
		Mutations: []treeseq.Mutation{
			{Site: 0, Node: 2, DerivedState: "1", Parent: treeseq.NullID},
			{Site: 0, Node: 1, DerivedState: "0", Parent: 0},
			{Site: 0, Node: 0, DerivedState: "1", Parent: 1},
		},
	}
	effects := trait.Table{Entries: []trait.Effect{{Site: 0, Trait: 0, EffectSize: 2, CausalAllele: "1"}}}
	for _, model := range []trait.Model{trait.ModelAlleleEffects, trait.ModelMutationEffects} {
		table, err := NewEngine(WithModel(model)).GeneticValues(context.Background(), mustIndex(t, tc), effects, valuetable.LevelEdge)
		if err != nil {
			t.Fatalf("model %s: %v", model, err)
		}
		got := seriesByEntity(t, table, "edge_id", valuetable.ColumnGeneticValue, 0)
		// Edge effects: top edge 2, leaf edge 2; propagation stacks them.
		want := map[int]float64{2: 2, 1: 2, 0: 4}
		for edge, value := range want {
			if !almostEqual(got[edge], value) {
				t.Fatalf("model %s edge %d: got %v want %v", model, edge, got[edge], value)
			}
		}
	}
}

func TestUnknownSiteAbortsCall(t *testing.T) {
	effects := workedEffects()
	// Site 11 does not exist; site 3 exists but holds no entry elsewhere.
	effects.Entries = append(effects.Entries, trait.Effect{Site: 11, Trait: 0, EffectSize: 1, CausalAllele: "1"})
	table, err := NewEngine().EdgeEffects(context.Background(), mustIndex(t, workedCollection()), effects)
	if err == nil {
		t.Fatalf("expected unknown site error")
	}
	var unknown trait.UnknownSiteError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownSiteError, got %T", err)
	}
	if unknown.Site != 11 {
		t.Fatalf("unexpected site: %+v", unknown)
	}
	if table != nil {
		t.Fatalf("expected no partial table on failure")
	}
}

func TestUnknownSiteNoMutations(t *testing.T) {
	tc := workedCollection()
	// Keep site 9 but drop its mutation: the site is then absent from the
	// mutation table.
	tc.Mutations = tc.Mutations[:9]
	_, err := NewEngine().EdgeEffects(context.Background(), mustIndex(t, tc), workedEffects())
	var unknown trait.UnknownSiteError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownSiteError, got %v", err)
	}
	if unknown.Site != 9 {
		t.Fatalf("unexpected site: %+v", unknown)
	}
}

func TestUnknownAlleleAbortsCall(t *testing.T) {
	effects := workedEffects()
	effects.Entries[0].CausalAllele = "2"
	table, err := NewEngine().GeneticValues(context.Background(), mustIndex(t, workedCollection()), effects, valuetable.LevelIndividual)
	if err == nil {
		t.Fatalf("expected unknown allele error")
	}
	var unknown trait.UnknownAlleleError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownAlleleError, got %T", err)
	}
	if unknown.Allele != "2" || unknown.Site != 0 {
		t.Fatalf("unexpected allele error: %+v", unknown)
	}
	if table != nil {
		t.Fatalf("expected no partial table on failure")
	}
}

func TestDuplicateEntryRejectedUnderAlleleModel(t *testing.T) {
	effects := workedEffects()
	effects.Entries = append(effects.Entries, trait.Effect{Site: 0, Trait: 0, EffectSize: 9, CausalAllele: "1"})
	_, err := NewEngine().EdgeEffects(context.Background(), mustIndex(t, workedCollection()), effects)
	var dup trait.DuplicateEntryError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateEntryError, got %v", err)
	}
	// The mutation model allows stacked entries and sums them.
	table, err := NewEngine(WithModel(trait.ModelMutationEffects)).EdgeEffects(context.Background(), mustIndex(t, workedCollection()), effects)
	if err != nil {
		t.Fatalf("mutation model: %v", err)
	}
	got := seriesByEntity(t, table, "edge_id", valuetable.ColumnEffectSize, 0)
	if !almostEqual(got[2], 11) {
		t.Fatalf("expected stacked effect 11 on edge 2, got %v", got[2])
	}
}

func TestParallelismMatchesSequential(t *testing.T) {
	effects := workedEffects()
	for i, traitID := range []int{1, 2, 3} {
		effects.Entries = append(effects.Entries, trait.Effect{Site: treeseq.ID(i), Trait: traitID, EffectSize: float64(traitID), CausalAllele: "1"})
	}
	idx := mustIndex(t, workedCollection())
	ctx := context.Background()
	sequential, err := NewEngine(WithParallelism(1)).GeneticValues(ctx, idx, effects, valuetable.LevelIndividual)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	parallel, err := NewEngine(WithParallelism(4)).GeneticValues(ctx, idx, effects, valuetable.LevelIndividual)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if len(sequential.Rows) != len(parallel.Rows) {
		t.Fatalf("row count mismatch: %d vs %d", len(sequential.Rows), len(parallel.Rows))
	}
	for i := range sequential.Rows {
		for _, col := range []string{valuetable.ColumnTrait, "individual_id", valuetable.ColumnGeneticValue} {
			if sequential.Rows[i][col] != parallel.Rows[i][col] {
				t.Fatalf("row %d column %s: %v vs %v", i, col, sequential.Rows[i][col], parallel.Rows[i][col])
			}
		}
	}
}

func TestComputeAbortsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewEngine().GeneticValues(ctx, mustIndex(t, workedCollection()), workedEffects(), valuetable.LevelIndividual); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestNonFiniteEffectPropagates(t *testing.T) {
	effects := trait.Table{Entries: []trait.Effect{{Site: 0, Trait: 0, EffectSize: math.NaN(), CausalAllele: "1"}}}
	table, err := NewEngine().GeneticValues(context.Background(), mustIndex(t, stackedCollection()), effects, valuetable.LevelIndividual)
	if err != nil {
		t.Fatalf("genetic values: %v", err)
	}
	got := seriesByEntity(t, table, "individual_id", valuetable.ColumnGeneticValue, 0)
	if !math.IsNaN(got[0]) {
		t.Fatalf("expected NaN to propagate, got %v", got[0])
	}
}
