package core

import (
	"sort"

	"traitcore/pkg/treeseq"
)

// edgeOrder returns edge ids sorted by descending parent birth time, ties
// broken by ascending edge id. An edge's value depends only on edges into
// its parent node, and those always carry a strictly greater parent time, so
// walking this order finalizes every upstream edge before it is consumed.
// Equal-time edges never depend on each other; the tie break keeps the
// traversal reproducible.
func edgeOrder(idx *treeseq.Index) []treeseq.ID {
	order := make([]treeseq.ID, idx.NumEdges())
	for i := range order {
		order[i] = treeseq.ID(i)
	}
	sort.Slice(order, func(a, b int) bool {
		ta := idx.Time(idx.Edge(order[a]).Parent)
		tb := idx.Time(idx.Edge(order[b]).Parent)
		if ta != tb {
			return ta > tb
		}
		return order[a] < order[b]
	})
	return order
}

// aggregateEdgeValues propagates edge effects down the genealogy. An edge's
// value is its own effect plus the values of the edges into its parent node
// whose intervals overlap its own; any positive-length overlap contributes
// the full upper value once, with no proportional splitting. The pass is
// iterative and each edge is finalized exactly once.
func aggregateEdgeValues(idx *treeseq.Index, order []treeseq.ID, edgeEffects []float64) []float64 {
	values := append([]float64(nil), edgeEffects...)
	for _, eid := range order {
		edge := idx.Edge(eid)
		for _, upper := range idx.EdgesIn(edge.Parent) {
			if idx.Edge(upper).Overlaps(edge.Left, edge.Right) {
				values[eid] += values[upper]
			}
		}
	}
	return values
}

// aggregateNodeValues sums each node's incoming edge values. Nodes with no
// incoming edges hold 0.
func aggregateNodeValues(idx *treeseq.Index, edgeValues []float64) []float64 {
	values := make([]float64, idx.NumNodes())
	for eid, v := range edgeValues {
		values[idx.Edge(treeseq.ID(eid)).Child] += v
	}
	return values
}

// aggregateIndividualValues sums each individual's node values. Individuals
// owning no nodes hold 0.
func aggregateIndividualValues(idx *treeseq.Index, nodeValues []float64) []float64 {
	values := make([]float64, idx.NumIndividuals())
	for nid := range nodeValues {
		if ind := idx.IndividualOf(treeseq.ID(nid)); ind != treeseq.NullID {
			values[ind] += nodeValues[nid]
		}
	}
	return values
}
