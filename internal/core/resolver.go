package core

import (
	"traitcore/pkg/trait"
	"traitcore/pkg/treeseq"
)

// resolveEdgeEffects computes, for one trait, the summed effect size of the
// mutations lying on each edge: a mutation lies on an edge when its node is
// the edge's child and its site position falls inside the edge interval.
// The returned slice is indexed by edge id; edges with no qualifying
// mutation hold 0.
func resolveEdgeEffects(idx *treeseq.Index, entries []trait.Effect, model trait.Model) ([]float64, error) {
	effects := make([]float64, idx.NumEdges())
	for _, entry := range entries {
		if entry.Site < 0 || int(entry.Site) >= idx.NumSites() {
			return nil, trait.UnknownSiteError{Site: entry.Site, Trait: entry.Trait}
		}
		mutations := idx.MutationsAt(entry.Site)
		if len(mutations) == 0 {
			return nil, trait.UnknownSiteError{Site: entry.Site, Trait: entry.Trait}
		}
		position := idx.Site(entry.Site).Position
		matched := false
		for _, mid := range mutations {
			mut := idx.Mutation(mid)
			if mut.DerivedState != entry.CausalAllele {
				continue
			}
			matched = true
			if !carriesEffect(idx, mut, entry.CausalAllele, model) {
				continue
			}
			for _, eid := range idx.EdgesIn(mut.Node) {
				if idx.Edge(eid).Contains(position) {
					effects[eid] += entry.EffectSize
				}
			}
		}
		if !matched {
			return nil, trait.UnknownAlleleError{Site: entry.Site, Trait: entry.Trait, Allele: entry.CausalAllele}
		}
	}
	return effects, nil
}

// carriesEffect applies the attribution model. Under allele effects only the
// origin of the allele on its lineage counts: the mutation's parent, if any,
// must carry a different state. Under mutation effects every causal-state
// event counts independently.
func carriesEffect(idx *treeseq.Index, mut treeseq.Mutation, allele string, model trait.Model) bool {
	if model == trait.ModelMutationEffects {
		return true
	}
	if mut.Parent == treeseq.NullID {
		return true
	}
	return idx.Mutation(mut.Parent).DerivedState != allele
}
