// Package trait defines the trait effect table mapping causal alleles at
// genomic sites to per-trait effect sizes, and the attribution models that
// decide which mutation events carry an effect.
package trait

import (
	"fmt"
	"math"
	"sort"

	"traitcore/pkg/treeseq"
)

// Model selects how a causal allele's effect is attributed to mutation
// events during edge effect resolution.
type Model string

const (
	// ModelAlleleEffects attributes an effect once per allele origin: a
	// mutation carries the effect only when its derived state equals the
	// causal allele and its parent mutation, if any, carries a different
	// state.
	ModelAlleleEffects Model = "allele"
	// ModelMutationEffects attributes an effect to every mutation event whose
	// derived state equals the causal allele, regardless of earlier events on
	// the same lineage.
	ModelMutationEffects Model = "mutation"
)

// DefaultModel is the attribution model used when none is requested.
const DefaultModel = ModelAlleleEffects

// ParseModel maps a textual model name to a Model.
func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case ModelAlleleEffects:
		return ModelAlleleEffects, nil
	case ModelMutationEffects:
		return ModelMutationEffects, nil
	default:
		return "", fmt.Errorf("unknown attribution model %q", s)
	}
}

// Effect assigns a per-trait effect size to the causal allele at a site.
type Effect struct {
	Site         treeseq.ID `json:"site_id"`
	Trait        int        `json:"trait_id"`
	EffectSize   float64    `json:"effect_size"`
	CausalAllele string     `json:"causal_allele"`
}

// Finite reports whether the effect size is neither NaN nor infinite.
// Non-finite sizes are legal and propagate into sums as-is; they are worth
// surfacing to callers all the same.
func (e Effect) Finite() bool {
	return !math.IsNaN(e.EffectSize) && !math.IsInf(e.EffectSize, 0)
}

// Table is an externally supplied trait effect table. It is treated as
// immutable for the duration of any computation over it.
type Table struct {
	Entries []Effect `json:"entries"`
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	return Table{Entries: append([]Effect(nil), t.Entries...)}
}

// Traits returns the distinct trait ids present in the table, ascending.
func (t Table) Traits() []int {
	seen := make(map[int]struct{}, len(t.Entries))
	for _, entry := range t.Entries {
		seen[entry.Trait] = struct{}{}
	}
	traits := make([]int, 0, len(seen))
	for id := range seen {
		traits = append(traits, id)
	}
	sort.Ints(traits)
	return traits
}

// Validate checks the table invariants for the given model. Under the allele
// effects model each (site, trait) pair may carry at most one entry; the
// mutation effects model has no such restriction.
func (t Table) Validate(model Model) error {
	if model != ModelAlleleEffects {
		return nil
	}
	type key struct {
		site  treeseq.ID
		trait int
	}
	seen := make(map[key]struct{}, len(t.Entries))
	for _, entry := range t.Entries {
		k := key{site: entry.Site, trait: entry.Trait}
		if _, dup := seen[k]; dup {
			return DuplicateEntryError{Site: entry.Site, Trait: entry.Trait}
		}
		seen[k] = struct{}{}
	}
	return nil
}
