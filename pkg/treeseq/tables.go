// Package treeseq defines the tree-sequence genealogy tables consumed by the
// genetic value engine, plus structural validation and a read-only lookup
// index over them.
package treeseq

// ID addresses a row in one of the genealogy tables. Rows live in dense
// arrays and the row at index i has id i, so an ID doubles as the row's
// array index.
type ID int

// NullID marks an absent reference: a node with no owning individual, an
// individual with an unknown parent, or a mutation with no parent mutation.
const NullID ID = -1

// NodeIsSample flags a node as a sampled genome.
const NodeIsSample uint32 = 1

// Individual is an organism owning zero or more nodes. Ownership is recorded
// on the node side; an individual's node set is derived by the Index.
type Individual struct {
	Flags    uint32    `json:"flags"`
	Location []float64 `json:"location,omitempty"`
	Parents  []ID      `json:"parents,omitempty"`
}

// Node is a single genome with a birth time. Time increases into the past:
// along any parent chain times are strictly increasing.
type Node struct {
	Flags      uint32  `json:"flags"`
	Time       float64 `json:"time"`
	Individual ID      `json:"individual"`
}

// IsSample reports whether the node carries the sample flag.
func (n Node) IsSample() bool { return n.Flags&NodeIsSample != 0 }

// Edge records that Child inherits from Parent over the genomic interval
// [Left, Right).
type Edge struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Parent ID      `json:"parent"`
	Child  ID      `json:"child"`
}

// Overlaps reports whether the edge interval shares positive length with
// [left, right).
func (e Edge) Overlaps(left, right float64) bool {
	return e.Left < right && left < e.Right
}

// Contains reports whether position lies inside [Left, Right).
func (e Edge) Contains(position float64) bool {
	return e.Left <= position && position < e.Right
}

// Site is a genomic position at which mutations are recorded.
type Site struct {
	Position       float64 `json:"position"`
	AncestralState string  `json:"ancestral_state"`
}

// Mutation records an allele change at a site on a node. Parent links to an
// earlier mutation at the same site on the same lineage; NullID means the
// mutation replaces the ancestral state directly.
type Mutation struct {
	Site         ID      `json:"site"`
	Node         ID      `json:"node"`
	Time         float64 `json:"time"`
	DerivedState string  `json:"derived_state"`
	Parent       ID      `json:"parent"`
}

// TableCollection bundles the genealogy tables. The collection is treated as
// immutable for the duration of any computation over it.
type TableCollection struct {
	SequenceLength float64      `json:"sequence_length"`
	Individuals    []Individual `json:"individuals"`
	Nodes          []Node       `json:"nodes"`
	Edges          []Edge       `json:"edges"`
	Sites          []Site       `json:"sites"`
	Mutations      []Mutation   `json:"mutations"`
}

// Clone returns a deep copy of the collection.
func (tc TableCollection) Clone() TableCollection {
	out := TableCollection{
		SequenceLength: tc.SequenceLength,
		Individuals:    make([]Individual, len(tc.Individuals)),
		Nodes:          append([]Node(nil), tc.Nodes...),
		Edges:          append([]Edge(nil), tc.Edges...),
		Sites:          append([]Site(nil), tc.Sites...),
		Mutations:      append([]Mutation(nil), tc.Mutations...),
	}
	for i, ind := range tc.Individuals {
		cp := ind
		cp.Location = append([]float64(nil), ind.Location...)
		cp.Parents = append([]ID(nil), ind.Parents...)
		out.Individuals[i] = cp
	}
	return out
}
