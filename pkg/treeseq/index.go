package treeseq

// Index is a read-only lookup view over a validated table collection. It
// resolves node ownership and per-node edge adjacency without mutating the
// underlying tables. An Index is safe for concurrent readers; the collection
// it was built from must not change while the Index is in use.
type Index struct {
	tc          TableCollection
	edgesIn     [][]ID
	edgesOut    [][]ID
	nodesOf     [][]ID
	mutationsAt [][]ID
}

// NewIndex validates the collection and builds the lookup structures. It
// returns a MalformedGenealogyError carrying every structural problem when
// validation fails.
func NewIndex(tc TableCollection) (*Index, error) {
	if problems := Validate(tc); len(problems) > 0 {
		return nil, MalformedGenealogyError{Problems: problems}
	}
	idx := &Index{
		tc:          tc,
		edgesIn:     make([][]ID, len(tc.Nodes)),
		edgesOut:    make([][]ID, len(tc.Nodes)),
		nodesOf:     make([][]ID, len(tc.Individuals)),
		mutationsAt: make([][]ID, len(tc.Sites)),
	}
	for i, edge := range tc.Edges {
		idx.edgesIn[edge.Child] = append(idx.edgesIn[edge.Child], ID(i))
		idx.edgesOut[edge.Parent] = append(idx.edgesOut[edge.Parent], ID(i))
	}
	for i, node := range tc.Nodes {
		if node.Individual != NullID {
			idx.nodesOf[node.Individual] = append(idx.nodesOf[node.Individual], ID(i))
		}
	}
	for i, mut := range tc.Mutations {
		idx.mutationsAt[mut.Site] = append(idx.mutationsAt[mut.Site], ID(i))
	}
	return idx, nil
}

// SequenceLength returns the genome length of the underlying collection.
func (idx *Index) SequenceLength() float64 { return idx.tc.SequenceLength }

// NumIndividuals returns the number of individual rows.
func (idx *Index) NumIndividuals() int { return len(idx.tc.Individuals) }

// NumNodes returns the number of node rows.
func (idx *Index) NumNodes() int { return len(idx.tc.Nodes) }

// NumEdges returns the number of edge rows.
func (idx *Index) NumEdges() int { return len(idx.tc.Edges) }

// NumSites returns the number of site rows.
func (idx *Index) NumSites() int { return len(idx.tc.Sites) }

// NumMutations returns the number of mutation rows.
func (idx *Index) NumMutations() int { return len(idx.tc.Mutations) }

// Individual returns the individual row with the given id.
func (idx *Index) Individual(id ID) Individual { return idx.tc.Individuals[id] }

// Node returns the node row with the given id.
func (idx *Index) Node(id ID) Node { return idx.tc.Nodes[id] }

// Edge returns the edge row with the given id.
func (idx *Index) Edge(id ID) Edge { return idx.tc.Edges[id] }

// Site returns the site row with the given id.
func (idx *Index) Site(id ID) Site { return idx.tc.Sites[id] }

// Mutation returns the mutation row with the given id.
func (idx *Index) Mutation(id ID) Mutation { return idx.tc.Mutations[id] }

// Time returns the birth time of the given node.
func (idx *Index) Time(node ID) float64 { return idx.tc.Nodes[node].Time }

// IndividualOf returns the individual owning the node, or NullID.
func (idx *Index) IndividualOf(node ID) ID { return idx.tc.Nodes[node].Individual }

// NodesOf returns the ids of the nodes owned by the individual, in ascending
// node order. The returned slice is shared and must not be modified.
func (idx *Index) NodesOf(individual ID) []ID { return idx.nodesOf[individual] }

// EdgesIn returns the ids of the edges whose child is the given node, in
// ascending edge order. The returned slice is shared and must not be
// modified.
func (idx *Index) EdgesIn(node ID) []ID { return idx.edgesIn[node] }

// EdgesOut returns the ids of the edges whose parent is the given node, in
// ascending edge order. The returned slice is shared and must not be
// modified.
func (idx *Index) EdgesOut(node ID) []ID { return idx.edgesOut[node] }

// MutationsAt returns the ids of the mutations recorded at the site, in
// ascending mutation order. The returned slice is shared and must not be
// modified.
func (idx *Index) MutationsAt(site ID) []ID { return idx.mutationsAt[site] }
