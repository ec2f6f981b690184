package treeseq

import (
	"fmt"
	"strings"
)

// Problem describes a single structural violation found in a table
// collection.
type Problem struct {
	Table   string `json:"table"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s[%d]: %s", p.Table, p.Index, p.Message)
}

// MalformedGenealogyError reports every structural problem found in a table
// collection. It is returned by NewIndex and aborts any computation over the
// collection.
type MalformedGenealogyError struct {
	Problems []Problem
}

func (e MalformedGenealogyError) Error() string {
	if len(e.Problems) == 0 {
		return "malformed genealogy"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "malformed genealogy: %d problem(s): %s", len(e.Problems), e.Problems[0])
	if len(e.Problems) > 1 {
		fmt.Fprintf(&b, " (and %d more)", len(e.Problems)-1)
	}
	return b.String()
}

// Validate checks the structural invariants of the collection and returns
// every problem found, in table order. A nil result means the collection is
// well formed.
//
// Checked invariants: edge parent/child ids resolve to nodes, edge parent
// time is strictly greater than child time, edge intervals are non-empty and
// inside [0, SequenceLength), node individual references resolve, individual
// parent references resolve, mutation site/node references resolve, a
// mutation's parent mutation precedes it and shares its site, and site
// positions lie inside [0, SequenceLength).
func Validate(tc TableCollection) []Problem {
	var problems []Problem
	add := func(table string, index int, format string, args ...any) {
		problems = append(problems, Problem{Table: table, Index: index, Message: fmt.Sprintf(format, args...)})
	}

	numNodes := ID(len(tc.Nodes))
	numIndividuals := ID(len(tc.Individuals))
	numSites := ID(len(tc.Sites))
	numMutations := ID(len(tc.Mutations))

	if tc.SequenceLength < 0 {
		add("collection", 0, "sequence length %v is negative", tc.SequenceLength)
	}
	bounded := tc.SequenceLength > 0

	for i, ind := range tc.Individuals {
		for _, parent := range ind.Parents {
			if parent == NullID {
				continue
			}
			if parent < 0 || parent >= numIndividuals {
				add("individuals", i, "references missing parent individual %d", parent)
			}
		}
	}

	for i, node := range tc.Nodes {
		if node.Individual == NullID {
			continue
		}
		if node.Individual < 0 || node.Individual >= numIndividuals {
			add("nodes", i, "references missing individual %d", node.Individual)
		}
	}

	for i, edge := range tc.Edges {
		parentOK := edge.Parent >= 0 && edge.Parent < numNodes
		childOK := edge.Child >= 0 && edge.Child < numNodes
		if !parentOK {
			add("edges", i, "references missing parent node %d", edge.Parent)
		}
		if !childOK {
			add("edges", i, "references missing child node %d", edge.Child)
		}
		if parentOK && childOK {
			if edge.Parent == edge.Child {
				add("edges", i, "node %d is both parent and child", edge.Parent)
			} else if tc.Nodes[edge.Parent].Time <= tc.Nodes[edge.Child].Time {
				add("edges", i, "parent node %d time %v is not after child node %d time %v",
					edge.Parent, tc.Nodes[edge.Parent].Time, edge.Child, tc.Nodes[edge.Child].Time)
			}
		}
		if !(edge.Left < edge.Right) {
			add("edges", i, "interval [%v, %v) is empty", edge.Left, edge.Right)
		}
		if edge.Left < 0 {
			add("edges", i, "interval start %v is negative", edge.Left)
		}
		if bounded && edge.Right > tc.SequenceLength {
			add("edges", i, "interval end %v exceeds sequence length %v", edge.Right, tc.SequenceLength)
		}
	}

	for i, site := range tc.Sites {
		if site.Position < 0 {
			add("sites", i, "position %v is negative", site.Position)
		}
		if bounded && site.Position >= tc.SequenceLength {
			add("sites", i, "position %v is outside sequence length %v", site.Position, tc.SequenceLength)
		}
	}

	for i, mut := range tc.Mutations {
		siteOK := mut.Site >= 0 && mut.Site < numSites
		if !siteOK {
			add("mutations", i, "references missing site %d", mut.Site)
		}
		if mut.Node < 0 || mut.Node >= numNodes {
			add("mutations", i, "references missing node %d", mut.Node)
		}
		if mut.Parent == NullID {
			continue
		}
		if mut.Parent < 0 || mut.Parent >= numMutations {
			add("mutations", i, "references missing parent mutation %d", mut.Parent)
			continue
		}
		if mut.Parent >= ID(i) {
			add("mutations", i, "parent mutation %d does not precede it", mut.Parent)
			continue
		}
		if siteOK && tc.Mutations[mut.Parent].Site != mut.Site {
			add("mutations", i, "parent mutation %d is at a different site", mut.Parent)
		}
	}

	return problems
}
