package graph

import (
	"slices"
	"strconv"
	"strings"
)

// LabelDegree pairs a node label with the degree of that node.
type LabelDegree struct {
	Label  string
	Degree int
}

// EdgeType is the canonical undirected type of an edge.
type EdgeType struct {
	Lo, Label, Hi string
}

// Signature is a structural fingerprint used to collapse likely-duplicate
// graphs before the feature dictionary is built.
//
// It is NOT a canonical form. Two non-isomorphic graphs with the same multiset
// of (label, degree) pairs and the same multiset of edge types share a
// signature, and Deduplicate will keep only the first of them. Use it to
// narrow the graphs a dictionary is built from, not to decide which graphs are
// encoded or served. Treat it as an approximation, not a guarantee.
type Signature struct {
	NumNodes  int
	NumEdges  int
	Nodes     []LabelDegree // sorted by label, then degree
	EdgeTypes []EdgeType    // sorted by lo, label, hi
}

// ComputeSignature derives the signature of g. It has no side effects.
func ComputeSignature(g *Graph) Signature {
	sig := Signature{
		NumNodes:  g.NumNodes(),
		NumEdges:  g.NumEdges(),
		Nodes:     make([]LabelDegree, 0, g.NumNodes()),
		EdgeTypes: make([]EdgeType, 0, g.NumEdges()),
	}

	for p := range g.nodes {
		sig.Nodes = append(sig.Nodes, LabelDegree{Label: g.nodes[p].Label, Degree: g.degree[p]})
	}
	slices.SortFunc(sig.Nodes, func(a, b LabelDegree) int {
		if c := strings.Compare(a.Label, b.Label); c != 0 {
			return c
		}
		return a.Degree - b.Degree
	})

	for _, e := range g.edges {
		lo, el, hi := g.EdgeType(e)
		sig.EdgeTypes = append(sig.EdgeTypes, EdgeType{Lo: lo, Label: el, Hi: hi})
	}
	slices.SortFunc(sig.EdgeTypes, func(a, b EdgeType) int {
		if c := strings.Compare(a.Lo, b.Lo); c != 0 {
			return c
		}
		if c := strings.Compare(a.Label, b.Label); c != 0 {
			return c
		}
		return strings.Compare(a.Hi, b.Hi)
	})

	return sig
}

// Key encodes the signature as a string suitable for use as a map key.
// Labels never contain whitespace (the parser splits on it), so a space
// separated encoding is unambiguous.
func (s Signature) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(s.NumNodes))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(s.NumEdges))
	b.WriteString(" |")
	for _, n := range s.Nodes {
		b.WriteByte(' ')
		b.WriteString(n.Label)
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(n.Degree))
	}
	b.WriteString(" |")
	for _, e := range s.EdgeTypes {
		b.WriteByte(' ')
		b.WriteString(e.Lo)
		b.WriteByte(' ')
		b.WriteString(e.Label)
		b.WriteByte(' ')
		b.WriteString(e.Hi)
	}
	return b.String()
}

// Deduplicate keeps the first graph for every distinct signature and drops the
// rest, preserving the relative order of the kept graphs. Downstream serial
// numbers are positions in the returned slice.
func Deduplicate(graphs []*Graph) []*Graph {
	seen := make(map[string]struct{}, len(graphs))
	kept := make([]*Graph, 0, len(graphs))
	for _, g := range graphs {
		key := ComputeSignature(g).Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, g)
	}
	return kept
}
