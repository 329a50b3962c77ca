// Package graph provides the in-memory labeled graph model used by every stage
// of the filtering pipeline, together with the line-oriented database parser
// and the structural signature used for deduplication.
//
// Graphs are undirected and simple: at most one edge joins a pair of nodes.
// Nodes are addressed two ways. The node id is the integer written in the
// database file; the position is the dense index (0..NumNodes-1) assigned in
// declaration order. All adjacency data is stored by position so that degree
// and neighbor lookups are plain slice accesses.
package graph

import "fmt"

// Node is a labeled vertex.
type Node struct {
	ID    int
	Label string
}

// Edge is an undirected labeled edge between two node positions.
type Edge struct {
	U, V  int
	Label string
}

// Half is one side of an edge as seen from a node: the neighbor position and
// the index of the edge in Graph.Edges.
type Half struct {
	To   int
	Edge int
}

// Graph is a labeled, undirected, simple graph. It is built once by the parser
// and treated as read-only afterwards.
type Graph struct {
	ID string

	nodes  []Node
	edges  []Edge
	adj    [][]Half
	degree []int

	pos     map[int]int    // node id -> position
	edgeIdx map[[2]int]int // (min pos, max pos) -> index into edges
}

// New returns an empty graph with the given identifier.
func New(id string) *Graph {
	return &Graph{
		ID:      id,
		pos:     make(map[int]int),
		edgeIdx: make(map[[2]int]int),
	}
}

// AddNode declares a node. Declaring an existing id again overwrites its label.
func (g *Graph) AddNode(id int, label string) {
	if p, ok := g.pos[id]; ok {
		g.nodes[p].Label = label
		return
	}
	g.pos[id] = len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: id, Label: label})
	g.adj = append(g.adj, nil)
	g.degree = append(g.degree, 0)
}

// AddEdge connects two declared nodes. A second edge between the same pair
// overwrites the label of the first one.
func (g *Graph) AddEdge(a, b int, label string) error {
	pa, ok := g.pos[a]
	if !ok {
		return fmt.Errorf("node %d: %w", a, ErrUndeclaredNode)
	}
	pb, ok := g.pos[b]
	if !ok {
		return fmt.Errorf("node %d: %w", b, ErrUndeclaredNode)
	}

	key := [2]int{min(pa, pb), max(pa, pb)}
	if i, ok := g.edgeIdx[key]; ok {
		g.edges[i].Label = label
		return nil
	}

	i := len(g.edges)
	g.edgeIdx[key] = i
	g.edges = append(g.edges, Edge{U: pa, V: pb, Label: label})

	g.adj[pa] = append(g.adj[pa], Half{To: pb, Edge: i})
	if pa != pb {
		g.adj[pb] = append(g.adj[pb], Half{To: pa, Edge: i})
	}
	// a self-loop contributes twice to the degree of its node
	g.degree[pa]++
	g.degree[pb]++
	return nil
}

// NumNodes returns the number of declared nodes.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the number of distinct edges.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Node returns the node at position p.
func (g *Graph) Node(p int) Node { return g.nodes[p] }

// Label returns the label of the node at position p.
func (g *Graph) Label(p int) string { return g.nodes[p].Label }

// Edges returns the edge list. Callers must not modify it.
func (g *Graph) Edges() []Edge { return g.edges }

// Neighbors returns the half-edges leaving position p. A self-loop appears
// once. Callers must not modify the returned slice.
func (g *Graph) Neighbors(p int) []Half { return g.adj[p] }

// Degree returns the degree of the node at position p.
func (g *Graph) Degree(p int) int { return g.degree[p] }

// EdgeLabel returns the label of the edge referenced by h.
func (g *Graph) EdgeLabel(h Half) string { return g.edges[h.Edge].Label }

// Position resolves a file node id to its position.
func (g *Graph) Position(id int) (int, bool) {
	p, ok := g.pos[id]
	return p, ok
}

// EdgeType returns the canonical undirected edge type of e: the two endpoint
// labels ordered lexicographically around the edge label.
func (g *Graph) EdgeType(e Edge) (lo, label, hi string) {
	lu, lv := g.nodes[e.U].Label, g.nodes[e.V].Label
	if lv < lu {
		lu, lv = lv, lu
	}
	return lu, e.Label, lv
}
