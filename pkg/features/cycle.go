package features

import (
	"log/slog"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// HasCycle reports whether the cycle space of g is non-trivial, i.e. whether
// any cycle basis of g is non-empty. A self-loop is a cycle.
//
// The check never fails outward: a panic inside the cycle-basis computation is
// recovered and reported as "no cycle". Dropping a monotone bit can only cost
// filtering precision, never a true match.
func HasCycle(g *graph.Graph) (found bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("cycle check failed, omitting feature", "graph", g.ID, "error", r)
			found = false
		}
	}()

	ug := simple.NewUndirectedGraph()
	for p := 0; p < g.NumNodes(); p++ {
		ug.AddNode(simple.Node(p))
	}
	for _, e := range g.Edges() {
		if e.U == e.V {
			return true
		}
		ug.SetEdge(simple.Edge{F: simple.Node(e.U), T: simple.Node(e.V)})
	}

	// without self-loops or parallel edges a cycle needs three edges
	if g.NumEdges() < 3 {
		return false
	}
	return len(topo.UndirectedCyclesIn(ug)) > 0
}
