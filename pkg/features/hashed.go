package features

import (
	"strconv"
	"strings"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// Hashed families. Their structural contexts are open-ended, so each
// (context, threshold) pair is hashed into a fixed bucket range.
//
// Counts are taken over the whole graph and compared against lower-bound
// thresholds, which keeps every emitted bucket monotone: a subgraph can only
// have fewer occurrences of each context.

const (
	wedgePrefix = "H2"
	path3Prefix = "H3"
	starPrefix  = "HS"
)

func bucketID(prefix string, b int) string {
	return prefix + ":" + strconv.Itoa(b)
}

// arm is one spoke of a wedge: the edge label and the label at its far end.
type arm struct {
	edge, node string
}

func (a arm) less(b arm) bool {
	if a.edge != b.edge {
		return a.edge < b.edge
	}
	return a.node < b.node
}

// wedgeFeatures hashes every length-2 path, keyed by its center label and the
// unordered pair of arms around it.
func wedgeFeatures(g *graph.Graph, buckets int, feats Set) {
	counts := make(map[string]int)
	for c := 0; c < g.NumNodes(); c++ {
		nbrs := g.Neighbors(c)
		if len(nbrs) < 2 {
			continue
		}
		center := g.Label(c)

		arms := make([]arm, len(nbrs))
		for i, h := range nbrs {
			arms[i] = arm{edge: g.EdgeLabel(h), node: g.Label(h.To)}
		}

		for i := 0; i < len(arms); i++ {
			for j := i + 1; j < len(arms); j++ {
				a1, a2 := arms[i], arms[j]
				if a2.less(a1) {
					a1, a2 = a2, a1
				}
				key := center + "|" + a1.edge + ":" + a1.node + "|" + a2.edge + ":" + a2.node
				counts[key]++
			}
		}
	}

	for key, c := range counts {
		for _, t := range Ladders.Wedge {
			if c >= t {
				b := bucket(wedgePrefix+"|"+key+"|t="+strconv.Itoa(t), buckets)
				feats.add(bucketID(wedgePrefix, b))
			}
		}
	}
}

// path3Features hashes every simple path with exactly three edges. Each path
// is found from both ends; only the walk starting at the smaller node id is
// recorded.
func path3Features(g *graph.Graph, buckets int, feats Set) {
	counts := make(map[string]int)

	var (
		nodes [4]int
		edges [3]string
	)

	var walk func(depth int)
	walk = func(depth int) {
		cur := nodes[depth]
		if depth == 3 {
			if g.Node(nodes[0]).ID < g.Node(cur).ID {
				counts[path3Key(g, nodes, edges)]++
			}
			return
		}
		for _, h := range g.Neighbors(cur) {
			if visited(nodes[:depth+1], h.To) {
				continue
			}
			nodes[depth+1] = h.To
			edges[depth] = g.EdgeLabel(h)
			walk(depth + 1)
		}
	}

	for s := 0; s < g.NumNodes(); s++ {
		nodes[0] = s
		walk(0)
	}

	for key, c := range counts {
		for _, t := range Ladders.Path3 {
			if c >= t {
				b := bucket(path3Prefix+"|"+key+"|t="+strconv.Itoa(t), buckets)
				feats.add(bucketID(path3Prefix, b))
			}
		}
	}
}

func visited(path []int, p int) bool {
	for _, q := range path {
		if q == p {
			return true
		}
	}
	return false
}

// path3Key returns the lexicographically smaller of the forward and reversed
// label sequences n0-e0-n1-e1-n2-e2-n3.
func path3Key(g *graph.Graph, nodes [4]int, edges [3]string) string {
	var fwd, rev strings.Builder
	for i := 0; i < 4; i++ {
		if i > 0 {
			fwd.WriteString("-" + edges[i-1] + "-")
			rev.WriteString("-" + edges[3-i] + "-")
		}
		fwd.WriteString(g.Label(nodes[i]))
		rev.WriteString(g.Label(nodes[3-i]))
	}
	f, r := fwd.String(), rev.String()
	if f <= r {
		return f
	}
	return r
}

// starFeatures hashes edge-aware star properties. A node has property
// "<center>|<edge>:<nbr>|local>=t" when at least t of its neighbors are reached
// through that edge label and carry that label; the emitted bucket encodes how
// many nodes of the graph have the property.
func starFeatures(g *graph.Graph, buckets int, feats Set) {
	props := make(map[string]int)
	for c := 0; c < g.NumNodes(); c++ {
		if g.Degree(c) == 0 {
			continue
		}
		center := g.Label(c)

		local := make(map[arm]int)
		for _, h := range g.Neighbors(c) {
			local[arm{edge: g.EdgeLabel(h), node: g.Label(h.To)}]++
		}

		for a, cnt := range local {
			for _, t := range Ladders.Local {
				if cnt >= t {
					props[center+"|"+a.edge+":"+a.node+"|local>="+strconv.Itoa(t)]++
				}
			}
		}
	}

	for prop, cnt := range props {
		for _, gt := range Ladders.Global {
			if cnt >= gt {
				b := bucket(starPrefix+"|"+prop+"|g>="+strconv.Itoa(gt), buckets)
				feats.add(bucketID(starPrefix, b))
			}
		}
	}
}
