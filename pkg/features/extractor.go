package features

import (
	"slices"
	"strconv"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// Set is the set of feature identifiers that hold for one graph.
type Set map[string]struct{}

func (s Set) add(id string) { s[id] = struct{}{} }

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the identifiers in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// SubsetOf reports whether every identifier of s is also in other.
func (s Set) SubsetOf(other Set) bool {
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Extract computes the feature set of g. It does not need a dictionary: the
// hashed families land in [0, opts.H2), [0, opts.H3) and [0, opts.HS), which
// the dictionary always enumerates in full.
func Extract(g *graph.Graph, opts Options) Set {
	feats := make(Set)

	sizeFeatures(g, feats)
	atomFeatures(g, feats)
	edgeTypeFeatures(g, feats)
	degreeFeatures(g, feats)
	if HasCycle(g) {
		feats.add(CycleFeature)
	}
	wedgeFeatures(g, opts.H2, feats)
	path3Features(g, opts.H3, feats)
	starFeatures(g, opts.HS, feats)

	return feats
}

// thresholdID formats "<prefix>>=<k>".
func thresholdID(prefix string, k int) string {
	return prefix + ">=" + strconv.Itoa(k)
}

// emitLadder adds prefix>=k for every k in ladder with count >= k.
func emitLadder(feats Set, prefix string, count int, ladder []int) {
	for _, k := range ladder {
		if count >= k {
			feats.add(thresholdID(prefix, k))
		}
	}
}

func sizeFeatures(g *graph.Graph, feats Set) {
	emitLadder(feats, "NV", g.NumNodes(), Ladders.Nodes)
	emitLadder(feats, "NE", g.NumEdges(), Ladders.Edges)
}

func atomFeatures(g *graph.Graph, feats Set) {
	counts := make(map[string]int)
	for p := 0; p < g.NumNodes(); p++ {
		counts[g.Label(p)]++
	}
	for label, c := range counts {
		emitLadder(feats, atomPrefix(label), c, Ladders.Atoms)
	}
}

func edgeTypeFeatures(g *graph.Graph, feats Set) {
	counts := make(map[string]int)
	for _, e := range g.Edges() {
		counts[edgeTypeKey(g.EdgeType(e))]++
	}
	for key, c := range counts {
		emitLadder(feats, edgeTypePrefix(key), c, Ladders.Types)
	}
}

func degreeFeatures(g *graph.Graph, feats Set) {
	for p := 0; p < g.NumNodes(); p++ {
		emitLadder(feats, degreePrefix(g.Label(p)), g.Degree(p), Ladders.Degree)
	}
}

func atomPrefix(label string) string   { return "A:" + label }
func degreePrefix(label string) string { return "D:" + label }
func edgeTypePrefix(key string) string { return "E:" + key }

func edgeTypeKey(lo, label, hi string) string {
	return lo + "-" + label + "-" + hi
}
