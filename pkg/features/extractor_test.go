package features

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

const goldenGraphs = `t # chain
v 0 C
v 1 C
v 2 O
e 0 1 -
e 1 2 -
t # ring
v 0 C
v 1 C
v 2 C
v 3 N
v 4 O
v 5 O
e 0 1 s
e 1 2 d
e 2 0 s
e 2 3 s
e 3 4 d
e 3 5 d
`

// Reference feature sets for goldenGraphs, default bucket sizes.
var goldenFeatures = map[string]string{
	"chain": "A:C>=1 A:C>=2 A:O>=1 D:C>=1 D:C>=2 D:O>=1 E:C---C>=1 E:C---O>=1 H2:980 HS:540 HS:708 HS:801 HS:839 NE>=0 NE>=1 NE>=2 NV>=1 NV>=2 NV>=3",
	"ring": "A:C>=1 A:C>=2 A:C>=3 A:N>=1 A:O>=1 A:O>=2 CY:any D:C>=1 D:C>=2 D:C>=3 D:N>=1 D:N>=2 D:N>=3 D:O>=1 " +
		"E:C-d-C>=1 E:C-s-C>=1 E:C-s-C>=2 E:C-s-N>=1 E:N-d-O>=1 E:N-d-O>=2 " +
		"H2:1011 H2:188 H2:465 H2:609 H2:656 H2:810 H2:948 H2:951 " +
		"H3:1245 H3:2030 H3:21 H3:699 H3:869 H3:906 " +
		"HS:115 HS:135 HS:140 HS:273 HS:276 HS:281 HS:551 HS:575 HS:60 HS:705 HS:734 HS:973 " +
		"NE>=0 NE>=1 NE>=2 NE>=3 NE>=4 NE>=5 NE>=6 NV>=1 NV>=2 NV>=3 NV>=4 NV>=5 NV>=6",
}

func parse(t *testing.T, input string) []*graph.Graph {
	t.Helper()
	graphs, err := graph.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return graphs
}

func TestExtractGolden(t *testing.T) {
	for _, g := range parse(t, goldenGraphs) {
		t.Run(g.ID, func(t *testing.T) {
			got := strings.Join(Extract(g, DefaultOptions()).Sorted(), " ")
			if want := goldenFeatures[g.ID]; got != want {
				t.Errorf("Extract() mismatch\nGOT : %s\nWANT: %s", got, want)
			}
		})
	}
}

func TestBucketKnownValues(t *testing.T) {
	testCases := []struct {
		in   string
		n    int
		want int
	}{
		{in: "H2|C|-:C|-:O|t=1", n: 1024, want: 980},
		{in: "HS|C|-:O|local>=1|g>=1", n: 1024, want: 839},
		{in: "H3|C-x-C-y-O-z-N|t=1", n: 2048, want: 151},
	}
	for _, tc := range testCases {
		if got := bucket(tc.in, tc.n); got != tc.want {
			t.Errorf("bucket(%q, %d) = %d, want %d", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	g := parse(t, goldenGraphs)[1]
	first := strings.Join(Extract(g, DefaultOptions()).Sorted(), " ")
	for i := 0; i < 20; i++ {
		if again := strings.Join(Extract(g, DefaultOptions()).Sorted(), " "); again != first {
			t.Fatalf("run %d produced a different feature set", i)
		}
	}
}

func TestExtractHashedBucketsInRange(t *testing.T) {
	opts := Options{H2: 7, H3: 5, HS: 3}
	for _, g := range parse(t, goldenGraphs) {
		for id := range Extract(g, opts) {
			prefix, num, ok := strings.Cut(id, ":")
			if !ok {
				continue
			}
			limit := map[string]int{"H2": opts.H2, "H3": opts.H3, "HS": opts.HS}[prefix]
			if limit == 0 {
				continue
			}
			b, err := strconv.Atoi(num)
			if err != nil || b < 0 || b >= limit {
				t.Errorf("%s out of range [0,%d)", id, limit)
			}
		}
	}
}

func TestHasCycle(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "empty", input: "t # 0\n", want: false},
		{name: "tree", input: "t # 0\nv 0 A\nv 1 A\nv 2 A\nv 3 A\ne 0 1 x\ne 0 2 x\ne 0 3 x\n", want: false},
		{name: "triangle", input: "t # 0\nv 0 A\nv 1 A\nv 2 A\ne 0 1 x\ne 1 2 x\ne 2 0 x\n", want: true},
		{name: "self loop", input: "t # 0\nv 0 A\ne 0 0 x\n", want: true},
		{name: "disconnected square", input: "t # 0\nv 9 B\nv 0 A\nv 1 A\nv 2 A\nv 3 A\ne 0 1 x\ne 1 2 x\ne 2 3 x\ne 3 0 x\n", want: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := parse(t, tc.input)[0]
			if got := HasCycle(g); got != tc.want {
				t.Errorf("HasCycle() = %v, want %v", got, tc.want)
			}
		})
	}
}

// randomGraph builds a connected-ish random labeled graph.
func randomGraph(rng *rand.Rand, n int) string {
	nodeLabels := []string{"C", "N", "O", "S"}
	edgeLabels := []string{"1", "2"}

	var b strings.Builder
	b.WriteString("t # g\n")
	for i := 0; i < n; i++ {
		b.WriteString("v " + strconv.Itoa(i) + " " + nodeLabels[rng.Intn(len(nodeLabels))] + "\n")
	}
	seen := map[[2]int]bool{}
	for i := 1; i < n; i++ {
		j := rng.Intn(i)
		seen[[2]int{j, i}] = true
		b.WriteString("e " + strconv.Itoa(j) + " " + strconv.Itoa(i) + " " + edgeLabels[rng.Intn(2)] + "\n")
	}
	for k := 0; k < n/2; k++ {
		i, j := rng.Intn(n), rng.Intn(n)
		if i == j || seen[[2]int{min(i, j), max(i, j)}] {
			continue
		}
		seen[[2]int{min(i, j), max(i, j)}] = true
		b.WriteString("e " + strconv.Itoa(i) + " " + strconv.Itoa(j) + " " + edgeLabels[rng.Intn(2)] + "\n")
	}
	return b.String()
}

// without returns g minus one node (and its edges) or minus one edge.
func without(g *graph.Graph, dropNode, dropEdge int) *graph.Graph {
	sub := graph.New(g.ID + "-sub")
	for p := 0; p < g.NumNodes(); p++ {
		if p == dropNode {
			continue
		}
		n := g.Node(p)
		sub.AddNode(n.ID, n.Label)
	}
	for i, e := range g.Edges() {
		if i == dropEdge || e.U == dropNode || e.V == dropNode {
			continue
		}
		_ = sub.AddEdge(g.Node(e.U).ID, g.Node(e.V).ID, e.Label)
	}
	return sub
}

func TestExtractMonotone(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	opts := DefaultOptions()

	for round := 0; round < 30; round++ {
		g := parse(t, randomGraph(rng, 4+rng.Intn(8)))[0]
		full := Extract(g, opts)

		for p := 0; p < g.NumNodes(); p++ {
			sub := without(g, p, -1)
			if !Extract(sub, opts).SubsetOf(full) {
				t.Fatalf("round %d: removing node %d produced a feature missing from the supergraph", round, p)
			}
		}
		for i := range g.Edges() {
			sub := without(g, -1, i)
			if !Extract(sub, opts).SubsetOf(full) {
				t.Fatalf("round %d: removing edge %d produced a feature missing from the supergraph", round, i)
			}
		}
	}
}
