package graph

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, input string) []*Graph {
	t.Helper()
	graphs, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return graphs
}

func TestSignatureIgnoresIDsAndOrder(t *testing.T) {
	graphs := mustParse(t, `t # a
v 0 C
v 1 O
v 2 N
e 0 1 s
e 1 2 d
t # b
v 7 N
v 3 O
v 5 C
e 3 7 d
e 5 3 s
`)
	a, b := ComputeSignature(graphs[0]), ComputeSignature(graphs[1])
	if a.Key() != b.Key() {
		t.Errorf("relabeled copies have different signatures:\n%s\n%s", a.Key(), b.Key())
	}
}

func TestSignatureSeparatesDegreeDistributions(t *testing.T) {
	// path A-A-A-A vs star A(A,A,A): same labels, same edge types, different degrees
	graphs := mustParse(t, `t # path
v 0 A
v 1 A
v 2 A
v 3 A
e 0 1 x
e 1 2 x
e 2 3 x
t # star
v 0 A
v 1 A
v 2 A
v 3 A
e 0 1 x
e 0 2 x
e 0 3 x
`)
	if ComputeSignature(graphs[0]).Key() == ComputeSignature(graphs[1]).Key() {
		t.Error("path and star share a signature")
	}
}

func TestDeduplicatePreservesFirstSeenOrder(t *testing.T) {
	graphs := mustParse(t, `t # 0
v 0 A
t # 1
v 0 B
t # 2
v 0 A
t # 3
v 0 C
t # 4
v 0 B
`)
	kept := Deduplicate(graphs)

	var ids []string
	for _, g := range kept {
		ids = append(ids, g.ID)
	}
	if got, want := strings.Join(ids, ","), "0,1,3"; got != want {
		t.Errorf("kept ids = %s, want %s", got, want)
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	graphs := mustParse(t, twoGraphs+twoGraphs)
	once := Deduplicate(graphs)
	twice := Deduplicate(once)

	if len(once) != 2 {
		t.Fatalf("first pass kept %d graphs, want 2", len(once))
	}
	if len(twice) != len(once) {
		t.Fatalf("second pass kept %d graphs, want %d", len(twice), len(once))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("position %d changed on second pass", i)
		}
	}
}
