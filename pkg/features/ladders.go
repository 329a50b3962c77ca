// Package features computes monotone structural features of labeled graphs
// and builds the ordered dictionary that maps features to vector positions.
//
// Every feature is monotone over the subgraph relation: if a query graph Q is
// a subgraph of G, every feature that holds for Q also holds for G. Count
// features are therefore expressed as lower bounds ("at least k") and never
// as exact values.
package features

// Ladders holds the threshold sequences shared by extraction and dictionary
// enumeration. Both sides must read from this one table; a threshold present
// on one side only silently breaks vector comparability.
var Ladders = struct {
	Nodes  []int
	Edges  []int
	Atoms  []int
	Types  []int
	Degree []int

	Wedge  []int
	Path3  []int
	Local  []int
	Global []int
}{
	Nodes:  []int{1, 2, 3, 4, 5, 6, 8, 10, 12, 15, 20, 25, 30, 40, 50, 75, 100},
	Edges:  []int{0, 1, 2, 3, 4, 5, 6, 8, 10, 12, 15, 20, 25, 30, 40, 50, 75, 100, 150, 200},
	Atoms:  []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 12, 15, 20, 30, 40, 50},
	Types:  []int{1, 2, 3, 4, 5, 6, 7, 8, 10, 12, 15, 20, 30, 40, 50},
	Degree: []int{1, 2, 3, 4, 5, 6, 8, 10},

	Wedge:  []int{1, 2, 3, 5},
	Path3:  []int{1, 2, 3, 5},
	Local:  []int{1, 2, 3},
	Global: []int{1, 2, 3, 5},
}

// CycleFeature is the single cycle-presence identifier.
const CycleFeature = "CY:any"

// Options configures the hash bucket ranges of the open-ended families.
type Options struct {
	H2 int // wedge buckets
	H3 int // length-3 path buckets
	HS int // star buckets
}

// DefaultOptions returns the standard bucket sizes.
func DefaultOptions() Options {
	return Options{H2: 1024, H3: 2048, HS: 1024}
}
