package graph

import (
	"bufio"
	"fmt"
	"io"
)

// Write serializes graphs in the same line format Parse accepts, keeping the
// node ids read from the file, so Write(Parse(x)) is structurally equivalent to x.
func Write(w io.Writer, graphs []*Graph) error {
	bw := bufio.NewWriter(w)
	for _, g := range graphs {
		fmt.Fprintf(bw, "t # %s\n", g.ID)
		for _, n := range g.nodes {
			fmt.Fprintf(bw, "v %d %s\n", n.ID, n.Label)
		}
		for _, e := range g.edges {
			fmt.Fprintf(bw, "e %d %d %s\n", g.nodes[e.U].ID, g.nodes[e.V].ID, e.Label)
		}
	}
	return bw.Flush()
}
