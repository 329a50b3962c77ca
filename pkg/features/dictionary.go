package features

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/btree"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// ErrDuplicateFeature is returned when a dictionary file lists an identifier twice.
var ErrDuplicateFeature = errors.New("duplicate feature identifier")

// Dictionary is the ordered feature catalog. Position i of the catalog is bit
// i of every feature vector encoded against it. A Dictionary is immutable.
type Dictionary struct {
	ids   []string
	index map[string]int
}

func newDictionary(ids []string) (*Dictionary, error) {
	d := &Dictionary{
		ids:   ids,
		index: make(map[string]int, len(ids)),
	}
	for i, id := range ids {
		if _, dup := d.index[id]; dup {
			return nil, fmt.Errorf("%q: %w", id, ErrDuplicateFeature)
		}
		d.index[id] = i
	}
	return d, nil
}

// Len returns the number of features, which is the vector length.
func (d *Dictionary) Len() int { return len(d.ids) }

// At returns the identifier at position i.
func (d *Dictionary) At(i int) string { return d.ids[i] }

// Index returns the position of id.
func (d *Dictionary) Index(id string) (int, bool) {
	i, ok := d.index[id]
	return i, ok
}

// IDs returns a copy of the catalog in order.
func (d *Dictionary) IDs() []string {
	out := make([]string, len(d.ids))
	copy(out, d.ids)
	return out
}

// BucketSizes returns the hash ranges the dictionary was built with, counted
// from its H2, H3 and HS entries.
func (d *Dictionary) BucketSizes() Options {
	var o Options
	for _, id := range d.ids {
		switch {
		case strings.HasPrefix(id, wedgePrefix+":"):
			o.H2++
		case strings.HasPrefix(id, path3Prefix+":"):
			o.H3++
		case strings.HasPrefix(id, starPrefix+":"):
			o.HS++
		}
	}
	return o
}

// BuildDictionary enumerates the feature universe of graphs, which should
// already be deduplicated. Every threshold of every discovered label and edge
// type is listed whether or not any graph reaches it, and the hashed bucket
// ranges are listed in full.
//
// Catalog order: NV, NE, A per label, E per edge type, D per label, CY, H2,
// H3, HS. Labels and edge types are sorted.
func BuildDictionary(graphs []*graph.Graph, opts Options) *Dictionary {
	less := func(a, b string) bool { return a < b }
	labels := btree.NewBTreeG[string](less)
	types := btree.NewBTreeG[string](less)

	for _, g := range graphs {
		for p := 0; p < g.NumNodes(); p++ {
			labels.Set(g.Label(p))
		}
		for _, e := range g.Edges() {
			types.Set(edgeTypeKey(g.EdgeType(e)))
		}
	}

	var ids []string
	ladder := func(prefix string, ks []int) {
		for _, k := range ks {
			ids = append(ids, thresholdID(prefix, k))
		}
	}
	buckets := func(prefix string, n int) {
		for b := 0; b < n; b++ {
			ids = append(ids, bucketID(prefix, b))
		}
	}

	ladder("NV", Ladders.Nodes)
	ladder("NE", Ladders.Edges)
	labels.Scan(func(l string) bool {
		ladder(atomPrefix(l), Ladders.Atoms)
		return true
	})
	types.Scan(func(key string) bool {
		ladder(edgeTypePrefix(key), Ladders.Types)
		return true
	})
	labels.Scan(func(l string) bool {
		ladder(degreePrefix(l), Ladders.Degree)
		return true
	})
	ids = append(ids, CycleFeature)
	buckets(wedgePrefix, opts.H2)
	buckets(path3Prefix, opts.H3)
	buckets(starPrefix, opts.HS)

	d, err := newDictionary(ids)
	if err != nil {
		// labels and edge types come from sets, so identifiers are unique
		panic(err)
	}
	return d
}

// WriteTo writes one identifier per line in catalog order.
func (d *Dictionary) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, id := range d.ids {
		k, err := bw.WriteString(id + "\n")
		n += int64(k)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// ReadDictionary parses a dictionary written by WriteTo. Surrounding
// whitespace is trimmed from every line; blank lines are kept as identifiers
// only if they are not trailing.
func ReadDictionary(r io.Reader) (*Dictionary, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		ids = append(ids, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	for len(ids) > 0 && ids[len(ids)-1] == "" {
		ids = ids[:len(ids)-1]
	}
	return newDictionary(ids)
}

// SaveDictionary writes d to path.
func SaveDictionary(path string, d *Dictionary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dictionary file: %w", err)
	}
	if _, err := d.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write dictionary: %w", err)
	}
	return f.Close()
}

// LoadDictionary reads a dictionary from path.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary file: %w", err)
	}
	defer f.Close()

	d, err := ReadDictionary(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
