// Package vector encodes graphs into binary feature vectors against a
// feature dictionary.
package vector

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sanonone/kektorgraph/pkg/bitset"
	"github.com/sanonone/kektorgraph/pkg/features"
	"github.com/sanonone/kektorgraph/pkg/graph"
	"github.com/sanonone/kektorgraph/pkg/metrics"
)

// Matrix holds one feature vector per graph, all of the same width.
type Matrix struct {
	Cols int
	Rows []*bitset.BitSet
}

// NewMatrix returns a matrix of rows zeroed vectors of width cols.
func NewMatrix(rows, cols int) *Matrix {
	m := &Matrix{Cols: cols, Rows: make([]*bitset.BitSet, rows)}
	for i := range m.Rows {
		m.Rows[i] = bitset.New(cols)
	}
	return m
}

// Len returns the number of rows.
func (m *Matrix) Len() int { return len(m.Rows) }

// EncodeOptions controls feature extraction during encoding.
type EncodeOptions struct {
	Features features.Options
	// Workers bounds the number of graphs encoded concurrently. Values < 1
	// mean one worker.
	Workers int
}

// EncodeGraph encodes a single graph against dict. Extracted features that
// the dictionary does not list are ignored.
func EncodeGraph(g *graph.Graph, dict *features.Dictionary, opts features.Options) *bitset.BitSet {
	row := bitset.New(dict.Len())
	for id := range features.Extract(g, opts) {
		if i, ok := dict.Index(id); ok {
			row.Set(i)
		}
	}
	return row
}

// Encode produces one vector per graph, in input order. Graphs are encoded in
// parallel; each worker writes only the row of the graph it owns. The
// dictionary is only read.
func Encode(ctx context.Context, graphs []*graph.Graph, dict *features.Dictionary, opts EncodeOptions) (*Matrix, error) {
	start := time.Now()
	m := &Matrix{Cols: dict.Len(), Rows: make([]*bitset.BitSet, len(graphs))}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, g := range graphs {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := EncodeGraph(g, dict, opts.Features)
			m.Rows[i] = row
			metrics.FeaturesPerGraph.Observe(float64(row.Count()))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.EncodeDuration.Observe(time.Since(start).Seconds())
	return m, nil
}
