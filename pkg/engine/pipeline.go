package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sanonone/kektorgraph/pkg/features"
	"github.com/sanonone/kektorgraph/pkg/graph"
	"github.com/sanonone/kektorgraph/pkg/match"
	"github.com/sanonone/kektorgraph/pkg/metrics"
	"github.com/sanonone/kektorgraph/pkg/persistence"
)

// LoadGraphs parses a graph database file and counts the graphs under the
// given pipeline stage.
func LoadGraphs(path, stage string) ([]*graph.Graph, error) {
	graphs, err := graph.ReadFile(path)
	if err != nil {
		return nil, err
	}
	metrics.GraphsParsed.WithLabelValues(stage).Add(float64(len(graphs)))
	return graphs, nil
}

// Dedup drops signature duplicates and records how many were dropped.
func Dedup(graphs []*graph.Graph) []*graph.Graph {
	kept := graph.Deduplicate(graphs)
	if dropped := len(graphs) - len(kept); dropped > 0 {
		metrics.DuplicatesDropped.Add(float64(dropped))
	}
	return kept
}

// Identify builds the feature dictionary of the database at dbPath and writes
// it to dictPath.
func Identify(ctx context.Context, dbPath, dictPath string, opts Options) (*features.Dictionary, error) {
	start := time.Now()

	graphs, err := LoadGraphs(dbPath, "identify")
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unique := Dedup(graphs)
	dict := features.BuildDictionary(unique, opts.Features)

	if err := features.SaveDictionary(dictPath, dict); err != nil {
		return nil, err
	}

	slog.Info("Feature dictionary written",
		"path", dictPath,
		"graphs", len(graphs),
		"unique", len(unique),
		"features", dict.Len(),
		"duration", time.Since(start).String(),
	)
	return dict, nil
}

// Convert encodes every graph of graphPath against the dictionary at dictPath
// and writes the matrix to outPath. Rows follow the graph order of the file.
func Convert(ctx context.Context, graphPath, dictPath, outPath string, opts Options) error {
	start := time.Now()

	dict, err := features.LoadDictionary(dictPath)
	if err != nil {
		return err
	}
	graphs, err := LoadGraphs(graphPath, "convert")
	if err != nil {
		return err
	}

	m, err := encode(ctx, graphs, dict, opts)
	if err != nil {
		return err
	}
	if err := persistence.SaveMatrix(outPath, m, opts.Compression); err != nil {
		return err
	}

	slog.Info("Feature matrix written",
		"path", outPath,
		"rows", m.Len(),
		"cols", m.Cols,
		"compression", string(opts.Compression),
		"duration", time.Since(start).String(),
	)
	return nil
}

// MatchFiles matches every query row of queryPath against dbPath and writes
// the candidate lists to outPath.
func MatchFiles(ctx context.Context, dbPath, queryPath, outPath string, opts Options) error {
	start := time.Now()

	db, err := persistence.LoadMatrix(dbPath)
	if err != nil {
		return err
	}
	queries, err := persistence.LoadMatrix(queryPath)
	if err != nil {
		return err
	}
	if db.Cols != queries.Cols {
		slog.Warn("Matrix widths differ, results are meaningless unless both were encoded against the same dictionary",
			"database_cols", db.Cols,
			"query_cols", queries.Cols,
		)
	}

	results, err := match.Match(ctx, db, queries, opts.Workers)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create result file: %w", err)
	}
	if err := match.WriteResults(f, results); err != nil {
		f.Close()
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	slog.Info("Match results written",
		"path", outPath,
		"queries", len(results),
		"database", db.Len(),
		"candidates", total,
		"duration", time.Since(start).String(),
	)
	return nil
}

// DedupFile writes the deduplicated database of inPath to outPath.
func DedupFile(inPath, outPath string) (kept, dropped int, err error) {
	graphs, err := LoadGraphs(inPath, "dedup")
	if err != nil {
		return 0, 0, err
	}
	unique := Dedup(graphs)

	f, err := os.Create(outPath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create output file: %w", err)
	}
	if err := graph.Write(f, unique); err != nil {
		f.Close()
		return 0, 0, fmt.Errorf("failed to write graphs: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, 0, err
	}
	return len(unique), len(graphs) - len(unique), nil
}
