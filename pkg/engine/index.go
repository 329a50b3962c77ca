package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sanonone/kektorgraph/pkg/features"
	"github.com/sanonone/kektorgraph/pkg/graph"
	"github.com/sanonone/kektorgraph/pkg/match"
	"github.com/sanonone/kektorgraph/pkg/metrics"
	"github.com/sanonone/kektorgraph/pkg/persistence"
	"github.com/sanonone/kektorgraph/pkg/vector"
)

// ErrNoIndexSource is returned when neither a database file nor a persisted
// dictionary/matrix pair is configured.
var ErrNoIndexSource = errors.New("no database or persisted index configured")

// Index is an immutable in-memory filter: a dictionary plus the database
// matrix encoded against it. It is safe for concurrent use.
type Index struct {
	dict    *features.Dictionary
	db      *vector.Matrix
	ids     []string // database graph ids by row; nil when loaded from a matrix file
	opts    Options
	builtAt time.Time
}

// Result is the candidate list of one query graph.
type Result struct {
	Query        int      `json:"query"` // 1-based
	QueryID      string   `json:"query_id"`
	Candidates   []int    `json:"candidates"` // 1-based database rows, ascending
	CandidateIDs []string `json:"candidate_ids,omitempty"`
}

// Stats summarizes an index.
type Stats struct {
	Graphs   int       `json:"graphs"`
	Features int       `json:"features"`
	H2       int       `json:"h2"`
	H3       int       `json:"h3"`
	HS       int       `json:"hs"`
	BuiltAt  time.Time `json:"built_at"`
}

// NewIndex builds a dictionary over the deduplicated graphs and encodes every
// graph against it. Database serials are positions in graphs, duplicates
// included, so two graphs sharing a signature both stay searchable.
func NewIndex(ctx context.Context, graphs []*graph.Graph, opts Options) (*Index, error) {
	dict := features.BuildDictionary(Dedup(graphs), opts.Features)

	db, err := encode(ctx, graphs, dict, opts)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(graphs))
	for i, g := range graphs {
		ids[i] = g.ID
	}

	idx := &Index{dict: dict, db: db, ids: ids, opts: opts, builtAt: time.Now()}
	idx.publish()
	return idx, nil
}

// NewIndexFromFile is NewIndex over the graph database at path.
func NewIndexFromFile(ctx context.Context, path string, opts Options) (*Index, error) {
	graphs, err := LoadGraphs(path, "index")
	if err != nil {
		return nil, err
	}
	return NewIndex(ctx, graphs, opts)
}

// OpenIndex loads a persisted dictionary and database matrix. The pair must
// come from the same build; a width mismatch is logged, not rejected. Queries
// are hashed with the bucket sizes found in the dictionary, whatever opts says.
func OpenIndex(dictPath, matrixPath string, opts Options) (*Index, error) {
	dict, err := features.LoadDictionary(dictPath)
	if err != nil {
		return nil, err
	}
	db, err := persistence.LoadMatrix(matrixPath)
	if err != nil {
		return nil, err
	}
	if sizes := dict.BucketSizes(); sizes != opts.Features {
		slog.Warn("Dictionary bucket sizes differ from configuration, using the dictionary's",
			"dictionary", dictPath,
			"h2", sizes.H2, "h3", sizes.H3, "hs", sizes.HS,
			"configured_h2", opts.Features.H2,
			"configured_h3", opts.Features.H3,
			"configured_hs", opts.Features.HS,
		)
		opts.Features = sizes
	}
	if db.Cols != dict.Len() {
		slog.Warn("Matrix width differs from dictionary size",
			"dictionary", dictPath,
			"features", dict.Len(),
			"matrix", matrixPath,
			"cols", db.Cols,
		)
	}

	idx := &Index{dict: dict, db: db, opts: opts, builtAt: time.Now()}
	idx.publish()
	return idx, nil
}

// Save persists the dictionary and the database matrix.
func (idx *Index) Save(dictPath, matrixPath string) error {
	if err := features.SaveDictionary(dictPath, idx.dict); err != nil {
		return err
	}
	return persistence.SaveMatrix(matrixPath, idx.db, idx.opts.Compression)
}

// Dictionary returns the dictionary.
func (idx *Index) Dictionary() *features.Dictionary { return idx.dict }

// Matrix returns the database matrix.
func (idx *Index) Matrix() *vector.Matrix { return idx.db }

// Stats returns the index shape.
func (idx *Index) Stats() Stats {
	return Stats{
		Graphs:   idx.db.Len(),
		Features: idx.dict.Len(),
		H2:       idx.opts.Features.H2,
		H3:       idx.opts.Features.H3,
		HS:       idx.opts.Features.HS,
		BuiltAt:  idx.builtAt,
	}
}

// Candidates encodes the query graphs and returns, for each, the database
// rows that may contain it.
func (idx *Index) Candidates(ctx context.Context, queries []*graph.Graph) ([]Result, error) {
	metrics.GraphsParsed.WithLabelValues("query").Add(float64(len(queries)))

	qm, err := encode(ctx, queries, idx.dict, idx.opts)
	if err != nil {
		return nil, err
	}
	lists, err := match.Match(ctx, idx.db, qm, idx.opts.Workers)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(lists))
	for i, cands := range lists {
		results[i] = Result{
			Query:      i + 1,
			QueryID:    queries[i].ID,
			Candidates: cands,
		}
		if idx.ids != nil {
			names := make([]string, len(cands))
			for j, c := range cands {
				names[j] = idx.ids[c-1]
			}
			results[i].CandidateIDs = names
		}
	}
	return results, nil
}

func (idx *Index) publish() {
	metrics.IndexGraphs.Set(float64(idx.db.Len()))
	metrics.DictionarySize.Set(float64(idx.dict.Len()))
}

func encode(ctx context.Context, graphs []*graph.Graph, dict *features.Dictionary, opts Options) (*vector.Matrix, error) {
	m, err := vector.Encode(ctx, graphs, dict, opts.encodeOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to encode %d graphs: %w", len(graphs), err)
	}
	return m, nil
}
