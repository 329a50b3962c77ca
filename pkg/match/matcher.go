// Package match computes, for each query vector, the database vectors that
// dominate it, and reads and writes the candidate result file.
package match

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sanonone/kektorgraph/pkg/bitset"
	"github.com/sanonone/kektorgraph/pkg/metrics"
	"github.com/sanonone/kektorgraph/pkg/vector"
)

// Candidates returns the 1-based positions of the rows of db that dominate q,
// in ascending order. The result is never nil.
func Candidates(db *vector.Matrix, q *bitset.BitSet) []int {
	out := []int{}
	for i, row := range db.Rows {
		if row.Dominates(q) {
			out = append(out, i+1)
		}
	}
	return out
}

// Match computes Candidates for every query row, in query order. Queries are
// independent and are matched in parallel, each into its own result slot.
// Matrices of different widths are a caller error; they produce meaningless
// lists but never panic.
func Match(ctx context.Context, db, queries *vector.Matrix, workers int) ([][]int, error) {
	start := time.Now()
	results := make([][]int, queries.Len())

	if workers < 1 {
		workers = 1
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for qi, q := range queries.Rows {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[qi] = Candidates(db, q)
			metrics.CandidatesPerQuery.Observe(float64(len(results[qi])))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.MatchDuration.Observe(time.Since(start).Seconds())
	return results, nil
}
