package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/kektorgraph/pkg/engine"
	"github.com/sanonone/kektorgraph/pkg/graph"
)

// ErrNoGraphs is returned when find_candidates receives no query graph.
var ErrNoGraphs = errors.New("no query graphs given")

type Service struct {
	index *engine.Index
}

func NewService(idx *engine.Index) *Service {
	return &Service{index: idx}
}

// --- Tool Handlers ---

func (s *Service) FindCandidates(ctx context.Context, req *mcp.CallToolRequest, args FindCandidatesArgs) (*mcp.CallToolResult, FindCandidatesResult, error) {
	queries, err := graph.Parse(strings.NewReader(args.Graphs))
	if err != nil {
		return nil, FindCandidatesResult{}, fmt.Errorf("invalid query graphs: %w", err)
	}
	if len(queries) == 0 {
		return nil, FindCandidatesResult{}, ErrNoGraphs
	}

	results, err := s.index.Candidates(ctx, queries)
	if err != nil {
		return nil, FindCandidatesResult{}, err
	}
	return nil, FindCandidatesResult{Results: results}, nil
}

func (s *Service) IndexStats(ctx context.Context, req *mcp.CallToolRequest, args IndexStatsArgs) (*mcp.CallToolResult, IndexStatsResult, error) {
	st := s.index.Stats()
	return nil, IndexStatsResult{
		Graphs:   st.Graphs,
		Features: st.Features,
		H2:       st.H2,
		H3:       st.H3,
		HS:       st.HS,
		BuiltAt:  st.BuiltAt.Format(time.RFC3339),
	}, nil
}
