// Package mcp serves a candidate index as Model Context Protocol tools.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/kektorgraph/pkg/engine"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// NewMCPServer registers the index tools on a new MCP server.
func NewMCPServer(idx *engine.Index) *mcp.Server {
	service := NewService(idx)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "KektorGraph",
		Version: Version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name: "find_candidates",
		Description: "Find the database graphs that may contain each query graph as a subgraph. " +
			"Input is a graph database in 't # id / v id label / e a b label' text form. " +
			"The filter never drops a true match but may keep false ones.",
	}, service.FindCandidates)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "index_stats",
		Description: "Report the number of indexed graphs, the dictionary size and the hash bucket sizes.",
	}, service.IndexStats)

	return s
}
