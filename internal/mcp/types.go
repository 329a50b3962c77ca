package mcp

import "github.com/sanonone/kektorgraph/pkg/engine"

// --- Tool Arguments ---

type FindCandidatesArgs struct {
	Graphs string `json:"graphs" jsonschema:"One or more query graphs in graph database text form"`
}

type FindCandidatesResult struct {
	Results []engine.Result `json:"results"`
}

type IndexStatsArgs struct{}

type IndexStatsResult struct {
	Graphs   int    `json:"graphs"`
	Features int    `json:"features"`
	H2       int    `json:"h2"`
	H3       int    `json:"h3"`
	HS       int    `json:"hs"`
	BuiltAt  string `json:"built_at"` // RFC 3339
}
