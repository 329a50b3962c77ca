package server

import "github.com/sanonone/kektorgraph/pkg/engine"

// CandidatesResponse is the body of POST /v1/candidates.
type CandidatesResponse struct {
	Results []engine.Result `json:"results"`
}

// RebuildResponse is the body of POST /v1/index/rebuild.
type RebuildResponse struct {
	TaskID string `json:"task_id"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
}
