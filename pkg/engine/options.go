// Package engine wires the filtering pipeline together.
//
// The file-based stages mirror the batch workflow:
//
//	Identify:   graph database -> feature dictionary
//	Convert:    graphs + dictionary -> vector matrix
//	MatchFiles: database matrix + query matrix -> result file
//
// Index keeps a dictionary and a database matrix in memory and answers
// candidate queries for graphs directly; it backs the HTTP and MCP servers.
package engine

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"

	"github.com/sanonone/kektorgraph/pkg/config"
	"github.com/sanonone/kektorgraph/pkg/features"
	"github.com/sanonone/kektorgraph/pkg/persistence"
	"github.com/sanonone/kektorgraph/pkg/vector"
)

// Options configures every pipeline stage.
type Options struct {
	Features    features.Options
	Workers     int
	Compression persistence.Compression
}

// DefaultOptions returns the standard bucket sizes, one worker per physical
// core and uncompressed matrix files.
func DefaultOptions() Options {
	return Options{
		Features:    features.DefaultOptions(),
		Workers:     DefaultWorkers(),
		Compression: persistence.CompressionNone,
	}
}

// OptionsFromConfig converts a validated configuration.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	c, err := persistence.ParseCompression(cfg.Compression)
	if err != nil {
		return Options{}, err
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = DefaultWorkers()
	}
	return Options{
		Features: features.Options{
			H2: cfg.Buckets.H2,
			H3: cfg.Buckets.H3,
			HS: cfg.Buckets.HS,
		},
		Workers:     workers,
		Compression: c,
	}, nil
}

// DefaultWorkers returns the number of physical cores, or the logical CPU
// count when the CPU does not report it.
func DefaultWorkers() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func (o Options) encodeOptions() vector.EncodeOptions {
	return vector.EncodeOptions{Features: o.Features, Workers: o.Workers}
}
