package types

import "time"

// DefaultMaxHeight bounds the structural depth of candidate pipelines when the
// configuration does not override it.
const DefaultMaxHeight = 8

// RunConfig carries the per-invocation knobs forwarded to the search engine
// and the timeout machinery. A zero duration means unbounded.
type RunConfig struct {
	// NJobs is the worker parallelism handed to the search engine. The
	// engine's internal parallelism is opaque to the harness.
	NJobs int

	// Timeout bounds a single fit call.
	Timeout time.Duration

	// TaskTimeout bounds the processing of one task end to end, including
	// re-evaluation of the top candidates.
	TaskTimeout time.Duration

	// MaxHeight bounds the structural depth of candidate pipelines.
	MaxHeight int
}

// WithDefaults returns a copy of the config with unset fields defaulted.
func (c RunConfig) WithDefaults() RunConfig {
	out := c
	if out.NJobs <= 0 {
		out.NJobs = 1
	}
	if out.MaxHeight <= 0 {
		out.MaxHeight = DefaultMaxHeight
	}
	return out
}
