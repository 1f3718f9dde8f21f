// Package domain defines the classifier's types and ports
package domain

import "context"

// Analysis is one classifier decision for a message text
type Analysis struct {
	// Inappropriate is true when the model flags the text
	Inappropriate bool `json:"inappropriate"`

	// Reason is the model's short explanation, empty for clean text
	Reason string `json:"reason,omitempty"`

	// Source is "model" for a live call or "cache" for a replayed one
	Source string `json:"source"`
}

// Stats is the classifier counter snapshot
type Stats struct {
	Requests    uint64 `json:"requests"`
	CacheHits   uint64 `json:"cache_hits"`
	CacheMisses uint64 `json:"cache_misses"`
	Failures    uint64 `json:"failures"`
}

// ClassifierPort is the surface other services call
type ClassifierPort interface {
	// Analyze classifies normalized message text. Errors mean the
	// backend was unreachable or timed out; callers decide the fallback
	Analyze(ctx context.Context, text string) (Analysis, error)

	// Stats returns a copy of the counters
	Stats() Stats
}
