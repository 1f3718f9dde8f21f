// Package domain defines the audit replay types and ports
package domain

import (
	"context"
	"time"
)

// RunInput bounds one replay pass over the stored trail
type RunInput struct {
	Start  time.Time
	End    time.Time
	DryRun bool
}

// Change is one record whose replayed verdict differs from the stored one
type Change struct {
	ID        string `json:"id"`
	MessageID string `json:"message_id"`
	GroupID   int64  `json:"group_id"`
	Old       string `json:"old"`
	New       string `json:"new"`
}

// Report summarizes a replay pass
type Report struct {
	Scanned  int      `json:"scanned"`
	Changed  int      `json:"changed"`
	Skipped  int      `json:"skipped"`
	Rewrites int      `json:"rewrites"`
	Changes  []Change `json:"changes,omitempty"`
}

// RunnerPort re-evaluates stored messages against the current rules
type RunnerPort interface {
	RunRange(ctx context.Context, in RunInput) (Report, error)
}
