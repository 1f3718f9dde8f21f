// Package domain defines the audit trail's types and ports
package domain

import (
	"context"
	"time"
)

// Record is one evaluated message with its verdict. MessageID is unique;
// redelivery of the same message id never produces a second row
type Record struct {
	ID        string    `json:"id"`
	MessageID string    `json:"message_id"`
	GroupID   int64     `json:"group_id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	Verdict   string    `json:"verdict"`
	Check     string    `json:"check"`
	Detail    string    `json:"detail,omitempty"`
	Degraded  bool      `json:"degraded"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

// ListQuery pages records by message timestamp then id
type ListQuery struct {
	Start    time.Time
	End      time.Time
	AfterTS  time.Time
	AfterID  string
	GroupID  int64 // zero means all groups
	PageSize int
}

// VerdictUpdate rewrites the stored verdict for one record
type VerdictUpdate struct {
	ID       string
	Verdict  string
	Check    string
	Detail   string
	Degraded bool
}

// RecorderPort accepts records for durable append. Implementations must
// not fail the caller's verdict path; errors are reported asynchronously
type RecorderPort interface {
	Record(ctx context.Context, rec Record) error
}

// ReaderPort pages the stored trail in timestamp order
type ReaderPort interface {
	List(ctx context.Context, q ListQuery) ([]Record, error)
}

// RewriterPort updates stored verdicts, used by replay writeback
type RewriterPort interface {
	UpdateVerdict(ctx context.Context, u VerdictUpdate) error
}
