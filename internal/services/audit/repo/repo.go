// Package repo provides the audit trail repository implementation.
package repo

import (
	"context"
	"fmt"
	"strings"

	"modguard/internal/modkit/repokit"
	"modguard/internal/services/audit/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the audit repository
type Storage interface {
	WriteBatch(ctx context.Context, xs []domain.Record) error
	List(ctx context.Context, q domain.ListQuery) ([]domain.Record, error)
	UpdateVerdict(ctx context.Context, u domain.VerdictUpdate) error
}

// WriteBatch implements Storage
func (s *pg) WriteBatch(ctx context.Context, xs []domain.Record) error {
	if len(xs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO audit_records
		(id, message_id, group_id, user_id, body, verdict, checked_by,
		detail, degraded, sent_at, created_at) VALUES `)

	args := make([]any, 0, len(xs)*11)
	for i, rec := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*11 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base, base+1, base+2, base+3, base+4, base+5,
			base+6, base+7, base+8, base+9, base+10)

		args = append(args,
			rec.ID, rec.MessageID, rec.GroupID, rec.UserID, rec.Text,
			rec.Verdict, rec.Check, rec.Detail, rec.Degraded,
			rec.Timestamp, rec.CreatedAt,
		)
	}
	// Redeliveries of the same message id must not duplicate the trail
	sb.WriteString(` ON CONFLICT (message_id) DO NOTHING`)
	_, err := s.q.Exec(ctx, sb.String(), args...)
	return err
}

// List implements Storage with keyset pagination on (sent_at, id)
func (s *pg) List(ctx context.Context, q domain.ListQuery) ([]domain.Record, error) {
	limit := q.PageSize
	if limit <= 0 {
		limit = 500
	}

	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`
		SELECT id::text, message_id, group_id, user_id, body, verdict,
			checked_by, detail, degraded, sent_at, created_at
		FROM audit_records
		WHERE sent_at >= ` + arg(q.Start) + ` AND sent_at < ` + arg(q.End) + `
	`)
	// Keyset only when AfterID is set (avoid ""::uuid on first page)
	if q.AfterID != "" {
		sb.WriteString(
			"  AND (sent_at, id) > (" + arg(q.AfterTS) + ", " + arg(q.AfterID) + "::uuid)\n",
		)
	}
	if q.GroupID != 0 {
		sb.WriteString("  AND group_id = " + arg(q.GroupID) + "\n")
	}
	sb.WriteString("ORDER BY sent_at, id\nLIMIT " + arg(limit))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Record, 0, limit)
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(
			&rec.ID, &rec.MessageID, &rec.GroupID, &rec.UserID, &rec.Text,
			&rec.Verdict, &rec.Check, &rec.Detail, &rec.Degraded,
			&rec.Timestamp, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpdateVerdict implements Storage
func (s *pg) UpdateVerdict(ctx context.Context, u domain.VerdictUpdate) error {
	_, err := s.q.Exec(ctx, `
		UPDATE audit_records
		SET verdict = $2, checked_by = $3, detail = $4, degraded = $5
		WHERE id = $1::uuid`,
		u.ID, u.Verdict, u.Check, u.Detail, u.Degraded,
	)
	return err
}
