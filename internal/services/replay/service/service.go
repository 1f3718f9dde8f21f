// Package service replays the stored audit trail through a fresh pipeline
// built from the current rules, reporting and optionally rewriting
// verdicts that changed
package service

import (
	"context"

	"modguard/internal/services/replay/domain"

	auditdomain "modguard/internal/services/audit/domain"
	moddomain "modguard/internal/services/moderation/domain"
	modservice "modguard/internal/services/moderation/service"

	perr "modguard/internal/platform/errors"
	"modguard/internal/platform/logger"
	"modguard/internal/platform/timeutil"
)

// Config for the replay service
type Config struct {
	PageSize int
}

// Service implements domain.RunnerPort
type Service struct {
	log      logger.Logger
	cfg      Config
	rules    moddomain.Config
	reader   auditdomain.ReaderPort
	rewriter auditdomain.RewriterPort
}

// New constructs the replay service around the rules document the pass
// should be judged against
func New(
	log logger.Logger,
	cfg Config,
	rules moddomain.Config,
	reader auditdomain.ReaderPort,
	rewriter auditdomain.RewriterPort,
) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	return &Service{
		log:      log.With().Str("component", "replay").Logger(),
		cfg:      cfg,
		rules:    rules,
		reader:   reader,
		rewriter: rewriter,
	}
}

// RunRange implements domain.RunnerPort. Each pass gets its own pipeline
// with an empty spam window so replayed traffic reconstructs burst state
// from the trail alone; no classifier is attached, so classifier-decided
// records are skipped rather than second-guessed
func (s *Service) RunRange(ctx context.Context, in domain.RunInput) (domain.Report, error) {
	if s.reader == nil {
		return domain.Report{}, perr.Unavailablef("no audit reader wired")
	}
	if !in.End.After(in.Start) {
		return domain.Report{}, perr.InvalidArgf("end must be after start")
	}

	pipe, err := modservice.New(
		s.log, modservice.Config{}, s.rules, nil, nil, timeutil.Real{},
	)
	if err != nil {
		return domain.Report{}, err
	}

	var rep domain.Report
	q := auditdomain.ListQuery{Start: in.Start, End: in.End, PageSize: s.cfg.PageSize}
	for {
		recs, err := s.reader.List(ctx, q)
		if err != nil {
			return rep, err
		}
		if len(recs) == 0 {
			return rep, nil
		}

		for _, rec := range recs {
			rep.Scanned++
			v, err := pipe.Evaluate(ctx, moddomain.Message{
				MessageID: rec.MessageID,
				GroupID:   rec.GroupID,
				UserID:    rec.UserID,
				Text:      rec.Text,
				Timestamp: rec.Timestamp,
			})
			if err != nil {
				s.log.Warn().Err(err).Str("id", rec.ID).Msg("record skipped")
				rep.Skipped++
				continue
			}
			if v.Degraded && rec.Check == "classifier" {
				rep.Skipped++
				continue
			}
			if string(v.Kind) == rec.Verdict {
				continue
			}

			rep.Changed++
			rep.Changes = append(rep.Changes, domain.Change{
				ID:        rec.ID,
				MessageID: rec.MessageID,
				GroupID:   rec.GroupID,
				Old:       rec.Verdict,
				New:       string(v.Kind),
			})
			if in.DryRun {
				s.log.Info().
					Str("id", rec.ID).
					Str("old", rec.Verdict).
					Str("new", string(v.Kind)).
					Msg("verdict would change")
				continue
			}
			if s.rewriter == nil {
				return rep, perr.Unavailablef("no rewriter wired for writeback")
			}
			if err := s.rewriter.UpdateVerdict(ctx, auditdomain.VerdictUpdate{
				ID:       rec.ID,
				Verdict:  string(v.Kind),
				Check:    v.Check,
				Detail:   detailOf(v),
				Degraded: v.Degraded,
			}); err != nil {
				return rep, err
			}
			rep.Rewrites++
		}

		last := recs[len(recs)-1]
		q.AfterTS = last.Timestamp
		q.AfterID = last.ID
		if len(recs) < s.cfg.PageSize {
			return rep, nil
		}
	}
}

func detailOf(v moddomain.Verdict) string {
	switch {
	case v.Word != "":
		return v.Word
	case v.Language != "":
		return v.Language
	case v.Reason != "":
		return v.Reason
	}
	return ""
}
