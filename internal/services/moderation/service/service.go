// Package service implements the ordered moderation pipeline. Checks run
// cheapest first and the first hit decides; every evaluation produces
// exactly one verdict and one audit record
package service

import (
	"context"
	"sync"
	"time"

	"modguard/internal/core/langhint"
	"modguard/internal/core/nightmode"
	"modguard/internal/core/normalize"
	"modguard/internal/core/rulepack"
	"modguard/internal/core/spam"
	"modguard/internal/core/window"
	"modguard/internal/services/moderation/domain"

	auditdomain "modguard/internal/services/audit/domain"
	clsdomain "modguard/internal/services/classifier/domain"

	perr "modguard/internal/platform/errors"
	"modguard/internal/platform/logger"
	"modguard/internal/platform/net/http/bind"
	"modguard/internal/platform/timeutil"
)

// Config for the pipeline service itself; the moderation rules arrive
// separately as a domain.Config document
type Config struct {
	EvictBatch int
}

type snapshot struct {
	cfg      domain.Config
	pack     *rulepack.Pack
	det      *spam.Detector
	exempt   map[int64]bool
	banGroup map[int64]bool
	windowD  time.Duration
}

// Service implements domain.ServicePort and domain.NightModePort
type Service struct {
	log        logger.Logger
	cfg        Config
	norm       *normalize.Normalizer
	base       *rulepack.Pack
	gate       *nightmode.Gate
	classifier clsdomain.ClassifierPort
	recorder   auditdomain.RecorderPort
	clock      timeutil.Clock

	mu   sync.RWMutex
	snap snapshot

	statsMu   sync.Mutex
	evaluated uint64
	byKind    map[domain.VerdictKind]uint64
	degraded  uint64
}

// New constructs the pipeline with an initial rules document. A nil
// classifier degrades every classifier check; a nil recorder disables the
// audit trail (used by replay, which writes its own comparisons)
func New(
	log logger.Logger,
	cfg Config,
	rules domain.Config,
	cls clsdomain.ClassifierPort,
	rec auditdomain.RecorderPort,
	clock timeutil.Clock,
) (*Service, error) {
	if clock == nil {
		clock = timeutil.Real{}
	}
	if cfg.EvictBatch <= 0 {
		cfg.EvictBatch = 1024
	}
	base, err := rulepack.Load()
	if err != nil {
		return nil, err
	}

	s := &Service{
		log:        log.With().Str("component", "moderation").Logger(),
		cfg:        cfg,
		norm:       normalize.New(),
		base:       base,
		gate:       nightmode.New(nightmode.Schedule{}),
		classifier: cls,
		recorder:   rec,
		clock:      clock,
		byKind:     make(map[domain.VerdictKind]uint64),
	}
	if err := s.SetConfig(context.Background(), rules); err != nil {
		return nil, err
	}
	return s, nil
}

// SetConfig validates and atomically swaps the active rules document.
// The spam window keeps its accumulated entries unless the window length
// itself changed
func (s *Service) SetConfig(_ context.Context, cfg domain.Config) error {
	if err := validate(cfg); err != nil {
		return err
	}

	sched, err := scheduleFrom(cfg.NightMode)
	if err != nil {
		return perr.InvalidArgf("night mode: %v", err)
	}

	windowD := time.Duration(cfg.SpamDetector.TimeWindowHours * float64(time.Hour))
	spamCfg := spam.Config{
		Window:    windowD,
		Threshold: cfg.SpamDetector.SimilarityThreshold,
		MinGroups: cfg.SpamDetector.MinGroups,
	}

	exempt := make(map[int64]bool, len(cfg.ExemptUsers))
	for _, id := range cfg.ExemptUsers {
		exempt[id] = true
	}
	banGroup := make(map[int64]bool, len(cfg.NightMode.BanGroups))
	for _, id := range cfg.NightMode.BanGroups {
		banGroup[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	det := s.snap.det
	if det == nil || s.snap.windowD != windowD {
		det = spam.New(spamCfg, window.New(windowD))
	} else {
		det = spam.New(spamCfg, det.Index())
	}

	s.snap = snapshot{
		cfg:      cfg,
		pack:     s.base.Merge(cfg.BannedWords, cfg.WhitelistWords),
		det:      det,
		exempt:   exempt,
		banGroup: banGroup,
		windowD:  windowD,
	}
	s.gate.SetSchedule(sched)
	s.log.Info().
		Int("banned", len(s.snap.pack.Banned)).
		Int("whitelist", len(s.snap.pack.Whitelist)).
		Bool("night_mode", cfg.NightMode.Enabled).
		Msg("moderation config applied")
	return nil
}

// ActiveConfig implements domain.ServicePort
func (s *Service) ActiveConfig() domain.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.cfg
}

// Evaluate implements domain.ServicePort
func (s *Service) Evaluate(ctx context.Context, msg domain.Message) (domain.Verdict, error) {
	if msg.MessageID == "" {
		return domain.Verdict{}, perr.InvalidArgf("message id required")
	}
	if msg.GroupID == 0 || msg.UserID == 0 {
		return domain.Verdict{}, perr.InvalidArgf("group and user ids required")
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.clock.Now()
	}

	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	v := s.decide(ctx, snap, msg)
	s.record(ctx, msg, v)
	s.count(v)
	return v, nil
}

// decide runs the ordered checks. The spam detector records every message
// up front so its window sees all traffic even when an earlier check
// decides the verdict
func (s *Service) decide(ctx context.Context, snap snapshot, msg domain.Message) domain.Verdict {
	norm := s.norm.Normalize(msg.Text)
	sv := snap.det.Check(spam.Message{
		ID:        msg.MessageID,
		GroupID:   msg.GroupID,
		UserID:    msg.UserID,
		NormText:  norm,
		Timestamp: msg.Timestamp,
	})

	if snap.exempt[msg.UserID] {
		return domain.Verdict{Kind: domain.VerdictApproved, Check: "exempt"}
	}

	// the gate owns the enabled/forced logic; a manual pin restricts the
	// group even when the schedule is disabled
	if s.gate.IsRestricted(msg.GroupID, msg.Timestamp) {
		return domain.Verdict{Kind: domain.VerdictRejectedNightMode, Check: "night_mode"}
	}

	if term, banned := snap.pack.Match(norm); banned {
		return domain.Verdict{Kind: domain.VerdictRejectedKeyword, Check: "keyword", Word: term}
	}

	if snap.cfg.AutoApproveShortMessages && runeLen(norm) <= snap.cfg.ShortMessageMaxLength {
		return domain.Verdict{Kind: domain.VerdictApproved, Check: "short_message"}
	}

	if langhint.Disallowed(msg.Text, snap.cfg.AllowedLanguages) {
		return domain.Verdict{
			Kind:     domain.VerdictRejectedLanguage,
			Check:    "language",
			Language: langhint.Detect(msg.Text).Lang,
		}
	}

	if sv.IsSpam {
		return domain.Verdict{Kind: domain.VerdictRejectedSpam, Check: "spam", Spam: &sv}
	}

	if s.classifier != nil {
		res, err := s.classifier.Analyze(ctx, msg.Text)
		switch {
		case err != nil:
			// the cheap checks all passed; fail open rather than hold traffic
			logger.C(ctx).Warn().Err(err).Str("message_id", msg.MessageID).
				Msg("classifier unavailable, approving degraded")
			return domain.Verdict{Kind: domain.VerdictApproved, Check: "classifier", Degraded: true}
		case res.Inappropriate:
			return domain.Verdict{
				Kind:   domain.VerdictRejectedClassifier,
				Check:  "classifier",
				Reason: res.Reason,
			}
		}
		return domain.Verdict{Kind: domain.VerdictApproved, Check: "classifier"}
	}

	return domain.Verdict{Kind: domain.VerdictApproved, Check: "default", Degraded: true}
}

func (s *Service) record(ctx context.Context, msg domain.Message, v domain.Verdict) {
	if s.recorder == nil {
		return
	}
	err := s.recorder.Record(ctx, auditdomain.Record{
		MessageID: msg.MessageID,
		GroupID:   msg.GroupID,
		UserID:    msg.UserID,
		Text:      msg.Text,
		Verdict:   string(v.Kind),
		Check:     v.Check,
		Detail:    detailOf(v),
		Degraded:  v.Degraded,
		Timestamp: msg.Timestamp,
	})
	if err != nil {
		// the verdict stands even when the trail write is rejected
		logger.C(ctx).Warn().Err(err).Str("message_id", msg.MessageID).Msg("audit record failed")
	}
}

func detailOf(v domain.Verdict) string {
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

func (s *Service) count(v domain.Verdict) {
	s.statsMu.Lock()
	s.evaluated++
	s.byKind[v.Kind]++
	if v.Degraded {
		s.degraded++
	}
	s.statsMu.Unlock()
}

// Stats implements domain.ServicePort
func (s *Service) Stats() domain.Stats {
	s.mu.RLock()
	det := s.snap.det
	s.mu.RUnlock()

	s.statsMu.Lock()
	by := make(map[domain.VerdictKind]uint64, len(s.byKind))
	for k, n := range s.byKind {
		by[k] = n
	}
	st := domain.Stats{
		Evaluated: s.evaluated,
		ByKind:    by,
		Degraded:  s.degraded,
	}
	s.statsMu.Unlock()

	if det != nil {
		st.Tracked = det.Tracked()
	}
	if s.classifier != nil {
		cs := s.classifier.Stats()
		st.Classifier = &cs
	}
	return st
}

// Phase implements domain.NightModePort
func (s *Service) Phase(groupID int64) nightmode.Phase {
	return s.gate.PhaseOf(groupID, s.clock.Now())
}

// Force implements domain.NightModePort
func (s *Service) Force(groupID int64, p nightmode.Phase) {
	s.gate.ForceSet(groupID, p == nightmode.Night || p == nightmode.EnteringNight)
}

// ClearForce implements domain.NightModePort
func (s *Service) ClearForce(groupID int64) {
	s.gate.ClearForce(groupID)
}

// Run drives periodic maintenance (phase ticks, window eviction) until
// ctx is done
func (s *Service) Run(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			s.gate.Tick(now)
			s.mu.RLock()
			det := s.snap.det
			s.mu.RUnlock()
			if n := det.Evict(now, s.cfg.EvictBatch); n > 0 {
				s.log.Debug().Int("evicted", n).Msg("window maintenance")
			}
		}
	}
}

func validate(cfg domain.Config) error {
	if err := bind.Get().Validator.Struct(cfg); err != nil {
		field, msg := bind.ValidationFieldAndMessage(err)
		return perr.WithField(perr.Validationf("%s", msg), field)
	}
	return nil
}

func scheduleFrom(nm domain.NightModeConfig) (nightmode.Schedule, error) {
	sched := nightmode.Schedule{
		Enabled: nm.Enabled,
		Grace:   time.Duration(nm.GracePeriodSeconds) * time.Second,
		Groups:  make(map[int64]bool, len(nm.NightModeGroups)),
	}
	if !nm.Enabled {
		return sched, nil
	}
	var err error
	if sched.Start, err = nightmode.ParseClock(nm.StartHour); err != nil {
		return sched, err
	}
	if sched.End, err = nightmode.ParseClock(nm.EndHour); err != nil {
		return sched, err
	}
	for _, id := range nm.NightModeGroups {
		sched.Groups[id] = true
	}
	return sched, nil
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
