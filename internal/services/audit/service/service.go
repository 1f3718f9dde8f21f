// Package service implements the durable audit trail writer. Records are
// queued in memory and flushed in batches so the verdict path never waits
// on storage
package service

import (
	"context"
	"sync"
	"time"

	"modguard/internal/modkit/repokit"
	"modguard/internal/services/audit/domain"
	"modguard/internal/services/audit/repo"

	perr "modguard/internal/platform/errors"
	"modguard/internal/platform/logger"
	"modguard/internal/platform/store"

	"github.com/google/uuid"
)

// Config for the audit service
type Config struct {
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	EventTable    string
}

// Service implements domain.RecorderPort, ReaderPort and RewriterPort
type Service struct {
	log    logger.Logger
	cfg    Config
	tx     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
	ch     store.Clickhouse

	in      chan domain.Record
	stopped chan struct{}

	mu      sync.Mutex
	dropped uint64
}

// New constructs the audit service. CH is optional; when nil only
// Postgres receives records
func New(log logger.Logger, tx repokit.TxRunner, ch store.Clickhouse, cfg Config) *Service {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 4096
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 256
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.EventTable == "" {
		cfg.EventTable = "moderation_events"
	}
	return &Service{
		log:     log.With().Str("component", "audit").Logger(),
		cfg:     cfg,
		tx:      tx,
		binder:  repo.NewPG(),
		ch:      ch,
		in:      make(chan domain.Record, cfg.QueueSize),
		stopped: make(chan struct{}),
	}
}

// Record implements domain.RecorderPort. It never blocks; a full queue
// drops the record and reports unavailable so the caller can log it
func (s *Service) Record(_ context.Context, rec domain.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	select {
	case s.in <- rec:
		return nil
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
		return perr.Unavailablef("audit queue full, record %s dropped", rec.MessageID)
	}
}

// Dropped reports how many records were lost to queue overflow
func (s *Service) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Run drains the queue until ctx is done, then flushes what remains.
// Call it once from the composition root
func (s *Service) Run(ctx context.Context) error {
	defer close(s.stopped)

	tick := time.NewTicker(s.cfg.FlushInterval)
	defer tick.Stop()

	buf := make([]domain.Record, 0, s.cfg.BatchSize)
	for {
		select {
		case rec := <-s.in:
			buf = append(buf, rec)
			if len(buf) >= s.cfg.BatchSize {
				s.flush(buf)
				buf = buf[:0]
			}
		case <-tick.C:
			if len(buf) > 0 {
				s.flush(buf)
				buf = buf[:0]
			}
		case <-ctx.Done():
			for {
				select {
				case rec := <-s.in:
					buf = append(buf, rec)
				default:
					s.flush(buf)
					return nil
				}
			}
		}
	}
}

// Close waits for Run to finish its final flush
func (s *Service) Close() {
	<-s.stopped
}

func (s *Service) flush(batch []domain.Record) {
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).WriteBatch(ctx, batch)
	})
	if err != nil {
		s.log.Error().Err(err).Int("batch", len(batch)).Msg("audit flush failed")
		s.mu.Lock()
		s.dropped += uint64(len(batch))
		s.mu.Unlock()
		return
	}

	if s.ch != nil {
		if err := s.writeEvents(ctx, batch); err != nil {
			// analytics sink is best effort, the PG trail stays canonical
			s.log.Warn().Err(err).Int("batch", len(batch)).Msg("event sink write failed")
		}
	}
}

func (s *Service) writeEvents(ctx context.Context, batch []domain.Record) error {
	cols := []string{
		"id", "message_id", "group_id", "user_id",
		"verdict", "checked_by", "degraded", "sent_at",
	}
	rows := make([][]any, 0, len(batch))
	for _, rec := range batch {
		rows = append(rows, []any{
			rec.ID, rec.MessageID, rec.GroupID, rec.UserID,
			rec.Verdict, rec.Check, rec.Degraded, rec.Timestamp,
		})
	}
	return s.ch.Insert(ctx, s.cfg.EventTable, cols, rows)
}

// List implements domain.ReaderPort
func (s *Service) List(ctx context.Context, q domain.ListQuery) ([]domain.Record, error) {
	var out []domain.Record
	err := repokit.WithTx(ctx, s.tx, func(qr repokit.Queryer) error {
		var err error
		out, err = s.binder.Bind(qr).List(ctx, q)
		return err
	})
	return out, err
}

// UpdateVerdict implements domain.RewriterPort
func (s *Service) UpdateVerdict(ctx context.Context, u domain.VerdictUpdate) error {
	return repokit.WithTx(ctx, s.tx, func(qr repokit.Queryer) error {
		return s.binder.Bind(qr).UpdateVerdict(ctx, u)
	})
}
