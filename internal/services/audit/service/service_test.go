package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"modguard/internal/platform/logger"
	"modguard/internal/platform/store"
	"modguard/internal/services/audit/domain"
)

type fakeTag struct{}

func (fakeTag) String() string      { return "INSERT 0 1" }
func (fakeTag) RowsAffected() int64 { return 1 }

type fakeQuerier struct {
	mu    sync.Mutex
	execs []struct {
		sql  string
		args []any
	}
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.mu.Lock()
	f.execs = append(f.execs, struct {
		sql  string
		args []any
	}{sql, args})
	f.mu.Unlock()
	return fakeTag{}, nil
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (store.Rows, error) {
	return nil, nil
}

func (f *fakeQuerier) QueryRow(context.Context, string, ...any) store.Row { return nil }

func (f *fakeQuerier) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	return fn(f)
}

func (f *fakeQuerier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.execs)
}

func rec(msgID string) domain.Record {
	return domain.Record{
		MessageID: msgID,
		GroupID:   1,
		UserID:    10,
		Text:      "hi",
		Verdict:   "approved",
		Check:     "short_message",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecordAssignsIDAndFlushes(t *testing.T) {
	fq := &fakeQuerier{}
	s := New(*logger.Get(), fq, nil, Config{BatchSize: 2, FlushInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	if err := s.Record(context.Background(), rec("m1")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(context.Background(), rec("m2")); err != nil {
		t.Fatalf("record: %v", err)
	}

	// batch size reached; the flusher should write without waiting for a tick
	deadline := time.After(2 * time.Second)
	for fq.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("flush never happened")
		case <-time.After(10 * time.Millisecond):
		}
	}

	fq.mu.Lock()
	got := fq.execs[0]
	fq.mu.Unlock()
	if !strings.Contains(got.sql, "INSERT INTO audit_records") {
		t.Fatalf("unexpected sql: %s", got.sql)
	}
	if !strings.Contains(got.sql, "ON CONFLICT (message_id) DO NOTHING") {
		t.Fatalf("missing conflict clause: %s", got.sql)
	}
	if len(got.args) != 22 {
		t.Fatalf("expected 22 args for 2 rows, got %d", len(got.args))
	}
	if got.args[0] == "" {
		t.Fatal("record id was not assigned")
	}

	cancel()
	<-done
	s.Close()
}

func TestFinalFlushOnShutdown(t *testing.T) {
	fq := &fakeQuerier{}
	s := New(*logger.Get(), fq, nil, Config{BatchSize: 100, FlushInterval: time.Hour})

	if err := s.Record(context.Background(), rec("m1")); err != nil {
		t.Fatalf("record: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	s.Close()

	if fq.count() != 1 {
		t.Fatalf("expected final flush, got %d execs", fq.count())
	}
}

func TestQueueOverflowDropsAndCounts(t *testing.T) {
	fq := &fakeQuerier{}
	s := New(*logger.Get(), fq, nil, Config{QueueSize: 1, FlushInterval: time.Hour})

	if err := s.Record(context.Background(), rec("m1")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(context.Background(), rec("m2")); err == nil {
		t.Fatal("expected overflow error")
	}
	if s.Dropped() != 1 {
		t.Fatalf("expected 1 dropped, got %d", s.Dropped())
	}
}
