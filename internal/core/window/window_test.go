package window

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func entry(fp string, group int64, msgID string, at time.Time) Entry {
	return Entry{
		Fingerprint: fp,
		GroupID:     group,
		UserID:      42,
		MessageID:   msgID,
		Text:        "vendo panieri scrivetemi",
		Timestamp:   at,
	}
}

func TestInsertLookup_WindowCorrectness(t *testing.T) {
	x := New(time.Hour)

	x.Insert(entry("fp1", 1, "m1", t0))

	// visible just inside the window
	if got := x.Lookup("fp1", t0.Add(59*time.Minute)); len(got) != 1 {
		t.Fatalf("expected 1 live entry, got %d", len(got))
	}
	// invisible at exactly the window boundary (liveness is strict <)
	if got := x.Lookup("fp1", t0.Add(time.Hour)); len(got) != 0 {
		t.Fatalf("expected expired entry to be hidden, got %d", len(got))
	}
}

func TestLookup_OrderedAscending(t *testing.T) {
	x := New(time.Hour)
	x.Insert(entry("fp1", 1, "m3", t0.Add(30*time.Minute)))
	x.Insert(entry("fp1", 2, "m1", t0))
	x.Insert(entry("fp1", 3, "m2", t0.Add(10*time.Minute)))

	got := x.Lookup("fp1", t0.Add(40*time.Minute))
	if len(got) != 3 {
		t.Fatalf("want 3 entries, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatalf("entries out of order at %d: %v after %v", i, got[i].Timestamp, got[i-1].Timestamp)
		}
	}
}

func TestInsert_DedupesByMessageID(t *testing.T) {
	x := New(time.Hour)
	x.Insert(entry("fp1", 1, "m1", t0))
	x.Insert(entry("fp1", 1, "m1", t0.Add(time.Minute)))

	if got := x.Lookup("fp1", t0.Add(2*time.Minute)); len(got) != 1 {
		t.Fatalf("duplicate message id produced %d entries", len(got))
	}
}

func TestEvict_IdempotentAndBounded(t *testing.T) {
	x := New(time.Hour)
	for i := 0; i < 10; i++ {
		x.Insert(entry(fmt.Sprintf("fp%d", i), int64(i), fmt.Sprintf("m%d", i), t0))
	}

	later := t0.Add(2 * time.Hour)

	// bounded sweep stops at the cap
	if n := x.Evict(later, 4); n != 4 {
		t.Fatalf("bounded evict removed %d, want 4", n)
	}
	// drain the rest
	if n := x.Evict(later, 0); n != 6 {
		t.Fatalf("second evict removed %d, want 6", n)
	}
	// idempotent once drained
	if n := x.Evict(later, 0); n != 0 {
		t.Fatalf("third evict removed %d, want 0", n)
	}
	if x.Len() != 0 {
		t.Fatalf("index not empty after eviction: %d", x.Len())
	}
}

func TestEvict_BoundHoldsWithinBucket(t *testing.T) {
	x := New(time.Hour)
	for i := 0; i < 6; i++ {
		x.Insert(entry("fp1", int64(i), fmt.Sprintf("m%d", i), t0))
	}

	later := t0.Add(2 * time.Hour)

	// the cap holds even when a single bucket has more stale entries
	if n := x.Evict(later, 2); n != 2 {
		t.Fatalf("evict removed %d from one bucket, want 2", n)
	}
	if x.Len() != 4 {
		t.Fatalf("expected 4 entries left, got %d", x.Len())
	}
	if n := x.Evict(later, 0); n != 4 {
		t.Fatalf("drain removed %d, want 4", n)
	}
}

func TestInsert_PrunesExpiredInBucket(t *testing.T) {
	x := New(time.Hour)
	x.Insert(entry("fp1", 1, "m1", t0))
	// a much later insert on the same fingerprint prunes the stale entry
	x.Insert(entry("fp1", 2, "m2", t0.Add(3*time.Hour)))

	if x.Len() != 1 {
		t.Fatalf("stale entry survived lazy pruning: len=%d", x.Len())
	}
}

func TestConcurrentInsertLookup(t *testing.T) {
	x := New(time.Hour)
	const groups = 8
	const perGroup = 200

	var wg sync.WaitGroup
	for g := 0; g < groups; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGroup; i++ {
				x.Insert(entry("shared", int64(g), fmt.Sprintf("g%d-m%d", g, i), t0.Add(time.Duration(i)*time.Millisecond)))
				_ = x.Lookup("shared", t0.Add(time.Second))
			}
		}(g)
	}
	wg.Wait()

	got := x.Lookup("shared", t0.Add(time.Second))
	if len(got) != groups*perGroup {
		t.Fatalf("lost inserts under concurrency: got %d want %d", len(got), groups*perGroup)
	}
	seen := make(map[string]bool, len(got))
	for _, e := range got {
		if seen[e.MessageID] {
			t.Fatalf("message %s returned twice", e.MessageID)
		}
		seen[e.MessageID] = true
	}
}
