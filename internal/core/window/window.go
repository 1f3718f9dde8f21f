// Package window implements the sliding-window fingerprint index behind
// cross-group spam detection. Entries are bucketed by coarse fingerprint
// and expire once they fall outside the configured time window.
//
// The index is shared mutable state across every group's pipeline, so
// buckets live behind sharded locks: inserts are atomic per entry, appends
// from different groups never overwrite each other, and a lookup never
// observes a half-written entry
package window

import (
	"hash/fnv"
	"sort"
	"sync"
	"time"
)

// Entry records one occurrence of a fingerprinted message
type Entry struct {
	Fingerprint string
	GroupID     int64
	UserID      int64
	MessageID   string
	Text        string // normalized text, compared by the precise matcher
	Timestamp   time.Time
}

// shardCount is a power of two so shard selection is a mask
const shardCount = 64

type shard struct {
	mu      sync.Mutex
	buckets map[string][]Entry
}

// Index is the concurrent sliding-window store
type Index struct {
	window time.Duration
	shards [shardCount]shard
}

// New constructs an Index with the given window span
func New(windowSpan time.Duration) *Index {
	x := &Index{window: windowSpan}
	for i := range x.shards {
		x.shards[i].buckets = make(map[string][]Entry)
	}
	return x
}

// Window returns the configured window span
func (x *Index) Window() time.Duration { return x.window }

func (x *Index) shardFor(fingerprint string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fingerprint))
	return &x.shards[h.Sum32()&(shardCount-1)]
}

// live reports whether e is inside the window relative to now
func (x *Index) live(e Entry, now time.Time) bool {
	return now.Sub(e.Timestamp) < x.window
}

// Insert adds one occurrence. Inserting the same fingerprint/message id
// pair again is a no-op, so retried messages never double-count.
// Expired entries in the touched bucket are pruned on the way in
func (x *Index) Insert(e Entry) {
	if e.Fingerprint == "" {
		return
	}
	s := x.shardFor(e.Fingerprint)
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.buckets[e.Fingerprint]
	for _, old := range bucket {
		if old.MessageID == e.MessageID {
			return
		}
	}
	kept := bucket[:0]
	for _, old := range bucket {
		if x.live(old, e.Timestamp) {
			kept = append(kept, old)
		}
	}
	s.buckets[e.Fingerprint] = append(kept, e)
}

// Lookup returns the live entries for a fingerprint ordered by timestamp
// ascending. The result is a copy; callers may retain it freely
func (x *Index) Lookup(fingerprint string, now time.Time) []Entry {
	if fingerprint == "" {
		return nil
	}
	s := x.shardFor(fingerprint)
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.buckets[fingerprint]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(bucket))
	for _, e := range bucket {
		if x.live(e, now) {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// Evict removes entries older than the window across all fingerprints.
// limit caps the number of removals per call (0 means unbounded) so a
// burst of stale data cannot stall the caller; run it again to finish.
// Returns the number of entries removed. Idempotent once drained
func (x *Index) Evict(now time.Time, limit int) int {
	removed := 0
	for i := range x.shards {
		s := &x.shards[i]
		s.mu.Lock()
		for fp, bucket := range s.buckets {
			kept := bucket[:0]
			for j, e := range bucket {
				if limit > 0 && removed >= limit {
					// budget spent mid-bucket; keep the tail untouched
					kept = append(kept, bucket[j:]...)
					break
				}
				if x.live(e, now) {
					kept = append(kept, e)
					continue
				}
				removed++
			}
			if len(kept) == 0 {
				delete(s.buckets, fp)
			} else {
				s.buckets[fp] = kept
			}
			if limit > 0 && removed >= limit {
				s.mu.Unlock()
				return removed
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Len counts live plus not-yet-swept entries; used by stats reporting
func (x *Index) Len() int {
	total := 0
	for i := range x.shards {
		s := &x.shards[i]
		s.mu.Lock()
		for _, bucket := range s.buckets {
			total += len(bucket)
		}
		s.mu.Unlock()
	}
	return total
}
