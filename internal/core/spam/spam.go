// Package spam implements cross-group duplicate-content detection: the
// same or near-identical text surfacing in several distinct groups inside
// the time window marks a spam burst.
//
// Detection is two-stage. A coarse fingerprint narrows candidates to one
// window-index bucket, then the precise similarity matcher filters them
// against the configured threshold. The fingerprint never decides a match
// on its own
package spam

import (
	"sort"
	"time"

	"modguard/internal/core/similarity"
	"modguard/internal/core/window"
)

// Config bounds per spec'd dashboard ranges
const (
	MinGroupsFloor = 2
	MinGroupsCeil  = 10
	ThresholdFloor = 0.1
	ThresholdCeil  = 1.0
)

// Config tunes the detector
type Config struct {
	Window    time.Duration // how far back matching content counts
	Threshold float64       // similarity cutoff in [0.1, 1.0]
	MinGroups int           // distinct groups incl. the current one
}

// Message is the slice of an inbound message the detector needs
type Message struct {
	ID        string
	GroupID   int64
	UserID    int64
	NormText  string // already normalized; empty means malformed
	Timestamp time.Time
}

// Verdict is the detection outcome for one message
type Verdict struct {
	IsSpam         bool
	MatchedGroups  []int64        // distinct groups involved, sorted; includes the message's own
	MatchedEntries []window.Entry // contributing occurrences, oldest first
	MaxScore       float64        // highest similarity seen among candidates
}

// Detector consumes messages and maintains the shared window index
type Detector struct {
	cfg Config
	idx *window.Index
}

// New constructs a Detector over the given index
func New(cfg Config, idx *window.Index) *Detector {
	if cfg.MinGroups < MinGroupsFloor {
		cfg.MinGroups = MinGroupsFloor
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = similarity.DefaultThreshold
	}
	return &Detector{cfg: cfg, idx: idx}
}

// Check evaluates one message and records it in the window.
//
// The record happens exactly once per message id regardless of the verdict
// or of later pipeline rejections: spam tracking has to see all traffic.
// A message with empty normalized text is malformed and never spam; it is
// not recorded either, since it can never match anything
func (d *Detector) Check(msg Message) Verdict {
	if msg.NormText == "" {
		return Verdict{}
	}

	fp := similarity.Fingerprint(msg.NormText)
	candidates := d.idx.Lookup(fp, msg.Timestamp)

	var (
		matched  []window.Entry
		maxScore float64
	)
	groups := map[int64]bool{msg.GroupID: true}
	for _, c := range candidates {
		if c.MessageID == msg.ID {
			continue
		}
		score := similarity.Score(c.Text, msg.NormText)
		if score > maxScore {
			maxScore = score
		}
		if score >= d.cfg.Threshold {
			matched = append(matched, c)
			groups[c.GroupID] = true
		}
	}

	d.idx.Insert(window.Entry{
		Fingerprint: fp,
		GroupID:     msg.GroupID,
		UserID:      msg.UserID,
		MessageID:   msg.ID,
		Text:        msg.NormText,
		Timestamp:   msg.Timestamp,
	})

	if len(groups) < d.cfg.MinGroups {
		return Verdict{MaxScore: maxScore}
	}

	ids := make([]int64, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return Verdict{
		IsSpam:         true,
		MatchedGroups:  ids,
		MatchedEntries: matched, // Lookup returns ascending timestamps
		MaxScore:       maxScore,
	}
}

// Index exposes the shared window so a rebuilt detector can keep the
// accumulated occurrences across config reloads
func (d *Detector) Index() *window.Index { return d.idx }

// Evict runs one bounded maintenance sweep over the shared index
func (d *Detector) Evict(now time.Time, limit int) int {
	return d.idx.Evict(now, limit)
}

// Tracked reports how many occurrences the index currently holds
func (d *Detector) Tracked() int { return d.idx.Len() }
