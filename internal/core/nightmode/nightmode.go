// Package nightmode implements the per-group scheduling gate that decides
// whether a group is currently rejecting new messages.
//
// Each group walks a four-phase machine: Day -> EnteringNight -> Night ->
// ExitingNight -> Day. The Entering/Exiting phases hold for the configured
// grace period before settling, giving ongoing conversations a warning
// window. Restriction applies from the moment EnteringNight begins.
//
// Transitions for one group are serialized behind that group's lock;
// different groups advance independently. Evaluating on every message and
// evaluating on a periodic tick converge to the same decision because the
// transition function is pure in (phase, enteredAt, now)
package nightmode

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Phase is the gate state for one group
type Phase int

// Gate phases in transition order
const (
	Day Phase = iota
	EnteringNight
	Night
	ExitingNight
)

// String returns the lowercase phase name
func (p Phase) String() string {
	switch p {
	case Day:
		return "day"
	case EnteringNight:
		return "entering_night"
	case Night:
		return "night"
	case ExitingNight:
		return "exiting_night"
	default:
		return "unknown"
	}
}

// Clock is a time of day in minutes since local midnight
type Clock int

// ParseClock parses "HH:MM" into a Clock
func ParseClock(s string) (Clock, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("nightmode: bad clock %q (want HH:MM)", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("nightmode: bad hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("nightmode: bad minute in %q", s)
	}
	return Clock(h*60 + m), nil
}

// Schedule is the read-only night mode configuration for the gate
type Schedule struct {
	Enabled bool
	Start   Clock // boundary where night begins
	End     Clock // boundary where night ends; may be before Start (wraps midnight)
	Grace   time.Duration
	Groups  map[int64]bool // groups subject to the restriction
	Loc     *time.Location // local time zone for the boundaries; nil means UTC
}

// inNight reports whether the wall clock at now falls inside the night
// interval, treating Start > End as a wrap past midnight
func (s Schedule) inNight(now time.Time) bool {
	loc := s.Loc
	if loc == nil {
		loc = time.UTC
	}
	t := now.In(loc)
	c := Clock(t.Hour()*60 + t.Minute())
	if s.Start == s.End {
		return false // zero-length interval never restricts
	}
	if s.Start < s.End {
		return c >= s.Start && c < s.End
	}
	return c >= s.Start || c < s.End
}

type groupState struct {
	mu        sync.Mutex
	phase     Phase
	enteredAt time.Time
	forced    *bool // manual override; nil when the schedule governs
}

// Gate owns the per-group phase state
type Gate struct {
	mu     sync.RWMutex // guards sched and the states map shape
	sched  Schedule
	states map[int64]*groupState
}

// New constructs a Gate with the given schedule
func New(sched Schedule) *Gate {
	return &Gate{sched: sched, states: make(map[int64]*groupState)}
}

// SetSchedule swaps the schedule, e.g. on config reload. Groups that are
// disabled or no longer listed reset to Day on their next evaluation,
// with no grace period: disabling is not a scheduled boundary
func (g *Gate) SetSchedule(sched Schedule) {
	g.mu.Lock()
	g.sched = sched
	g.mu.Unlock()
}

func (g *Gate) stateFor(groupID int64) *groupState {
	g.mu.RLock()
	st := g.states[groupID]
	g.mu.RUnlock()
	if st != nil {
		return st
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if st = g.states[groupID]; st == nil {
		st = &groupState{phase: Day}
		g.states[groupID] = st
	}
	return st
}

// advance applies the transition function under the group's lock
func (g *Gate) advance(groupID int64, now time.Time) Phase {
	g.mu.RLock()
	sched := g.sched
	g.mu.RUnlock()

	st := g.stateFor(groupID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.forced != nil {
		if *st.forced {
			return Night
		}
		return Day
	}

	if !sched.Enabled || !sched.Groups[groupID] {
		st.phase = Day
		st.enteredAt = time.Time{}
		return Day
	}

	inNight := sched.inNight(now)
	for {
		switch st.phase {
		case Day:
			if !inNight {
				return Day
			}
			st.phase = EnteringNight
			st.enteredAt = now
		case EnteringNight:
			if !inNight {
				// boundary passed before the grace elapsed; fall back
				st.phase = Day
				st.enteredAt = now
				continue
			}
			if now.Sub(st.enteredAt) < sched.Grace {
				return EnteringNight
			}
			st.phase = Night
			st.enteredAt = now
		case Night:
			if inNight {
				return Night
			}
			st.phase = ExitingNight
			st.enteredAt = now
		case ExitingNight:
			if inNight {
				// night resumed while winding down
				st.phase = Night
				st.enteredAt = now
				continue
			}
			if now.Sub(st.enteredAt) < sched.Grace {
				return ExitingNight
			}
			st.phase = Day
			st.enteredAt = now
		}
	}
}

// IsRestricted reports whether the group currently suppresses messages.
// Restriction holds through EnteringNight and Night. Groups with no
// schedule entry are never restricted
func (g *Gate) IsRestricted(groupID int64, now time.Time) bool {
	p := g.advance(groupID, now)
	return p == EnteringNight || p == Night
}

// PhaseOf returns the group's phase after advancing it to now
func (g *Gate) PhaseOf(groupID int64, now time.Time) Phase {
	return g.advance(groupID, now)
}

// ForceSet pins the group on (Night) or off (Day) regardless of schedule,
// backing the manual /nighton and /nightoff overrides. The pin holds until
// ClearForce or a subsequent ForceSet
func (g *Gate) ForceSet(groupID int64, on bool) {
	st := g.stateFor(groupID)
	st.mu.Lock()
	st.forced = &on
	if on {
		st.phase = Night
	} else {
		st.phase = Day
	}
	st.enteredAt = time.Time{}
	st.mu.Unlock()
}

// ClearForce hands the group back to the schedule
func (g *Gate) ClearForce(groupID int64) {
	st := g.stateFor(groupID)
	st.mu.Lock()
	st.forced = nil
	st.mu.Unlock()
}

// Tick advances every known group, for periodic evaluation between
// messages. Decisions match per-message evaluation exactly
func (g *Gate) Tick(now time.Time) {
	g.mu.RLock()
	ids := make([]int64, 0, len(g.states))
	for id := range g.states {
		ids = append(ids, id)
	}
	g.mu.RUnlock()
	for _, id := range ids {
		g.advance(id, now)
	}
}
