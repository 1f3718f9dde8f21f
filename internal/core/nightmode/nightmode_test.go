package nightmode

import (
	"testing"
	"time"
)

func mustClock(t *testing.T, s string) Clock {
	t.Helper()
	c, err := ParseClock(s)
	if err != nil {
		t.Fatalf("ParseClock(%q): %v", s, err)
	}
	return c
}

func wrapSchedule(t *testing.T, grace time.Duration, groups ...int64) Schedule {
	t.Helper()
	gs := make(map[int64]bool, len(groups))
	for _, g := range groups {
		gs[g] = true
	}
	return Schedule{
		Enabled: true,
		Start:   mustClock(t, "23:00"),
		End:     mustClock(t, "07:00"),
		Grace:   grace,
		Groups:  gs,
	}
}

func at(t *testing.T, hhmm string) time.Time {
	t.Helper()
	c := mustClock(t, hhmm)
	return time.Date(2025, 6, 1, int(c)/60, int(c)%60, 0, 0, time.UTC)
}

func TestParseClock(t *testing.T) {
	if c := mustClock(t, "23:00"); c != 23*60 {
		t.Fatalf("23:00 = %d", c)
	}
	if c := mustClock(t, "07:30"); c != 7*60+30 {
		t.Fatalf("07:30 = %d", c)
	}
	for _, bad := range []string{"", "7", "24:00", "12:60", "ab:cd"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("ParseClock(%q) should fail", bad)
		}
	}
}

func TestWrapAroundRestriction(t *testing.T) {
	g := New(wrapSchedule(t, 0, 100))

	if !g.IsRestricted(100, at(t, "23:30")) {
		t.Fatal("23:30 must be restricted inside a 23:00-07:00 window")
	}
	if !g.IsRestricted(100, at(t, "03:00")) {
		t.Fatal("03:00 must be restricted inside a 23:00-07:00 window")
	}
	if g.IsRestricted(100, at(t, "12:00")) {
		t.Fatal("12:00 must not be restricted")
	}
}

func TestUnlistedGroupNeverRestricted(t *testing.T) {
	g := New(wrapSchedule(t, 0, 100))
	if g.IsRestricted(200, at(t, "23:30")) {
		t.Fatal("group outside night_mode_groups must never be restricted")
	}
}

func TestDisabledScheduleNeverRestricts(t *testing.T) {
	sched := wrapSchedule(t, 0, 100)
	sched.Enabled = false
	g := New(sched)
	if g.IsRestricted(100, at(t, "23:30")) {
		t.Fatal("disabled schedule must not restrict")
	}
}

func TestGracePeriodPhases(t *testing.T) {
	grace := 5 * time.Minute
	g := New(wrapSchedule(t, grace, 100))

	enter := at(t, "23:00")

	// first evaluation inside the window opens the grace phase and
	// restriction applies immediately
	if p := g.PhaseOf(100, enter); p != EnteringNight {
		t.Fatalf("phase at boundary = %v, want entering_night", p)
	}
	if !g.IsRestricted(100, enter.Add(time.Minute)) {
		t.Fatal("grace window must already restrict")
	}

	// after the grace the phase settles
	if p := g.PhaseOf(100, enter.Add(grace+time.Second)); p != Night {
		t.Fatalf("phase after grace = %v, want night", p)
	}

	// crossing the end boundary starts the exit grace, unrestricted
	exit := at(t, "07:01").Add(24 * time.Hour)
	if p := g.PhaseOf(100, exit); p != ExitingNight {
		t.Fatalf("phase after end boundary = %v, want exiting_night", p)
	}
	if g.IsRestricted(100, exit.Add(time.Minute)) {
		t.Fatal("exit grace must not restrict")
	}
	if p := g.PhaseOf(100, exit.Add(grace+time.Minute)); p != Day {
		t.Fatalf("phase after exit grace = %v, want day", p)
	}
}

func TestDisableResetsImmediately(t *testing.T) {
	sched := wrapSchedule(t, 10*time.Minute, 100)
	g := New(sched)

	if !g.IsRestricted(100, at(t, "23:30")) {
		t.Fatal("setup: group should be restricted")
	}

	// disabling skips the grace period entirely
	sched.Enabled = false
	g.SetSchedule(sched)
	if g.IsRestricted(100, at(t, "23:31")) {
		t.Fatal("disable must take effect immediately, no grace")
	}
	if p := g.PhaseOf(100, at(t, "23:31")); p != Day {
		t.Fatalf("phase after disable = %v, want day", p)
	}
}

func TestGroupRemovalResetsImmediately(t *testing.T) {
	g := New(wrapSchedule(t, 0, 100))
	if !g.IsRestricted(100, at(t, "23:30")) {
		t.Fatal("setup: group should be restricted")
	}
	g.SetSchedule(wrapSchedule(t, 0, 999))
	if g.IsRestricted(100, at(t, "23:31")) {
		t.Fatal("removed group must reset to day immediately")
	}
}

func TestForceSetOverridesSchedule(t *testing.T) {
	g := New(wrapSchedule(t, 0, 100))

	// /nightoff during the night window
	g.ForceSet(100, false)
	if g.IsRestricted(100, at(t, "23:30")) {
		t.Fatal("forced-off group must not be restricted at night")
	}

	// /nighton during the day
	g.ForceSet(100, true)
	if !g.IsRestricted(100, at(t, "12:00")) {
		t.Fatal("forced-on group must be restricted at noon")
	}

	// clearing hands control back to the schedule
	g.ClearForce(100)
	if g.IsRestricted(100, at(t, "12:00")) {
		t.Fatal("cleared group must follow the schedule again")
	}
}

func TestTickMatchesPerMessageEvaluation(t *testing.T) {
	grace := 2 * time.Minute
	a := New(wrapSchedule(t, grace, 100))
	b := New(wrapSchedule(t, grace, 100))

	times := []time.Time{
		at(t, "22:59"),
		at(t, "23:00"),
		at(t, "23:01"),
		at(t, "23:03"),
		at(t, "03:00"),
	}

	// a advances via ticks, b via message-time queries
	for _, now := range times {
		a.Tick(now)
		_ = b.IsRestricted(100, now)
		if pa, pb := a.PhaseOf(100, now), b.PhaseOf(100, now); pa != pb {
			t.Fatalf("tick/message divergence at %v: %v vs %v", now, pa, pb)
		}
	}
}

func TestZeroLengthWindowNeverRestricts(t *testing.T) {
	sched := wrapSchedule(t, 0, 100)
	sched.End = sched.Start
	g := New(sched)
	if g.IsRestricted(100, at(t, "23:00")) {
		t.Fatal("zero-length interval must not restrict")
	}
}
