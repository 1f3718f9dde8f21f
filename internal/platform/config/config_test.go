package config

import (
	"testing"
	"time"

	"modguard/internal/platform/testkit"
)

func TestPrefixChaining(t *testing.T) {
	t.Setenv("CORE_API_API_PORT", "4000")
	c := New().Prefix("CORE_").Prefix("API_")
	if got := c.MustPort("API_PORT"); got != ":4000" {
		t.Fatalf("MustPort = %q", got)
	}
}

func TestMustStringPanicsWhenMissing(t *testing.T) {
	c := New().Prefix("MODGUARD_TEST_")
	testkit.MustPanic(t, func() { c.MustString("ABSENT") })
}

func TestMustPortRejectsBadValues(t *testing.T) {
	c := New().Prefix("MODGUARD_TEST_")
	t.Setenv("MODGUARD_TEST_PORT", "70000")
	testkit.MustPanic(t, func() { c.MustPort("PORT") })
	t.Setenv("MODGUARD_TEST_PORT", "http")
	testkit.MustPanic(t, func() { c.MustPort("PORT") })
}

func TestRequire(t *testing.T) {
	t.Setenv("MODGUARD_TEST_A", "x")
	c := New().Prefix("MODGUARD_TEST_")
	testkit.MustNotPanic(t, func() { c.Require("A") })
	testkit.MustPanic(t, func() { c.Require("A", "B") })
}

func TestMayAccessorsFallBack(t *testing.T) {
	t.Setenv("MODGUARD_TEST_N", "not-a-number")
	t.Setenv("MODGUARD_TEST_D", "2s")
	t.Setenv("MODGUARD_TEST_CSV", " a, ,b ")
	c := New().Prefix("MODGUARD_TEST_")

	if got := c.MayInt("N", 7); got != 7 {
		t.Fatalf("MayInt fallback = %d", got)
	}
	if got := c.MayDuration("D", time.Second); got != 2*time.Second {
		t.Fatalf("MayDuration = %v", got)
	}
	if got := c.MayBool("ABSENT", true); !got {
		t.Fatal("MayBool fallback lost the default")
	}
	csv := c.MayCSV("CSV", nil)
	if len(csv) != 2 || csv[0] != "a" || csv[1] != "b" {
		t.Fatalf("MayCSV = %v", csv)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("MODGUARD_TEST_")
	t.Setenv("MODGUARD_TEST_MODE", "json")
	if got := c.MayEnum("MODE", "console", "console", "json"); got != "json" {
		t.Fatalf("MayEnum = %q", got)
	}
	t.Setenv("MODGUARD_TEST_MODE", "yaml")
	testkit.MustPanic(t, func() { c.MayEnum("MODE", "console", "console", "json") })
}
