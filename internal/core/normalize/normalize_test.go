package normalize

import (
	"strings"
	"testing"
)

func TestNormalize_Table(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{
			name: "identity ascii",
			in:   "ciao ragazzi",
			out:  "ciao ragazzi",
		},
		{
			name: "utf8 repair drops invalid bytes",
			in:   string([]byte{0xff, 'f', 'o', 'o', 0x80, ' ', 'b', 'a', 'r'}),
			out:  "foo bar",
		},
		{
			name: "case fold",
			in:   "VENDO Panieri",
			out:  "vendo panieri",
		},
		{
			name: "zero widths removed",
			in:   "ve​nd‍o",
			out:  "vendo",
		},
		{
			name: "combining marks stripped",
			in:   "università", // università with combining grave
			out:  "universita",
		},
		{
			name: "fullwidth folded",
			in:   "ＶＥＮＤＯ panieri",
			out:  "vendo panieri",
		},
		{
			name: "markdown bold unwrapped",
			in:   "**vendo** panieri",
			out:  "vendo panieri",
		},
		{
			name: "markdown link keeps text",
			in:   "guarda [qui](https://example.com) subito",
			out:  "guarda qui subito",
		},
		{
			name: "inline code unwrapped",
			in:   "scrivi `vendo` in chat",
			out:  "scrivi vendo in chat",
		},
		{
			name: "emoji dropped",
			in:   "\U0001F525 offerta \U0001F680 speciale ⚠",
			out:  "offerta speciale",
		},
		{
			name: "leet digits folded",
			in:   "v3nd0 pan1eri",
			out:  "vendo panieri",
		},
		{
			name: "mention at sign preserved",
			in:   "scrivi a @mario",
			out:  "scrivi a @mario",
		},
		{
			name: "whitespace collapsed and trimmed",
			in:   "  vendo \t panieri \n ora  ",
			out:  "vendo panieri ora",
		},
		{
			name: "empty",
			in:   "",
			out:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := n.Normalize(tc.in)
			if got != tc.out {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.out)
			}
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	n := New()
	in := "V​endo **panieri** a 2o € \U0001F4B0"
	first := n.Normalize(in)
	for i := 0; i < 10; i++ {
		if got := n.Normalize(in); got != first {
			t.Fatalf("normalization not deterministic: %q vs %q", got, first)
		}
	}
	// normalizing an already-normalized string is a fixpoint
	if again := n.Normalize(first); again != first {
		t.Fatalf("not idempotent: %q -> %q", first, again)
	}
}

func TestSanitize(t *testing.T) {
	if got := Sanitize("plain text"); got != "plain text" {
		t.Fatalf("clean input mutated: %q", got)
	}
	in := "a\x00b\x01c\nd\te\x7ff"
	want := "abc\nd\tef"
	if got := Sanitize(in); got != want {
		t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
	}
	// C1 controls dropped
	if got := Sanitize("xy"); got != "xy" {
		t.Fatalf("C1 control survived: %q", got)
	}
}

func TestNormalize_UnbalancedMarkdownLeftAlone(t *testing.T) {
	n := New()
	if got := n.Normalize("**vendo panieri"); !strings.Contains(got, "**vendo") {
		t.Fatalf("unbalanced marker should survive, got %q", got)
	}
}
