package similarity

import "testing"

func TestScore_Contract(t *testing.T) {
	// reflexive on non-empty input
	if got := Score("vendo panieri", "vendo panieri"); got != 1.0 {
		t.Fatalf("reflexive score = %v, want 1.0", got)
	}
	// empty on either side is 0.0
	if got := Score("", "qualcosa"); got != 0.0 {
		t.Fatalf("empty lhs score = %v, want 0.0", got)
	}
	if got := Score("qualcosa", ""); got != 0.0 {
		t.Fatalf("empty rhs score = %v, want 0.0", got)
	}
	if got := Score("", ""); got != 0.0 {
		t.Fatalf("both empty score = %v, want 0.0", got)
	}
}

func TestScore_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"vendo panieri a poco", "vendo panieri gratis"},
		{"ciao", "addio"},
		{"università telematica", "universita telematika"},
	}
	for _, p := range pairs {
		ab := Score(p[0], p[1])
		ba := Score(p[1], p[0])
		if ab != ba {
			t.Fatalf("Score(%q,%q)=%v but reversed=%v", p[0], p[1], ab, ba)
		}
	}
}

func TestScore_MonotonicUnderSharedSuffix(t *testing.T) {
	a, b := "vendo panieri unipegaso", "vendo appunti unipegaso"
	base := Score(a, b)
	suffix := " scrivetemi in privato per il prezzo"
	grown := Score(a+suffix, b+suffix)
	if grown < base {
		t.Fatalf("appending identical text decreased score: %v -> %v", base, grown)
	}
}

func TestScore_NearDuplicate(t *testing.T) {
	a := "vendo panieri aggiornati scrivetemi in privato"
	b := "vendo panieri aggiornati scrivetemi in pvt"
	if got := Score(a, b); got < DefaultThreshold {
		t.Fatalf("near duplicate scored %v, want >= %v", got, DefaultThreshold)
	}
	c := "qualcuno ha gli appunti di diritto privato?"
	if got := Score(a, c); got >= DefaultThreshold {
		t.Fatalf("unrelated text scored %v, want < %v", got, DefaultThreshold)
	}
}

func TestMatch(t *testing.T) {
	if !Match("stesso testo", "stesso testo", 1.0) {
		t.Fatal("identical text must match at threshold 1.0")
	}
	if Match("stesso testo", "altro contenuto", 0.9) {
		t.Fatal("unrelated text must not match at 0.9")
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		d    int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"identico", "identico", 0},
	}
	for _, c := range cases {
		if got := levenshtein([]rune(c.a), []rune(c.b)); got != c.d {
			t.Fatalf("levenshtein(%q,%q)=%d, want %d", c.a, c.b, got, c.d)
		}
	}
}

func TestFingerprint(t *testing.T) {
	if Fingerprint("") != "" {
		t.Fatal("empty text must fingerprint to empty")
	}
	a := Fingerprint("vendo panieri aggiornati scrivetemi subito")
	if a == "" {
		t.Fatal("non-empty text must produce a fingerprint")
	}
	if b := Fingerprint("vendo panieri aggiornati scrivetemi subito"); b != a {
		t.Fatalf("fingerprint not deterministic: %q vs %q", a, b)
	}
	// identical leading shingles keep near-duplicates in the same bucket
	// when the minimal shingle is shared
	c := Fingerprint("vendo panieri aggiornati scrivetemi subito per favore")
	d := Fingerprint("vendo panieri aggiornati scrivetemi subito grazie mille")
	if c != d && c != a {
		// both extensions share all original shingles; at least one of the
		// two comparisons must collide with the base bucket
		t.Fatalf("expected shared bucket for shared shingles: %q %q %q", a, c, d)
	}
	// short texts fall back to a whole-text shingle
	if Fingerprint("ciao") == "" {
		t.Fatal("single word must still fingerprint")
	}
}
