package rulepack

import (
	"testing"

	"modguard/internal/core/normalize"
)

func mustPack(t *testing.T) *Pack {
	t.Helper()
	p, err := Load()
	if err != nil {
		t.Fatalf("load pack: %v", err)
	}
	return p
}

func TestLoad_CompilesTemplates(t *testing.T) {
	p := mustPack(t)
	if len(p.Banned) == 0 {
		t.Fatal("embedded pack has no banned phrases")
	}
	if len(p.Templates) != len(p.Compiled) {
		t.Fatalf("templates/compiled mismatch: %d vs %d", len(p.Templates), len(p.Compiled))
	}
}

func TestMatch_BannedPhrase(t *testing.T) {
	n := normalize.New()
	p := mustPack(t)

	term, banned := p.Match(n.Normalize("ciao a tutti, VENDO panieri aggiornati"))
	if !banned {
		t.Fatal("expected banned phrase hit")
	}
	if term != "vendo panieri" {
		t.Fatalf("term = %q, want %q", term, "vendo panieri")
	}
}

func TestMatch_TemplateFiresOnLeetFoldedPrice(t *testing.T) {
	n := normalize.New()
	p := mustPack(t)

	// "20 euro" leet-folds to "2o euro"; the amount class covers it
	if _, banned := p.Match(n.Normalize("vendo appunti completi a 20 euro")); !banned {
		t.Fatal("expected sale template hit on folded price")
	}
	if _, banned := p.Match(n.Normalize("pagamento anticipato con paypal")); !banned {
		t.Fatal("expected payment template hit")
	}
	if _, banned := p.Match(n.Normalize("guadagno facile con il trading")); !banned {
		t.Fatal("expected crypto template hit")
	}
}

func TestMatch_WhitelistOverridesBanned(t *testing.T) {
	p := mustPack(t).Merge(nil, []string{"materiale ufficiale del corso"})
	n := normalize.New()

	norm := n.Normalize("vendo panieri? no: materiale ufficiale del corso condiviso gratis")
	if term, banned := p.Match(norm); banned {
		t.Fatalf("whitelist must override banned match, got term %q", term)
	}
}

func TestMerge_AddsNormalizedDeduped(t *testing.T) {
	p := mustPack(t)
	before := len(p.Banned)

	m := p.Merge([]string{"SPAM_word", "spam word", "vendo panieri"}, nil)
	// "SPAM_word" and "spam word" normalize differently, "vendo panieri" dedupes
	if len(m.Banned) != before+2 {
		t.Fatalf("merged banned count = %d, want %d", len(m.Banned), before+2)
	}
	// original pack untouched
	if len(p.Banned) != before {
		t.Fatal("merge mutated the source pack")
	}

	n := normalize.New()
	if _, banned := m.Match(n.Normalize("buy spam word now")); !banned {
		t.Fatal("merged phrase must match")
	}
}

func TestMatch_EmptyText(t *testing.T) {
	p := mustPack(t)
	if _, banned := p.Match(""); banned {
		t.Fatal("empty text must never match")
	}
}
