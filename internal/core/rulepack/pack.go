// Package rulepack loads and compiles the keyword moderation rules from the
// embedded rules.json: banned literal phrases, whitelist phrases, and
// high-confidence regex templates for explicit sale and scam wording.
// Dashboard-supplied word lists are merged over the embedded defaults at
// config load time
package rulepack

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"modguard/internal/core/normalize"
)

//go:embed rules.json
var embedded []byte

type rawTemplate struct {
	ID       string `json:"id"`
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
}

type rawPack struct {
	Version   int           `json:"version"`
	Banned    []string      `json:"banned_phrases"`
	Whitelist []string      `json:"whitelist_phrases"`
	Templates []rawTemplate `json:"templates"`
}

// Template is one compiled high-confidence pattern
type Template struct {
	ID       string
	Category string
}

// Pack holds the compiled rule set. All phrases are stored normalized so
// matching is a plain substring test against normalized message text
type Pack struct {
	Version   int
	Banned    []string
	Whitelist []string
	Templates []Template // 1:1 with Compiled
	Compiled  []*regexp.Regexp
}

// Load compiles the embedded default rules
func Load() (*Pack, error) {
	var rp rawPack
	if err := json.Unmarshal(embedded, &rp); err != nil {
		return nil, fmt.Errorf("rulepack: parse rules.json: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("rulepack: unsupported rules.json version %d (want 1)", rp.Version)
	}
	return build(rp)
}

func build(rp rawPack) (*Pack, error) {
	n := normalize.New()
	p := &Pack{Version: rp.Version}

	for _, s := range rp.Banned {
		if ns := n.Normalize(s); ns != "" {
			p.Banned = append(p.Banned, ns)
		}
	}
	for _, s := range rp.Whitelist {
		if ns := n.Normalize(s); ns != "" {
			p.Whitelist = append(p.Whitelist, ns)
		}
	}

	for _, t := range rp.Templates {
		re, err := regexp.Compile(t.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rulepack: template %s: %w", t.ID, err)
		}
		p.Templates = append(p.Templates, Template{ID: t.ID, Category: t.Category})
		p.Compiled = append(p.Compiled, re)
	}
	return p, nil
}

// Merge returns a copy of p with extra banned and whitelist phrases folded
// in (normalized, deduped). Templates carry over unchanged. Used when the
// dashboard config document supplies its own word lists
func (p *Pack) Merge(banned, whitelist []string) *Pack {
	n := normalize.New()
	out := &Pack{
		Version:   p.Version,
		Banned:    append([]string(nil), p.Banned...),
		Whitelist: append([]string(nil), p.Whitelist...),
		Templates: p.Templates,
		Compiled:  p.Compiled,
	}
	out.Banned = appendNormalized(n, out.Banned, banned)
	out.Whitelist = appendNormalized(n, out.Whitelist, whitelist)
	return out
}

func appendNormalized(n *normalize.Normalizer, dst []string, in []string) []string {
	seen := make(map[string]bool, len(dst)+len(in))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range in {
		ns := n.Normalize(s)
		if ns == "" || seen[ns] {
			continue
		}
		seen[ns] = true
		dst = append(dst, ns)
	}
	return dst
}

// Match checks normalized text against the pack. Whitelist phrases take
// precedence: a text matching both a banned and a whitelisted phrase is an
// explicit override, not a tie-break, and returns no match.
// The returned term is the banned phrase or template id that fired
func (p *Pack) Match(norm string) (term string, banned bool) {
	if norm == "" {
		return "", false
	}
	for _, w := range p.Whitelist {
		if strings.Contains(norm, w) {
			return "", false
		}
	}
	for i, re := range p.Compiled {
		if re.MatchString(norm) {
			return p.Templates[i].ID, true
		}
	}
	for _, b := range p.Banned {
		if strings.Contains(norm, b) {
			return b, true
		}
	}
	return "", false
}
