// Package normalize provides the deterministic text normalizer used for
// keyword matching and spam fingerprinting.
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Markdown strip bold italic strikethrough inline code and links
// 3 Unicode NFKD decomposition
// 4 Case folding
// 5 Remove zero-width and combining marks
// 6 Width fold fullwidth to ASCII and recompose
// 7 Drop emoji and pictographic symbols
// 8 Simple leet folding eg 4->a 0->o 1->i 3->e 5->s 7->t
// 9 Collapse whitespace to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer is concurrency safe when used with the pool below
type Normalizer struct{}

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters: decompose first so precomposed accents become
		// base + combining mark and the mark strip sees them
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
			norm.NFKC,                          // recompose what survived
		)
	},
}

// New constructs a Normalizer
func New() *Normalizer { return &Normalizer{} }

// Normalize returns the normalized form of s following the pipeline above.
// The raw text is never mutated; callers keep it separately for audit
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = Sanitize(s)

	// 1 repair UTF-8 drop invalid bytes
	s = strings.ToValidUTF8(s, "")

	// 2 strip chat markdown before unicode folding so **w**o**r**d tricks
	// collapse to the plain phrase
	s = stripMarkdown(s)

	// 3-6 transform via pooled chain then reset and return it
	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	// 7 drop emoji and symbols
	ns = stripSymbols(ns)

	// 8 simple leet folding
	ns = leetFold(ns)

	// 9 collapse whitespace and trim
	ns = collapseSpaces(ns)

	return ns
}

// stripMarkdown unwraps the markdown spans chat clients render:
// **bold**, __underline__, ~~strike~~, `code`, and [text](url) links.
// Unbalanced markers are left alone
func stripMarkdown(s string) string {
	for _, mark := range []string{"**", "__", "~~", "`"} {
		s = unwrapPaired(s, mark)
	}
	return unwrapLinks(s)
}

// unwrapPaired removes paired occurrences of mark, keeping the inner text
func unwrapPaired(s, mark string) string {
	if strings.Count(s, mark) < 2 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for {
		i := strings.Index(s, mark)
		if i < 0 {
			break
		}
		j := strings.Index(s[i+len(mark):], mark)
		if j < 0 {
			break
		}
		b.WriteString(s[:i])
		b.WriteString(s[i+len(mark) : i+len(mark)+j])
		s = s[i+len(mark)+j+len(mark):]
	}
	b.WriteString(s)
	return b.String()
}

// unwrapLinks rewrites [text](url) to text
func unwrapLinks(s string) string {
	if !strings.Contains(s, "](") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for {
		open := strings.IndexByte(s, '[')
		if open < 0 {
			break
		}
		mid := strings.Index(s[open:], "](")
		if mid < 0 {
			break
		}
		end := strings.IndexByte(s[open+mid+2:], ')')
		if end < 0 {
			break
		}
		b.WriteString(s[:open])
		b.WriteString(s[open+1 : open+mid])
		s = s[open+mid+2+end+1:]
	}
	b.WriteString(s)
	return b.String()
}

// stripSymbols removes emoji, pictographs and other symbol runes.
// '@' survives so mentions stay matchable; basic punctuation survives so
// the similarity metric still sees sentence shape
func stripSymbols(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.So, r) || unicode.Is(unicode.Sk, r) {
			continue
		}
		if r >= 0x1F000 && r <= 0x1FAFF { // pictographic planes
			continue
		}
		if r >= 0x2600 && r <= 0x27BF { // misc symbols and dingbats
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// leetFold maps digit lookalikes to their letters. '@' is left alone so
// mentions stay matchable by the contact-invitation rules
func leetFold(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '4':
			b.WriteRune('a')
		case '0':
			b.WriteRune('o')
		case '1':
			b.WriteRune('i')
		case '3':
			b.WriteRune('e')
		case '5':
			b.WriteRune('s')
		case '7':
			b.WriteRune('t')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// collapseSpaces converts whitespace runs to a single ASCII space and trims.
// Chat messages are matched as one line, so newlines fold to spaces too
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if b.Len() > 0 {
				inWS = true
			}
			continue
		}
		if inWS {
			b.WriteByte(' ')
			inWS = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
