// Package langhint provides coarse script and language detection for the
// disallowed-language check. It is deliberately conservative: short or
// ambiguous text yields no hint, and no hint never rejects a message
package langhint

import "unicode"

// minLetters is the minimum letter count before a hint is emitted;
// below it detection is too noisy to act on
const minLetters = 20

// Hint is the detection result for one text
type Hint struct {
	Script string // predominant script name, "" when no letters
	Lang   string // best-effort ISO 639-1 code, "" when uncertain
}

// scriptLang maps a predominant script to a language code where the
// mapping is strong enough to act on. Latin is ambiguous and maps to ""
var scriptLang = map[string]string{
	"Cyrillic":   "ru",
	"Han":        "zh",
	"Hiragana":   "ja",
	"Katakana":   "ja",
	"Hangul":     "ko",
	"Arabic":     "ar",
	"Hebrew":     "he",
	"Thai":       "th",
	"Greek":      "el",
	"Georgian":   "ka",
	"Armenian":   "hy",
	"Devanagari": "hi",
}

var scriptRanges = []struct {
	name string
	rt   *unicode.RangeTable
}{
	{"Hiragana", unicode.Hiragana},
	{"Katakana", unicode.Katakana},
	{"Hangul", unicode.Hangul},
	{"Han", unicode.Han},
	{"Arabic", unicode.Arabic},
	{"Hebrew", unicode.Hebrew},
	{"Thai", unicode.Thai},
	{"Greek", unicode.Greek},
	{"Cyrillic", unicode.Cyrillic},
	{"Georgian", unicode.Georgian},
	{"Armenian", unicode.Armenian},
	{"Devanagari", unicode.Devanagari},
	{"Latin", unicode.Latin},
}

// Detect returns the predominant script and, when confident, a language
// code. Ties prefer specific scripts over Latin (the ranges are ordered)
func Detect(s string) Hint {
	counts := make(map[string]int, 4)
	total := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		total++
		for _, sr := range scriptRanges {
			if unicode.In(r, sr.rt) {
				counts[sr.name]++
				break
			}
		}
	}
	if total == 0 {
		return Hint{}
	}

	var best string
	bestCnt := -1
	for _, sr := range scriptRanges {
		if c := counts[sr.name]; c > bestCnt {
			best = sr.name
			bestCnt = c
		}
	}

	h := Hint{Script: best}
	if total >= minLetters {
		h.Lang = scriptLang[best]
	}
	return h
}

// Disallowed reports whether the text's detected language falls outside
// allowed. An empty allowed list, an "any" entry, or an uncertain hint all
// mean the text passes: uncertainty never rejects
func Disallowed(s string, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	for _, a := range allowed {
		if a == "any" {
			return false
		}
	}
	h := Detect(s)
	if h.Lang == "" {
		return false
	}
	for _, a := range allowed {
		if a == h.Lang {
			return false
		}
	}
	return true
}
