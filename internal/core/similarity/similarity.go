// Package similarity scores how close two normalized texts are and derives
// the coarse fingerprints the window index buckets candidates under.
//
// The score is a normalized Levenshtein ratio (1 - distance/maxLen), the
// same metric the cross-group detector has always used: symmetric,
// 1.0 for identical non-empty inputs, and never decreased by appending the
// same suffix to both sides
package similarity

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// DefaultThreshold is the match cutoff used when config supplies none
const DefaultThreshold = 0.85

// Score returns the similarity of a and b in [0,1].
// Empty input on either side scores 0.0
func Score(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}

	ra := []rune(a)
	rb := []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}

	d := levenshtein(ra, rb)
	return 1.0 - float64(d)/float64(maxLen)
}

// Match reports whether Score(a, b) >= threshold
func Match(a, b string, threshold float64) bool {
	return Score(a, b) >= threshold
}

// levenshtein computes edit distance with the classic two-row DP.
// Inputs are rune slices so multibyte text is measured per character
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	// keep the shorter side as the row to bound memory
	if len(b) < len(a) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	cur := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		cur[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			ins := cur[i-1] + 1
			del := prev[i] + 1
			sub := prev[i-1] + cost
			m := ins
			if del < m {
				m = del
			}
			if sub < m {
				m = sub
			}
			cur[i] = m
		}
		prev, cur = cur, prev
	}
	return prev[len(a)]
}

// shingleSize is the word count per shingle for fingerprinting
const shingleSize = 3

// Fingerprint derives the coarse bucket key for normalized text: the
// minimum FNV-64a hash over its word shingles. It only narrows the
// candidate set; Match makes the actual same-content call.
// Empty text fingerprints to ""
func Fingerprint(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var minSum uint64
	first := true
	limit := len(words) - shingleSize + 1
	if limit < 1 {
		limit = 1
	}
	for i := 0; i < limit; i++ {
		end := i + shingleSize
		if end > len(words) {
			end = len(words)
		}
		h := fnv.New64a()
		for w := i; w < end; w++ {
			_, _ = h.Write([]byte(words[w]))
			_, _ = h.Write([]byte{0x1f})
		}
		sum := h.Sum64()
		if first || sum < minSum {
			minSum = sum
			first = false
		}
	}
	return strconv.FormatUint(minSum, 36)
}
