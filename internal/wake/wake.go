// Package wake detects the assistant's wake phrases in recognised text.
//
// The default [JaccardDetector] accepts both direct substring matches and a
// permissive per-token character-set similarity, which tolerates the kind of
// near-miss transcriptions a speech recogniser produces ("orrin", "oren").
// The stricter [PhoneticDetector] is an opt-in alternative built on Double
// Metaphone codes and Jaro-Winkler similarity.
package wake

import (
	"sort"
	"strings"
)

// jaccardThreshold is the minimum character-set similarity for a token to
// count as a fuzzy wake-phrase match.
const jaccardThreshold = 0.8

// Detector reports whether recognised text contains a wake phrase.
type Detector interface {
	Match(text string) bool
}

// Phrases returns the wake phrases derived from the assistant's name:
// the name itself plus the "hey" and "ok" prefixed forms.
func Phrases(name string) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	return []string{name, "hey " + name, "ok " + name}
}

// JaccardDetector matches wake phrases by direct containment or by per-token
// character-set Jaccard similarity.
type JaccardDetector struct {
	phrases []string
}

var _ Detector = (*JaccardDetector)(nil)

// NewJaccard creates the default detector for the given wake phrases.
// Phrases are lower-cased once at construction.
func NewJaccard(phrases []string) *JaccardDetector {
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}
	return &JaccardDetector{phrases: lowered}
}

// Match reports whether text contains a wake phrase. Text containing any
// phrase as a substring matches immediately; otherwise each token longer
// than 2 characters is compared against each phrase by character-set
// Jaccard similarity with a 0.8 threshold.
//
// The character-set comparison is deliberately permissive: it ignores
// character order and repetition, so anagram-like tokens can wake the
// assistant. That looseness is part of the documented contract.
func (d *JaccardDetector) Match(text string) bool {
	text = strings.ToLower(text)

	for _, phrase := range d.phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}

	for _, phrase := range d.phrases {
		for _, token := range strings.Fields(text) {
			if len(token) <= 2 {
				continue
			}
			if charSetJaccard(phrase, token) >= jaccardThreshold {
				return true
			}
		}
	}
	return false
}

// charSetJaccard returns |chars(a) ∩ chars(b)| / |chars(a) ∪ chars(b)|.
func charSetJaccard(a, b string) float64 {
	setA := charSet(a)
	setB := charSet(b)

	inter := 0
	for r := range setA {
		if setB[r] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func charSet(s string) map[rune]bool {
	set := make(map[rune]bool, len(s))
	for _, r := range s {
		set[r] = true
	}
	return set
}

// StripPrefix removes a leading wake phrase from command and trims the
// remainder. Longer phrases are tried first so "hey orin what time" strips
// to "what time" rather than leaving the "hey" dangling. Commands that do
// not start with a wake phrase are returned unchanged.
func StripPrefix(command string, phrases []string) string {
	sorted := make([]string, len(phrases))
	copy(sorted, phrases)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	lower := strings.ToLower(command)
	for _, phrase := range sorted {
		if strings.HasPrefix(lower, strings.ToLower(phrase)) {
			return strings.TrimSpace(command[len(phrase):])
		}
	}
	return command
}
