package wake

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// phoneticJWThreshold is the minimum Jaro-Winkler similarity a phonetic
// candidate token must reach to count as a wake match.
const phoneticJWThreshold = 0.85

// PhoneticDetector matches wake phrases by Double Metaphone code overlap
// ranked with Jaro-Winkler similarity. It is stricter than the default
// [JaccardDetector]: sound-alike tokens ("oren", "aaron" for "orin") still
// wake the assistant while anagram-like tokens do not.
//
// The detector is read-only after construction and safe for concurrent use.
type PhoneticDetector struct {
	phrases []string
	// name is the bare assistant name, the token the fuzzy pass compares
	// against.
	name      string
	nameCodes map[string]struct{}
}

var _ Detector = (*PhoneticDetector)(nil)

// NewPhonetic creates a phonetic detector for the given wake phrases. The
// shortest phrase is taken as the bare assistant name.
func NewPhonetic(phrases []string) *PhoneticDetector {
	lowered := make([]string, len(phrases))
	name := ""
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
		if name == "" || len(lowered[i]) < len(name) {
			name = lowered[i]
		}
	}
	return &PhoneticDetector{
		phrases:   lowered,
		name:      name,
		nameCodes: metaphoneCodes(name),
	}
}

// Match reports whether text contains a wake phrase, either directly or as a
// sound-alike token. A token is a sound-alike when it shares a Double
// Metaphone code with the assistant's name and its Jaro-Winkler similarity
// to the name is at least 0.85.
func (d *PhoneticDetector) Match(text string) bool {
	text = strings.ToLower(text)

	for _, phrase := range d.phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}

	for _, token := range strings.Fields(text) {
		if len(token) <= 2 {
			continue
		}
		if !codesOverlap(d.nameCodes, metaphoneCodes(token)) {
			continue
		}
		if matchr.JaroWinkler(token, d.name, false) >= phoneticJWThreshold {
			return true
		}
	}
	return false
}

// metaphoneCodes returns the set of Double Metaphone codes for s. Empty
// codes are excluded.
func metaphoneCodes(s string) map[string]struct{} {
	codes := make(map[string]struct{}, 2)
	p, sec := matchr.DoubleMetaphone(s)
	if p != "" {
		codes[p] = struct{}{}
	}
	if sec != "" {
		codes[sec] = struct{}{}
	}
	return codes
}

// codesOverlap reports whether the two code sets share at least one code.
func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
