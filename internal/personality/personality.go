// Package personality defines the assistant's selectable personality modes
// and the speak-time text transforms tied to them.
//
// A [Mode] carries two things: a tone line injected into the generative
// system prompt, and the speech rate/volume the synthesiser should use while
// that mode is active. The [Rewriter] applies the per-mode text transforms
// immediately before synthesis.
package personality

import (
	"math/rand"
	"regexp"
	"strings"
)

// Mode is a named assistant personality.
type Mode string

const (
	ModeFriendly     Mode = "friendly"
	ModeProfessional Mode = "professional"
	ModeMafia        Mode = "mafia"
	ModeGangster     Mode = "gangster"
	ModeHumorous     Mode = "humorous"
)

// IsValid reports whether m is a recognised personality mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeFriendly, ModeProfessional, ModeMafia, ModeGangster, ModeHumorous:
		return true
	}
	return false
}

// ParseMode returns the Mode named by s (case-insensitive), or false when s
// names no known mode.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m.IsValid() {
		return m, true
	}
	return "", false
}

// Tone returns the tone line injected into the generative system prompt for
// this mode. Unknown modes fall back to the friendly tone.
func (m Mode) Tone() string {
	switch m {
	case ModeMafia:
		return "Tone: slow, deliberate, commanding. Vocabulary: polished; respectful but expects loyalty; uses 'my friend'."
	case ModeGangster:
		return "Tone: confident, street-smart, but classy."
	case ModeHumorous:
		return "Tone: light, witty, friendly."
	case ModeProfessional:
		return "Tone: crisp, formal, concise."
	default:
		return "Tone: warm, helpful, concise."
	}
}

// SpeechParams are the synthesiser settings derived from a personality mode.
type SpeechParams struct {
	// RateWPM is the speaking rate in words per minute.
	RateWPM int

	// Volume is the output gain in [0.0, 1.0].
	Volume float64
}

// Speech returns the synthesiser settings for this mode. The settings are
// re-derived on every mode switch and handed to the speaker.
func (m Mode) Speech() SpeechParams {
	switch m {
	case ModeFriendly:
		return SpeechParams{RateWPM: 160, Volume: 0.80}
	case ModeMafia:
		return SpeechParams{RateWPM: 140, Volume: 0.90}
	case ModeGangster:
		return SpeechParams{RateWPM: 170, Volume: 0.85}
	case ModeProfessional:
		return SpeechParams{RateWPM: 150, Volume: 0.85}
	default:
		return SpeechParams{RateWPM: 175, Volume: 0.85}
	}
}

// humorProbability is the chance a humorous-mode reply receives a
// substitution before synthesis.
const humorProbability = 0.1

// humorSwaps maps trigger phrases to their embellished forms. Only the first
// matching trigger is applied.
var humorSwaps = []struct{ from, to string }{
	{"I don't know", "I don't know, but I'm pretty sure Google does!"},
	{"I'm sorry", "I'm sorry - my bad, as the humans say!"},
	{"That's interesting", "That's interesting - more interesting than watching paint dry, anyway!"},
}

// professionalSwaps maps casual words to their formal replacements. Matching
// is whole-word and case-insensitive; replacement order follows this list.
var professionalSwaps = []struct{ casual, formal string }{
	{"yeah", "yes, my friend"},
	{"yep", "indeed"},
	{"nope", "no"},
	{"gonna", "going to"},
	{"wanna", "wish to"},
	{"buddy", "my friend"},
	{"bro", "son"},
	{"dude", "gentleman"},
	{"ok", "very well"},
	{"okay", "very well"},
	{"hi", "greetings"},
	{"hello", "good day"},
	{"bye", "farewell"},
	{"later", "we'll speak again"},
	{"thanks", "I appreciate it"},
	{"thank you", "my gratitude"},
	{"sorry", "my apologies"},
	{"cool", "acceptable"},
	{"awesome", "commendable"},
	{"sure", "certainly"},
	{"nah", "no"},
	{"yo", "listen"},
	{"kid", "son"},
	{"old man", "respectable elder"},
	{"guys", "gentlemen"},
	{"girls", "ladies"},
	{"homie", "friend of the family"},
}

// professionalPatterns holds the compiled whole-word patterns, index-aligned
// with professionalSwaps.
var professionalPatterns = compileProfessionalPatterns()

func compileProfessionalPatterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(professionalSwaps))
	for i, swap := range professionalSwaps {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(swap.casual) + `\b`)
	}
	return out
}

// Rewriter applies the per-mode speak-time text transforms. The humorous
// transform is probabilistic, so a Rewriter carries its own random source to
// keep tests deterministic.
type Rewriter struct {
	rng *rand.Rand
}

// NewRewriter creates a Rewriter using rng for the humor roll. A nil rng
// falls back to a time-seeded source.
func NewRewriter(rng *rand.Rand) *Rewriter {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Rewriter{rng: rng}
}

// Apply transforms text according to mode. Friendly, mafia, and gangster
// modes pass text through unchanged.
func (r *Rewriter) Apply(mode Mode, text string) string {
	switch mode {
	case ModeHumorous:
		if r.rng.Float64() < humorProbability {
			return addHumor(text)
		}
		return text
	case ModeProfessional:
		return Professionalize(text)
	default:
		return text
	}
}

// addHumor rewrites the first trigger phrase found in text with its
// embellished form. The containment check is case-insensitive but the
// rewrite targets the trigger's canonical casing, so an off-case occurrence
// passes through unchanged.
func addHumor(text string) string {
	lower := strings.ToLower(text)
	for _, swap := range humorSwaps {
		if strings.Contains(lower, strings.ToLower(swap.from)) {
			return strings.ReplaceAll(text, swap.from, swap.to)
		}
	}
	return text
}

// Professionalize applies the casual → formal word table to text. Every
// whole-word, case-insensitive occurrence is replaced; substrings of longer
// words ("broken", "okay-ish") are left alone by the word-boundary anchors.
func Professionalize(text string) string {
	for i, swap := range professionalSwaps {
		text = professionalPatterns[i].ReplaceAllString(text, swap.formal)
	}
	return text
}
