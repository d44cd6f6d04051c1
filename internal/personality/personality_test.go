package personality

import (
	"math/rand"
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"friendly", ModeFriendly, true},
		{"Professional", ModeProfessional, true},
		{"  MAFIA  ", ModeMafia, true},
		{"gangster", ModeGangster, true},
		{"humorous", ModeHumorous, true},
		{"sweet", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseMode(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMode_Speech(t *testing.T) {
	t.Parallel()

	if p := ModeFriendly.Speech(); p.RateWPM != 160 || p.Volume != 0.80 {
		t.Errorf("friendly speech = %+v, want 160 wpm / 0.80", p)
	}
	if p := ModeMafia.Speech(); p.RateWPM >= ModeFriendly.Speech().RateWPM {
		t.Errorf("mafia mode should speak slower than friendly, got %d wpm", p.RateWPM)
	}
	// Unknown modes still yield usable parameters.
	if p := Mode("bogus").Speech(); p.RateWPM <= 0 || p.Volume <= 0 {
		t.Errorf("unknown mode speech = %+v, want positive defaults", p)
	}
}

func TestProfessionalize_WholeWordOnly(t *testing.T) {
	t.Parallel()

	got := Professionalize("yeah thanks bro")
	want := "yes, my friend I appreciate it son"
	if got != want {
		t.Errorf("Professionalize(%q) = %q, want %q", "yeah thanks bro", got, want)
	}

	// Substrings of longer words must be untouched.
	if got := Professionalize("the broken broker"); got != "the broken broker" {
		t.Errorf("substring replaced: %q", got)
	}
	if got := Professionalize("that is okay-adjacent"); strings.Contains(got, "okay") {
		// "okay" is its own word here thanks to the hyphen boundary.
		t.Errorf("hyphenated word not replaced: %q", got)
	}
}

func TestProfessionalize_CaseInsensitive(t *testing.T) {
	t.Parallel()

	got := Professionalize("YEAH, Thanks!")
	if !strings.Contains(got, "yes, my friend") || !strings.Contains(got, "I appreciate it") {
		t.Errorf("case-insensitive replacement failed: %q", got)
	}
}

func TestProfessionalize_MultiWordPhrase(t *testing.T) {
	t.Parallel()

	if got := Professionalize("listen old man"); !strings.Contains(got, "respectable elder") {
		t.Errorf("multi-word phrase not replaced: %q", got)
	}
}

func TestRewriter_ProfessionalAlwaysApplies(t *testing.T) {
	t.Parallel()

	r := NewRewriter(rand.New(rand.NewSource(1)))
	for i := 0; i < 20; i++ {
		if got := r.Apply(ModeProfessional, "yeah ok"); got != "yes, my friend very well" {
			t.Fatalf("Apply(professional) = %q, want deterministic rewrite", got)
		}
	}
}

func TestRewriter_HumorousIsProbabilistic(t *testing.T) {
	t.Parallel()

	r := NewRewriter(rand.New(rand.NewSource(42)))
	in := "I don't know the answer"

	changed := 0
	const n = 2000
	for i := 0; i < n; i++ {
		if r.Apply(ModeHumorous, in) != in {
			changed++
		}
	}

	// Expect roughly 10% of replies to be embellished.
	if changed < n/20 || changed > n/5 {
		t.Errorf("humor applied %d/%d times, want ~%d", changed, n, n/10)
	}
}

func TestRewriter_FriendlyPassThrough(t *testing.T) {
	t.Parallel()

	r := NewRewriter(rand.New(rand.NewSource(7)))
	in := "yeah I don't know"
	if got := r.Apply(ModeFriendly, in); got != in {
		t.Errorf("friendly mode modified text: %q", got)
	}
}

func TestAddHumor(t *testing.T) {
	t.Parallel()

	got := addHumor("Well, I'm sorry about that")
	if !strings.Contains(got, "my bad, as the humans say") {
		t.Errorf("addHumor = %q, want embellished apology", got)
	}

	// No trigger phrase present.
	if got := addHumor("all good here"); got != "all good here" {
		t.Errorf("addHumor modified trigger-free text: %q", got)
	}
}
