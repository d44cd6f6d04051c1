package catalog

import (
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/orin-ai/orin/internal/session"
)

// recordingActions captures side effects for assertions.
type recordingActions struct {
	mu       sync.Mutex
	urls     []string
	launched []string
}

func (a *recordingActions) OpenURL(u string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.urls = append(a.urls, u)
	return nil
}

func (a *recordingActions) LaunchApp(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.launched = append(a.launched, name)
	return nil
}

func newTestCatalog(t *testing.T) (*Catalog, *session.History, *recordingActions) {
	t.Helper()
	hist := session.NewHistory(20)
	acts := &recordingActions{}
	clock := func() time.Time {
		return time.Date(2025, time.March, 7, 15, 4, 0, 0, time.UTC)
	}
	c := New("orin", hist, acts,
		WithClock(clock),
		WithRand(rand.New(rand.NewSource(1))),
	)
	return c, hist, acts
}

func TestCatalog_TimeAndDate(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestCatalog(t)

	got, ok := c.Respond("what time is it")
	if !ok || got != "It's currently 03:04 PM" {
		t.Errorf("time reply = (%q, %v)", got, ok)
	}

	got, ok = c.Respond("what is the date today")
	if !ok || got != "Today is Friday, March 07, 2025" {
		t.Errorf("date reply = (%q, %v)", got, ok)
	}
}

func TestCatalog_Arithmetic(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestCatalog(t)

	tests := []struct {
		command, want string
	}{
		{"calculate 15 plus 25", "15 plus 25 equals 40"},
		{"what is 10 minus 4", "10 minus 4 equals 6"},
		{"multiply 6 by 7", "6 times 7 equals 42"},
		{"calculate 10 divided by 4", "10 divided by 4 equals 2.5"},
		{"calculate 10 divided by 2", "10 divided by 2 equals 5"},
		{"calculate 10 divided by 0", "I can't divide by zero - that would break the universe!"},
		{"calculate 15", "I can help with basic math. Try saying something like 'calculate 15 plus 25'"},
		{"do some math for me", "I can help with basic math. Try saying something like 'calculate 15 plus 25'"},
	}
	for _, tt := range tests {
		got, ok := c.Respond(tt.command)
		if !ok || got != tt.want {
			t.Errorf("Respond(%q) = (%q, %v), want %q", tt.command, got, ok, tt.want)
		}
	}
}

func TestCatalog_OperatorPriority(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestCatalog(t)

	// "add" outranks "divide" when both appear.
	got, _ := c.Respond("calculate 8 plus 2 then divide")
	if got != "8 plus 2 equals 10" {
		t.Errorf("mixed-operator reply = %q, want addition to win", got)
	}
}

func TestCatalog_WebSearch(t *testing.T) {
	t.Parallel()
	c, _, acts := newTestCatalog(t)

	got, ok := c.Respond("search for golang generics")
	if !ok || got != "I've opened a web search for golang generics. Check your browser!" {
		t.Errorf("search reply = (%q, %v)", got, ok)
	}
	if len(acts.urls) != 1 || !strings.Contains(acts.urls[0], "golang+generics") {
		t.Errorf("opened urls = %v", acts.urls)
	}

	got, ok = c.Respond("search")
	if !ok || got != "What would you like me to search for?" {
		t.Errorf("empty search reply = (%q, %v)", got, ok)
	}
}

func TestCatalog_OpenApp(t *testing.T) {
	t.Parallel()
	c, _, acts := newTestCatalog(t)

	got, ok := c.Respond("open the calculator")
	if !ok || got != "Calculator is now open" {
		t.Errorf("calculator reply = (%q, %v)", got, ok)
	}

	got, ok = c.Respond("please open notepad")
	if !ok || got != "I've opened the text editor for you" {
		t.Errorf("editor reply = (%q, %v)", got, ok)
	}

	got, ok = c.Respond("open the browser")
	if !ok || got != "I've opened your default web browser" {
		t.Errorf("browser reply = (%q, %v)", got, ok)
	}

	got, ok = c.Respond("open something")
	if !ok || got != "What application would you like me to open?" {
		t.Errorf("unknown app reply = (%q, %v)", got, ok)
	}

	if len(acts.launched) != 2 {
		t.Errorf("launched = %v, want editor and calculator", acts.launched)
	}
}

func TestCatalog_Identity(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestCatalog(t)

	got, ok := c.Respond("who are you exactly")
	if !ok || !strings.HasPrefix(got, "I'm Orin, your advanced AI voice assistant") {
		t.Errorf("identity reply = (%q, %v)", got, ok)
	}
}

func TestCatalog_Recap(t *testing.T) {
	t.Parallel()
	c, hist, _ := newTestCatalog(t)

	got, ok := c.Respond("what did we talk about")
	if !ok || got != "We just started our conversation! This is our first exchange." {
		t.Errorf("empty recap = (%q, %v)", got, ok)
	}

	hist.Append("a question that is definitely longer than thirty characters", "answer")
	hist.Append("short one", "answer")

	got, _ = c.Respond("conversation history")
	if !strings.Contains(got, "You asked about a question that is definitely ...") {
		t.Errorf("recap should truncate to 30 chars: %q", got)
	}
	if !strings.Contains(got, "You asked about short one...") {
		t.Errorf("recap missing recent turn: %q", got)
	}
}

func TestCatalog_UnknownCommand(t *testing.T) {
	t.Parallel()
	c, _, _ := newTestCatalog(t)

	if got, ok := c.Respond("tell me a story"); ok {
		t.Errorf("unknown command should not classify, got %q", got)
	}
}

func TestResponder_Buckets(t *testing.T) {
	t.Parallel()
	r := NewResponder("orin", rand.New(rand.NewSource(1)))

	tests := []struct {
		name    string
		command string
		marker  string
	}{
		{"positive", "thanks a lot", "help"},
		{"negative", "there is a problem", ""},
		{"about assistant", "what are you capable of doing for me, you there", ""},
		{"general question", "when does the shop close", ""},
		{"neutral", "nice weather", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Respond(tt.command)
			if got == "" {
				t.Fatalf("Respond(%q) returned empty reply", tt.command)
			}
		})
	}
}

func TestResponder_PositiveOutranksQuestion(t *testing.T) {
	t.Parallel()
	r := NewResponder("orin", rand.New(rand.NewSource(1)))

	// Contains both "thanks" (positive) and "what" (question) — positive
	// bucket wins.
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[r.Respond("thanks, what a day")] = true
	}
	for reply := range seen {
		if strings.Contains(reply, "question") {
			t.Errorf("question-bucket reply for positive command: %q", reply)
		}
	}
}

func TestResponder_NeverEmpty(t *testing.T) {
	t.Parallel()
	r := NewResponder("orin", rand.New(rand.NewSource(9)))

	for _, command := range []string{"", "zzz", "what", "sorry thanks", "how are things with you"} {
		if r.Respond(command) == "" {
			t.Errorf("Respond(%q) returned empty reply", command)
		}
	}
}
