// Package catalog answers commands the assistant can resolve without a
// generative backend: a deterministic classifier over fixed trigger-word
// categories ([Catalog]) and a contextual last-resort responder that always
// produces a reply ([Responder]).
//
// Classification is substring-based on the lower-cased command and runs the
// categories in a fixed priority order. The first category whose trigger
// matches wins; later triggers in the same command are ignored.
package catalog

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/orin-ai/orin/internal/session"
)

// recapTurns is how many exchanges the history recap reads back.
const recapTurns = 3

// recapTruncate is the maximum number of characters of each recapped user
// question.
const recapTruncate = 30

var numberPattern = regexp.MustCompile(`\d+`)

// titleCase upper-cases the first letter of each space-separated word,
// mirroring how the assistant name is displayed in replies.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Option is a functional option for [New].
type Option func(*Catalog)

// WithClock overrides the time source used by the time and date categories.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// WithRand overrides the random source used for the well-being replies.
func WithRand(rng *rand.Rand) Option {
	return func(c *Catalog) { c.rng = rng }
}

// Catalog is the deterministic command classifier.
type Catalog struct {
	name    string // display form of the assistant name
	history *session.History
	actions Actions
	now     func() time.Time
	rng     *rand.Rand
}

// New creates a Catalog for the given assistant name. history backs the
// recap category and actions receives the desktop side effects.
func New(assistantName string, history *session.History, actions Actions, opts ...Option) *Catalog {
	c := &Catalog{
		name:    titleCase(strings.ToLower(assistantName)),
		history: history,
		actions: actions,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(c)
	}
	if c.actions == nil {
		c.actions = NopActions{}
	}
	return c
}

// Respond classifies command and returns the canned reply. The second
// return value is false when no category matched; the caller should then
// fall through to the contextual [Responder].
//
// Categories run in fixed priority order: time, date, web search,
// application launch, arithmetic, identity, well-being, help, history
// recap.
func (c *Catalog) Respond(command string) (string, bool) {
	command = strings.ToLower(strings.TrimSpace(command))

	switch {
	case containsAny(command, "time"):
		return fmt.Sprintf("It's currently %s", c.now().Format("03:04 PM")), true

	case containsAny(command, "date", "today"):
		return fmt.Sprintf("Today is %s", c.now().Format("Monday, January 02, 2006")), true

	case containsAny(command, "search", "google", "look up", "find information"):
		return c.webSearch(command), true

	case strings.Contains(command, "open"):
		return c.openApp(command), true

	case containsAny(command, "calculate", "math", "plus", "add", "minus", "subtract", "multiply", "divide"):
		return c.arithmetic(command), true

	case containsAny(command, "your name", "who are you", "what are you"):
		return fmt.Sprintf("I'm %s, your advanced AI voice assistant. I'm here to help with questions, tasks, and conversation!", c.name), true

	case containsAny(command, "how are you", "how do you feel"):
		return c.pick(
			"I'm doing wonderfully! Ready to help with whatever you need.",
			"I'm great, thank you for asking! How are you doing today?",
			"I'm functioning perfectly and excited to assist you!",
		), true

	case containsAny(command, "help", "what can you do"):
		return "I can help you with many things! I can tell you the time and date, search the web, " +
			"open applications, do math calculations, have conversations, and much more. " +
			"I also remember our conversation context, so feel free to ask follow-up questions. " +
			"What would you like to try?", true

	case containsAny(command, "what did we talk about", "conversation history"):
		return c.recap(), true
	}

	return "", false
}

// webSearch strips the search trigger words from the command and opens a
// web search for the remainder.
func (c *Catalog) webSearch(command string) string {
	query := command
	for _, term := range []string{"search for", "google", "look up", "find information about", "search"} {
		query = strings.TrimSpace(strings.ReplaceAll(query, term, ""))
	}
	if query == "" {
		return "What would you like me to search for?"
	}

	searchURL := "https://www.google.com/search?q=" + url.QueryEscape(query)
	if err := c.actions.OpenURL(searchURL); err != nil {
		slog.Warn("web search open failed", "query", query, "err", err)
	}
	return fmt.Sprintf("I've opened a web search for %s. Check your browser!", query)
}

// openApp launches the application named in the command.
func (c *Catalog) openApp(command string) string {
	switch {
	case strings.Contains(command, "notepad"), strings.Contains(command, "editor"):
		c.launch("editor")
		return "I've opened the text editor for you"
	case strings.Contains(command, "calculator"):
		c.launch("calculator")
		return "Calculator is now open"
	case containsAny(command, "browser", "chrome", "firefox", "edge"):
		if err := c.actions.OpenURL("https://www.google.com"); err != nil {
			slog.Warn("browser open failed", "err", err)
		}
		return "I've opened your default web browser"
	default:
		return "What application would you like me to open?"
	}
}

func (c *Catalog) launch(app string) {
	if err := c.actions.LaunchApp(app); err != nil {
		slog.Warn("application launch failed", "app", app, "err", err)
	}
}

// arithmetic evaluates a two-operand spoken math expression. The first two
// numbers in the command are the operands and the operators are tried in
// fixed priority order: add, subtract, multiply, divide.
func (c *Catalog) arithmetic(command string) string {
	numbers := numberPattern.FindAllString(command, -1)
	if len(numbers) >= 2 {
		a, errA := strconv.Atoi(numbers[0])
		b, errB := strconv.Atoi(numbers[1])
		if errA != nil || errB != nil {
			return "I couldn't understand that math problem. Can you try rephrasing it?"
		}

		switch {
		case containsAny(command, "plus", "add", "+"):
			return fmt.Sprintf("%d plus %d equals %d", a, b, a+b)
		case containsAny(command, "minus", "subtract", "-"):
			return fmt.Sprintf("%d minus %d equals %d", a, b, a-b)
		case containsAny(command, "multiply", "times", "*"):
			return fmt.Sprintf("%d times %d equals %d", a, b, a*b)
		case containsAny(command, "divide", "divided by", "/"):
			if b == 0 {
				return "I can't divide by zero - that would break the universe!"
			}
			return fmt.Sprintf("%d divided by %d equals %v", a, b, float64(a)/float64(b))
		}
	}
	return "I can help with basic math. Try saying something like 'calculate 15 plus 25'"
}

// recap summarises the last few exchanges.
func (c *Catalog) recap() string {
	recent := c.history.Recent(recapTurns)
	if len(recent) == 0 {
		return "We just started our conversation! This is our first exchange."
	}

	var b strings.Builder
	b.WriteString("Here's what we discussed recently: ")
	for _, turn := range recent {
		b.WriteString(fmt.Sprintf("You asked about %s... ", truncate(turn.User, recapTruncate)))
	}
	return b.String()
}

func (c *Catalog) pick(options ...string) string {
	return options[c.rng.Intn(len(options))]
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// containsAny reports whether s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
