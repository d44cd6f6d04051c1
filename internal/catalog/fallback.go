package catalog

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

var (
	questionWords = []string{"what", "how", "when", "where", "why", "who", "can you", "do you", "are you", "will you"}
	positiveWords = []string{"thanks", "thank you", "great", "awesome", "love", "perfect", "excellent"}
	negativeWords = []string{"sorry", "problem", "issue", "wrong", "error", "bad", "terrible"}
)

// Responder produces a contextual reply for commands no catalog category
// recognised. It buckets the command by sentiment and question shape and
// picks a random reply from the matching bucket, so the assistant never
// answers a command with silence.
type Responder struct {
	name string
	rng  *rand.Rand
}

// NewResponder creates a Responder for the given assistant name. A nil rng
// falls back to a time-seeded source.
func NewResponder(assistantName string, rng *rand.Rand) *Responder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Responder{
		name: titleCase(strings.ToLower(assistantName)),
		rng:  rng,
	}
}

// Respond returns a non-empty contextual reply for command. Bucket priority
// is fixed: positive sentiment, negative sentiment, question about the
// assistant, general question, then neutral conversation.
func (r *Responder) Respond(command string) string {
	lower := strings.ToLower(command)

	isQuestion := containsAny(lower, questionWords...)
	hasPositive := containsAny(lower, positiveWords...)
	hasNegative := containsAny(lower, negativeWords...)

	var replies []string
	switch {
	case hasPositive:
		replies = []string{
			"I'm so glad I could help! Is there anything else you need?",
			"You're very welcome! I'm here whenever you need me.",
			"That makes me happy! How else can I assist you today?",
		}
	case hasNegative:
		replies = []string{
			"I apologize for any confusion. Let me try to help you better. What specifically can I do?",
			"I'm sorry about that. Can you tell me more about what you need?",
			"Let me see how I can better assist you. What would you like me to help with?",
		}
	case isQuestion && strings.Contains(lower, "you"):
		replies = []string{
			fmt.Sprintf("I'm %s, your AI voice assistant. I'm here to help with various tasks and questions.", r.name),
			"I'm an AI assistant designed to help you with information, tasks, and conversations. What would you like to know?",
			fmt.Sprintf("I'm %s! I can help with questions, tasks, and just chatting. How can I assist you?", r.name),
		}
	case isQuestion:
		replies = []string{
			"That's an interesting question! I'd need more specific information to give you the best answer.",
			"I'm not sure I have enough details to answer that fully. Could you tell me more?",
			"That's a great question! Can you provide a bit more context so I can help better?",
		}
	default:
		replies = []string{
			"I understand what you're saying. How can I help you with that?",
			"That sounds interesting! What would you like me to do about it?",
			"I hear you. Is there something specific you'd like my help with?",
			"Tell me more about that. What can I do to assist you?",
		}
	}
	return replies[r.rng.Intn(len(replies))]
}
