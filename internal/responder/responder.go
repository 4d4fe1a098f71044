// Package responder selects canned replies for user utterances using an
// ordered keyword rule table. It performs no I/O and holds no mutable state.
package responder

import "strings"

// Kind identifies which stage of the rule evaluation produced a reply.
type Kind string

const (
	KindEmpty    Kind = "empty"
	KindGreeting Kind = "greeting"
	KindHelp     Kind = "help"
	KindTopic    Kind = "topic"
	KindBrand    Kind = "brand"
	KindFallback Kind = "fallback"
)

// Match is the outcome of classifying one utterance.
type Match struct {
	Kind  Kind
	Topic Topic // set only when Kind == KindTopic
	Reply string
}

// Responder is the zero-size handle the chat use case depends on.
type Responder struct{}

// New returns a Responder backed by the built-in rule table.
func New() Responder { return Responder{} }

// Respond returns the reply for raw. It never returns an empty string.
func (Responder) Respond(raw string) string {
	return Respond(raw)
}

// Respond returns the reply for raw. It never returns an empty string.
func Respond(raw string) string {
	return Classify(raw).Reply
}

// Classify evaluates raw against the rule table, first match wins.
func Classify(raw string) Match {
	text := normalize(raw)
	if text == "" {
		return Match{Kind: KindEmpty, Reply: EmptyPrompt}
	}
	if matchesPrefix(text, greetingKeywords) {
		return Match{Kind: KindGreeting, Reply: GreetingReply}
	}
	if matchesPrefix(text, helpKeywords) {
		return Match{Kind: KindHelp, Reply: HelpText}
	}
	for _, r := range topicRules {
		if containsAny(text, r.keywords) {
			return Match{Kind: KindTopic, Topic: r.topic, Reply: snippets[r.topic]}
		}
	}
	if containsAny(text, brandKeywords) {
		return Match{Kind: KindBrand, Reply: BrandReply}
	}
	return Match{Kind: KindFallback, Reply: FallbackReply}
}

// normalize trims surrounding whitespace and lowercases ASCII letters only.
func normalize(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, strings.TrimSpace(raw))
}

func matchesPrefix(text string, keywords []string) bool {
	for _, k := range keywords {
		if text == k || strings.HasPrefix(text, k) {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
