package reply

import (
	"math/rand/v2"
	"strings"
)

// Intent is a conversational shortcut recognized before any pipeline work.
type Intent string

const (
	IntentNone      Intent = ""
	IntentGreeting  Intent = "greeting"
	IntentThanks    Intent = "thanks"
	IntentFarewell  Intent = "farewell"
	IntentHowAreYou Intent = "howareyou"
	IntentShowMore  Intent = "showmore"
	IntentFeedback  Intent = "feedback"
)

// DetectIntent classifies text. Checks run in a fixed order so "thanks, bye"
// is thanks.
func DetectIntent(text string) Intent {
	s := strings.ToLower(strings.TrimSpace(text))
	switch {
	case s == "":
		return IntentNone
	case s == "hi" || s == "hello" || s == "hey":
		return IntentGreeting
	case strings.Contains(s, "thank"):
		return IntentThanks
	case strings.Contains(s, "bye"):
		return IntentFarewell
	case strings.Contains(s, "how are you"):
		return IntentHowAreYou
	case s == "more" || strings.Contains(s, "show more") || strings.Contains(s, "more plans"):
		return IntentShowMore
	case strings.Contains(s, "feedback") || strings.Contains(s, "helpful") ||
		strings.Contains(s, "👍") || strings.Contains(s, "👎"):
		return IntentFeedback
	}
	return IntentNone
}

// IsCanned reports whether the intent is answered from a phrase table.
// Feedback is only tagged; the text still runs through the pipeline since it
// often carries a plan query ("which plan is most helpful for netflix").
func (i Intent) IsCanned() bool {
	switch i {
	case IntentGreeting, IntentThanks, IntentFarewell, IntentHowAreYou:
		return true
	}
	return false
}

// DefaultPhrases holds the built-in canned replies.
var DefaultPhrases = map[Intent][]string{
	IntentGreeting: {
		"Hello! 😊 How can I help you find the right mobile plan today?",
		"Hi there! Ask me for any prepaid or postpaid plan details.",
	},
	IntentThanks: {
		"You're welcome! Let me know if you want to explore more plans.",
		"Glad to help! Ask anytime. 👍",
	},
	IntentFarewell: {
		"Goodbye! Hope you get the perfect plan.",
		"Take care! Come back if you need more help later.",
	},
	IntentHowAreYou: {
		"I'm doing great, thanks for asking! Looking for a new recharge plan?",
		"All good here! Tell me your budget and I'll find a plan for you.",
	},
}

// Canned picks replies from fixed phrase tables.
type Canned struct {
	phrases map[Intent][]string
	intn    func(n int) int
}

// NewCanned builds the phrase tables. overrides replaces the built-in list
// for any intent it names; intn picks an index in [0, n) and defaults to
// math/rand.
func NewCanned(overrides map[string][]string, intn func(n int) int) *Canned {
	phrases := make(map[Intent][]string, len(DefaultPhrases))
	for k, v := range DefaultPhrases {
		phrases[k] = v
	}
	for k, v := range overrides {
		if len(v) > 0 {
			phrases[Intent(k)] = v
		}
	}
	if intn == nil {
		intn = rand.IntN
	}
	return &Canned{phrases: phrases, intn: intn}
}

// Reply returns a canned phrase, or false when the intent has none.
func (c *Canned) Reply(intent Intent) (string, bool) {
	list := c.phrases[intent]
	if len(list) == 0 {
		return "", false
	}
	return list[c.intn(len(list))], true
}
