// Package responder composes synthetic host replies. Generation is pure and
// total: for any input it returns disclosed, bounded, platform-safe text and
// never an error.
package responder

import (
	"fmt"
	"strings"
	"time"

	"github.com/tripmesh/concierge/internal/db/models"
)

// DefaultMaxLen bounds reply length when the caller does not set one
const DefaultMaxLen = 600

// Ellipsis marks truncated output
const Ellipsis = "…"

// Context carries everything reply generation is allowed to see
type Context struct {
	GuestMessage string
	HostName     string
	Style        models.ReplyStyle
	ListingTitle string
	CheckIn      time.Time
	CheckOut     time.Time
	MaxLen       int
}

// intent is the coarse classification of the guest's message
type intent string

const (
	intentArrival intent = "arrival"
	intentTiming  intent = "timing"
	intentFood    intent = "food"
	intentThanks  intent = "thanks"
	intentGeneric intent = "generic"
)

// intentKeywords maps each intent to the substrings that select it. First
// match wins in the order arrival, timing, food, thanks.
var intentKeywords = []struct {
	intent   intent
	keywords []string
}{
	{intentArrival, []string{"check in", "check-in", "checkin", "arrive", "arrival", "key", "access", "door code"}},
	{intentTiming, []string{"what time", "when", "late", "early", "schedule", "how long"}},
	{intentFood, []string{"restaurant", "food", "eat", "breakfast", "dinner", "coffee", "grocery"}},
	{intentThanks, []string{"thank", "thanks", "appreciate", "grateful"}},
}

// bannedPatterns are the hard content boundary: any candidate containing one
// of these is replaced with the fallback, never sent verbatim. Covers
// off-platform contact and payment solicitation plus claims of being human.
var bannedPatterns = []string{
	"whatsapp",
	"telegram",
	"signal me",
	"venmo",
	"paypal",
	"zelle",
	"cash app",
	"cashapp",
	"wire transfer",
	"off platform",
	"off-platform",
	"i am human",
	"i am a real person",
	"i'm a real person",
	"not a bot",
}

// styleBodies holds the reply body per style and intent
var styleBodies = map[models.ReplyStyle]map[intent]string{
	models.ReplyStyleConcise: {
		intentArrival: "Check-in details are in your booking confirmation. Self check-in is available from 3pm.",
		intentTiming:  "Check-in from 3pm, check-out by 11am. Let me know if you need flexibility.",
		intentFood:    "There are several good places to eat within walking distance; I keep a list in the house guide.",
		intentThanks:  "You're welcome. Enjoy your stay.",
		intentGeneric: "Noted — I'll follow up on %q shortly.",
	},
	models.ReplyStyleProfessional: {
		intentArrival: "Your check-in instructions are included in the booking confirmation. Access is available from 3:00 PM on your arrival day.",
		intentTiming:  "Check-in begins at 3:00 PM and check-out is at 11:00 AM. Please let me know if you require an adjustment.",
		intentFood:    "You will find a curated list of recommended restaurants in the house guide provided at the property.",
		intentThanks:  "You are most welcome. It is a pleasure to host you.",
		intentGeneric: "Thank you for your message regarding %q. I will respond with details shortly.",
	},
	models.ReplyStyleWarm: {
		intentArrival: "So glad you're almost here! Everything you need for check-in is in your confirmation, and the place is ready for you from 3pm.",
		intentTiming:  "Check-in opens at 3pm and check-out is 11am — but tell me what works for you and we'll see what we can do.",
		intentFood:    "You're going to eat well here! My favorite spots are all in the house guide — the bakery around the corner is a must.",
		intentThanks:  "It's truly my pleasure — I hope you have a wonderful stay!",
		intentGeneric: "Thanks so much for reaching out about %q — I'll get back to you with everything you need very soon.",
	},
	models.ReplyStyleFriendly: {
		intentArrival: "Hey! Check-in info is in your confirmation — you can get in any time after 3pm.",
		intentTiming:  "Check-in is 3pm, check-out 11am. Give me a shout if you need to tweak that.",
		intentFood:    "Lots of great food nearby! Check the house guide — the taco place down the street is a favorite.",
		intentThanks:  "Anytime! Have an awesome stay.",
		intentGeneric: "Hey, thanks for the message about %q — I'll get back to you soon!",
	},
}

// fallbackBodies are the style-aware safe replies used when the guardrail
// rejects a candidate
var fallbackBodies = map[models.ReplyStyle]string{
	models.ReplyStyleConcise:      "Thanks for your message. I'll reply with details soon. Please keep all communication and payment on the platform.",
	models.ReplyStyleProfessional: "Thank you for your message. I will follow up with details shortly. Kindly keep all communication and payments within the platform.",
	models.ReplyStyleWarm:         "Thanks so much for reaching out! I'll get back to you with details very soon. Please keep everything here on the platform so we can both stay protected.",
	models.ReplyStyleFriendly:     "Thanks for the message! I'll get back to you soon — and let's keep everything here on the platform.",
}

// GenerateReply produces a synthetic reply for the given context. The result
// always starts with the automation disclosure, always ends with the booking
// date reference, never contains a banned pattern, and never exceeds the
// configured maximum length.
func GenerateReply(rc Context) string {
	candidate := buildCandidate(rc)
	if !safe(candidate) {
		candidate = fallback(rc)
	}
	return truncate(candidate, maxLen(rc))
}

// buildCandidate assembles the disclosed, styled reply before the guardrail
func buildCandidate(rc Context) string {
	bodies, ok := styleBodies[rc.Style]
	if !ok {
		bodies = styleBodies[models.ReplyStyleFriendly]
	}
	body := bodies[classifyIntent(rc.GuestMessage)]
	if strings.Contains(body, "%q") {
		body = fmt.Sprintf(body, snippet(rc.GuestMessage))
	}
	return disclosure(rc.HostName) + body + stayReference(rc)
}

// fallback returns the safe reply for the context's style, still disclosed
// and still carrying the date reference.
func fallback(rc Context) string {
	body, ok := fallbackBodies[rc.Style]
	if !ok {
		body = fallbackBodies[models.ReplyStyleFriendly]
	}
	return disclosure(rc.HostName) + body + stayReference(rc)
}

// disclosure is the automation prefix present on every code path
func disclosure(hostName string) string {
	if hostName == "" {
		hostName = "your host"
	}
	return fmt.Sprintf("[Automated reply on behalf of %s] ", hostName)
}

// stayReference appends the booking date reference
func stayReference(rc Context) string {
	if rc.CheckIn.IsZero() || rc.CheckOut.IsZero() {
		return ""
	}
	return fmt.Sprintf(" (Your stay: %s – %s.)",
		rc.CheckIn.Format("Jan 2"), rc.CheckOut.Format("Jan 2, 2006"))
}

// classifyIntent picks the reply intent from the guest's message
func classifyIntent(message string) intent {
	lower := strings.ToLower(message)
	for _, group := range intentKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.intent
			}
		}
	}
	return intentGeneric
}

// safe reports whether a candidate passes the content guardrail
func safe(candidate string) bool {
	lower := strings.ToLower(candidate)
	for _, pattern := range bannedPatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	return true
}

// snippet returns a short quotable excerpt of the guest message
func snippet(message string) string {
	const limit = 60
	message = strings.TrimSpace(message)
	runes := []rune(message)
	if len(runes) <= limit {
		return message
	}
	return string(runes[:limit]) + Ellipsis
}

func maxLen(rc Context) int {
	if rc.MaxLen > 0 {
		return rc.MaxLen
	}
	return DefaultMaxLen
}

// truncate bounds the reply length, replacing overflow with the ellipsis
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit < 1 {
		return Ellipsis
	}
	return string(runes[:limit-1]) + Ellipsis
}
