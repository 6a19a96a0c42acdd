package responder

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmesh/concierge/internal/db/models"
)

func testContext(guestMessage string) Context {
	return Context{
		GuestMessage: guestMessage,
		HostName:     "Dana",
		Style:        models.ReplyStyleFriendly,
		ListingTitle: "Seaside Cottage",
		CheckIn:      time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC),
		CheckOut:     time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerateReplyAlwaysDiscloses(t *testing.T) {
	messages := []string{
		"what time is check-in?",
		"thanks so much!",
		"pay me on venmo",
		"",
		strings.Repeat("a", 5000),
	}
	for _, msg := range messages {
		reply := GenerateReply(testContext(msg))
		assert.True(t, strings.HasPrefix(reply, "[Automated reply on behalf of Dana] "),
			"reply for %q missing disclosure: %q", msg, reply)
	}
}

func TestGenerateReplyDisclosureWithoutHostName(t *testing.T) {
	rc := testContext("hello")
	rc.HostName = ""
	reply := GenerateReply(rc)
	assert.True(t, strings.HasPrefix(reply, "[Automated reply on behalf of your host] "))
}

func TestGenerateReplyIncludesStayDates(t *testing.T) {
	reply := GenerateReply(testContext("thanks!"))
	assert.Contains(t, reply, "Jun 12")
	assert.Contains(t, reply, "Jun 15, 2026")
}

func TestGenerateReplyOmitsDatesWhenUnknown(t *testing.T) {
	rc := testContext("thanks!")
	rc.CheckIn = time.Time{}
	reply := GenerateReply(rc)
	assert.NotContains(t, reply, "Your stay")
}

func TestGenerateReplyIntentSelection(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"arrival", "how do I get the door code?", "after 3pm"},
		{"timing", "what time should we plan for?", "Give me a shout"},
		{"food", "any good restaurant nearby?", "taco place"},
		{"thanks", "thank you for everything", "awesome stay"},
		{"generic", "is there parking on the street?", "thanks for the message about"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reply := GenerateReply(testContext(tc.message))
			assert.Contains(t, reply, tc.want)
		})
	}
}

func TestGenerateReplyArrivalWinsOverTiming(t *testing.T) {
	// "what time is check-in" matches both groups; arrival is checked first.
	reply := GenerateReply(testContext("what time is check-in?"))
	assert.Contains(t, reply, "Check-in info is in your confirmation")
}

func TestGenerateReplyStyleVariants(t *testing.T) {
	for _, style := range []models.ReplyStyle{
		models.ReplyStyleConcise,
		models.ReplyStyleProfessional,
		models.ReplyStyleWarm,
		models.ReplyStyleFriendly,
	} {
		rc := testContext("thanks!")
		rc.Style = style
		reply := GenerateReply(rc)
		require.NotEmpty(t, reply)
		assert.True(t, strings.HasPrefix(reply, "[Automated reply on behalf of Dana] "))
	}

	// Unknown styles fall back to friendly instead of producing an empty body.
	rc := testContext("thanks!")
	rc.Style = models.ReplyStyle("sarcastic")
	assert.Contains(t, GenerateReply(rc), "awesome stay")
}

func TestGenerateReplyGuardrailBlocksEchoedGuestContent(t *testing.T) {
	// A generic-intent reply echoes a snippet of the guest message, so
	// banned guest content must divert to the fallback.
	for _, msg := range []string{
		"can you Venmo me the deposit back?",
		"message me on WhatsApp instead",
		"let's settle this off platform",
	} {
		reply := GenerateReply(testContext(msg))
		lower := strings.ToLower(reply)
		assert.NotContains(t, lower, "venmo", "banned text leaked for %q", msg)
		assert.NotContains(t, lower, "whatsapp", "banned text leaked for %q", msg)
		assert.NotContains(t, lower, "off platform", "banned text leaked for %q", msg)
		assert.Contains(t, lower, "keep everything here on the platform")
		assert.True(t, strings.HasPrefix(reply, "[Automated reply on behalf of Dana] "))
	}
}

func TestGenerateReplySafeGuestContentPassesThrough(t *testing.T) {
	reply := GenerateReply(testContext("is the pool open at night?"))
	assert.Contains(t, reply, `"is the pool open at night?"`)
}

func TestGenerateReplyTruncates(t *testing.T) {
	rc := testContext("is there parking near the venue for our rental car?")
	rc.MaxLen = 80
	reply := GenerateReply(rc)
	assert.LessOrEqual(t, len([]rune(reply)), 80)
	assert.True(t, strings.HasSuffix(reply, Ellipsis))
}

func TestGenerateReplyDefaultLengthBound(t *testing.T) {
	rc := testContext(strings.Repeat("parking? ", 200))
	reply := GenerateReply(rc)
	assert.LessOrEqual(t, len([]rune(reply)), DefaultMaxLen)
}

func TestGenerateReplyIsDeterministic(t *testing.T) {
	rc := testContext("any dinner recommendations?")
	first := GenerateReply(rc)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, GenerateReply(rc))
	}
}

func TestClassifyIntent(t *testing.T) {
	assert.Equal(t, intentArrival, classifyIntent("When can we ARRIVE?"))
	assert.Equal(t, intentTiming, classifyIntent("how long is the drive"))
	assert.Equal(t, intentFood, classifyIntent("best coffee around?"))
	assert.Equal(t, intentThanks, classifyIntent("much appreciated"))
	assert.Equal(t, intentGeneric, classifyIntent("do you allow dogs"))
}

func TestSnippetBoundsLongMessages(t *testing.T) {
	long := strings.Repeat("x", 200)
	got := snippet(long)
	assert.Equal(t, 61, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, Ellipsis))

	assert.Equal(t, "short", snippet("  short  "))
}
