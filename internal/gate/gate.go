// Package gate screens out conversational "meta" turns (approvals,
// questions aimed at the assistant, numbered picks) so skill matching
// is skipped entirely for messages that are not task requests.
package gate

import (
	"regexp"
	"strings"
)

// shortApprovals is the fixed vocabulary treated as meta when it is
// the entire message. Trailing content ("yes please") disqualifies.
var shortApprovals = map[string]struct{}{
	"yes": {}, "no": {}, "ok": {}, "sure": {},
	"nope": {}, "yep": {}, "yeah": {}, "nah": {},
}

// numberedRe matches a leading single digit followed by a dot,
// whitespace, or end of string: the "pick option N" pattern.
var numberedRe = regexp.MustCompile(`^[0-9]([.\s]|$)`)

// questionRe matches messages opening with a question word or phrase
// directed at the assistant.
var questionRe = regexp.MustCompile(`^(what|why|how|when|where|who|can you|could you|would you|do you)\b`)

// metaPhrases flag meta-discussion anywhere in the message.
var metaPhrases = []string{
	"what do you think",
	"your thoughts",
	"any ideas",
	"suggestions",
	"recommend",
}

// IsMeta reports whether the message is conversational scaffolding
// rather than a task request. Pure predicate, no side effects.
func IsMeta(message string) bool {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return true
	}

	lower := strings.ToLower(trimmed)

	if _, ok := shortApprovals[lower]; ok {
		return true
	}
	if numberedRe.MatchString(lower) {
		return true
	}
	if questionRe.MatchString(lower) {
		return true
	}
	for _, p := range metaPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
