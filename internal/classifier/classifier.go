// Package classifier decides whether a user-agent string belongs to a bot
// and, if so, which crawler identity it runs under.
package classifier

import (
	"regexp"
	"strings"

	"github.com/graylag/scutter/internal/model"
)

// Identities assigned outside the rule table.
const (
	EmptyUserAgent    = "Empty User Agent"
	UnknownNonBrowser = "Unknown Non-Browser"
)

// Rule pairs one lower-case pattern with the identity it assigns.
// Rules are data, not code: the table can be extended without touching
// the matching algorithm, but order is load-bearing: a specific pattern
// must sit above any generic substring that would also match it.
type Rule struct {
	Pattern  *regexp.Regexp
	Identity string
}

// browserIndicators mark strings that at least claim to be a browser.
var browserIndicators = []string{
	"mozilla", "chrome", "safari", "firefox", "edge", "opera", "brave",
}

// Classifier evaluates the rule table top-to-bottom, first match wins.
// Construct once and reuse: every pattern is compiled exactly once,
// which matters at tens of millions of calls per run.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier over the given ordered rule table.
func New(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Default returns a Classifier loaded with the built-in rule table.
func Default() *Classifier {
	return New(DefaultRules())
}

// Classify inspects a user-agent string. Pure function of its input.
func (c *Classifier) Classify(userAgent string) model.Classification {
	if userAgent == "" || userAgent == "-" {
		return model.Classification{IsBot: true, Identity: EmptyUserAgent}
	}

	ua := strings.ToLower(userAgent)

	for _, r := range c.rules {
		if r.Pattern.MatchString(ua) {
			return model.Classification{IsBot: true, Identity: r.Identity}
		}
	}

	hasIndicator := false
	for _, ind := range browserIndicators {
		if strings.Contains(ua, ind) {
			hasIndicator = true
			break
		}
	}
	if !hasIndicator {
		return model.Classification{IsBot: true, Identity: UnknownNonBrowser}
	}

	// Real browsers carry mozilla/5.0 plus a rendering-engine token.
	if strings.Contains(ua, "mozilla/5.0") &&
		(strings.Contains(ua, "applewebkit") ||
			strings.Contains(ua, "gecko") ||
			strings.Contains(ua, "trident")) {
		return model.Classification{}
	}

	// Indicators without engine proof: treated as non-human.
	return model.Classification{IsBot: true, Identity: UnknownNonBrowser}
}
