package fees

import (
	"regexp"
	"strconv"
	"strings"
)

// Fee categories the parser can recognize.
const (
	CategoryHomeCare      = "home_care"
	CategoryResidential   = "residential"
	CategoryAccommodation = "accommodation"
)

// Query intents.
const (
	IntentCurrent = "current"
	IntentHistory = "history"
	IntentCompare = "compare"
)

// MinConfidence is the bar for short-circuiting retrieval: a fee indicator
// plus a recognized category. Anything weaker goes through the general
// pipeline.
const MinConfidence = 0.8

// Classification is the parser's verdict on one query.
type Classification struct {
	IsStructured bool
	Category     string
	Level        int
	Intent       string
	Confidence   float64
}

// categoryRule maps token patterns to a fee category. Rules are ordered;
// the first match wins.
type categoryRule struct {
	category string
	tokens   []string
}

var categoryRules = []categoryRule{
	{CategoryHomeCare, []string{"home care", "hcp", "care package"}},
	{CategoryAccommodation, []string{"accommodation", "rad ", "refundable deposit", "daily accommodation", "supplement"}},
	{CategoryResidential, []string{"residential", "nursing home", "aged care home", "basic daily"}},
}

var feeIndicators = []string{
	"fee", "cost", "price", "charge", "rate", "subsidy", "payment", "how much", "contribution",
}

var intentRules = []struct {
	intent string
	tokens []string
}{
	{IntentCompare, []string{"compare", "difference", "versus", " vs "}},
	{IntentHistory, []string{"history", "previous", "previously", "used to", "was the", "last year"}},
	{IntentCurrent, []string{"current", "currently", "now", "today", "latest"}},
}

var (
	levelRe = regexp.MustCompile(`(?i)\b(?:level|lvl)\s*(\d)\b`)
	dateRe  = regexp.MustCompile(`(?i)\b(20\d{2}|january|february|march|april|may|june|july|august|september|october|november|december)\b`)
)

// Classify scores a query against the rule table. Confidence accumulates
// per matched signal and caps at 1.0; intent defaults to "current".
func Classify(query string) Classification {
	q := " " + strings.ToLower(query) + " "

	c := Classification{Intent: IntentCurrent}

	if !containsAny(q, feeIndicators) {
		return c
	}
	c.Confidence = 0.6

	for _, rule := range categoryRules {
		if containsAny(q, rule.tokens) {
			c.Category = rule.category
			c.Confidence += 0.2
			break
		}
	}

	if m := levelRe.FindStringSubmatch(q); m != nil {
		if level, err := strconv.Atoi(m[1]); err == nil && level >= 1 && level <= 4 {
			c.Level = level
			c.Confidence += 0.15
		}
	}

	for _, rule := range intentRules {
		if containsAny(q, rule.tokens) {
			c.Intent = rule.intent
			c.Confidence += 0.1
			break
		}
	}

	if dateRe.MatchString(q) {
		c.Confidence += 0.05
	}

	if c.Confidence > 1.0 {
		c.Confidence = 1.0
	}

	c.IsStructured = c.Category != "" && c.Confidence >= MinConfidence
	return c
}

func containsAny(haystack string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}
