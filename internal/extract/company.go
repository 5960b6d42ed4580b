package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// Salutation/structural words that masquerade as company names in body text.
var commonWords = map[string]bool{
	"Dear": true, "Hello": true, "Hi": true, "The": true, "This": true,
	"That": true, "We": true, "You": true, "Your": true, "Our": true,
	"From": true, "To": true, "Subject": true, "Date": true, "Time": true,
	"Place": true, "Team": true,
}

var reFromDomain = regexp.MustCompile(`@([^.\s>]+)`)

// Company guesses the company behind a message. Priority: sender domain's
// leading label, then a capitalized word in the subject, then one in the
// body's first 50 words (minus salutations). "Unknown Company" is the floor.
func Company(from, subject, body string) string {
	if m := reFromDomain.FindStringSubmatch(from); m != nil {
		return capitalize(m[1])
	}

	for _, w := range strings.Fields(subject) {
		if companyShaped(w) {
			return w
		}
	}

	words := strings.Fields(body)
	if len(words) > 50 {
		words = words[:50]
	}
	for _, w := range words {
		if companyShaped(w) && !commonWords[w] {
			return w
		}
	}

	return "Unknown Company"
}

// companyShaped: longer than 3 runes, leading uppercase letter.
func companyShaped(w string) bool {
	if len([]rune(w)) <= 3 {
		return false
	}
	r := []rune(w)[0]
	return unicode.IsUpper(r) && unicode.IsLetter(r)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
