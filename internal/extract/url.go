package extract

import (
	"regexp"
	"strings"
)

var reURL = regexp.MustCompile(`https?://[^\s<>"']+`)

// URL substrings that suggest an application page.
var applicationTokens = []string{"apply", "application", "career", "job", "recruit"}

// ApplicationURL picks the most likely application link from the body: the
// first URL containing an application-intent token, else the first URL at all.
func ApplicationURL(body string) (string, bool) {
	urls := reURL.FindAllString(body, -1)
	if len(urls) == 0 {
		return "", false
	}
	for i, u := range urls {
		urls[i] = strings.TrimRight(u, ".,);:]\"'")
	}

	for _, u := range urls {
		lower := strings.ToLower(u)
		for _, tok := range applicationTokens {
			if strings.Contains(lower, tok) {
				return u, true
			}
		}
	}
	return urls[0], true
}
