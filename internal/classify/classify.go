// Package classify decides whether a raw inbox message looks like a
// placement/recruiting email. Three heuristics, each sufficient on its own:
// known company sender domain, placement vocabulary in subject+body, or a
// recruiting-department token in the sender domain.
package classify

import "strings"

// Ordered term tables. Data, not control flow; tests exercise each table
// independently.

var placementKeywords = []string{
	"placement", "internship", "job", "career", "opportunity", "hiring", "recruit",
	"application", "apply", "position", "opening", "vacancy", "campus", "graduate",
	"fresher", "entry level", "new grad", "software engineer", "developer",
	"data scientist", "analyst", "consultant", "trainee", "associate",
}

var companyDomains = []string{
	"google.com", "microsoft.com", "amazon.com", "apple.com", "meta.com",
	"netflix.com", "uber.com", "airbnb.com", "spotify.com", "twitter.com",
	"linkedin.com", "salesforce.com", "oracle.com", "ibm.com", "adobe.com",
}

var recruiterTokens = []string{
	"career", "hr", "talent", "recruitment", "jobs", "campus",
}

type Classifier struct {
	keywords []string
	domains  []string
	tokens   []string
}

func New() *Classifier {
	return &Classifier{
		keywords: placementKeywords,
		domains:  companyDomains,
		tokens:   recruiterTokens,
	}
}

// PlacementRelated reports whether the message looks recruiting-related.
// Pure: no side effects, same input always yields the same answer.
func (c *Classifier) PlacementRelated(subject, from, body string) bool {
	content := strings.ToLower(subject + " " + body)
	fromLower := strings.ToLower(from)

	return containsAny(fromLower, c.domains) ||
		containsAny(content, c.keywords) ||
		containsAny(fromLower, c.tokens)
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
