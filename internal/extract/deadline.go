// Package extract pulls structured facts out of a classified message:
// application deadline, company name, application URL. Every extraction is
// best-effort; a miss is an absent value, never an error.
package extract

import (
	"regexp"
	"strings"
	"time"
)

// Deadline-signal phrases, matched case-insensitively with everything up to
// the next sentence break as trailing context.
var deadlineSignals = []string{
	"deadline", "due", "apply by", "application closes", "last date",
	"expires", "close", "ends", "final date", "submit by", "before",
}

var signalPatterns = compileSignals(deadlineSignals)

func compileSignals(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(w)+`[^.]*`))
	}
	return out
}

const monthAlt = `January|February|March|April|May|June|July|August|September|October|November|December`

// Ordered date-shaped patterns. Precedence is the slice order; each entry is
// independently testable.
type datePattern struct {
	name  string
	re    *regexp.Regexp
	parse func(m []string, now time.Time) (time.Time, bool)
}

var datePatterns = []datePattern{
	{
		// 12/15/2026 or 15/12/2026 or 15-12-2026. Field order is ambiguous;
		// whichever reading makes a valid calendar date wins, month-first
		// tried first.
		name:  "numeric",
		re:    regexp.MustCompile(`\b(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})\b`),
		parse: parseNumeric,
	},
	{
		name:  "month-day-year",
		re:    regexp.MustCompile(`(?i)\b(` + monthAlt + `)\s+(\d{1,2}),?\s+(\d{4})\b`),
		parse: parseMonthDayYear,
	},
	{
		name:  "day-month-year",
		re:    regexp.MustCompile(`(?i)\b(\d{1,2})\s+(` + monthAlt + `)\s+(\d{4})\b`),
		parse: parseDayMonthYear,
	},
	{
		// Bare "December 15": year taken from the clock; a past reading is
		// rejected by the future guard upstream.
		name:  "month-day",
		re:    regexp.MustCompile(`(?i)\b(` + monthAlt + `)\s+(\d{1,2})\b`),
		parse: parseMonthDay,
	},
}

// Deadline scans subject+body for an application deadline strictly after now.
// Phase 1 looks inside deadline-signal phrases; phase 2 falls back to any
// future date anywhere in the text. The second return is the raw matched
// substring, kept for audit. ok=false is the normal no-date outcome.
func Deadline(now time.Time, subject, body string) (deadline time.Time, sourceText string, ok bool) {
	content := subject + " " + body

	for _, sig := range signalPatterns {
		for _, frag := range sig.FindAllString(content, -1) {
			for _, p := range datePatterns {
				for _, m := range p.re.FindAllStringSubmatch(frag, -1) {
					if d, valid := p.parse(m, now); valid && d.After(now) {
						return d, strings.TrimSpace(frag), true
					}
				}
			}
		}
	}

	for _, p := range datePatterns {
		for _, m := range p.re.FindAllStringSubmatch(content, -1) {
			if d, valid := p.parse(m, now); valid && d.After(now) {
				return d, m[0], true
			}
		}
	}

	return time.Time{}, "", false
}

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

func parseNumeric(m []string, _ time.Time) (time.Time, bool) {
	a, b, y := atoi(m[1]), atoi(m[2]), atoi(m[3])
	if d, ok := calendarDate(y, a, b); ok { // M/D/Y
		return d, true
	}
	if d, ok := calendarDate(y, b, a); ok { // D/M/Y
		return d, true
	}
	return time.Time{}, false
}

func parseMonthDayYear(m []string, _ time.Time) (time.Time, bool) {
	return calendarDate(atoi(m[3]), int(monthsByName[strings.ToLower(m[1])]), atoi(m[2]))
}

func parseDayMonthYear(m []string, _ time.Time) (time.Time, bool) {
	return calendarDate(atoi(m[3]), int(monthsByName[strings.ToLower(m[2])]), atoi(m[1]))
}

func parseMonthDay(m []string, now time.Time) (time.Time, bool) {
	return calendarDate(now.Year(), int(monthsByName[strings.ToLower(m[1])]), atoi(m[2]))
}

// calendarDate validates the components (month 1-12, day within the month)
// and returns midnight UTC. time.Date normalizes overflow, so validity is
// checked before construction rather than after.
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	if day > daysIn(year, time.Month(month)) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
