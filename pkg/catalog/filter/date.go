package filter

import (
	"regexp"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	completeDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	partialDatePattern  = regexp.MustCompile(`^\d{0,4}(-\d{0,2}(-\d{0,2})?)?$`)
	manualHyphenPattern = regexp.MustCompile(`^\d{4}-(\d{2}-)?$`)
)

// CompleteDate parses s when it is a full YYYY-MM-DD calendar date.
// Partial or impossible dates ("2023", "2023-1", "2023-13-40") return false.
func CompleteDate(s string) (time.Time, bool) {
	if !completeDatePattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeDateInput cleans a date being typed into a bound field. Characters
// other than digits and hyphens are dropped and hyphens are inserted after the
// year and month. The second result is false when the input cannot be the
// beginning of a YYYY-MM-DD date; callers keep their previous value then.
func NormalizeDateInput(raw string) (string, bool) {
	clean := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, raw)

	if !manualHyphenPattern.MatchString(clean) {
		digits := strings.ReplaceAll(clean, "-", "")
		switch {
		case len(digits) > 6:
			clean = digits[:4] + "-" + digits[4:6] + "-" + digits[6:]
		case len(digits) > 4:
			clean = digits[:4] + "-" + digits[4:]
		default:
			clean = digits
		}
	}

	if len(clean) > len(dateLayout) || !partialDatePattern.MatchString(clean) {
		return "", false
	}
	return clean, true
}

// day truncates t to its UTC calendar day.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
