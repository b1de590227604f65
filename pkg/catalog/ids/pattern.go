// Package ids allocates and validates human-readable dataset identifiers of
// the form PREFIX_NNN.
package ids

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	DefaultPrefix = "UCTD"
	DefaultWidth  = 3
)

// Pattern describes identifiers made of a fixed prefix, an underscore and a
// zero-padded decimal number of Width digits.
type Pattern struct {
	Prefix string
	Width  int

	re    *regexp.Regexp
	loose *regexp.Regexp
}

// NewPattern compiles the matcher for prefix and width. Width below one is
// treated as one.
func NewPattern(prefix string, width int) Pattern {
	if width < 1 {
		width = 1
	}
	return Pattern{
		Prefix: prefix,
		Width:  width,
		re:     regexp.MustCompile(fmt.Sprintf(`^%s_(\d{%d})$`, regexp.QuoteMeta(prefix), width)),
		loose:  regexp.MustCompile(fmt.Sprintf(`^%s_(\d{%d,})$`, regexp.QuoteMeta(prefix), width)),
	}
}

// DefaultPattern returns the UCTD_NNN pattern.
func DefaultPattern() Pattern {
	return NewPattern(DefaultPrefix, DefaultWidth)
}

func (p Pattern) matcher() *regexp.Regexp {
	if p.re != nil {
		return p.re
	}
	return NewPattern(p.Prefix, p.Width).re
}

func (p Pattern) grownMatcher() *regexp.Regexp {
	if p.loose != nil {
		return p.loose
	}
	return NewPattern(p.Prefix, p.Width).loose
}

// Valid reports whether id is exactly PREFIX_ followed by Width digits.
func (p Pattern) Valid(id string) bool {
	if id == "" {
		return false
	}
	return p.matcher().MatchString(id)
}

// ValidPtr is Valid for optional input; nil is never valid.
func (p Pattern) ValidPtr(id *string) bool {
	return id != nil && p.Valid(*id)
}

// Number extracts the numeric part of a well-formed id. It returns -1 when id
// does not match the pattern.
func (p Pattern) Number(id string) int {
	m := p.matcher().FindStringSubmatch(id)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}

// Accepts reports whether id is PREFIX_ followed by at least Width digits.
// Identifiers issued after the padded width overflowed, e.g. UCTD_1000,
// are accepted for lookups even though Valid rejects them.
func (p Pattern) Accepts(id string) bool {
	return id != "" && p.grownMatcher().MatchString(id)
}

// Sequence is Number for any accepted id, overflowed ones included.
func (p Pattern) Sequence(id string) int {
	m := p.grownMatcher().FindStringSubmatch(id)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}

// Highest returns the largest Sequence among existing, or 0.
func (p Pattern) Highest(existing []string) int {
	maxN := 0
	for _, id := range existing {
		if n := p.Sequence(id); n > maxN {
			maxN = n
		}
	}
	return maxN
}

// Format renders n padded to at least Width digits. Larger numbers keep all
// of their digits.
func (p Pattern) Format(n int) string {
	return fmt.Sprintf("%s_%0*d", p.Prefix, p.Width, n)
}

// Base is the first identifier of an empty catalog.
func (p Pattern) Base() string {
	return p.Format(1)
}

// Next returns the identifier after the largest well-formed one in existing.
// Malformed entries are skipped.
func (p Pattern) Next(existing []string) string {
	maxN := 0
	for _, id := range existing {
		if n := p.Number(id); n > maxN {
			maxN = n
		}
	}
	return p.Format(maxN + 1)
}
