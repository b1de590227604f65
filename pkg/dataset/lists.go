package dataset

import "strings"

// SplitList converts a delimited input ("a, b;c") into the canonical ordered
// list. Blank items and repeats are dropped.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	return NormalizeList(fields)
}

// NormalizeList trims every item and removes blanks and repeats while keeping
// first-seen order. A list without items becomes nil.
func NormalizeList(items []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
