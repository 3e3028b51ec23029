package clean

import (
	"strconv"
	"strings"
)

var (
	booleanTrue  = map[string]bool{"yes": true, "true": true, "1": true, "y": true}
	booleanFalse = map[string]bool{"no": true, "false": true, "0": true, "n": true}
)

// NormalizeSpace trims the value and collapses internal whitespace runs
// to single spaces.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

// ProperCase capitalizes each space-separated word.
func ProperCase(s string) string {
	words := strings.Fields(NormalizeSpace(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// ParseBool normalizes a yes/no style flag. The canonical string form is
// "Yes", "No", or "" when the token is unrecognized.
func ParseBool(s string) (bool, string) {
	token := strings.ToLower(strings.TrimSpace(s))
	if booleanTrue[token] {
		return true, "Yes"
	}
	if booleanFalse[token] {
		return false, "No"
	}
	return false, ""
}

// ParseMinutes parses a duration-in-minutes cell. Blank cells and the
// "--" placeholder count as zero; unparseable values also coerce to zero
// rather than dropping the row.
func ParseMinutes(s string) int {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// FirstNonBlank returns the first value with non-whitespace content, in
// original order, or "".
func FirstNonBlank(values []string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
