// Package parse extracts typed structures from free-form model output.
//
// Every parser follows the same shape: a primary pattern matching the
// explicitly instructed format, a fallback pattern covering common
// deviations (bold markdown, case variation, suffixes), and a conservative
// default when both fail. Parsers are total: they never return errors for
// malformed text, only defaults plus an ok flag where the caller needs to
// distinguish.
package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	boldRe   = regexp.MustCompile(`\*\*([^*]*)\*\*`)
	numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// stripBold removes markdown bold markers so keyword patterns match
// "**VOTE:**" as well as "VOTE:".
func stripBold(s string) string {
	return boldRe.ReplaceAllString(s, "$1")
}

// lines splits text into trimmed lines with bold markers removed.
func lines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, len(raw))
	for i, l := range raw {
		out[i] = strings.TrimSpace(stripBold(l))
	}
	return out
}

// firstNumber extracts the first signed decimal number in s.
func firstNumber(s string) (float64, bool) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// fieldValue extracts "Key: value" from a trimmed line, case-insensitively,
// tolerating a leading list dash.
func fieldValue(line, key string) (string, bool) {
	l := strings.TrimLeft(line, "-* \t")
	if len(l) < len(key)+1 {
		return "", false
	}
	if !strings.EqualFold(l[:len(key)], key) {
		return "", false
	}
	rest := strings.TrimSpace(l[len(key):])
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}
	return strings.TrimSpace(rest[1:]), true
}

// normalizeEnum uppercases and trims a parsed enum token, dropping trailing
// punctuation the models like to add.
func normalizeEnum(s string) string {
	return strings.ToUpper(strings.Trim(strings.TrimSpace(s), ".,;:!"))
}

// splitCSV splits a comma-separated list, trimming each item and dropping
// empties.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
