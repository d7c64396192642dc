package parse

import (
	"regexp"
	"strings"
)

// JuryDimensions are the five scored dimensions, in report order.
var JuryDimensions = []string{"Accuracy", "Completeness", "Clarity", "Relevance", "Actionability"}

// JurorCard is one juror's parsed scorecard.
type JurorCard struct {
	// Scores maps dimension name to score; nil when the juror skipped the
	// dimension or scored outside 1-10.
	Scores map[string]*float64 `json:"scores"`
	// Average is the mean of non-nil scores, rounded to 0.1.
	Average float64 `json:"average"`
	// Verdict is APPROVE, REVISE, or REJECT; empty when unparsed.
	Verdict string `json:"verdict"`
}

var (
	jurorVerdictRe = regexp.MustCompile(`(?i)VERDICT\s*:\s*\**\s*(APPROVE|REVISE|REJECT)\b`)
	// | Accuracy | 8 | ... table rows.
	juryTableRowRe = regexp.MustCompile(`(?i)^\|\s*([A-Za-z]+)\s*\|\s*(\d+(?:\.\d+)?)\s*(?:/\s*10\s*)?\|`)
	// Accuracy: 8, Accuracy: 8/10, Accuracy - 8.
	juryLineRe = regexp.MustCompile(`(?i)^([A-Za-z]+)\s*[:\-]\s*(\d+(?:\.\d+)?)\s*(?:/\s*10)?\s*$`)
)

// Juror parses a juror's reply: five 1-10 dimension scores (table rows
// first, then "Dimension: N" and its "/10" and bold variants) plus a
// VERDICT line. Scores outside 1-10 are discarded as nil.
func Juror(text string) JurorCard {
	card := JurorCard{Scores: make(map[string]*float64, len(JuryDimensions))}
	for _, dim := range JuryDimensions {
		card.Scores[dim] = nil
	}

	dimOf := func(name string) (string, bool) {
		for _, dim := range JuryDimensions {
			if strings.EqualFold(dim, name) {
				return dim, true
			}
		}
		return "", false
	}

	record := func(name string, score float64) {
		dim, ok := dimOf(name)
		if !ok || score < 1 || score > 10 {
			return
		}
		if card.Scores[dim] == nil {
			s := score
			card.Scores[dim] = &s
		}
	}

	for _, line := range lines(text) {
		if m := juryTableRowRe.FindStringSubmatch(line); m != nil {
			if v, ok := firstNumber(m[2]); ok {
				record(m[1], v)
			}
			continue
		}
		if m := juryLineRe.FindStringSubmatch(line); m != nil {
			if v, ok := firstNumber(m[2]); ok {
				record(m[1], v)
			}
		}
	}

	var sum float64
	var n int
	for _, s := range card.Scores {
		if s != nil {
			sum += *s
			n++
		}
	}
	if n > 0 {
		card.Average = roundTo(sum/float64(n), 1)
	}

	if m := jurorVerdictRe.FindStringSubmatch(stripBold(text)); m != nil {
		card.Verdict = normalizeEnum(m[1])
	}
	return card
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int(v*scale+0.5)) / scale
}
