package aggregate

import "sort"

// Plurality is the result of a plurality tally over labels.
type Plurality struct {
	// Counts maps each label to the number of votes it received.
	Counts map[string]int `json:"counts"`
	// Winners are the label(s) sharing the maximum count, sorted.
	Winners []string `json:"winners"`
	IsTie   bool     `json:"is_tie"`
	Total   int      `json:"total"`
}

// Tally counts votes and returns the plurality winner set. Empty votes are
// dropped from both the counts and the total.
func Tally(votes []string) Plurality {
	p := Plurality{Counts: make(map[string]int)}
	for _, v := range votes {
		if v == "" {
			continue
		}
		p.Counts[v]++
		p.Total++
	}

	max := 0
	for _, c := range p.Counts {
		if c > max {
			max = c
		}
	}
	for label, c := range p.Counts {
		if c == max && max > 0 {
			p.Winners = append(p.Winners, label)
		}
	}
	sort.Strings(p.Winners)
	p.IsTie = len(p.Winners) > 1
	return p
}

// Juror verdict values.
const (
	VerdictApprove = "APPROVE"
	VerdictRevise  = "REVISE"
	VerdictReject  = "REJECT"
)

// MajorityVerdict resolves juror verdicts to a single verdict. Ties resolve
// conservatively: a three-way tie, any tie involving REVISE, and an
// APPROVE/REJECT tie all yield REVISE. Empty verdicts are excluded.
func MajorityVerdict(verdicts []string) string {
	p := Tally(verdicts)
	if p.Total == 0 {
		return VerdictRevise
	}
	if !p.IsTie && len(p.Winners) == 1 {
		return p.Winners[0]
	}
	// Every tie shape the verdict domain allows resolves to REVISE: either
	// REVISE is in the tie set, or the tie is APPROVE vs REJECT.
	return VerdictRevise
}

// Claim verdict values for fact-check consensus.
const (
	ClaimVerified     = "VERIFIED"
	ClaimDisputed     = "DISPUTED"
	ClaimUnverifiable = "UNVERIFIABLE"
)

// ClaimConsensus resolves checker verdicts for one claim. Tie-breaking is
// conservative: VERIFIED vs DISPUTED goes to DISPUTED, a tie involving
// UNVERIFIABLE goes to the other verdict, and a three-way tie is DISPUTED.
func ClaimConsensus(verdicts []string) string {
	p := Tally(verdicts)
	if p.Total == 0 {
		return ClaimUnverifiable
	}
	if !p.IsTie && len(p.Winners) == 1 {
		return p.Winners[0]
	}

	in := func(v string) bool {
		for _, w := range p.Winners {
			if w == v {
				return true
			}
		}
		return false
	}

	if len(p.Winners) == 3 {
		return ClaimDisputed
	}
	if in(ClaimUnverifiable) {
		// The tied non-UNVERIFIABLE verdict wins.
		for _, w := range p.Winners {
			if w != ClaimUnverifiable {
				return w
			}
		}
		return ClaimUnverifiable
	}
	// VERIFIED vs DISPUTED.
	return ClaimDisputed
}
