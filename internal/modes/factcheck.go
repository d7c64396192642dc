package modes

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/quorum/internal/aggregate"
	"github.com/Dicklesworthstone/quorum/internal/parse"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
)

func init() { runners["factcheck"] = runFactCheck }

// ClaimResult is the cross-checker consensus on one claim.
type ClaimResult struct {
	Claim      parse.Claim          `json:"claim"`
	Verdict    string               `json:"verdict"`
	Confidence string               `json:"confidence"`
	Correction string               `json:"correction,omitempty"`
	Checks     []parse.Verification `json:"checks"`
}

// runFactCheck sources content, extracts claims, verifies them with every
// checker in parallel, and reports with a reliability score.
func runFactCheck(ctx context.Context, r *Run) (string, error) {
	reporter := r.Config.String("reporterModel", r.Models[0])
	generator := r.Config.String("generatorModel", r.Models[0])
	maxClaims := r.Config.Int("maxClaims", DefaultFactCheckMaxClaims)
	maxContent := r.Config.Int("maxContentLength", DefaultFactCheckMaxContentLength)

	// The generator double-checking its own work is worth flagging up front.
	warning := ""
	if r.Config.String("contentToCheck", "") == "" && contains(r.Models, generator) {
		warning = fmt.Sprintf("generator %s is also a checker; results may be biased", generator)
	}
	r.Start(warning)

	content := r.Config.String("contentToCheck", "")
	if content == "" {
		r.Emit("generate_start", PhaseCounts{})
		if res := r.GW.QueryOne(ctx, generator, prompts.FactCheckGenerate(r.Question), r.Timeout); res != nil {
			content = res.Content
			r.Record("generate", generator, "generator", content, nil, res.ResponseTimeMS)
		} else {
			// Generator failure: check the question text itself.
			content = r.Question
		}
		r.Emit("generate_complete", PhaseCounts{Succeeded: 1})
	}
	if len(content) > maxContent {
		content = content[:maxContent] + "\n[content truncated]"
	}

	r.Emit("extract_start", PhaseCounts{})
	res := r.GW.QueryOne(ctx, reporter, prompts.FactCheckExtract(content, maxClaims), r.Timeout)
	if res == nil {
		return "", r.Fatal("claim extraction failed")
	}
	claims := parse.Claims(res.Content)
	if len(claims) > maxClaims {
		claims = claims[:maxClaims]
	}
	r.Record("extract", reporter, "extractor", res.Content, claims, res.ResponseTimeMS)
	r.Emit("extract_complete", map[string]int{"claims": len(claims)})

	if len(claims) == 0 {
		report := "No verifiable claims were found in the content."
		r.Record("report", "", "reporter", report, map[string]any{"score": nil}, 0)
		r.Emit("report_complete", map[string]any{"score": nil, "claims": 0})
		return report, nil
	}

	r.Emit("verify_start", PhaseCounts{})
	claimResults, checkers := verifyClaims(ctx, r, claims)
	r.Emit("verify_complete", PhaseCounts{Succeeded: checkers, Failed: len(r.Models) - checkers})
	if checkers == 0 {
		return "", r.Fatal("no checker completed verification")
	}

	r.Emit("report_start", PhaseCounts{})
	reportRes := r.GW.QueryOne(ctx, reporter,
		prompts.FactCheckReport(content, checkers, consensusTable(claimResults)), r.Timeout)
	if reportRes == nil {
		return "", r.Fatal("report generation failed")
	}
	score, scored := parse.ReliabilityScore(reportRes.Content)
	parsedScore := any(nil)
	if scored {
		parsedScore = score
	}
	r.Record("report", reporter, "reporter", reportRes.Content, map[string]any{
		"score":  parsedScore,
		"claims": claimResults,
	}, reportRes.ResponseTimeMS)
	r.Emit("report_complete", map[string]any{"score": parsedScore, "claims": len(claimResults)})

	return reportRes.Content, nil
}

// verifyClaims fans verification to every model and folds the per-claim
// consensus. A checker silent on a claim counts as an UNVERIFIABLE vote.
func verifyClaims(ctx context.Context, r *Run, claims []parse.Claim) ([]ClaimResult, int) {
	prompt := prompts.FactCheckVerify(claims)
	results := r.GW.QueryMany(ctx, r.Models, prompt, r.Timeout)

	checksByClaim := make(map[int][]parse.Verification, len(claims))
	checkers := 0
	for _, checker := range r.Models {
		res := results[checker]
		if res == nil {
			continue
		}
		checkers++
		parsed := parse.Verifications(res.Content)
		r.Record("verify", checker, "checker", res.Content, parsed, res.ResponseTimeMS)

		seen := make(map[int]bool, len(parsed))
		for _, v := range parsed {
			seen[v.ClaimNumber] = true
			checksByClaim[v.ClaimNumber] = append(checksByClaim[v.ClaimNumber], v)
		}
		for _, c := range claims {
			if !seen[c.Number] {
				checksByClaim[c.Number] = append(checksByClaim[c.Number], parse.Verification{
					ClaimNumber: c.Number,
					Verdict:     aggregate.ClaimUnverifiable,
					Evidence:    "Checker did not address this claim",
					Confidence:  parse.ConfidenceMedium,
				})
			}
		}
	}

	out := make([]ClaimResult, 0, len(claims))
	for _, c := range claims {
		checks := checksByClaim[c.Number]
		verdicts := make([]string, len(checks))
		for i, v := range checks {
			verdicts[i] = v.Verdict
		}
		cr := ClaimResult{Claim: c, Verdict: aggregate.ClaimConsensus(verdicts), Checks: checks}
		cr.Confidence = consensusConfidence(checks, cr.Verdict)
		if cr.Verdict == aggregate.ClaimDisputed {
			cr.Correction = consensusCorrection(checks)
		}
		out = append(out, cr)
	}
	return out, checkers
}

// consensusConfidence is the most common confidence among checkers who voted
// the consensus verdict.
func consensusConfidence(checks []parse.Verification, verdict string) string {
	var confidences []string
	for _, v := range checks {
		if v.Verdict == verdict {
			confidences = append(confidences, v.Confidence)
		}
	}
	if len(confidences) == 0 {
		return parse.ConfidenceMedium
	}
	return aggregate.Distribute(confidences).Mode
}

// consensusCorrection is the most frequent non-empty correction among
// DISPUTED voters.
func consensusCorrection(checks []parse.Verification) string {
	var corrections []string
	for _, v := range checks {
		if v.Verdict == aggregate.ClaimDisputed && v.Correction != "" {
			corrections = append(corrections, v.Correction)
		}
	}
	if len(corrections) == 0 {
		return ""
	}
	return aggregate.Distribute(corrections).Mode
}

func consensusTable(results []ClaimResult) string {
	var b strings.Builder
	for _, cr := range results {
		fmt.Fprintf(&b, "claim_%d: %q — %s (confidence %s)", cr.Claim.Number, cr.Claim.Text, cr.Verdict, cr.Confidence)
		if cr.Correction != "" {
			fmt.Fprintf(&b, "; correction: %s", cr.Correction)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
