package modes

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/quorum/internal/parse"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
)

func init() { runners["redteam"] = runRedTeam }

// AuditEntry is one finding's lifecycle across an attack/defense round.
type AuditEntry struct {
	Round    int    `json:"round"`
	Number   int    `json:"number"`
	Severity string `json:"severity"`
	Summary  string `json:"summary"`
	Verdict  string `json:"verdict"`
}

// runRedTeam generates content, cycles attack and defense rounds, and
// synthesizes the hardened result. The first model defends; the rest attack.
func runRedTeam(ctx context.Context, r *Run) (string, error) {
	r.Start("")
	defender := r.Models[0]
	attackers := r.Models[1:]
	rounds := r.Config.Int("rounds", DefaultRedTeamRounds)
	if rounds < 1 {
		rounds = 1
	}

	r.Emit("generate_start", PhaseCounts{})
	content := r.Config.String("content", "")
	if content == "" {
		res := r.GW.QueryOne(ctx, defender, prompts.RedTeamGenerate(r.Question), r.Timeout)
		if res == nil {
			return "", r.Fatal("initial content generation failed")
		}
		content = res.Content
		r.Record("generate", defender, "defender", content, nil, res.ResponseTimeMS)
	} else {
		r.Record("generate", "", "", content, nil, 0)
	}
	r.Emit("generate_complete", PhaseCounts{Succeeded: 1})

	var audit []AuditEntry
	completedRounds := 0
	for round := 1; round <= rounds; round++ {
		r.Emit("attack_start", map[string]int{"round": round})
		findings := attackRound(ctx, r, round, attackers, content)
		r.Emit("attack_complete", map[string]any{"round": round, "findings": len(findings)})
		if len(findings) == 0 {
			// Nothing to defend; later rounds are skipped too.
			break
		}
		completedRounds = round

		r.Emit("defend_start", map[string]int{"round": round})
		defenses, revised := defendRound(ctx, r, round, defender, content, findings)
		if revised != "" {
			content = revised
		}
		r.Emit("defend_complete", map[string]any{"round": round, "responses": len(defenses)})

		audit = append(audit, auditRound(round, findings, defenses)...)
	}

	r.Emit("synthesize_start", PhaseCounts{})
	res := r.GW.QueryOne(ctx, defender,
		prompts.RedTeamSynthesis(r.Question, completedRounds, content, auditSummary(audit)), r.Timeout)
	if res == nil {
		return "", r.Fatal("red team synthesis failed")
	}
	r.Record("synthesize", defender, "synthesizer", res.Content, map[string]any{
		"audit":        audit,
		"overall_risk": overallRisk(audit),
	}, res.ResponseTimeMS)
	r.Emit("synthesize_complete", map[string]any{"overall_risk": overallRisk(audit), "findings": len(audit)})

	return res.Content, nil
}

// attackRound fans the current content to every attacker and merges their
// findings, renumbered sequentially.
func attackRound(ctx context.Context, r *Run, round int, attackers []string, content string) []parse.Finding {
	prompt := prompts.RedTeamAttack(round, content)
	results := r.GW.QueryMany(ctx, attackers, prompt, r.Timeout)

	var merged []parse.Finding
	for _, attacker := range attackers {
		res := results[attacker]
		if res == nil {
			continue
		}
		findings := parse.Findings(res.Content)
		r.Record(fmt.Sprintf("attack_%d", round), attacker, "attacker", res.Content, findings, res.ResponseTimeMS)
		merged = append(merged, findings...)
	}
	for i := range merged {
		merged[i].Number = i + 1
	}
	return merged
}

// defendRound has the defender address every finding. The last ACCEPT that
// carries revised content replaces the content for the next attack.
func defendRound(ctx context.Context, r *Run, round int, defender, content string, findings []parse.Finding) ([]parse.Defense, string) {
	rendered := make([]string, len(findings))
	for i, f := range findings {
		rendered[i] = fmt.Sprintf("FINDING %d (%s): %s", f.Number, f.Severity, f.Body)
	}

	res := r.GW.QueryOne(ctx, defender, prompts.RedTeamDefend(content, rendered), r.Timeout)
	if res == nil {
		// Soft: findings stand unaddressed, content unchanged.
		return nil, ""
	}
	defenses := parse.Defenses(res.Content)
	r.Record(fmt.Sprintf("defend_%d", round), defender, "defender", res.Content, defenses, res.ResponseTimeMS)

	revised := ""
	for _, d := range defenses {
		if d.Verdict == parse.DefenseAccept && d.Revised != "" {
			revised = d.Revised
		}
	}
	return defenses, revised
}

func auditRound(round int, findings []parse.Finding, defenses []parse.Defense) []AuditEntry {
	verdictFor := make(map[int]string, len(defenses))
	for _, d := range defenses {
		verdictFor[d.FindingNumber] = d.Verdict
	}
	out := make([]AuditEntry, 0, len(findings))
	for _, f := range findings {
		verdict := verdictFor[f.Number]
		if verdict == "" {
			// Unaddressed findings are never silently accepted.
			verdict = parse.DefenseRebut
		}
		out = append(out, AuditEntry{
			Round:    round,
			Number:   f.Number,
			Severity: f.Severity,
			Summary:  firstLine(f.Body),
			Verdict:  verdict,
		})
	}
	return out
}

// overallRisk is the worst severity observed across all rounds.
func overallRisk(audit []AuditEntry) string {
	best := len(parse.FindingSeverities)
	risk := "NONE"
	for _, a := range audit {
		if rank := parse.SeverityRank(a.Severity); rank < best {
			best = rank
			risk = a.Severity
		}
	}
	return risk
}

func auditSummary(audit []AuditEntry) string {
	if len(audit) == 0 {
		return "No findings were raised."
	}
	var b strings.Builder
	b.WriteString("| Round | Finding | Severity | Verdict | Summary |\n|---|---|---|---|---|\n")
	for _, a := range audit {
		fmt.Fprintf(&b, "| %d | %d | %s | %s | %s |\n", a.Round, a.Number, a.Severity, a.Verdict, a.Summary)
	}
	return strings.TrimRight(b.String(), "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
