package modes

import (
	"context"

	"github.com/Dicklesworthstone/quorum/internal/parse"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
)

func init() { runners["panel"] = runPanel }

// defaultRoleOrder fixes the round-robin assignment when the request names
// no roles.
var defaultRoleOrder = []string{"security", "performance", "ux", "business", "quality"}

// runPanel pairs each model with a specialist role, collects the reports in
// parallel, and synthesizes them.
func runPanel(ctx context.Context, r *Run) (string, error) {
	r.Start("")
	roles := resolveRoles(r.Config)

	r.Emit("specialists_start", PhaseCounts{})
	calls := make([]ModelCall, len(r.Models))
	assigned := make([]prompts.Role, len(r.Models))
	for i, model := range r.Models {
		role := roles[i%len(roles)]
		assigned[i] = role
		calls[i] = ModelCall{Key: model, Model: model, Prompt: prompts.SpecialistReport(role, r.Question)}
	}
	results := r.FanOut(ctx, calls)

	var reports []prompts.Labeled
	for i, model := range r.Models {
		res := results[model]
		if res == nil {
			continue
		}
		parsed := parse.Specialist(res.Content)
		r.Record("specialist", model, assigned[i].Name, res.Content, parsed, res.ResponseTimeMS)
		reports = append(reports, prompts.Labeled{Label: assigned[i].Name, Content: res.Content})
	}
	r.Emit("specialists_complete", PhaseCounts{Succeeded: len(reports), Failed: len(r.Models) - len(reports)})
	if len(reports) < 2 {
		return "", r.Fatal("fewer than 2 specialists reported")
	}

	r.Emit("synthesis_start", PhaseCounts{})
	synthesizer := r.Config.String("synthesizerModel", r.Models[0])
	res := r.GW.QueryOne(ctx, synthesizer, prompts.PanelSynthesis(r.Question, reports), r.Timeout)
	if res == nil {
		return "", r.Fatal("panel synthesis failed")
	}
	r.Record("synthesis", synthesizer, "synthesizer", res.Content, nil, res.ResponseTimeMS)
	r.Emit("synthesis_complete", map[string]string{"model": synthesizer})

	return res.Content, nil
}

// resolveRoles maps requested role ids through the library, falling back to
// the default roster. Unknown ids are skipped.
func resolveRoles(cfg Config) []prompts.Role {
	ids := cfg.StringSlice("roles")
	if len(ids) == 0 {
		ids = defaultRoleOrder
	}
	var roles []prompts.Role
	for _, id := range ids {
		if role, ok := prompts.RoleLibrary[id]; ok {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		for _, id := range defaultRoleOrder {
			roles = append(roles, prompts.RoleLibrary[id])
		}
	}
	return roles
}
