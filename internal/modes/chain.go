package modes

import (
	"context"
	"fmt"

	"github.com/Dicklesworthstone/quorum/internal/prompts"
)

func init() { runners["chain"] = runChain }

// defaultMandates assigns each chain position its refinement duty when the
// request does not supply custom mandates. Position 0 always drafts.
var defaultMandates = []string{
	"write the first complete draft",
	"verify claims and fix factual or logical errors",
	"fill gaps and add missing depth",
	"tighten the structure and remove redundancy",
	"polish tone and readability",
}

// runChain executes the strictly sequential relay: each step refines the
// previous step's output under its own mandate. Failed steps are skipped
// and their mandates deferred to the next successful step.
func runChain(ctx context.Context, r *Run) (string, error) {
	r.Start("")
	mandates := r.Config.StringSlice("mandates")

	current := ""
	var deferred []string
	succeeded, failed := 0, 0

	for i, model := range r.Models {
		mandate := mandateFor(mandates, i)
		r.Emit("step_start", map[string]any{"step": i + 1, "model": model, "mandate": mandate})

		prompt := prompts.ChainStep(r.Question, mandate, current, deferred)
		res := r.GW.QueryOne(ctx, model, prompt, r.Timeout)
		if res == nil {
			if i == 0 {
				return "", r.Fatal("the drafting step failed")
			}
			// Skipped, never retried; the next successful step absorbs it.
			failed++
			deferred = append(deferred, mandate)
			r.Emit("step_complete", map[string]any{"step": i + 1, "model": model, "skipped": true})
			continue
		}
		succeeded++
		current = res.Content
		deferred = nil
		r.Record(fmt.Sprintf("step_%d", i+1), model, "", res.Content, map[string]string{"mandate": mandate}, res.ResponseTimeMS)
		r.Emit("step_complete", map[string]any{"step": i + 1, "model": model, "skipped": false})
	}

	r.Emit("chain_complete", PhaseCounts{Succeeded: succeeded, Failed: failed})
	return current, nil
}

func mandateFor(custom []string, i int) string {
	if i < len(custom) {
		return custom[i]
	}
	if i < len(defaultMandates) {
		return defaultMandates[i]
	}
	return defaultMandates[len(defaultMandates)-1]
}
