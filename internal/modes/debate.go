package modes

import (
	"context"

	"github.com/Dicklesworthstone/quorum/internal/aggregate"
	"github.com/Dicklesworthstone/quorum/internal/labels"
	"github.com/Dicklesworthstone/quorum/internal/parse"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
	"github.com/sergi/go-diff/diffmatchpatch"
)

func init() { runners["debate"] = runDebate }

// DebateRevision is one debater's second-round outcome.
type DebateRevision struct {
	Model        string  `json:"model"`
	Decision     string  `json:"decision"`
	Response     string  `json:"response"`
	ParseSuccess bool    `json:"parse_success"`
	ChangeRatio  float64 `json:"change_ratio"`
}

// runDebate runs initial answers, a peer-informed revision round, and a
// blind vote over the revised answers. Ties break alphabetically by label;
// there is no chairman.
func runDebate(ctx context.Context, r *Run) (string, error) {
	r.Start("")

	r.Emit("round1_start", PhaseCounts{})
	responses := r.Collect(ctx, "round1", r.Models, r.Turns(r.Question))
	r.Emit("round1_complete", PhaseCounts{Succeeded: len(responses), Failed: len(r.Models) - len(responses)})
	if len(responses) < 2 {
		return "", r.Fatal("a debate needs at least 2 opening answers")
	}

	r.Emit("revision_start", PhaseCounts{})
	revisions := reviseAnswers(ctx, r, responses)
	r.Emit("revision_complete", PhaseCounts{Succeeded: len(revisions), Failed: len(responses) - len(revisions)})

	// Fresh shuffled permutation for the vote round, never the round-1 map.
	voteMap := labels.NewShuffled(modelsOfRevisions(revisions))
	revised := make([]StageResponse, len(revisions))
	for i, rev := range revisions {
		revised[i] = StageResponse{Model: rev.Model, Response: rev.Response}
	}
	ballot := prompts.VoteBallot(r.Question, anonymize(voteMap, revised))

	r.Emit("vote_start", PhaseCounts{})
	results := r.GW.QueryMany(ctx, modelsOfRevisions(revisions), ballot, r.Timeout)
	var votes []string
	for _, voter := range modelsOfRevisions(revisions) {
		res := results[voter]
		if res == nil {
			continue
		}
		vote := parse.Vote(res.Content)
		r.Record("vote", voter, "", res.Content, map[string]string{"vote": vote}, res.ResponseTimeMS)
		if voteMap.Has(vote) {
			votes = append(votes, vote)
		}
	}
	if len(votes) == 0 {
		return "", r.Fatal("no debate ballot named a valid response")
	}

	tally := aggregate.Tally(votes)
	r.Emit("vote_complete", tally)

	// Winners is sorted, so ties fall to the alphabetically first label.
	winnerLabel := tally.Winners[0]
	model, _ := voteMap.Model(winnerLabel)
	winner := responseOf(revised, model)
	r.Emit("winner", VoteOutcome{
		Model:     model,
		Label:     winnerLabel,
		Response:  winner,
		Counts:    tally.Counts,
		Tiebroken: tally.IsTie,
	})
	return winner, nil
}

// reviseAnswers gives every debater its own original plus anonymized peer
// answers. Parse failures and STANDs carry the original forward.
func reviseAnswers(ctx context.Context, r *Run, responses []StageResponse) []DebateRevision {
	lm := labels.New(modelsOf(responses))
	dmp := diffmatchpatch.New()

	calls := make([]ModelCall, 0, len(responses))
	for _, sr := range responses {
		var peers []prompts.Labeled
		for _, peer := range responses {
			if peer.Model == sr.Model {
				continue
			}
			label, _ := lm.LabelFor(peer.Model)
			peers = append(peers, prompts.Labeled{Label: label, Content: peer.Response})
		}
		calls = append(calls, ModelCall{
			Key:    sr.Model,
			Model:  sr.Model,
			Prompt: prompts.DebateRevision(r.Question, sr.Response, peers),
		})
	}
	results := r.FanOut(ctx, calls)

	revisions := make([]DebateRevision, 0, len(responses))
	for _, sr := range responses {
		rev := DebateRevision{Model: sr.Model, Decision: parse.DecisionStand, Response: sr.Response}
		res := results[sr.Model]
		if res != nil {
			parsed := parse.ParseRevision(res.Content)
			rev.ParseSuccess = parsed.ParseSuccess
			if parsed.ParseSuccess {
				rev.Decision = parsed.Decision
				if parsed.Decision != parse.DecisionStand && parsed.Body != "" {
					rev.Response = parsed.Body
					rev.ChangeRatio = changeRatio(dmp, sr.Response, parsed.Body)
				}
			}
			r.Record("revision", sr.Model, "", res.Content, rev, res.ResponseTimeMS)
		}
		revisions = append(revisions, rev)
	}
	return revisions
}

// changeRatio is the fraction of the original text altered by the revision.
func changeRatio(dmp *diffmatchpatch.DiffMatchPatch, original, revised string) float64 {
	if original == "" {
		return 1
	}
	diffs := dmp.DiffMain(original, revised, false)
	changed := 0
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffEqual {
			changed += len(d.Text)
		}
	}
	ratio := float64(changed) / float64(len(original))
	if ratio > 1 {
		ratio = 1
	}
	return aggregate.Round(ratio, 2)
}

func modelsOfRevisions(revisions []DebateRevision) []string {
	out := make([]string, len(revisions))
	for i, rev := range revisions {
		out[i] = rev.Model
	}
	return out
}
