package modes

import (
	"context"

	"github.com/Dicklesworthstone/quorum/internal/aggregate"
	"github.com/Dicklesworthstone/quorum/internal/labels"
	"github.com/Dicklesworthstone/quorum/internal/parse"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
)

func init() { runners["vote"] = runVote }

// VoteOutcome is the winner payload of a blind vote.
type VoteOutcome struct {
	Model     string         `json:"model"`
	Label     string         `json:"label"`
	Response  string         `json:"response"`
	Counts    map[string]int `json:"counts"`
	Tiebroken bool           `json:"tiebroken"`
}

// runVote collects answers, holds an anonymous ballot, and breaks ties
// through the chairman.
func runVote(ctx context.Context, r *Run) (string, error) {
	r.Start("")

	r.Emit("collect_start", PhaseCounts{})
	responses := r.Collect(ctx, "collect", r.Models, r.Turns(r.Question))
	r.Emit("collect_complete", PhaseCounts{Succeeded: len(responses), Failed: len(r.Models) - len(responses)})
	if len(responses) < 2 {
		return "", r.Fatal("a vote needs at least 2 answers")
	}

	lm := labels.New(modelsOf(responses))
	ballot := prompts.VoteBallot(r.Question, anonymize(lm, responses))

	r.Emit("vote_start", PhaseCounts{})
	results := r.GW.QueryMany(ctx, modelsOf(responses), ballot, r.Timeout)
	var votes []string
	for _, voter := range modelsOf(responses) {
		res := results[voter]
		if res == nil {
			continue
		}
		vote := parse.Vote(res.Content)
		r.Record("vote", voter, "", res.Content, map[string]string{"vote": vote}, res.ResponseTimeMS)
		// Only ballots naming a real label count.
		if lm.Has(vote) {
			votes = append(votes, vote)
		}
	}
	if len(votes) == 0 {
		return "", r.Fatal("no ballot named a valid response")
	}

	tally := aggregate.Tally(votes)
	r.Emit("vote_complete", tally)

	winnerLabel := tally.Winners[0]
	tiebroken := false
	if tally.IsTie {
		winnerLabel = breakTie(ctx, r, lm, responses, tally.Winners)
		tiebroken = true
	}

	model, _ := lm.Model(winnerLabel)
	winner := responseOf(responses, model)
	r.Emit("winner", VoteOutcome{
		Model:     model,
		Label:     winnerLabel,
		Response:  winner,
		Counts:    tally.Counts,
		Tiebroken: tiebroken,
	})
	return winner, nil
}

// breakTie asks the chairman to choose among only the tied responses. One
// retry on parse or transport failure, then the alphabetically first tied
// label.
func breakTie(ctx context.Context, r *Run, lm *labels.Map, responses []StageResponse, tied []string) string {
	r.Emit("tiebreaker_start", map[string]any{"tied": tied})

	byModel := make(map[string]string, len(responses))
	for _, sr := range responses {
		byModel[sr.Model] = sr.Response
	}
	tiedSet := make(map[string]bool, len(tied))
	anonymized := make([]prompts.Labeled, 0, len(tied))
	for _, label := range tied {
		tiedSet[label] = true
		model, _ := lm.Model(label)
		anonymized = append(anonymized, prompts.Labeled{Label: label, Content: byModel[model]})
	}

	chairman := r.Config.String("chairmanModel", r.Models[0])
	prompt := prompts.TiebreakBallot(r.Question, anonymized)
	for attempt := 0; attempt < 2; attempt++ {
		res := r.GW.QueryOne(ctx, chairman, prompt, r.Timeout)
		if res == nil {
			continue
		}
		vote := parse.Vote(res.Content)
		r.Record("tiebreaker", chairman, "chairman", res.Content, map[string]string{"vote": vote}, res.ResponseTimeMS)
		if tiedSet[vote] {
			r.Emit("tiebreaker_complete", map[string]string{"winner": vote})
			return vote
		}
	}

	// Alphabetically first tied label; tied comes from Tally sorted.
	r.Emit("tiebreaker_complete", map[string]string{"winner": tied[0], "fallback": "alphabetical"})
	return tied[0]
}

func responseOf(responses []StageResponse, model string) string {
	for _, sr := range responses {
		if sr.Model == model {
			return sr.Response
		}
	}
	return ""
}
