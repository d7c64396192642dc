package modes

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/Dicklesworthstone/quorum/internal/parse"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
)

func init() { runners["tournament"] = runTournament }

// BracketStep is one entry of the champion's path through the bracket.
type BracketStep struct {
	Round    int    `json:"round"`
	Opponent string `json:"opponent,omitempty"`
	Result   string `json:"result"` // won or bye
}

// Matchup is one judged pairing.
type Matchup struct {
	Round      int    `json:"round"`
	A          string `json:"a"`
	B          string `json:"b"`
	Winner     string `json:"winner"`
	WasDefault bool   `json:"was_default"`
}

// runTournament seeds a single-elimination bracket over the collected
// answers and judges each matchup anonymously.
func runTournament(ctx context.Context, r *Run) (string, error) {
	r.Start("")
	judge := r.Config.String("judgeModel", r.Models[0])

	r.Emit("collect_start", PhaseCounts{})
	responses := r.Collect(ctx, "collect", r.Models, r.Turns(r.Question))
	r.Emit("collect_complete", PhaseCounts{Succeeded: len(responses), Failed: len(r.Models) - len(responses)})
	if len(responses) < 2 {
		return "", r.Fatal("a tournament needs at least 2 contestants")
	}

	byModel := make(map[string]string, len(responses))
	for _, sr := range responses {
		byModel[sr.Model] = sr.Response
	}

	contestants := modelsOf(responses)
	totalRounds := int(math.Ceil(math.Log2(float64(len(contestants)))))
	r.Emit("bracket", map[string]any{"contestants": contestants, "rounds": totalRounds})

	paths := make(map[string][]BracketStep, len(contestants))
	for round := 1; len(contestants) > 1; round++ {
		r.Emit("round_start", map[string]int{"round": round, "contestants": len(contestants)})
		var next []string
		var matchups []Matchup

		for i := 0; i < len(contestants); i += 2 {
			if i+1 >= len(contestants) {
				// Odd round size: the last contestant takes a bye.
				bye := contestants[i]
				next = append(next, bye)
				paths[bye] = append(paths[bye], BracketStep{Round: round, Result: "bye"})
				continue
			}
			a, b := contestants[i], contestants[i+1]
			winner, wasDefault := judgeMatchup(ctx, r, judge, round, a, b, byModel)
			loser := b
			if winner == b {
				loser = a
			}
			paths[winner] = append(paths[winner], BracketStep{Round: round, Opponent: loser, Result: "won"})
			next = append(next, winner)
			matchups = append(matchups, Matchup{Round: round, A: a, B: b, Winner: winner, WasDefault: wasDefault})
		}

		contestants = next
		r.Emit("round_complete", map[string]any{"round": round, "matchups": matchups})
	}

	champion := contestants[0]
	r.Emit("winner", map[string]any{
		"model":    champion,
		"response": byModel[champion],
		"path":     paths[champion],
	})
	return byModel[champion], nil
}

// judgeMatchup runs one anonymized pairing. Parse failure retries once with
// the strict prompt, then falls to a uniformly random side. Judge transport
// failure retries once, then default-advances contestant A.
func judgeMatchup(ctx context.Context, r *Run, judge string, round int, a, b string, byModel map[string]string) (string, bool) {
	la := prompts.Labeled{Label: "Response A", Content: byModel[a]}
	lb := prompts.Labeled{Label: "Response B", Content: byModel[b]}
	stage := fmt.Sprintf("matchup_%d", round)

	queryFailures := 0
	for attempt := 0; attempt < 2; attempt++ {
		prompt := prompts.Matchup(r.Question, la, lb)
		if attempt > 0 {
			prompt = prompts.MatchupStrict(r.Question, la, lb)
		}
		res := r.GW.QueryOne(ctx, judge, prompt, r.Timeout)
		if res == nil {
			queryFailures++
			if queryFailures >= 2 {
				break
			}
			continue
		}
		label, ok := parse.MatchupWinner(res.Content)
		r.Record(stage, judge, "judge", res.Content, map[string]string{"winner": label}, res.ResponseTimeMS)
		if ok {
			if label == "Response B" {
				return b, false
			}
			return a, false
		}
	}

	if queryFailures >= 2 {
		// Judge unreachable: default-advance A.
		return a, true
	}
	// Format never parsed: uniform random side.
	if rand.Intn(2) == 1 {
		return b, true
	}
	return a, true
}
