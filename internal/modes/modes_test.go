package modes

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Dicklesworthstone/quorum/internal/events"
	"github.com/Dicklesworthstone/quorum/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGW replays scripted responses per model, in call order. The marker
// respFail simulates a gateway failure (nil result).
const respFail = "<fail>"

type fakeGW struct {
	mu     sync.Mutex
	queues map[string][]string
}

func newFakeGW(queues map[string][]string) *fakeGW {
	return &fakeGW{queues: queues}
}

func (f *fakeGW) pop(model string) *gateway.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.queues[model]
	if len(q) == 0 {
		return nil
	}
	f.queues[model] = q[1:]
	if q[0] == respFail {
		return nil
	}
	return &gateway.Result{Content: q[0], ResponseTimeMS: 10}
}

func (f *fakeGW) QueryOne(_ context.Context, model, _ string, _ time.Duration) *gateway.Result {
	return f.pop(model)
}

func (f *fakeGW) QueryOneWithMessages(_ context.Context, model string, _ []gateway.Turn, _ time.Duration) *gateway.Result {
	return f.pop(model)
}

func (f *fakeGW) QueryMany(_ context.Context, models []string, _ string, _ time.Duration) map[string]*gateway.Result {
	out := make(map[string]*gateway.Result, len(models))
	for _, m := range models {
		out[m] = f.pop(m)
	}
	return out
}

func (f *fakeGW) QueryManyWithMessages(_ context.Context, models []string, _ []gateway.Turn, _ time.Duration) map[string]*gateway.Result {
	return f.QueryMany(context.Background(), models, "", 0)
}

func newTestRun(t *testing.T, mode string, models []string, cfg Config, gw Gateway) (*Run, *events.Recorder) {
	t.Helper()
	def, ok := Lookup(mode)
	require.True(t, ok, mode)
	if cfg == nil {
		cfg = Config{}
	}
	cfg["models"] = models
	rec := &events.Recorder{}
	return NewRun(def, "the question", "conv-1", "msg-1", nil, cfg, gw, rec, nil), rec
}

func stageParsed(r *Run, stageType, model string) any {
	for _, s := range r.Stages() {
		if s.StageType == stageType && s.Model == model {
			return s.ParsedData
		}
	}
	return nil
}

func TestCouncilHappyPath(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {"Answer one", "FINAL RANKING:\n1. Response A\n2. Response B", "Final synthesis"},
		"m2": {"Answer two", "FINAL RANKING:\n1. Response B\n2. Response A"},
	})
	r, rec := newTestRun(t, "council", []string{"m1", "m2"}, nil, gw)

	answer, err := runCouncil(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "Final synthesis", answer)

	types := rec.Types()
	assert.Equal(t, "council_start", types[0])
	assert.Contains(t, types, "rank_complete")
	assert.Equal(t, "synthesize_complete", types[len(types)-1])

	// One collect record per model, one rank record per rater, one synthesis.
	byType := map[string]int{}
	for _, s := range r.Stages() {
		byType[s.StageType]++
	}
	assert.Equal(t, 2, byType["collect"])
	assert.Equal(t, 2, byType["rank"])
	assert.Equal(t, 1, byType["synthesize"])
}

func TestCouncilFatalOnEmptyCollect(t *testing.T) {
	gw := newFakeGW(map[string][]string{"m1": {respFail}, "m2": {respFail}})
	r, rec := newTestRun(t, "council", []string{"m1", "m2"}, nil, gw)

	_, err := runCouncil(context.Background(), r)
	require.Error(t, err)
	types := rec.Types()
	assert.Equal(t, "error", types[len(types)-1])
}

func TestVoteThreeWayTieBrokenByChairman(t *testing.T) {
	// Labels follow collect order: m1=A, m2=B, m3=C. Votes A→B, B→A, C→C.
	gw := newFakeGW(map[string][]string{
		"m1": {"A1", "VOTE: Response B", "VOTE: Response B"},
		"m2": {"B1", "VOTE: Response A"},
		"m3": {"C1", "VOTE: Response C"},
	})
	r, rec := newTestRun(t, "vote", []string{"m1", "m2", "m3"}, nil, gw)

	answer, err := runVote(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "B1", answer)

	var winner VoteOutcome
	for _, e := range rec.Events() {
		if e.Type == "winner" {
			winner = e.Data.(VoteOutcome)
		}
	}
	assert.True(t, winner.Tiebroken)
	assert.Equal(t, "m2", winner.Model)
	assert.Equal(t, "Response B", winner.Label)
}

func TestVoteTieFallsToAlphabeticalAfterChairmanFailures(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {"A1", "VOTE: Response B", respFail, respFail},
		"m2": {"B1", "VOTE: Response A"},
	})
	r, _ := newTestRun(t, "vote", []string{"m1", "m2"}, nil, gw)

	answer, err := runVote(context.Background(), r)
	require.NoError(t, err)
	// Tied A/B; chairman unreachable; alphabetically first is Response A.
	assert.Equal(t, "A1", answer)
}

func TestDebateCarriesOriginalOnParseFailure(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {"Orig1", "DECISION: REVISE\nRev1", "VOTE: Response A"},
		"m2": {"Orig2", "no decision header here", "VOTE: Response A"},
	})
	r, _ := newTestRun(t, "debate", []string{"m1", "m2"}, nil, gw)

	answer, err := runDebate(context.Background(), r)
	require.NoError(t, err)
	// The vote map is shuffled, so Response A may be either debater.
	assert.Contains(t, []string{"Rev1", "Orig2"}, answer)

	rev := stageParsed(r, "revision", "m2").(DebateRevision)
	assert.False(t, rev.ParseSuccess)
	assert.Equal(t, "Orig2", rev.Response)
	assert.Zero(t, rev.ChangeRatio)

	rev1 := stageParsed(r, "revision", "m1").(DebateRevision)
	assert.True(t, rev1.ParseSuccess)
	assert.Equal(t, "Rev1", rev1.Response)
	assert.Greater(t, rev1.ChangeRatio, 0.0)
}

func TestJuryTieResolvesToRevise(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {"Accuracy: 8\nVERDICT: APPROVE", "The jury is split."},
		"m2": {"Accuracy: 4\nVERDICT: REJECT"},
		"m3": {"no scores at all"},
	})
	r, rec := newTestRun(t, "jury", []string{"m1", "m2", "m3"}, Config{"content": "the work"}, gw)

	answer, err := runJury(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "The jury is split.", answer)

	for _, e := range rec.Events() {
		if e.Type == "verdict_complete" {
			// APPROVE/REJECT tie resolves to REVISE; the foreman text has no
			// verdict line so the computed majority stands.
			assert.Equal(t, map[string]string{"verdict": "REVISE"}, e.Data)
		}
	}
}

func TestDelphiConvergesInRoundTwo(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {"TYPE: NUMERIC", "ESTIMATE: 100", "ESTIMATE: 130", "Panel report"},
		"m2": {"ESTIMATE: 150", "ESTIMATE: 140"},
		"m3": {"ESTIMATE: 120", "ESTIMATE: 135"},
		"m4": {"ESTIMATE: 300", "ESTIMATE: 145"},
	})
	r, rec := newTestRun(t, "delphi", []string{"m1", "m2", "m3", "m4"}, nil, gw)

	answer, err := runDelphi(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "Panel report", answer)

	var roundEvents []RoundStats
	for _, e := range rec.Events() {
		if e.Type == "round_complete" {
			roundEvents = append(roundEvents, e.Data.(RoundStats))
		}
	}
	require.Len(t, roundEvents, 2)
	assert.False(t, roundEvents[0].Converged)
	assert.True(t, roundEvents[1].Converged)
	assert.Equal(t, 137.5, roundEvents[1].Numeric.Median)
}

func TestDelphiFatalUnderThreePanelists(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {"TYPE: NUMERIC", "ESTIMATE: 100"},
		"m2": {"ESTIMATE: 150"},
		"m3": {respFail},
	})
	r, _ := newTestRun(t, "delphi", []string{"m1", "m2", "m3"}, nil, gw)

	_, err := runDelphi(context.Background(), r)
	require.Error(t, err)
}

func TestRedTeamAcceptRevisesContent(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {
			"Initial content",
			"RESPONSE TO FINDING 1:\nVERDICT: ACCEPT\nRevised: Fixed content",
			"Hardened final",
		},
		"m2": {
			"FINDING 1 (HIGH): unsupported claim\nDetails.",
			"No findings.",
		},
	})
	r, rec := newTestRun(t, "redteam", []string{"m1", "m2"}, nil, gw)

	answer, err := runRedTeam(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "Hardened final", answer)

	for _, e := range rec.Events() {
		if e.Type == "synthesize_complete" {
			data := e.Data.(map[string]any)
			assert.Equal(t, "HIGH", data["overall_risk"])
		}
	}
}

func TestChainSkipsFailedStepAndDefersMandate(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {"Draft text"},
		"m2": {respFail},
		"m3": {"Final text"},
	})
	r, rec := newTestRun(t, "chain", []string{"m1", "m2", "m3"}, nil, gw)

	answer, err := runChain(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "Final text", answer)

	skipped := 0
	for _, e := range rec.Events() {
		if e.Type == "step_complete" {
			if data := e.Data.(map[string]any); data["skipped"] == true {
				skipped++
			}
		}
	}
	assert.Equal(t, 1, skipped)
}

func TestChainFatalWhenDraftFails(t *testing.T) {
	gw := newFakeGW(map[string][]string{"m1": {respFail}, "m2": {"never reached"}})
	r, _ := newTestRun(t, "chain", []string{"m1", "m2"}, nil, gw)

	_, err := runChain(context.Background(), r)
	require.Error(t, err)
}

func TestConfidenceSingleResponder(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {"My answer\nCONFIDENCE: 0.8"},
		"m2": {respFail},
	})
	r, rec := newTestRun(t, "confidence", []string{"m1", "m2"}, nil, gw)

	answer, err := runConfidence(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "My answer\nCONFIDENCE: 0.8", answer)

	for _, e := range rec.Events() {
		switch e.Type {
		case "weights":
			answers := e.Data.([]ConfidentAnswer)
			require.Len(t, answers, 1)
			assert.Equal(t, 1.0, answers[0].Weight)
		case "synthesis_complete":
			assert.Equal(t, map[string]any{"single": true}, e.Data)
		}
	}
}

func TestConfidenceWeightsSortedDescending(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {"weak answer\nCONFIDENCE: 0.2", "SYNTHESIS:\nCombined.\n\nCONFIDENCE CALIBRATION NOTES:\nnotes"},
		"m2": {"strong answer\nCONFIDENCE: 0.97"},
	})
	r, rec := newTestRun(t, "confidence", []string{"m1", "m2"}, nil, gw)

	answer, err := runConfidence(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "Combined.", answer)

	for _, e := range rec.Events() {
		if e.Type == "weights" {
			answers := e.Data.([]ConfidentAnswer)
			require.Len(t, answers, 2)
			assert.Equal(t, "m2", answers[0].Model)
			assert.Greater(t, answers[0].Weight, answers[1].Weight)
			assert.True(t, answers[0].Outlier) // 0.97 > 0.95
		}
	}
}

func TestTournamentByeAndUpset(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {"R1", "WINNER: Response A", "WINNER: Response B"},
		"m2": {"R2"},
		"m3": {"R3"},
	})
	r, rec := newTestRun(t, "tournament", []string{"m1", "m2", "m3"}, nil, gw)

	answer, err := runTournament(context.Background(), r)
	require.NoError(t, err)
	// Round 1: m1 beats m2, m3 takes the bye. Round 2: m3 beats m1.
	assert.Equal(t, "R3", answer)

	matchups := 0
	for _, e := range rec.Events() {
		if e.Type == "round_complete" {
			matchups += len(e.Data.(map[string]any)["matchups"].([]Matchup))
		}
		if e.Type == "winner" {
			data := e.Data.(map[string]any)
			path := data["path"].([]BracketStep)
			require.Len(t, path, 2)
			assert.Equal(t, "bye", path[0].Result)
			assert.Equal(t, "won", path[1].Result)
			assert.Equal(t, "m1", path[1].Opponent)
		}
	}
	// Total matchups = N - 1 minus byes.
	assert.Equal(t, 2, matchups)
}

func TestDecomposeCycleFlattensAfterRetry(t *testing.T) {
	cyclicPlan := `TASK task_1:
Title: One
Dependencies: task_2
Complexity: LOW

TASK task_2:
Title: Two
Dependencies: task_1
Complexity: LOW`
	gw := newFakeGW(map[string][]string{
		"m1": {cyclicPlan, cyclicPlan, "out one", "assembled doc"},
		"m2": {"out two"},
	})
	r, rec := newTestRun(t, "decompose", []string{"m1", "m2"}, nil, gw)

	answer, err := runDecompose(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "assembled doc", answer)

	types := rec.Types()
	assert.Contains(t, types, "plan_flattened")

	for _, e := range rec.Events() {
		if e.Type == "execute_complete" {
			assert.Equal(t, PhaseCounts{Succeeded: 2}, e.Data)
		}
	}
}

func TestBlueprintAuthorFailureFallsBackWithTODO(t *testing.T) {
	outline := `DOCUMENT TITLE: Plan

SECTION 1: One
Description: first
SECTION 2: Two
Description: second
SECTION 3: Three
Description: third`
	gw := newFakeGW(map[string][]string{
		"m1": {outline, "text one", respFail}, // architect, author s1, assembler fails
		"m2": {"text two"},
		"m3": {respFail}, // author of section 3 fails
	})
	r, _ := newTestRun(t, "blueprint", []string{"m1", "m2", "m3"}, nil, gw)

	answer, err := runBlueprint(context.Background(), r)
	require.NoError(t, err)
	assert.Contains(t, answer, "# Plan")
	assert.Contains(t, answer, "text one")
	assert.Contains(t, answer, "[TODO: Section 3 on Three needed]")
}

func TestBlueprintFatalOnTwoSectionOutline(t *testing.T) {
	outline := "SECTION 1: One\nDescription: a\nSECTION 2: Two\nDescription: b"
	gw := newFakeGW(map[string][]string{"m1": {outline}, "m2": nil, "m3": nil})
	r, _ := newTestRun(t, "blueprint", []string{"m1", "m2", "m3"}, nil, gw)

	_, err := runBlueprint(context.Background(), r)
	require.Error(t, err)
}

func TestPanelAssignsRolesRoundRobin(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {"| Threat model | 7 |\nreport one", "Unified panel answer"},
		"m2": {"| Latency | 8 |\nreport two"},
	})
	r, _ := newTestRun(t, "panel", []string{"m1", "m2"}, nil, gw)

	answer, err := runPanel(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "Unified panel answer", answer)

	roles := map[string]string{}
	for _, s := range r.Stages() {
		if s.StageType == "specialist" {
			roles[s.Model] = s.Role
		}
	}
	assert.Equal(t, "Security Specialist", roles["m1"])
	assert.Equal(t, "Performance Specialist", roles["m2"])
}

func TestReviewConsensusAgreementBands(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {"| Correctness | 8 | 35% | ok |\n| Completeness | 4 | 25% | thin |", "Consolidated review"},
		"m2": {"| Correctness | 8 | 35% | fine |\n| Completeness | 8 | 25% | full |"},
	})
	r, rec := newTestRun(t, "review", []string{"m1", "m2"}, nil, gw)

	answer, err := runReview(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "Consolidated review", answer)

	for _, e := range rec.Events() {
		if e.Type == "consensus" {
			consensus := e.Data.([]CriterionConsensus)
			byName := map[string]CriterionConsensus{}
			for _, c := range consensus {
				byName[c.Criterion] = c
			}
			assert.Equal(t, "High", byName["Correctness"].Agreement) // stddev 0
			assert.Equal(t, "Low", byName["Completeness"].Agreement) // stddev 2
		}
	}
}

func TestBrainstormClustersAndRefines(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {
			"IDEA 1: Alpha\nbody a\n\nIDEA 2: Beta\nbody b",
			"CLUSTER 1:\nName: First\nPromise: HIGH\nIdeas: model_0_idea_1, model_1_idea_1\n\nCLUSTER 2:\nName: Second\nPromise: LOW\nIdeas: model_0_idea_2",
			"CLUSTER 1: Novelty=5 Feasibility=4 Impact=5\nCLUSTER 2: Novelty=2 Feasibility=2 Impact=2",
			"Refined winning direction",
		},
		"m2": {
			"IDEA 1: Gamma\nbody c",
			"CLUSTER 1: Novelty=4 Feasibility=4 Impact=4\nCLUSTER 2: Novelty=1 Feasibility=1 Impact=1",
		},
	})
	r, rec := newTestRun(t, "brainstorm", []string{"m1", "m2"}, nil, gw)

	answer, err := runBrainstorm(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "Refined winning direction", answer)

	for _, e := range rec.Events() {
		if e.Type == "score_complete" {
			rankings, ok := e.Data.([]ClusterRanking)
			require.True(t, ok)
			assert.Equal(t, "First", rankings[0].Cluster.Name)
			assert.Equal(t, 2, rankings[0].Scorers)
		}
	}
}

func TestFactCheckNoClaimsShortCircuits(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {"just opinions here, nothing checkable"},
		"m2": nil,
	})
	r, rec := newTestRun(t, "factcheck", []string{"m1", "m2"}, Config{"contentToCheck": "some content"}, gw)

	answer, err := runFactCheck(context.Background(), r)
	require.NoError(t, err)
	assert.Contains(t, answer, "No verifiable claims")

	for _, e := range rec.Events() {
		if e.Type == "report_complete" {
			assert.Nil(t, e.Data.(map[string]any)["score"])
		}
	}
}

func TestFactCheckConsensusAndBiasWarning(t *testing.T) {
	gw := newFakeGW(map[string][]string{
		"m1": {
			"Generated content with claims",
			"CLAIM 1: The sky is green.\nType: TECHNICAL",
			"VERIFICATION claim_1: DISPUTED\nCorrection: The sky is blue.\nConfidence: HIGH",
			"Report text\nReliability Score: 20",
		},
		"m2": {"VERIFICATION claim_1: DISPUTED\nCorrection: The sky is blue.\nConfidence: HIGH"},
	})
	r, rec := newTestRun(t, "factcheck", []string{"m1", "m2"}, nil, gw)

	answer, err := runFactCheck(context.Background(), r)
	require.NoError(t, err)
	assert.Contains(t, answer, "Reliability Score: 20")

	evs := rec.Events()
	start := evs[0]
	assert.Equal(t, "factcheck_start", start.Type)
	assert.NotEmpty(t, start.Data.(StartData).Warning)

	for _, e := range evs {
		if e.Type == "report_complete" {
			assert.Equal(t, 20.0, e.Data.(map[string]any)["score"])
		}
	}
}
