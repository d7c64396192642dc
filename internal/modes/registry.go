// Package modes holds the fifteen deliberation pipelines: one runner per
// mode, the process-wide mode registry, and the dispatcher that validates
// requests, routes them to a runner, and appends the shared terminal events.
package modes

import "time"

// Definition is one immutable registry entry.
type Definition struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Family              string        `json:"family"`
	MinModels           int           `json:"min_models"`
	MaxModels           int           `json:"max_models"`
	SpecialRole         string        `json:"requires_special_role,omitempty"`
	SupportsMultiTurn   bool          `json:"supports_multi_turn"`
	EstimatedDurationMS int64         `json:"estimated_duration_ms"`
	DefaultTimeout      time.Duration `json:"-"`
}

// Registry is the process-wide mode table, in display order.
var Registry = []Definition{
	{ID: "council", Name: "Council", Family: "synthesis", MinModels: 2, MaxModels: 8, SpecialRole: "chairman", SupportsMultiTurn: true, EstimatedDurationMS: 90000, DefaultTimeout: 120 * time.Second},
	{ID: "vote", Name: "Blind Vote", Family: "selection", MinModels: 2, MaxModels: 8, SpecialRole: "chairman", SupportsMultiTurn: true, EstimatedDurationMS: 60000, DefaultTimeout: 120 * time.Second},
	{ID: "jury", Name: "Jury", Family: "judgment", MinModels: 3, MaxModels: 6, SpecialRole: "foreman", EstimatedDurationMS: 90000, DefaultTimeout: 120 * time.Second},
	{ID: "debate", Name: "Debate", Family: "selection", MinModels: 2, MaxModels: 6, EstimatedDurationMS: 120000, DefaultTimeout: 120 * time.Second},
	{ID: "delphi", Name: "Delphi Panel", Family: "consensus", MinModels: 3, MaxModels: 8, SpecialRole: "facilitator", EstimatedDurationMS: 180000, DefaultTimeout: 120 * time.Second},
	{ID: "redteam", Name: "Red Team", Family: "adversarial", MinModels: 2, MaxModels: 6, SpecialRole: "synthesizer", EstimatedDurationMS: 180000, DefaultTimeout: 120 * time.Second},
	{ID: "chain", Name: "Relay Chain", Family: "refinement", MinModels: 2, MaxModels: 8, EstimatedDurationMS: 120000, DefaultTimeout: 120 * time.Second},
	{ID: "panel", Name: "Specialist Panel", Family: "synthesis", MinModels: 2, MaxModels: 6, SpecialRole: "synthesizer", EstimatedDurationMS: 90000, DefaultTimeout: 120 * time.Second},
	{ID: "blueprint", Name: "Blueprint", Family: "composition", MinModels: 3, MaxModels: 8, SpecialRole: "architect", EstimatedDurationMS: 240000, DefaultTimeout: 180 * time.Second},
	{ID: "review", Name: "Peer Review", Family: "judgment", MinModels: 2, MaxModels: 6, SpecialRole: "consolidator", EstimatedDurationMS: 90000, DefaultTimeout: 120 * time.Second},
	{ID: "tournament", Name: "Tournament", Family: "selection", MinModels: 2, MaxModels: 16, SpecialRole: "judge", EstimatedDurationMS: 150000, DefaultTimeout: 120 * time.Second},
	{ID: "confidence", Name: "Confidence-Weighted", Family: "synthesis", MinModels: 2, MaxModels: 8, SpecialRole: "synthesizer", SupportsMultiTurn: true, EstimatedDurationMS: 60000, DefaultTimeout: 120 * time.Second},
	{ID: "decompose", Name: "Decompose", Family: "composition", MinModels: 2, MaxModels: 8, SpecialRole: "planner", EstimatedDurationMS: 240000, DefaultTimeout: 180 * time.Second},
	{ID: "brainstorm", Name: "Brainstorm", Family: "ideation", MinModels: 2, MaxModels: 6, SpecialRole: "curator", EstimatedDurationMS: 120000, DefaultTimeout: 120 * time.Second},
	{ID: "factcheck", Name: "Fact-Check", Family: "verification", MinModels: 2, MaxModels: 6, SpecialRole: "reporter", EstimatedDurationMS: 120000, DefaultTimeout: 120 * time.Second},
}

// Lookup finds a mode definition by id.
func Lookup(id string) (Definition, bool) {
	for _, d := range Registry {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Per-mode tunable defaults, overridable through the mode config bag.
const (
	DefaultDelphiMaxRounds            = 3
	DefaultDelphiNumericThreshold     = 0.15
	DefaultDelphiQualitativeThreshold = 75.0 // percent agreement
	DefaultRedTeamRounds              = 2
	DefaultDecomposeMaxTasks          = 8
	DefaultBrainstormMaxClusters      = 5
	DefaultFactCheckMaxClaims         = 10
	DefaultFactCheckMaxContentLength  = 8000
	DefaultSoftmaxTemperature         = 1.0
)
