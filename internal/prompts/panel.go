package prompts

import (
	"fmt"
	"strings"
)

// Role fixes a specialist's lens: what it prioritizes and scores.
type Role struct {
	Name       string   `json:"name"`
	Lens       string   `json:"lens"`
	Priorities []string `json:"priorities"`
	Criteria   []string `json:"criteria"`
}

// RoleLibrary is the built-in specialist roster, keyed by id.
var RoleLibrary = map[string]Role{
	"security": {
		Name:       "Security Specialist",
		Lens:       "attack surface, data exposure, and failure under adversarial input",
		Priorities: []string{"authentication and authorization", "input validation", "secrets handling"},
		Criteria:   []string{"Threat model", "Input validation", "Least privilege"},
	},
	"performance": {
		Name:       "Performance Specialist",
		Lens:       "latency, throughput, and resource cost at scale",
		Priorities: []string{"hot paths", "allocation and I/O cost", "scalability limits"},
		Criteria:   []string{"Latency", "Scalability", "Resource efficiency"},
	},
	"ux": {
		Name:       "User Experience Specialist",
		Lens:       "clarity, friction, and failure modes from the user's side",
		Priorities: []string{"comprehensibility", "error recovery", "accessibility"},
		Criteria:   []string{"Clarity", "Friction", "Error handling"},
	},
	"business": {
		Name:       "Business Specialist",
		Lens:       "cost, risk, and strategic fit",
		Priorities: []string{"cost of ownership", "time to value", "vendor and market risk"},
		Criteria:   []string{"Cost", "Risk", "Strategic fit"},
	},
	"quality": {
		Name:       "Quality Specialist",
		Lens:       "correctness, completeness, and maintainability",
		Priorities: []string{"factual accuracy", "coverage of the question", "internal consistency"},
		Criteria:   []string{"Correctness", "Completeness", "Consistency"},
	},
}

const specialistTemplate = `You are the %s on an expert panel. Your lens: %s.

Your priorities:
%s

Question under assessment:
%s

Write your assessment from your lens only. Include:

1. A criterion table scoring each of your criteria 1-10:

| Criterion | Score |
|-----------|-------|
%s

2. A section titled TOP RECOMMENDATIONS: with your three most important numbered recommendations.

3. A section titled KEY FINDINGS: with dash-item findings.`

// SpecialistReport builds a role-templated specialist prompt.
func SpecialistReport(role Role, question string) string {
	var rows strings.Builder
	for _, c := range role.Criteria {
		fmt.Fprintf(&rows, "| %s | N |\n", c)
	}
	return fmt.Sprintf(specialistTemplate, role.Name, role.Lens,
		bullets(role.Priorities), question, strings.TrimRight(rows.String(), "\n"))
}

const panelSynthesisTemplate = `You are synthesizing an expert panel's assessments of this question:

%s

Specialist reports:

%s

Write the panel's unified answer: reconcile conflicting recommendations, call out where the lenses disagree, and give a single prioritized action list.`

// PanelSynthesis builds the synthesizer prompt over named specialist reports.
func PanelSynthesis(question string, reports []Labeled) string {
	return fmt.Sprintf(panelSynthesisTemplate, question, renderLabeled(reports))
}
