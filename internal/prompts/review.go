package prompts

import (
	"fmt"
	"strings"
)

// RubricCriterion is one weighted scoring criterion.
type RubricCriterion struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
}

// Rubric parameterizes the peer-review prompt.
type Rubric struct {
	Name     string            `json:"name"`
	Criteria []RubricCriterion `json:"criteria"`
}

// RubricLibrary holds the predefined rubric families, keyed by review type.
var RubricLibrary = map[string]Rubric{
	"general": {
		Name: "General Review",
		Criteria: []RubricCriterion{
			{Name: "Correctness", Weight: 0.35, Description: "factual and logical accuracy"},
			{Name: "Completeness", Weight: 0.25, Description: "covers the whole question"},
			{Name: "Clarity", Weight: 0.2, Description: "structure and readability"},
			{Name: "Usefulness", Weight: 0.2, Description: "actionable for the asker"},
		},
	},
	"code": {
		Name: "Code Review",
		Criteria: []RubricCriterion{
			{Name: "Correctness", Weight: 0.4, Description: "does what it claims, handles edge cases"},
			{Name: "Safety", Weight: 0.25, Description: "error handling, input validation"},
			{Name: "Readability", Weight: 0.2, Description: "naming, structure, comments"},
			{Name: "Performance", Weight: 0.15, Description: "algorithmic and resource cost"},
		},
	},
	"document": {
		Name: "Document Review",
		Criteria: []RubricCriterion{
			{Name: "Accuracy", Weight: 0.35, Description: "claims are supported"},
			{Name: "Structure", Weight: 0.25, Description: "logical flow and organization"},
			{Name: "Style", Weight: 0.2, Description: "tone and concision"},
			{Name: "Audience fit", Weight: 0.2, Description: "matched to the intended reader"},
		},
	},
}

const reviewerTemplate = `You are peer-reviewing the work below against the "%s" rubric.

Work under review:
%s

Score every criterion from 1 to 10 in a markdown table with the given weights:

| Criterion | Score | Weight | Justification |
|-----------|-------|--------|---------------|
%s

Then report concrete issues as numbered blocks:

FINDING 1 (CRITICAL|MAJOR|MINOR|SUGGESTION): one-line summary
Details.`

// Reviewer builds a rubric-parameterized reviewer prompt.
func Reviewer(rubric Rubric, content string) string {
	var rows strings.Builder
	for _, c := range rubric.Criteria {
		fmt.Fprintf(&rows, "| %s | N | %d%% | %s |\n", c.Name, int(c.Weight*100+0.5), c.Description)
	}
	return fmt.Sprintf(reviewerTemplate, rubric.Name, content, strings.TrimRight(rows.String(), "\n"))
}

const consolidationTemplate = `You are consolidating independent peer reviews of this work:

%s

Reviews:

%s

Per-criterion consensus across reviewers:
%s

Write the consolidated review: overall judgment, the criteria where reviewers agree and disagree, and a prioritized list of required changes ordered by finding severity.`

// ReviewConsolidation builds the consolidator prompt from raw reviews plus
// the computed per-criterion consensus summary.
func ReviewConsolidation(content string, reviews []Labeled, consensusSummary string) string {
	return fmt.Sprintf(consolidationTemplate, content, renderLabeled(reviews), consensusSummary)
}
