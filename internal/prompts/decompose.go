package prompts

import (
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/quorum/internal/parse"
)

const planTemplate = `You are planning how to split this request into parallelizable sub-tasks:

%s

Produce at most %d tasks. Reply in exactly this format:

TASK task_1:
Title: <short title>
Description: <what to do>
Dependencies: none
Complexity: LOW or MEDIUM or HIGH
Expertise: <domain>

TASK task_2:
Title: ...
Dependencies: task_1
...

Dependencies must reference earlier task ids or "none".`

// DecomposePlan builds the planner prompt.
func DecomposePlan(request string, maxTasks int) string {
	return fmt.Sprintf(planTemplate, request, maxTasks)
}

const planRetryTemplate = `%s

IMPORTANT: your previous plan contained a dependency cycle. The dependency graph MUST be a DAG: a task may only depend on tasks that can complete before it. Re-plan with acyclic dependencies.`

// DecomposePlanRetry builds the strict re-plan prompt after cycle detection.
func DecomposePlanRetry(request string, maxTasks int) string {
	return fmt.Sprintf(planRetryTemplate, DecomposePlan(request, maxTasks))
}

// PredecessorOutput carries one dependency's result into a worker prompt.
type PredecessorOutput struct {
	Task   parse.Task
	Output string
	Failed bool
}

const workerTemplate = `You are executing one sub-task of a larger plan.

Overall request:
%s

Your task (%s): %s
%s
%s
Complete your task. Output only your task's result.`

// DecomposeWorker builds a worker prompt: the assigned task plus the outputs
// of its predecessors, with failure notes for predecessors that failed.
func DecomposeWorker(request string, task parse.Task, preds []PredecessorOutput) string {
	var desc string
	if task.Description != "" {
		desc = task.Description + "\n"
	}
	var b strings.Builder
	if len(preds) > 0 {
		b.WriteString("Results from tasks yours depends on:\n\n")
		for _, p := range preds {
			if p.Failed {
				fmt.Fprintf(&b, "--- %s: %s (FAILED, no output; work around the gap) ---\n\n", p.Task.ID, p.Task.Title)
				continue
			}
			fmt.Fprintf(&b, "--- %s: %s ---\n%s\n\n", p.Task.ID, p.Task.Title, p.Output)
		}
	}
	return fmt.Sprintf(workerTemplate, request, task.ID, task.Title, desc, b.String())
}

const decomposeAssemblyTemplate = `You are assembling the results of a decomposed plan into one answer.

Overall request:
%s

The plan:
%s

Task results:

%s
%s
Merge everything into one coherent final answer to the original request.`

// DecomposeAssembly builds the assembler prompt. failed lists tasks with no
// output.
func DecomposeAssembly(request string, tasks []parse.Task, results []Labeled, failed []string) string {
	var plan strings.Builder
	for _, t := range tasks {
		deps := "none"
		if len(t.Dependencies) > 0 {
			deps = strings.Join(t.Dependencies, ", ")
		}
		fmt.Fprintf(&plan, "- %s: %s (depends on %s)\n", t.ID, t.Title, deps)
	}
	var note string
	if len(failed) > 0 {
		note = "\nThese tasks produced no output; account for the gaps:\n" + bullets(failed) + "\n"
	}
	return fmt.Sprintf(decomposeAssemblyTemplate, request,
		strings.TrimRight(plan.String(), "\n"), renderLabeled(results), note)
}
