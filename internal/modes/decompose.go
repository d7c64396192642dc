package modes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/quorum/internal/aggregate"
	"github.com/Dicklesworthstone/quorum/internal/parse"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
)

func init() { runners["decompose"] = runDecompose }

// TaskResult is one executed sub-task.
type TaskResult struct {
	Task           parse.Task `json:"task"`
	Worker         string     `json:"worker"`
	Output         string     `json:"output,omitempty"`
	Failed         bool       `json:"failed"`
	ResponseTimeMS int64      `json:"response_time_ms"`
}

// DecomposeStats summarizes the parallel execution.
type DecomposeStats struct {
	Waves                 int     `json:"waves"`
	Tasks                 int     `json:"tasks"`
	CriticalPathMS        int64   `json:"critical_path_ms"`
	ParallelismEfficiency float64 `json:"parallelism_efficiency"`
}

// runDecompose plans a task DAG, executes it in dependency waves with
// round-robin workers, and assembles the results.
func runDecompose(ctx context.Context, r *Run) (string, error) {
	r.Start("")
	planner := r.Config.String("plannerModel", r.Models[0])
	maxTasks := r.Config.Int("maxTasks", DefaultDecomposeMaxTasks)

	r.Emit("plan_start", PhaseCounts{})
	tasks, waves, err := planTasks(ctx, r, planner, maxTasks)
	if err != nil {
		return "", err
	}
	r.Emit("plan_complete", map[string]any{"tasks": tasks, "waves": len(waves)})

	r.Emit("execute_start", map[string]int{"waves": len(waves)})
	results, wallMS := executeWaves(ctx, r, tasks, waves)
	succeeded := 0
	for _, tr := range results {
		if !tr.Failed {
			succeeded++
		}
	}
	r.Emit("execute_complete", PhaseCounts{Succeeded: succeeded, Failed: len(results) - succeeded})
	if succeeded == 0 {
		return "", r.Fatal("every sub-task failed")
	}

	stats := decomposeStats(tasks, waves, results, wallMS)
	r.Emit("stats", stats)

	r.Emit("assemble_start", PhaseCounts{})
	doc := assembleTasks(ctx, r, tasks, results)
	r.Emit("assemble_complete", stats)
	return doc, nil
}

// planTasks runs the planner, truncates and cleans the task list, and
// resolves the DAG into waves. One cyclic plan earns a strict retry; a
// second cycle flattens every dependency into a single wave.
func planTasks(ctx context.Context, r *Run, planner string, maxTasks int) ([]parse.Task, [][]string, error) {
	var tasks []parse.Task
	for attempt := 0; attempt < 2; attempt++ {
		prompt := prompts.DecomposePlan(r.Question, maxTasks)
		if attempt > 0 {
			prompt = prompts.DecomposePlanRetry(r.Question, maxTasks)
		}
		res := r.GW.QueryOne(ctx, planner, prompt, r.Timeout)
		if res == nil {
			if attempt > 0 {
				break
			}
			continue
		}
		parsed := parse.ParseTasks(res.Content)
		if len(parsed) == 0 {
			r.Record("plan", planner, "planner", res.Content, nil, res.ResponseTimeMS)
			continue
		}
		if len(parsed) > maxTasks {
			parsed = parse.CleanDependencies(parsed[:maxTasks])
		}
		r.Record("plan", planner, "planner", res.Content, parsed, res.ResponseTimeMS)

		waves, err := aggregate.TopoWaves(taskIDs(parsed), taskDeps(parsed))
		var cycle *aggregate.ErrCycle
		if errors.As(err, &cycle) {
			r.Logger.Warn("plan contains a cycle", "attempt", attempt+1, "remaining", cycle.Remaining)
			tasks = parsed
			continue
		}
		return parsed, waves, nil
	}

	if tasks == nil {
		return nil, nil, r.Fatal("the planner produced no usable plan")
	}
	// Still cyclic after the retry: flatten to one wave.
	for i := range tasks {
		tasks[i].Dependencies = nil
	}
	r.Emit("plan_flattened", map[string]int{"tasks": len(tasks)})
	return tasks, [][]string{taskIDs(tasks)}, nil
}

// executeWaves runs waves strictly in order, tasks within a wave in
// parallel, workers round-robin in wave-iteration order.
func executeWaves(ctx context.Context, r *Run, tasks []parse.Task, waves [][]string) (map[string]TaskResult, int64) {
	byID := make(map[string]parse.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	results := make(map[string]TaskResult, len(tasks))
	var wallMS int64
	worker := 0

	for wi, wave := range waves {
		r.Emit("wave_start", map[string]any{"wave": wi + 1, "tasks": wave})
		calls := make([]ModelCall, 0, len(wave))
		assigned := make(map[string]string, len(wave))
		for _, id := range wave {
			task := byID[id]
			model := r.Models[worker%len(r.Models)]
			worker++
			assigned[id] = model

			var preds []prompts.PredecessorOutput
			for _, dep := range task.Dependencies {
				tr := results[dep]
				preds = append(preds, prompts.PredecessorOutput{Task: byID[dep], Output: tr.Output, Failed: tr.Failed})
			}
			calls = append(calls, ModelCall{Key: id, Model: model, Prompt: prompts.DecomposeWorker(r.Question, task, preds)})
		}

		waveResults := r.FanOut(ctx, calls)
		var waveMax int64
		for _, id := range wave {
			res := waveResults[id]
			tr := TaskResult{Task: byID[id], Worker: assigned[id], Failed: res == nil}
			if res != nil {
				tr.Output = res.Content
				tr.ResponseTimeMS = res.ResponseTimeMS
				if res.ResponseTimeMS > waveMax {
					waveMax = res.ResponseTimeMS
				}
				r.Record("execute", assigned[id], "worker", res.Content,
					map[string]string{"task": id, "title": byID[id].Title}, res.ResponseTimeMS)
			}
			results[id] = tr
		}
		wallMS += waveMax
		r.Emit("wave_complete", map[string]any{"wave": wi + 1})
	}
	return results, wallMS
}

// assembleTasks runs the assembler, falling back to concatenation with a
// missing-tasks block.
func assembleTasks(ctx context.Context, r *Run, tasks []parse.Task, results map[string]TaskResult) string {
	var outputs []prompts.Labeled
	var failed []string
	for _, t := range tasks {
		tr := results[t.ID]
		if tr.Failed {
			failed = append(failed, fmt.Sprintf("%s: %s", t.ID, t.Title))
			continue
		}
		outputs = append(outputs, prompts.Labeled{Label: fmt.Sprintf("%s: %s", t.ID, t.Title), Content: tr.Output})
	}

	assembler := r.Config.String("assemblerModel", r.Models[0])
	res := r.GW.QueryOne(ctx, assembler, prompts.DecomposeAssembly(r.Question, tasks, outputs, failed), r.Timeout)
	if res != nil {
		r.Record("assemble", assembler, "assembler", res.Content, nil, res.ResponseTimeMS)
		return res.Content
	}

	r.Logger.Warn("assembler failed, concatenating task outputs", "tasks", len(tasks))
	var b strings.Builder
	for _, t := range tasks {
		tr := results[t.ID]
		if tr.Failed {
			continue
		}
		fmt.Fprintf(&b, "## %s: %s\n\n%s\n\n", t.ID, t.Title, tr.Output)
	}
	if len(failed) > 0 {
		b.WriteString("## Missing Sub-Tasks\n\n")
		for _, f := range failed {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	doc := strings.TrimRight(b.String(), "\n")
	r.Record("assemble", "", "assembler", doc, map[string]string{"fallback": "concatenation"}, 0)
	return doc
}

// decomposeStats computes the critical-path latency and parallelism
// efficiency of the executed DAG.
func decomposeStats(tasks []parse.Task, waves [][]string, results map[string]TaskResult, wallMS int64) DecomposeStats {
	stats := DecomposeStats{Waves: len(waves), Tasks: len(tasks)}

	path := aggregate.CriticalPath(waves, taskDeps(tasks))
	for _, id := range path {
		stats.CriticalPathMS += results[id].ResponseTimeMS
	}

	var totalMS int64
	for _, tr := range results {
		totalMS += tr.ResponseTimeMS
	}
	if wallMS > 0 {
		stats.ParallelismEfficiency = aggregate.Round(float64(totalMS)/float64(wallMS), 2)
	}
	return stats
}

func taskIDs(tasks []parse.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func taskDeps(tasks []parse.Task) map[string][]string {
	out := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		out[t.ID] = t.Dependencies
	}
	return out
}
