package parse

import (
	"regexp"
	"strings"
)

// Task complexities.
var TaskComplexities = []string{"LOW", "MEDIUM", "HIGH"}

// Task is one planned sub-task in a decomposition.
type Task struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Complexity   string   `json:"complexity"`
	Expertise    string   `json:"expertise,omitempty"`
}

var taskHeadRe = regexp.MustCompile(`(?im)^\s*TASK\s+(task_\d+|\d+)\s*:`)

// ParseTasks extracts TASK blocks from a planner reply and cleans the
// dependency lists: self-references and references to unknown ids are
// dropped. Bare numeric ids normalize to task_N.
func ParseTasks(text string) []Task {
	clean := stripBold(text)
	heads := taskHeadRe.FindAllStringSubmatchIndex(clean, -1)
	tasks := make([]Task, 0, len(heads))

	for i, head := range heads {
		end := len(clean)
		if i+1 < len(heads) {
			end = heads[i+1][0]
		}
		block := clean[head[1]:end]

		t := Task{ID: normalizeTaskID(clean[head[2]:head[3]]), Complexity: "MEDIUM"}
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if v, ok := fieldValue(line, "Title"); ok {
				t.Title = v
			} else if v, ok := fieldValue(line, "Description"); ok {
				t.Description = v
			} else if v, ok := fieldValue(line, "Dependencies"); ok {
				if !strings.EqualFold(strings.TrimSpace(v), "none") {
					for _, dep := range splitCSV(v) {
						t.Dependencies = append(t.Dependencies, normalizeTaskID(dep))
					}
				}
			} else if v, ok := fieldValue(line, "Complexity"); ok {
				t.Complexity = coerceSeverity(v, TaskComplexities, "MEDIUM")
			} else if v, ok := fieldValue(line, "Expertise"); ok {
				t.Expertise = v
			}
		}
		tasks = append(tasks, t)
	}

	return CleanDependencies(tasks)
}

// CleanDependencies drops self-references and references to ids not in the
// task list. Call again after truncating tasks.
func CleanDependencies(tasks []Task) []Task {
	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = true
	}
	for i := range tasks {
		var deps []string
		for _, d := range tasks[i].Dependencies {
			if d != tasks[i].ID && known[d] {
				deps = append(deps, d)
			}
		}
		tasks[i].Dependencies = deps
	}
	return tasks
}

func normalizeTaskID(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, "task_") {
		return raw
	}
	return "task_" + raw
}
