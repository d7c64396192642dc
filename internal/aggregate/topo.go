package aggregate

import (
	"fmt"
	"sort"
)

// ErrCycle reports that a dependency graph is not a DAG.
type ErrCycle struct {
	// Remaining are the task ids that could not be scheduled.
	Remaining []string
}

func (e *ErrCycle) Error() string {
	return fmt.Sprintf("dependency cycle among %d tasks: %v", len(e.Remaining), e.Remaining)
}

// TopoWaves runs Kahn's algorithm over the dependency graph and groups tasks
// into waves: each wave holds every task whose predecessors are all in
// earlier waves. deps maps task id -> prerequisite ids. ids fixes the input
// order; within a wave that order is preserved. Returns ErrCycle when fewer
// than len(ids) tasks can be scheduled.
func TopoWaves(ids []string, deps map[string][]string) ([][]string, error) {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	indegree := make(map[string]int, len(ids))
	dependents := make(map[string][]string)
	for _, id := range ids {
		for _, d := range deps[id] {
			if !known[d] || d == id {
				continue
			}
			indegree[id]++
			dependents[d] = append(dependents[d], id)
		}
	}

	processed := 0
	done := make(map[string]bool, len(ids))
	var waves [][]string

	for processed < len(ids) {
		var wave []string
		for _, id := range ids {
			if !done[id] && indegree[id] == 0 {
				wave = append(wave, id)
			}
		}
		if len(wave) == 0 {
			var remaining []string
			for _, id := range ids {
				if !done[id] {
					remaining = append(remaining, id)
				}
			}
			sort.Strings(remaining)
			return waves, &ErrCycle{Remaining: remaining}
		}
		for _, id := range wave {
			done[id] = true
			processed++
			for _, dep := range dependents[id] {
				indegree[dep]--
			}
		}
		waves = append(waves, wave)
	}
	return waves, nil
}

// CriticalPath returns the longest dependency chain by node count, computed
// by DP in wave order. waves must be a valid TopoWaves result for deps.
func CriticalPath(waves [][]string, deps map[string][]string) []string {
	longest := make(map[string][]string)
	for _, wave := range waves {
		for _, id := range wave {
			var best []string
			for _, d := range deps[id] {
				if chain, ok := longest[d]; ok && len(chain) > len(best) {
					best = chain
				}
			}
			chain := make([]string, 0, len(best)+1)
			chain = append(chain, best...)
			chain = append(chain, id)
			longest[id] = chain
		}
	}

	var result []string
	for _, wave := range waves {
		for _, id := range wave {
			if chain := longest[id]; len(chain) > len(result) {
				result = chain
			}
		}
	}
	return result
}
