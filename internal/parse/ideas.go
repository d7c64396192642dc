package parse

import (
	"fmt"
	"regexp"
	"strings"
)

// Cluster promise levels.
var PromiseLevels = []string{"HIGH", "MEDIUM", "LOW"}

// Idea is one brainstormed idea with its deterministic id and source label.
type Idea struct {
	// ID is model_{i}_idea_{n} where i is the source model's position.
	ID    string `json:"id"`
	Label string `json:"label"` // "Model A", "Model B", ...
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

// Cluster groups ideas under a theme.
type Cluster struct {
	Number  int      `json:"number"`
	Name    string   `json:"name"`
	Theme   string   `json:"theme,omitempty"`
	Promise string   `json:"promise"`
	IdeaIDs []string `json:"idea_ids"`
}

// ClusterScore is one scorer's 1-5 ratings for one cluster.
type ClusterScore struct {
	ClusterNumber int     `json:"cluster_number"`
	Novelty       float64 `json:"novelty"`
	Feasibility   float64 `json:"feasibility"`
	Impact        float64 `json:"impact"`
}

var (
	ideaHeadRe    = regexp.MustCompile(`(?im)^\s*IDEA\s+(\d+)\s*:\s*(.*)$`)
	clusterHeadRe = regexp.MustCompile(`(?im)^\s*CLUSTER\s+(\d+)\s*:`)
	scoreLineRe   = regexp.MustCompile(`(?i)Novelty\s*=\s*(\d+(?:\.\d+)?)\s+Feasibility\s*=\s*(\d+(?:\.\d+)?)\s+Impact\s*=\s*(\d+(?:\.\d+)?)`)
	clusterRefRe  = regexp.MustCompile(`(?i)CLUSTER\s+(\d+)`)
)

// Ideas extracts IDEA blocks from one model's reply. modelIndex fixes the
// deterministic id prefix and label.
func Ideas(text string, modelIndex int) []Idea {
	clean := stripBold(text)
	heads := ideaHeadRe.FindAllStringSubmatchIndex(clean, -1)
	label := "Model " + letters(modelIndex)
	out := make([]Idea, 0, len(heads))

	for i, head := range heads {
		end := len(clean)
		if i+1 < len(heads) {
			end = heads[i+1][0]
		}
		n := strings.TrimSpace(clean[head[2]:head[3]])
		out = append(out, Idea{
			ID:    fmt.Sprintf("model_%d_idea_%s", modelIndex, n),
			Label: label,
			Title: strings.TrimSpace(clean[head[4]:head[5]]),
			Body:  strings.TrimSpace(clean[head[1]:end]),
		})
	}
	return out
}

func letters(i int) string {
	s := ""
	for {
		s = string(rune('A'+i%26)) + s
		i = i/26 - 1
		if i < 0 {
			return s
		}
	}
}

// Clusters extracts CLUSTER blocks from the curator's reply. Idea ids not
// in known are dropped; clusters left empty after resolution are dropped.
func Clusters(text string, known map[string]bool) []Cluster {
	clean := stripBold(text)
	heads := clusterHeadRe.FindAllStringSubmatchIndex(clean, -1)
	var out []Cluster

	for i, head := range heads {
		end := len(clean)
		if i+1 < len(heads) {
			end = heads[i+1][0]
		}
		block := clean[head[1]:end]

		c := Cluster{Promise: "MEDIUM"}
		fmt.Sscanf(clean[head[2]:head[3]], "%d", &c.Number)
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if v, ok := fieldValue(line, "Name"); ok {
				c.Name = v
			} else if v, ok := fieldValue(line, "Theme"); ok {
				c.Theme = v
			} else if v, ok := fieldValue(line, "Promise"); ok {
				c.Promise = coerceSeverity(v, PromiseLevels, "MEDIUM")
			} else if v, ok := fieldValue(line, "Ideas"); ok {
				for _, id := range splitCSV(v) {
					if known[id] {
						c.IdeaIDs = append(c.IdeaIDs, id)
					}
				}
			}
		}
		if len(c.IdeaIDs) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// ClusterScores extracts one scorer's per-cluster ratings. Each rated line
// references "CLUSTER n" and carries Novelty=x Feasibility=y Impact=z;
// values clamp to 1-5.
func ClusterScores(text string) []ClusterScore {
	var out []ClusterScore
	for _, line := range lines(text) {
		m := scoreLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		ref := clusterRefRe.FindStringSubmatch(line)
		if ref == nil {
			continue
		}
		var s ClusterScore
		fmt.Sscanf(ref[1], "%d", &s.ClusterNumber)
		n, _ := firstNumber(m[1])
		f, _ := firstNumber(m[2])
		imp, _ := firstNumber(m[3])
		s.Novelty = clamp(n, 1, 5)
		s.Feasibility = clamp(f, 1, 5)
		s.Impact = clamp(imp, 1, 5)
		out = append(out, s)
	}
	return out
}
