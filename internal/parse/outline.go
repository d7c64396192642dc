package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// Section lengths used by blueprint outlines.
var SectionLengths = []string{"Short", "Medium", "Long"}

// Outline is the architect's parsed document plan.
type Outline struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Section is one planned document section.
type Section struct {
	Number      int      `json:"number"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	KeyTopics   []string `json:"key_topics,omitempty"`
	Length      string   `json:"length"`
	Coverage    string   `json:"coverage,omitempty"`
}

var (
	docTitleRe    = regexp.MustCompile(`(?im)^\s*DOCUMENT\s+TITLE\s*:\s*(.+)$`)
	sectionHeadRe = regexp.MustCompile(`(?im)^\s*SECTION\s+(\d+)\s*:\s*(.*)$`)
)

// ParseOutline extracts the document title and SECTION blocks. Callers
// apply the count policies (error under 3, truncate over 20, wrap raw text
// when zero parse but non-empty).
func ParseOutline(text string) Outline {
	clean := stripBold(text)
	var o Outline

	if m := docTitleRe.FindStringSubmatch(clean); m != nil {
		o.Title = strings.TrimSpace(m[1])
	}

	heads := sectionHeadRe.FindAllStringSubmatchIndex(clean, -1)
	for i, head := range heads {
		end := len(clean)
		if i+1 < len(heads) {
			end = heads[i+1][0]
		}
		block := clean[head[1]:end]

		num, _ := strconv.Atoi(clean[head[2]:head[3]])
		s := Section{
			Number: num,
			Name:   strings.TrimSpace(clean[head[4]:head[5]]),
			Length: "Medium",
		}

		var inTopics bool
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if v, ok := fieldValue(line, "Description"); ok {
				s.Description = v
				inTopics = false
				continue
			}
			if v, ok := fieldValue(line, "Key Topics"); ok {
				inTopics = true
				if v != "" {
					s.KeyTopics = append(s.KeyTopics, splitCSV(v)...)
				}
				continue
			}
			if v, ok := fieldValue(line, "Length"); ok {
				s.Length = coerceLength(v)
				inTopics = false
				continue
			}
			if v, ok := fieldValue(line, "Source Coverage"); ok {
				s.Coverage = v
				inTopics = false
				continue
			}
			if inTopics && strings.HasPrefix(line, "-") {
				if topic := strings.TrimSpace(strings.TrimPrefix(line, "-")); topic != "" {
					s.KeyTopics = append(s.KeyTopics, topic)
				}
			}
		}
		o.Sections = append(o.Sections, s)
	}
	return o
}

func coerceLength(raw string) string {
	for _, l := range SectionLengths {
		if strings.EqualFold(strings.TrimSpace(raw), l) {
			return l
		}
	}
	return "Medium"
}
