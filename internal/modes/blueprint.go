package modes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Dicklesworthstone/quorum/internal/parse"
	"github.com/Dicklesworthstone/quorum/internal/prompts"
)

func init() { runners["blueprint"] = runBlueprint }

// sectionResult is one authored section, successful or not.
type sectionResult struct {
	Section parse.Section
	Author  string
	Text    string
	Failed  bool
}

// runBlueprint plans a document, expands sections in parallel with
// round-robin authors, and assembles the result.
func runBlueprint(ctx context.Context, r *Run) (string, error) {
	r.Start("")
	architect := r.Config.String("architectModel", r.Models[0])

	r.Emit("outline_start", PhaseCounts{})
	res := r.GW.QueryOne(ctx, architect, prompts.BlueprintOutline(r.Question), r.Timeout)
	if res == nil {
		return "", r.Fatal("the architect produced no outline")
	}
	outline := parse.ParseOutline(res.Content)
	r.Record("outline", architect, "architect", res.Content, outline, res.ResponseTimeMS)

	switch {
	case len(outline.Sections) == 0 && strings.TrimSpace(res.Content) != "":
		// Unstructured outline: treat the whole text as one section.
		outline.Sections = []parse.Section{{
			Number:      1,
			Name:        "Full Document",
			Description: strings.TrimSpace(res.Content),
			Length:      "Long",
		}}
	case len(outline.Sections) < 3:
		return "", r.Fatal(fmt.Sprintf("outline has only %d section(s), need at least 3", len(outline.Sections)))
	case len(outline.Sections) > 20:
		outline.Sections = outline.Sections[:20]
	}
	r.Emit("outline_complete", outline)

	r.Emit("expansion_start", PhaseCounts{})
	sections := expandSections(ctx, r, outline)
	succeeded := 0
	for _, s := range sections {
		if !s.Failed {
			succeeded++
		}
	}
	r.Emit("expansion_complete", PhaseCounts{Succeeded: succeeded, Failed: len(sections) - succeeded})
	if succeeded == 0 {
		return "", r.Fatal("every section author failed")
	}

	r.Emit("assembly_start", PhaseCounts{})
	doc := assembleDocument(ctx, r, outline, sections)
	r.Emit("assembly_complete", map[string]string{"title": outline.Title})
	return doc, nil
}

// expandSections assigns authors round-robin and writes all sections in
// parallel.
func expandSections(ctx context.Context, r *Run, outline parse.Outline) []sectionResult {
	calls := make([]ModelCall, len(outline.Sections))
	authors := make([]string, len(outline.Sections))
	for i, section := range outline.Sections {
		author := r.Models[i%len(r.Models)]
		authors[i] = author
		calls[i] = ModelCall{
			Key:    fmt.Sprintf("section_%d", section.Number),
			Model:  author,
			Prompt: prompts.BlueprintAuthor(r.Question, outline, section),
		}
	}
	results := r.FanOut(ctx, calls)

	out := make([]sectionResult, len(outline.Sections))
	for i, section := range outline.Sections {
		res := results[fmt.Sprintf("section_%d", section.Number)]
		sr := sectionResult{Section: section, Author: authors[i], Failed: res == nil}
		if res != nil {
			sr.Text = res.Content
			r.Record("expansion", authors[i], "author", res.Content,
				map[string]any{"section": section.Number, "name": section.Name}, res.ResponseTimeMS)
		}
		out[i] = sr
	}
	return out
}

// assembleDocument runs the assembler, falling back to mechanical
// concatenation with TODO markers when it fails.
func assembleDocument(ctx context.Context, r *Run, outline parse.Outline, sections []sectionResult) string {
	var authored []prompts.Labeled
	var failed []string
	for _, s := range sections {
		if s.Failed {
			failed = append(failed, fmt.Sprintf("Section %d on %s", s.Section.Number, s.Section.Name))
			continue
		}
		authored = append(authored, prompts.Labeled{
			Label:   fmt.Sprintf("Section %d: %s", s.Section.Number, s.Section.Name),
			Content: s.Text,
		})
	}

	assembler := r.Config.String("assemblerModel", r.Models[0])
	res := r.GW.QueryOne(ctx, assembler, prompts.BlueprintAssembly(r.Question, outline, authored, failed), r.Timeout)
	if res != nil {
		r.Record("assembly", assembler, "assembler", res.Content, nil, res.ResponseTimeMS)
		return res.Content
	}

	// Mechanical fallback preserves every successful section.
	r.Logger.Warn("assembler failed, concatenating sections", "sections", len(sections))
	var b strings.Builder
	if outline.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", outline.Title)
	}
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Section.Number < sections[j].Section.Number })
	for _, s := range sections {
		fmt.Fprintf(&b, "## Section %d\n\n", s.Section.Number)
		if s.Failed {
			fmt.Fprintf(&b, "[TODO: Section %d on %s needed]\n\n", s.Section.Number, s.Section.Name)
			continue
		}
		fmt.Fprintf(&b, "%s\n\n", s.Text)
	}
	doc := strings.TrimRight(b.String(), "\n")
	r.Record("assembly", "", "assembler", doc, map[string]string{"fallback": "concatenation"}, 0)
	return doc
}
