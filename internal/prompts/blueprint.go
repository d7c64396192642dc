package prompts

import (
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/quorum/internal/parse"
)

const outlineTemplate = `You are the architect of a long-form document answering this request:

%s

Plan the document. Reply in exactly this format:

DOCUMENT TITLE: <title>

SECTION 1: <section name>
Description: <what the section covers>
Key Topics:
- topic
- topic
Length: Short or Medium or Long

SECTION 2: ...

Plan between 3 and 20 sections.`

// BlueprintOutline builds the architect's planning prompt.
func BlueprintOutline(request string) string {
	return fmt.Sprintf(outlineTemplate, request)
}

const authorTemplate = `You are writing ONE section of a planned document.

Document request:
%s

Full outline (context only, write nothing outside your section):
%s

Your assigned section:

SECTION %d: %s
Description: %s
%s
Target length: %s

Write the complete text of your section. No preamble, no headings for other sections.`

// BlueprintAuthor builds one author's prompt: the full outline as read-only
// context plus the single assigned section.
func BlueprintAuthor(request string, outline parse.Outline, section parse.Section) string {
	var topics string
	if len(section.KeyTopics) > 0 {
		topics = "Key topics:\n" + bullets(section.KeyTopics) + "\n"
	}
	return fmt.Sprintf(authorTemplate, request, renderOutline(outline),
		section.Number, section.Name, section.Description, topics, section.Length)
}

const assemblyTemplate = `You are assembling a document from independently written sections.

Document request:
%s

Planned title: %s

Sections:

%s
%s
Merge the sections into one coherent document: smooth the transitions, remove duplication across sections, keep every author's substance. Output the full document in markdown.`

// BlueprintAssembly builds the assembler prompt. failed lists section names
// whose author did not deliver; the assembler must note the gaps.
func BlueprintAssembly(request string, outline parse.Outline, sections []Labeled, failed []string) string {
	var note string
	if len(failed) > 0 {
		note = "\nThese planned sections have no text (their author failed); insert a [TODO: Section n on <name> needed] marker where each belongs:\n" + bullets(failed) + "\n"
	}
	return fmt.Sprintf(assemblyTemplate, request, outline.Title, renderLabeled(sections), note)
}

func renderOutline(o parse.Outline) string {
	var b strings.Builder
	if o.Title != "" {
		fmt.Fprintf(&b, "DOCUMENT TITLE: %s\n\n", o.Title)
	}
	for _, s := range o.Sections {
		fmt.Fprintf(&b, "SECTION %d: %s\n", s.Number, s.Name)
		if s.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", s.Description)
		}
		for _, t := range s.KeyTopics {
			fmt.Fprintf(&b, "- %s\n", t)
		}
		fmt.Fprintf(&b, "Length: %s\n\n", s.Length)
	}
	return strings.TrimRight(b.String(), "\n")
}
