package services

import (
	"fmt"
	"strings"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
)

// Prompt builders for the generation backend. Each returns a single
// self-contained prompt; conversation state lives in the pipeline, not
// the backend.

// thesisPrompt asks for the fixed global thesis statement.
func thesisPrompt(topic string, outline domain.Outline) string {
	var chapters []string
	for _, ch := range outline.Chapters {
		chapters = append(chapters, ch.Title)
	}
	return fmt.Sprintf(`You are the lead author of a long-form report titled %q on the topic %q.
The report covers these chapters: %s.

Write a single-paragraph global thesis statement that every section of the
report will argue towards. Return only the thesis paragraph.`,
		outline.Title, topic, strings.Join(chapters, "; "))
}

// styleGuidePrompt asks for a short writing style guide for the run.
func styleGuidePrompt(topic string) string {
	return fmt.Sprintf(`Produce a concise style guide (under 200 words) for a professional
analytical report on %q: register, tense, citation style, and how to
present quantitative evidence. Return only the guide.`, topic)
}

// draftPrompt asks for an evidence-grounded first draft of one unit.
func draftPrompt(topic string, unit domain.GenerationUnit, evidence, thesis, chapterSummary, styleGuide string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `Write the section %q of a report on %q.

Ground every claim strictly in the evidence below. Do not invent facts.
Cite evidence inline using its bracket number.`, unit.Path(), topic)

	if thesis != "" {
		fmt.Fprintf(&sb, "\n\nGlobal thesis:\n%s", thesis)
	}
	if chapterSummary != "" {
		fmt.Fprintf(&sb, "\n\nSummary of the previous chapter:\n%s", chapterSummary)
	}
	if styleGuide != "" {
		fmt.Fprintf(&sb, "\n\nStyle guide:\n%s", styleGuide)
	}
	fmt.Fprintf(&sb, "\n\nEvidence:\n%s\n\nReturn only the section text in Markdown.", evidence)
	return sb.String()
}

// visualPrompt asks for one VisualSpec JSON object extracted from the
// draft. The backend returns data only; it never returns code.
func visualPrompt(draft string) string {
	kinds := make([]string, 0, len(domain.AllChartKinds()))
	for _, k := range domain.AllChartKinds() {
		kinds = append(kinds, k.String())
	}
	return fmt.Sprintf(`Extract the single most chart-worthy numeric series from the draft
below. Use only numbers already present in the draft; if it contains no
usable numeric series, return {"type": "none"}.

Return exactly one JSON object with this shape and nothing else:
{"type": one of [%s], "title": string, "x_label": string, "y_label": string,
 "labels": [string], "datasets": [{"label": string, "values": [number]}],
 "source": string}

Draft:
%s`, strings.Join(kinds, ", "), draft)
}

// editPrompt asks for the polished final prose, optionally folding in
// rubric feedback from a previous round.
func editPrompt(topic string, unit domain.GenerationUnit, draft, artifactRef, feedback string, hints []string, round int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `Polish the following draft of section %q (report topic %q) into
final prose: tighten the argument, keep all cited evidence and figures,
use Markdown sub-headers, and keep at least one data table.`, unit.Path(), topic)

	if artifactRef != "" {
		fmt.Fprintf(&sb, "\n\nReference the rendered chart %s where the data is discussed.", artifactRef)
	}
	if round > 0 && feedback != "" {
		fmt.Fprintf(&sb, "\n\nThis is refinement round %d. A quality review flagged:\n%s", round, feedback)
		if len(hints) > 0 {
			fmt.Fprintf(&sb, "\n\nApply these remediations in order:\n- %s", strings.Join(hints, "\n- "))
		}
	}
	fmt.Fprintf(&sb, "\n\nDraft:\n%s\n\nReturn only the final section text in Markdown.", draft)
	return sb.String()
}

// summaryPrompt asks for the rolling executive summary of a finished
// chapter.
func summaryPrompt(chapterTitle, chapterText string) string {
	return fmt.Sprintf(`Summarise the completed chapter %q below in one paragraph
(under 150 words) for the authors of the next chapter. Capture the key
findings and figures. Return only the summary.

%s`, chapterTitle, chapterText)
}
