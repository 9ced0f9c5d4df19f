package openai

import (
	"strings"

	"github.com/poiesic/stratum/core"
)

const systemPrompt = `Summarize and extract key insights from this research abstract.

Output ONLY a valid JSON object. Do not include any preamble, explanation, or text outside the object.
Start your response with { and end it with }. The object must have exactly these keys:

{
  "summary": "one or two sentence summary of the abstract",
  "insights": ["key insight", "another key insight"]
}

Rules:
- Base the summary and insights only on the given text. Do not invent findings.
- Return between one and five insights, each a short sentence.
- If the text is empty or meaningless, return {"summary": "", "insights": []}.
- The JSON must parse without errors; no trailing commas and no extra keys.`

// recordText returns the free text sent for a record: the abstract, or the
// title when the abstract is empty.
func recordText(record *core.NormalizedRecord) string {
	if record.Abstract != nil && strings.TrimSpace(*record.Abstract) != "" {
		return *record.Abstract
	}
	if record.Title != nil {
		return *record.Title
	}
	return ""
}

// buildUserPrompt renders the human message for a record.
func buildUserPrompt(record *core.NormalizedRecord) string {
	var b strings.Builder
	if record.Title != nil && *record.Title != "" {
		b.WriteString("Title: ")
		b.WriteString(*record.Title)
		b.WriteString("\n\n")
	}
	b.WriteString("Text: ")
	b.WriteString(recordText(record))
	return b.String()
}
