package assist

import (
	"fmt"
	"strings"

	"github.com/matterhub/redline/internal/revision"
)

const NarrativePrompt = `You are describing the tracked changes in a Word document under legal review. Write a short narrative (2-4 paragraphs) covering what was changed, who made the edits, and anything a reviewing attorney should look at closely.

Rules:
- Describe the substance of the edits, not the markup mechanics
- Group related edits by author where that reads naturally
- Call out removed or weakened obligations, liability language, amounts, and dates
- Treat replacements as a single edit: say what the old wording became
- Do not speculate about intent beyond what the text shows
- Plain prose only, no headings or bullet lists`

// BuildNarrativePrompt assembles the full prompt for narrating a set of
// tracked changes, with an optional excerpt of the document body for
// context.
func BuildNarrativePrompt(docTitle string, changes []revision.TrackedChange, excerpt string) string {
	var sb strings.Builder
	sb.WriteString(NarrativePrompt)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Document: %q\n", docTitle))
	sb.WriteString(fmt.Sprintf("Tracked changes (%d):\n", len(changes)))
	for _, ch := range changes {
		sb.WriteString(fmt.Sprintf("- [%s] %s", ch.ID, ch.Type))
		if ch.Author != "" {
			sb.WriteString(" by " + ch.Author)
		}
		if !ch.Timestamp.IsZero() {
			sb.WriteString(" (" + ch.Timestamp.Format("2006-01-02") + ")")
		}
		sb.WriteString(fmt.Sprintf(": %q\n", truncate(ch.Content, 200)))
	}
	if excerpt != "" {
		sb.WriteString("---\nDocument text (may be truncated):\n")
		sb.WriteString(TruncateToTokens(excerpt, 3000))
		sb.WriteString("\n")
	}
	sb.WriteString("---")
	return sb.String()
}
