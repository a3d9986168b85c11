package revision

import (
	"fmt"
	"strings"
)

// Summarize aggregates a change list. It is pure and total: any input,
// including nil, produces a well-formed summary and never an error.
func Summarize(changes []TrackedChange) ChangesSummary {
	s := ChangesSummary{Authors: []string{}}
	seen := make(map[string]bool)

	for _, c := range changes {
		s.TotalChanges++
		switch c.Type {
		case Insertion:
			s.Insertions++
		case Deletion:
			s.Deletions++
		case Modification:
			s.Modifications++
		case FormatChange:
			s.FormatChanges++
		}
		author := NormalizeAuthor(c.Author)
		if author != "" && !seen[author] {
			seen[author] = true
			s.Authors = append(s.Authors, author)
		}
	}

	s.Summary = summaryLine(s)
	return s
}

// SummaryText returns just the human-readable line for a change list.
func SummaryText(changes []TrackedChange) string {
	return Summarize(changes).Summary
}

func summaryLine(s ChangesSummary) string {
	if s.TotalChanges == 0 {
		return "No changes"
	}

	parts := make([]string, 0, 4)
	if s.Insertions > 0 {
		parts = append(parts, countNoun(s.Insertions, "insertion"))
	}
	if s.Deletions > 0 {
		parts = append(parts, countNoun(s.Deletions, "deletion"))
	}
	if s.Modifications > 0 {
		parts = append(parts, countNoun(s.Modifications, "modification"))
	}
	if s.FormatChanges > 0 {
		parts = append(parts, countNoun(s.FormatChanges, "format change"))
	}

	line := strings.Join(parts, ", ")
	if len(s.Authors) > 0 {
		line += " by " + strings.Join(s.Authors, ", ")
	}
	return line
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
