// Package report renders tracked-change extractions as Markdown or HTML
// for inclusion in review memos.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/matterhub/redline/internal/revision"
)

// AuthorActivity aggregates one author's edits.
type AuthorActivity struct {
	Author        string `json:"author"`
	Insertions    int    `json:"insertions"`
	Deletions     int    `json:"deletions"`
	Modifications int    `json:"modifications"`
	FormatChanges int    `json:"format_changes"`
}

// Build renders a Markdown report for a document's tracked changes.
// The change list keeps extraction order, so IDs read top to bottom.
func Build(docTitle string, changes []revision.TrackedChange, sum revision.ChangesSummary) string {
	var sb strings.Builder
	sb.WriteString("# Redline Report: " + docTitle + "\n\n")
	sb.WriteString(sum.Summary + "\n")
	if len(changes) == 0 {
		return sb.String()
	}

	sb.WriteString("\n## Changes by author\n\n")
	sb.WriteString("| Author | Insertions | Deletions | Modifications | Format changes |\n")
	sb.WriteString("| --- | ---: | ---: | ---: | ---: |\n")
	for _, a := range ByAuthor(changes) {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d |\n",
			escapeCell(a.Author), a.Insertions, a.Deletions, a.Modifications, a.FormatChanges))
	}

	sb.WriteString("\n## Change list\n\n")
	sb.WriteString("| ID | Type | Author | Date | Content |\n")
	sb.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, ch := range changes {
		date := ""
		if !ch.Timestamp.IsZero() {
			date = ch.Timestamp.Format("2006-01-02")
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			ch.ID, ch.Type, escapeCell(ch.Author), date, escapeCell(ch.Content)))
	}

	return sb.String()
}

// ByAuthor groups changes per author in first-seen order. Unattributed
// changes collect under a single label at the end.
func ByAuthor(changes []revision.TrackedChange) []AuthorActivity {
	index := make(map[string]int)
	var out []AuthorActivity
	var unattributed *AuthorActivity

	bump := func(a *AuthorActivity, kind revision.ChangeType) {
		switch kind {
		case revision.Insertion:
			a.Insertions++
		case revision.Deletion:
			a.Deletions++
		case revision.Modification:
			a.Modifications++
		case revision.FormatChange:
			a.FormatChanges++
		}
	}

	for _, ch := range changes {
		if ch.Author == "" {
			if unattributed == nil {
				unattributed = &AuthorActivity{Author: "(unattributed)"}
			}
			bump(unattributed, ch.Type)
			continue
		}
		i, ok := index[ch.Author]
		if !ok {
			i = len(out)
			index[ch.Author] = i
			out = append(out, AuthorActivity{Author: ch.Author})
		}
		bump(&out[i], ch.Type)
	}

	if unattributed != nil {
		out = append(out, *unattributed)
	}
	return out
}

// HTML converts a Markdown report to HTML.
func HTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

var cellEscaper = strings.NewReplacer("|", "\\|", "\n", " ")

func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}
