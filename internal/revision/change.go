// Package revision extracts and summarizes the tracked changes recorded
// in Word documents under review.
package revision

import (
	"strings"
	"time"
)

// ChangeType classifies a tracked change.
type ChangeType string

const (
	Insertion    ChangeType = "INSERTION"
	Deletion     ChangeType = "DELETION"
	Modification ChangeType = "MODIFICATION"
	FormatChange ChangeType = "FORMAT_CHANGE"
)

// TrackedChange is one revision recorded in a document. IDs run
// change-1, change-2, ... in document walk order, which is a display
// ordering and not chronological.
type TrackedChange struct {
	ID        string     `json:"id"`
	Type      ChangeType `json:"type"`
	Author    string     `json:"author"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp,omitzero"`
}

// ChangesSummary aggregates a change list into reviewer-facing counts.
// Authors are distinct names in order of first appearance.
type ChangesSummary struct {
	TotalChanges  int      `json:"total_changes"`
	Insertions    int      `json:"insertions"`
	Deletions     int      `json:"deletions"`
	Modifications int      `json:"modifications"`
	FormatChanges int      `json:"format_changes"`
	Authors       []string `json:"authors"`
	Summary       string   `json:"summary"`
}

// NormalizeAuthor trims surrounding whitespace from a reviewer name.
// Case is preserved: "John" and "john" stay distinct.
func NormalizeAuthor(name string) string {
	return strings.TrimSpace(name)
}

// revision dates are RFC 3339 in well-formed documents; some producers
// omit the zone.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

func parseRevisionDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
