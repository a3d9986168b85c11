package report

import (
	"strings"
	"testing"
	"time"

	"github.com/matterhub/redline/internal/revision"
)

func sampleChanges() []revision.TrackedChange {
	return []revision.TrackedChange{
		{
			ID:        "change-1",
			Type:      revision.Insertion,
			Author:    "Jane Smith",
			Content:   "within thirty (30) days",
			Timestamp: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:      "change-2",
			Type:    revision.Deletion,
			Content: "upon receipt",
		},
		{
			ID:        "change-3",
			Type:      revision.Modification,
			Author:    "John Doe",
			Content:   "sixty",
			Timestamp: time.Date(2025, 1, 16, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestBuild(t *testing.T) {
	changes := sampleChanges()
	sum := revision.Summarize(changes)
	md := Build("Master Services Agreement", changes, sum)

	if !strings.Contains(md, "# Redline Report: Master Services Agreement") {
		t.Errorf("expected title heading, got:\n%s", md)
	}
	if !strings.Contains(md, sum.Summary) {
		t.Errorf("expected summary line %q, got:\n%s", sum.Summary, md)
	}
	if !strings.Contains(md, "## Changes by author") {
		t.Errorf("expected author section, got:\n%s", md)
	}
	if !strings.Contains(md, "| Jane Smith | 1 | 0 | 0 | 0 |") {
		t.Errorf("expected author row, got:\n%s", md)
	}
	if !strings.Contains(md, "| change-1 | INSERTION | Jane Smith | 2025-01-15 | within thirty (30) days |") {
		t.Errorf("expected change row, got:\n%s", md)
	}
	// Undated, unattributed change leaves its cells empty.
	if !strings.Contains(md, "| change-2 | DELETION |  |  | upon receipt |") {
		t.Errorf("expected bare change row, got:\n%s", md)
	}
}

func TestBuild_NoChanges(t *testing.T) {
	md := Build("Clean Draft", nil, revision.Summarize(nil))
	if !strings.Contains(md, "No changes") {
		t.Errorf("expected empty-document line, got:\n%s", md)
	}
	if strings.Contains(md, "## ") {
		t.Errorf("expected no table sections, got:\n%s", md)
	}
}

func TestBuild_EscapesTableCells(t *testing.T) {
	changes := []revision.TrackedChange{
		{ID: "change-1", Type: revision.Insertion, Author: "A", Content: "fee | rate\nsplit"},
	}
	md := Build("doc", changes, revision.Summarize(changes))
	if !strings.Contains(md, `fee \| rate split`) {
		t.Errorf("expected escaped cell, got:\n%s", md)
	}
}

func TestByAuthor(t *testing.T) {
	changes := sampleChanges()
	activity := ByAuthor(changes)

	if len(activity) != 3 {
		t.Fatalf("expected 3 author rows, got %d", len(activity))
	}
	if activity[0].Author != "Jane Smith" || activity[0].Insertions != 1 {
		t.Errorf("expected Jane Smith first with 1 insertion, got %+v", activity[0])
	}
	if activity[1].Author != "John Doe" || activity[1].Modifications != 1 {
		t.Errorf("expected John Doe with 1 modification, got %+v", activity[1])
	}
	if activity[2].Author != "(unattributed)" || activity[2].Deletions != 1 {
		t.Errorf("expected unattributed row last, got %+v", activity[2])
	}
}

func TestByAuthor_Empty(t *testing.T) {
	if got := ByAuthor(nil); len(got) != 0 {
		t.Errorf("expected no rows for no changes, got %d", len(got))
	}
}

func TestHTML(t *testing.T) {
	changes := sampleChanges()
	md := Build("MSA", changes, revision.Summarize(changes))

	html, err := HTML(md)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "<h1>") {
		t.Errorf("expected rendered heading, got:\n%s", html)
	}
	if !strings.Contains(html, "<table>") {
		t.Errorf("expected rendered table, got:\n%s", html)
	}
	if !strings.Contains(html, "<td>change-1</td>") {
		t.Errorf("expected table cell for change id, got:\n%s", html)
	}
}
