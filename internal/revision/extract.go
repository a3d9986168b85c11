package revision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/matterhub/redline/internal/ooxml"
)

// Store fetches raw document bytes from the firm's document store.
// The caller's access token is forwarded verbatim.
type Store interface {
	FetchItemContent(ctx context.Context, itemID, accessToken string) ([]byte, error)
}

// Options control extraction behaviour per request.
type Options struct {
	// Consolidate merges a strictly adjacent delete/insert pair by the
	// same author into a single MODIFICATION whose content is the
	// replacement text.
	Consolidate bool
}

// Extractor pulls a document out of the store and reads its tracked
// changes. Each call is self-contained; extractors are safe for
// concurrent use.
type Extractor struct {
	store Store
	log   *slog.Logger
}

func NewExtractor(store Store, log *slog.Logger) *Extractor {
	return &Extractor{store: store, log: log}
}

// Extract fetches the document identified by itemID and returns its
// tracked changes. Only store failures surface as errors; a document
// that cannot be read as a .docx package yields an empty list, since
// an unreadable or revision-free document is not an extraction failure.
func (e *Extractor) Extract(ctx context.Context, documentID, accessToken, itemID string, opts Options) ([]TrackedChange, error) {
	data, err := e.store.FetchItemContent(ctx, itemID, accessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch item %s: %w", itemID, err)
	}

	doc, err := ooxml.OpenPackage(data)
	if err != nil {
		e.log.Warn("document not readable as docx", "doc_id", documentID, "item_id", itemID, "error", err)
		return []TrackedChange{}, nil
	}

	changes := FromDocument(doc, opts)
	e.log.Info("extracted tracked changes", "doc_id", documentID, "item_id", itemID, "count", len(changes))
	return changes, nil
}

// FromBytes extracts tracked changes from in-memory .docx bytes.
// Damaged packages yield an empty slice.
func FromBytes(data []byte, opts Options) []TrackedChange {
	doc, err := ooxml.OpenPackage(data)
	if err != nil {
		return []TrackedChange{}
	}
	return FromDocument(doc, opts)
}

// rawChange is a walk-order change candidate before consolidation and
// ID assignment. A zero kind marks an element that produces no record
// but still breaks delete/insert adjacency.
type rawChange struct {
	kind    ChangeType
	author  string
	content string
	date    string
}

// FromDocument walks a parsed body paragraph by paragraph, element by
// element, and returns the change records in walk order.
func FromDocument(doc *ooxml.Document, opts Options) []TrackedChange {
	changes := []TrackedChange{}
	n := 0
	for pi := range doc.Body.Paragraphs {
		nodes := collectParagraph(&doc.Body.Paragraphs[pi])
		if opts.Consolidate {
			nodes = consolidate(nodes)
		}
		for _, rc := range nodes {
			if rc.kind == "" {
				continue
			}
			n++
			changes = append(changes, TrackedChange{
				ID:        fmt.Sprintf("change-%d", n),
				Type:      rc.kind,
				Author:    rc.author,
				Content:   rc.content,
				Timestamp: parseRevisionDate(rc.date),
			})
		}
	}
	return changes
}

// collectParagraph maps a paragraph's ordered children to change
// candidates. Plain runs and malformed revision shells become barriers:
// no record, but adjacency across them is broken.
func collectParagraph(p *ooxml.Paragraph) []rawChange {
	nodes := make([]rawChange, 0, len(p.Children))
	for _, child := range p.Children {
		switch el := child.(type) {
		case *ooxml.InsertedRun:
			nodes = append(nodes, newRawChange(Insertion, el.Author, el.Text(), el.Date))
		case *ooxml.DeletedRun:
			nodes = append(nodes, newRawChange(Deletion, el.Author, el.Text(), el.Date))
		case *ooxml.Run:
			if fc := el.FormatChange(); fc != nil {
				nodes = append(nodes, newRawChange(FormatChange, fc.Author, el.Text(), fc.Date))
			} else {
				nodes = append(nodes, rawChange{})
			}
		}
	}
	return nodes
}

// newRawChange builds a candidate, demoting malformed shells (no author
// and no content) to barriers so the walk skips them individually.
func newRawChange(kind ChangeType, author, content, date string) rawChange {
	author = NormalizeAuthor(author)
	if author == "" && content == "" {
		return rawChange{}
	}
	return rawChange{kind: kind, author: author, content: content, date: date}
}

// consolidate merges each adjacent delete/insert pair (either order) by
// the same author into one MODIFICATION. Anything between the pair,
// including a barrier, keeps them apart.
func consolidate(nodes []rawChange) []rawChange {
	out := make([]rawChange, 0, len(nodes))
	for i := 0; i < len(nodes); i++ {
		if i+1 < len(nodes) && isEditPair(nodes[i], nodes[i+1]) {
			ins := nodes[i]
			if ins.kind != Insertion {
				ins = nodes[i+1]
			}
			out = append(out, rawChange{
				kind:    Modification,
				author:  ins.author,
				content: ins.content,
				date:    ins.date,
			})
			i++
			continue
		}
		out = append(out, nodes[i])
	}
	return out
}

// isEditPair reports whether two neighbours form a replacement by one
// reviewer. Unattributed changes never pair: with no author there is no
// way to establish they came from the same hand.
func isEditPair(a, b rawChange) bool {
	if a.author == "" || a.author != b.author {
		return false
	}
	return (a.kind == Deletion && b.kind == Insertion) ||
		(a.kind == Insertion && b.kind == Deletion)
}
