// Package ooxml reads the WordprocessingML payload of a .docx package,
// keeping the revision markup (w:ins, w:del, w:rPrChange) that accepted-text
// libraries discard.
package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoDocument indicates the package has no word/document.xml entry.
var ErrNoDocument = errors.New("ooxml: no word/document.xml entry")

// Document is the parsed word/document.xml payload.
type Document struct {
	Body Body `xml:"body"`
}

// Body holds the top-level paragraphs in document order.
type Body struct {
	Paragraphs []Paragraph `xml:"p"`
}

// Paragraph preserves the order of its revision-bearing children.
// Children holds *Run, *InsertedRun and *DeletedRun values.
type Paragraph struct {
	Children []any
}

// UnmarshalXML decodes a w:p element token by token. Struct tags cannot
// keep heterogeneous siblings in document order, and the order decides
// both change IDs and adjacency.
func (p *Paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				var r Run
				if err := d.DecodeElement(&r, &t); err != nil {
					return err
				}
				p.Children = append(p.Children, &r)
			case "ins":
				var ins InsertedRun
				if err := d.DecodeElement(&ins, &t); err != nil {
					return err
				}
				p.Children = append(p.Children, &ins)
			case "del":
				var del DeletedRun
				if err := d.DecodeElement(&del, &t); err != nil {
					return err
				}
				p.Children = append(p.Children, &del)
			default:
				// Bookmarks, proofing marks, nested tables: not modeled.
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

// Run is a single text run. A run whose properties carry a w:rPrChange
// records a formatting revision against its current text.
type Run struct {
	Properties *RunProperties `xml:"rPr"`
	Texts      []TextNode     `xml:"t"`
	DelTexts   []TextNode     `xml:"delText"`
}

// Text returns the run's visible text.
func (r *Run) Text() string {
	var sb strings.Builder
	for _, t := range r.Texts {
		sb.WriteString(t.Value)
	}
	return sb.String()
}

// DeletedText returns the run's w:delText content.
func (r *Run) DeletedText() string {
	var sb strings.Builder
	for _, t := range r.DelTexts {
		sb.WriteString(t.Value)
	}
	return sb.String()
}

// FormatChange returns the run's formatting revision, or nil.
func (r *Run) FormatChange() *RevisionAttrs {
	if r.Properties == nil || r.Properties.Change == nil {
		return nil
	}
	return r.Properties.Change
}

// RunProperties models the subset of w:rPr this service cares about.
type RunProperties struct {
	Change *RevisionAttrs `xml:"rPrChange"`
}

// TextNode is a w:t or w:delText element.
type TextNode struct {
	Value string `xml:",chardata"`
}

// RevisionAttrs are the id/author/date attributes common to all
// revision elements.
type RevisionAttrs struct {
	ID     string `xml:"id,attr"`
	Author string `xml:"author,attr"`
	Date   string `xml:"date,attr"`
}

// InsertedRun is a w:ins element wrapping the inserted runs.
type InsertedRun struct {
	RevisionAttrs
	Runs []Run `xml:"r"`
}

// Text returns the concatenated inserted text.
func (ins *InsertedRun) Text() string {
	var sb strings.Builder
	for i := range ins.Runs {
		sb.WriteString(ins.Runs[i].Text())
	}
	return sb.String()
}

// DeletedRun is a w:del element wrapping runs of w:delText.
type DeletedRun struct {
	RevisionAttrs
	Runs []Run `xml:"r"`
}

// Text returns the concatenated deleted text.
func (del *DeletedRun) Text() string {
	var sb strings.Builder
	for i := range del.Runs {
		sb.WriteString(del.Runs[i].DeletedText())
	}
	return sb.String()
}

// Parse decodes a word/document.xml payload.
func Parse(content []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse document xml: %w", err)
	}
	return &doc, nil
}

// OpenPackage opens .docx bytes as a ZIP archive and parses the main
// document part.
func OpenPackage(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open document.xml: %w", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read document.xml: %w", err)
		}
		return Parse(content)
	}
	return nil, ErrNoDocument
}
