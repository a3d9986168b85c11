// Package doctext extracts plain reading text from the file formats a
// review matter carries: Word contracts, PDF exhibits, HTML letter
// exports, Markdown notes, and the odd text or CSV schedule.
package doctext

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Text is the flat reading view of a document.
type Text struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// Plain joins the paragraphs into a single block.
func (t *Text) Plain() string {
	return strings.Join(t.Paragraphs, "\n\n")
}

// Parser converts raw document bytes into flat text.
type Parser interface {
	Parse(r io.Reader, filename string) (*Text, error)
}

// SupportedExtensions lists file extensions this service can read.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
