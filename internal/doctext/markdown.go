package doctext

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown review notes using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Text, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	out := &Text{Title: titleFromFilename(filename)}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			heading := string(node.Text(src))
			if heading == "" {
				continue
			}
			// First top-level heading names the document.
			if node.Level == 1 && len(out.Paragraphs) == 0 {
				out.Title = heading
				continue
			}
			out.Paragraphs = append(out.Paragraphs, heading)
		default:
			if t := extractBlockText(n, src); t != "" {
				out.Paragraphs = append(out.Paragraphs, t)
			}
		}
	}

	return out, nil
}

// extractBlockText gets the text content of a goldmark AST node. Leaf
// blocks without inline children (code fences) carry text only as raw
// lines; everything else is read through its inline nodes so the text
// is not written twice.
func extractBlockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.FirstChild() == nil && n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		// Recurse for nested inlines and container blocks.
		if s := extractBlockText(c, src); s != "" {
			buf.WriteString(s)
			if c.Type() == ast.TypeBlock {
				buf.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
