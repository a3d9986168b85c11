package doctext

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantType string
	}{
		{"contract.txt", "*doctext.TextParser"},
		{"notes.md", "*doctext.MarkdownParser"},
		{"notes.markdown", "*doctext.MarkdownParser"},
		{"schedule.csv", "*doctext.CSVParser"},
		{"letter.html", "*doctext.HTMLParser"},
		{"letter.HTM", "*doctext.HTMLParser"},
		{"exhibit.pdf", "*doctext.PDFParser"},
		{"agreement.docx", "*doctext.DOCXParser"},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.filename, err)
			continue
		}
		// Identify the parser through its dynamic type name.
		got := typeName(p)
		if got != tt.wantType {
			t.Errorf("%s: expected %s, got %s", tt.filename, tt.wantType, got)
		}
	}
}

func typeName(p Parser) string {
	switch p.(type) {
	case *TextParser:
		return "*doctext.TextParser"
	case *MarkdownParser:
		return "*doctext.MarkdownParser"
	case *CSVParser:
		return "*doctext.CSVParser"
	case *HTMLParser:
		return "*doctext.HTMLParser"
	case *PDFParser:
		return "*doctext.PDFParser"
	case *DOCXParser:
		return "*doctext.DOCXParser"
	default:
		return "unknown"
	}
}

func TestForFile_Unsupported(t *testing.T) {
	_, err := ForFile("archive.zip")
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if !strings.Contains(err.Error(), ".zip") {
		t.Errorf("expected extension in error, got %q", err)
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("Agreement.DOCX") {
		t.Error("expected .DOCX to be supported regardless of case")
	}
	if IsSupportedExtension("binary.exe") {
		t.Error("expected .exe to be unsupported")
	}
	if IsSupportedExtension("noext") {
		t.Error("expected extensionless name to be unsupported")
	}
}

func TestHTMLParser_LetterExport(t *testing.T) {
	input := `<html><head><title>Engagement Letter</title></head>
<body>
<script>var tracking = 1;</script>
<h1>Re: Services Agreement</h1>
<p>Dear counsel,</p>
<p>Please find our comments <b>enclosed</b>.</p>
<table><tr><td>Fee</td><td>Fixed</td></tr></table>
</body></html>`

	p := &HTMLParser{}
	text, err := p.Parse(strings.NewReader(input), "letter.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if text.Title != "Engagement Letter" {
		t.Errorf("expected title %q, got %q", "Engagement Letter", text.Title)
	}

	want := []string{
		"Re: Services Agreement",
		"Dear counsel,",
		"Please find our comments enclosed.",
		"Fee",
		"Fixed",
	}
	if len(text.Paragraphs) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d: %q", len(want), len(text.Paragraphs), text.Paragraphs)
	}
	for i, w := range want {
		if text.Paragraphs[i] != w {
			t.Errorf("paragraph[%d]: expected %q, got %q", i, w, text.Paragraphs[i])
		}
	}
}

func TestHTMLParser_NoTitleFallsBackToFilename(t *testing.T) {
	p := &HTMLParser{}
	text, err := p.Parse(strings.NewReader("<p>Body only.</p>"), "export.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text.Title != "export" {
		t.Errorf("expected title %q, got %q", "export", text.Title)
	}
}

func TestCSVParser_HeadersAndRows(t *testing.T) {
	input := "name,rate\nAssociate,450\nPartner,900\n"
	p := &CSVParser{}
	text, err := p.Parse(strings.NewReader(input), "rates.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text.Title != "rates" {
		t.Errorf("expected title %q, got %q", "rates", text.Title)
	}
	if len(text.Paragraphs) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(text.Paragraphs))
	}
	para := text.Paragraphs[0]
	if !strings.Contains(para, "Headers: name, rate") {
		t.Errorf("expected header line, got %q", para)
	}
	if !strings.Contains(para, "name: Associate, rate: 450") {
		t.Errorf("expected labelled row, got %q", para)
	}
}

func TestCSVParser_EmptyInput(t *testing.T) {
	p := &CSVParser{}
	text, err := p.Parse(strings.NewReader(""), "empty.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(text.Paragraphs) != 0 {
		t.Errorf("expected 0 paragraphs, got %d", len(text.Paragraphs))
	}
}

func TestCSVParser_BatchesLongTables(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,clause\n")
	for i := 0; i < 45; i++ {
		b.WriteString("1,text\n")
	}
	p := &CSVParser{}
	text, err := p.Parse(strings.NewReader(b.String()), "clauses.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 45 rows in batches of 20 -> 3 paragraphs.
	if len(text.Paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(text.Paragraphs))
	}
}
