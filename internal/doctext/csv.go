package doctext

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser handles CSV schedules and rate tables.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Text, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	out := &Text{Title: titleFromFilename(filename)}
	if len(records) == 0 {
		return out, nil
	}

	// First row is headers.
	headers := records[0]

	// Group rows into batches of 20 so each paragraph stays readable.
	const batchSize = 20
	dataRows := records[1:]

	for i := 0; i < len(dataRows); i += batchSize {
		end := i + batchSize
		if end > len(dataRows) {
			end = len(dataRows)
		}
		batch := dataRows[i:end]

		var text strings.Builder
		text.WriteString("Headers: " + strings.Join(headers, ", ") + "\n")
		for _, row := range batch {
			for j, cell := range row {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row)-1 {
					text.WriteString(", ")
				}
			}
			text.WriteString("\n")
		}

		out.Paragraphs = append(out.Paragraphs, strings.TrimRight(text.String(), "\n"))
	}

	return out, nil
}
