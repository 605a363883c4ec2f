package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

const maxColumnExamples = 5

// extractCSV turns tabular data into prose so the same chunk/embed
// pipeline applies uniformly: a record count, a per-column summary with
// example values, then every row flattened to "column: value" lines.
// Rows whose field count does not match the header are dropped.
func (s *Service) extractCSV(data []byte) (*Result, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: csv has no header row", ErrUnreadableContent)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed csv: %v", ErrUnreadableContent, err)
		}
		if len(record) != len(header) {
			s.logger.Warn("csv row dropped", "want_fields", len(header), "got_fields", len(record))
			continue
		}
		rows = append(rows, record)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: csv has no data rows", ErrUnreadableContent)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CSV data with %d records.\n\n", len(rows))

	for col, name := range header {
		nonEmpty := 0
		seen := make(map[string]bool)
		var examples []string
		for _, row := range rows {
			value := strings.TrimSpace(row[col])
			if value == "" {
				continue
			}
			nonEmpty++
			if !seen[value] && len(examples) < maxColumnExamples {
				seen[value] = true
				examples = append(examples, value)
			}
		}
		fmt.Fprintf(&b, "Column: %s\n", name)
		fmt.Fprintf(&b, "Total entries: %d\n", nonEmpty)
		if len(examples) > 0 {
			fmt.Fprintf(&b, "Examples: %s\n", strings.Join(examples, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("Records:\n")
	for _, row := range rows {
		parts := make([]string, len(header))
		for col, name := range header {
			parts[col] = name + ": " + strings.TrimSpace(row[col])
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("\n")
	}

	return &Result{Text: strings.TrimSpace(b.String())}, nil
}
