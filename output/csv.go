package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVFormatter outputs rows as CSV format
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes a header row followed by one record per row. Nothing is
// written when there are no rows and no columns.
func (c *CSVFormatter) Format(columns []string, rows []map[string]interface{}) error {
	csvWriter := csv.NewWriter(c.writer)

	cols := columnsOf(columns, rows)
	if len(cols) > 0 {
		if err := csvWriter.Write(cols); err != nil {
			return err
		}
	}

	for _, row := range rows {
		record := make([]string, len(cols))
		for i, col := range cols {
			record[i] = sanitizeCell(formatValue(row[col]))
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	// Flush and check for errors
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// sanitizeCell guards against CSV injection by prefixing text that could
// trigger formula execution in spreadsheet applications. Numbers are left
// alone so negative values stay numeric.
func sanitizeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '@', '\t', '\r', '\n', '|':
	case '-':
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return s
		}
	default:
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''")
}
